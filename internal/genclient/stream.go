package genclient

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
)

// doneSentinel terminates an SSE generation stream.
const doneSentinel = "[DONE]"

// chatRequest is the generation request body.
type chatRequest struct {
	Message      string `json:"message"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

// chunk is one parsed SSE data payload.
type chunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Stream is a lazy, finite, non-restartable sequence of generated text
// fragments. The fragment channel closes when the service emits its done
// sentinel, the connection ends, or the context is cancelled; Err reports
// any mid-stream failure once the channel has closed.
type Stream struct {
	fragments chan string
	body      io.ReadCloser

	mu        sync.Mutex
	err       error
	closeOnce sync.Once
}

// Fragments returns the channel of text fragments. The channel is closed
// exactly once; an exhausted channel with a nil Err means the generation
// completed normally.
func (s *Stream) Fragments() <-chan string {
	return s.fragments
}

// Err returns the stream failure, if any. Only meaningful after the
// fragment channel has closed.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Close releases the underlying connection. Safe to call multiple times and
// concurrently with a consumer draining Fragments.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.body.Close()
	})
	return err
}

// ChatStream issues a generation request and returns the fragment stream.
// The caller must drain Fragments (or Close early) exactly once; persistence
// decisions belong to the caller after the stream is exhausted.
func (c *Client) ChatStream(ctx context.Context, token, message, systemPrompt string) (*Stream, error) {
	payload, err := json.Marshal(chatRequest{Message: message, SystemPrompt: systemPrompt})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/persona/chat/stream", strings.NewReader(string(payload)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &Error{Status: resp.StatusCode, Message: string(body)}
	}

	s := &Stream{
		fragments: make(chan string),
		body:      resp.Body,
	}
	go s.consume(ctx)
	return s, nil
}

// consume reads SSE lines off the response body and forwards content deltas.
func (s *Stream) consume(ctx context.Context) {
	defer close(s.fragments)
	defer s.Close()

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		if data == "" {
			continue
		}
		if data == doneSentinel {
			return
		}

		var ch chunk
		if err := json.Unmarshal([]byte(data), &ch); err != nil {
			// Malformed chunks are skipped, not fatal.
			continue
		}
		if len(ch.Choices) == 0 {
			continue
		}
		content := ch.Choices[0].Delta.Content
		if content == "" {
			continue
		}

		select {
		case s.fragments <- content:
		case <-ctx.Done():
			s.setErr(ctx.Err())
			return
		}
	}

	if err := ctx.Err(); err != nil {
		s.setErr(err)
		return
	}
	if err := scanner.Err(); err != nil {
		s.setErr(err)
	}
}
