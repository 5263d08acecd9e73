// Package genclient implements the HTTP client for the external persona
// service, which hosts persona profiles and the chat completion endpoint
// used to generate feed content.
package genclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the persona service. All calls authenticate with the
// actor's opaque persona token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a persona-service client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			// Generations can take a while; profile calls reuse the same client.
			Timeout: 2 * time.Minute,
		},
	}
}

// Profile is the persona's public identity as reported by the service.
type Profile struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Avatar           string `json:"avatar"`
	Bio              string `json:"bio"`
	SelfIntroduction string `json:"selfIntroduction"`
}

// Interest is one persona interest tag. Tags may carry both private and
// public variants of each field; only tags with public content are exposed
// to prompt composition.
type Interest struct {
	Name              string `json:"name"`
	NamePublic        string `json:"namePublic"`
	Description       string `json:"description"`
	DescriptionPublic string `json:"descriptionPublic"`
	Confidence        string `json:"confidenceLevel"`
	ConfidencePublic  string `json:"confidenceLevelPublic"`
	HasPublicContent  bool   `json:"hasPublicContent"`
}

// PublicName returns the public display name of the tag, falling back to the
// private one.
func (i Interest) PublicName() string {
	if i.NamePublic != "" {
		return i.NamePublic
	}
	return i.Name
}

// PublicDescription returns the public description, falling back to the
// private one.
func (i Interest) PublicDescription() string {
	if i.DescriptionPublic != "" {
		return i.DescriptionPublic
	}
	return i.Description
}

// PublicConfidence returns the public confidence level, falling back to the
// private one.
func (i Interest) PublicConfidence() string {
	if i.ConfidencePublic != "" {
		return i.ConfidencePublic
	}
	return i.Confidence
}

// envelope is the persona service's response wrapper. code zero means success.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Error is a client-level error for non-success persona service responses.
type Error struct {
	Status  int
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 && e.Status != http.StatusOK {
		return fmt.Sprintf("persona service: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("persona service: code %d: %s", e.Code, e.Message)
}

func (c *Client) getJSON(ctx context.Context, path, token string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: string(body)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("persona service: malformed response: %w", err)
	}
	if env.Code != 0 {
		return &Error{Code: env.Code, Message: env.Message}
	}
	return json.Unmarshal(env.Data, dest)
}

// Profile fetches the persona's profile.
func (c *Client) Profile(ctx context.Context, token string) (*Profile, error) {
	var p Profile
	if err := c.getJSON(ctx, "/api/persona/profile", token, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Interests fetches the persona's interest tags, filtered to those the
// persona has made public.
func (c *Client) Interests(ctx context.Context, token string) ([]Interest, error) {
	var data struct {
		Interests []Interest `json:"interests"`
	}
	if err := c.getJSON(ctx, "/api/persona/interests", token, &data); err != nil {
		return nil, err
	}
	public := make([]Interest, 0, len(data.Interests))
	for _, it := range data.Interests {
		if it.HasPublicContent {
			public = append(public, it)
		}
	}
	return public, nil
}

// Chat issues a generation request and blocks until the full text is
// available. The service only speaks the streaming protocol, so this drains
// the fragment stream into an accumulator.
func (c *Client) Chat(ctx context.Context, token, message, systemPrompt string) (string, error) {
	stream, err := c.ChatStream(ctx, token, message, systemPrompt)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var buf bytes.Buffer
	for fragment := range stream.Fragments() {
		buf.WriteString(fragment)
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
