package service

import (
	"context"

	"murmur/internal/genclient"
)

// TextStream is a lazy, finite sequence of generated text fragments. The
// channel closes when the generation finishes; Err is meaningful after that.
type TextStream interface {
	Fragments() <-chan string
	Err() error
	Close() error
}

// PersonaClient is the slice of the persona service the services depend on.
type PersonaClient interface {
	Profile(ctx context.Context, token string) (*genclient.Profile, error)
	Interests(ctx context.Context, token string) ([]genclient.Interest, error)
	Chat(ctx context.Context, token, message, systemPrompt string) (string, error)
	ChatStream(ctx context.Context, token, message, systemPrompt string) (TextStream, error)
}

// personaClient adapts *genclient.Client to PersonaClient.
type personaClient struct {
	*genclient.Client
}

// NewPersonaClient wraps the concrete persona-service client.
func NewPersonaClient(c *genclient.Client) PersonaClient {
	return personaClient{c}
}

func (p personaClient) ChatStream(ctx context.Context, token, message, systemPrompt string) (TextStream, error) {
	return p.Client.ChatStream(ctx, token, message, systemPrompt)
}
