package ai

import "context"

// Request is one non-streaming generation call.
type Request struct {
	Model  string
	System string
	Prompt string
	// JSON asks the provider to constrain output to a single JSON object.
	JSON bool
}

// Client is an externally hosted language model endpoint.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}
