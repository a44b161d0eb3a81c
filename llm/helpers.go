package llm

import "context"

// Complete is a convenience helper: sends system + user prompts and returns
// the text response.
func Complete(ctx context.Context, p Provider, system, user string) (string, error) {
	resp, err := p.Complete(ctx, CompletionRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// CompleteStructured is the JSON counterpart of Complete: the provider is
// asked for its JSON output mode, so the returned text is a bare JSON object
// without surrounding commentary.
func CompleteStructured(ctx context.Context, p Provider, system, user string) (string, error) {
	resp, err := p.CompleteStructured(ctx, CompletionRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: "user", Content: user}},
	}, nil)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
