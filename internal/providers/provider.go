// Package providers defines the content sources a slash command can dispatch to.
package providers

import (
	"context"

	"surprise-service/internal/slack"
)

// Provider supplies the content of one attachment.
type Provider interface {
	Name() string
	Provide(ctx context.Context) (*Result, error)
}

// Result is what a provider hands back to the dispatcher. Summary becomes the
// response text; it must not be empty.
type Result struct {
	Summary    string
	Attachment slack.Attachment
}
