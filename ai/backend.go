// Package ai orchestrates responses from the external language-model
// backend for rooms with an AI persona. The backend is an external call
// with a narrow contract; it is never allowed to block a room's
// serialized processor.
package ai

import (
	"context"

	"tripchat/domain"
)

// Reply is the backend's answer over a conversational context.
// Confidence is the backend's self-reported reliability score in [0,1].
type Reply struct {
	Text       string
	Confidence float64
}

type Backend interface {
	Generate(ctx context.Context, contextWindow []domain.Message) (Reply, error)
}
