package ai

import (
	"context"
	"fmt"
	"strings"

	"tripchat/domain"
)

// MockBackend is a deterministic backend for tests and local runs. It
// answers from simple keyword rules over the latest user message and
// reports a confidence that depends on how much it recognized.
type MockBackend struct{}

func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

func (m *MockBackend) Generate(_ context.Context, contextWindow []domain.Message) (Reply, error) {
	if len(contextWindow) == 0 {
		return Reply{Text: "How can I help you plan your next trip?", Confidence: 0.2}, nil
	}
	last := contextWindow[len(contextWindow)-1]
	text := strings.ToLower(last.Content.Text)

	switch {
	case strings.Contains(text, "trip") || strings.Contains(text, "travel"):
		return Reply{
			Text:       fmt.Sprintf("Sounds exciting! For %q I would start with dates and a rough budget.", last.Content.Text),
			Confidence: 0.9,
		}, nil
	case strings.Contains(text, "hotel") || strings.Contains(text, "flight"):
		return Reply{
			Text:       "I can compare a few options once you tell me your dates.",
			Confidence: 0.8,
		}, nil
	case len(text) < 4:
		return Reply{Text: "Could you tell me a bit more?", Confidence: 0.15}, nil
	default:
		return Reply{
			Text:       fmt.Sprintf("I hear you. You said %q, what part matters most for your plans?", last.Content.Text),
			Confidence: 0.6,
		}, nil
	}
}
