package ai

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"tripchat/domain"
	"tripchat/errors"
	"tripchat/services"
)

// HistoryProvider supplies the most recent messages of a room.
type HistoryProvider interface {
	Recent(ctx context.Context, roomID uuid.UUID, limit int) ([]domain.Message, error)
}

type Config struct {
	// ContextWindowSize bounds how many recent room messages are handed
	// to the backend per call.
	ContextWindowSize int
	// MinConfidence is the floor below which a reply is flagged. Flagged
	// replies are still returned, never silently dropped.
	MinConfidence float64
	// BackendTimeout bounds the whole Generate call including retries.
	BackendTimeout time.Duration
}

// Responder builds the conversational context and calls the backend.
// It retains the previous window per room, so consecutive related turns
// keep refining relevance instead of starting from scratch.
type Responder struct {
	backend Backend
	history HistoryProvider
	retry   services.RetryPolicy
	cfg     Config
	log     *slog.Logger

	mu       sync.Mutex
	retained map[uuid.UUID][]domain.Message
}

func NewResponder(backend Backend, history HistoryProvider, retry services.RetryPolicy, cfg Config, log *slog.Logger) *Responder {
	return &Responder{
		backend:  backend,
		history:  history,
		retry:    retry,
		cfg:      cfg,
		log:      log,
		retained: make(map[uuid.UUID][]domain.Message),
	}
}

// Respond generates an AI reply for the room of the incoming message.
// On backend timeout or error it returns a BackendTimeoutError and no
// message; the caller suppresses it so the room is never blocked.
func (r *Responder) Respond(ctx context.Context, incoming domain.Message, persona domain.Participant) (services.SendMessageInput, error) {
	window, err := r.contextWindow(ctx, incoming)
	if err != nil {
		return services.SendMessageInput{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	var reply Reply
	err = r.retry.Do(callCtx, func() error {
		var genErr error
		reply, genErr = r.backend.Generate(callCtx, window)
		return genErr
	})
	if err != nil {
		return services.SendMessageInput{}, errors.BackendTimeoutError{Deadline: r.cfg.BackendTimeout, Err: err}
	}

	aiCtx := &domain.AIContext{
		Confidence:        reply.Confidence,
		ContextWindowSize: len(window),
		Flagged:           reply.Confidence < r.cfg.MinConfidence,
	}
	if aiCtx.Flagged {
		r.log.Info("Low-confidence AI reply flagged",
			"room_id", incoming.RoomID,
			"confidence", reply.Confidence)
	}

	return services.SendMessageInput{
		RoomID:    incoming.RoomID,
		SenderID:  persona.UserID,
		Type:      domain.MessageAIResponse,
		Content:   domain.MessageContent{Text: reply.Text},
		AIContext: aiCtx,
	}, nil
}

// contextWindow merges the retained window with fresh history, newest
// last, deduplicated by message id and trimmed to the configured size.
// The trigger message is included even when persistence lags behind.
func (r *Responder) contextWindow(ctx context.Context, incoming domain.Message) ([]domain.Message, error) {
	recent, err := r.history.Recent(ctx, incoming.RoomID, r.cfg.ContextWindowSize)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	combined := append(append([]domain.Message{}, r.retained[incoming.RoomID]...), recent...)
	combined = append(combined, incoming)
	combined = lo.UniqBy(combined, func(m domain.Message) uuid.UUID { return m.ID })
	if len(combined) > r.cfg.ContextWindowSize {
		combined = combined[len(combined)-r.cfg.ContextWindowSize:]
	}

	r.retained[incoming.RoomID] = combined
	return combined, nil
}

// Forget drops the retained context of a room, used when a room is
// archived.
func (r *Responder) Forget(roomID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.retained, roomID)
}
