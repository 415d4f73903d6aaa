//go:generate go run go.uber.org/mock/mockgen -source=room_service.go -destination=../mocks/mock_room_service.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"tripchat/domain"
	"tripchat/errors"
	"tripchat/runtime"
)

var validate = validator.New()

type ParticipantOp string

const (
	OpAdd    ParticipantOp = "add"
	OpRemove ParticipantOp = "remove"
)

type ParticipantSpec struct {
	UserID uuid.UUID              `json:"userId" validate:"required"`
	Role   domain.ParticipantRole `json:"role" validate:"required,oneof=OWNER MEMBER AI_PERSONA"`
}

type CreateRoomSpec struct {
	Type         domain.RoomType     `json:"type" validate:"required,oneof=DIRECT GROUP"`
	Name         string              `json:"name" validate:"max=120"`
	Participants []ParticipantSpec   `json:"participants" validate:"required,min=1,dive"`
	Settings     domain.RoomSettings `json:"settings"`
}

type IRoomService interface {
	CreateRoom(ctx context.Context, spec CreateRoomSpec) (domain.Room, error)
	ManageParticipants(ctx context.Context, roomID, actorID uuid.UUID, op ParticipantOp, participants []ParticipantSpec) (domain.Room, error)
	UpdateRoom(ctx context.Context, roomID, actorID uuid.UUID, patch domain.RoomPatch) (domain.Room, error)
	ValidateRoomAccess(ctx context.Context, roomID, userID uuid.UUID) bool
	Room(ctx context.Context, roomID uuid.UUID) (domain.Room, error)
}

// RoomService fronts the per-room serialized processors for the room
// lifecycle operations. Structural validation runs before anything is
// dispatched; authorization runs inside the processor where the current
// participant set cannot change underneath the check.
type RoomService struct {
	orchestrator *runtime.Orchestrator
	log          *slog.Logger
	now          func() time.Time
}

func NewRoomService(orchestrator *runtime.Orchestrator, log *slog.Logger) *RoomService {
	return &RoomService{orchestrator: orchestrator, log: log, now: time.Now}
}

func (s *RoomService) CreateRoom(ctx context.Context, spec CreateRoomSpec) (domain.Room, error) {
	if err := validate.Struct(spec); err != nil {
		return domain.Room{}, errors.NewValidation("invalid room spec: %v", err)
	}

	now := s.now()
	participants := lo.Map(spec.Participants, func(p ParticipantSpec, _ int) domain.Participant {
		return domain.Participant{
			UserID:     p.UserID,
			Role:       p.Role,
			JoinedAt:   now,
			LastReadAt: now,
		}
	})

	room, err := domain.NewRoom(spec.Type, spec.Name, participants, spec.Settings, now)
	if err != nil {
		return domain.Room{}, err
	}
	if err := s.orchestrator.CreateRoom(ctx, room); err != nil {
		return domain.Room{}, err
	}
	s.log.Info("Room created",
		"room_id", room.ID,
		"type", room.Type,
		"participants", len(room.Participants))
	return room, nil
}

func (s *RoomService) ManageParticipants(ctx context.Context, roomID, actorID uuid.UUID, op ParticipantOp, participants []ParticipantSpec) (domain.Room, error) {
	if len(participants) == 0 {
		return domain.Room{}, errors.NewValidation("no participants given")
	}
	for _, p := range participants {
		if err := validate.Struct(p); err != nil {
			return domain.Room{}, errors.NewValidation("invalid participant: %v", err)
		}
	}

	now := s.now()
	reply := make(chan domain.RoomResult, 1)
	var cmd domain.Command
	switch op {
	case OpAdd:
		cmd = domain.AddParticipantsCommand{
			Room:    roomID,
			ActorID: actorID,
			Participants: lo.Map(participants, func(p ParticipantSpec, _ int) domain.Participant {
				return domain.Participant{UserID: p.UserID, Role: p.Role, JoinedAt: now, LastReadAt: now}
			}),
			Reply: reply,
		}
	case OpRemove:
		cmd = domain.RemoveParticipantsCommand{
			Room:    roomID,
			ActorID: actorID,
			UserIDs: lo.Map(participants, func(p ParticipantSpec, _ int) uuid.UUID { return p.UserID }),
			Reply:   reply,
		}
	default:
		return domain.Room{}, errors.NewValidation("unknown participant operation %q", op)
	}

	if err := s.orchestrator.Dispatch(ctx, cmd); err != nil {
		return domain.Room{}, err
	}
	res, err := runtime.Await(ctx, reply)
	if err != nil {
		return domain.Room{}, err
	}
	return res.Room, res.Err
}

func (s *RoomService) UpdateRoom(ctx context.Context, roomID, actorID uuid.UUID, patch domain.RoomPatch) (domain.Room, error) {
	reply := make(chan domain.RoomResult, 1)
	cmd := domain.UpdateRoomCommand{Room: roomID, ActorID: actorID, Patch: patch, Reply: reply}
	if err := s.orchestrator.Dispatch(ctx, cmd); err != nil {
		return domain.Room{}, err
	}
	res, err := runtime.Await(ctx, reply)
	if err != nil {
		return domain.Room{}, err
	}
	return res.Room, res.Err
}

// ValidateRoomAccess is the read-only membership check used by callers
// before allowing further room-scoped actions.
func (s *RoomService) ValidateRoomAccess(ctx context.Context, roomID, userID uuid.UUID) bool {
	room, err := s.orchestrator.Snapshot(ctx, roomID)
	if err != nil {
		return false
	}
	return room.IsMember(userID)
}

func (s *RoomService) Room(ctx context.Context, roomID uuid.UUID) (domain.Room, error) {
	return s.orchestrator.Snapshot(ctx, roomID)
}
