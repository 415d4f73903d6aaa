// Package domain contains core concepts of the chat system.
// This file defines Room entities and their structural invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"tripchat/errors"
)

type RoomType string

const (
	RoomDirect RoomType = "DIRECT"
	RoomGroup  RoomType = "GROUP"
)

type RoomStatus string

const (
	RoomActive   RoomStatus = "ACTIVE"
	RoomArchived RoomStatus = "ARCHIVED"
)

// HardMaxParticipants caps GROUP rooms regardless of room settings.
const HardMaxParticipants = 50

type RoomSettings struct {
	IsPrivate       bool `json:"isPrivate"`
	AllowAIPersonas bool `json:"allowAIPersonas"`
	MaxParticipants int  `json:"maxParticipants"`
}

// Room is a conversation container. Version increases by exactly one on
// every successful mutation; the per-room processor in runtime is the
// single writer, so increments are sequential with no gaps.
type Room struct {
	ID           uuid.UUID     `json:"id"`
	Type         RoomType      `json:"type"`
	Name         string        `json:"name"`
	Participants []Participant `json:"participants"`
	Settings     RoomSettings  `json:"settings"`
	Status       RoomStatus    `json:"status"`
	Version      uint64        `json:"version"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// NewRoom validates the type-specific participant invariants and builds an
// ACTIVE room at version 1. Nothing is persisted here.
func NewRoom(roomType RoomType, name string, participants []Participant, settings RoomSettings, now time.Time) (Room, error) {
	room := Room{
		ID:           uuid.New(),
		Type:         roomType,
		Name:         name,
		Participants: participants,
		Settings:     settings,
		Status:       RoomActive,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := room.validateParticipants(room.Participants); err != nil {
		return Room{}, err
	}
	return room, nil
}

// validateParticipants checks the candidate participant set against the
// room-type invariants. Used both at creation and before every membership
// mutation, so a violation can never be partially applied.
func (r Room) validateParticipants(candidate []Participant) error {
	if hasDuplicates(candidate) {
		return errors.NewValidation("duplicate participant")
	}
	switch r.Type {
	case RoomDirect:
		if len(candidate) != 2 {
			return errors.NewValidation("DIRECT rooms require exactly 2 participants")
		}
		for _, p := range candidate {
			if p.Role != RoleMember {
				return errors.NewValidation("DIRECT room participants must have role MEMBER")
			}
		}
	case RoomGroup:
		if len(candidate) < 1 {
			return errors.NewValidation("GROUP rooms require at least 1 participant")
		}
		if len(candidate) > r.maxParticipants() {
			return errors.NewValidation("Maximum %d participants allowed", r.maxParticipants())
		}
		if !lo.SomeBy(candidate, func(p Participant) bool { return p.Role == RoleOwner }) {
			return errors.NewValidation("GROUP rooms require at least one OWNER")
		}
	default:
		return errors.NewValidation("unknown room type %q", r.Type)
	}
	return nil
}

func (r Room) maxParticipants() int {
	if r.Settings.MaxParticipants > 0 && r.Settings.MaxParticipants < HardMaxParticipants {
		return r.Settings.MaxParticipants
	}
	return HardMaxParticipants
}

func hasDuplicates(participants []Participant) bool {
	seen := make(map[uuid.UUID]struct{}, len(participants))
	for _, p := range participants {
		if _, ok := seen[p.UserID]; ok {
			return true
		}
		seen[p.UserID] = struct{}{}
	}
	return false
}

// Participant returns the membership record for a user.
func (r Room) Participant(userID uuid.UUID) (Participant, bool) {
	return lo.Find(r.Participants, func(p Participant) bool { return p.UserID == userID })
}

func (r Room) IsMember(userID uuid.UUID) bool {
	_, ok := r.Participant(userID)
	return ok
}

// HasAIPersona reports whether an automated participant is present and the
// room settings allow AI replies.
func (r Room) HasAIPersona() bool {
	if !r.Settings.AllowAIPersonas {
		return false
	}
	return lo.SomeBy(r.Participants, func(p Participant) bool { return p.Role == RoleAIPersona })
}

// AIPersona returns the first automated participant of the room.
func (r Room) AIPersona() (Participant, bool) {
	return lo.Find(r.Participants, func(p Participant) bool { return p.Role == RoleAIPersona })
}

// AddParticipants appends the given participants, rejecting the whole batch
// if the result would violate the room-type bounds. On success the room
// version advances by exactly one regardless of batch size.
func (r *Room) AddParticipants(participants []Participant, now time.Time) error {
	candidate := append(append([]Participant{}, r.Participants...), participants...)
	if err := r.validateParticipants(candidate); err != nil {
		return err
	}
	r.Participants = candidate
	r.bump(now)
	return nil
}

// RemoveParticipants drops the given user ids. Authorization (owner-only
// removal of others) is checked by the caller before the mutation reaches
// the room, so only structural invariants are enforced here.
func (r *Room) RemoveParticipants(userIDs []uuid.UUID, now time.Time) error {
	drop := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		if !r.IsMember(id) {
			return errors.NewValidation("user %s is not a participant", id)
		}
		drop[id] = struct{}{}
	}
	candidate := lo.Reject(r.Participants, func(p Participant, _ int) bool {
		_, ok := drop[p.UserID]
		return ok
	})
	if err := r.validateParticipants(candidate); err != nil {
		return err
	}
	r.Participants = candidate
	r.bump(now)
	return nil
}

// RoomPatch carries the mutable fields of a room:update request.
// Nil fields are left untouched.
type RoomPatch struct {
	Name     *string       `json:"name,omitempty"`
	Settings *RoomSettings `json:"settings,omitempty"`
	Status   *RoomStatus   `json:"status,omitempty"`
}

// Apply merges the patch and advances the version.
func (r *Room) Apply(patch RoomPatch, now time.Time) error {
	if patch.Status != nil {
		switch *patch.Status {
		case RoomActive, RoomArchived:
		default:
			return errors.NewValidation("unknown room status %q", *patch.Status)
		}
	}
	if patch.Name != nil {
		r.Name = *patch.Name
	}
	if patch.Settings != nil {
		r.Settings = *patch.Settings
	}
	if patch.Status != nil {
		r.Status = *patch.Status
	}
	r.bump(now)
	return nil
}

func (r *Room) bump(now time.Time) {
	r.Version++
	r.UpdatedAt = now
}
