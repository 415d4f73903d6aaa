// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type ParticipantRole string

const (
	RoleOwner     ParticipantRole = "OWNER"
	RoleMember    ParticipantRole = "MEMBER"
	RoleAIPersona ParticipantRole = "AI_PERSONA"
)

// ValidRole reports whether the role is one of the closed set.
func ValidRole(role ParticipantRole) bool {
	switch role {
	case RoleOwner, RoleMember, RoleAIPersona:
		return true
	default:
		return false
	}
}

// Participant is a membership record owned by exactly one Room.
// Removing a room destroys its participant records with it.
type Participant struct {
	UserID     uuid.UUID       `json:"userId"`
	Role       ParticipantRole `json:"role"`
	JoinedAt   time.Time       `json:"joinedAt"`
	LastReadAt time.Time       `json:"lastReadAt"`
}
