package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func member(role ParticipantRole) Participant {
	return Participant{UserID: uuid.New(), Role: role, JoinedAt: time.Now(), LastReadAt: time.Now()}
}

func members(n int, role ParticipantRole) []Participant {
	out := make([]Participant, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, member(role))
	}
	return out
}

func TestNewRoom_Direct(t *testing.T) {
	req := require.New(t)
	now := time.Now()

	room, err := NewRoom(RoomDirect, "", members(2, RoleMember), RoomSettings{}, now)

	req.NoError(err)
	req.Equal(RoomActive, room.Status)
	req.Equal(uint64(1), room.Version)
	req.Len(room.Participants, 2)
}

func TestNewRoom_DirectRequiresExactlyTwoMembers(t *testing.T) {
	req := require.New(t)
	now := time.Now()

	_, err := NewRoom(RoomDirect, "", members(3, RoleMember), RoomSettings{}, now)
	req.Error(err)

	_, err = NewRoom(RoomDirect, "", members(1, RoleMember), RoomSettings{}, now)
	req.Error(err)

	// An OWNER has no meaning in a DIRECT room.
	participants := []Participant{member(RoleOwner), member(RoleMember)}
	_, err = NewRoom(RoomDirect, "", participants, RoomSettings{}, now)
	req.Error(err)
}

func TestNewRoom_GroupRequiresOwner(t *testing.T) {
	req := require.New(t)

	_, err := NewRoom(RoomGroup, "trip", members(3, RoleMember), RoomSettings{}, time.Now())

	req.Error(err)
}

func TestNewRoom_GroupOverCapacity(t *testing.T) {
	req := require.New(t)
	participants := append([]Participant{member(RoleOwner)}, members(50, RoleMember)...)

	_, err := NewRoom(RoomGroup, "trip", participants, RoomSettings{}, time.Now())

	req.Error(err)
	req.EqualError(err, fmt.Sprintf("Maximum %d participants allowed", HardMaxParticipants))
}

func TestNewRoom_GroupHonorsSettingsCap(t *testing.T) {
	req := require.New(t)
	participants := append([]Participant{member(RoleOwner)}, members(3, RoleMember)...)

	_, err := NewRoom(RoomGroup, "trip", participants, RoomSettings{MaxParticipants: 3}, time.Now())

	req.EqualError(err, "Maximum 3 participants allowed")
}

func TestNewRoom_RejectsDuplicates(t *testing.T) {
	req := require.New(t)
	p := member(RoleMember)

	_, err := NewRoom(RoomDirect, "", []Participant{p, p}, RoomSettings{}, time.Now())

	req.Error(err)
}

func TestRoom_AddParticipants_BumpsVersionOnce(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room, err := NewRoom(RoomGroup, "trip", []Participant{member(RoleOwner)}, RoomSettings{}, now)
	req.NoError(err)

	err = room.AddParticipants(members(3, RoleMember), now)

	req.NoError(err)
	req.Equal(uint64(2), room.Version)
	req.Len(room.Participants, 4)
}

func TestRoom_AddParticipants_FailureLeavesRoomUntouched(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room, err := NewRoom(RoomGroup, "trip", []Participant{member(RoleOwner)}, RoomSettings{MaxParticipants: 2}, now)
	req.NoError(err)

	err = room.AddParticipants(members(2, RoleMember), now)

	req.Error(err)
	req.Equal(uint64(1), room.Version)
	req.Len(room.Participants, 1)
}

func TestRoom_RemoveParticipants(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	owner := member(RoleOwner)
	leaving := member(RoleMember)
	room, err := NewRoom(RoomGroup, "trip", []Participant{owner, leaving}, RoomSettings{}, now)
	req.NoError(err)

	err = room.RemoveParticipants([]uuid.UUID{leaving.UserID}, now)

	req.NoError(err)
	req.Equal(uint64(2), room.Version)
	req.False(room.IsMember(leaving.UserID))
}

func TestRoom_RemoveParticipants_UnknownUser(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room, err := NewRoom(RoomGroup, "trip", []Participant{member(RoleOwner)}, RoomSettings{}, now)
	req.NoError(err)

	err = room.RemoveParticipants([]uuid.UUID{uuid.New()}, now)

	req.Error(err)
	req.Equal(uint64(1), room.Version)
}

func TestRoom_RemoveParticipants_CannotRemoveLastOwner(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	owner := member(RoleOwner)
	room, err := NewRoom(RoomGroup, "trip", []Participant{owner, member(RoleMember)}, RoomSettings{}, now)
	req.NoError(err)

	err = room.RemoveParticipants([]uuid.UUID{owner.UserID}, now)

	req.Error(err)
	req.True(room.IsMember(owner.UserID))
}

func TestRoom_Apply(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room, err := NewRoom(RoomGroup, "trip", []Participant{member(RoleOwner)}, RoomSettings{}, now)
	req.NoError(err)

	name := "renamed"
	archived := RoomArchived
	err = room.Apply(RoomPatch{Name: &name, Status: &archived}, now)

	req.NoError(err)
	req.Equal("renamed", room.Name)
	req.Equal(RoomArchived, room.Status)
	req.Equal(uint64(2), room.Version)
}

func TestRoom_Apply_UnknownStatus(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room, err := NewRoom(RoomGroup, "trip", []Participant{member(RoleOwner)}, RoomSettings{}, now)
	req.NoError(err)

	bogus := RoomStatus("FROZEN")
	err = room.Apply(RoomPatch{Status: &bogus}, now)

	req.Error(err)
	req.Equal(uint64(1), room.Version)
}

func TestRoom_HasAIPersona(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	participants := []Participant{member(RoleOwner), member(RoleAIPersona)}

	allowed, err := NewRoom(RoomGroup, "trip", participants, RoomSettings{AllowAIPersonas: true}, now)
	req.NoError(err)
	req.True(allowed.HasAIPersona())

	// Settings gate the persona even when one is a participant.
	muted, err := NewRoom(RoomGroup, "trip", participants, RoomSettings{}, now)
	req.NoError(err)
	req.False(muted.HasAIPersona())
}
