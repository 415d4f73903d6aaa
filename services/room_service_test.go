package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tripchat/domain"
	"tripchat/errors"
)

func TestRoomService_CreateDirectRoom(t *testing.T) {
	req := require.New(t)
	env := newServiceEnv(t)

	room, err := env.rooms.CreateRoom(env.ctx, CreateRoomSpec{
		Type: domain.RoomDirect,
		Participants: []ParticipantSpec{
			{UserID: uuid.New(), Role: domain.RoleMember},
			{UserID: uuid.New(), Role: domain.RoleMember},
		},
	})

	req.NoError(err)
	req.Equal(domain.RoomActive, room.Status)
	req.Equal(uint64(1), room.Version)
	req.Len(room.Participants, 2)
}

func TestRoomService_CreateGroupRoom_OverCapacity(t *testing.T) {
	req := require.New(t)
	env := newServiceEnv(t)

	_, err := env.rooms.CreateRoom(env.ctx, groupSpec(uuid.New(), memberSpecs(50)...))

	req.EqualError(err, "Maximum 50 participants allowed")
}

func TestRoomService_CreateRoom_InvalidSpec(t *testing.T) {
	req := require.New(t)
	env := newServiceEnv(t)

	_, err := env.rooms.CreateRoom(env.ctx, CreateRoomSpec{
		Type: "HUDDLE",
		Participants: []ParticipantSpec{
			{UserID: uuid.New(), Role: domain.RoleMember},
		},
	})

	var validation errors.ValidationError
	req.ErrorAs(err, &validation)
}

func TestRoomService_AnyMemberMayAddParticipants(t *testing.T) {
	req := require.New(t)
	env := newServiceEnv(t)
	owner := uuid.New()
	member := uuid.New()
	room, err := env.rooms.CreateRoom(env.ctx, groupSpec(owner, ParticipantSpec{UserID: member, Role: domain.RoleMember}))
	req.NoError(err)

	updated, err := env.rooms.ManageParticipants(env.ctx, room.ID, member, OpAdd, memberSpecs(1))

	req.NoError(err)
	req.Equal(uint64(2), updated.Version)
	req.Len(updated.Participants, 3)
}

func TestRoomService_OutsiderMayNotAddParticipants(t *testing.T) {
	req := require.New(t)
	env := newServiceEnv(t)
	room, err := env.rooms.CreateRoom(env.ctx, groupSpec(uuid.New()))
	req.NoError(err)

	_, err = env.rooms.ManageParticipants(env.ctx, room.ID, uuid.New(), OpAdd, memberSpecs(1))

	var authz errors.AuthorizationError
	req.ErrorAs(err, &authz)

	snapshot, err := env.rooms.Room(env.ctx, room.ID)
	req.NoError(err)
	req.Equal(uint64(1), snapshot.Version)
}

func TestRoomService_MemberMayRemoveSelf(t *testing.T) {
	req := require.New(t)
	env := newServiceEnv(t)
	owner := uuid.New()
	member := uuid.New()
	room, err := env.rooms.CreateRoom(env.ctx, groupSpec(owner, ParticipantSpec{UserID: member, Role: domain.RoleMember}))
	req.NoError(err)

	updated, err := env.rooms.ManageParticipants(env.ctx, room.ID, member, OpRemove,
		[]ParticipantSpec{{UserID: member, Role: domain.RoleMember}})

	req.NoError(err)
	req.False(updated.IsMember(member))
}

func TestRoomService_NonOwnerRemovalOfOthersConsumesNoVersion(t *testing.T) {
	req := require.New(t)
	env := newServiceEnv(t)
	owner := uuid.New()
	member := uuid.New()
	victim := uuid.New()
	room, err := env.rooms.CreateRoom(env.ctx, groupSpec(owner,
		ParticipantSpec{UserID: member, Role: domain.RoleMember},
		ParticipantSpec{UserID: victim, Role: domain.RoleMember}))
	req.NoError(err)

	_, err = env.rooms.ManageParticipants(env.ctx, room.ID, member, OpRemove,
		[]ParticipantSpec{{UserID: victim, Role: domain.RoleMember}})

	var authz errors.AuthorizationError
	req.ErrorAs(err, &authz)

	snapshot, err := env.rooms.Room(env.ctx, room.ID)
	req.NoError(err)
	req.Equal(uint64(1), snapshot.Version)
	req.True(snapshot.IsMember(victim))
}

func TestRoomService_UpdateGroupRoom_OwnerOnly(t *testing.T) {
	req := require.New(t)
	env := newServiceEnv(t)
	owner := uuid.New()
	member := uuid.New()
	room, err := env.rooms.CreateRoom(env.ctx, groupSpec(owner, ParticipantSpec{UserID: member, Role: domain.RoleMember}))
	req.NoError(err)

	name := "renamed"
	_, err = env.rooms.UpdateRoom(env.ctx, room.ID, member, domain.RoomPatch{Name: &name})
	var authz errors.AuthorizationError
	req.ErrorAs(err, &authz)

	updated, err := env.rooms.UpdateRoom(env.ctx, room.ID, owner, domain.RoomPatch{Name: &name})
	req.NoError(err)
	req.Equal("renamed", updated.Name)
	req.Equal(uint64(2), updated.Version)
}

func TestRoomService_ValidateRoomAccess(t *testing.T) {
	req := require.New(t)
	env := newServiceEnv(t)
	owner := uuid.New()
	room, err := env.rooms.CreateRoom(env.ctx, groupSpec(owner))
	req.NoError(err)

	req.True(env.rooms.ValidateRoomAccess(env.ctx, room.ID, owner))
	req.False(env.rooms.ValidateRoomAccess(env.ctx, room.ID, uuid.New()))
	req.False(env.rooms.ValidateRoomAccess(env.ctx, uuid.New(), owner))
}
