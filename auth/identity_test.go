package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tripchat/errors"
)

var secret = []byte("test-secret")

func TestParseIdentity_RoundTrip(t *testing.T) {
	req := require.New(t)
	actorID := uuid.New()

	token, err := NewToken(actorID, []string{"member", "beta"}, secret, time.Hour)
	req.NoError(err)

	identity, err := ParseIdentity(token, secret)
	req.NoError(err)
	req.Equal(actorID, identity.ActorID)
	req.Equal([]string{"member", "beta"}, identity.Roles)
}

func TestParseIdentity_WrongSecret(t *testing.T) {
	req := require.New(t)
	token, err := NewToken(uuid.New(), nil, secret, time.Hour)
	req.NoError(err)

	_, err = ParseIdentity(token, []byte("other-secret"))

	var authz errors.AuthorizationError
	req.ErrorAs(err, &authz)
}

func TestParseIdentity_Expired(t *testing.T) {
	req := require.New(t)
	token, err := NewToken(uuid.New(), nil, secret, -time.Hour)
	req.NoError(err)

	_, err = ParseIdentity(token, secret)

	req.Error(err)
}

func TestParseIdentity_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := ParseIdentity("not-a-token", secret)

	var authz errors.AuthorizationError
	req.ErrorAs(err, &authz)
}

func TestParseIdentity_SubjectMustBeActorID(t *testing.T) {
	req := require.New(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(secret)
	req.NoError(err)

	_, err = ParseIdentity(signed, secret)

	req.Error(err)
}

func TestParseIdentity_RejectsUnsignedAlgorithm(t *testing.T) {
	req := require.New(t)
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": uuid.New().String(),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	req.NoError(err)

	_, err = ParseIdentity(signed, secret)

	req.Error(err)
}
