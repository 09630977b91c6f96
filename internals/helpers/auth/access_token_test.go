package helper

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseAccessToken(t *testing.T) {
	id := uuid.New()
	now := time.Now().UTC()

	raw, exp, err := IssueAccessToken("rahasia", id, "teacher", now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).Unix(), exp.Unix())

	claims, err := ParseAccessToken("rahasia", raw)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "teacher", claims.Role)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())

	_, err = ParseAccessToken("salah", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	id := uuid.New()

	expired, _, err := IssueAccessToken("rahasia", id, "student", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = ParseAccessToken("rahasia", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "student",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("rahasia"))
	require.NoError(t, err)
	_, err = ParseAccessToken("rahasia", noID)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAccessToken("rahasia", "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = IssueAccessToken(" ", id, "student", time.Now(), time.Hour)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}
