package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestErrorIsMatchesKindAndCode(t *testing.T) {
	err := Conflict(CodeAlreadySubmitted, "already submitted")
	wrapped := fmt.Errorf("create: %w", err)

	assert.True(t, errors.Is(wrapped, AlreadySubmitted))
	assert.False(t, errors.Is(wrapped, AlreadyCheckedIn))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm duplicated", gorm.ErrDuplicatedKey, true},
		{"pg 23505", &pgconn.PgError{Code: "23505"}, true},
		{"pg other", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite text", errors.New("constraint failed: UNIQUE constraint failed: submissions.submission_user_id (2067)"), true},
		{"plain", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestFromDB(t *testing.T) {
	nf := NotFound(CodeSubmissionNotFound, "not found")
	cf := Conflict(CodeAlreadySubmitted, "dup")

	assert.Nil(t, FromDB(nil, nf, cf))
	assert.Equal(t, nf, FromDB(gorm.ErrRecordNotFound, nf, cf))
	assert.Equal(t, cf, FromDB(gorm.ErrDuplicatedKey, nf, cf))
	assert.Equal(t, KindInternal, KindOf(FromDB(gorm.ErrRecordNotFound, nil, nil)))

	already := InvalidState(CodeCannotResubmit, "x")
	assert.Equal(t, already, FromDB(already, nf, cf))
}
