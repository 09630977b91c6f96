// file: internals/helpers/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind adalah kategori error yang dipakai client untuk branching.
type Kind string

const (
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindInvalidState Kind = "INVALID_STATE"
	KindConflict     Kind = "CONFLICT"
	KindValidation   Kind = "VALIDATION_ERROR"
	KindInternal     Kind = "INTERNAL_ERROR"
)

// Kode stabil (machine readable) per kasus domain.
const (
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeForbiddenRole           = "FORBIDDEN_ROLE"
	CodeNotMember               = "NOT_MEMBER"
	CodeNotOwner                = "NOT_OWNER"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeClassroomNotFound       = "CLASSROOM_NOT_FOUND"
	CodeAssignmentNotFound      = "ASSIGNMENT_NOT_FOUND"
	CodeAssignmentFileNotFound  = "ASSIGNMENT_FILE_NOT_FOUND"
	CodeSubmissionNotFound      = "SUBMISSION_NOT_FOUND"
	CodeSessionNotFound         = "SESSION_NOT_FOUND"
	CodeNotificationNotFound    = "NOTIFICATION_NOT_FOUND"
	CodeBlobNotFound            = "BLOB_NOT_FOUND"
	CodeAlreadySubmitted        = "ALREADY_SUBMITTED"
	CodeAlreadyCheckedIn        = "ALREADY_CHECKED_IN"
	CodeAlreadyMember           = "ALREADY_MEMBER"
	CodeEmailTaken              = "EMAIL_TAKEN"
	CodeSessionAlreadyOpen      = "SESSION_ALREADY_OPEN"
	CodeConcurrentUpdate        = "CONCURRENT_UPDATE"
	CodeCannotResubmit          = "CANNOT_RESUBMIT"
	CodeCannotAllowResubmission = "CANNOT_ALLOW_RESUBMISSION"
	CodeOutsideCheckInWindow    = "OUTSIDE_CHECKIN_WINDOW"
	CodeInvalidJoinCode         = "INVALID_JOIN_CODE"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeInvalidStorageKey       = "INVALID_STORAGE_KEY"
	CodeStorageKeyInUse         = "STORAGE_KEY_IN_USE"
	CodeInternal                = "INTERNAL"
)

// Error adalah error terstruktur yang dikembalikan semua service.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is mencocokkan berdasarkan Kind+Code, sehingga errors.Is(err, apperr.AlreadySubmitted) jalan.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind Kind, code, msg string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Err: err}
}

func Unauthorized(msg string) *Error { return New(KindUnauthorized, CodeUnauthorized, msg) }
func Forbidden(code, msg string) *Error {
	return New(KindForbidden, code, msg)
}
func NotFound(code, msg string) *Error     { return New(KindNotFound, code, msg) }
func InvalidState(code, msg string) *Error { return New(KindInvalidState, code, msg) }
func Conflict(code, msg string) *Error     { return New(KindConflict, code, msg) }
func Validation(msg string) *Error         { return New(KindValidation, CodeInvalidInput, msg) }
func Internal(err error) *Error {
	return Wrap(KindInternal, CodeInternal, "internal error", err)
}

// Sentinel untuk errors.Is di test & controller.
var (
	AlreadySubmitted     = &Error{Kind: KindConflict, Code: CodeAlreadySubmitted}
	AlreadyCheckedIn     = &Error{Kind: KindConflict, Code: CodeAlreadyCheckedIn}
	SessionAlreadyOpen   = &Error{Kind: KindConflict, Code: CodeSessionAlreadyOpen}
	CannotResubmit       = &Error{Kind: KindInvalidState, Code: CodeCannotResubmit}
	OutsideCheckInWindow = &Error{Kind: KindInvalidState, Code: CodeOutsideCheckInWindow}
)

// KindOf mengembalikan Kind dari error apa pun (default INTERNAL).
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsUniqueViolation: pg 23505, gorm ErrDuplicatedKey (TranslateError), atau teks sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// FromDB menerjemahkan error gorm: not found → notFound, unique → conflict, sisanya internal.
// notFound/conflict boleh nil; kalau nil, kasus itu jatuh ke internal.
func FromDB(err error, notFound, conflict *Error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if conflict != nil && IsUniqueViolation(err) {
		return conflict
	}
	return Internal(err)
}
