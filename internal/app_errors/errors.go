package app_errors

import (
	"errors"
	"fmt"
)

// Kind groups error codes by how callers should react to them.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindAlreadyExists
	KindPermissionDenied
	KindPreconditionFailed
	KindValidation
	KindConflict
	KindUnauthenticated
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindPermissionDenied:
		return "permission_denied"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is a typed application error. Code doubles as the message-catalog key.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code, so wrapped copies still
// compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap attaches cause to a copy of base.
func Wrap(base *Error, cause error) error {
	return &Error{Kind: base.Kind, Code: base.Code, Message: base.Message, cause: cause}
}

// Storage wraps an unexpected persistence failure. Typed errors pass through.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return Wrap(ErrStorage, err)
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// CodeOf reports the code of the first *Error in err's chain.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

var (
	ErrUserNotFound         = New(KindNotFound, "user_not_found", "user not found")
	ErrLevelNotFound        = New(KindNotFound, "level_not_found", "level not found")
	ErrVideoNotFound        = New(KindNotFound, "video_not_found", "video not found")
	ErrQuestionNotFound     = New(KindNotFound, "question_not_found", "question not found")
	ErrAnswerNotFound       = New(KindNotFound, "answer_not_found", "answer not found")
	ErrWelcomeVideoNotFound = New(KindNotFound, "welcome_video_not_found", "welcome video not found")
	ErrImageNotFound        = New(KindNotFound, "image_not_found", "image not found")
)

var (
	ErrUserExists       = New(KindAlreadyExists, "user_exists", "user already exists")
	ErrAlreadyEnrolled  = New(KindAlreadyExists, "already_enrolled", "user is already enrolled in level")
	ErrAlreadyPurchased = New(KindAlreadyExists, "level_already_purchased", "level has already been purchased")
	ErrAlreadyAssigned  = New(KindAlreadyExists, "level_already_assigned", "level is already assigned to this user")
	ErrDuplicateVideo   = New(KindAlreadyExists, "duplicate_video_order", "video with this order already exists in the level")
)

var (
	ErrAccessDenied        = New(KindPermissionDenied, "access_denied", "access denied")
	ErrAdminAccessRequired = New(KindPermissionDenied, "admin_access_required", "admin access required")
)

var (
	ErrLevelNotPurchased  = New(KindPreconditionFailed, "level_not_purchased", "level has not been purchased")
	ErrNotEnrolled        = New(KindPreconditionFailed, "not_enrolled", "user is not enrolled in this level")
	ErrVideoNotOpened     = New(KindPreconditionFailed, "video_not_opened", "video must be opened before answering its questions")
	ErrExamNotAvailable   = New(KindPreconditionFailed, "exam_not_available", "final exam is not available until every video is completed")
	ErrVideoNotAccessible = New(KindPreconditionFailed, "video_not_accessible", "video is not accessible")
)

var (
	ErrInvalidInput    = New(KindValidation, "invalid_input", "invalid input")
	ErrInvalidPassword = New(KindValidation, "password_too_short", "password must be at least 6 characters long")
	ErrNotImage        = New(KindValidation, "invalid_file_type", "only images are allowed")
	ErrFileSize        = New(KindValidation, "file_too_large", "file size error")
	ErrVideosDiffer    = New(KindValidation, "videos_in_different_levels", "videos belong to different levels")
)

var (
	ErrInvalidCredentials = New(KindUnauthenticated, "invalid_credentials", "invalid email or password")
	ErrTokenExpired       = New(KindUnauthenticated, "token_expired", "token expired")
	ErrInvalidToken       = New(KindUnauthenticated, "invalid_token", "invalid token")
)

var (
	ErrConflict = New(KindConflict, "conflict", "concurrent modification, retry the request")
	ErrStorage  = New(KindStorage, "storage_error", "storage error")
)

// Invalid returns a validation error naming the offending field.
func Invalid(format string, args ...any) error {
	return Wrap(ErrInvalidInput, fmt.Errorf(format, args...))
}
