package domain

import "errors"

var (
	ErrInvalidTransition  = errors.New("invalid stage transition")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUserInactive       = errors.New("user account is inactive")

	ErrRequestNotFound      = errors.New("request not found")
	ErrWorkflowNotFound     = errors.New("workflow record not found")
	ErrUnknownRequestType   = errors.New("unknown request type")
	ErrRequestLocked        = errors.New("request can no longer be edited")
	ErrDuplicateRequest     = errors.New("request already exists")
	ErrNotificationNotFound = errors.New("notification not found")
)

// Staff token failures. Each maps to its own 401 message.
var (
	ErrAccessCodeInvalid = errors.New("invalid access code")
	ErrTokenMissing      = errors.New("no staff token provided")
	ErrTokenMalformed    = errors.New("malformed staff token")
	ErrTokenExpired      = errors.New("staff token has expired")
	ErrTokenInvalid      = errors.New("invalid staff token")
	ErrNotStaff          = errors.New("token does not belong to a staff member")
)
