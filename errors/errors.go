package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic  = fmt.Errorf("worker panic")
	ErrSinkOverflow = fmt.Errorf("session sink full, event shed")

	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrUserNotFound       = fmt.Errorf("user not found")

	ErrRoomNotFound          = fmt.Errorf("room not found")
	ErrRoomNumberTaken       = fmt.Errorf("room number already exists")
	ErrIncorrectRoomPassword = fmt.Errorf("incorrect room password")

	ErrConversationNotFound = fmt.Errorf("conversation not found")
	ErrMessageNotFound      = fmt.Errorf("message not found")
	ErrNotMessageSender     = fmt.Errorf("only the sender can delete a message")
	ErrDeleteWindowExpired  = fmt.Errorf("messages can only be deleted within 15 minutes of sending")

	ErrUnknownCommand = fmt.Errorf("unknown command")
)

// MapToHTTPStatus translates domain errors into HTTP status codes at the transport edge.
func MapToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUserAlreadyExists), errors.Is(err, ErrRoomNumberTaken):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrIncorrectRoomPassword):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrConversationNotFound),
		errors.Is(err, ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotMessageSender), errors.Is(err, ErrDeleteWindowExpired):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
