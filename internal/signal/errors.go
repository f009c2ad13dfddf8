package signal

import (
	"errors"
	"fmt"
)

// Command validation errors. All of them are recoverable: they are
// reported to the originating connection as a fail response and never
// terminate the connection or the process.
var (
	// ErrMissingPayload indicates the command carried no payload or one
	// that could not be decoded.
	ErrMissingPayload = errors.New("had no payload")
	// ErrUnknownSender indicates the acting connection has never joined
	// a room.
	ErrUnknownSender = errors.New("was sent by a connection that has not joined a room")
	// ErrTargetNotInRoom indicates the requested user is not a member of
	// the sender's room.
	ErrTargetNotInRoom = errors.New("requested a user that is not in the room")
)

// MissingFieldError indicates a required payload field was absent or empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("did not specify a %s", e.Field)
}

// failMessage renders a validation error into the client-facing failure
// message for the given command.
func failMessage(command string, err error) string {
	return fmt.Sprintf("%s %s, command aborted", command, err)
}
