package signal

import (
	"bytes"
	"encoding/json"
)

// Command payloads are decoded and validated once at the boundary, before
// any handler side effect. Every required field is a non-empty string.

// JoinRoomPayload is the join_room command payload.
type JoinRoomPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

func (p *JoinRoomPayload) validate() error {
	if p.Room == "" {
		return &MissingFieldError{Field: "room"}
	}
	if p.Username == "" {
		return &MissingFieldError{Field: "username"}
	}
	return nil
}

// SendMessagePayload is the send_message command payload.
type SendMessagePayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

func (p *SendMessagePayload) validate() error {
	if p.Room == "" {
		return &MissingFieldError{Field: "room"}
	}
	if p.Username == "" {
		return &MissingFieldError{Field: "username"}
	}
	if p.Message == "" {
		return &MissingFieldError{Field: "message"}
	}
	return nil
}

// TargetPayload is the shared payload of invite, uninvite, and
// game_start: the connection identifier of the counterparty.
type TargetPayload struct {
	RequestedUser string `json:"requested_user"`
}

func (p *TargetPayload) validate() error {
	if p.RequestedUser == "" {
		return &MissingFieldError{Field: "requested_user"}
	}
	return nil
}

type validator interface {
	validate() error
}

// decode unmarshals a command payload and runs field validation.
// An absent, null, or malformed payload is reported as ErrMissingPayload.
func decode(raw []byte, v validator) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrMissingPayload
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return ErrMissingPayload
	}
	return v.validate()
}
