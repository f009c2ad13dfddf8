package signal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_ValidJoinPayload(t *testing.T) {
	var p JoinRoomPayload
	err := decode([]byte(`{"room":"lobby","username":"alice"}`), &p)
	require.NoError(t, err)
	assert.Equal(t, "lobby", p.Room)
	assert.Equal(t, "alice", p.Username)
}

func TestDecode_MissingPayloadVariants(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "{bad json", `"just a string"`} {
		var p JoinRoomPayload
		err := decode([]byte(raw), &p)
		assert.ErrorIs(t, err, ErrMissingPayload, "raw %q", raw)
	}
}

func TestDecode_MissingField(t *testing.T) {
	var p SendMessagePayload
	err := decode([]byte(`{"room":"lobby","username":"alice"}`), &p)

	var mfe *MissingFieldError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, "message", mfe.Field)
}

func TestDecode_EmptyStringFieldIsMissing(t *testing.T) {
	var p TargetPayload
	err := decode([]byte(`{"requested_user":""}`), &p)

	var mfe *MissingFieldError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, "requested_user", mfe.Field)
}

func TestFailMessage(t *testing.T) {
	msg := failMessage(CmdJoinRoom, &MissingFieldError{Field: "room"})
	assert.Equal(t, "join_room did not specify a room, command aborted", msg)

	msg = failMessage(CmdSendMessage, ErrMissingPayload)
	assert.Equal(t, "send_message had no payload, command aborted", msg)
}
