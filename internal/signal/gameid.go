package signal

import (
	"strings"

	"github.com/google/uuid"
)

// gameIDLength is the length of minted game identifiers. Tokens are
// opaque; uniqueness is only needed across concurrently active sessions.
const gameIDLength = 12

// GameIDAllocator mints opaque session identifiers for accepted
// game_start requests.
type GameIDAllocator interface {
	NewGameID() string
}

// UUIDAllocator derives short tokens from random UUIDs.
type UUIDAllocator struct{}

// NewGameID returns a fresh opaque token.
func (UUIDAllocator) NewGameID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:gameIDLength]
}
