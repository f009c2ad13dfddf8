// Package presence provides participant tracking and room occupancy
// management for the signaling core.
package presence

import "sync"

// Participant is a connected client that has joined a room.
type Participant struct {
	// ConnID is the connection identifier, stable for the connection's
	// lifetime and unique at any instant.
	ConnID string
	// Username is the display name supplied at join time. Not unique.
	Username string
	// Room is the room the participant currently occupies. A participant
	// belongs to at most one room at a time.
	Room string
}

// Registry is the authoritative mapping from connection identifier to
// participant, together with the derived per-room membership index.
// The index is maintained inside the same lock as the participant map,
// so the two can never be observed out of sync.
// All methods are safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	participants map[string]*Participant
	rooms        map[string]map[string]uint64 // room → connID → join sequence
	seq          uint64
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		participants: make(map[string]*Participant),
		rooms:        make(map[string]map[string]uint64),
	}
}

// Register records the participant for connID, overwriting any prior
// entry. A connection re-joining a different room is removed from its
// previous room's membership in the same step.
//
// Precondition: connID, username, and room must be non-empty.
// Postcondition: Returns the size of room after the join.
func (r *Registry) Register(connID, username, room string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.participants[connID]; ok && prev.Room != room {
		r.evict(prev.Room, connID)
	}

	r.participants[connID] = &Participant{
		ConnID:   connID,
		Username: username,
		Room:     room,
	}

	members := r.rooms[room]
	if members == nil {
		members = make(map[string]uint64)
		r.rooms[room] = members
	}
	if _, ok := members[connID]; !ok {
		r.seq++
		members[connID] = r.seq
	}
	return len(members)
}

// Lookup returns the participant for the given connection.
//
// Postcondition: Returns (participant, true) if registered, or a zero
// Participant and false otherwise.
func (r *Registry) Lookup(connID string) (Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[connID]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// Remove deletes the participant and its room membership.
//
// Postcondition: Returns the removed participant and true, or a zero
// Participant and false if the connection was never registered.
func (r *Registry) Remove(connID string) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok {
		return Participant{}, false
	}
	r.evict(p.Room, connID)
	delete(r.participants, connID)
	return *p, true
}

// evict drops connID from the room's member set and dematerializes the
// room once empty. Caller must hold the write lock.
func (r *Registry) evict(room, connID string) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// MembersOf returns the participants in the given room in join order.
//
// Postcondition: Returns a slice of participant copies (may be empty).
func (r *Registry) MembersOf(room string) []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[room]
	if !ok {
		return nil
	}

	out := make([]Participant, 0, len(members))
	for connID := range members {
		if p, ok := r.participants[connID]; ok {
			out = append(out, *p)
		}
	}
	// Insertion sort on join sequence; rooms are small.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && members[out[j-1].ConnID] > members[out[j].ConnID]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// SizeOf returns the number of participants in the given room.
func (r *Registry) SizeOf(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// RoomCount returns the number of materialized rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// ParticipantCount returns the total number of registered participants.
func (r *Registry) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}
