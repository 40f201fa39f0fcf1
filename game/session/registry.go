package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/wordduel/game/engine"
)

const maxCreateAttempts = 1000

var ErrIDSpaceExhausted = errors.New("could not allocate a free room id")

// Removal describes a room destroyed by RemoveIfParticipant
type Removal struct {
	RoomID       string
	Participants []string
}

// Registry owns every live room of the process
type Registry struct {
	rooms map[string]*engine.Room
	ids   IDGenerator
	rules engine.Rules
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry whose rooms follow rules
func NewRegistry(ids IDGenerator, rules engine.Rules) *Registry {
	if ids == nil {
		ids = RandomIDGenerator{}
	}
	return &Registry{
		rooms: make(map[string]*engine.Room),
		ids:   ids,
		rules: rules,
	}
}

// Create allocates a fresh id and inserts an empty room under it
func (r *Registry) Create() (*engine.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		id := NormalizeID(r.ids.Generate())
		if id == "" {
			continue
		}
		if _, exists := r.rooms[id]; exists {
			log.Debug().Str("room", id).Msg("room id collision, retrying")
			continue
		}

		room := engine.NewRoom(id, r.rules)
		r.rooms[id] = room
		return room, nil
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrIDSpaceExhausted, maxCreateAttempts)
}

// Get retrieves a room by id (case-insensitive)
func (r *Registry) Get(id string) (*engine.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, exists := r.rooms[NormalizeID(id)]
	if !exists {
		return nil, engine.ErrRoomNotFound
	}
	return room, nil
}

// RemoveIfParticipant destroys the first room that seats connID. At most one
// room is removed per call; a connection without a room is a no-op.
func (r *Registry) RemoveIfParticipant(connID string) (Removal, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, room := range r.rooms {
		if !room.HasParticipant(connID) {
			continue
		}

		delete(r.rooms, id)
		participants, _ := room.Close()
		return Removal{RoomID: id, Participants: participants}, true
	}

	return Removal{}, false
}

// List returns all live rooms
func (r *Registry) List() []*engine.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*engine.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		result = append(result, room)
	}
	return result
}

// Count returns the number of live rooms
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Rules returns the profile applied to new rooms
func (r *Registry) Rules() engine.Rules {
	return r.rules
}
