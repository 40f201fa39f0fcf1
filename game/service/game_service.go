package service

import (
	"context"

	"github.com/wricardo/wordduel/game/engine"
	"github.com/wricardo/wordduel/game/session"
)

// Coordinator turns inbound player actions into room transitions and
// addressed notifications
type Coordinator interface {
	// Player actions
	Handle(ctx context.Context, connID string, action Action) []Notification
	Dispatch(ctx context.Context, connID string, action Action)

	// Inspection
	ListRooms(ctx context.Context) ([]*RoomInfo, error)
	GetRoom(ctx context.Context, roomID string) (*RoomInfo, error)
	Rules() engine.Rules
}

// RoomRegistry defines room storage operations
type RoomRegistry interface {
	Create() (*engine.Room, error)
	Get(id string) (*engine.Room, error)
	RemoveIfParticipant(connID string) (session.Removal, bool)
	List() []*engine.Room
	Rules() engine.Rules
}

// Transport delivers notifications to live connections. Unknown or already
// closed connections are skipped silently.
type Transport interface {
	Send(connID string, event string, data any)
	Broadcast(connIDs []string, event string, data any)
}
