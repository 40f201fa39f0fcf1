// Package session provides the room registry for Word Duel.
//
// The session package implements:
//   - Thread-safe room storage and retrieval
//   - Short, shareable room ID generation
//   - Room destruction when a participant disconnects
//
// Core Types:
//
// Registry is the process-wide owner of every live room. It is constructed
// explicitly and handed to the coordinator; nothing else reaches rooms
// directly. IDGenerator supplies candidate identifiers and RandomIDGenerator
// is the default implementation.
//
// Room Identifiers:
//
// Rooms use 6-character identifiers over [A-Z0-9] so players can read them
// out to each other. The generator does not promise uniqueness; Create keeps
// drawing until it finds an id that is not in use. Lookups are
// case-insensitive.
//
// Concurrency:
//
// The registry map is guarded by a read/write mutex and every room carries its
// own mutex, so work on different rooms never contends. Removal takes the
// registry lock and then closes the room under the room's lock; a mutation
// racing with removal either finishes first or sees the room as gone.
//
// Usage:
//
//	registry := session.NewRegistry(session.RandomIDGenerator{}, engine.DefaultRules())
//
//	room, err := registry.Create()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	room, err = registry.Get("ab12cd")
//
//	if removal, ok := registry.RemoveIfParticipant(connID); ok {
//		notify(removal.Participants)
//	}
package session
