// Package service provides the session coordinator for Word Duel.
//
// The service package implements:
//   - Dispatch of inbound player actions to room transitions
//   - Explicit addressing of outbound notifications
//   - Read-only room inspection for the HTTP and MCP surfaces
//
// Core Interfaces:
//
// Coordinator is the main service interface. RoomRegistry is the storage it
// is constructed with (session.Registry in production) and Transport is the
// delivery side (the WebSocket hub).
//
// Architecture:
//
// The coordinator sits between the transport layer and the rooms. The
// transport hands it an action tagged with the originating connection; the
// coordinator resolves the room, applies the transition and returns a list of
// notifications. Each notification carries the connection ids it is meant for,
// resolved from the room's participants, so the transport never needs a
// channel or group abstraction of its own:
//
//	createRoom        -> roomCreated to the sender
//	joinRoom          -> roomJoined to both players, or error to the sender
//	submitWord        -> updateWords to the room, startGame once both words are in
//	makeGuess         -> gameOver to the room, or opponentGuess + guessSent
//	submitEvaluation  -> guessEvaluated then nextTurn to the room
//	disconnect        -> playerDisconnected to the remaining player
//
// Actions that fail are dropped silently apart from joinRoom, whose failure is
// reported to the sender.
//
// Usage:
//
//	registry := session.NewRegistry(session.RandomIDGenerator{}, engine.DefaultRules())
//	coordinator := service.NewCoordinator(registry, hub)
//
//	coordinator.Dispatch(ctx, connID, service.Action{Type: service.ActionCreateRoom})
package service
