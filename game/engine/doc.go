// Package engine provides the room state machine for Word Duel.
//
// The engine package implements:
//   - Two-slot rooms with creator-first turn order
//   - Secret word submission gating the start of play
//   - Alternating guess/evaluation exchange with win detection
//   - Rules profiles (classic and strict turn handling)
//
// Core Types:
//
// Room holds one game session and guards it with its own mutex, so rooms
// never contend with each other. GuessRecord is one entry of the append-only
// guess log. Rules selects between the permissive classic behaviour and the
// strict profile that rejects out-of-turn actions.
//
// Usage:
//
//	room := engine.NewRoom("AB12CD", engine.DefaultRules())
//	room.AddParticipant(p1)
//	room.AddParticipant(p2)
//	room.SubmitWord(p1, "apple")
//	room.SubmitWord(p2, "melon")
//
//	outcome, err := room.SubmitGuess(p1, "lemon")
//	if err == nil && !outcome.Win {
//		room.SubmitEvaluation(p2, json.RawMessage(`["yellow","yellow","gray","gray","yellow"]`))
//	}
//
// Game Flow:
//
// A room moves from waiting (fewer than two players) to ready (both seats
// taken) to playing (both words submitted) and finally to over when a guess
// matches the opponent's word. Evaluations are opaque JSON produced by the
// opponent; the engine stores and returns them without looking inside.
package engine
