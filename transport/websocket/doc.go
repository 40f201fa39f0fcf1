// Package websocket provides the real-time player transport for Word Duel.
//
// The websocket package implements:
//   - Per-connection identity and greeting
//   - Decoding of inbound player actions
//   - Addressed delivery of outbound events
//   - Keepalive and per-connection rate limiting
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub owns all
// connections. Each connection runs a read goroutine that decodes actions and
// hands them to a Dispatcher, and a write goroutine that drains its send
// buffer. The Hub itself satisfies service.Transport, so the coordinator can
// address events by connection id without knowing about sockets.
//
// Message Protocol:
//
//   - Incoming: {"type": "makeGuess", "roomId": "AB12CD", "guess": "apple"}
//   - Outgoing: {"event": "opponentGuess", "data": "apple"}
//
// The first frame on every connection is {"event": "connected", "data": {"id": ...}}.
// Malformed or rate-limited frames are dropped. A peer cannot send disconnect;
// the hub dispatches it once when the connection ends.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithRateLimit(10, 20))
//	go hub.Run(ctx)
//
//	coordinator := service.NewCoordinator(registry, hub)
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, coordinator)
//	})
package websocket
