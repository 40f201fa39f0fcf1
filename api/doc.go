// Package api provides the HTTP surface of Word Duel.
//
// The api package implements:
//   - Read-only room inspection endpoints
//   - Invite QR codes for rooms
//   - Rules profile endpoints
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Rooms:
//   - GET /api/rooms - List live rooms, oldest first
//   - GET /api/rooms/{id} - Get one room (ids are case-insensitive)
//   - GET /api/rooms/{id}/qr?size=256 - PNG QR code of the invite link
//
// Rules:
//   - GET /api/rules - Active rules profile
//   - GET /api/rules/profiles - Available profiles (when a catalog is configured)
//
// Other:
//   - GET /api/health - {status, rooms, connections}
//   - GET /ws - WebSocket upgrade, the only way to play
//   - GET / - Static files
//
// Players never act over REST. Secret words only appear in room responses
// once the game is over.
//
// Usage:
//
//	server := api.NewServer(coordinator, hub, api.WithRulesCatalog(manager))
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with an appropriate HTTP status code:
//
//	{"error": "room ZZZZZZ: room not found"}
package api
