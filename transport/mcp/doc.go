// Package mcp provides a Model Context Protocol view of a Word Duel server.
//
// The mcp package implements:
//   - MCP tool definitions for read-only room inspection
//   - A thin proxy from tool calls to the REST API
//   - Plain-text formatting of rooms, rules and health for agents
//
// MCP Tools:
//   - list_rooms: List live rooms
//   - get_room: Inspect one room by code
//   - game_rules: Active rules profile plus available profiles
//   - server_health: Room and connection counts
//
// Transport Modes:
//
// The same server is exposed over stdio for local MCP clients and over HTTP
// at POST /mcp when the game server runs. Either way, every tool call turns
// into a REST request against the game server, so the stdio process and the
// game server can live in different processes.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal().Err(err).Send()
//	}
package mcp
