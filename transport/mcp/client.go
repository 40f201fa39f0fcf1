package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/wordduel/game/config"
	"github.com/wricardo/wordduel/game/engine"
	"github.com/wricardo/wordduel/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// RoomList is the body of GET /api/rooms
type RoomList struct {
	Count int                 `json:"count"`
	Rooms []*service.RoomInfo `json:"rooms"`
}

// Health is the body of GET /api/health
type Health struct {
	Status      string `json:"status"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Word Duel",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Word Duel - MCP Interface

Word Duel is a two-player game: each player picks a secret word, then they take
turns guessing the opponent's word. The guessed player evaluates each guess
(green/yellow/gray per letter) and the first exact guess wins.

This is a read-only view of the server. Players act over WebSocket; these
tools let you watch rooms without taking part.

AVAILABLE TOOLS:
- list_rooms: List live rooms with phase and participant count
- get_room: Inspect one room (guess log, whose turn it is, winner)
- game_rules: Show the active rules profile and the available profiles
- server_health: Room and connection counts

Secret words are only revealed once a game is over.`),
	)

	c.registerTools()
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all live game rooms",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_room",
		Description: "Get details of a specific room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Six character room code (case-insensitive)",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleGetRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Describe the active rules profile and list the available profiles",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_health",
		Description: "Report server status with room and connection counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerHealth)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var list RoomList
	if err := c.apiCall(ctx, http.MethodGet, "/api/rooms", nil, &list); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoomList(&list)), nil
}

func (c *Client) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return mcp.NewToolResultError("room_id is required"), nil
	}

	var room service.RoomInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/rooms/"+url.PathEscape(roomID), nil, &room); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoomInfo(&room)), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var active engine.Rules
	if err := c.apiCall(ctx, http.MethodGet, "/api/rules", nil, &active); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Profiles are optional; servers without a catalog answer 404.
	var profiles []*config.RulesInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/rules/profiles", nil, &profiles); err != nil {
		profiles = nil
	}

	return mcp.NewToolResultText(formatRules(&active, profiles)), nil
}

func (c *Client) handleServerHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var health Health
	if err := c.apiCall(ctx, http.MethodGet, "/api/health", nil, &health); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Status: %s\nRooms: %d\nConnections: %d",
		health.Status, health.Rooms, health.Connections)), nil
}

func formatRoomList(list *RoomList) string {
	if len(list.Rooms) == 0 {
		return "No live rooms."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d live room(s):\n", list.Count)
	for _, room := range list.Rooms {
		fmt.Fprintf(&b, "- %s  phase=%s  players=%d/%d  words=%d  guesses=%d",
			room.ID, room.Phase, len(room.Participants), engine.MaxParticipants, room.WordCount, len(room.Guesses))
		if room.Winner != "" {
			fmt.Fprintf(&b, "  winner=%s", room.Winner)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatRoomInfo(room *service.RoomInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Room %s (%s rules)\n", room.ID, room.Rules)
	fmt.Fprintf(&b, "Phase: %s\n", room.Phase)
	fmt.Fprintf(&b, "Created: %s  Last activity: %s\n",
		room.CreatedAt.Format(time.RFC3339), room.LastActivity.Format(time.RFC3339))

	b.WriteString("Players:\n")
	for slot, p := range room.Participants {
		marker := ""
		if p == room.NextTurn {
			marker = "  <- to guess"
		}
		fmt.Fprintf(&b, "  %d. %s%s\n", slot+1, p, marker)
	}
	fmt.Fprintf(&b, "Words submitted: %d/%d\n", room.WordCount, engine.MaxParticipants)

	if len(room.Guesses) == 0 {
		b.WriteString("No guesses yet.\n")
	} else {
		b.WriteString("Guesses:\n")
		for i, g := range room.Guesses {
			eval := "pending"
			if g.Evaluated() {
				eval = string(g.Evaluation)
			}
			fmt.Fprintf(&b, "  %d. %s guessed %q -> %s\n", i+1, g.Guesser, g.Text, eval)
		}
	}

	if room.GameOver {
		fmt.Fprintf(&b, "GAME OVER. Winner: %s\n", room.Winner)
		for _, p := range room.Participants {
			if w, ok := room.Words[p]; ok {
				fmt.Fprintf(&b, "  %s's word: %s\n", p, w)
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatRules(active *engine.Rules, profiles []*config.RulesInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Active rules: %s\n", active.Name)
	if active.Description != "" {
		fmt.Fprintf(&b, "  %s\n", active.Description)
	}
	fmt.Fprintf(&b, "  Strict turns: %t\n", active.StrictTurns)
	if active.WordLength > 0 {
		fmt.Fprintf(&b, "  Word length: %d letters\n", active.WordLength)
	} else {
		fmt.Fprintf(&b, "  Word length: any (up to %d)\n", engine.MaxWordLength)
	}

	if len(profiles) > 0 {
		b.WriteString("Available profiles:\n")
		for _, p := range profiles {
			source := "file"
			if p.Builtin {
				source = "built-in"
			}
			fmt.Fprintf(&b, "  - %s (%s): %s\n", p.ConfigID, source, p.Description)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
