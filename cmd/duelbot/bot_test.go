package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/wordduel/api"
	"github.com/wricardo/wordduel/game/engine"
	"github.com/wricardo/wordduel/game/service"
	"github.com/wricardo/wordduel/game/session"
	"github.com/wricardo/wordduel/transport/websocket"
)

// startServer runs a complete in-process game server and returns its ws URL
func startServer(t *testing.T, rules engine.Rules) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.NewHub()
	go hub.Run(ctx)

	coordinator := service.NewCoordinator(session.NewRegistry(nil, rules), hub)
	server := httptest.NewServer(api.NewServer(coordinator, hub))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})

	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestDuel(t *testing.T) {
	for name, rules := range engine.BuiltinRules() {
		t.Run(name, func(t *testing.T) {
			url := startServer(t, rules)

			outcomes, err := Duel(testContext(t), DuelConfig{
				URL:   url,
				WordA: "crane",
				WordB: "plumb",
				Words: DefaultWords,
			}, zerolog.Nop())
			require.NoError(t, err)
			require.Len(t, outcomes, 2)

			alice, bob := outcomes["alice"], outcomes["bob"]
			assert.NotEqual(t, alice.Won, bob.Won, "exactly one bot wins")
			assert.Equal(t, alice.Winner, bob.Winner)
			assert.Equal(t, alice.RoomID, bob.RoomID)

			assert.ElementsMatch(t, []string{"crane", "plumb"}, valuesOf(alice.Words))
			assert.Positive(t, alice.Guesses+bob.Guesses)
		})
	}
}

func TestDuelRandomWords(t *testing.T) {
	url := startServer(t, engine.StrictRules())

	outcomes, err := Duel(testContext(t), DuelConfig{URL: url}, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, outcomes["alice"].Won || outcomes["bob"].Won)
}

func TestBotOpponentLeaves(t *testing.T) {
	url := startServer(t, engine.DefaultRules())
	ctx := testContext(t)

	alice, err := Dial(ctx, url, "alice", "crane", NewSolver(DefaultWords, 5), zerolog.Nop())
	require.NoError(t, err)
	defer alice.Close()
	assert.NotEmpty(t, alice.ID())

	bob, err := Dial(ctx, url, "bob", "plumb", NewSolver(DefaultWords, 5), zerolog.Nop())
	require.NoError(t, err)

	roomID, err := alice.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, bob.Join(ctx, roomID))

	require.NoError(t, bob.Close())

	_, err = alice.Play(ctx)
	assert.ErrorIs(t, err, ErrOpponentLeft)
}

func TestBotJoinUnknownRoom(t *testing.T) {
	url := startServer(t, engine.DefaultRules())
	ctx := testContext(t)

	bob, err := Dial(ctx, url, "bob", "plumb", NewSolver(DefaultWords, 5), zerolog.Nop())
	require.NoError(t, err)
	defer bob.Close()

	err = bob.Join(ctx, "ZZZZZZ")
	require.ErrorIs(t, err, ErrServerRefused)
	assert.Contains(t, err.Error(), service.JoinFailedMessage)
}

func TestBotPlayHonoursContext(t *testing.T) {
	url := startServer(t, engine.DefaultRules())

	alice, err := Dial(testContext(t), url, "alice", "crane", NewSolver(DefaultWords, 5), zerolog.Nop())
	require.NoError(t, err)
	defer alice.Close()

	_, err = alice.Create(testContext(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = alice.Play(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDialFailure(t *testing.T) {
	_, err := Dial(testContext(t), "ws://127.0.0.1:1/ws", "alice", "crane", NewSolver(DefaultWords, 5), zerolog.Nop())
	assert.Error(t, err)
}

func valuesOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
