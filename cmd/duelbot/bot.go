package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/wricardo/wordduel/game/service"
)

var (
	ErrOpponentLeft  = errors.New("opponent disconnected")
	ErrOutOfGuesses  = errors.New("no candidate words left")
	ErrServerRefused = errors.New("server refused action")
)

// inbound is one event received from the server
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Outcome is what a bot saw when its game ended
type Outcome struct {
	RoomID  string
	Winner  string
	Won     bool
	Guesses int
	Words   map[string]string
}

// Bot is one scripted player holding a single WebSocket connection
type Bot struct {
	name   string
	secret string
	solver *Solver
	conn   *websocket.Conn
	log    zerolog.Logger

	id      string
	roomID  string
	slot    int
	pending string
	guesses int
}

// Dial connects a bot and waits for the server's greeting
func Dial(ctx context.Context, url, name, secret string, solver *Solver, logger zerolog.Logger) (*Bot, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, url, http.Header{})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	b := &Bot{
		name:   name,
		secret: secret,
		solver: solver,
		conn:   conn,
		log:    logger.With().Str("bot", name).Logger(),
	}

	msg, err := b.expect(ctx, service.EventConnected)
	if err != nil {
		conn.Close()
		return nil, err
	}
	var hello service.ConnectedPayload
	if err := json.Unmarshal(msg.Data, &hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("decode greeting: %w", err)
	}
	b.id = hello.ID
	b.log = b.log.With().Str("conn", b.id).Logger()
	b.log.Debug().Msg("connected")
	return b, nil
}

// ID returns the connection identity the server assigned
func (b *Bot) ID() string { return b.id }

// Close drops the connection, which the server treats as leaving the room
func (b *Bot) Close() error {
	return b.conn.Close()
}

// Create opens a new room, submits the secret word, and returns the room id
func (b *Bot) Create(ctx context.Context) (string, error) {
	if err := b.send(service.Action{Type: service.ActionCreateRoom}); err != nil {
		return "", err
	}
	msg, err := b.expect(ctx, service.EventRoomCreated)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(msg.Data, &b.roomID); err != nil {
		return "", fmt.Errorf("decode room id: %w", err)
	}
	b.slot = 0
	b.log.Info().Str("room", b.roomID).Msg("room created")

	return b.roomID, b.submitWord()
}

// Join takes the second seat of roomID and submits the secret word
func (b *Bot) Join(ctx context.Context, roomID string) error {
	if err := b.send(service.Action{Type: service.ActionJoinRoom, RoomID: roomID}); err != nil {
		return err
	}
	msg, err := b.expect(ctx, service.EventRoomJoined)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(msg.Data, &b.roomID); err != nil {
		return fmt.Errorf("decode room id: %w", err)
	}
	b.slot = 1
	b.log.Info().Str("room", b.roomID).Msg("room joined")

	return b.submitWord()
}

// Play reacts to server events until the game ends or ctx is done. The
// creator guesses first; afterwards the bot guesses whenever nextTurn names it.
func (b *Bot) Play(ctx context.Context) (*Outcome, error) {
	for {
		msg, err := b.read(ctx)
		if err != nil {
			return nil, err
		}

		switch msg.Event {
		case service.EventStartGame:
			if b.slot == 0 {
				if err := b.guess(); err != nil {
					return nil, err
				}
			}

		case service.EventOpponentGuess:
			var guess string
			if err := json.Unmarshal(msg.Data, &guess); err != nil {
				return nil, fmt.Errorf("decode opponent guess: %w", err)
			}
			if err := b.evaluate(guess); err != nil {
				return nil, err
			}

		case service.EventGuessEvaluated:
			var payload service.GuessEvaluatedPayload
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				return nil, fmt.Errorf("decode evaluation: %w", err)
			}
			if b.pending != "" && payload.Guess == b.pending {
				marks, _ := DecodeMarks(payload.Evaluation)
				b.solver.Observe(payload.Guess, marks)
				b.log.Debug().Str("guess", payload.Guess).Int("candidates", b.solver.Remaining()).Msg("evaluation received")
				b.pending = ""
			}

		case service.EventNextTurn:
			var next string
			if err := json.Unmarshal(msg.Data, &next); err != nil {
				return nil, fmt.Errorf("decode next turn: %w", err)
			}
			if next == b.id {
				if err := b.guess(); err != nil {
					return nil, err
				}
			}

		case service.EventGameOver:
			var payload service.GameOverPayload
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				return nil, fmt.Errorf("decode game over: %w", err)
			}
			out := &Outcome{
				RoomID:  b.roomID,
				Winner:  payload.Winner,
				Won:     payload.Winner == b.id,
				Guesses: b.guesses,
				Words:   payload.Words,
			}
			b.log.Info().Bool("won", out.Won).Int("guesses", out.Guesses).Msg("game over")
			return out, nil

		case service.EventPlayerDisconnected:
			return nil, ErrOpponentLeft

		case service.EventError:
			return nil, serverError(msg.Data)
		}
	}
}

func (b *Bot) submitWord() error {
	return b.send(service.Action{Type: service.ActionSubmitWord, RoomID: b.roomID, Word: b.secret})
}

func (b *Bot) guess() error {
	word, ok := b.solver.Next()
	if !ok {
		return ErrOutOfGuesses
	}
	b.pending = word
	b.guesses++
	b.log.Debug().Str("guess", word).Int("n", b.guesses).Msg("guessing")
	return b.send(service.Action{Type: service.ActionMakeGuess, RoomID: b.roomID, Guess: word})
}

func (b *Bot) evaluate(guess string) error {
	marks := Score(b.secret, guess)
	raw, err := json.Marshal(marks)
	if err != nil {
		return err
	}
	return b.send(service.Action{Type: service.ActionSubmitEvaluation, RoomID: b.roomID, Evaluation: raw})
}

func (b *Bot) send(action service.Action) error {
	b.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := b.conn.WriteJSON(action); err != nil {
		return fmt.Errorf("send %s: %w", action.Type, err)
	}
	return nil
}

// read blocks for the next event; cancelling ctx unblocks it by expiring the
// read deadline
func (b *Bot) read(ctx context.Context) (inbound, error) {
	stop := context.AfterFunc(ctx, func() {
		b.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	var msg inbound
	if err := b.conn.ReadJSON(&msg); err != nil {
		if ctx.Err() != nil {
			return inbound{}, ctx.Err()
		}
		return inbound{}, fmt.Errorf("read: %w", err)
	}
	return msg, nil
}

// expect skips events until event arrives; an error event aborts
func (b *Bot) expect(ctx context.Context, event string) (inbound, error) {
	for {
		msg, err := b.read(ctx)
		if err != nil {
			return inbound{}, err
		}
		switch msg.Event {
		case event:
			return msg, nil
		case service.EventError:
			return inbound{}, serverError(msg.Data)
		}
	}
}

func serverError(data json.RawMessage) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		text = string(data)
	}
	return fmt.Errorf("%w: %s", ErrServerRefused, text)
}
