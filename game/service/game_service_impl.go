package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/wordduel/game/engine"
)

// coordinatorImpl implements the Coordinator interface
type coordinatorImpl struct {
	rooms     RoomRegistry
	transport Transport
}

// NewCoordinator creates a coordinator backed by rooms. transport may be nil
// when only Handle is used.
func NewCoordinator(rooms RoomRegistry, transport Transport) Coordinator {
	return &coordinatorImpl{
		rooms:     rooms,
		transport: transport,
	}
}

// Dispatch handles an action and forwards its notifications to the transport
func (c *coordinatorImpl) Dispatch(ctx context.Context, connID string, action Action) {
	notifications := c.Handle(ctx, connID, action)
	if c.transport == nil {
		return
	}

	for _, n := range notifications {
		if len(n.Recipients) == 1 {
			c.transport.Send(n.Recipients[0], n.Event, n.Data)
			continue
		}
		c.transport.Broadcast(n.Recipients, n.Event, n.Data)
	}
}

// Handle applies one action and returns the resulting notifications in
// delivery order. Failed actions yield no notifications except for joinRoom.
func (c *coordinatorImpl) Handle(ctx context.Context, connID string, action Action) []Notification {
	var (
		notifications []Notification
		err           error
	)

	switch action.Type {
	case ActionCreateRoom:
		notifications, err = c.createRoom(connID)
	case ActionJoinRoom:
		notifications, err = c.joinRoom(connID, action.RoomID)
	case ActionSubmitWord:
		notifications, err = c.submitWord(connID, action.RoomID, action.Word)
	case ActionMakeGuess:
		notifications, err = c.makeGuess(connID, action.RoomID, action.Guess)
	case ActionSubmitEvaluation:
		notifications, err = c.submitEvaluation(connID, action.RoomID, action)
	case ActionDisconnect:
		notifications = c.disconnect(connID)
	default:
		err = fmt.Errorf("unknown action %q", action.Type)
	}

	if err != nil {
		log.Debug().
			Err(err).
			Str("conn", connID).
			Str("action", string(action.Type)).
			Str("room", action.RoomID).
			Msg("action dropped")
	}

	return notifications
}

func (c *coordinatorImpl) createRoom(connID string) ([]Notification, error) {
	room, err := c.rooms.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	if _, err := room.AddParticipant(connID); err != nil {
		return nil, fmt.Errorf("failed to seat creator: %w", err)
	}

	log.Info().Str("room", room.ID()).Str("conn", connID).Msg("room created")

	return []Notification{
		toSender(connID, EventRoomCreated, room.ID()),
	}, nil
}

func (c *coordinatorImpl) joinRoom(connID, roomID string) ([]Notification, error) {
	room, err := c.rooms.Get(roomID)
	if err == nil {
		var res engine.JoinResult
		res, err = room.AddParticipant(connID)
		if err == nil {
			log.Info().Str("room", room.ID()).Str("conn", connID).Int("slot", res.Slot).Msg("player joined")
			return []Notification{
				toRoom(res.Participants, EventRoomJoined, room.ID()),
			}, nil
		}
	}

	return []Notification{
		toSender(connID, EventError, JoinFailedMessage),
	}, err
}

func (c *coordinatorImpl) submitWord(connID, roomID, word string) ([]Notification, error) {
	room, err := c.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}

	res, err := room.SubmitWord(connID, word)
	if err != nil {
		return nil, err
	}

	participants := room.Participants()
	notifications := []Notification{
		toRoom(participants, EventUpdateWords, res.Words),
	}
	if res.Started {
		log.Info().Str("room", room.ID()).Msg("game started")
		notifications = append(notifications, toRoom(participants, EventStartGame, nil))
	}
	return notifications, nil
}

func (c *coordinatorImpl) makeGuess(connID, roomID, guess string) ([]Notification, error) {
	room, err := c.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}

	out, err := room.SubmitGuess(connID, guess)
	if err != nil {
		return nil, err
	}

	if out.Win {
		log.Info().Str("room", room.ID()).Str("winner", connID).Msg("game over")
		return []Notification{
			toRoom(room.Participants(), EventGameOver, GameOverPayload{
				Winner: out.Guesser,
				Words:  out.Words,
			}),
		}, nil
	}

	return []Notification{
		toParticipant(out.Opponent, EventOpponentGuess, out.Guess),
		toSender(connID, EventGuessSent, nil),
	}, nil
}

func (c *coordinatorImpl) submitEvaluation(connID, roomID string, action Action) ([]Notification, error) {
	room, err := c.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}

	out, err := room.SubmitEvaluation(connID, action.Evaluation)
	if err != nil {
		return nil, err
	}

	participants := room.Participants()
	return []Notification{
		toRoom(participants, EventGuessEvaluated, GuessEvaluatedPayload{
			Guess:      out.Guess,
			Evaluation: out.Evaluation,
		}),
		toRoom(participants, EventNextTurn, out.NextTurn),
	}, nil
}

func (c *coordinatorImpl) disconnect(connID string) []Notification {
	removal, ok := c.rooms.RemoveIfParticipant(connID)
	if !ok {
		return nil
	}

	log.Info().Str("room", removal.RoomID).Str("conn", connID).Msg("room closed by disconnect")

	remaining := slices.DeleteFunc(slices.Clone(removal.Participants), func(p string) bool {
		return p == connID
	})
	if len(remaining) == 0 {
		return nil
	}
	return []Notification{
		toRoom(remaining, EventPlayerDisconnected, nil),
	}
}

// ListRooms returns all live rooms, oldest first
func (c *coordinatorImpl) ListRooms(ctx context.Context) ([]*RoomInfo, error) {
	rooms := c.rooms.List()
	result := make([]*RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, newRoomInfo(room.Snapshot()))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// GetRoom retrieves room information
func (c *coordinatorImpl) GetRoom(ctx context.Context, roomID string) (*RoomInfo, error) {
	room, err := c.rooms.Get(roomID)
	if err != nil {
		if errors.Is(err, engine.ErrRoomNotFound) {
			return nil, fmt.Errorf("room %s: %w", roomID, err)
		}
		return nil, err
	}
	return newRoomInfo(room.Snapshot()), nil
}

// Rules returns the profile applied to new rooms
func (c *coordinatorImpl) Rules() engine.Rules {
	return c.rooms.Rules()
}

func toSender(connID, event string, data any) Notification {
	return Notification{Event: event, Data: data, Audience: AudienceSender, Recipients: []string{connID}}
}

func toParticipant(connID, event string, data any) Notification {
	return Notification{Event: event, Data: data, Audience: AudienceParticipant, Recipients: []string{connID}}
}

func toRoom(participants []string, event string, data any) Notification {
	return Notification{Event: event, Data: data, Audience: AudienceRoom, Recipients: slices.Clone(participants)}
}
