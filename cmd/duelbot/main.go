// Command duelbot plays a complete Word Duel game against a running server.
//
// Two bots connect over WebSocket: the first creates a room, the second joins
// it, both submit secret words, and they take turns guessing. Each bot
// evaluates the other's guesses with Wordle scoring and narrows its own
// candidate list from the feedback it receives, so a game always ends with a
// winner when both secret words are in the word list.
//
// Usage:
//
//	duelbot --server ws://localhost:8080/ws --word-a crane --word-b plumb
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// DefaultWords is the built-in five-letter word list
var DefaultWords = []string{
	"apple", "beach", "brick", "candy", "chair", "cloud", "crane", "dance",
	"eagle", "earth", "flame", "fruit", "ghost", "grape", "heart", "house",
	"juice", "knife", "lemon", "light", "mango", "music", "night", "ocean",
	"piano", "plant", "plumb", "queen", "river", "robot", "salad", "shark",
	"smile", "snake", "stone", "storm", "table", "tiger", "train", "whale",
}

// DuelConfig describes one bot-versus-bot game
type DuelConfig struct {
	URL   string
	WordA string
	WordB string
	Words []string
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("duel failed")
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "duelbot",
		Usage: "Play a full Word Duel game between two bots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "ws://localhost:8080/ws",
				Usage:   "WebSocket URL of the game server",
				Sources: cli.EnvVars("WORDDUEL_URL"),
			},
			&cli.StringFlag{
				Name:  "word-a",
				Usage: "Secret word of the room creator (random when empty)",
			},
			&cli.StringFlag{
				Name:  "word-b",
				Usage: "Secret word of the joining player (random when empty)",
			},
			&cli.StringFlag{
				Name:  "words",
				Usage: "Comma-separated candidate word list (defaults to a built-in list)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Second,
				Usage: "Give up if the game has not finished in time",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log every guess and evaluation",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if cmd.Bool("debug") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
				With().Timestamp().Logger()

			cfg := DuelConfig{
				URL:   cmd.String("server"),
				WordA: cmd.String("word-a"),
				WordB: cmd.String("word-b"),
				Words: DefaultWords,
			}
			if list := cmd.String("words"); list != "" {
				cfg.Words = strings.Split(list, ",")
			}

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			outcomes, err := Duel(ctx, cfg, log.Logger)
			if err != nil {
				return err
			}
			for name, out := range outcomes {
				if out.Won {
					fmt.Printf("Room %s: %s won after %d guesses (words: %v)\n", out.RoomID, name, out.Guesses, out.Words)
				}
			}
			return nil
		},
	}
}

// Duel runs one game and returns each bot's outcome keyed by bot name
func Duel(ctx context.Context, cfg DuelConfig, logger zerolog.Logger) (map[string]*Outcome, error) {
	words := append([]string(nil), cfg.Words...)
	if len(words) == 0 {
		words = DefaultWords
	}
	if cfg.WordA == "" {
		cfg.WordA = words[rand.IntN(len(words))]
	}
	if cfg.WordB == "" {
		cfg.WordB = words[rand.IntN(len(words))]
	}
	words = append(words, cfg.WordA, cfg.WordB)

	length := len([]rune(cfg.WordA))
	if len([]rune(cfg.WordB)) != length {
		length = 0
	}

	alice, err := Dial(ctx, cfg.URL, "alice", cfg.WordA, NewSolver(words, length), logger)
	if err != nil {
		return nil, err
	}
	defer alice.Close()

	bob, err := Dial(ctx, cfg.URL, "bob", cfg.WordB, NewSolver(words, length), logger)
	if err != nil {
		return nil, err
	}
	defer bob.Close()

	roomID, err := alice.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("alice: %w", err)
	}
	if err := bob.Join(ctx, roomID); err != nil {
		return nil, fmt.Errorf("bob: %w", err)
	}

	outcomes := make(map[string]*Outcome, 2)
	results := make([]*Outcome, 2)

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range []*Bot{alice, bob} {
		g.Go(func() error {
			out, err := b.Play(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", b.name, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("game in room %s did not finish: %w", roomID, err)
		}
		return nil, err
	}

	outcomes[alice.name] = results[0]
	outcomes[bob.name] = results[1]
	return outcomes, nil
}
