// Command wordduel starts the Word Duel server.
//
// It supports two modes:
//  1. "server" (default) runs the HTTP server exposing the WebSocket game
//     transport, the inspection REST API, and an /mcp HTTP endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API
//     if none is available
//
// Flags control host/port, the rules profile, debug logging, per-connection
// rate limits, and optional ngrok tunneling for playing across networks.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/wordduel/api"
	"github.com/wricardo/wordduel/game/config"
	"github.com/wricardo/wordduel/game/service"
	"github.com/wricardo/wordduel/game/session"
	"github.com/wricardo/wordduel/transport/mcp"
	"github.com/wricardo/wordduel/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Word Duel Server"
)

// Settings holds everything the command line and environment decide
type Settings struct {
	Host        string
	Port        int
	ConfigDir   string
	Rules       string
	Debug       bool
	RateLimit   int
	RateBurst   int
	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
}

// Addr returns host:port
func (s Settings) Addr() string {
	return net.JoinHostPort(s.Host, fmt.Sprint(s.Port))
}

// services bundles the long-lived components of one process
type services struct {
	rules       *config.Manager
	registry    *session.Registry
	hub         *websocket.Hub
	coordinator service.Coordinator
}

type runFunc func(ctx context.Context, s Settings, mode string) error

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(run).Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("wordduel failed")
	}
}

func newRootCommand(action runFunc) *cli.Command {
	return &cli.Command{
		Name:      "wordduel",
		Usage:     AppName,
		Version:   Version,
		ArgsUsage: "[server|http|stdio-mcp|mcp-stdio|mcp]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("WORDDUEL_HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing rules profiles",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "rules",
				Value:   "classic",
				Usage:   "Rules profile applied to new rooms",
				Sources: cli.EnvVars("WORDDUEL_RULES"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.IntFlag{
				Name:  "rate-limit",
				Value: 10,
				Usage: "Inbound messages per second per connection (0 disables)",
			},
			&cli.IntFlag{
				Name:  "rate-burst",
				Value: 20,
				Usage: "Burst size for the per-connection rate limit",
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mode := cmd.Args().First()
			if mode == "" {
				mode = "server"
			}
			return action(ctx, settingsFromCommand(cmd), mode)
		},
	}
}

func settingsFromCommand(cmd *cli.Command) Settings {
	return Settings{
		Host:        cmd.String("host"),
		Port:        int(cmd.Int("port")),
		ConfigDir:   cmd.String("config-dir"),
		Rules:       cmd.String("rules"),
		Debug:       cmd.Bool("debug"),
		RateLimit:   int(cmd.Int("rate-limit")),
		RateBurst:   int(cmd.Int("rate-burst")),
		Ngrok:       cmd.Bool("ngrok"),
		NgrokAuth:   cmd.String("ngrok-auth"),
		NgrokDomain: cmd.String("ngrok-domain"),
	}
}

// setupLogging writes human-readable logs to stderr, keeping stdout free for
// the MCP stdio transport
func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

func run(ctx context.Context, s Settings, mode string) error {
	setupLogging(s.Debug)
	log.Info().Str("version", Version).Str("mode", mode).Msgf("Starting %s", AppName)

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		return runStdioMCPWithInternalServer(ctx, s)
	case "server", "http":
		svcs, err := initializeServices(s)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		return runHTTPServer(ctx, s, svcs)
	default:
		return fmt.Errorf("unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// initializeServices wires the rules manager, registry, hub and coordinator
func initializeServices(s Settings) (*services, error) {
	rulesManager, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create rules manager: %w", err)
	}
	if err := rulesManager.SetDefault(s.Rules); err != nil {
		return nil, fmt.Errorf("failed to select rules %q: %w", s.Rules, err)
	}

	rules := rulesManager.GetDefault()
	log.Info().
		Str("rules", rulesManager.DefaultID()).
		Bool("strict_turns", rules.StrictTurns).
		Int("word_length", rules.WordLength).
		Msg("rules selected")

	registry := session.NewRegistry(session.RandomIDGenerator{}, rules)
	hub := websocket.NewHub(websocket.WithRateLimit(float64(s.RateLimit), s.RateBurst))

	return &services{
		rules:       rulesManager,
		registry:    registry,
		hub:         hub,
		coordinator: service.NewCoordinator(registry, hub),
	}, nil
}

// newHTTPHandler combines the API server with an /mcp endpoint proxying to baseURL
func newHTTPHandler(svcs *services, baseURL string) http.Handler {
	apiServer := api.NewServer(svcs.coordinator, svcs.hub, api.WithRulesCatalog(svcs.rules))
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// runHTTPServer serves the game until ctx is cancelled. If ngrok is enabled
// it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, s Settings, svcs *services) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go svcs.hub.Run(ctx)

	addr := s.Addr()
	handler := newHTTPHandler(svcs, "http://"+addr)

	// No write timeout: WebSocket connections are long-lived.
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("Game WebSocket: ws://%s/ws", addr)
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
			cancel()
		}
	}()

	if s.Ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, s, handler)
		}()
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("Server stopped")

	select {
	case err := <-serverErr:
		return err
	default:
		return nil
	}
}

func runNgrok(ctx context.Context, s Settings, handler http.Handler) {
	if s.NgrokAuth == "" {
		log.Warn().Msg("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	log.Info().Msg("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if s.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(s.NgrokDomain))
		log.Info().Str("domain", s.NgrokDomain).Msg("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(s.NgrokAuth))
	if err != nil {
		log.Error().Err(err).Msg("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().Str("url", ngrokURL).Msg("Ngrok tunnel established")
	log.Info().Msgf("  Game (ngrok): %s/", ngrokURL)
	log.Info().Msgf("  WebSocket (ngrok): %s/ws", ngrokURL)
	log.Info().Msgf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("Ngrok server error")
	}
	log.Info().Msg("Ngrok tunnel closed")
}

// externalServerAvailable reports whether a Word Duel API answers at baseURL
func externalServerAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses an
// external API at the configured address when one answers; otherwise it starts
// an internal HTTP API on a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, s Settings) error {
	baseURL := "http://" + s.Addr()
	log.Info().Str("url", baseURL).Msg("Checking for external API server")

	if externalServerAvailable(ctx, baseURL) {
		log.Info().Str("url", baseURL).Msg("External API server found, using it for MCP")
	} else {
		log.Info().Msg("No external API server found, starting internal HTTP server")

		svcs, err := initializeServices(s)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		go svcs.hub.Run(ctx)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		baseURL = "http://" + listener.Addr().String()
		httpServer := &http.Server{Handler: newHTTPHandler(svcs, baseURL)}

		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		log.Info().Str("url", baseURL).Msg("Internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
