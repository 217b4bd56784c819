package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hexblast/hexblast-backend/internal/entity"
	"github.com/hexblast/hexblast-backend/internal/pkg"
	"github.com/hexblast/hexblast-backend/internal/service"
)

type gamePlay interface {
	MakeMove(ctx context.Context, sessionID, playerID string, x, y int) (*entity.MoveResult, error)
	UseBomb(ctx context.Context, sessionID, playerID string, x, y int) (*entity.MoveResult, error)
	GetSessionState(ctx context.Context, sessionID string) (*entity.Session, error)
}

type matchmaker interface {
	Register(playerID string, conn service.Conn)
	Unregister(playerID string)
	JoinQueue(playerID, name string)
	TryMatch(ctx context.Context, initiatorID string) (*entity.Session, error)
}

type users interface {
	GetOrCreateUser(ctx context.Context, id, name string) (*entity.User, error)
}

type Server struct {
	logger     *slog.Logger
	gamePlay   gamePlay
	matchmaker matchmaker
	users      users

	handlers map[string]func(ctx context.Context, message *Message, c *conn) error
}

func New(logger *slog.Logger, gamePlay gamePlay, matchmaker matchmaker, users users) *Server {
	server := &Server{
		logger:     logger,
		gamePlay:   gamePlay,
		matchmaker: matchmaker,
		users:      users,

		handlers: make(map[string]func(context.Context, *Message, *conn) error),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["queue:join"] = server.handleQueueJoin
	server.handlers["game:move"] = server.handleGameMove
	server.handlers["game:bomb"] = server.handleGameBomb
	server.handlers["game:state"] = server.handleGameState

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      http.DefaultServeMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	if req.Header.Get("Upgrade") != "websocket" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	key := req.Header.Get("Sec-WebSocket-Key")
	acceptKey := pkg.GenerateAcceptKey(key)

	writer.Header().Set("Upgrade", "websocket")
	writer.Header().Set("Connection", "Upgrade")
	writer.Header().Set("Sec-WebSocket-Accept", acceptKey)
	writer.WriteHeader(http.StatusSwitchingProtocols)

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking", "error", http.StatusText(http.StatusInternalServerError))
		return
	}

	netConn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer netConn.Close()

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, &conn{bufrw: bufrw}); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until the connection
// drops. A dropped connection unregisters the player, which also removes
// any matchmaking queue entry atomically.
func (that *Server) handleMessages(ctx context.Context, c *conn) error {
	log := that.logger.With("method", "handleMessages")

	defer func() {
		if c.playerID != "" {
			that.matchmaker.Unregister(c.playerID)
			log.Info("player disconnected", "playerID", c.playerID)
		}
	}()

	for {
		reqBody, err := readRequest(c.bufrw)
		if err != nil {
			log.Error("error reading message", "error", err)
			return err
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, &message, c); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
