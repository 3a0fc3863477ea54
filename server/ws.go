package server

import (
	"chat-hub/auth"
	"chat-hub/contract"
	"chat-hub/services"
	"chat-hub/sink"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// WSHandler upgrades authenticated clients and binds each connection to
// its own session sink. The session exists from the upgrade onward; the
// identity is announced by the client itself with an addUser frame.
type WSHandler struct {
	orchestrator contract.IOrchestrator
	issuer       *auth.TokenIssuer
	chat         services.IChatService
	rooms        services.IRoomService
	bufferSize   int
	log          *slog.Logger

	upgrader websocket.Upgrader
}

func NewWSHandler(
	orchestrator contract.IOrchestrator,
	issuer *auth.TokenIssuer,
	chat services.IChatService,
	rooms services.IRoomService,
	bufferSize int,
	log *slog.Logger,
) *WSHandler {
	return &WSHandler{
		orchestrator: orchestrator,
		issuer:       issuer,
		chat:         chat,
		rooms:        rooms,
		bufferSize:   bufferSize,
		log:          log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set headers on websocket dials, the token rides in
	// the query string instead.
	token := r.URL.Query().Get("token")
	if token == "" {
		WriteError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := h.issuer.Validate(token)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &Client{
		sessionID: newSessionID(),
		userID:    claimsUserID(claims),
		username:  claims.Username,
		conn:      conn,
		sink:      sink.NewSessionSink(h.bufferSize),
		chat:      h.chat,
		rooms:     h.rooms,
		wsh:       h,
		log:       h.log,
	}

	h.orchestrator.Connect(client.sessionID, client.sink)
	h.log.Info("session connected",
		slog.String("session_id", string(client.sessionID)),
		slog.String("user_id", string(client.userID)))

	go client.writePump()
	go client.readPump()
}
