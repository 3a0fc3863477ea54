package server

import (
	"chat-hub/auth"
	"log/slog"
	"net/http"
)

// Router assembles the public HTTP surface. Everything except health and
// the auth endpoints sits behind bearer authentication.
func Router(
	issuer *auth.TokenIssuer,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	roomHandler *RoomHandler,
	messageHandler *MessageHandler,
	wsHandler *WSHandler,
	log *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	protected := http.NewServeMux()
	protected.HandleFunc("GET /api/users", userHandler.List)
	protected.HandleFunc("GET /api/users/search", userHandler.Search)
	protected.HandleFunc("GET /api/users/me", userHandler.Me)
	protected.HandleFunc("PUT /api/users/me", userHandler.UpdateProfile)
	protected.HandleFunc("GET /api/users/{id}", userHandler.Get)

	protected.HandleFunc("POST /api/rooms", roomHandler.Create)
	protected.HandleFunc("GET /api/rooms", roomHandler.ListPublic)
	protected.HandleFunc("GET /api/rooms/mine", roomHandler.Mine)
	protected.HandleFunc("POST /api/rooms/join", roomHandler.JoinByNumber)
	protected.HandleFunc("GET /api/rooms/{id}", roomHandler.Get)
	protected.HandleFunc("POST /api/rooms/{id}/join", roomHandler.Join)
	protected.HandleFunc("POST /api/rooms/{id}/leave", roomHandler.Leave)
	protected.HandleFunc("GET /api/rooms/{id}/participants", roomHandler.Participants)
	protected.HandleFunc("GET /api/rooms/{id}/messages", roomHandler.Messages)
	protected.HandleFunc("POST /api/rooms/{id}/messages", roomHandler.PostMessage)
	protected.HandleFunc("GET /api/rooms/{id}/search", roomHandler.Search)
	protected.HandleFunc("DELETE /api/rooms/messages/{messageId}", roomHandler.DeleteMessage)

	protected.HandleFunc("GET /api/conversations", messageHandler.Conversations)
	protected.HandleFunc("GET /api/conversations/{userId}/messages", messageHandler.Conversation)
	protected.HandleFunc("POST /api/conversations/{userId}/read", messageHandler.MarkRead)
	protected.HandleFunc("POST /api/messages", messageHandler.Send)
	protected.HandleFunc("DELETE /api/messages/{id}", messageHandler.Delete)

	mux.Handle("/api/", RequireAuth(issuer, protected))

	// Websocket does its own token check, tokens ride the query string.
	mux.Handle("GET /ws", wsHandler)

	return logging(log, mux)
}

func logging(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}
