package server

import (
	"chat-hub/domain"
	"chat-hub/services"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type RoomHandler struct {
	rooms services.IRoomService
	users services.IUserService

	// defaultLimit caps room history responses when the client does not
	// ask for a limit. Nil means unbounded.
	defaultLimit *int
}

func NewRoomHandler(rooms services.IRoomService, users services.IUserService, defaultLimit *int) *RoomHandler {
	return &RoomHandler{rooms: rooms, users: users, defaultLimit: defaultLimit}
}

type createRoomRequest struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Password    string `json:"password"`
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Number <= 0 {
		WriteError(w, http.StatusBadRequest, "name and a positive number are required")
		return
	}
	room, err := h.rooms.CreateRoom(callerID(r), req.Number, req.Name, req.Description, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, room)
}

func (h *RoomHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListPublicRooms()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rooms)
}

func (h *RoomHandler) Mine(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListUserRooms(callerID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rooms)
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.GetRoom(domain.RoomID(r.PathValue("id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, room)
}

type joinRoomRequest struct {
	Password string `json:"password"`
}

func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := ReadJSON(r, &req); err != nil && r.ContentLength > 0 {
		WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	room, err := h.rooms.JoinRoom(domain.RoomID(r.PathValue("id")), callerID(r), req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, room)
}

type joinByNumberRequest struct {
	Number   int    `json:"number"`
	Password string `json:"password"`
}

func (h *RoomHandler) JoinByNumber(w http.ResponseWriter, r *http.Request) {
	var req joinByNumberRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	room, err := h.rooms.JoinRoomByNumber(req.Number, callerID(r), req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if err := h.rooms.LeaveRoom(domain.RoomID(r.PathValue("id")), callerID(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomHandler) Participants(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.GetRoom(domain.RoomID(r.PathValue("id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	users := lo.FilterMap(room.Participants, func(id domain.UserID, _ int) (domain.User, bool) {
		user, err := h.users.GetUser(id)
		return user, err == nil
	})
	WriteJSON(w, http.StatusOK, users)
}

func (h *RoomHandler) Messages(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = &n
	}
	messages, err := h.rooms.GetRoomMessages(domain.RoomID(r.PathValue("id")), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, messages)
}

type postRoomMessageRequest struct {
	Text    string           `json:"text"`
	ReplyTo *domain.ReplyRef `json:"replyTo"`
}

func (h *RoomHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req postRoomMessageRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Text == "" {
		WriteError(w, http.StatusBadRequest, "text is required")
		return
	}
	sender, err := h.users.GetUser(callerID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	msg, err := h.rooms.PostRoomMessage(sender, domain.RoomID(r.PathValue("id")), req.Text, req.ReplyTo)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, msg)
}

func (h *RoomHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(r.PathValue("messageId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid message id")
		return
	}
	if err := h.rooms.DeleteRoomMessage(messageID, callerID(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		WriteError(w, http.StatusBadRequest, "missing query")
		return
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		offset = n
	}
	hits, total, err := h.rooms.SearchMessages(r.Context(), query, domain.RoomID(r.PathValue("id")), offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"total": total, "hits": hits})
}
