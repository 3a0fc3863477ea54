package server

import (
	"chat-hub/domain"
	"chat-hub/services"
	"net/http"

	"github.com/google/uuid"
)

type MessageHandler struct {
	chat  services.IChatService
	users services.IUserService
}

func NewMessageHandler(chat services.IChatService, users services.IUserService) *MessageHandler {
	return &MessageHandler{chat: chat, users: users}
}

func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.chat.ListConversations(callerID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summaries)
}

func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	other := domain.UserID(r.PathValue("userId"))
	messages, err := h.chat.GetConversation(callerID(r), other)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, messages)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	other := domain.UserID(r.PathValue("userId"))
	if err := h.chat.MarkConversationRead(callerID(r), other); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sendMessageRequest struct {
	ReceiverID domain.UserID    `json:"receiverId"`
	Text       string           `json:"text"`
	ReplyTo    *domain.ReplyRef `json:"replyTo"`
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ReceiverID == "" || req.Text == "" {
		WriteError(w, http.StatusBadRequest, "receiverId and text are required")
		return
	}
	sender, err := h.users.GetUser(callerID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	msg, err := h.chat.SendDirectMessage(sender, req.ReceiverID, req.Text, req.ReplyTo)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid message id")
		return
	}
	if err := h.chat.DeleteDirectMessage(messageID, callerID(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
