package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/mfreitas/devmarket/pkg/models"
	"github.com/mfreitas/devmarket/pkg/repository"
)

type ConversationsHandler struct {
	convRepo repository.ConversationRepo
	msgRepo  repository.MessageRepo
}

func NewConversationsHandler(cr repository.ConversationRepo, mr repository.MessageRepo) *ConversationsHandler {
	return &ConversationsHandler{convRepo: cr, msgRepo: mr}
}

func (h *ConversationsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, _ := accountFromContext(ctx)

	convs, err := h.convRepo.ListConversationsByAccount(ctx, accountID)
	if err != nil {
		writeError(w, "failed to list conversations", http.StatusInternalServerError)
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}

	writeJSON(w, map[string]any{"items": convs}, http.StatusOK)
}

// loadParticipantConversation resolves the conversation from the route and
// checks the caller is one of its two parties.
func (h *ConversationsHandler) loadParticipantConversation(w http.ResponseWriter, r *http.Request) *models.Conversation {
	ctx := r.Context()
	accountID, _ := accountFromContext(ctx)

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, "invalid conversation id", http.StatusBadRequest)
		return nil
	}

	conv, err := h.convRepo.GetConversationByID(ctx, id)
	if err != nil {
		writeError(w, "failed to load conversation", http.StatusInternalServerError)
		return nil
	}
	if conv == nil {
		writeError(w, "conversation not found", http.StatusNotFound)
		return nil
	}
	if conv.ClientID != accountID && conv.DeveloperID != accountID {
		writeError(w, "not a participant of this conversation", http.StatusForbidden)
		return nil
	}

	return conv
}

func (h *ConversationsHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	conv := h.loadParticipantConversation(w, r)
	if conv == nil {
		return
	}
	ctx := r.Context()

	q := r.URL.Query()
	limit := 100
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	offset := 0
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	msgs, err := h.msgRepo.ListMessagesByConversation(ctx, conv.ID, limit, offset)
	if err != nil {
		writeError(w, "failed to list messages", http.StatusInternalServerError)
		return
	}
	total, err := h.msgRepo.CountMessagesByConversation(ctx, conv.ID)
	if err != nil {
		writeError(w, "failed to count messages", http.StatusInternalServerError)
		return
	}

	if msgs == nil {
		msgs = []models.Message{}
	}

	resp := map[string]any{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  msgs,
	}

	writeJSON(w, resp, http.StatusOK)
}

type postMessageRequest struct {
	Body string `json:"body"`
}

func (h *ConversationsHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	conv := h.loadParticipantConversation(w, r)
	if conv == nil {
		return
	}
	ctx := r.Context()
	accountID, _ := accountFromContext(ctx)

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		writeError(w, "body is required", http.StatusBadRequest)
		return
	}
	if len(req.Body) > 10000 {
		writeError(w, "body too long", http.StatusBadRequest)
		return
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       accountID,
		Body:           req.Body,
	}
	id, err := h.msgRepo.CreateMessage(ctx, msg)
	if err != nil {
		writeError(w, "failed to store message", http.StatusInternalServerError)
		return
	}
	msg.ID = id

	if err := h.convRepo.TouchConversation(ctx, conv.ID); err != nil {
		logger.Warn("touch conversation", "conversation_id", conv.ID, "err", err)
	}

	writeJSON(w, msg, http.StatusCreated)
}

// MarkRead marks the other party's messages in the conversation as read.
func (h *ConversationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	conv := h.loadParticipantConversation(w, r)
	if conv == nil {
		return
	}
	ctx := r.Context()
	accountID, _ := accountFromContext(ctx)

	if err := h.msgRepo.MarkMessagesRead(ctx, conv.ID, accountID); err != nil {
		writeError(w, "failed to mark messages read", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
