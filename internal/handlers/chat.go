package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ROAMMATE_BACK-END/internal/chat"
	"ROAMMATE_BACK-END/internal/dto"
	"ROAMMATE_BACK-END/internal/models"
	"ROAMMATE_BACK-END/internal/repository"
	"ROAMMATE_BACK-END/internal/utils"
)

// ChatHandler serves group chat history, posting and the live websocket.
type ChatHandler struct {
	hub      *chat.Hub
	listings repository.ListingRepository
	profiles repository.ProfileRepository
	log      *zap.Logger
}

func NewChatHandler(hub *chat.Hub, listings repository.ListingRepository, profiles repository.ProfileRepository, log *zap.Logger) *ChatHandler {
	return &ChatHandler{hub: hub, listings: listings, profiles: profiles, log: orNop(log)}
}

// ListMessages godoc
// @Summary      Group chat history
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        groupId  path  string  true  "Group (trip) ID"
// @Success      200  {object}  dto.ChatHistoryResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/chat/{groupId}/messages [get]
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.requireGroup(w, r)
	if !ok {
		return
	}
	msgs := h.hub.History(groupID)
	out := make([]dto.ChatMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toChatMessageResponse(m))
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.ChatHistoryResponse{GroupID: groupID, Messages: out})
}

// PostMessage godoc
// @Summary      Post a chat message
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        groupId  path  string  true  "Group (trip) ID"
// @Param        payload  body  dto.PostMessageRequest  true  "Message"
// @Success      201  {object}  dto.ChatMessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/chat/{groupId}/messages [post]
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.requireGroup(w, r)
	if !ok {
		return
	}

	var req dto.PostMessageRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	msg, err := h.hub.Post(r.Context(), groupID, h.sender(r), req.Text)
	if errors.Is(err, chat.ErrEmptyMessage) || errors.Is(err, chat.ErrMessageTooLong) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}
	if err != nil {
		h.log.Warn("chat post", zap.String("group_id", groupID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not send message")
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, toChatMessageResponse(msg))
}

// ServeWS godoc
// @Summary      Live group chat
// @Description  Websocket. Send {"text": "..."}; receive {"type":"message","data":{...}}. Pass the token as ?token=.
// @Tags         chat
// @Param        groupId  path   string  true  "Group (trip) ID"
// @Param        token    query  string  true  "Bearer token"
// @Success      101
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/chat/{groupId}/ws [get]
func (h *ChatHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.requireGroup(w, r)
	if !ok {
		return
	}
	h.hub.ServeWS(w, r, groupID, h.sender(r))
}

func (h *ChatHandler) requireGroup(w http.ResponseWriter, r *http.Request) (string, bool) {
	groupID := r.PathValue("groupId")
	_, err := h.listings.GetListing(r.Context(), groupID)
	if errors.Is(err, repository.ErrNotFound) {
		utils.WriteRedirectResponse(w, http.StatusNotFound, "Group not found", "", "/groups")
		return "", false
	}
	if err != nil {
		h.log.Error("load group", zap.String("group_id", groupID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Could not load group")
		return "", false
	}
	return groupID, true
}

// sender names the caller from their profile, falling back to the token claims.
func (h *ChatHandler) sender(r *http.Request) chat.Sender {
	user, _ := utils.GetAuthUserFromContext(r.Context())
	s := chat.Sender{UserID: user.UserID, Name: user.Name}
	if p, err := h.profiles.GetProfile(r.Context(), user.UserID); err == nil {
		if p.Name != "" {
			s.Name = p.Name
		}
		s.AvatarURL = p.AvatarURL
	}
	return s
}

func toChatMessageResponse(m models.ChatMessage) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		ID:              m.ID,
		GroupID:         m.GroupID,
		SenderID:        m.SenderID,
		SenderName:      m.SenderName,
		SenderAvatarURL: m.SenderAvatarURL,
		Text:            m.Text,
		Timestamp:       utils.FormatTimestamp(m.Timestamp),
	}
}
