package handlers

import (
	"seatpool/internal/services"
	"seatpool/internal/utils"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

type sendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SendMessage posts a message to a booking's chat
func (h *ChatHandler) SendMessage(c *gin.Context) {
	senderID, ok := currentUserID(c)
	if !ok {
		return
	}

	bookingID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request sendMessageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), bookingID, senderID, request.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Message sent", message)
}

// GetMessages retrieves a booking's chat history
func (h *ChatHandler) GetMessages(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	bookingID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	messages, total, err := h.chatService.GetMessages(c.Request.Context(), bookingID, callerID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      len(messages),
	}
	utils.SuccessResponseWithMeta(c, "Messages retrieved successfully", messages, meta)
}
