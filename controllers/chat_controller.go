package controllers

import (
	"net/http"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/models"
	"github.com/MilktreeAgency/landco/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ChatController struct {
	chatService services.ChatService
	validate    *validator.Validate
}

func NewChatController(svc services.ChatService) *ChatController {
	return &ChatController{chatService: svc, validate: newValidator()}
}

// Chat handles POST /api/chat
func (cc *ChatController) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := bindAndValidate(c, cc.validate, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	resp, err := cc.chatService.Send(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
