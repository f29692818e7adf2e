package handler

import (
	"net/http"

	"Trek_Community/internal/model"
	"Trek_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type EVCHandler struct {
	svc *service.VerificationService
	log zerolog.Logger
}

type GenerateEVCReq struct {
	Purpose string `json:"purpose" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
}

type VerifyEVCReq struct {
	Purpose string `json:"purpose" binding:"required"`
	Code    string `json:"code" binding:"required"`
}

func NewEVCHandler(svc *service.VerificationService, log zerolog.Logger) *EVCHandler {
	return &EVCHandler{svc: svc, log: log}
}

// Generate 签发验证码。响应里只有确认 id，验证码本身只进邮件
func (h *EVCHandler) Generate(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}

	var req GenerateEVCReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	purpose, err := model.ParsePurpose(req.Purpose)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid purpose"})
		return
	}

	confirmation, err := h.svc.Generate(c.Request.Context(), userID, purpose, req.Email)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "code sent", "confirmation": confirmation})
}

func (h *EVCHandler) Verify(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}

	var req VerifyEVCReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	purpose, err := model.ParsePurpose(req.Purpose)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid purpose"})
		return
	}

	if err := h.svc.Verify(c.Request.Context(), userID, purpose, req.Code); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "verified"})
}
