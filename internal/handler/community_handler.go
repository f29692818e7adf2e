package handler

import (
	"net/http"
	"strconv"

	"Trek_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type CommunityHandler struct {
	svc *service.CommunityService
	log zerolog.Logger
}

// CommunityReq 创建/更新共用。成员列表没有字段位：
// 成员只能走 addMember/leave，请求体结构上就带不进来
type CommunityReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
}

type AddMemberReq struct {
	CommunityID uint64 `json:"community_id" binding:"required"`
	UserEmail   string `json:"user_email" binding:"required,email"`
}

func NewCommunityHandler(svc *service.CommunityService, log zerolog.Logger) *CommunityHandler {
	return &CommunityHandler{svc: svc, log: log}
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *CommunityHandler) Create(c *gin.Context) {
	userID := currentUserID(c)

	var req CommunityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	community, err := h.svc.Create(c.Request.Context(), userID, req.Name, req.Description, isPublic)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": community, "members": []uint64{userID}})
}

func (h *CommunityHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	community, members, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": community, "members": members})
}

func (h *CommunityHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CommunityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	community, err := h.svc.Update(c.Request.Context(), id, req.Name, req.Description, isPublic)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "community updated", "community": community})
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "community deleted"})
}

// AddMember 幂等：已是成员返回 200 并打上 already_member 标记
func (h *CommunityHandler) AddMember(c *gin.Context) {
	var req AddMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	community, added, err := h.svc.AddMember(c.Request.Context(), req.CommunityID, req.UserEmail)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	msg := "member added"
	if !added {
		msg = "already a member"
	}
	c.JSON(http.StatusOK, gin.H{"msg": msg, "already_member": !added, "community": community})
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Leave(c.Request.Context(), id, currentUserID(c)); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "left community"})
}

func (h *CommunityHandler) Members(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	users, err := h.svc.Members(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": users})
}

func (h *CommunityHandler) ListPublic(c *gin.Context) {
	list, err := h.svc.ListPublic(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) ListJoined(c *gin.Context) {
	list, err := h.svc.ListJoined(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
