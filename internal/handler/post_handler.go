package handler

import (
	"net/http"

	"Trek_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type PostHandler struct {
	svc *service.PostService
	log zerolog.Logger
}

type CreatePostReq struct {
	CommunityID uint64 `json:"community_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content"`
}

// UpdatePostReq 评论列表没有字段位，编辑请求不可能覆盖它
type UpdatePostReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func NewPostHandler(svc *service.PostService, log zerolog.Logger) *PostHandler {
	return &PostHandler{svc: svc, log: log}
}

func (h *PostHandler) Create(c *gin.Context) {
	var req CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	post, err := h.svc.Create(c.Request.Context(), currentUserID(c), req.CommunityID, req.Title, req.Content)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post, "comments": []uint64{}})
}

func (h *PostHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	post, comments, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post, "comments": comments})
}

func (h *PostHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	post, comments, err := h.svc.Update(c.Request.Context(), id, req.Title, req.Content)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "post updated", "post": post, "comments": comments})
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "post deleted"})
}

// ListByCommunity 社区帖子列表
func (h *PostHandler) ListByCommunity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.svc.ListByCommunity(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
