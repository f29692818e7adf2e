package router

import (
	"Trek_Community/internal/handler"
	"Trek_Community/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	User      *handler.UserHandler
	EVC       *handler.EVCHandler
	Community *handler.CommunityHandler
	Post      *handler.PostHandler
	Comment   *handler.CommentHandler
}

func InitRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", h.User.Register)
		userGroup.POST("/login", h.User.Login)
		userGroup.POST("/forgot", h.User.ForgotPassword)
		userGroup.POST("/reset", h.User.ResetPassword)
	}

	// token 相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", h.User.TokenRefresh)
	}

	// 登录态接口
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/logout", h.User.Logout)
		authGroup.POST("/change-password", h.User.ChangePassword)
	}

	// 邮箱验证码接口
	evcGroup := r.Group("/api/evc")
	evcGroup.Use(middleware.AuthMiddleware())
	{
		evcGroup.POST("/generate", h.EVC.Generate)
		evcGroup.POST("/verify", h.EVC.Verify)
	}

	// 社区/帖子/评论接口
	communityGroup := r.Group("/api/communities")
	communityGroup.Use(middleware.AuthMiddleware())
	{
		communityGroup.GET("/public", h.Community.ListPublic)
		communityGroup.GET("/joined", h.Community.ListJoined)
		communityGroup.POST("", h.Community.Create)
		communityGroup.PUT("/addMember", h.Community.AddMember)
		// gin 的路由树不允许同一段里静态路径和参数混用，id 类路径挂在 /info 下
		communityGroup.GET("/info/:id", h.Community.Get)
		communityGroup.PUT("/info/:id", h.Community.Update)
		communityGroup.DELETE("/info/:id", h.Community.Delete)
		communityGroup.POST("/info/:id/leave", h.Community.Leave)
		communityGroup.GET("/info/:id/members", h.Community.Members)
		communityGroup.GET("/info/:id/posts", h.Post.ListByCommunity)

		communityGroup.POST("/post", h.Post.Create)
		communityGroup.GET("/post/:id", h.Post.Get)
		communityGroup.PUT("/post/:id", h.Post.Update)
		communityGroup.DELETE("/post/:id", h.Post.Delete)
		communityGroup.GET("/post/:id/comments", h.Comment.ListByPost)

		communityGroup.POST("/comment", h.Comment.Create)
		communityGroup.DELETE("/comment/:id", h.Comment.Delete)
	}

	return r
}
