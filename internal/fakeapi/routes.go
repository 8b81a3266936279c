package fakeapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raphaelgruber/tenantchat/internal/models"
)

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger), s.recorder())

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Route not found")
	})
	r.GET("/health", func(c *gin.Context) {
		ok(c, http.StatusOK, "ok", gin.H{"status": "healthy"})
	})

	api := r.Group("/api", s.audit())

	auth := api.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/register", func(c *gin.Context) {
		fail(c, http.StatusForbidden, "Public registration is disabled. Contact your company administrator.")
	})
	auth.GET("/me", s.authenticate(), s.me)
	auth.POST("/logout", s.authenticate(), s.logout)

	chats := api.Group("/chats", s.authenticate())
	chats.POST("", s.createChat)
	chats.GET("", s.listChats)
	chats.GET("/:chat_id", s.getChat)
	chats.PUT("/:chat_id", s.updateChat)
	chats.DELETE("/:chat_id", s.deleteChat)
	chats.POST("/:chat_id/cleanup", s.cleanupChat)
	chats.POST("/:chat_id/messages", s.createMessage)
	chats.GET("/:chat_id/messages", s.listMessages)
	chats.POST("/:chat_id/documents", s.uploadDocument)

	admin := api.Group("/admin", s.authenticate())
	admin.POST("/users", requirePermission(models.PermissionManageUsers), s.createUser)
	admin.GET("/users", requirePermission(models.PermissionViewUsers), s.listUsers)
	admin.PUT("/users/:id", requirePermission(models.PermissionManageUsers), s.updateUser)
	admin.DELETE("/users/:id", requirePermission(models.PermissionManageUsers), s.deactivateUser)
	admin.GET("/roles", requirePermission(models.PermissionViewRoles), s.listRoles)
	admin.GET("/activity-logs", requirePermission(models.PermissionViewActivityLogs), s.listActivityLogs)

	companies := admin.Group("/companies", requirePermission(models.PermissionManageCompanies))
	companies.POST("", s.createCompany)
	companies.GET("", s.listCompanies)
	companies.GET("/:id", s.getCompany)
	companies.DELETE("/:id", s.deactivateCompany)

	return r
}
