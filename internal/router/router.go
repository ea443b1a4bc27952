package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/compliance/api/handler"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Contact   *apiHandler.ContactHandler
	Profile   *apiHandler.ProfileHandler
	Client    *apiHandler.ClientHandler
	Task      *apiHandler.TaskHandler
	Document  *apiHandler.DocumentHandler
	Analytics *apiHandler.AnalyticsHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", handlers.Auth.Logout)

	r.POST("/api/v1/contact", handlers.Contact.Submit)

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	r.PUT("/api/v1/profile", authMiddleware(handlers.Profile.UpdateProfile))

	r.GET("/api/v1/clients", authMiddleware(handlers.Client.List))
	r.POST("/api/v1/clients", authMiddleware(handlers.Client.Create))
	r.GET("/api/v1/clients/active", authMiddleware(handlers.Client.ListActive))
	r.GET("/api/v1/clients/{id}", authMiddleware(handlers.Client.Get))
	r.PUT("/api/v1/clients/{id}", authMiddleware(handlers.Client.Update))
	r.DELETE("/api/v1/clients/{id}", authMiddleware(handlers.Client.Delete))

	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	r.GET("/api/v1/documents", authMiddleware(handlers.Document.List))
	r.POST("/api/v1/documents", authMiddleware(handlers.Document.Create))
	r.POST("/api/v1/documents/upload", authMiddleware(handlers.Document.Upload))
	r.GET("/api/v1/documents/{id}", authMiddleware(handlers.Document.Get))
	r.GET("/api/v1/documents/{id}/link", authMiddleware(handlers.Document.Link))
	r.DELETE("/api/v1/documents/{id}", authMiddleware(handlers.Document.Delete))

	r.GET("/api/v1/analytics", authMiddleware(handlers.Analytics.Summary))

	return r
}
