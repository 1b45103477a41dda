// routes.go - Route registration helpers
package api

import (
	"github.com/floorplan-visualizer/backend/internal/session"
	"github.com/floorplan-visualizer/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store             storage.Store
	LayoutMgr         *session.Manager
	Notifier          *Notifier
	Version           string
	AllowFileDeletion bool
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Floorplan FloorplanHandler
	Notifier  *Notifier

	allowFileDeletion bool
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:            NewHealthHandler(deps.Version),
		Floorplan:         NewFloorplanHandler(deps.Store, deps.LayoutMgr, deps.Notifier),
		Notifier:          deps.Notifier,
		allowFileDeletion: deps.AllowFileDeletion,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// WebSocket notifications
	if handlers.Notifier != nil {
		apiGroup.GET("/ws/floorplan", handlers.Notifier.HandleWebSocket)
	}

	// Floorplan documents
	fpGroup := apiGroup.Group("/floorplan")
	fpGroup.POST("/upload", handlers.Floorplan.HandleUploadFloorplan)
	fpGroup.POST("/active", handlers.Floorplan.HandleSetActiveFloorplan)
	fpGroup.GET("/layout", handlers.Floorplan.HandleGetLayout)
	fpGroup.GET("/layout/msgpack", handlers.Floorplan.HandleGetLayoutMsgpack)
	fpGroup.GET("/check", handlers.Floorplan.HandleCheckMigration)
	fpGroup.POST("/migrate", handlers.Floorplan.HandleMigrateDocument)
	fpGroup.GET("/files/recent", handlers.Floorplan.HandleRecentFloorplans)

	// File management
	if handlers.allowFileDeletion {
		apiGroup.DELETE("/files/:id", handlers.Floorplan.HandleDeleteFile)
	}
	apiGroup.PUT("/files/:id", handlers.Floorplan.HandleRenameFile)
}
