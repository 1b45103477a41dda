// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// FloorplanHandler handles floorplan configuration operations
type FloorplanHandler interface {
	HandleUploadFloorplan(c echo.Context) error
	HandleSetActiveFloorplan(c echo.Context) error
	HandleGetLayout(c echo.Context) error
	HandleGetLayoutMsgpack(c echo.Context) error
	HandleCheckMigration(c echo.Context) error
	HandleMigrateDocument(c echo.Context) error
	HandleRecentFloorplans(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleRenameFile(c echo.Context) error

	// Used by other handlers and by the server during startup
	SetCurrentFloorplan(id string)
	GetCurrentFloorplan() string
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
