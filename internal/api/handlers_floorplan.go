// handlers_floorplan.go - Floorplan configuration operation handlers
package api

import (
	"encoding/base64"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/floorplan-visualizer/backend/internal/floorplan"
	"github.com/floorplan-visualizer/backend/internal/models"
	"github.com/floorplan-visualizer/backend/internal/parser"
	"github.com/floorplan-visualizer/backend/internal/session"
	"github.com/floorplan-visualizer/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// FloorplanHandlerImpl implements the FloorplanHandler interface
type FloorplanHandlerImpl struct {
	store    storage.Store
	layouts  *session.Manager
	notifier *Notifier // nil disables notifications

	mu        sync.RWMutex
	currentID string
}

// NewFloorplanHandler creates a new floorplan handler instance
func NewFloorplanHandler(store storage.Store, layouts *session.Manager, notifier *Notifier) FloorplanHandler {
	return &FloorplanHandlerImpl{
		store:    store,
		layouts:  layouts,
		notifier: notifier,
	}
}

// SetCurrentFloorplan sets the currently active floorplan
func (h *FloorplanHandlerImpl) SetCurrentFloorplan(id string) {
	h.mu.Lock()
	h.currentID = id
	h.mu.Unlock()
}

// GetCurrentFloorplan returns the currently active floorplan ID
func (h *FloorplanHandlerImpl) GetCurrentFloorplan() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentID
}

// HandleUploadFloorplan uploads a floorplan document and activates it
func (h *FloorplanHandlerImpl) HandleUploadFloorplan(c echo.Context) error {
	var req uploadFloorplanRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if err := req.validate(); err != nil {
		return err
	}

	// Decode base64 content
	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}

	// Parse up front so broken documents are rejected before they are saved
	if _, _, err := parser.ParseFloorplanFromReader(strings.NewReader(string(decoded))); err != nil {
		return NewBadRequestError("invalid floorplan document", err)
	}

	info, err := h.store.SaveBytes(req.Name, decoded)
	if err != nil {
		return NewInternalError("failed to save floorplan file", err)
	}

	state, err := h.activate(info.ID)
	if err != nil {
		return NewInternalError("failed to load floorplan", err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"file":     info,
		"migrated": state.Migrated,
	})
}

// HandleSetActiveFloorplan activates a previously uploaded floorplan by ID
func (h *FloorplanHandlerImpl) HandleSetActiveFloorplan(c echo.Context) error {
	var req setActiveFloorplanRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if req.FloorplanID == "" {
		return NewValidationError("floorplanId")
	}

	if _, err := h.store.Get(req.FloorplanID); err != nil {
		return NewNotFoundError("floorplan", req.FloorplanID)
	}

	state, err := h.activate(req.FloorplanID)
	if err != nil {
		return NewInternalError("failed to load floorplan", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"floorplanId": req.FloorplanID,
		"migrated":    state.Migrated,
	})
}

// HandleGetLayout returns the active layout, parsed and migrated
func (h *FloorplanHandlerImpl) HandleGetLayout(c echo.Context) error {
	state, err := h.activeLayout()
	if err != nil {
		return err
	}
	if state == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"layout": models.FloorplanLayout{Entities: []models.Entity{}},
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"layout":      state.Layout,
		"floorplanId": state.FloorplanID,
		"loadId":      state.LoadID,
		"migrated":    state.Migrated,
	})
}

// HandleGetLayoutMsgpack returns the active layout in MessagePack format,
// used by the canvas renderer to skip JSON decoding on large plans
func (h *FloorplanHandlerImpl) HandleGetLayoutMsgpack(c echo.Context) error {
	state, err := h.activeLayout()
	if err != nil {
		return err
	}

	layout := &models.FloorplanLayout{Entities: []models.Entity{}}
	if state != nil {
		layout = state.Layout
	}

	data, err := msgpack.Marshal(layout)
	if err != nil {
		return NewInternalError("failed to encode layout", err)
	}

	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}

// HandleCheckMigration reports whether the active floorplan document still
// carries legacy color fields. The check reads the stored document as-is;
// migration only ever runs on load, never against the stored file
func (h *FloorplanHandlerImpl) HandleCheckMigration(c echo.Context) error {
	id := h.GetCurrentFloorplan()
	if id == "" {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"needsMigration": false,
		})
	}

	path, err := h.store.GetFilePath(id)
	if err != nil {
		return NewNotFoundError("floorplan", id)
	}

	file, err := os.Open(path)
	if err != nil {
		return NewInternalError("failed to open floorplan file", err)
	}
	defer file.Close()

	doc, err := parser.ParseRawDocument(file)
	if err != nil {
		return NewInternalError("failed to parse floorplan document", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"floorplanId":    id,
		"needsMigration": floorplan.NeedsMigration(doc),
	})
}

// HandleMigrateDocument migrates a raw floorplan document supplied in the
// request body and returns the rewritten document. Stateless: nothing is
// saved. This is the integration point for external config loaders
func (h *FloorplanHandlerImpl) HandleMigrateDocument(c echo.Context) error {
	var doc map[string]any
	if err := c.Bind(&doc); err != nil {
		return NewBadRequestError("invalid JSON document", err)
	}

	migrated := floorplan.NeedsMigration(doc)
	doc = floorplan.MigrateConfig(doc)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"document": doc,
		"migrated": migrated,
	})
}

// HandleRecentFloorplans returns recently uploaded floorplan files
func (h *FloorplanHandlerImpl) HandleRecentFloorplans(c echo.Context) error {
	files, err := h.store.List(50)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}

	// Filter to floorplan document types
	var planFiles []*models.FileInfo
	for _, f := range files {
		nameLower := strings.ToLower(f.Name)
		if strings.HasSuffix(nameLower, ".json") ||
			strings.HasSuffix(nameLower, ".yaml") ||
			strings.HasSuffix(nameLower, ".yml") {
			planFiles = append(planFiles, f)
		}
	}

	return c.JSON(http.StatusOK, planFiles)
}

// HandleDeleteFile removes an uploaded floorplan file
func (h *FloorplanHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}

	h.layouts.Invalidate(id)
	h.mu.Lock()
	if h.currentID == id {
		h.currentID = ""
	}
	h.mu.Unlock()

	return c.NoContent(http.StatusNoContent)
}

// HandleRenameFile updates the display name of an uploaded file
func (h *FloorplanHandlerImpl) HandleRenameFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req renameFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Name == "" {
		return NewValidationError("name")
	}

	info, err := h.store.Rename(id, req.Name)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

// Helper methods

// activate loads the floorplan into the layout cache, marks it current, and
// notifies connected viewers
func (h *FloorplanHandlerImpl) activate(id string) (*session.LayoutState, error) {
	path, err := h.store.GetFilePath(id)
	if err != nil {
		return nil, err
	}

	state, err := h.layouts.Load(id, path)
	if err != nil {
		return nil, err
	}

	h.SetCurrentFloorplan(id)

	if h.notifier != nil {
		h.notifier.Broadcast(MsgTypeFloorplanActivated, map[string]interface{}{
			"floorplanId": id,
			"loadId":      state.LoadID,
			"migrated":    state.Migrated,
		})
	}

	return state, nil
}

// activeLayout returns the cached layout for the current floorplan, loading
// it on a cache miss. Returns (nil, nil) when no floorplan is active
func (h *FloorplanHandlerImpl) activeLayout() (*session.LayoutState, error) {
	id := h.GetCurrentFloorplan()
	if id == "" {
		return nil, nil
	}

	if state, ok := h.layouts.Get(id); ok {
		return state, nil
	}

	path, err := h.store.GetFilePath(id)
	if err != nil {
		return nil, NewNotFoundError("floorplan", id)
	}

	state, err := h.layouts.Load(id, path)
	if err != nil {
		return nil, NewInternalError("failed to load floorplan", err)
	}
	return state, nil
}

// Request types

type uploadFloorplanRequest struct {
	Name string `json:"name"`
	Data string `json:"data"` // Base64-encoded YAML or JSON
}

func (r *uploadFloorplanRequest) validate() error {
	if r.Name == "" {
		return NewValidationError("name")
	}
	if r.Data == "" {
		return NewValidationError("data")
	}
	return nil
}

type setActiveFloorplanRequest struct {
	FloorplanID string `json:"floorplanId"`
}

type renameFileRequest struct {
	Name string `json:"name"`
}
