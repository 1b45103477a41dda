package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/floorplan-visualizer/backend/internal/models"
	"github.com/floorplan-visualizer/backend/internal/session"
	"github.com/floorplan-visualizer/backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/vmihailenco/msgpack/v5"
)

func TestHandleGetLayout_NoActiveFloorplan(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/floorplan/layout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, h.HandleGetLayout(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"entities":[]`)
	}
}

func TestHandleGetLayout_MigratesLegacyDocument(t *testing.T) {
	h, store := newTestHandler(t)

	info, err := store.SaveBytes("ground.json",
		[]byte(`{"entities":[{"id":"sw1","type":"switch","style":{"onColor":"#ffee00"}}]}`))
	assert.NoError(t, err)
	h.SetCurrentFloorplan(info.ID)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/floorplan/layout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, h.HandleGetLayout(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"migrated":true`)
		assert.Contains(t, rec.Body.String(), `"onColor":"#ffee00"`)
		// Legacy field folded into the nested colors record
		assert.Contains(t, rec.Body.String(), `"colors"`)
	}
}

func TestHandleGetLayoutMsgpack(t *testing.T) {
	h, store := newTestHandler(t)

	info, err := store.SaveBytes("ground.json",
		[]byte(`{"entities":[{"id":"cam1","type":"camera","style":{"cameraRecordingColor":"#d00"}}]}`))
	assert.NoError(t, err)
	h.SetCurrentFloorplan(info.ID)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/floorplan/layout/msgpack", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, h.HandleGetLayoutMsgpack(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/x-msgpack", rec.Header().Get(echo.HeaderContentType))

		var layout models.FloorplanLayout
		assert.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &layout))
		if assert.Len(t, layout.Entities, 1) {
			colors := layout.Entities[0].Style.Colors
			if assert.NotNil(t, colors) {
				assert.Equal(t, "#d00", colors.RecordingColor)
			}
		}
	}
}

func TestHandleMigrateDocument(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"entities":[{"type":"switch","style":{"onColor":"#fff"}}]}`

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/floorplan/migrate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, h.HandleMigrateDocument(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"migrated":true`)
		assert.Contains(t, rec.Body.String(), `"offColor":"#94a3b8"`)
	}
}

func TestHandleMigrateDocument_AlreadyMigrated(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"entities":[{"type":"switch","style":{"colors":{"onColor":"#fff"}}}]}`

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/floorplan/migrate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, h.HandleMigrateDocument(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"migrated":false`)
	}
}

func TestHandleHealth(t *testing.T) {
	h := NewHealthHandler("test")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, h.HandleHealth(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	}
}

func TestRegisterRoutes(t *testing.T) {
	store := testutil.NewMockStorage()
	t.Cleanup(store.Cleanup)

	handlers := NewHandlers(&Dependencies{
		Store:             store,
		LayoutMgr:         session.NewManager(),
		Notifier:          NewNotifier(256),
		Version:           "test",
		AllowFileDeletion: true,
	})

	e := echo.New()
	RegisterRoutes(e, handlers)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/floorplan/layout", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
