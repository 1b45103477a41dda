// Package floorplan normalizes floorplan configuration documents from the
// legacy flat color-property layout to the nested colors layout.
package floorplan

// Default colors substituted for legacy fields that are missing when an
// entity is migrated.
const (
	DefaultOnColor  = "#facc15"
	DefaultOffColor = "#94a3b8"

	DefaultCameraIdleColor      = "#6b7280"
	DefaultCameraRecordingColor = "#ef4444"
	DefaultCameraStreamingColor = "#3b82f6"
)

// TypeCamera is the entity type that uses the camera color set. Every other
// type (or no type at all) uses the binary on/off color set.
const TypeCamera = "camera"

// MigrateConfig rewrites every entity's style block in place, folding legacy
// flat color fields into a nested "colors" record. Entities that already
// have "colors", have no style, or have no legacy fields are left untouched,
// as are documents without an entity list. The transform is idempotent and
// never fails; malformed shapes simply migrate nothing.
//
// The style maps inside the document are mutated rather than copied. Callers
// that need the original document intact must copy it first.
func MigrateConfig(doc map[string]any) map[string]any {
	entities, ok := doc["entities"].([]any)
	if !ok {
		return doc
	}

	migrated := make([]any, len(entities))
	for i, entity := range entities {
		migrated[i] = migrateEntity(entity)
	}
	doc["entities"] = migrated

	return doc
}

// migrateEntity normalizes a single entity's style. Returns the entity
// unchanged when there is nothing to do.
func migrateEntity(entity any) any {
	e, ok := entity.(map[string]any)
	if !ok {
		return entity
	}

	style, ok := e["style"].(map[string]any)
	if !ok {
		return entity
	}

	// Already migrated: an existing colors record blocks everything, even
	// if stale legacy fields are still lying around.
	if truthy(style["colors"]) {
		return entity
	}

	if entityType, _ := e["type"].(string); entityType == TypeCamera {
		migrateCameraStyle(style)
	} else {
		migrateBinaryStyle(style)
	}

	return entity
}

func migrateCameraStyle(style map[string]any) {
	idle := style["cameraIdleColor"]
	recording := style["cameraRecordingColor"]
	streaming := style["cameraStreamingColor"]

	if !truthy(idle) && !truthy(recording) && !truthy(streaming) {
		return
	}

	style["colors"] = map[string]any{
		"idleColor":      colorOrDefault(idle, DefaultCameraIdleColor),
		"recordingColor": colorOrDefault(recording, DefaultCameraRecordingColor),
		"streamingColor": colorOrDefault(streaming, DefaultCameraStreamingColor),
	}
	delete(style, "cameraIdleColor")
	delete(style, "cameraRecordingColor")
	delete(style, "cameraStreamingColor")
}

func migrateBinaryStyle(style map[string]any) {
	on := style["onColor"]
	off := style["offColor"]

	if !truthy(on) && !truthy(off) {
		return
	}

	style["colors"] = map[string]any{
		"onColor":  colorOrDefault(on, DefaultOnColor),
		"offColor": colorOrDefault(off, DefaultOffColor),
	}
	delete(style, "onColor")
	delete(style, "offColor")
}

// NeedsMigration reports whether MigrateConfig would change at least one
// entity in the document.
//
// The legacy-field check deliberately ignores the entity type: camera fields
// on a non-camera entity (or binary fields on a camera) still count as "old
// data present", matching the behavior the renderer has always relied on.
func NeedsMigration(doc map[string]any) bool {
	entities, ok := doc["entities"].([]any)
	if !ok {
		return false
	}

	for _, entity := range entities {
		e, ok := entity.(map[string]any)
		if !ok {
			continue
		}
		style, ok := e["style"].(map[string]any)
		if !ok {
			continue
		}

		hasOldBinaryColors := truthy(style["onColor"]) || truthy(style["offColor"])
		hasOldCameraColors := truthy(style["cameraIdleColor"]) ||
			truthy(style["cameraRecordingColor"]) ||
			truthy(style["cameraStreamingColor"])
		hasNewColors := truthy(style["colors"])

		if (hasOldBinaryColors || hasOldCameraColors) && !hasNewColors {
			return true
		}
	}

	return false
}

func colorOrDefault(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

// truthy mirrors the loose presence check the renderer's config loader uses:
// nil, empty strings, false, zero numbers, and empty maps or slices all read
// as absent.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case int:
		return t != 0
	case float64:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}
