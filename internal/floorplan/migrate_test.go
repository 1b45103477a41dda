package floorplan

import (
	"reflect"
	"testing"
)

func entityStyle(t *testing.T, doc map[string]any, i int) map[string]any {
	t.Helper()
	entities, ok := doc["entities"].([]any)
	if !ok {
		t.Fatal("entities is not a sequence")
	}
	e, ok := entities[i].(map[string]any)
	if !ok {
		t.Fatalf("entity %d is not a record", i)
	}
	style, ok := e["style"].(map[string]any)
	if !ok {
		t.Fatalf("entity %d has no style record", i)
	}
	return style
}

func TestMigrateConfig_NoEntities(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{"empty document", map[string]any{}},
		{"entities is not a sequence", map[string]any{"entities": "oops"}},
		{"entities is a record", map[string]any{"entities": map[string]any{"a": 1}}},
		{"entities is nil", map[string]any{"entities": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := map[string]any{}
			for k, v := range tt.doc {
				want[k] = v
			}

			got := MigrateConfig(tt.doc)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("document changed: got %v, want %v", got, want)
			}
			if NeedsMigration(tt.doc) {
				t.Error("NeedsMigration reported true for document without entities")
			}
		})
	}
}

func TestMigrateConfig_GenericEntity(t *testing.T) {
	doc := map[string]any{
		"entities": []any{
			map[string]any{
				"type":  "switch",
				"style": map[string]any{"onColor": "#fff"},
			},
		},
	}

	MigrateConfig(doc)

	style := entityStyle(t, doc, 0)
	colors, ok := style["colors"].(map[string]any)
	if !ok {
		t.Fatal("colors record was not created")
	}
	if colors["onColor"] != "#fff" {
		t.Errorf("onColor = %v, want #fff", colors["onColor"])
	}
	if colors["offColor"] != DefaultOffColor {
		t.Errorf("offColor = %v, want default %s", colors["offColor"], DefaultOffColor)
	}
	if _, exists := style["onColor"]; exists {
		t.Error("legacy onColor was not removed")
	}
	if _, exists := style["offColor"]; exists {
		t.Error("legacy offColor was not removed")
	}
}

func TestMigrateConfig_CameraEntity(t *testing.T) {
	doc := map[string]any{
		"entities": []any{
			map[string]any{
				"type":  "camera",
				"style": map[string]any{"cameraRecordingColor": "#abc"},
			},
		},
	}

	MigrateConfig(doc)

	style := entityStyle(t, doc, 0)
	colors, ok := style["colors"].(map[string]any)
	if !ok {
		t.Fatal("colors record was not created")
	}
	want := map[string]any{
		"idleColor":      DefaultCameraIdleColor,
		"recordingColor": "#abc",
		"streamingColor": DefaultCameraStreamingColor,
	}
	if !reflect.DeepEqual(colors, want) {
		t.Errorf("colors = %v, want %v", colors, want)
	}
	for _, field := range []string{"cameraIdleColor", "cameraRecordingColor", "cameraStreamingColor"} {
		if _, exists := style[field]; exists {
			t.Errorf("legacy field %s was not removed", field)
		}
	}
}

func TestMigrateConfig_TypeSelectsBranch(t *testing.T) {
	// A non-camera entity carrying camera fields keeps them: the migrator
	// only acts on the field set that matches the entity type.
	doc := map[string]any{
		"entities": []any{
			map[string]any{
				"type":  "switch",
				"style": map[string]any{"cameraIdleColor": "#123"},
			},
		},
	}

	MigrateConfig(doc)

	style := entityStyle(t, doc, 0)
	if _, exists := style["colors"]; exists {
		t.Error("colors synthesized for camera fields on a switch entity")
	}
	if style["cameraIdleColor"] != "#123" {
		t.Error("camera field on switch entity was modified")
	}
}

func TestMigrateConfig_AlreadyMigrated(t *testing.T) {
	style := map[string]any{
		"colors": map[string]any{
			"idleColor":      "#000",
			"recordingColor": "#000",
			"streamingColor": "#000",
		},
		"cameraIdleColor": "#fff",
	}
	doc := map[string]any{
		"entities": []any{
			map[string]any{"type": "camera", "style": style},
		},
	}

	MigrateConfig(doc)

	got := entityStyle(t, doc, 0)
	// Presence of colors blocks migration even with stale legacy fields.
	if got["cameraIdleColor"] != "#fff" {
		t.Error("stale legacy field was touched on an already-migrated entity")
	}
	colors := got["colors"].(map[string]any)
	if colors["idleColor"] != "#000" {
		t.Error("existing colors record was modified")
	}
}

func TestMigrateConfig_NoStyleOrNoLegacyFields(t *testing.T) {
	doc := map[string]any{
		"entities": []any{
			map[string]any{"type": "switch"},
			map[string]any{"type": "camera", "style": map[string]any{"label": "Front door"}},
			"not-a-record",
		},
	}

	MigrateConfig(doc)

	entities := doc["entities"].([]any)
	if len(entities) != 3 {
		t.Fatalf("entity count changed: %d", len(entities))
	}

	style := entityStyle(t, doc, 1)
	if _, exists := style["colors"]; exists {
		t.Error("colors synthesized with no legacy fields present")
	}
	if entities[2] != "not-a-record" {
		t.Error("non-record entity was altered")
	}
	if NeedsMigration(doc) {
		t.Error("NeedsMigration reported true with nothing to migrate")
	}
}

func TestMigrateConfig_EmptyLegacyValuesIgnored(t *testing.T) {
	doc := map[string]any{
		"entities": []any{
			map[string]any{
				"type":  "switch",
				"style": map[string]any{"onColor": "", "offColor": ""},
			},
		},
	}

	MigrateConfig(doc)

	style := entityStyle(t, doc, 0)
	if _, exists := style["colors"]; exists {
		t.Error("empty color strings should not trigger migration")
	}
}

func TestMigrateConfig_Idempotent(t *testing.T) {
	doc := map[string]any{
		"version": "2",
		"entities": []any{
			map[string]any{
				"type":  "switch",
				"style": map[string]any{"onColor": "#fff", "offColor": "#000"},
			},
			map[string]any{
				"type": "camera",
				"style": map[string]any{
					"cameraIdleColor":      "#111",
					"cameraStreamingColor": "#222",
				},
			},
			map[string]any{"type": "sensor"},
		},
	}

	want := map[string]any{
		"version": "2",
		"entities": []any{
			map[string]any{
				"type": "switch",
				"style": map[string]any{
					"colors": map[string]any{"onColor": "#fff", "offColor": "#000"},
				},
			},
			map[string]any{
				"type": "camera",
				"style": map[string]any{
					"colors": map[string]any{
						"idleColor":      "#111",
						"recordingColor": DefaultCameraRecordingColor,
						"streamingColor": "#222",
					},
				},
			},
			map[string]any{"type": "sensor"},
		},
	}

	once := MigrateConfig(doc)
	if !reflect.DeepEqual(once, want) {
		t.Fatalf("first migration:\ngot  %v\nwant %v", once, want)
	}

	twice := MigrateConfig(once)
	if !reflect.DeepEqual(twice, want) {
		t.Errorf("second migration changed the document:\ngot  %v\nwant %v", twice, want)
	}
	if NeedsMigration(twice) {
		t.Error("NeedsMigration reported true after migration")
	}
}

func TestNeedsMigration(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want bool
	}{
		{
			name: "legacy binary color present",
			doc: map[string]any{"entities": []any{
				map[string]any{"style": map[string]any{"onColor": "#fff"}},
			}},
			want: true,
		},
		{
			name: "already migrated",
			doc: map[string]any{"entities": []any{
				map[string]any{"style": map[string]any{
					"colors": map[string]any{"onColor": "#fff"},
				}},
			}},
			want: false,
		},
		{
			name: "no style",
			doc: map[string]any{"entities": []any{
				map[string]any{"type": "switch"},
			}},
			want: false,
		},
		{
			name: "empty entities",
			doc:  map[string]any{"entities": []any{}},
			want: false,
		},
		{
			// The detector is type-blind: camera fields on a switch still
			// read as old data, even though the migrator would skip them.
			name: "camera fields on generic entity",
			doc: map[string]any{"entities": []any{
				map[string]any{
					"type":  "switch",
					"style": map[string]any{"cameraRecordingColor": "#abc"},
				},
			}},
			want: true,
		},
		{
			name: "legacy fields alongside colors",
			doc: map[string]any{"entities": []any{
				map[string]any{"style": map[string]any{
					"onColor": "#fff",
					"colors":  map[string]any{"onColor": "#000"},
				}},
			}},
			want: false,
		},
		{
			name: "one stale entity among migrated ones",
			doc: map[string]any{"entities": []any{
				map[string]any{"style": map[string]any{
					"colors": map[string]any{"onColor": "#000"},
				}},
				map[string]any{"style": map[string]any{"offColor": "#333"}},
			}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsMigration(tt.doc); got != tt.want {
				t.Errorf("NeedsMigration() = %v, want %v", got, tt.want)
			}
		})
	}
}
