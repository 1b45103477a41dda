package models

// FloorplanLayout is the typed view of a floorplan configuration document
// after color migration has run. API consumers get this shape; the migration
// itself operates on the raw document tree.
type FloorplanLayout struct {
	Version  string   `json:"version,omitempty"`
	Name     string   `json:"name,omitempty"`
	Entities []Entity `json:"entities"`
}

// Entity is a single renderable element on the floorplan (switch, camera,
// sensor, ...).
type Entity struct {
	ID       string  `json:"id,omitempty"`
	Type     string  `json:"type,omitempty"` // "camera" selects the camera color set
	Name     string  `json:"name,omitempty"`
	Room     string  `json:"room,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
	Style    *Style  `json:"style,omitempty"`
}

// Style holds an entity's presentation attributes. After migration the color
// fields always live in the nested Colors record; the flat legacy fields are
// gone.
type Style struct {
	Icon    string  `json:"icon,omitempty"`
	Label   string  `json:"label,omitempty"`
	Scale   float64 `json:"scale,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
	Colors  *Colors `json:"colors,omitempty"`
}

// Colors is the nested color record. Which fields are populated depends on
// the entity type: binary entities use On/Off, cameras use the
// Idle/Recording/Streaming triple.
type Colors struct {
	OnColor        string `json:"onColor,omitempty"`
	OffColor       string `json:"offColor,omitempty"`
	IdleColor      string `json:"idleColor,omitempty"`
	RecordingColor string `json:"recordingColor,omitempty"`
	StreamingColor string `json:"streamingColor,omitempty"`
}
