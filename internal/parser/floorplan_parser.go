package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/floorplan-visualizer/backend/internal/floorplan"
	"github.com/floorplan-visualizer/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// ParseFloorplan parses a floorplan configuration file (YAML or JSON),
// migrates legacy color fields if the document still carries them, and binds
// the result into the typed layout. The second return value reports whether
// the migration actually ran.
func ParseFloorplan(filePath string) (*models.FloorplanLayout, bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, false, err
	}
	defer file.Close()

	return ParseFloorplanFromReader(file)
}

// ParseFloorplanFromReader parses a floorplan document from an io.Reader.
func ParseFloorplanFromReader(r io.Reader) (*models.FloorplanLayout, bool, error) {
	doc, err := ParseRawDocument(r)
	if err != nil {
		return nil, false, err
	}

	migrated := floorplan.NeedsMigration(doc)
	if migrated {
		doc = floorplan.MigrateConfig(doc)
	}

	layout, err := BindLayout(doc)
	if err != nil {
		return nil, false, err
	}

	return layout, migrated, nil
}

// ParseRawDocument decodes a floorplan document into the dynamic tree the
// migration operates on, without migrating it. YAML is a superset of JSON,
// so a single decoder covers both on-disk formats.
func ParseRawDocument(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing floorplan document: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	return doc, nil
}

// BindLayout converts a (migrated) document tree into the typed layout used
// by the API. Unknown fields are dropped; missing ones stay zero.
func BindLayout(doc map[string]any) (*models.FloorplanLayout, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding floorplan document: %w", err)
	}

	var layout models.FloorplanLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("binding floorplan layout: %w", err)
	}

	return &layout, nil
}
