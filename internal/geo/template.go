// Package geo holds the boundary template loaded at startup and merges per-state
// crime totals into independent copies of it.
package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrInvalidTemplate is returned when the boundary file is not a usable
// FeatureCollection.
var ErrInvalidTemplate = errors.New("invalid geo template")

// NameProperty is the feature property joined against CrimeRecord.State.
const NameProperty = "name"

// CrimesProperty is the feature property written by Enrich.
const CrimesProperty = "crimes"

// Template is an ordered FeatureCollection parsed once and never modified.
// Geometry and every member other than properties.crimes are kept as raw JSON.
type Template struct {
	members  map[string]json.RawMessage
	features []templateFeature
}

type templateFeature struct {
	name       string
	members    map[string]json.RawMessage
	properties map[string]json.RawMessage
}

// LoadTemplate reads a GeoJSON FeatureCollection from path.
func LoadTemplate(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geo template: %w", err)
	}
	defer f.Close()

	return ParseTemplate(f)
}

// ParseTemplate decodes a GeoJSON FeatureCollection. Every feature must carry a
// string "name" property.
func ParseTemplate(r io.Reader) (*Template, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	var kind string
	if err := json.Unmarshal(doc["type"], &kind); err != nil || kind != "FeatureCollection" {
		return nil, fmt.Errorf("%w: type must be FeatureCollection", ErrInvalidTemplate)
	}

	var rawFeatures []json.RawMessage
	if err := json.Unmarshal(doc["features"], &rawFeatures); err != nil {
		return nil, fmt.Errorf("%w: features: %v", ErrInvalidTemplate, err)
	}
	delete(doc, "features")

	t := &Template{
		members:  doc,
		features: make([]templateFeature, 0, len(rawFeatures)),
	}
	for i, raw := range rawFeatures {
		feat, err := parseFeature(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: feature %d: %v", ErrInvalidTemplate, i, err)
		}
		t.features = append(t.features, feat)
	}
	return t, nil
}

func parseFeature(raw json.RawMessage) (templateFeature, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return templateFeature{}, err
	}

	var props map[string]json.RawMessage
	if err := json.Unmarshal(members["properties"], &props); err != nil || props == nil {
		return templateFeature{}, errors.New("missing properties")
	}
	delete(members, "properties")

	var name string
	if err := json.Unmarshal(props[NameProperty], &name); err != nil || name == "" {
		return templateFeature{}, errors.New("missing name property")
	}
	delete(props, CrimesProperty)

	return templateFeature{name: name, members: members, properties: props}, nil
}

// Len returns the number of features.
func (t *Template) Len() int {
	return len(t.features)
}

// Names returns the feature names in template order.
func (t *Template) Names() []string {
	names := make([]string, len(t.features))
	for i, f := range t.features {
		names[i] = f.name
	}
	return names
}

func cloneMembers(m map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(m)+1)
	for k, v := range m {
		out[k] = bytes.Clone(v)
	}
	return out
}
