package geo

import (
	"encoding/json"
)

// Collection is an enriched copy of a Template. It shares no memory with the
// template or with other collections.
type Collection struct {
	members  map[string]json.RawMessage
	Features []Feature
}

// Feature is one enriched boundary.
type Feature struct {
	Name       string
	Crimes     int64
	members    map[string]json.RawMessage
	properties map[string]json.RawMessage
}

// Enrich builds a new collection from t, setting every feature's crimes to
// totals[name], or 0 when the state has no total. Feature count and order match
// the template; t is only read.
func Enrich(t *Template, totals map[string]int64) *Collection {
	out := &Collection{
		members:  cloneMembers(t.members),
		Features: make([]Feature, len(t.features)),
	}
	for i, f := range t.features {
		out.Features[i] = Feature{
			Name:       f.name,
			Crimes:     totals[f.name],
			members:    cloneMembers(f.members),
			properties: cloneMembers(f.properties),
		}
	}
	return out
}

// Geometry returns the feature's geometry as it appeared in the template.
func (f Feature) Geometry() json.RawMessage {
	return f.members["geometry"]
}

// MarshalJSON renders the feature with properties.crimes set.
func (f Feature) MarshalJSON() ([]byte, error) {
	props := make(map[string]json.RawMessage, len(f.properties)+1)
	for k, v := range f.properties {
		props[k] = v
	}
	crimes, err := json.Marshal(f.Crimes)
	if err != nil {
		return nil, err
	}
	props[CrimesProperty] = crimes

	rawProps, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}

	doc := make(map[string]json.RawMessage, len(f.members)+1)
	for k, v := range f.members {
		doc[k] = v
	}
	doc["properties"] = rawProps
	return json.Marshal(doc)
}

// MarshalJSON renders the FeatureCollection.
func (c *Collection) MarshalJSON() ([]byte, error) {
	features, err := json.Marshal(c.Features)
	if err != nil {
		return nil, err
	}

	doc := make(map[string]json.RawMessage, len(c.members)+1)
	for k, v := range c.members {
		doc[k] = v
	}
	doc["features"] = features
	return json.Marshal(doc)
}
