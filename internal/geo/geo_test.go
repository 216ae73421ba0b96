package geo

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const twoStates = `{
  "type": "FeatureCollection",
  "name": "malaysia",
  "features": [
    {"type": "Feature", "id": 1, "properties": {"name": "A", "iso": "MY-01"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}},
    {"type": "Feature", "properties": {"name": "B", "crimes": 999},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[2,2],[3,2],[3,3],[2,2]]]]}}
  ]
}`

func mustParse(t *testing.T, doc string) *Template {
	t.Helper()
	tpl, err := ParseTemplate(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}
	return tpl
}

func TestParseTemplate(t *testing.T) {
	tpl := mustParse(t, twoStates)
	if tpl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tpl.Len())
	}
	names := tpl.Names()
	if names[0] != "A" || names[1] != "B" {
		t.Errorf("Names() = %v, want [A B]", names)
	}
}

func TestParseTemplate_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"wrong type", `{"type":"Feature","features":[]}`},
		{"features not array", `{"type":"FeatureCollection","features":{}}`},
		{"missing properties", `{"type":"FeatureCollection","features":[{"type":"Feature"}]}`},
		{"missing name", `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"iso":"x"}}]}`},
		{"non-string name", `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":3}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplate(strings.NewReader(tt.doc))
			if !errors.Is(err, ErrInvalidTemplate) {
				t.Errorf("ParseTemplate() error = %v, want ErrInvalidTemplate", err)
			}
		})
	}
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.geojson")
	if err := os.WriteFile(path, []byte(twoStates), 0o600); err != nil {
		t.Fatal(err)
	}

	tpl, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	if tpl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tpl.Len())
	}

	if _, err := LoadTemplate(filepath.Join(t.TempDir(), "missing.geojson")); err == nil {
		t.Error("LoadTemplate(missing) error = nil")
	}
}

func TestEnrich(t *testing.T) {
	tpl := mustParse(t, twoStates)

	got := Enrich(tpl, map[string]int64{"A": 7, "Z": 100})
	if len(got.Features) != 2 {
		t.Fatalf("len(Features) = %d, want 2", len(got.Features))
	}
	want := []struct {
		name   string
		crimes int64
	}{{"A", 7}, {"B", 0}}
	for i, w := range want {
		if got.Features[i].Name != w.name || got.Features[i].Crimes != w.crimes {
			t.Errorf("Features[%d] = {%s %d}, want {%s %d}",
				i, got.Features[i].Name, got.Features[i].Crimes, w.name, w.crimes)
		}
	}
}

func TestEnrich_FeatureCountMatchesTemplate(t *testing.T) {
	tpl := mustParse(t, twoStates)
	for _, totals := range []map[string]int64{nil, {}, {"A": 1}, {"A": 1, "B": 2, "C": 3}} {
		if got := Enrich(tpl, totals); len(got.Features) != tpl.Len() {
			t.Errorf("Enrich(%v) features = %d, want %d", totals, len(got.Features), tpl.Len())
		}
	}
}

func TestEnrich_MarshalPassesThroughMembers(t *testing.T) {
	tpl := mustParse(t, twoStates)

	body, err := json.Marshal(Enrich(tpl, map[string]int64{"A": 7}))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var doc struct {
		Type     string `json:"type"`
		Name     string `json:"name"`
		Features []struct {
			Type       string          `json:"type"`
			ID         *int            `json:"id"`
			Properties map[string]any  `json:"properties"`
			Geometry   json.RawMessage `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if doc.Type != "FeatureCollection" || doc.Name != "malaysia" {
		t.Errorf("collection members = %q %q", doc.Type, doc.Name)
	}
	a, b := doc.Features[0], doc.Features[1]
	if a.ID == nil || *a.ID != 1 {
		t.Errorf("feature id not passed through: %v", a.ID)
	}
	if a.Properties["iso"] != "MY-01" || a.Properties["crimes"] != float64(7) {
		t.Errorf("feature A properties = %v", a.Properties)
	}
	if b.Properties["crimes"] != float64(0) {
		t.Errorf("feature B crimes = %v, want 0 (template value replaced)", b.Properties["crimes"])
	}
	if !strings.Contains(string(b.Geometry), "MultiPolygon") {
		t.Errorf("feature B geometry = %s", b.Geometry)
	}
}

func TestEnrich_TemplateUntouchedAndIdempotent(t *testing.T) {
	tpl := mustParse(t, twoStates)

	first, _ := json.Marshal(Enrich(tpl, map[string]int64{"A": 7}))
	other := Enrich(tpl, map[string]int64{"A": 1, "B": 2})
	other.Features[0].Name = "mutated"
	other.Features[0].Geometry()[0] = 'X'
	second, _ := json.Marshal(Enrich(tpl, map[string]int64{"A": 7}))

	if string(first) != string(second) {
		t.Errorf("results differ after mutating another copy:\n%s\n%s", first, second)
	}
}

func TestEnrich_Concurrent(t *testing.T) {
	tpl := mustParse(t, twoStates)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			c := Enrich(tpl, map[string]int64{"A": n})
			if c.Features[0].Crimes != n {
				errs <- errors.New("observed another request's total")
			}
			c.Features[1].Crimes = -1
		}(int64(i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
