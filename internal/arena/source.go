// Loading of catalogs and rosters from JSON or YAML documents.
// Bad records are skipped and reported; a bad document yields an empty result.
package arena

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the document encoding of a source.
type Format uint8

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatForPath picks a format from the file extension. Anything that is not
// .yaml or .yml is read as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadReport summarizes a load. Problems never abort loading.
type LoadReport struct {
	Source   string
	Loaded   int
	Skipped  int
	Problems []error
}

// Err joins every recorded problem, or returns nil.
func (r LoadReport) Err() error {
	return errors.Join(r.Problems...)
}

func (r *LoadReport) skip(index int, err error) {
	r.Skipped++
	r.Problems = append(r.Problems, fmt.Errorf("record %d: %w", index, err))
}

func (r LoadReport) log(kind string) {
	for _, p := range r.Problems {
		slog.Warn(kind+" load problem", "source", r.Source, "error", p)
	}
	slog.Info(kind+" loaded", "source", r.Source, "loaded", r.Loaded, "skipped", r.Skipped)
}

// eventRecord is the input shape of an event. Pointer fields distinguish
// missing values from zero values.
type eventRecord struct {
	ID          *int     `json:"id" yaml:"id"`
	Description *string  `json:"description" yaml:"description"`
	Probability *float64 `json:"probability" yaml:"probability"`
	Severity    *int     `json:"severity" yaml:"severity"`
	Actors      *int     `json:"actors" yaml:"actors"`
	Targets     *int     `json:"targets" yaml:"targets"`

	// Informational only; the template decides.
	TributesInvolved       *int `json:"tributes_involved" yaml:"tributes_involved"`
	TributesInvolvedLegacy *int `json:"tributes involved" yaml:"tributes involved"`
}

func (rec eventRecord) event(id int) (ArenaEvent, error) {
	switch {
	case rec.Description == nil:
		return ArenaEvent{}, fmt.Errorf("%w: missing description", ErrMalformedRecord)
	case rec.Probability == nil:
		return ArenaEvent{}, fmt.Errorf("%w: missing probability", ErrMalformedRecord)
	case rec.Severity == nil:
		return ArenaEvent{}, fmt.Errorf("%w: missing severity", ErrMalformedRecord)
	}

	e := NewEvent(id, *rec.Description, *rec.Probability, *rec.Severity)
	if rec.Actors != nil {
		e.Actors = *rec.Actors
	}
	if rec.Targets != nil {
		e.Targets = *rec.Targets
	}
	if err := e.Validate(); err != nil {
		return ArenaEvent{}, err
	}

	involved := rec.TributesInvolved
	if involved == nil {
		involved = rec.TributesInvolvedLegacy
	}
	if involved != nil && *involved != e.Participants() {
		slog.Debug("tributes_involved disagrees with template",
			"event", id, "declared", *involved, "template", e.Participants())
	}
	return e, nil
}

// tributeRecord is the input shape of a participant. "group" and "health"
// are accepted alongside the original "district" and "hp".
type tributeRecord struct {
	ID       *int     `json:"id" yaml:"id"`
	Name     *string  `json:"name" yaml:"name"`
	District *string  `json:"district" yaml:"district"`
	Group    *string  `json:"group" yaml:"group"`
	Health   *float64 `json:"health" yaml:"health"`
	HP       *float64 `json:"hp" yaml:"hp"`
	Alive    *bool    `json:"alive" yaml:"alive"`
}

func (rec tributeRecord) tribute(id int) (Tribute, error) {
	if rec.Name == nil {
		return Tribute{}, fmt.Errorf("%w: missing name", ErrMalformedRecord)
	}
	t := Tribute{ID: id, Name: *rec.Name, Health: MaxHealth, Alive: true}
	switch {
	case rec.District != nil:
		t.District = *rec.District
	case rec.Group != nil:
		t.District = *rec.Group
	}

	health := rec.Health
	if health == nil {
		health = rec.HP
	}
	if health != nil {
		h := *health
		if math.IsNaN(h) || h < 0 || h > MaxHealth {
			return Tribute{}, fmt.Errorf("%w: health %v outside [0, %d]", ErrMalformedRecord, h, MaxHealth)
		}
		t.Health = int(math.Round(h))
	}
	if rec.Alive != nil {
		t.Alive = *rec.Alive
	}
	return t, nil
}

// rawRecord decodes one list element into v.
type rawRecord func(v any) error

// decodeList reads the list stored under key. Elements are decoded lazily so
// a single bad element cannot fail the whole document.
func decodeList(r io.Reader, format Format, key string) ([]rawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	var out []rawRecord
	switch format {
	case FormatYAML:
		var doc map[string]yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		list, ok := doc[key]
		if !ok {
			return nil, fmt.Errorf("document has no %q list", key)
		}
		var nodes []yaml.Node
		if err := list.Decode(&nodes); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		for i := range nodes {
			out = append(out, nodes[i].Decode)
		}
	default:
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		list, ok := doc[key]
		if !ok {
			return nil, fmt.Errorf("document has no %q list", key)
		}
		var elems []json.RawMessage
		if err := json.Unmarshal(list, &elems); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		for _, raw := range elems {
			raw := raw
			out = append(out, func(v any) error { return json.Unmarshal(raw, v) })
		}
	}
	return out, nil
}

// DecodeCatalog reads an {"events": [...]} document.
func DecodeCatalog(r io.Reader, format Format) (*Catalog, LoadReport) {
	c := &Catalog{index: make(map[int]int)}
	var report LoadReport

	raws, err := decodeList(r, format, "events")
	if err != nil {
		report.Problems = append(report.Problems, err)
		return c, report
	}

	records := make([]*eventRecord, len(raws))
	maxID := 0
	for i, decode := range raws {
		var rec eventRecord
		if err := decode(&rec); err != nil {
			report.skip(i, fmt.Errorf("%w: %v", ErrMalformedRecord, err))
			continue
		}
		records[i] = &rec
		if rec.ID != nil && *rec.ID > maxID {
			maxID = *rec.ID
		}
	}

	for i, rec := range records {
		if rec == nil {
			continue
		}
		id := maxID + 1
		if rec.ID != nil {
			id = *rec.ID
		}
		e, err := rec.event(id)
		if err == nil {
			err = c.add(e)
		}
		if err != nil {
			report.skip(i, err)
			continue
		}
		if rec.ID == nil {
			maxID++
		}
		report.Loaded++
	}
	return c, report
}

// DecodeRoster reads a {"players": [...]} document.
func DecodeRoster(r io.Reader, format Format) (*Roster, LoadReport) {
	roster := NewRoster()
	var report LoadReport

	raws, err := decodeList(r, format, "players")
	if err != nil {
		report.Problems = append(report.Problems, err)
		return roster, report
	}

	records := make([]*tributeRecord, len(raws))
	maxID := 0
	for i, decode := range raws {
		var rec tributeRecord
		if err := decode(&rec); err != nil {
			report.skip(i, fmt.Errorf("%w: %v", ErrMalformedRecord, err))
			continue
		}
		records[i] = &rec
		if rec.ID != nil && *rec.ID > maxID {
			maxID = *rec.ID
		}
	}

	for i, rec := range records {
		if rec == nil {
			continue
		}
		id := maxID + 1
		if rec.ID != nil {
			id = *rec.ID
		}
		t, err := rec.tribute(id)
		if err == nil {
			err = roster.Enroll(t)
		}
		if err != nil {
			report.skip(i, err)
			continue
		}
		if rec.ID == nil {
			maxID++
		}
		report.Loaded++
	}
	return roster, report
}

// LoadCatalog reads a catalog file. A missing file gives an empty catalog.
func LoadCatalog(path string) (*Catalog, LoadReport) {
	f, err := os.Open(path)
	if err != nil {
		report := LoadReport{Source: path, Problems: []error{openError(path, err)}}
		report.log("catalog")
		return &Catalog{index: make(map[int]int)}, report
	}
	defer f.Close()

	c, report := DecodeCatalog(f, FormatForPath(path))
	report.Source = path
	report.log("catalog")
	return c, report
}

// LoadRoster reads a roster file. A missing file gives an empty roster.
func LoadRoster(path string) (*Roster, LoadReport) {
	f, err := os.Open(path)
	if err != nil {
		report := LoadReport{Source: path, Problems: []error{openError(path, err)}}
		report.log("roster")
		return NewRoster(), report
	}
	defer f.Close()

	r, report := DecodeRoster(f, FormatForPath(path))
	report.Source = path
	report.log("roster")
	return r, report
}

func openError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	return fmt.Errorf("open %s: %w", path, err)
}
