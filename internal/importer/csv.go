// Package importer converts spreadsheet exports (CSV with a header row) into
// the JSON documents the arena loads. Bad rows are skipped and reported.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/talgya/tribute-arena/internal/arena"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing column")

// EventRow is one converted event.
type EventRow struct {
	ID               int     `json:"id"`
	Description      string  `json:"description"`
	Probability      float64 `json:"probability"`
	TributesInvolved int     `json:"tributes involved"`
	Severity         int     `json:"severity"`
}

// PlayerRow is one converted participant.
type PlayerRow struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	District string `json:"district"`
	HP       int    `json:"hp"`
	Alive    bool   `json:"alive"`
}

// Report lists the rows a conversion dropped.
type Report struct {
	Converted int
	Problems  []error
}

type table struct {
	columns map[string]int
	rows    [][]string
}

func readTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: no header row")
	}

	t := &table{columns: make(map[string]int), rows: records[1:]}
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		t.columns[strings.ReplaceAll(name, " ", "_")] = i
	}
	for _, name := range required {
		if _, ok := t.columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return t, nil
}

// cell returns the trimmed value of a column, or "" if the row is short or
// the column is absent.
func (t *table) cell(row []string, name string) string {
	i, ok := t.columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseNumber accepts both "0.25" and the spreadsheet-locale "0,25".
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func parseInt(s string) (int, error) {
	f, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

// ReadEvents converts an events sheet. Columns: id, description,
// probability, tributes_involved, severity. A missing id becomes the row
// number; a missing tributes_involved is derived from the template.
func ReadEvents(r io.Reader) ([]EventRow, Report, error) {
	t, err := readTable(r, "description", "probability", "severity")
	if err != nil {
		return nil, Report{}, err
	}

	var out []EventRow
	var report Report
	for n, row := range t.rows {
		line := n + 2
		ev, err := eventRow(t, row, n+1)
		if err != nil {
			report.Problems = append(report.Problems, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		out = append(out, ev)
		report.Converted++
	}
	return out, report, nil
}

func eventRow(t *table, row []string, fallbackID int) (EventRow, error) {
	ev := EventRow{ID: fallbackID, Description: t.cell(row, "description")}
	var err error
	if s := t.cell(row, "id"); s != "" {
		if ev.ID, err = parseInt(s); err != nil {
			return EventRow{}, fmt.Errorf("id: %w", err)
		}
	}
	if ev.Probability, err = parseNumber(t.cell(row, "probability")); err != nil {
		return EventRow{}, fmt.Errorf("probability: %w", err)
	}
	if ev.Severity, err = parseInt(t.cell(row, "severity")); err != nil {
		return EventRow{}, fmt.Errorf("severity: %w", err)
	}

	e := arena.NewEvent(ev.ID, ev.Description, ev.Probability, ev.Severity)
	if err := e.Validate(); err != nil {
		return EventRow{}, err
	}
	ev.TributesInvolved = e.Participants()
	if s := t.cell(row, "tributes_involved"); s != "" {
		if ev.TributesInvolved, err = parseInt(s); err != nil {
			return EventRow{}, fmt.Errorf("tributes_involved: %w", err)
		}
	}
	return ev, nil
}

// ReadPlayers converts a players sheet. Columns: id, name, district, hp,
// alive. hp defaults to 100 and alive to true.
func ReadPlayers(r io.Reader) ([]PlayerRow, Report, error) {
	t, err := readTable(r, "name")
	if err != nil {
		return nil, Report{}, err
	}

	var out []PlayerRow
	var report Report
	for n, row := range t.rows {
		p, err := playerRow(t, row, n+1)
		if err != nil {
			report.Problems = append(report.Problems, fmt.Errorf("line %d: %w", n+2, err))
			continue
		}
		out = append(out, p)
		report.Converted++
	}
	return out, report, nil
}

func playerRow(t *table, row []string, fallbackID int) (PlayerRow, error) {
	p := PlayerRow{
		ID:       fallbackID,
		Name:     t.cell(row, "name"),
		District: t.cell(row, "district"),
		HP:       arena.MaxHealth,
		Alive:    true,
	}
	if p.Name == "" {
		return PlayerRow{}, fmt.Errorf("%w: empty name", arena.ErrMalformedRecord)
	}
	var err error
	if s := t.cell(row, "id"); s != "" {
		if p.ID, err = parseInt(s); err != nil {
			return PlayerRow{}, fmt.Errorf("id: %w", err)
		}
	}
	if s := t.cell(row, "hp"); s != "" {
		hp, err := parseNumber(s)
		if err != nil {
			return PlayerRow{}, fmt.Errorf("hp: %w", err)
		}
		if hp < 0 || hp > arena.MaxHealth {
			return PlayerRow{}, fmt.Errorf("%w: hp %v outside [0, %d]", arena.ErrMalformedRecord, hp, arena.MaxHealth)
		}
		p.HP = int(math.Round(hp))
	}
	if s := t.cell(row, "alive"); s != "" {
		if p.Alive, err = strconv.ParseBool(s); err != nil {
			return PlayerRow{}, fmt.Errorf("alive: %w", err)
		}
	}
	return p, nil
}

// WriteEvents writes {"events": [...]}.
func WriteEvents(w io.Writer, rows []EventRow) error {
	if rows == nil {
		rows = []EventRow{}
	}
	return writeDocument(w, map[string]any{"events": rows})
}

// WritePlayers writes {"players": [...]}.
func WritePlayers(w io.Writer, rows []PlayerRow) error {
	if rows == nil {
		rows = []PlayerRow{}
	}
	return writeDocument(w, map[string]any{"players": rows})
}

func writeDocument(w io.Writer, doc any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(doc)
}

// ConvertEvents converts the events sheet at src into a JSON file at dst.
func ConvertEvents(src, dst string) (Report, error) {
	in, err := os.Open(src)
	if err != nil {
		return Report{}, err
	}
	defer in.Close()

	rows, report, err := ReadEvents(in)
	if err != nil {
		return report, fmt.Errorf("%s: %w", src, err)
	}
	return report, writeFile(dst, func(w io.Writer) error { return WriteEvents(w, rows) })
}

// ConvertPlayers converts the players sheet at src into a JSON file at dst.
func ConvertPlayers(src, dst string) (Report, error) {
	in, err := os.Open(src)
	if err != nil {
		return Report{}, err
	}
	defer in.Close()

	rows, report, err := ReadPlayers(in)
	if err != nil {
		return report, fmt.Errorf("%s: %w", src, err)
	}
	return report, writeFile(dst, func(w io.Writer) error { return WritePlayers(w, rows) })
}

func writeFile(path string, write func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
