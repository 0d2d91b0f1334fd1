// Package render writes controller snapshots to a terminal or a pipe as a
// table, JSON or YAML.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/thushan/runstatus/internal/core/domain"
	"github.com/thushan/runstatus/pkg/format"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"

	minCellWidth = 8
	ellipsis     = "…"
)

var DefaultColumns = []string{"id", "reference_time", "version", "model", "product"}

type Options struct {
	Now     func() time.Time
	Format  string
	Columns []string
	// Width caps table cells so a row fits the terminal, zero disables it
	Width int
}

type Renderer struct {
	now     func() time.Time
	format  string
	columns []Column
	width   int
}

// Document is what json and yaml output carry for each resource
type Document struct {
	Resource    string             `json:"resource"`
	RefreshedAt time.Time          `json:"refreshed_at"`
	Filter      domain.FilterState `json:"filter"`
	TotalCount  int                `json:"total_count"`
	Error       string             `json:"error,omitempty"`
	Runs        []domain.ModelRun  `json:"runs"`
}

// yamlDocument mirrors Document; yaml.v3 can't use ModelRun's MarshalJSON
type yamlDocument struct {
	Resource    string             `yaml:"resource"`
	RefreshedAt time.Time          `yaml:"refreshed_at"`
	Filter      domain.FilterState `yaml:"filter"`
	TotalCount  int                `yaml:"total_count"`
	Error       string             `yaml:"error,omitempty"`
	Runs        []map[string]any   `yaml:"runs"`
}

func New(opts Options) (*Renderer, error) {
	f := strings.ToLower(opts.Format)
	if f == "" {
		f = FormatTable
	}
	switch f {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q", opts.Format)
	}

	columns, err := ParseColumns(opts.Columns)
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Renderer{
		now:     now,
		format:  f,
		columns: columns,
		width:   opts.Width,
	}, nil
}

func (r *Renderer) Format() string {
	return r.format
}

// Render writes one section (table) or document (json, yaml) per snapshot
func (r *Renderer) Render(w io.Writer, snaps ...domain.Snapshot) error {
	switch r.format {
	case FormatJSON:
		return r.renderJSON(w, snaps)
	case FormatYAML:
		return r.renderYAML(w, snaps)
	default:
		return r.renderTable(w, snaps)
	}
}

func NewDocument(s domain.Snapshot) Document {
	doc := Document{
		Resource:    s.Resource,
		RefreshedAt: s.RefreshedAt,
		Filter:      s.Filter,
		TotalCount:  s.TotalCount,
		Runs:        s.Runs,
	}
	if doc.Runs == nil {
		doc.Runs = []domain.ModelRun{}
	}
	if s.Err != nil {
		doc.Error = s.Err.Error()
	}
	return doc
}

func (r *Renderer) renderJSON(w io.Writer, snaps []domain.Snapshot) error {
	for _, s := range snaps {
		out, err := json.MarshalIndent(NewDocument(s), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding %s as json: %w", s.Resource, err)
		}
		out = append(out, '\n')
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderYAML(w io.Writer, snaps []domain.Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()

	for _, s := range snaps {
		doc := NewDocument(s)
		yd := yamlDocument{
			Resource:    doc.Resource,
			RefreshedAt: doc.RefreshedAt,
			Error:       doc.Error,
			Filter:      doc.Filter,
			TotalCount:  doc.TotalCount,
			Runs:        make([]map[string]any, 0, len(doc.Runs)),
		}
		for _, run := range doc.Runs {
			yd.Runs = append(yd.Runs, run.Fields())
		}
		if err := enc.Encode(yd); err != nil {
			return fmt.Errorf("encoding %s as yaml: %w", s.Resource, err)
		}
	}
	return nil
}

func (r *Renderer) renderTable(w io.Writer, snaps []domain.Snapshot) error {
	var b strings.Builder
	for i, s := range snaps {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.Heading(s))
		b.WriteString("\n")

		if s.Err != nil {
			b.WriteString(pterm.Red("error: " + s.Err.Error()))
			b.WriteString("\n")
		}

		if len(s.Runs) == 0 {
			b.WriteString(pterm.Gray(emptyMessage(s)))
			b.WriteString("\n")
			continue
		}

		table, err := pterm.DefaultTable.WithHasHeader().WithData(r.Rows(s.Runs)).Srender()
		if err != nil {
			return fmt.Errorf("rendering %s table: %w", s.Resource, err)
		}
		b.WriteString(table)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Heading is the one-line summary above each table
func (r *Renderer) Heading(s domain.Snapshot) string {
	parts := []string{
		pterm.Bold.Sprint(s.Resource),
		format.Shown(len(s.Runs), s.TotalCount),
		"refreshed " + format.TimeAgo(s.RefreshedAt, r.now()),
	}
	if s.IsStale() {
		parts = append(parts, pterm.Yellow("stale"))
	}
	return strings.Join(parts, " · ")
}

// Rows builds the header and one row per run
func (r *Renderer) Rows(runs []domain.ModelRun) [][]string {
	header := make([]string, len(r.columns))
	for i, c := range r.columns {
		header[i] = c.Title()
	}

	rows := make([][]string, 0, len(runs)+1)
	rows = append(rows, header)
	for _, run := range runs {
		row := make([]string, len(r.columns))
		for i, c := range r.columns {
			row[i] = r.clip(c.Value(run))
		}
		rows = append(rows, row)
	}
	return rows
}

func (r *Renderer) clip(s string) string {
	if r.width <= 0 || len(r.columns) == 0 {
		return s
	}
	limit := max(minCellWidth, r.width/len(r.columns)-3)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + ellipsis
}

func emptyMessage(s domain.Snapshot) string {
	if s.Filter.IsDirectLookup() {
		return fmt.Sprintf("no model run with id %q", s.Filter.ID)
	}
	return "no model runs match"
}
