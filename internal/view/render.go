// Package view draws the panel render models on a terminal and drives the
// interactive browse session.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielolaszy/spira/internal/panel"
)

// Format selects how models are written.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatYAML, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unsupported output format %q, expected one of: text, yaml, json", s)
}

// Renderer writes list and detail models to out.
type Renderer struct {
	out    io.Writer
	format Format
}

// NewRenderer creates a renderer writing format to out.
func NewRenderer(out io.Writer, format Format) *Renderer {
	return &Renderer{out: out, format: format}
}

type listDoc struct {
	Sections []sectionDoc `json:"sections" yaml:"sections"`
}

type sectionDoc struct {
	Kind  string   `json:"kind" yaml:"kind"`
	Title string   `json:"title" yaml:"title"`
	State string   `json:"state" yaml:"state"`
	Error string   `json:"error,omitempty" yaml:"error,omitempty"`
	Rows  []rowDoc `json:"rows,omitempty" yaml:"rows,omitempty"`
}

type rowDoc struct {
	Token string `json:"token" yaml:"token"`
	Name  string `json:"name" yaml:"name"`
}

type detailDoc struct {
	Title string      `json:"title" yaml:"title"`
	URL   string      `json:"url" yaml:"url"`
	Rows  []detailRow `json:"rows" yaml:"rows"`
}

type detailRow struct {
	Field string `json:"field" yaml:"field"`
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// List writes the list region. Structured formats include every row along
// with the section state; text draws only what an expanded panel shows.
func (r *Renderer) List(m panel.ListRegionModel) error {
	if r.format == FormatText {
		return r.listText(m)
	}

	doc := listDoc{Sections: make([]sectionDoc, 0, len(m.Sections))}
	for _, s := range m.Sections {
		sd := sectionDoc{Kind: string(s.Kind), Title: s.Title, State: s.State.String()}
		if s.Err != nil {
			sd.Error = s.Err.Error()
		}
		for _, row := range s.Rows {
			sd.Rows = append(sd.Rows, rowDoc{Token: row.Artifact.Token(), Name: row.Label})
		}
		doc.Sections = append(doc.Sections, sd)
	}
	return r.encode(doc)
}

func (r *Renderer) listText(m panel.ListRegionModel) error {
	if len(m.Sections) == 0 {
		_, err := fmt.Fprintln(r.out, "Nothing is assigned to you.")
		return err
	}

	n := 0
	for _, s := range m.Sections {
		if s.Failed() {
			if _, err := fmt.Fprintf(r.out, "! %s: %v\n", s.Title, s.Err); err != nil {
				return err
			}
			continue
		}

		marker := "▸"
		if s.State == panel.Expanded {
			marker = "▾"
		}
		if _, err := fmt.Fprintf(r.out, "%s %s (%d)\n", marker, s.Title, len(s.Rows)); err != nil {
			return err
		}

		for _, row := range s.VisibleRows() {
			n++
			if _, err := fmt.Fprintf(r.out, "    [%d] %-8s %s\n", n, row.Artifact.Token(), row.Label); err != nil {
				return err
			}
		}
	}
	return nil
}

// Detail writes the detail region. Rich text is written unescaped.
func (r *Renderer) Detail(m panel.DetailRegionModel) error {
	if r.format == FormatText {
		return r.detailText(m)
	}

	doc := detailDoc{Title: m.Title.Text, URL: m.Title.URL, Rows: make([]detailRow, 0, len(m.Rows))}
	for _, row := range m.Rows {
		doc.Rows = append(doc.Rows, detailRow{Field: string(row.Field), Label: row.Label, Value: row.Value})
	}
	return r.encode(doc)
}

func (r *Renderer) detailText(m panel.DetailRegionModel) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", m.Title.Text)
	fmt.Fprintf(&b, "  %s\n", m.Title.URL)
	for _, row := range m.Rows {
		fmt.Fprintf(&b, "%s: %s\n", row.Label, row.Value)
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *Renderer) encode(v any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format %q", r.format)
}
