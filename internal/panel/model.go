// Package panel builds the render models of the assigned-artifact panel:
// a list region of collapsible per-kind sections and a detail region for
// the selected artifact. It owns no widgets; any host can draw the models.
package panel

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/danielolaszy/spira/pkg/models"
)

// SectionState is the expand state of one section header.
type SectionState int

const (
	// Collapsed hides the rows of a section. Every section starts here.
	Collapsed SectionState = iota
	// Expanded shows the rows of a section.
	Expanded
)

func (s SectionState) String() string {
	if s == Expanded {
		return "expanded"
	}
	return "collapsed"
}

// Row is one selectable artifact line inside a section.
type Row struct {
	Label    string
	Artifact models.Artifact
}

// Section groups the artifacts of one kind under a header.
type Section struct {
	Kind  models.Kind
	Title string
	State SectionState
	Rows  []Row
	// Err is set when the kind failed to load; the section then has no rows
	// and is drawn as an error banner.
	Err error
}

// VisibleRows returns the rows to draw. Collapsed sections keep their rows
// but draw none of them.
func (s Section) VisibleRows() []Row {
	if s.State != Expanded || s.Err != nil {
		return nil
	}
	return s.Rows
}

// Failed reports whether the section stands for a load failure.
func (s Section) Failed() bool {
	return s.Err != nil
}

// ListRegionModel is the render-ready description of the list region.
type ListRegionModel struct {
	Sections []Section
}

// Section returns the section of kind, if present.
func (m ListRegionModel) Section(kind models.Kind) (Section, bool) {
	for _, s := range m.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

// VisibleArtifacts returns the artifacts of every drawn row, top to bottom.
func (m ListRegionModel) VisibleArtifacts() []models.Artifact {
	var out []models.Artifact
	for _, s := range m.Sections {
		for _, r := range s.VisibleRows() {
			out = append(out, r.Artifact)
		}
	}
	return out
}

// Field identifies one row of the detail region.
type Field string

const (
	FieldType        Field = "type"
	FieldProject     Field = "project"
	FieldPriority    Field = "priority"
	FieldStatus      Field = "status"
	FieldDescription Field = "description"
)

// TitleLink is the detail title; activating it opens URL in a browser.
type TitleLink struct {
	Text string
	URL  string
}

// DetailRow is one labelled value of the detail region.
type DetailRow struct {
	Field Field
	Label string
	Value string
	// Rich marks marked-up text that must be drawn as-is, not escaped.
	Rich bool
}

// DetailRegionModel is the render-ready description of the detail region.
type DetailRegionModel struct {
	Title TitleLink
	Rows  []DetailRow
}

// Row returns the row for field, if rendered.
func (m DetailRegionModel) Row(field Field) (DetailRow, bool) {
	for _, r := range m.Rows {
		if r.Field == field {
			return r, true
		}
	}
	return DetailRow{}, false
}

// SectionTitle is the header text of a kind, e.g. "Requirements".
func SectionTitle(kind models.Kind) string {
	// A Caser keeps state, so one is made per call
	return cases.Title(language.English).String(string(kind) + "s")
}
