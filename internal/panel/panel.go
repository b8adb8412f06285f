package panel

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/danielolaszy/spira/internal/loader"
	"github.com/danielolaszy/spira/internal/logging"
	"github.com/danielolaszy/spira/pkg/models"
)

var (
	// ErrNoSection is returned when toggling a kind that has no section.
	ErrNoSection = errors.New("no such section")
	// ErrNotFound is returned when no loaded artifact matches a lookup.
	ErrNotFound = errors.New("artifact not found")
)

// Fetcher returns the raw records of the artifacts of one kind assigned to the user.
type Fetcher interface {
	Assigned(ctx context.Context, kind models.Kind) ([]loader.Record, error)
}

// URLResolver builds the web location of an artifact from the service base URL.
type URLResolver func(artifact models.Artifact, baseURL string) (string, error)

// BuildSections lays out the list region in the fixed order
// Requirements, Tasks, Incidents. Kinds with no artifacts get no section.
func BuildSections(requirements, tasks, incidents []models.Artifact) ListRegionModel {
	var m ListRegionModel
	for i, artifacts := range [][]models.Artifact{requirements, tasks, incidents} {
		if len(artifacts) == 0 {
			continue
		}
		m.Sections = append(m.Sections, newSection(models.Kinds[i], artifacts))
	}
	return m
}

func newSection(kind models.Kind, artifacts []models.Artifact) Section {
	rows := make([]Row, 0, len(artifacts))
	for _, a := range artifacts {
		rows = append(rows, Row{Label: a.Name(), Artifact: a})
	}
	return Section{
		Kind:  kind,
		Title: SectionTitle(kind),
		State: Collapsed,
		Rows:  rows,
	}
}

// RenderDetail describes the detail region of artifact. The rows are, in
// order: Type, Project, Priority, Status, Description; optional ones are
// left out when absent. A link that cannot be resolved fails the render.
func RenderDetail(artifact models.Artifact, baseURL string, resolve URLResolver) (DetailRegionModel, error) {
	if artifact == nil {
		return DetailRegionModel{}, errors.New("cannot render detail of nil artifact")
	}
	if resolve == nil {
		return DetailRegionModel{}, errors.New("no URL resolver configured")
	}

	link, err := resolve(artifact, baseURL)
	if err != nil {
		return DetailRegionModel{}, fmt.Errorf("failed to resolve link for %s: %w", artifact.Token(), err)
	}

	m := DetailRegionModel{
		Title: TitleLink{
			Text: fmt.Sprintf("%s - %s", artifact.Token(), artifact.Name()),
			URL:  link,
		},
	}

	add := func(field Field, label string, value *string, rich bool) {
		if value == nil {
			return
		}
		m.Rows = append(m.Rows, DetailRow{Field: field, Label: label, Value: *value, Rich: rich})
	}

	projectName := artifact.ProjectName()
	add(FieldType, "Type", artifact.Type(), false)
	add(FieldProject, "Project", &projectName, false)
	add(FieldPriority, "Priority", artifact.PriorityName(), false)
	add(FieldStatus, "Status", artifact.Status(), false)
	add(FieldDescription, "Description", artifact.Description(), true)

	return m, nil
}

// Result is the outcome of one activation.
type Result struct {
	List ListRegionModel
	// Failures holds one entry per kind that could not be loaded, in display order.
	Failures []*loader.LoadFailure
}

// Err joins every load failure, or returns nil when all kinds loaded.
func (r Result) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// AllFailed reports whether no kind could be loaded.
func (r Result) AllFailed() bool {
	return len(r.Failures) == len(models.Kinds)
}

// Controller owns the current artifact lists, the section states and the
// current selection. It is not safe for concurrent use; the host calls it
// from its single event loop.
type Controller struct {
	baseURL  string
	resolve  URLResolver
	list     ListRegionModel
	selected models.Artifact
	detail   *DetailRegionModel
}

// NewController creates a controller that links artifacts under baseURL.
func NewController(baseURL string, resolve URLResolver) *Controller {
	return &Controller{
		baseURL: baseURL,
		resolve: resolve,
	}
}

// Activate loads every kind independently and rebuilds the panel from
// scratch. Kinds that fail show up as error sections; the others render
// normally. The previous lists, section states and selection are dropped.
func (c *Controller) Activate(ctx context.Context, fetcher Fetcher) Result {
	artifacts := make([][]models.Artifact, len(models.Kinds))
	failures := make([]*loader.LoadFailure, len(models.Kinds))

	var g errgroup.Group
	for i, kind := range models.Kinds {
		i, kind := i, kind
		g.Go(func() error {
			loaded, err := loadKind(ctx, fetcher, kind)
			if err != nil {
				failures[i] = err
				return nil
			}
			artifacts[i] = loaded
			return nil
		})
	}
	_ = g.Wait() // errors captured in failures

	result := Result{}
	for i, kind := range models.Kinds {
		if f := failures[i]; f != nil {
			logging.Error("failed to load artifacts", "kind", kind, "error", f.Err)
			result.Failures = append(result.Failures, f)
			result.List.Sections = append(result.List.Sections, Section{
				Kind:  kind,
				Title: SectionTitle(kind),
				State: Collapsed,
				Err:   f,
			})
			continue
		}
		if len(artifacts[i]) == 0 {
			continue
		}
		result.List.Sections = append(result.List.Sections, newSection(kind, artifacts[i]))
	}

	c.list = result.List
	c.selected = nil
	c.detail = nil
	result.List = c.List()

	logging.Info("panel activated",
		"sections", len(result.List.Sections),
		"failures", len(result.Failures))

	return result
}

func loadKind(ctx context.Context, fetcher Fetcher, kind models.Kind) ([]models.Artifact, *loader.LoadFailure) {
	records, err := fetcher.Assigned(ctx, kind)
	if err != nil {
		return nil, &loader.LoadFailure{Kind: kind, Err: err}
	}

	artifacts, err := loader.Load(kind, records)
	if err != nil {
		var failure *loader.LoadFailure
		if errors.As(err, &failure) {
			return nil, failure
		}
		return nil, &loader.LoadFailure{Kind: kind, Err: err}
	}

	return artifacts, nil
}

// Show replaces the panel contents with already loaded artifacts.
func (c *Controller) Show(requirements, tasks, incidents []models.Artifact) ListRegionModel {
	c.list = BuildSections(requirements, tasks, incidents)
	c.selected = nil
	c.detail = nil
	return c.List()
}

// List returns a snapshot of the list region.
func (c *Controller) List() ListRegionModel {
	sections := make([]Section, len(c.list.Sections))
	copy(sections, c.list.Sections)
	return ListRegionModel{Sections: sections}
}

// Toggle flips the section of kind between Collapsed and Expanded.
func (c *Controller) Toggle(kind models.Kind) (SectionState, error) {
	for i := range c.list.Sections {
		s := &c.list.Sections[i]
		if s.Kind != kind {
			continue
		}
		if s.State == Expanded {
			s.State = Collapsed
		} else {
			s.State = Expanded
		}
		logging.Debug("section toggled", "kind", kind, "state", s.State)
		return s.State, nil
	}
	return Collapsed, fmt.Errorf("%w: %s", ErrNoSection, kind)
}

// ExpandAll expands every section that has rows.
func (c *Controller) ExpandAll() {
	for i := range c.list.Sections {
		if !c.list.Sections[i].Failed() {
			c.list.Sections[i].State = Expanded
		}
	}
}

// Select makes artifact the current selection and renders its detail.
// On failure the detail region is left empty.
func (c *Controller) Select(artifact models.Artifact) (DetailRegionModel, error) {
	c.selected = nil
	c.detail = nil

	detail, err := RenderDetail(artifact, c.baseURL, c.resolve)
	if err != nil {
		logging.Error("failed to render detail", "error", err)
		return DetailRegionModel{}, err
	}

	c.selected = artifact
	c.detail = &detail
	logging.Debug("artifact selected", "artifact", artifact.Token())
	return detail, nil
}

// SelectToken selects a loaded artifact by its display code, e.g. "TK:41".
func (c *Controller) SelectToken(token string) (DetailRegionModel, error) {
	artifact, err := c.Find(token)
	if err != nil {
		return DetailRegionModel{}, err
	}
	return c.Select(artifact)
}

// Find looks up a loaded artifact by its display code.
func (c *Controller) Find(token string) (models.Artifact, error) {
	kind, id, err := models.ParseToken(token)
	if err != nil {
		return nil, err
	}

	s, ok := c.list.Section(kind)
	if ok {
		for _, r := range s.Rows {
			if r.Artifact.ArtifactID() == id {
				return r.Artifact, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, models.FormatToken(kind, id))
}

// Selected returns the current selection, or nil.
func (c *Controller) Selected() models.Artifact {
	return c.selected
}

// Detail returns the detail region of the current selection, if any.
func (c *Controller) Detail() (DetailRegionModel, bool) {
	if c.detail == nil {
		return DetailRegionModel{}, false
	}
	return *c.detail, true
}

// SelectedURL returns the title link of the current selection.
func (c *Controller) SelectedURL() (string, error) {
	if c.detail == nil {
		return "", errors.New("nothing selected")
	}
	return c.detail.Title.URL, nil
}
