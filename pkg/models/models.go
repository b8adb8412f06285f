// Package models defines the artifact data structures shared across the application.
package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies one of the three artifact kinds the panel understands.
type Kind string

const (
	// KindRequirement is a requirement artifact.
	KindRequirement Kind = "requirement"
	// KindTask is a task artifact.
	KindTask Kind = "task"
	// KindIncident is an incident artifact.
	KindIncident Kind = "incident"
)

// Kinds lists every artifact kind in display order.
var Kinds = []Kind{KindRequirement, KindTask, KindIncident}

// ErrUnknownKind is returned when a kind or prefix is not recognised.
var ErrUnknownKind = errors.New("unknown artifact kind")

// Prefix returns the short display code of the kind (e.g. "RQ").
func (k Kind) Prefix() string {
	switch k {
	case KindRequirement:
		return "RQ"
	case KindTask:
		return "TK"
	case KindIncident:
		return "IN"
	}
	return ""
}

// ParseKind accepts a kind name, its plural, or its prefix, case-insensitively.
func ParseKind(s string) (Kind, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if v == string(k) || v == string(k)+"s" || v == strings.ToLower(k.Prefix()) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Artifact is a unit of tracked work assigned to the current user.
type Artifact interface {
	Kind() Kind
	Prefix() string
	ProjectID() int
	ProjectName() string
	ArtifactID() int
	Name() string
	PriorityName() *string
	Description() *string
	Status() *string
	Type() *string
	Token() string

	SetPriorityName(v *string)
	SetDescription(v *string)
	SetStatus(v *string)
}

// base holds the fields every artifact kind carries.
type base struct {
	// projectID, projectName, artifactID and name are fixed at construction
	projectID   int
	projectName string
	artifactID  int
	name        string

	// Optional fields; nil means absent
	priorityName *string
	description  *string
	status       *string
}

func newBase(projectID int, projectName string, artifactID int, name string, priorityName *string) base {
	return base{
		projectID:    projectID,
		projectName:  projectName,
		artifactID:   artifactID,
		name:         name,
		priorityName: priorityName,
	}
}

func (b *base) ProjectID() int { return b.projectID }
func (b *base) ProjectName() string { return b.projectName }
func (b *base) ArtifactID() int { return b.artifactID }
func (b *base) Name() string { return b.name }
func (b *base) PriorityName() *string { return b.priorityName }
func (b *base) Description() *string { return b.description }
func (b *base) Status() *string { return b.status }
func (b *base) SetPriorityName(v *string) { b.priorityName = v }
func (b *base) SetDescription(v *string) { b.description = v }
func (b *base) SetStatus(v *string) { b.status = v }

// Requirement is a requirement artifact. Requirements carry no type.
type Requirement struct {
	base
}

// NewRequirement creates a requirement with all optional fields absent
// except the priority (importance), which may be nil.
func NewRequirement(projectID int, projectName string, artifactID int, name string, priorityName *string) *Requirement {
	return &Requirement{base: newBase(projectID, projectName, artifactID, name, priorityName)}
}

func (r *Requirement) Kind() Kind { return KindRequirement }
func (r *Requirement) Prefix() string { return KindRequirement.Prefix() }
func (r *Requirement) Type() *string { return nil }
func (r *Requirement) Token() string { return FormatToken(KindRequirement, r.artifactID) }

// typed adds the type field shared by tasks and incidents.
type typed struct {
	artifactType *string
}

func (t *typed) Type() *string { return t.artifactType }
func (t *typed) SetType(v *string) { t.artifactType = v }

// Task is a task artifact.
type Task struct {
	base
	typed
}

// NewTask creates a task with all optional fields absent except the priority.
func NewTask(projectID int, projectName string, artifactID int, name string, priorityName *string) *Task {
	return &Task{base: newBase(projectID, projectName, artifactID, name, priorityName)}
}

func (t *Task) Kind() Kind { return KindTask }
func (t *Task) Prefix() string { return KindTask.Prefix() }
func (t *Task) Token() string { return FormatToken(KindTask, t.artifactID) }

// Incident is an incident artifact (bug, issue, risk...).
type Incident struct {
	base
	typed
}

// NewIncident creates an incident with all optional fields absent except the priority.
func NewIncident(projectID int, projectName string, artifactID int, name string, priorityName *string) *Incident {
	return &Incident{base: newBase(projectID, projectName, artifactID, name, priorityName)}
}

func (i *Incident) Kind() Kind { return KindIncident }
func (i *Incident) Prefix() string { return KindIncident.Prefix() }
func (i *Incident) Token() string { return FormatToken(KindIncident, i.artifactID) }

// FormatToken renders the "<prefix>:<id>" display code of an artifact.
func FormatToken(kind Kind, artifactID int) string {
	return fmt.Sprintf("%s:%d", kind.Prefix(), artifactID)
}

// ParseToken splits a display code such as "TK:12" into its kind and id.
func ParseToken(token string) (Kind, int, error) {
	prefix, id, ok := strings.Cut(strings.TrimSpace(token), ":")
	if !ok {
		return "", 0, fmt.Errorf("invalid artifact token %q, expected format: PREFIX:ID", token)
	}

	kind, err := ParseKind(prefix)
	if err != nil {
		return "", 0, err
	}

	n, err := strconv.Atoi(id)
	if err != nil {
		return "", 0, fmt.Errorf("invalid artifact id in %q: %w", token, err)
	}

	return kind, n, nil
}

// StringPtr returns a pointer to s. Handy for the optional fields.
func StringPtr(s string) *string {
	return &s
}
