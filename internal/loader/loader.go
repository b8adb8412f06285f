// Package loader turns the flat records returned by the REST service into typed artifacts.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/danielolaszy/spira/internal/logging"
	"github.com/danielolaszy/spira/pkg/models"
)

// Record is one decoded JSON object as returned by the REST service.
type Record map[string]any

var (
	// ErrMissingField is returned when a required field is absent from a record.
	ErrMissingField = errors.New("missing required field")
	// ErrFieldType is returned when a field holds a value of the wrong type.
	ErrFieldType = errors.New("unexpected field type")
)

// Shared field names.
const (
	fieldProjectID   = "ProjectId"
	fieldProjectName = "ProjectName"
	fieldName        = "Name"
	fieldDescription = "Description"
)

// fieldMap names the kind-specific source fields of a record.
type fieldMap struct {
	ID       string
	Priority string
	Status   string
	Type     string
	// ApplyType is false for requirements: the type name is read but never set.
	ApplyType bool
}

var fieldMaps = map[models.Kind]fieldMap{
	models.KindRequirement: {
		ID:       "RequirementId",
		Priority: "ImportanceName",
		Status:   "StatusName",
		Type:     "RequirementTypeName",
	},
	models.KindTask: {
		ID:        "TaskId",
		Priority:  "TaskPriorityName",
		Status:    "TaskStatusName",
		Type:      "TaskTypeName",
		ApplyType: true,
	},
	models.KindIncident: {
		ID:        "IncidentId",
		Priority:  "PriorityName",
		Status:    "IncidentStatusName",
		Type:      "IncidentTypeName",
		ApplyType: true,
	},
}

// LoadFailure reports that fetching or decoding one artifact kind failed.
type LoadFailure struct {
	Kind models.Kind
	Err  error
}

func (e *LoadFailure) Error() string {
	return fmt.Sprintf("failed to load %ss: %v", e.Kind, e.Err)
}

func (e *LoadFailure) Unwrap() error {
	return e.Err
}

// LoadRequirements converts requirement records.
func LoadRequirements(records []Record) ([]models.Artifact, error) {
	return Load(models.KindRequirement, records)
}

// LoadTasks converts task records.
func LoadTasks(records []Record) ([]models.Artifact, error) {
	return Load(models.KindTask, records)
}

// LoadIncidents converts incident records.
func LoadIncidents(records []Record) ([]models.Artifact, error) {
	return Load(models.KindIncident, records)
}

// Load converts every record of one kind into an artifact.
// The first bad record fails the whole pass; nothing is skipped.
func Load(kind models.Kind, records []Record) ([]models.Artifact, error) {
	fields, ok := fieldMaps[kind]
	if !ok {
		return nil, &LoadFailure{Kind: kind, Err: models.ErrUnknownKind}
	}

	artifacts := make([]models.Artifact, 0, len(records))
	for i, rec := range records {
		artifact, err := build(kind, fields, rec)
		if err != nil {
			logging.Debug("rejecting record", "kind", kind, "index", i, "error", err)
			return nil, &LoadFailure{Kind: kind, Err: fmt.Errorf("record %d: %w", i, err)}
		}
		artifacts = append(artifacts, artifact)
	}

	logging.Debug("loaded artifacts", "kind", kind, "count", len(artifacts))
	return artifacts, nil
}

func build(kind models.Kind, fields fieldMap, rec Record) (models.Artifact, error) {
	projectID, err := requiredInt(rec, fieldProjectID)
	if err != nil {
		return nil, err
	}
	artifactID, err := requiredInt(rec, fields.ID)
	if err != nil {
		return nil, err
	}
	projectName, err := requiredString(rec, fieldProjectName)
	if err != nil {
		return nil, err
	}
	name, err := requiredString(rec, fieldName)
	if err != nil {
		return nil, err
	}

	priority, err := optionalString(rec, fields.Priority)
	if err != nil {
		return nil, err
	}
	description, err := optionalString(rec, fieldDescription)
	if err != nil {
		return nil, err
	}
	status, err := optionalString(rec, fields.Status)
	if err != nil {
		return nil, err
	}
	artifactType, err := optionalString(rec, fields.Type)
	if err != nil {
		return nil, err
	}

	var artifact models.Artifact
	switch kind {
	case models.KindRequirement:
		artifact = models.NewRequirement(projectID, projectName, artifactID, name, priority)
	case models.KindTask:
		artifact = models.NewTask(projectID, projectName, artifactID, name, priority)
	case models.KindIncident:
		artifact = models.NewIncident(projectID, projectName, artifactID, name, priority)
	}

	artifact.SetDescription(description)
	artifact.SetStatus(status)
	if fields.ApplyType {
		if t, ok := artifact.(interface{ SetType(*string) }); ok {
			t.SetType(artifactType)
		}
	}

	return artifact, nil
}

func requiredInt(rec Record, field string) (int, error) {
	v, ok := rec[field]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrFieldType, field, err)
	}
	return n, nil
}

// toInt truncates toward zero; ids come through encoding/json as float64.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("not a finite number: %v", n)
		}
		return int(n), nil
	case float32:
		return toInt(float64(n))
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return toInt(f)
	}
	return 0, fmt.Errorf("got %T", v)
}

func requiredString(rec Record, field string) (string, error) {
	v, ok := rec[field]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s: got %T", ErrFieldType, field, v)
	}
	return s, nil
}

// optionalString returns nil for a missing or null field.
func optionalString(rec Record, field string) (*string, error) {
	v, ok := rec[field]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s: got %T", ErrFieldType, field, v)
	}
	return &s, nil
}
