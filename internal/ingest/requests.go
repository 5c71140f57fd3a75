package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"projectdir/internal/project"
)

// CreateProjectRequest is the ingestion payload. Every required field is a
// pointer so a missing field is distinguishable from a zero value; strict
// decoding rejects wrong-typed and unrecognized fields before validation.
type CreateProjectRequest struct {
	ID              *int64      `json:"id"`
	ProjectName     *string     `json:"projectName"`
	CreationDate    *string     `json:"creationDate"`
	ExpiryDate      *string     `json:"expiryDate"`
	Enabled         *bool       `json:"enabled"`
	TargetCountries []string    `json:"targetCountries"`
	ProjectCost     *float64    `json:"projectCost"`
	ProjectURL      *string     `json:"projectUrl"`
	TargetKeys      []TargetKey `json:"targetKeys"`

	hasTargetCountries bool
	hasTargetKeys      bool
}

// TargetKey is one (threshold, keyword) pair of the payload.
type TargetKey struct {
	Number  *int64  `json:"number"`
	Keyword *string `json:"keyword"`
}

// ValidationError names the payload field that failed and why. It is the
// enumerated outcome ingestion reports instead of a catch-all exception.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payload: field %q %s", e.Field, e.Reason)
}

const (
	reasonMissing      = "is required"
	reasonMalformed    = "is malformed"
	reasonEmpty        = "must not be empty"
	reasonUnparsable   = "does not match the MMDDYYYY HH:MM:SS layout"
	reasonWrongTyped   = "is wrong-typed"
	reasonUnrecognized = "is not a recognized field"
)

// parseRequest decodes and validates a raw payload. Unknown fields and type
// mismatches (e.g. a string projectCost) are treated as validation
// failures: nothing malformed reaches the store.
func parseRequest(raw []byte) (*CreateProjectRequest, *ValidationError) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var req CreateProjectRequest
	if err := dec.Decode(&req); err != nil {
		return nil, decodeFailure(err)
	}
	if dec.More() {
		return nil, &ValidationError{Field: "payload", Reason: reasonMalformed}
	}

	// A second pass over the raw keys distinguishes "absent list" from
	// "empty list"; both are valid, but only the former is worth noting.
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, &ValidationError{Field: "payload", Reason: reasonMalformed}
	}
	_, req.hasTargetCountries = keys["targetCountries"]
	_, req.hasTargetKeys = keys["targetKeys"]

	if verr := req.validate(); verr != nil {
		return nil, verr
	}
	return &req, nil
}

// The decoder reports unknown fields only through its error text.
const unknownFieldPrefix = `json: unknown field `

func decodeFailure(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &ValidationError{Field: typeErr.Field, Reason: reasonWrongTyped}
	}
	if msg := err.Error(); strings.HasPrefix(msg, unknownFieldPrefix) {
		field := strings.Trim(strings.TrimPrefix(msg, unknownFieldPrefix), `"`)
		return &ValidationError{Field: field, Reason: reasonUnrecognized}
	}
	return &ValidationError{Field: "payload", Reason: reasonMalformed}
}

func (r *CreateProjectRequest) validate() *ValidationError {
	switch {
	case r.ID == nil:
		return &ValidationError{Field: "id", Reason: reasonMissing}
	case r.ProjectName == nil:
		return &ValidationError{Field: "projectName", Reason: reasonMissing}
	case *r.ProjectName == "":
		return &ValidationError{Field: "projectName", Reason: reasonEmpty}
	case r.CreationDate == nil:
		return &ValidationError{Field: "creationDate", Reason: reasonMissing}
	case r.ExpiryDate == nil:
		return &ValidationError{Field: "expiryDate", Reason: reasonMissing}
	case r.Enabled == nil:
		return &ValidationError{Field: "enabled", Reason: reasonMissing}
	case !r.hasTargetCountries:
		return &ValidationError{Field: "targetCountries", Reason: reasonMissing}
	case r.ProjectCost == nil:
		return &ValidationError{Field: "projectCost", Reason: reasonMissing}
	case !r.hasTargetKeys:
		return &ValidationError{Field: "targetKeys", Reason: reasonMissing}
	}

	if _, err := time.Parse(project.TimestampLayout, *r.CreationDate); err != nil {
		return &ValidationError{Field: "creationDate", Reason: reasonUnparsable}
	}
	if _, err := time.Parse(project.TimestampLayout, *r.ExpiryDate); err != nil {
		return &ValidationError{Field: "expiryDate", Reason: reasonUnparsable}
	}

	for _, k := range r.TargetKeys {
		if k.Number == nil {
			return &ValidationError{Field: "targetKeys.number", Reason: reasonMissing}
		}
		if k.Keyword == nil {
			return &ValidationError{Field: "targetKeys.keyword", Reason: reasonMissing}
		}
	}
	return nil
}

// group builds the record set the store persists atomically. All country
// and key rows carry groupId = id.
func (r *CreateProjectRequest) group() project.Group {
	creation, _ := time.Parse(project.TimestampLayout, *r.CreationDate)
	expiry, _ := time.Parse(project.TimestampLayout, *r.ExpiryDate)

	g := project.Group{
		Project: project.Project{
			ID:           *r.ID,
			Name:         *r.ProjectName,
			CreationDate: creation,
			ExpiryDate:   expiry,
			Enabled:      *r.Enabled,
			Cost:         *r.ProjectCost,
			URL:          r.ProjectURL,
		},
	}
	for _, c := range r.TargetCountries {
		g.Countries = append(g.Countries, project.Country{GroupID: *r.ID, Country: c})
	}
	for _, k := range r.TargetKeys {
		g.Keys = append(g.Keys, project.Key{GroupID: *r.ID, Number: *k.Number, Keyword: *k.Keyword})
	}
	return g
}
