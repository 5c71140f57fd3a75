// Package selection answers "which eligible project best matches these
// filters" queries. It never mutates the store.
package selection

import (
	"context"
	"errors"
	"log/slog"

	"projectdir/internal/platform/metrics"
	"projectdir/internal/project"
	"projectdir/pkg/platform/sentinel"
	"projectdir/pkg/requestcontext"
)

// Filters are the caller's optional constraints. ProjectID takes priority
// over everything else; the remaining three are AND-combined on top of the
// eligibility predicate.
type Filters struct {
	ProjectID *int64
	Country   *string
	MinNumber *int64
	Keyword   *string
}

func (f Filters) empty() bool {
	return f.ProjectID == nil && f.Country == nil && f.MinNumber == nil && f.Keyword == nil
}

// mode names the selection path taken, for logs and metrics.
func (f Filters) mode() string {
	switch {
	case f.ProjectID != nil:
		return "direct"
	case f.empty():
		return "unfiltered"
	default:
		return "filtered"
	}
}

// Status is the tri-state result of a selection.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	// StatusFault marks an internal evaluation failure. The HTTP boundary
	// collapses it into not-found to preserve the external contract, but
	// keeping it distinct here lets it be logged and counted.
	StatusFault
)

// Outcome carries the selected projection when Status is StatusFound and
// the underlying error when Status is StatusFault.
type Outcome struct {
	Status     Status
	Projection project.Projection
	Err        error
}

func found(p *project.Project) Outcome {
	return Outcome{Status: StatusFound, Projection: p.Projection()}
}

func notFound() Outcome {
	return Outcome{Status: StatusNotFound}
}

func fault(err error) Outcome {
	return Outcome{Status: StatusFault, Err: err}
}

// Service evaluates eligibility, filters, and cost ranking against the
// entity store.
type Service struct {
	store   project.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(store project.Store, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		logger:  logger,
		metrics: m,
	}
}

// Select returns the single best-matching project. Mode priority:
//
//  1. ProjectID set: direct lookup, eligibility ignored.
//  2. No filters: max-cost project among eligible ones.
//  3. Any other filter set: max-cost eligible project satisfying every
//     supplied filter.
//
// "Now" is the request-scoped time (requestcontext.WithTime injects a fixed
// clock in tests).
func (s *Service) Select(ctx context.Context, filters Filters) Outcome {
	outcome := s.evaluate(ctx, filters)
	s.metrics.IncrementSelections(filters.mode(), outcomeLabel(outcome))

	if outcome.Status == StatusFault {
		s.logger.ErrorContext(ctx, "selection fault",
			"request_id", requestcontext.RequestID(ctx),
			"mode", filters.mode(),
			"error", outcome.Err.Error(),
		)
	}
	return outcome
}

func (s *Service) evaluate(ctx context.Context, filters Filters) Outcome {
	if filters.ProjectID != nil {
		p, err := s.store.FindByID(ctx, *filters.ProjectID)
		return toOutcome(p, err)
	}

	p, err := s.store.BestMatch(ctx, project.Match{
		Now:       requestcontext.Now(ctx),
		Country:   filters.Country,
		MinNumber: filters.MinNumber,
		Keyword:   filters.Keyword,
	})
	return toOutcome(p, err)
}

func toOutcome(p *project.Project, err error) Outcome {
	switch {
	case err == nil:
		return found(p)
	case errors.Is(err, sentinel.ErrNotFound):
		return notFound()
	default:
		return fault(err)
	}
}

func outcomeLabel(o Outcome) string {
	switch o.Status {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	default:
		return "fault"
	}
}
