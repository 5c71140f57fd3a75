// Package ingest validates incoming project payloads and commits each one,
// with its country and key rows, as a single all-or-nothing unit.
package ingest

import (
	"context"
	"errors"
	"log/slog"

	"projectdir/internal/audit"
	"projectdir/internal/platform/metrics"
	"projectdir/internal/project"
	dErrors "projectdir/pkg/domain-errors"
	"projectdir/pkg/platform/sentinel"
	"projectdir/pkg/requestcontext"
)

// Service orchestrates payload validation, the atomic store write, and the
// audit side effect. It holds no state between calls.
type Service struct {
	store   project.Store
	sink    audit.Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(store project.Store, sink audit.Sink, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		sink:    sink,
		logger:  logger,
		metrics: m,
	}
}

// Ingest validates raw payload bytes and persists the project group. On
// success the verbatim payload is handed to the audit sink; a sink failure
// is logged and does not undo the ingestion. Validation and constraint
// failures both come back as CodeBadRequest so the caller sees one
// "rejected input" outcome, as the contract requires.
func (s *Service) Ingest(ctx context.Context, raw []byte) error {
	req, verr := parseRequest(raw)
	if verr != nil {
		s.metrics.IncrementIngestFailures("validation")
		s.logger.WarnContext(ctx, "rejected project payload",
			"request_id", requestcontext.RequestID(ctx),
			"field", verr.Field,
			"reason", verr.Reason,
		)
		return dErrors.Wrap(verr, dErrors.CodeBadRequest, "unable to add project to database")
	}

	if err := s.store.CreateGroup(ctx, req.group()); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementIngestFailures("conflict")
			s.logger.WarnContext(ctx, "duplicate project id",
				"request_id", requestcontext.RequestID(ctx),
				"project_id", *req.ID,
			)
			return dErrors.Wrap(err, dErrors.CodeConflict, "unable to add project to database")
		}
		s.metrics.IncrementIngestFailures("internal")
		s.logger.ErrorContext(ctx, "failed to persist project group",
			"request_id", requestcontext.RequestID(ctx),
			"project_id", *req.ID,
			"error", err.Error(),
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "unable to add project to database")
	}

	s.metrics.IncrementProjectsIngested()

	// The sink runs outside the transaction on purpose: the project is
	// already durable and an audit failure must not roll it back.
	if err := s.sink.Record(ctx, raw); err != nil {
		s.logger.ErrorContext(ctx, "audit sink failed after commit",
			"request_id", requestcontext.RequestID(ctx),
			"project_id", *req.ID,
			"error", err.Error(),
		)
	}
	return nil
}
