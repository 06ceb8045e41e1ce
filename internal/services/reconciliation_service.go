package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

type reconciliationService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	ops       *ServiceLogger
}

func NewReconciliationService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) ReconciliationService {
	return &reconciliationService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		ops:       NewServiceLogger(logger, "reconciliation"),
	}
}

// Reconcile inserts the progress records missing for the current audience of
// every assignment in scope. Records are never removed, so learners who left
// a group keep their history. A failing assignment is skipped and reported;
// cancellation stops the sweep with everything written so far committed.
func (s *reconciliationService) Reconcile(ctx context.Context, scope repositories.ReconcileScope) (*ReconcileResult, error) {
	start := time.Now()

	assignments, err := s.repo.Assignment().ListForReconciliation(ctx, nil, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments for reconciliation: %w", err)
	}
	if scope.AssignmentID != nil && len(assignments) == 0 {
		return nil, ErrAssignmentNotFound
	}

	result := &ReconcileResult{Failures: []SweepFailure{}}
	for _, a := range assignments {
		if err := ctx.Err(); err != nil {
			s.finish(ctx, result, start)
			return result, err
		}

		result.Scanned++
		created, err := s.reconcileOne(ctx, a)
		if err != nil {
			result.SkippedCount++
			result.Failures = append(result.Failures, SweepFailure{ID: a.ID, Reason: err.Error()})
			s.ops.LogItemFailure(ctx, "reconciliation", a.ID, err)
			continue
		}
		if created > 0 {
			result.FixedCount++
			result.CreatedRecords += created
		}
	}

	s.finish(ctx, result, start)
	return result, nil
}

func (s *reconciliationService) reconcileOne(ctx context.Context, a *models.Assignment) (int64, error) {
	audience, err := resolveAudience(ctx, s.repo.Roster(), a)
	if err != nil {
		return 0, err
	}

	existing, err := s.repo.Progress().StudentIDsByAssignment(ctx, nil, a.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load progress of assignment %d: %w", a.ID, err)
	}

	missing := missingMembers(audience, existing)
	if len(missing) == 0 {
		return 0, nil
	}
	return s.repo.Progress().InsertMissing(ctx, nil, newProgressRecords(a, missing, models.ProgressNotStarted))
}

func (s *reconciliationService) finish(ctx context.Context, r *ReconcileResult, start time.Time) {
	s.ops.LogSweep(ctx, "reconciliation", time.Since(start),
		slog.Int("scanned", r.Scanned),
		slog.Int("fixed", r.FixedCount),
		slog.Int("skipped", r.SkippedCount),
		slog.Int64("created_records", r.CreatedRecords),
	)
	publish(ctx, s.publisher, s.logger,
		events.NewProgressReconciledEvent(r.Scanned, r.FixedCount, r.SkippedCount, r.CreatedRecords))
}
