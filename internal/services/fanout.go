package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

// resolveAudience returns the learners an assignment targets at this instant.
// An explicit TEAM member list wins over the team roster.
func resolveAudience(ctx context.Context, roster repositories.RosterProvider, a *models.Assignment) ([]string, error) {
	switch a.TargetType {
	case models.TargetClass:
		if a.ClassID == nil {
			return nil, fmt.Errorf("assignment %d: CLASS target without class_id", a.ID)
		}
		members, err := roster.MembersOfClass(ctx, *a.ClassID)
		if err != nil {
			return nil, fmt.Errorf("failed to load members of class %d: %w", *a.ClassID, err)
		}
		return uniqueIDs(members), nil

	case models.TargetTeam:
		if a.HasExplicitMembers() {
			return uniqueIDs(a.MemberIDs), nil
		}
		if a.TeamID == nil {
			return nil, fmt.Errorf("assignment %d: TEAM target without members or team_id", a.ID)
		}
		members, err := roster.MembersOfTeam(ctx, *a.TeamID)
		if err != nil {
			return nil, fmt.Errorf("failed to load members of team %d: %w", *a.TeamID, err)
		}
		return uniqueIDs(members), nil

	case models.TargetStudent:
		if a.StudentID == nil || *a.StudentID == "" {
			return nil, fmt.Errorf("assignment %d: STUDENT target without student_id", a.ID)
		}
		return []string{*a.StudentID}, nil
	}
	return nil, fmt.Errorf("assignment %d: unknown target type %q", a.ID, a.TargetType)
}

// newProgressRecords builds one record per learner, inheriting the section anchor
func newProgressRecords(a *models.Assignment, studentIDs []string, status models.ProgressStatus) []*models.ProgressRecord {
	records := make([]*models.ProgressRecord, 0, len(studentIDs))
	for _, id := range studentIDs {
		rec := &models.ProgressRecord{
			AssignmentID: a.ID,
			StudentID:    id,
			Status:       status,
		}
		if a.SectionID != nil {
			anchor := *a.SectionID
			rec.AnchorSectionID = &anchor
		}
		records = append(records, rec)
	}
	return records
}

// missingMembers returns roster entries with no existing record, in roster order
func missingMembers(roster, existing []string) []string {
	have := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		have[id] = struct{}{}
	}
	var missing []string
	for _, id := range roster {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// publish never fails the caller; a lost event is logged
func publish(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.DomainEvent) {
	if err := publisher.PublishEvent(ctx, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}
