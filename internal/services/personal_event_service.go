package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
)

type personalEventService struct {
	repo      repositories.Repository
	validator *validator.Validator
	ops       *ServiceLogger
}

func NewPersonalEventService(repo repositories.Repository, validator *validator.Validator, logger *slog.Logger) PersonalEventService {
	return &personalEventService{
		repo:      repo,
		validator: validator,
		ops:       NewServiceLogger(logger, "personal_event"),
	}
}

func (s *personalEventService) Create(ctx context.Context, ownerID string, req *PersonalEventRequest) (event *models.PersonalEvent, err error) {
	op := s.ops.WithOperation(ctx, "create_personal_event", ownerID)
	defer func() {
		var id uint
		if event != nil {
			id = event.ID
		}
		op.LogResult(id, "personal_event", err)
	}()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	event = &models.PersonalEvent{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
	}
	if err := s.repo.PersonalEvent().Create(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("failed to create personal event: %w", err)
	}
	return event, nil
}

func (s *personalEventService) Get(ctx context.Context, id uint, ownerID string) (*models.PersonalEvent, error) {
	return s.getOwned(ctx, id, ownerID)
}

func (s *personalEventService) Update(ctx context.Context, id uint, ownerID string, req *PersonalEventRequest) (event *models.PersonalEvent, err error) {
	op := s.ops.WithOperation(ctx, "update_personal_event", ownerID)
	defer func() { op.LogResult(id, "personal_event", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	event, err = s.getOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	event.Title = req.Title
	event.Description = req.Description
	event.StartAt = req.StartAt
	event.EndAt = req.EndAt
	if err := s.repo.PersonalEvent().Update(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("failed to update personal event: %w", err)
	}
	return event, nil
}

func (s *personalEventService) Delete(ctx context.Context, id uint, ownerID string) (err error) {
	op := s.ops.WithOperation(ctx, "delete_personal_event", ownerID)
	defer func() { op.LogResult(id, "personal_event", err) }()

	if _, err := s.getOwned(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.repo.PersonalEvent().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrPersonalEventNotFound
		}
		return fmt.Errorf("failed to delete personal event: %w", err)
	}
	return nil
}

func (s *personalEventService) List(ctx context.Context, ownerID string, from, to *time.Time) ([]*models.PersonalEvent, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, ValidationErrors{*NewValidationError("to", "must not be before from", to)}
	}
	events, err := s.repo.PersonalEvent().EventsOwnedBy(ctx, nil, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal events: %w", err)
	}
	return events, nil
}

// getOwned hides other learners' events behind a permission error
func (s *personalEventService) getOwned(ctx context.Context, id uint, ownerID string) (*models.PersonalEvent, error) {
	event, err := s.repo.PersonalEvent().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPersonalEventNotFound
		}
		return nil, fmt.Errorf("failed to get personal event: %w", err)
	}
	if event.OwnerID != ownerID {
		return nil, ErrPersonalEventAccessDenied
	}
	return event, nil
}
