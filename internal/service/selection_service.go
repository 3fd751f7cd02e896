package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/quick-event-planner/internal/dto"
	"github.com/noah-isme/quick-event-planner/internal/models"
	appErrors "github.com/noah-isme/quick-event-planner/pkg/errors"
	"github.com/noah-isme/quick-event-planner/pkg/ical"
)

const defaultSessionTTL = 24 * time.Hour

type selectionStore interface {
	Get(ctx context.Context, id string) (*models.Selection, error)
	Save(ctx context.Context, sel *models.Selection, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type selectionRecorder interface {
	RecordSelectionOp(op string)
}

// SelectionServiceConfig tunes session lifetime.
type SelectionServiceConfig struct {
	TTL time.Duration
}

// SelectionService manages date picker sessions.
type SelectionService struct {
	repo      selectionStore
	calendar  *CalendarService
	metrics   selectionRecorder
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SelectionServiceConfig
	now       func() time.Time
	newID     func() string
}

// NewSelectionService wires a SelectionService.
func NewSelectionService(repo selectionStore, calendar *CalendarService, metrics selectionRecorder, validate *validator.Validate, logger *zap.Logger, cfg SelectionServiceConfig) *SelectionService {
	if calendar == nil {
		calendar = NewCalendarService("monday")
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultSessionTTL
	}
	return &SelectionService{
		repo:      repo,
		calendar:  calendar,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Today returns the current local date.
func (s *SelectionService) Today() ical.Date {
	return ical.DateOf(s.now())
}

// Create starts an empty session showing today's month.
func (s *SelectionService) Create(ctx context.Context, today ical.Date) (*models.Selection, error) {
	if today.IsZero() {
		today = s.Today()
	}
	now := s.now().UTC()
	sel := &models.Selection{
		ID:        s.newID(),
		Dates:     []ical.Date{},
		ViewYear:  today.Year,
		ViewMonth: today.Month,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, sel, s.cfg.TTL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create selection")
	}
	s.record("create")
	s.logger.Info("selection created", zap.String("session_id", sel.ID))
	return sel, nil
}

// Get loads a session.
func (s *SelectionService) Get(ctx context.Context, id string) (*models.Selection, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	sel, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "selection not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}
	return sel, nil
}

// Toggle adds date to the session when absent and removes it otherwise.
func (s *SelectionService) Toggle(ctx context.Context, id string, date ical.Date) (*models.Selection, error) {
	if date.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}
	return s.mutate(ctx, id, "toggle", func(sel *models.Selection) error {
		set := sel.DateSet()
		if set.Contains(date) {
			set = set.Without(date)
		} else {
			set = set.With(date)
		}
		sel.SetDates(set)
		return nil
	})
}

// Clear empties the selected dates and keeps the displayed month.
func (s *SelectionService) Clear(ctx context.Context, id string) (*models.Selection, error) {
	return s.mutate(ctx, id, "clear", func(sel *models.Selection) error {
		sel.Dates = []ical.Date{}
		return nil
	})
}

// Navigate moves the displayed month back or forward by one.
func (s *SelectionService) Navigate(ctx context.Context, id string, req dto.NavigateRequest) (*models.Selection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "delta must be -1 or 1")
	}
	return s.mutate(ctx, id, "navigate", func(sel *models.Selection) error {
		sel.ViewYear, sel.ViewMonth = s.calendar.Shift(sel.ViewYear, sel.ViewMonth, req.Delta)
		return nil
	})
}

// Delete drops a session. Unknown ids are ignored.
func (s *SelectionService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete selection")
	}
	s.record("delete")
	return nil
}

// View renders a session with its month grid.
func (s *SelectionService) View(sel *models.Selection) (dto.SelectionView, error) {
	month, err := s.calendar.Month(sel.ViewYear, sel.ViewMonth, sel.DateSet(), s.Today())
	if err != nil {
		return dto.SelectionView{}, err
	}
	dates := sel.Dates
	if dates == nil {
		dates = []ical.Date{}
	}
	return dto.SelectionView{
		ID:        sel.ID,
		Dates:     dates,
		Count:     len(dates),
		Month:     month,
		UpdatedAt: sel.UpdatedAt,
	}, nil
}

func (s *SelectionService) mutate(ctx context.Context, id, op string, apply func(sel *models.Selection) error) (*models.Selection, error) {
	sel, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(sel); err != nil {
		return nil, err
	}
	sel.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, sel, s.cfg.TTL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save selection")
	}
	s.record(op)
	s.logger.Debug("selection updated",
		zap.String("session_id", sel.ID),
		zap.String("op", op),
		zap.Int("dates", len(sel.Dates)),
	)
	return sel, nil
}

func (s *SelectionService) record(op string) {
	if s.metrics != nil {
		s.metrics.RecordSelectionOp(op)
	}
}
