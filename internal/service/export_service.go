package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/quick-event-planner/internal/dto"
	"github.com/noah-isme/quick-event-planner/internal/models"
	appErrors "github.com/noah-isme/quick-event-planner/pkg/errors"
	"github.com/noah-isme/quick-event-planner/pkg/ical"
)

const (
	missingDates = "select at least one date"
	missingTitle = "add an event title"

	defaultStartTime = "09:00"
	defaultEndTime   = "10:00"
)

type calendarSerializer interface {
	Serialize(dates ical.DateSet, meta ical.EventMetadata) ([]byte, error)
}

type selectionReader interface {
	Get(ctx context.Context, id string) (*models.Selection, error)
}

type exportRecorder interface {
	RecordExport(allDay bool, events int)
	RecordExportFailure(reason string)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Filename string
}

// ExportResult is a rendered calendar document ready to download.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
	EventCount  int
}

// ExportService turns a date selection plus event details into an .ics file.
type ExportService struct {
	serializer calendarSerializer
	selections selectionReader
	metrics    exportRecorder
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService wires an ExportService.
func NewExportService(serializer calendarSerializer, selections selectionReader, metrics exportRecorder, validate *validator.Validate, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if serializer == nil {
		serializer = ical.NewSerializer(ical.DefaultProductID)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.Filename) == "" {
		cfg.Filename = ical.DefaultFilename
	}
	return &ExportService{
		serializer: serializer,
		selections: selections,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// Readiness reports what the user still has to do before exporting.
func (s *ExportService) Readiness(count int, title string) dto.Readiness {
	var missing []string
	if count == 0 {
		missing = append(missing, missingDates)
	}
	if strings.TrimSpace(title) == "" {
		missing = append(missing, missingTitle)
	}
	if len(missing) > 0 {
		return dto.Readiness{
			Ready:   false,
			Missing: missing,
			Message: fmt.Sprintf("To export, %s.", strings.Join(missing, " and ")),
		}
	}

	noun := "Event"
	if count > 1 {
		noun = "Events"
	}
	return dto.Readiness{Ready: true, Message: fmt.Sprintf("Export %d %s as .ics", count, noun)}
}

// Export renders the dates and details of a stateless request.
func (s *ExportService) Export(ctx context.Context, req dto.ExportRequest) (*ExportResult, error) {
	req.EventDetails = trimDetails(req.EventDetails)

	if readiness := s.Readiness(len(req.Dates), req.Title); !readiness.Ready {
		s.fail("not_ready")
		return nil, appErrors.Clone(appErrors.ErrValidation, readiness.Message)
	}
	if err := s.validator.Struct(req); err != nil {
		s.fail("invalid_request")
		return nil, appErrors.Clone(appErrors.ErrValidation, "dates must not contain empty values")
	}

	dates := make([]ical.Date, 0, len(req.Dates))
	for _, raw := range req.Dates {
		d, err := ical.ParseDate(raw)
		if err != nil {
			s.fail("invalid_date")
			return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		dates = append(dates, d)
	}

	return s.render(ctx, ical.NewDateSet(dates...), req.EventDetails)
}

// ExportSelection renders the dates stored in a session.
func (s *ExportService) ExportSelection(ctx context.Context, id string, details dto.EventDetails) (*ExportResult, error) {
	if s.selections == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "selection store not configured")
	}
	sel, err := s.selections.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	details = trimDetails(details)
	set := sel.DateSet()
	if readiness := s.Readiness(set.Len(), details.Title); !readiness.Ready {
		s.fail("not_ready")
		return nil, appErrors.Clone(appErrors.ErrValidation, readiness.Message)
	}
	return s.render(ctx, set, details)
}

// SelectionReadiness reports readiness for a stored session.
func (s *ExportService) SelectionReadiness(ctx context.Context, id string, details dto.EventDetails) (dto.Readiness, error) {
	if s.selections == nil {
		return dto.Readiness{}, appErrors.Clone(appErrors.ErrInternal, "selection store not configured")
	}
	sel, err := s.selections.Get(ctx, id)
	if err != nil {
		return dto.Readiness{}, err
	}
	return s.Readiness(len(sel.Dates), details.Title), nil
}

func (s *ExportService) render(ctx context.Context, set ical.DateSet, details dto.EventDetails) (*ExportResult, error) {
	meta, err := buildMetadata(details)
	if err != nil {
		s.fail("invalid_time")
		return nil, err
	}

	body, err := s.serializer.Serialize(set, meta)
	if err != nil {
		if errors.Is(err, ical.ErrNoDates) || errors.Is(err, ical.ErrEmptyTitle) {
			s.fail("not_ready")
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, s.Readiness(set.Len(), meta.Title).Message)
		}
		s.fail("serialize")
		s.logger.Error("calendar serialization failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build calendar file")
	}

	if s.metrics != nil {
		s.metrics.RecordExport(meta.AllDay, set.Len())
	}
	s.logger.Info("calendar exported",
		zap.Int("events", set.Len()),
		zap.Bool("all_day", meta.AllDay),
		zap.Int("bytes", len(body)),
	)

	return &ExportResult{
		Filename:    s.cfg.Filename,
		ContentType: ical.MediaType + "; charset=utf-8",
		Body:        body,
		EventCount:  set.Len(),
	}, nil
}

func (s *ExportService) fail(reason string) {
	if s.metrics != nil {
		s.metrics.RecordExportFailure(reason)
	}
}

func trimDetails(d dto.EventDetails) dto.EventDetails {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Location = strings.TrimSpace(d.Location)
	d.StartTime = strings.TrimSpace(d.StartTime)
	d.EndTime = strings.TrimSpace(d.EndTime)
	return d
}

// buildMetadata converts form values into serializer input. Times are
// parsed only for timed events; all-day exports ignore them.
func buildMetadata(d dto.EventDetails) (ical.EventMetadata, error) {
	meta := ical.EventMetadata{
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		AllDay:      d.IsAllDay(),
	}

	start, end := d.StartTime, d.EndTime
	if meta.AllDay {
		start, end = "", ""
	}
	if start == "" {
		start = defaultStartTime
	}
	if end == "" {
		end = defaultEndTime
	}

	var err error
	if meta.StartTime, err = ical.ParseTimeOfDay(start); err != nil {
		return ical.EventMetadata{}, appErrors.Clone(appErrors.ErrValidation, "start_time: "+err.Error())
	}
	if meta.EndTime, err = ical.ParseTimeOfDay(end); err != nil {
		return ical.EventMetadata{}, appErrors.Clone(appErrors.ErrValidation, "end_time: "+err.Error())
	}
	return meta, nil
}
