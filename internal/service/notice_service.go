package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

type noticeRepository interface {
	ListNotices(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, error)
	FindNotice(ctx context.Context, id string) (*models.Notice, error)
	SaveNotice(ctx context.Context, notice *models.Notice) error
	DeleteNotice(ctx context.Context, id string) error
	ListEvents(ctx context.Context, filter models.NoticeFilter) ([]models.Event, error)
	FindEvent(ctx context.Context, id string) (*models.Event, error)
	SaveEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
}

// CreateNoticeRequest holds payload for publishing a notice.
type CreateNoticeRequest struct {
	Title          string          `json:"title" validate:"required"`
	Content        string          `json:"content" validate:"required"`
	Category       string          `json:"category" validate:"required"`
	Priority       string          `json:"priority"`
	Audience       models.UserRole `json:"audience"`
	AttachmentURLs []string        `json:"attachment_urls"`
}

// CreateEventRequest holds payload for scheduling an event.
type CreateEventRequest struct {
	Name           string          `json:"name" validate:"required"`
	Description    string          `json:"description" validate:"required"`
	Category       string          `json:"category" validate:"required"`
	Venue          string          `json:"venue"`
	StartsAt       time.Time       `json:"starts_at" validate:"required"`
	EndsAt         time.Time       `json:"ends_at"`
	Audience       models.UserRole `json:"audience"`
	AttachmentURLs []string        `json:"attachment_urls"`
}

// NoticeService handles notices and events with the approval workflow:
// staff submissions start pending, office submissions auto-approve.
type NoticeService struct {
	repo      noticeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoticeService constructs the notice service.
func NewNoticeService(repo noticeRepository, validate *validator.Validate, logger *zap.Logger) *NoticeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoticeService{repo: repo, validator: validate, logger: logger}
}

func initialStatus(role models.UserRole) models.ApprovalStatus {
	if role == models.RoleOffice {
		return models.ApprovalApproved
	}
	return models.ApprovalPending
}

// ListNotices returns notices. Non-office callers only see approved ones.
func (s *NoticeService) ListNotices(ctx context.Context, callerRole models.UserRole, filter models.NoticeFilter) ([]models.Notice, error) {
	if callerRole != models.RoleOffice && filter.Status == "" {
		filter.Status = models.ApprovalApproved
	}
	notices, err := s.repo.ListNotices(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}
	return notices, nil
}

// CreateNotice publishes a notice with the role-derived approval state.
func (s *NoticeService) CreateNotice(ctx context.Context, creator models.UserInfo, req CreateNoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}

	notice := &models.Notice{
		Title:          req.Title,
		Content:        req.Content,
		Category:       req.Category,
		Priority:       req.Priority,
		Audience:       req.Audience,
		AttachmentURLs: req.AttachmentURLs,
		Status:         initialStatus(creator.Role),
		CreatedBy:      creator.UID,
		CreatedByRole:  creator.Role,
	}
	if err := s.repo.SaveNotice(ctx, notice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notice")
	}
	return notice, nil
}

// ReviewNotice moves a pending notice to approved or rejected.
func (s *NoticeService) ReviewNotice(ctx context.Context, id string, approve bool) (*models.Notice, error) {
	notice, err := s.repo.FindNotice(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notice")
	}
	if notice.Status != models.ApprovalPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "notice already reviewed")
	}

	notice.Status = models.ApprovalRejected
	if approve {
		notice.Status = models.ApprovalApproved
	}
	if err := s.repo.SaveNotice(ctx, notice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review notice")
	}
	return notice, nil
}

// DeleteNotice removes a notice.
func (s *NoticeService) DeleteNotice(ctx context.Context, id string) error {
	if _, err := s.repo.FindNotice(ctx, id); err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notice")
	}
	if err := s.repo.DeleteNotice(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notice")
	}
	return nil
}

// ListEvents returns events. Non-office callers only see approved ones.
func (s *NoticeService) ListEvents(ctx context.Context, callerRole models.UserRole, filter models.NoticeFilter) ([]models.Event, error) {
	if callerRole != models.RoleOffice && filter.Status == "" {
		filter.Status = models.ApprovalApproved
	}
	events, err := s.repo.ListEvents(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// CreateEvent schedules an event with the role-derived approval state.
func (s *NoticeService) CreateEvent(ctx context.Context, creator models.UserInfo, req CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	event := &models.Event{
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Venue:          req.Venue,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		Audience:       req.Audience,
		AttachmentURLs: req.AttachmentURLs,
		Status:         initialStatus(creator.Role),
		CreatedBy:      creator.UID,
		CreatedByRole:  creator.Role,
	}
	if err := s.repo.SaveEvent(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	return event, nil
}

// ReviewEvent moves a pending event to approved or rejected.
func (s *NoticeService) ReviewEvent(ctx context.Context, id string, approve bool) (*models.Event, error) {
	event, err := s.repo.FindEvent(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.Status != models.ApprovalPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "event already reviewed")
	}

	event.Status = models.ApprovalRejected
	if approve {
		event.Status = models.ApprovalApproved
	}
	if err := s.repo.SaveEvent(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review event")
	}
	return event, nil
}

// DeleteEvent removes an event.
func (s *NoticeService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.repo.FindEvent(ctx, id); err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	return nil
}
