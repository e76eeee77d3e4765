package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
)

// Collections backing announcements.
const (
	NoticesCollection = "notices"
	EventsCollection  = "events"
)

// NoticeRepository manages notice and event documents.
type NoticeRepository struct {
	store docstore.Store
}

// NewNoticeRepository constructs a NoticeRepository.
func NewNoticeRepository(store docstore.Store) *NoticeRepository {
	return &NoticeRepository{store: store}
}

func noticeFilters(filter models.NoticeFilter) []docstore.Filter {
	var filters []docstore.Filter
	if filter.Category != "" {
		filters = append(filters, docstore.Filter{Field: "category", Value: filter.Category})
	}
	if filter.Audience != "" {
		filters = append(filters, docstore.Filter{Field: "audience", Value: string(filter.Audience)})
	}
	if filter.Status != "" {
		filters = append(filters, docstore.Filter{Field: "status", Value: string(filter.Status)})
	}
	return filters
}

// ListNotices returns notices matching the filter, newest first.
func (r *NoticeRepository) ListNotices(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, error) {
	docs, err := r.store.Query(ctx, NoticesCollection, noticeFilters(filter))
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	notices := make([]models.Notice, 0, len(docs))
	for i := range docs {
		var n models.Notice
		if err := docstore.DataTo(&docs[i], &n); err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	sort.Slice(notices, func(i, j int) bool { return notices[i].CreatedAt.After(notices[j].CreatedAt) })
	return notices, nil
}

// FindNotice fetches a single notice by id.
func (r *NoticeRepository) FindNotice(ctx context.Context, id string) (*models.Notice, error) {
	doc, err := r.store.Get(ctx, NoticesCollection, id)
	if err != nil {
		return nil, err
	}
	var notice models.Notice
	if err := docstore.DataTo(doc, &notice); err != nil {
		return nil, err
	}
	return &notice, nil
}

// SaveNotice creates or replaces a notice, generating its id when missing.
func (r *NoticeRepository) SaveNotice(ctx context.Context, notice *models.Notice) error {
	if notice.ID == "" {
		notice.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if notice.CreatedAt.IsZero() {
		notice.CreatedAt = now
	}
	notice.UpdatedAt = now
	if err := r.store.Set(ctx, NoticesCollection, notice.ID, notice); err != nil {
		return fmt.Errorf("save notice %s: %w", notice.ID, err)
	}
	return nil
}

// DeleteNotice hard-deletes a notice.
func (r *NoticeRepository) DeleteNotice(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, NoticesCollection, id); err != nil {
		return fmt.Errorf("delete notice %s: %w", id, err)
	}
	return nil
}

// ListEvents returns events matching the filter, soonest first.
func (r *NoticeRepository) ListEvents(ctx context.Context, filter models.NoticeFilter) ([]models.Event, error) {
	docs, err := r.store.Query(ctx, EventsCollection, noticeFilters(filter))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events := make([]models.Event, 0, len(docs))
	for i := range docs {
		var e models.Event
		if err := docstore.DataTo(&docs[i], &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartsAt.Before(events[j].StartsAt) })
	return events, nil
}

// FindEvent fetches a single event by id.
func (r *NoticeRepository) FindEvent(ctx context.Context, id string) (*models.Event, error) {
	doc, err := r.store.Get(ctx, EventsCollection, id)
	if err != nil {
		return nil, err
	}
	var event models.Event
	if err := docstore.DataTo(doc, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// SaveEvent creates or replaces an event, generating its id when missing.
func (r *NoticeRepository) SaveEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	if err := r.store.Set(ctx, EventsCollection, event.ID, event); err != nil {
		return fmt.Errorf("save event %s: %w", event.ID, err)
	}
	return nil
}

// DeleteEvent hard-deletes an event.
func (r *NoticeRepository) DeleteEvent(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, EventsCollection, id); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}
