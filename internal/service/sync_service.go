package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/repository"
	"github.com/pudocs/dept-portal-api/pkg/config"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

// EntityFetcher loads one entity list for the cache warm-up. Fetchers that
// do not apply to the user's role return (nil, nil) and are skipped.
type EntityFetcher struct {
	Name  string
	Fetch func(ctx context.Context, user models.UserInfo) (interface{}, error)
}

// SyncService warms the local tier after login and refreshes it on a
// schedule. Concurrent triggers for the same user collapse into one run, and
// in-flight runs are cancellable on logout or shutdown.
type SyncService struct {
	fetchers []EntityFetcher
	cache    cacheStore
	cfg      config.SyncConfig
	logger   *zap.Logger
	metrics  *MetricsService

	group singleflight.Group

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	recent  map[string]models.UserInfo

	cron *cron.Cron
}

// NewSyncService constructs the sync service.
func NewSyncService(fetchers []EntityFetcher, cache cacheStore, cfg config.SyncConfig, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 2 * time.Minute
	}
	return &SyncService{
		fetchers: fetchers,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
		cancels:  make(map[string]context.CancelFunc),
		recent:   make(map[string]models.UserInfo),
	}
}

// WithMetrics attaches run instrumentation.
func (s *SyncService) WithMetrics(metrics *MetricsService) *SyncService {
	s.metrics = metrics
	return s
}

// Trigger starts a warm-up for a user and returns a channel that delivers the
// run's result. A second trigger while a run is in flight joins the existing
// run instead of starting another.
func (s *SyncService) Trigger(user models.UserInfo) <-chan models.SyncResult {
	out := make(chan models.SyncResult, 1)
	ch := s.group.DoChan(user.UID, func() (interface{}, error) {
		return s.run(user), nil
	})
	go func() {
		res := <-ch
		if res.Err != nil {
			out <- models.SyncResult{UID: user.UID, Role: user.Role, Err: res.Err, ErrMessage: res.Err.Error()}
			return
		}
		out <- res.Val.(models.SyncResult)
	}()
	return out
}

// TriggerAndWait runs a warm-up synchronously.
func (s *SyncService) TriggerAndWait(ctx context.Context, user models.UserInfo) (models.SyncResult, error) {
	select {
	case result := <-s.Trigger(user):
		if result.Err != nil {
			return result, result.Err
		}
		return result, nil
	case <-ctx.Done():
		return models.SyncResult{UID: user.UID, Role: user.Role}, ctx.Err()
	}
}

// Cancel aborts the in-flight run for a user, if any.
func (s *SyncService) Cancel(uid string) {
	s.mu.Lock()
	cancel, ok := s.cancels[uid]
	delete(s.recent, uid)
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

// Shutdown stops the refresh schedule and aborts every in-flight run.
func (s *SyncService) Shutdown() {
	s.mu.Lock()
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
	cancels := make([]context.CancelFunc, 0, len(s.cancels))
	for _, cancel := range s.cancels {
		cancels = append(cancels, cancel)
	}
	s.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// StartScheduler begins the periodic refresh of recently synced users. It is
// a no-op when no schedule is configured.
func (s *SyncService) StartScheduler() error {
	if s.cfg.RefreshSchedule == "" {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(s.cfg.RefreshSchedule, s.refreshRecent)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	c.Start()
	s.logger.Info("sync refresh scheduled", zap.String("schedule", s.cfg.RefreshSchedule))
	return nil
}

// Status returns the last-known sync state for a user.
func (s *SyncService) Status(ctx context.Context, uid string) (*models.SyncStatus, error) {
	var status models.SyncStatus
	if err := s.cache.Get(ctx, repository.SyncStatusKey(uid), &status); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return &models.SyncStatus{UID: uid}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sync status")
	}
	return &status, nil
}

func (s *SyncService) refreshRecent() {
	s.mu.Lock()
	users := make([]models.UserInfo, 0, len(s.recent))
	for _, user := range s.recent {
		users = append(users, user)
	}
	s.mu.Unlock()

	for _, user := range users {
		<-s.Trigger(user)
	}
}

func (s *SyncService) run(user models.UserInfo) models.SyncResult {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	s.mu.Lock()
	s.cancels[user.UID] = cancel
	s.recent[user.UID] = user
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.cancels, user.UID)
		s.mu.Unlock()
	}()

	started := time.Now().UTC()
	result := models.SyncResult{UID: user.UID, Role: user.Role, StartedAt: started}

	if err := s.cache.PatchFields(ctx, repository.SyncStatusKey(user.UID), map[string]interface{}{
		"uid":     user.UID,
		"running": true,
	}); err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Debug("failed to mark sync running", zap.String("uid", user.UID), zap.Error(err))
	}

	for _, fetcher := range s.fetchers {
		if ctx.Err() != nil {
			result.Err = ctx.Err()
			break
		}
		data, err := fetcher.Fetch(ctx, user)
		if err != nil {
			s.logger.Warn("entity fetch failed during sync",
				zap.String("uid", user.UID),
				zap.String("entity", fetcher.Name),
				zap.Error(err))
			result.Err = err
			continue
		}
		if data == nil {
			continue
		}
		key := repository.EntityListKey(user.UID, fetcher.Name)
		if err := s.cache.Set(ctx, key, data); err != nil {
			s.logger.Warn("failed to cache entity list",
				zap.String("uid", user.UID),
				zap.String("entity", fetcher.Name),
				zap.Error(err))
			result.Err = err
			continue
		}
		result.Entities = append(result.Entities, fetcher.Name)
		result.Warmed++
	}

	result.Duration = time.Since(started)
	if result.Err != nil {
		result.ErrMessage = result.Err.Error()
	}
	s.metrics.ObserveSyncRun(result.Err != nil, result.Duration)

	status := models.SyncStatus{
		UID:        user.UID,
		Running:    false,
		LastRunAt:  started,
		LastError:  result.ErrMessage,
		LastWarmed: result.Warmed,
	}
	statusCtx, statusCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer statusCancel()
	if err := s.cache.Set(statusCtx, repository.SyncStatusKey(user.UID), status); err != nil {
		s.logger.Warn("failed to store sync status", zap.String("uid", user.UID), zap.Error(err))
	}

	s.logger.Info("sync run finished",
		zap.String("uid", user.UID),
		zap.String("role", string(user.Role)),
		zap.Int("warmed", result.Warmed),
		zap.Duration("duration", result.Duration),
		zap.String("error", result.ErrMessage))
	return result
}
