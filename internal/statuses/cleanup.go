// Package statuses runs the background sweep that removes expired statuses.
package statuses

import (
	"context"
	"sync"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/metrics"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sweepBatch bounds how many statuses one pass loads at a time
const sweepBatch = 200

// CleanupService periodically deletes expired statuses and their media
type CleanupService struct {
	db          *gorm.DB
	fileDeleter storage.FileDeleter
	interval    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SweepResult summarises one pass
type SweepResult struct {
	Deleted      int
	MediaDeleted int
	Errors       int
}

// NewCleanupService creates a status sweeper. fileDeleter may be nil, in
// which case only database rows are removed.
func NewCleanupService(db *gorm.DB, fileDeleter storage.FileDeleter, interval time.Duration) *CleanupService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CleanupService{
		db:          db,
		fileDeleter: fileDeleter,
		interval:    interval,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start sweeps once immediately, then on every interval
func (s *CleanupService) Start() {
	logger.Log.Info("Starting status cleanup service", zap.Duration("interval", s.interval))
	s.wg.Add(1)
	go s.run()
}

// Stop stops the sweeper and waits for an in-flight pass
func (s *CleanupService) Stop() {
	logger.Log.Info("Stopping status cleanup service")
	s.cancel()
	s.wg.Wait()
}

func (s *CleanupService) run() {
	defer s.wg.Done()

	s.Sweep(s.ctx, time.Now().UTC())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(s.ctx, time.Now().UTC())
		case <-s.ctx.Done():
			return
		}
	}
}

// Sweep deletes every status that expired before now
func (s *CleanupService) Sweep(ctx context.Context, now time.Time) SweepResult {
	startTime := time.Now()
	var result SweepResult

	for ctx.Err() == nil {
		var expired []models.Status
		err := s.db.WithContext(ctx).
			Where("expires_at < ?", now).
			Order("expires_at ASC").
			Limit(sweepBatch).
			Find(&expired).Error
		if err != nil {
			logger.Log.Error("Failed to query expired statuses", zap.Error(err))
			result.Errors++
			break
		}
		if len(expired) == 0 {
			break
		}

		deletedThisBatch := 0
		for i := range expired {
			status := &expired[i]
			result.MediaDeleted += s.deleteMedia(ctx, status)

			if err := s.db.WithContext(ctx).Delete(status).Error; err != nil {
				logger.Log.Error("Failed to delete status", zap.String("status_id", status.ID), zap.Error(err))
				result.Errors++
				continue
			}
			deletedThisBatch++
		}
		result.Deleted += deletedThisBatch

		// Every row failed; another pass would loop on the same rows
		if deletedThisBatch == 0 || len(expired) < sweepBatch {
			break
		}
	}

	if result.Deleted > 0 || result.Errors > 0 {
		metrics.RecordStatusesExpired(result.Deleted)
		logger.Log.Info("Status cleanup completed",
			zap.Int("deleted", result.Deleted),
			zap.Int("media_deleted", result.MediaDeleted),
			zap.Int("errors", result.Errors),
			logger.WithDuration(time.Since(startTime)),
		)
	}
	return result
}

// deleteMedia removes uploaded files; failures are logged and the row is
// deleted anyway
func (s *CleanupService) deleteMedia(ctx context.Context, status *models.Status) int {
	if s.fileDeleter == nil {
		return 0
	}

	deleted := 0
	for _, url := range status.MediaURLs() {
		deleteCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := s.fileDeleter.DeleteByURL(deleteCtx, url)
		cancel()

		if err != nil {
			logger.Log.Warn("Failed to delete status media",
				zap.String("status_id", status.ID),
				zap.String("url", url),
				zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted
}
