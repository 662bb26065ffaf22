package media

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aagaur/studiocms/models"
	"github.com/aagaur/studiocms/utils"
)

const (
	sweepBatch      = 100
	maxSweepBackoff = 6 * time.Hour
)

// Sweeper persists assets whose delete failed and retries them periodically.
// Without a database it only logs them.
type Sweeper struct {
	db       *gorm.DB
	host     Host
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(db *gorm.DB, host Host, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{db: db, host: host, interval: interval, now: time.Now}
}

// RecordOrphan implements OrphanRecorder.
func (s *Sweeper) RecordOrphan(ctx context.Context, host string, a Asset, cause error) {
	if s.db == nil {
		utils.Logger.Warn("orphaned asset not persisted", zap.String("host", host), zap.String("publicId", a.PublicID), zap.String("url", a.URL))
		return
	}
	row := models.OrphanedAsset{
		Provider:      host,
		PublicID:      a.PublicID,
		URL:           a.URL,
		Kind:          a.Kind,
		LastError:     truncate(errString(cause), 1024),
		NextAttemptAt: s.now().Add(s.interval),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		utils.Logger.Error("record orphaned asset failed", zap.String("publicId", a.PublicID), zap.Error(err))
	}
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if s.db == nil {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				utils.Logger.Warn("orphan sweep failed", zap.Error(err))
			} else if n > 0 {
				utils.Logger.Info("orphan sweep removed assets", zap.Int("count", n))
			}
		}
	}
}

// SweepOnce retries due orphans for this host and returns how many were removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	var rows []models.OrphanedAsset
	err := s.db.WithContext(ctx).
		Where("provider = ? AND next_attempt_at <= ?", s.host.Name(), s.now()).
		Order("next_attempt_at").
		Limit(sweepBatch).
		Find(&rows).Error
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, row := range rows {
		derr := s.host.Delete(ctx, Asset{URL: row.URL, PublicID: row.PublicID, Kind: row.Kind})
		if derr == nil {
			if err := s.db.WithContext(ctx).Delete(&models.OrphanedAsset{}, row.ID).Error; err != nil {
				return removed, err
			}
			removed++
			continue
		}
		attempts := row.Attempts + 1
		wait := s.interval << uint(min(attempts, 10))
		if wait > maxSweepBackoff || wait <= 0 {
			wait = maxSweepBackoff
		}
		err := s.db.WithContext(ctx).Model(&models.OrphanedAsset{}).Where("id = ?", row.ID).Updates(map[string]interface{}{
			"attempts":        attempts,
			"last_error":      truncate(derr.Error(), 1024),
			"next_attempt_at": s.now().Add(wait),
		}).Error
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
