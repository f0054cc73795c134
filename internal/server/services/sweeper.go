package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/pixkeep/pixkeep/internal/logging"
	"github.com/pixkeep/pixkeep/internal/server/objectstore"
	"github.com/pixkeep/pixkeep/internal/server/repositories/repomanager"
)

// Sweeper reclaims orphaned objects: binary files whose metadata insert
// failed. It lists the object store and removes every object older than
// the grace window that has no matching metadata record. The grace window
// keeps it from racing an upload that is between the object write and the
// metadata insert.
type Sweeper struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	store    objectstore.Store
	logger   logging.Logger
	interval time.Duration
	grace    time.Duration
	now      func() time.Time
}

func NewSweeper(db *sql.DB, repos repomanager.RepositoryManager,
	store objectstore.Store, logger logging.Logger,
	interval, grace time.Duration) *Sweeper {
	return &Sweeper{
		db:       db,
		repos:    repos,
		store:    store,
		logger:   logger.With("module", "sweeper"),
		interval: interval,
		grace:    grace,
		now:      time.Now,
	}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "sweeper stopped")
			return
		case <-ticker.C:
			if err := s.sweepOnce(ctx); err != nil {
				s.logger.Error(ctx, "sweep failed", "error", err.Error())
			}
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) error {
	objects, err := s.store.List(ctx, "")
	if err != nil {
		return err
	}

	repo := s.repos.Images(s.db)
	removed := 0

	for _, obj := range objects {
		if s.now().Sub(obj.LastModified) < s.grace {
			continue
		}
		exists, err := repo.ExistsByStorageKey(ctx, obj.Key)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := s.store.Remove(ctx, obj.Key); err != nil {
			s.logger.Warn(ctx, "orphan removal failed", "key", obj.Key, "error", err.Error())
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info(ctx, "orphans removed", "count", removed)
	}
	return nil
}
