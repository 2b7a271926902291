// Package backup writes periodic snapshots of every profile to disk.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/export"
	"github.com/existflow/semplan/internal/store"
)

const (
	filePrefix = "semplan-backup-"
	fileSuffix = ".json"
	timeLayout = "20060102T150405"
)

// Scheduler snapshots the store on a cron schedule
type Scheduler struct {
	store *store.Store
	dir   string
	keep  int
	log   *zap.Logger
	now   func() time.Time
	cron  *cron.Cron
}

// NewScheduler creates a scheduler writing into dir and keeping the newest
// keep snapshots
func NewScheduler(st *store.Store, dir string, keep int, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		store: st,
		dir:   dir,
		keep:  keep,
		log:   log,
		now:   time.Now,
	}
}

// Start runs snapshots on spec, a standard five-field cron expression
func (s *Scheduler) Start(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.Snapshot(ctx); err != nil {
			s.log.Error("Scheduled backup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	s.cron = c
	c.Start()
	s.log.Info("Backup schedule started", zap.String("spec", spec), zap.String("dir", s.dir))
	return nil
}

// Stop stops the schedule and waits for a running snapshot
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Snapshot writes one backup file and prunes old ones
func (s *Scheduler) Snapshot(ctx context.Context) (string, error) {
	b, err := s.store.Backup(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to collect backup: %w", err)
	}
	data, err := export.EncodeBackup(b)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	path := filepath.Join(s.dir, filePrefix+s.now().Format(timeLayout)+fileSuffix)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	s.log.Info("Backup written", zap.String("path", path), zap.Int("profiles", len(b.Profiles)))

	if err := s.prune(); err != nil {
		s.log.Warn("Failed to prune backups", zap.Error(err))
	}
	return path, nil
}

func (s *Scheduler) prune() error {
	files, err := List(s.dir)
	if err != nil || s.keep <= 0 || len(files) <= s.keep {
		return err
	}
	for _, f := range files[:len(files)-s.keep] {
		if err := os.Remove(f); err != nil {
			return err
		}
	}
	return nil
}

// List returns the snapshot files in dir, oldest first
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}
