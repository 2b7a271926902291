package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// rotatingFile is a zapcore.WriteSyncer that rotates by size and age
type rotatingFile struct {
	config Config
	mu     sync.Mutex
	file   *os.File
	size   int64
	opened time.Time
}

func openRotating(config Config) (*rotatingFile, error) {
	logDir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	r := &rotatingFile{config: config}
	if err := r.open(); err != nil {
		return nil, err
	}
	if r.needsRotation() {
		if err := r.rotate(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *rotatingFile) open() error {
	file, err := os.OpenFile(r.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	r.file = file
	r.size = info.Size()
	r.opened = info.ModTime()
	return nil
}

func (r *rotatingFile) needsRotation() bool {
	if r.config.MaxSize > 0 && r.size >= r.config.MaxSize {
		return true
	}
	if r.config.MaxAge > 0 && r.size > 0 && time.Since(r.opened) > time.Duration(r.config.MaxAge)*24*time.Hour {
		return true
	}
	return false
}

// rotate shifts log.N to log.N+1, moves the current log to .1 and reopens
func (r *rotatingFile) rotate() error {
	if r.file != nil {
		r.file.Close()
	}

	for i := r.config.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.config.FilePath, i)
		newPath := fmt.Sprintf("%s.%d", r.config.FilePath, i+1)
		os.Rename(oldPath, newPath)
	}

	if _, err := os.Stat(r.config.FilePath); err == nil {
		if err := os.Rename(r.config.FilePath, r.config.FilePath+".1"); err != nil {
			return err
		}
	}

	if err := r.open(); err != nil {
		return err
	}
	r.opened = time.Now()
	return nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.needsRotation() {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rotatingFile) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Sync()
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}
