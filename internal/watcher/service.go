package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Service reports changes to files with one of the watched extensions in a
// single directory.
type Service struct {
	dir        string
	extensions map[string]bool
	logger     *slog.Logger
	onChange   func(context.Context, string)
	watcher    *fsnotify.Watcher
}

func New(dir string, extensions []string, logger *slog.Logger, onChange func(context.Context, string)) (*Service, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("watch dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Service{
		dir:        dir,
		extensions: exts,
		logger:     logger.With("component", "template_watcher"),
		onChange:   onChange,
		watcher:    fileWatcher,
	}, nil
}

func (s *Service) Start(ctx context.Context) error {
	defer s.watcher.Close()

	if err := s.watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch path %s: %w", s.dir, err)
	}
	s.logger.Info("template watcher started", "dir", s.dir)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("template watcher stopped")
			return nil
		case event, ok := <-s.watcher.Events:
			if !ok {
				return nil
			}
			s.handleEvent(ctx, event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("file watcher error", "error", err)
		}
	}
}

func (s *Service) handleEvent(ctx context.Context, event fsnotify.Event) {
	if len(s.extensions) > 0 && !s.extensions[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	s.logger.Info("template changed", "path", event.Name, "op", event.Op.String())
	s.onChange(ctx, event.Name)
}
