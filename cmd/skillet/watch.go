package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/skilletlabs/skillet/pkg/lint"
	"github.com/skilletlabs/skillet/pkg/logger"
	"github.com/skilletlabs/skillet/pkg/presenter"
	"github.com/skilletlabs/skillet/pkg/skill"
)

// WatchConfig holds configuration for the watch command
type WatchConfig struct {
	IgnoreDirs   []string
	DebounceTime int
	Strict       bool
}

// NewWatchConfig creates a new WatchConfig with default values
func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		IgnoreDirs:   []string{".git", "node_modules"},
		DebounceTime: 500,
	}
}

// Validate validates the WatchConfig and returns an error if invalid
func (c *WatchConfig) Validate() error {
	if c.DebounceTime < 0 {
		return fmt.Errorf("debounce time cannot be negative: %d", c.DebounceTime)
	}
	return nil
}

// FileEvent represents a file system event with additional metadata
type FileEvent struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-lint skill documents on change",
	Long: `Continuously watch a directory tree and re-lint any SKILL.md that is
created or modified. Useful while authoring skills.

Examples:
  skillet watch                             # Watch the current directory
  skillet watch ./skills                    # Watch a specific directory
  skillet watch --strict                    # Report warnings as failures
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		config := getWatchConfigFromFlags(cmd)
		if err := config.Validate(); err != nil {
			return err
		}

		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			presenter.Warning("\nCancellation requested, shutting down...")
			cancel()
		}()

		return runWatchMode(ctx, root, config)
	},
}

func init() {
	defaults := NewWatchConfig()
	watchCmd.Flags().StringSliceP("ignore", "i", defaults.IgnoreDirs, "Directories to ignore")
	watchCmd.Flags().IntP("debounce", "d", defaults.DebounceTime, "Debounce time in milliseconds for file change events")
	watchCmd.Flags().Bool("strict", defaults.Strict, "Report warnings as failures")
}

// getWatchConfigFromFlags extracts watch configuration from command flags
func getWatchConfigFromFlags(cmd *cobra.Command) *WatchConfig {
	config := NewWatchConfig()

	if ignoreDirs, err := cmd.Flags().GetStringSlice("ignore"); err == nil {
		config.IgnoreDirs = ignoreDirs
	}
	if debounceTime, err := cmd.Flags().GetInt("debounce"); err == nil {
		config.DebounceTime = debounceTime
	}
	if strict, err := cmd.Flags().GetBool("strict"); err == nil {
		config.Strict = strict
	}

	return config
}

func runWatchMode(ctx context.Context, root string, config *WatchConfig) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		presenter.Error(err, "Failed to create file watcher")
		return err
	}
	defer watcher.Close()

	events := make(chan FileEvent)
	debouncedEvents := make(chan FileEvent)

	go debounceFileEvents(ctx, events, debouncedEvents, time.Duration(config.DebounceTime)*time.Millisecond)

	// Lint debounced changes
	go func() {
		for {
			select {
			case event, ok := <-debouncedEvents:
				if !ok {
					return
				}
				lintChangedFile(ctx, event.Path, config)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Translate watcher events, keeping only SKILL.md writes
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if shouldIgnore(event.Name, config.IgnoreDirs) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Base(event.Name) != skill.FileName {
					continue
				}
				events <- FileEvent{
					Path: event.Name,
					Op:   event.Op,
					Time: time.Now(),
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				presenter.Error(err, "File watcher error")
				logger.G(ctx).WithError(err).Error("Error watching files")
			case <-ctx.Done():
				return
			}
		}
	}()

	// Watch the whole tree so new skill directories are picked up
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if shouldIgnore(path, config.IgnoreDirs) {
				return filepath.SkipDir
			}
			logger.G(ctx).WithField("directory", path).Debug("Adding directory to watcher")
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		presenter.Error(err, "Failed to watch directories")
		return err
	}

	presenter.Info("Watching for SKILL.md changes... Press Ctrl+C to stop")

	<-ctx.Done()
	return nil
}

func shouldIgnore(path string, ignoreDirs []string) bool {
	for _, dir := range ignoreDirs {
		if path == dir || strings.Contains(path, dir+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func lintChangedFile(ctx context.Context, path string, config *WatchConfig) {
	presenter.Info(fmt.Sprintf("Change detected: %s", path))

	report, err := lint.NewRunner().Run(ctx, []string{path})
	if err != nil {
		presenter.Error(err, "Lint run failed")
		return
	}

	if err := report.WriteText(os.Stdout); err != nil {
		logger.G(ctx).WithError(err).Error("failed to write lint report")
		return
	}
	if report.Failed(config.Strict) {
		presenter.Warning(fmt.Sprintf("%s has problems", path))
	} else {
		presenter.Success(fmt.Sprintf("%s is valid", path))
	}
}

// debounceFileEvents collapses rapid successive events for the same file
// into one.
func debounceFileEvents(ctx context.Context, input <-chan FileEvent, output chan<- FileEvent, delay time.Duration) {
	pending := make(map[string]*time.Timer)

	for {
		select {
		case event, ok := <-input:
			if !ok {
				for _, timer := range pending {
					timer.Stop()
				}
				return
			}
			if timer, exists := pending[event.Path]; exists {
				timer.Stop()
				delete(pending, event.Path)
			}

			eventCopy := event
			pending[event.Path] = time.AfterFunc(delay, func() {
				select {
				case output <- eventCopy:
				case <-ctx.Done():
				}
			})
		case <-ctx.Done():
			for _, timer := range pending {
				timer.Stop()
			}
			return
		}
	}
}
