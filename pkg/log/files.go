package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
)

const (
	ApplicationLogPrefix = "applicationlog"
	ErrorLogPrefix       = "errorlog"

	DefaultRetentionDays = 30
	DefaultMaxFiles      = 30

	maxSequence = 1000
)

// FileOptions controls where run log files are created and how many are kept.
type FileOptions struct {
	Dir           string
	Version       string
	RetentionDays int
	MaxFiles      int
}

// RunFiles holds the application and error log files opened for one process run.
type RunFiles struct {
	AppPath   string
	ErrorPath string

	app *os.File
	err *os.File
}

// OpenRunFiles prunes old run logs in opts.Dir and opens a fresh pair for this process.
func OpenRunFiles(opts FileOptions) (*RunFiles, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("log directory not set")
	}

	info, err := os.Stat(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("log directory %s: %w", opts.Dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("log directory %s is not a directory", opts.Dir)
	}

	retention := opts.RetentionDays
	if retention <= 0 {
		retention = DefaultRetentionDays
	}
	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}

	now := time.Now()
	for _, prefix := range []string{ApplicationLogPrefix, ErrorLogPrefix} {
		// keep room for the file about to be created
		if err := Prune(opts.Dir, prefix, now.AddDate(0, 0, -retention), maxFiles-1); err != nil {
			return nil, err
		}
	}

	seq, err := nextSequence(opts.Dir)
	if err != nil {
		return nil, err
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}

	rf := &RunFiles{
		AppPath:   filepath.Join(opts.Dir, runFileName(ApplicationLogPrefix, seq, version, os.Getpid())),
		ErrorPath: filepath.Join(opts.Dir, runFileName(ErrorLogPrefix, seq, version, os.Getpid())),
	}

	if rf.app, err = os.OpenFile(rf.AppPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640); err != nil {
		return nil, fmt.Errorf("failed to open application log: %w", err)
	}
	if rf.err, err = os.OpenFile(rf.ErrorPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640); err != nil {
		_ = rf.app.Close()
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}

	return rf, nil
}

// Attach routes every entry of logger to the application log and error-level entries to the error log.
func (rf *RunFiles) Attach(logger *logrus.Logger) {
	logger.SetOutput(rf.app)
	logger.AddHook(errorHook(rf.err))
}

// errorHook copies error-and-above entries to w.
func errorHook(w io.Writer) *writer.Hook {
	return &writer.Hook{
		Writer:    w,
		LogLevels: []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel},
	}
}

// ErrorWriter returns the error log for raw writes such as panic stacks.
func (rf *RunFiles) ErrorWriter() io.Writer {
	return rf.err
}

// Close closes both files.
func (rf *RunFiles) Close() error {
	appErr := rf.app.Close()
	errErr := rf.err.Close()
	if appErr != nil {
		return appErr
	}
	return errErr
}

// Prune deletes prefix run logs modified before cutoff, then the oldest ones beyond keep.
func Prune(dir, prefix string, cutoff time.Time, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list log directory: %w", err)
	}

	type runLog struct {
		path    string
		modTime time.Time
	}

	var kept []runLog
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix+"_") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
			continue
		}

		kept = append(kept, runLog{path: path, modTime: info.ModTime()})
	}

	if keep < 0 {
		keep = 0
	}
	if len(kept) <= keep {
		return nil
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].modTime.Before(kept[j].modTime)
	})

	for _, rl := range kept[:len(kept)-keep] {
		if err := os.Remove(rl.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", rl.path, err)
		}
	}

	return nil
}

func runFileName(prefix string, seq int, version string, pid int) string {
	return fmt.Sprintf("%s_%03d_%s_%05d.txt", prefix, seq, version, pid)
}

// nextSequence returns one past the highest sequence number used by an application log in dir.
func nextSequence(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list log directory: %w", err)
	}

	highest := -1
	for _, entry := range entries {
		parts := strings.SplitN(entry.Name(), "_", 3)
		if len(parts) < 3 || parts[0] != ApplicationLogPrefix {
			continue
		}
		if seq, err := strconv.Atoi(parts[1]); err == nil && seq > highest {
			highest = seq
		}
	}

	return (highest + 1) % maxSequence, nil
}
