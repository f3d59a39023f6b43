package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestOpenRunFiles(t *testing.T) {
	dir := t.TempDir()

	rf, err := OpenRunFiles(FileOptions{Dir: dir, Version: "1.2.0"})
	require.NoError(t, err)
	defer rf.Close()

	pid := fmt.Sprintf("%05d", os.Getpid())
	assert.Equal(t, filepath.Join(dir, "applicationlog_000_1.2.0_"+pid+".txt"), rf.AppPath)
	assert.Equal(t, filepath.Join(dir, "errorlog_000_1.2.0_"+pid+".txt"), rf.ErrorPath)

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	rf.Attach(logger)

	logger.Info("starting")
	logger.Error("broken")

	app, err := os.ReadFile(rf.AppPath)
	require.NoError(t, err)
	assert.Contains(t, string(app), "starting")
	assert.Contains(t, string(app), "broken")

	errLog, err := os.ReadFile(rf.ErrorPath)
	require.NoError(t, err)
	assert.NotContains(t, string(errLog), "starting")
	assert.Contains(t, string(errLog), "broken")
}

func TestOpenRunFilesSequence(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, filepath.Join(dir, "applicationlog_004_dev_00001.txt"), now)
	touch(t, filepath.Join(dir, "applicationlog_011_dev_00002.txt"), now)

	rf, err := OpenRunFiles(FileOptions{Dir: dir})
	require.NoError(t, err)
	defer rf.Close()

	assert.True(t, strings.HasPrefix(filepath.Base(rf.AppPath), "applicationlog_012_dev_"))
}

func TestOpenRunFilesErrors(t *testing.T) {
	_, err := OpenRunFiles(FileOptions{})
	assert.Error(t, err)

	_, err = OpenRunFiles(FileOptions{Dir: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = OpenRunFiles(FileOptions{Dir: file})
	assert.Error(t, err)
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	touch(t, filepath.Join(dir, "errorlog_000_dev_00001.txt"), now.AddDate(0, 0, -40))
	touch(t, filepath.Join(dir, "errorlog_001_dev_00001.txt"), now.Add(-3*time.Hour))
	touch(t, filepath.Join(dir, "errorlog_002_dev_00001.txt"), now.Add(-2*time.Hour))
	touch(t, filepath.Join(dir, "errorlog_003_dev_00001.txt"), now.Add(-1*time.Hour))
	touch(t, filepath.Join(dir, "applicationlog_000_dev_00001.txt"), now.AddDate(0, 0, -40))
	touch(t, filepath.Join(dir, "unrelated.txt"), now.AddDate(0, 0, -40))

	require.NoError(t, Prune(dir, ErrorLogPrefix, now.AddDate(0, 0, -30), 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}

	assert.ElementsMatch(t, []string{
		"errorlog_002_dev_00001.txt",
		"errorlog_003_dev_00001.txt",
		"applicationlog_000_dev_00001.txt",
		"unrelated.txt",
	}, names)
}

func TestErrorHookLevels(t *testing.T) {
	var sb strings.Builder
	hook := errorHook(&sb)

	assert.ElementsMatch(t, []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}, hook.Levels())

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(hook)

	logger.WithField("server", "a").Info("accepted")
	logger.WithField("server", "b").Warn("no response")
	logger.WithField("server", "c").Error("rejected by every server")

	assert.Contains(t, sb.String(), "server=c")
	assert.NotContains(t, sb.String(), "server=a")
	assert.NotContains(t, sb.String(), "server=b")
	assert.Equal(t, 1, strings.Count(sb.String(), "\n"))
}
