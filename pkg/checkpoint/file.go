package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	rgerrors "github.com/lxopi/repgo/pkg/common/errors"
	"github.com/lxopi/repgo/pkg/common/validation"
	"github.com/lxopi/repgo/pkg/metrics"
)

// FileStore persists checkpoints as small JSON files. Every save writes a
// primary and a backup file; loads fall back to the backup when the primary
// is missing or corrupt, so a crash mid-write never loses the checkpoint.
//
// The last-run timestamp and the per-key memory live in separate file
// pairs so neither save clobbers the other.
type FileStore struct {
	lastRunPath   string
	lastRunBackup string
	memoryPath    string
	memoryBackup  string
	registry      *metrics.Registry
	enabled       bool
}

// NewFileStore creates a FileStore rooted at path. Sibling file names are
// derived from it: "last_run.json" pairs with "last_run_bkp.json" for the
// timestamp and "last_run_memory.json"/"last_run_memory_bkp.json" for the
// per-key memory.
func NewFileStore(path string) (*FileStore, error) {
	return NewFileStoreWithMetrics(path, metrics.Config{})
}

// NewFileStoreWithMetrics creates a FileStore with Prometheus instrumentation.
func NewFileStoreWithMetrics(path string, metricsConfig metrics.Config) (*FileStore, error) {
	if err := validation.ValidateNotEmpty("checkpoint", "path", path); err != nil {
		return nil, err
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	memoryPath := derivePath(path, "_memory")
	return &FileStore{
		lastRunPath:   path,
		lastRunBackup: derivePath(path, "_bkp"),
		memoryPath:    memoryPath,
		memoryBackup:  derivePath(memoryPath, "_bkp"),
		registry:      registry,
		enabled:       metricsConfig.Enabled,
	}, nil
}

// derivePath inserts a suffix before the extension: ("a.json", "_bkp")
// becomes "a_bkp.json".
func derivePath(path, suffix string) string {
	if i := strings.LastIndex(path, "."); i > 0 {
		return path[:i] + suffix + path[i:]
	}
	return path + suffix
}

// LastRun loads the stored timestamp, falling back to the backup file and
// finally to the current time. Missing and corrupt files default; read
// failures such as permission errors surface.
func (fs *FileStore) LastRun(ctx context.Context) (time.Time, error) {
	fs.count(fs.registry.CheckpointLoads)

	var raw string
	if err := load(fs.lastRunPath, fs.lastRunBackup, &raw); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Now(), nil
		}
		fs.count(fs.registry.CheckpointErrors)
		return time.Time{}, rgerrors.NewOperationError("checkpoint", "load", err).
			WithContext("path: " + fs.lastRunPath)
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Now(), nil
	}
	return t, nil
}

// SetLastRun stores t in both the primary and backup files.
func (fs *FileStore) SetLastRun(ctx context.Context, t time.Time) error {
	if t.IsZero() {
		t = time.Now()
	}
	return fs.save(fs.lastRunPath, fs.lastRunBackup, t.Format(time.RFC3339Nano))
}

// Memory loads the stored per-key timestamps, falling back to the backup
// file and finally to an empty map.
func (fs *FileStore) Memory(ctx context.Context) (map[int]time.Time, error) {
	fs.count(fs.registry.CheckpointLoads)

	var raw map[string]string
	if err := load(fs.memoryPath, fs.memoryBackup, &raw); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[int]time.Time{}, nil
		}
		fs.count(fs.registry.CheckpointErrors)
		return nil, rgerrors.NewOperationError("checkpoint", "load", err).
			WithContext("path: " + fs.memoryPath)
	}

	memory := make(map[int]time.Time, len(raw))
	for k, v := range raw {
		key, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			continue
		}
		memory[key] = t
	}
	return memory, nil
}

// SetMemory stores the per-key timestamps in both files.
func (fs *FileStore) SetMemory(ctx context.Context, memory map[int]time.Time) error {
	raw := make(map[string]string, len(memory))
	for k, v := range memory {
		raw[strconv.Itoa(k)] = v.Format(time.RFC3339Nano)
	}
	return fs.save(fs.memoryPath, fs.memoryBackup, raw)
}

// load unmarshals the primary file into v, trying the backup when the
// primary is missing or corrupt. When both are, it reports os.ErrNotExist;
// any other read failure is returned as is.
func load(path, backup string, v interface{}) error {
	err := readJSON(path, v)
	if err == nil {
		return nil
	}
	if !recoverable(err) {
		return err
	}

	err = readJSON(backup, v)
	if err == nil {
		return nil
	}
	if !recoverable(err) {
		return err
	}
	return os.ErrNotExist
}

// recoverable reports whether a read failure may fall back to the backup
// file or the default value: the file is missing or holds invalid JSON.
func recoverable(err error) bool {
	if errors.Is(err, os.ErrNotExist) {
		return true
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (fs *FileStore) save(path, backup string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		fs.count(fs.registry.CheckpointErrors)
		return rgerrors.NewOperationError("checkpoint", "save", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		fs.count(fs.registry.CheckpointErrors)
		return rgerrors.NewOperationError("checkpoint", "save", err).
			WithContext("path: " + path)
	}
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		fs.count(fs.registry.CheckpointErrors)
		return rgerrors.NewOperationError("checkpoint", "save", err).
			WithContext("path: " + backup)
	}

	fs.count(fs.registry.CheckpointSaves)
	return nil
}

func (fs *FileStore) count(vec *prometheus.CounterVec) {
	if fs.enabled {
		vec.WithLabelValues("file").Inc()
	}
}
