package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lxopi/repgo/internal/testutil"
	rgerrors "github.com/lxopi/repgo/pkg/common/errors"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	testutil.AssertNoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const yamlConfig = `
dispatch:
  concurrency: 8
  max_retries: 3
  attempt_timeout: 30s
  backoff_initial: 500ms
  backoff_max: 10s
  name: importer
http:
  max_retries: 2
  timeout: 10s
  user_agent: repgo-test
  headers:
    X-Env: test
logging:
  level: debug
`

func TestLoadYAML(t *testing.T) {
	file, err := LoadFile(writeTemp(t, "config.yaml", yamlConfig))
	testutil.AssertNoError(t, err)

	cfg, err := file.ToDispatch()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.Concurrency, 8)
	testutil.AssertEqual(t, cfg.MaxRetries, 3)
	testutil.AssertEqual(t, cfg.AttemptTimeout, 30*time.Second)
	testutil.AssertEqual(t, cfg.Name, "importer")
	if cfg.Backoff == nil {
		t.Fatal("backoff should be configured")
	}
	testutil.AssertEqual(t, cfg.Backoff(1), 500*time.Millisecond)
	testutil.AssertEqual(t, cfg.Backoff(2), time.Second)
	testutil.AssertEqual(t, cfg.Backoff(20), 10*time.Second)

	httpCfg, err := file.ToHTTPClient()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, httpCfg.MaxRetries, 2)
	testutil.AssertEqual(t, httpCfg.Timeout, 10*time.Second)
	testutil.AssertEqual(t, httpCfg.UserAgent, "repgo-test")
	testutil.AssertEqual(t, httpCfg.Headers["X-Env"], "test")
	if httpCfg.Backoff != nil {
		t.Error("http backoff was not configured, expected nil")
	}

	logCfg := file.ToLogging()
	testutil.AssertEqual(t, logCfg.Level, "debug")
}

func TestLoadJSON(t *testing.T) {
	file, err := LoadFile(writeTemp(t, "config.json", `{
		"dispatch": {"concurrency": 4, "backoff_initial": "1s"}
	}`))
	testutil.AssertNoError(t, err)

	cfg, err := file.ToDispatch()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.Concurrency, 4)
	testutil.AssertEqual(t, cfg.Backoff(5), time.Second) // constant without a max
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	testutil.AssertError(t, err)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := LoadFile(writeTemp(t, "config.toml", "x = 1"))
	testutil.AssertError(t, err)
	if !rgerrors.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := LoadFile(writeTemp(t, "config.yaml", "dispatch: ["))
	testutil.AssertError(t, err)
}

func TestInvalidDuration(t *testing.T) {
	file, err := LoadFile(writeTemp(t, "config.yaml", "dispatch:\n  attempt_timeout: soon\n"))
	testutil.AssertNoError(t, err)

	_, err = file.ToDispatch()
	testutil.AssertError(t, err)
	if !rgerrors.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestEmptySectionsUseZeroValues(t *testing.T) {
	file, err := LoadFile(writeTemp(t, "config.yaml", "{}\n"))
	testutil.AssertNoError(t, err)

	cfg, err := file.ToDispatch()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.Concurrency, 0) // caller validates via dispatch.New
	if cfg.Backoff != nil {
		t.Error("no backoff configured, expected nil")
	}
}
