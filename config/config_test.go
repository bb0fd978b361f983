package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, file string, values map[string]interface{}) (Config, error) {
	t.Helper()
	v, err := New(file)
	require.NoError(t, err)
	for k, val := range values {
		v.Set(k, val)
	}
	return Load(v)
}

func TestDefaults(t *testing.T) {
	cfg, err := load(t, "", map[string]interface{}{
		"host":       "127.0.0.1",
		"start_port": 1,
		"end_port":   100,
	})
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 2*time.Second, cfg.GrabTimeout)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, []byte("WhoAreYou\r\n"), cfg.Payload())
	assert.Equal(t, 100, cfg.BannerSize)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, "xlsx", cfg.OutputFormat())
	assert.Equal(t, "port_scan.log", cfg.LogFile)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
connect_timeout: 250ms
grab_timeout: 3s
workers: 16
probe_payload: "HELP\r\n"
output: results.csv
log_format: json
`), 0o600))

	cfg, err := load(t, path, map[string]interface{}{
		"host":       "example.com",
		"start_port": 20,
		"end_port":   25,
	})
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.ConnectTimeout)
	assert.Equal(t, 3*time.Second, cfg.GrabTimeout)
	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, []byte("HELP\r\n"), cfg.Payload())
	assert.Equal(t, "csv", cfg.OutputFormat())
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("PORTSCAN_WORKERS", "4")
	t.Setenv("PORTSCAN_GRAB_TIMEOUT", "5s")

	cfg, err := load(t, "", map[string]interface{}{
		"host":       "127.0.0.1",
		"start_port": 1,
		"end_port":   1,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 5*time.Second, cfg.GrabTimeout)
}

func TestValidation(t *testing.T) {
	valid := map[string]interface{}{
		"host":       "127.0.0.1",
		"start_port": 1,
		"end_port":   100,
	}

	tests := []struct {
		name     string
		override map[string]interface{}
	}{
		{"missing host", map[string]interface{}{"host": ""}},
		{"start after end", map[string]interface{}{"start_port": 200}},
		{"negative port", map[string]interface{}{"start_port": -1}},
		{"port too large", map[string]interface{}{"end_port": 65536}},
		{"zero workers", map[string]interface{}{"workers": 0}},
		{"zero timeout", map[string]interface{}{"connect_timeout": "0s"}},
		{"zero banner size", map[string]interface{}{"banner_size": 0}},
		{"bad format", map[string]interface{}{"format": "pdf"}},
		{"bad log format", map[string]interface{}{"log_format": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := map[string]interface{}{}
			for k, v := range valid {
				values[k] = v
			}
			for k, v := range tt.override {
				values[k] = v
			}
			_, err := load(t, "", values)
			assert.Error(t, err)
		})
	}
}

func TestFullRangeIsValid(t *testing.T) {
	_, err := load(t, "", map[string]interface{}{
		"host":       "127.0.0.1",
		"start_port": 0,
		"end_port":   65535,
	})
	assert.NoError(t, err)
}

func TestPayloadEscapes(t *testing.T) {
	assert.Equal(t, []byte("HELO x\r\n"), Config{ProbePayload: `HELO x\r\n`}.Payload())
	assert.Equal(t, []byte("raw\r\n"), Config{ProbePayload: "raw\r\n"}.Payload())
	assert.Equal(t, []byte(`say "hi`), Config{ProbePayload: `say "hi`}.Payload())
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Output: "results.xlsx"}, "xlsx"},
		{Config{Output: "results.CSV"}, "csv"},
		{Config{Output: "out/results.json"}, "json"},
		{Config{Output: "-"}, "table"},
		{Config{Output: ""}, "table"},
		{Config{Output: "results"}, "xlsx"},
		{Config{Output: "results.json", Format: "csv"}, "csv"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cfg.OutputFormat(), tt.cfg.Output)
	}
}
