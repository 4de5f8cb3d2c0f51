package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequireEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "test_value")
	assert.Equal(t, "test_value", requireEnv("TEST_VAR"))
	assert.Panics(t, func() { requireEnv("TEST_VAR_MISSING") })
}

func TestRequireEnvSlice(t *testing.T) {
	t.Setenv("TEST_SLICE", "a@x.io, b@x.io ,c@x.io")
	t.Setenv("TEST_SLICE_BLANK", " , ")

	assert.Equal(t, []string{"a@x.io", "b@x.io", "c@x.io"}, requireEnvSlice("TEST_SLICE"))
	assert.Panics(t, func() { requireEnvSlice("TEST_SLICE_BLANK") })
	assert.Panics(t, func() { requireEnvSlice("TEST_SLICE_MISSING") })
}

func TestMustHelpers(t *testing.T) {
	t.Setenv("TEST_DURATION", "5s")
	t.Setenv("TEST_BOOL", "false")
	t.Setenv("TEST_INT", " 42 ")
	t.Setenv("TEST_BAD", "soon")

	assert.Equal(t, 5*time.Second, mustDuration("TEST_DURATION", time.Second))
	assert.Equal(t, 15*time.Second, mustDuration("TEST_DURATION_MISSING", 15*time.Second))
	assert.False(t, mustBool("TEST_BOOL", true))
	assert.True(t, mustBool("TEST_BOOL_MISSING", true))
	assert.Equal(t, 42, mustInt("TEST_INT", 0))
	assert.Equal(t, 7, mustInt("TEST_INT_MISSING", 7))

	assert.Panics(t, func() { mustDuration("TEST_BAD", time.Second) })
	assert.Panics(t, func() { mustBool("TEST_BAD", true) })
	assert.Panics(t, func() { mustInt("TEST_BAD", 1) })
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected []string
	}{
		{name: "empty", in: "", expected: nil},
		{name: "quotes and spaces", in: ` "a@x.io" , 'b@x.io',, `, expected: []string{"a@x.io", "b@x.io"}},
		{name: "single", in: "redis", expected: []string{"redis"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitAndTrim(tt.in))
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("JOBBOARD_ADMIN_EMAILS", "admin@example.com, ops@example.com")
	t.Setenv("JOBBOARD_STORE_BACKEND", "Memory")
	t.Setenv("JOBBOARD_BEACONS", "log")
	t.Setenv("JOBBOARD_STREAM_POLL_INTERVAL", "5s")

	cfg := Load()
	if cfg.StoreBackend != BackendMemory {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, BackendMemory)
	}
	if len(cfg.AdminEmails) != 2 || cfg.AdminEmails[1] != "ops@example.com" {
		t.Errorf("AdminEmails = %v", cfg.AdminEmails)
	}
	if cfg.StreamPollInterval != 5*time.Second {
		t.Errorf("StreamPollInterval = %v, want 5s", cfg.StreamPollInterval)
	}
	if cfg.NeedsRedis() {
		t.Error("memory backend with log beacon should not need redis")
	}
	if cfg.ListenPort != ":8080" || cfg.BlobBackend != BlobFilesystem {
		t.Errorf("unexpected defaults: %q %q", cfg.ListenPort, cfg.BlobBackend)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			StoreBackend: BackendMemory,
			BlobBackend:  BlobFilesystem,
			Beacons:      []string{BeaconLog},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.StoreBackend = "sqlite" }, wantErr: true},
		{name: "redis without address", mutate: func(c *Config) { c.StoreBackend = BackendRedis }, wantErr: true},
		{name: "redis with url", mutate: func(c *Config) {
			c.StoreBackend = BackendRedis
			c.RedisURL = "redis://localhost:6379/0"
		}},
		{name: "redis beacon without address", mutate: func(c *Config) { c.Beacons = []string{BeaconRedis} }, wantErr: true},
		{name: "gcs without bucket", mutate: func(c *Config) { c.BlobBackend = BlobGCS }, wantErr: true},
		{name: "sheets without spreadsheet", mutate: func(c *Config) { c.Beacons = []string{BeaconSheets} }, wantErr: true},
		{name: "unknown beacon", mutate: func(c *Config) { c.Beacons = []string{"kafka"} }, wantErr: true},
		{name: "required password missing", mutate: func(c *Config) {
			c.StoreBackend = BackendRedis
			c.RedisAddr = "localhost:6379"
			c.RedisPasswordRequired = true
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
