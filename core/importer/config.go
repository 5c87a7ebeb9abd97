package importer

import "time"

// Config holds tuning for the import engine.
type Config struct {
	// PollIntervalMs is how often a paused row loop re-checks its flags.
	PollIntervalMs int `mapstructure:"poll_interval_ms" default:"100"`
	// ErrorPreviewLimit caps the row errors shown while a job is running.
	ErrorPreviewLimit int `mapstructure:"error_preview_limit" default:"20"`
	// MaxUploadBytes caps the size of an uploaded CSV file.
	MaxUploadBytes int `mapstructure:"max_upload_bytes" default:"10485760"`
}

// PollInterval returns the pause polling interval, defaulting to 100ms.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// PreviewLimit returns the error preview cap, defaulting to 20.
func (c Config) PreviewLimit() int {
	if c.ErrorPreviewLimit <= 0 {
		return 20
	}
	return c.ErrorPreviewLimit
}
