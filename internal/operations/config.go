package operations

import (
	"time"

	"keibacli/internal/config"
)

// Default limits
const (
	DefaultBatchTimeout   = 5 * time.Minute
	DefaultMaxConcurrency = 4
)

// Config controls batch execution
type Config struct {
	// MaxConcurrency bounds the number of batches RunBatches runs at once
	MaxConcurrency int `json:"max_concurrency"`

	// BatchTimeout bounds one batch from load to derive
	BatchTimeout time.Duration `json:"batch_timeout"`

	// Strict rejects a batch whose structural validation fails. Otherwise
	// violations are logged and the batch continues.
	Strict bool `json:"strict"`

	// ContinueOnError keeps RunBatches going after a failed batch
	ContinueOnError bool `json:"continue_on_error"`
}

// NewConfig returns the default execution configuration
func NewConfig() *Config {
	return &Config{
		MaxConcurrency:  DefaultMaxConcurrency,
		BatchTimeout:    DefaultBatchTimeout,
		ContinueOnError: true,
	}
}

// ConfigFrom maps the pipeline section of the application config
func ConfigFrom(p config.PipelineConfig) *Config {
	cfg := NewConfig()
	if p.MaxConcurrency > 0 {
		cfg.MaxConcurrency = p.MaxConcurrency
	}
	if p.BatchTimeout > 0 {
		cfg.BatchTimeout = p.BatchTimeout
	}
	cfg.Strict = p.Strict
	return cfg
}
