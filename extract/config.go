package extract

import (
	"fmt"
	"time"
)

// Config controls pool sizing and per-chunk retry behavior. It is validated
// at construction and immutable afterwards.
type Config struct {
	// NumWorkers is the number of worker goroutines draining the queue.
	NumWorkers int

	// ChunkTimeout bounds a single extraction attempt. An attempt that
	// exceeds it is abandoned and counts as a failure.
	ChunkTimeout time.Duration

	// MaxRetries is the number of retries after the first attempt, so a
	// chunk is tried at most MaxRetries+1 times.
	MaxRetries int

	// MaxConcurrentLLMCalls caps in-flight extractor calls across all
	// workers. It is independent of NumWorkers and is the only concurrency
	// enforcement point.
	MaxConcurrentLLMCalls int

	// VRAMLimitMB is advisory. The pool logs it for external GPU
	// scheduling and never enforces it.
	VRAMLimitMB int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		NumWorkers:            4,
		ChunkTimeout:          120 * time.Second,
		MaxRetries:            2,
		MaxConcurrentLLMCalls: 8,
	}
}

// Validate reports the first nonsensical field, if any.
func (c Config) Validate() error {
	if c.NumWorkers < 1 {
		return fmt.Errorf("num workers must be >= 1, got %d", c.NumWorkers)
	}
	if c.ChunkTimeout <= 0 {
		return fmt.Errorf("chunk timeout must be positive, got %v", c.ChunkTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must be >= 0, got %d", c.MaxRetries)
	}
	if c.MaxConcurrentLLMCalls < 1 {
		return fmt.Errorf("max concurrent llm calls must be >= 1, got %d", c.MaxConcurrentLLMCalls)
	}
	return nil
}
