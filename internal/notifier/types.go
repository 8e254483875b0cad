package notifier

import "time"

// Config controls pacing and retry of outbound messages.
type Config struct {
	// MinInterval is the minimum spacing between two sends.
	MinInterval   time.Duration
	RetryMax      int
	RetryBase     time.Duration
	RetryMaxDelay time.Duration
	// ChunkLimit is the per-message rune limit (default 4000).
	ChunkLimit int
	// SendTimeout bounds one send call.
	SendTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MinInterval < 0 {
		c.MinInterval = 0
	}
	if c.RetryMax < 0 {
		c.RetryMax = 0
	}
	if c.RetryBase <= 0 {
		c.RetryBase = time.Second
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = 10 * time.Second
	}
	if c.ChunkLimit <= 0 {
		c.ChunkLimit = telegramTextLimit
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 20 * time.Second
	}
	return c
}
