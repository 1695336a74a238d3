// Package clipboard copies coupon codes to the host clipboard. Copy is fire
// and forget: failures are logged, never returned.
package clipboard

import (
	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
)

type Copier struct {
	write func(string) error
	log   zerolog.Logger
}

func NewSystemCopier(log zerolog.Logger) *Copier {
	return NewCopier(clipboard.WriteAll, log)
}

// NewCopier wraps any writer, e.g. a fake in tests.
func NewCopier(write func(string) error, log zerolog.Logger) *Copier {
	return &Copier{
		write: write,
		log:   log.With().Str("component", "clipboard").Logger(),
	}
}

// Copy reports whether the text reached the clipboard.
func (c *Copier) Copy(text string) bool {
	if err := c.write(text); err != nil {
		c.log.Error().Err(err).Msg("failed to copy text")
		return false
	}
	return true
}
