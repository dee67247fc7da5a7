package container

import (
	"go.uber.org/zap"
)

// Option configures a Container at construction.
type Option func(*Container)

// WithLogger sets the logger used for debug events. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger { return c.log }
