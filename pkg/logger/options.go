package logger

import (
	"io"
	"log/slog"
)

// Option configures New.
type Option func(*config)

// WithDebug lowers the level to Debug; the --debug flag maps onto it.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithPretty selects the charmbracelet/log handler used by CLI commands.
func WithPretty(pretty bool) Option {
	return func(c *config) { c.pretty = pretty }
}

// WithJSON selects slog's JSON handler. It wins over WithPretty.
func WithJSON(json bool) Option {
	return func(c *config) { c.json = json }
}

// WithWriter replaces the destination.
func WithWriter(w io.Writer) Option {
	return func(c *config) { c.writers = []io.Writer{w} }
}

// WithWriters writes every record to all of w.
func WithWriters(w ...io.Writer) Option {
	return func(c *config) { c.writers = w }
}

// WithSource adds the caller's file:line.
func WithSource(source bool) Option {
	return func(c *config) { c.source = source }
}
