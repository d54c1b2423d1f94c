package internal

import (
	"io"
	"log/slog"

	"github.com/starford/recall/internal/workspace"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	layout *workspace.Layout
	logger *slog.Logger
	out    io.Writer
	json   bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLayout sets the resolved workspace.
func WithLayout(l *workspace.Layout) Option {
	return func(a *application) {
		a.layout = l
	}
}

// WithLogger sets the logger passed to every component.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

// WithOutput sets where command results are printed.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}

// WithJSON switches command results to indented JSON.
func WithJSON(on bool) Option {
	return func(a *application) {
		a.json = on
	}
}
