package tui

import (
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme           themes.Theme
	Source          service.Fetcher
	PipelineOptions []ledger.Option
	Start           ledger.Location
	Width           int
	Height          int
	AltScreen       bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Start:     ledger.Location{Path: ledger.LedgerPath},
		Width:     100,
		Height:    30,
		AltScreen: true,
	}
}

// WithSource sets where the ledger is fetched from.
func WithSource(source service.Fetcher) Option {
	return func(c *Config) {
		c.Source = source
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithPipelineOptions passes options to every ledger pipeline the TUI mounts.
func WithPipelineOptions(opts ...ledger.Option) Option {
	return func(c *Config) {
		c.PipelineOptions = append(c.PipelineOptions, opts...)
	}
}

// WithStartLocation opens the ledger at loc, as if following a link.
func WithStartLocation(loc ledger.Location) Option {
	return func(c *Config) {
		c.Start = loc
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}
