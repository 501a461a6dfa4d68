package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

func validate(c *Config) error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Mode != ModeBrowser && c.Mode != ModeStatic {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeBrowser, ModeStatic, c.Mode)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	if c.NavigationTimeout < 0 {
		return fmt.Errorf("navigation timeout must be >= 0")
	}
	if c.ScrollStep <= 0 {
		return fmt.Errorf("scroll step must be > 0")
	}
	if c.ScrollInterval <= 0 {
		return fmt.Errorf("scroll interval must be > 0")
	}
	if c.LinkPause < 0 || c.ScrollSettle < 0 || c.InteractionSettle < 0 {
		return fmt.Errorf("pauses and settle windows must be >= 0")
	}
	if c.SettleMode != "fixed" && c.SettleMode != "stable" {
		return fmt.Errorf("settle mode must be fixed or stable, got %q", c.SettleMode)
	}
	if strings.TrimSpace(c.QueueName) == "" {
		return fmt.Errorf("queue name is required")
	}
	if strings.TrimSpace(c.PayloadKey) == "" {
		return fmt.Errorf("payload key is required")
	}
	if len(c.Keywords) == 0 {
		return fmt.Errorf("at least one keyword is required")
	}
	if c.OutputFormat != "" {
		switch strings.ToLower(c.OutputFormat) {
		case "csv", "json", "html", "htm", "md", "markdown", "sqlite", "sqlite3", "db":
		default:
			return fmt.Errorf("unsupported output format %q", c.OutputFormat)
		}
	}
	if c.LogFile != "" && (c.LogMaxSizeMB <= 0 || c.LogMaxBackups < 0 || c.LogMaxAgeDays < 0) {
		return fmt.Errorf("log rotation settings must be positive")
	}
	return nil
}
