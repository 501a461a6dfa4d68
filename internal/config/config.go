package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DATALAYER_CAPTURE_LINK_PAUSE.
const EnvPrefix = "DATALAYER"

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel      string
	JSONLog       bool
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// Driver
	Mode        Mode
	HTTPTimeout time.Duration
	UserAgent   string
	Proxy       string

	// Browser
	BrowserHeadless   bool
	ChromePath        string
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration

	// Capture
	ScrollStep        int
	ScrollInterval    time.Duration
	LinkPause         time.Duration
	ScrollSettle      time.Duration
	InteractionSettle time.Duration
	SettleMode        string
	QueueName         string

	// Collection
	PayloadKey       string
	Keywords         []string
	InteractionEvent string

	// Output
	OutputPath   string
	OutputFormat string
	RawOutput    string
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultJSONLog)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", DefaultLogMaxSizeMB)
	v.SetDefault("log.max_backups", DefaultLogMaxBackups)
	v.SetDefault("log.max_age", DefaultLogMaxAgeDays)
	v.SetDefault("log.compress", true)

	v.SetDefault("mode", string(DefaultMode))
	v.SetDefault("http.timeout", DefaultHTTPTimeout)
	v.SetDefault("http.user_agent", "")
	v.SetDefault("http.proxy", "")

	v.SetDefault("browser.headless", DefaultBrowserHeadless)
	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("browser.viewport_width", DefaultViewportWidth)
	v.SetDefault("browser.viewport_height", DefaultViewportHeight)
	v.SetDefault("browser.navigation_timeout", DefaultNavigationTimeout)

	v.SetDefault("capture.scroll_step", DefaultScrollStep)
	v.SetDefault("capture.scroll_interval", DefaultScrollInterval)
	v.SetDefault("capture.link_pause", DefaultLinkPause)
	v.SetDefault("capture.scroll_settle", DefaultScrollSettle)
	v.SetDefault("capture.interaction_settle", DefaultInteractionSettle)
	v.SetDefault("capture.settle_mode", DefaultSettleMode)
	v.SetDefault("capture.queue_name", DefaultQueueName)

	v.SetDefault("collect.payload_key", DefaultPayloadKey)
	v.SetDefault("collect.keywords", DefaultKeywords)
	v.SetDefault("collect.interaction_event", DefaultInteractionEvent)

	v.SetDefault("output.path", DefaultOutputPath)
	v.SetDefault("output.format", "")
	v.SetDefault("output.raw", "")
}

// Load builds a Config by combining defaults, an optional config file,
// DATALAYER_* environment variables, and CLI flags, in increasing precedence.
// Caller should pass the executing *cobra.Command so its flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
		if err := bindFlags(v, cmd.Flags()); err != nil {
			return nil, err
		}
	}

	cfg, err := NewConfigFromViper(v)
	if err != nil {
		return nil, err
	}

	// Shorthand flags override the resolved level.
	if cmd != nil {
		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			cfg.LogLevel = "error"
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			cfg.LogLevel = "debug"
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// bindFlags binds every known flag present on fs to its config key. Only
// flags the user actually set take precedence over file and environment.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var errs []error
	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			errs = append(errs, v.BindPFlag(key, f))
		}
	}
	return errors.Join(errs...)
}

// NewConfigFromViper materializes a Config from v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		LogLevel:      v.GetString("log.level"),
		JSONLog:       v.GetBool("log.json"),
		LogFile:       v.GetString("log.file"),
		LogMaxSizeMB:  v.GetInt("log.max_size"),
		LogMaxBackups: v.GetInt("log.max_backups"),
		LogMaxAgeDays: v.GetInt("log.max_age"),
		LogCompress:   v.GetBool("log.compress"),

		Mode:        Mode(strings.ToLower(v.GetString("mode"))),
		HTTPTimeout: v.GetDuration("http.timeout"),
		UserAgent:   v.GetString("http.user_agent"),
		Proxy:       v.GetString("http.proxy"),

		BrowserHeadless:   v.GetBool("browser.headless"),
		ChromePath:        v.GetString("browser.chrome_path"),
		ViewportWidth:     v.GetInt("browser.viewport_width"),
		ViewportHeight:    v.GetInt("browser.viewport_height"),
		NavigationTimeout: v.GetDuration("browser.navigation_timeout"),

		ScrollStep:        v.GetInt("capture.scroll_step"),
		ScrollInterval:    v.GetDuration("capture.scroll_interval"),
		LinkPause:         v.GetDuration("capture.link_pause"),
		ScrollSettle:      v.GetDuration("capture.scroll_settle"),
		InteractionSettle: v.GetDuration("capture.interaction_settle"),
		SettleMode:        strings.ToLower(v.GetString("capture.settle_mode")),
		QueueName:         v.GetString("capture.queue_name"),

		PayloadKey:       v.GetString("collect.payload_key"),
		Keywords:         splitList(v.GetStringSlice("collect.keywords")),
		InteractionEvent: v.GetString("collect.interaction_event"),

		OutputPath:   v.GetString("output.path"),
		OutputFormat: v.GetString("output.format"),
		RawOutput:    v.GetString("output.raw"),
	}
	return cfg, nil
}

// splitList accepts both list values and comma separated strings, as
// environment variables only carry the latter.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
