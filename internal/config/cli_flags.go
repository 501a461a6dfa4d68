package config

import "github.com/spf13/cobra"

// flagKeys maps flag names to the config keys they override.
var flagKeys = map[string]string{
	"json":     "log.json",
	"log-file": "log.file",

	"mode":       "mode",
	"timeout":    "http.timeout",
	"user-agent": "http.user_agent",
	"proxy":      "http.proxy",

	"headless":           "browser.headless",
	"chrome-path":        "browser.chrome_path",
	"viewport-width":     "browser.viewport_width",
	"viewport-height":    "browser.viewport_height",
	"navigation-timeout": "browser.navigation_timeout",

	"scroll-step":        "capture.scroll_step",
	"scroll-interval":    "capture.scroll_interval",
	"link-pause":         "capture.link_pause",
	"scroll-settle":      "capture.scroll_settle",
	"interaction-settle": "capture.interaction_settle",
	"settle-mode":        "capture.settle_mode",
	"queue":              "capture.queue_name",

	"payload-key":       "collect.payload_key",
	"keywords":          "collect.keywords",
	"interaction-event": "collect.interaction_event",

	"output": "output.path",
	"format": "output.format",
	"raw":    "output.raw",
}

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to a rotating file")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (optional)")
	cmd.PersistentFlags().StringP("output", "o", DefaultOutputPath, "Output file path")
	cmd.PersistentFlags().StringP("format", "f", "", "Output format: csv, json, html, md, sqlite (default: from extension)")
	cmd.PersistentFlags().String("payload-key", DefaultPayloadKey, "Top-level event field holding the tracked payload")
	cmd.PersistentFlags().StringSlice("keywords", DefaultKeywords, "Event name substrings to select; case-sensitive, so use Impression to match moduleImpression")
	cmd.PersistentFlags().String("interaction-event", DefaultInteractionEvent, "Event name whose element fields are promoted")
}

// RegisterCaptureFlags registers the flags that tune page automation.
func RegisterCaptureFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	f := cmd.Flags()
	f.StringP("mode", "m", string(DefaultMode), "Page driver: browser or static")
	f.Duration("timeout", DefaultHTTPTimeout, "HTTP timeout for static mode")
	f.String("user-agent", "", "Custom user agent string")
	f.String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	f.StringArrayP("header", "H", nil, "Extra request header (\"Key: Value\"), repeatable")
	f.String("raw", "", "Also write the raw event queue snapshot to this file")

	f.Bool("headless", DefaultBrowserHeadless, "Run the browser headless")
	f.String("chrome-path", "", "Path to the Chrome executable")
	f.Int("viewport-width", DefaultViewportWidth, "Viewport width in pixels")
	f.Int("viewport-height", DefaultViewportHeight, "Viewport height in pixels")
	f.Duration("navigation-timeout", DefaultNavigationTimeout, "Page load timeout")

	f.Int("scroll-step", DefaultScrollStep, "Pixels advanced per scroll tick")
	f.Duration("scroll-interval", DefaultScrollInterval, "Delay between scroll ticks")
	f.Duration("link-pause", DefaultLinkPause, "Pause after each link click")
	f.Duration("scroll-settle", DefaultScrollSettle, "Wait after scrolling")
	f.Duration("interaction-settle", DefaultInteractionSettle, "Wait after clicking links")
	f.String("settle-mode", DefaultSettleMode, "Settle strategy: fixed or stable")
	f.String("queue", DefaultQueueName, "Window property holding the event queue")
}
