package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel      = "info"
	DefaultJSONLog       = false
	DefaultLogMaxSizeMB  = 50
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28

	DefaultMode            = ModeBrowser
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultStaticUserAgent = "datalayer/1.0 (https://github.com/law-makers/datalayer)"

	DefaultBrowserHeadless   = true
	DefaultViewportWidth     = 1920
	DefaultViewportHeight    = 1080
	DefaultNavigationTimeout = 60 * time.Second

	DefaultScrollStep        = 100
	DefaultScrollInterval    = 100 * time.Millisecond
	DefaultLinkPause         = 500 * time.Millisecond
	DefaultScrollSettle      = 5 * time.Second
	DefaultInteractionSettle = 5 * time.Second
	DefaultSettleMode        = "fixed"
	DefaultQueueName         = "dataLayer"

	DefaultPayloadKey       = "module"
	DefaultInteractionEvent = "moduleInteraction"

	DefaultOutputPath = "extracted_data.csv"
)

// DefaultKeywords select impression and interaction events.
var DefaultKeywords = []string{"impression", "moduleInteraction"}

// Mode selects the page driver.
type Mode string

const (
	// ModeBrowser drives headless Chrome.
	ModeBrowser Mode = "browser"
	// ModeStatic fetches HTML and runs inline scripts without a browser.
	ModeStatic Mode = "static"
)
