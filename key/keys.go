// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Search Configuration - these keys govern catalog search behavior across configured sites.
const (
	SearchSiteTimeout          = "search.site_timeout_seconds"
	SearchMinIntervalMs        = "search.min_interval_ms"
	SearchPerMinuteLimit       = "search.per_minute_limit"
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// Resolution Configuration - these keys control the top-level resolve pipeline.
const (
	ResolveDeadlineSeconds = "resolve.deadline_seconds"
	ResolvePrefer          = "resolve.prefer"
)

// Probe Configuration - these keys tune the source probing strategies.
const (
	ProbeLightweightTimeoutSeconds = "probe.lightweight_timeout_seconds"
	ProbeFullTimeoutSeconds        = "probe.full_timeout_seconds"
	ProbeFullConcurrency           = "probe.full_concurrency"
	ProbeBatchPauseMs              = "probe.batch_pause_ms"
	ProbeReadBudgetKB              = "probe.read_budget_kb"
	ProbePreferredSources          = "probe.preferred_sources"
)

// Device Classification - these keys supply the ambient device identity used for tier selection.
const (
	DeviceUserAgent   = "device.user_agent"
	DeviceTouchPoints = "device.touch_points"
)

// Logging Configuration - these keys control diagnostic log persistence.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Presentation - these keys affect terminal output only.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
	IconsVariant    = "icons.variant"
)
