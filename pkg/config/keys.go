package config

// Configuration keys double as environment variable names.
const (
	KeyStreamURL = "TELEMETRY_STREAM_URL"
	KeyAPIURL    = "TELEMETRY_API_URL"

	KeyReconnectBaseDelayMs  = "RECONNECT_BASE_DELAY_MS"
	KeyReconnectMaxAttempts  = "RECONNECT_MAX_ATTEMPTS"
	KeyTimeoutDialSeconds    = "TIMEOUT_DIAL_SECONDS"
	KeyTimeoutWriteSeconds   = "TIMEOUT_WRITE_SECONDS"
	KeyTimeoutHTTPSeconds    = "TIMEOUT_HTTP_SECONDS"
	KeyStatusAddr            = "STATUS_ADDR"
	KeyStatusIntervalSeconds = "STATUS_INTERVAL_SECONDS"

	KeyQuiet      = "DASH_QUIET"
	KeyDebug      = "DASH_DEBUG"
	KeyConfigFile = "DASH_CONFIG_FILE"
)

const (
	DefaultStreamURL = "ws://localhost:8000/stream/telemetry"
	DefaultAPIURL    = "http://localhost:8000/api"

	DefaultReconnectBaseDelayMs  = 1000
	DefaultReconnectMaxAttempts  = 5
	DefaultTimeoutDialSeconds    = 10
	DefaultTimeoutWriteSeconds   = 5
	DefaultTimeoutHTTPSeconds    = 10
	DefaultStatusAddr            = ":9100"
	DefaultStatusIntervalSeconds = 10
)

// Flag names (kebab-case for the command line).
const (
	FlagStreamURL             = "stream-url"
	FlagAPIURL                = "api-url"
	FlagReconnectBaseDelayMs  = "reconnect-base-delay-ms"
	FlagReconnectMaxAttempts  = "reconnect-max-attempts"
	FlagTimeoutDialSeconds    = "timeout-dial-seconds"
	FlagTimeoutWriteSeconds   = "timeout-write-seconds"
	FlagTimeoutHTTPSeconds    = "timeout-http-seconds"
	FlagStatusAddr            = "status-addr"
	FlagStatusIntervalSeconds = "status-interval-seconds"
	FlagQuiet                 = "quiet"
	FlagDebug                 = "debug"
	FlagConfigFile            = "config"
	FlagVersion               = "version"
	FlagHelp                  = "help"
)

const (
	AppName        = "Robot Telemetry Dashboard"
	AppDescription = "Live terminal view of a robot's telemetry stream"
	UsageFormat    = "dash [OPTIONS] [COMMAND]"

	HelpStreamURL             = "Telemetry stream URL (ws or wss)"
	HelpAPIURL                = "Telemetry REST API base URL"
	HelpReconnectBaseDelayMs  = "Reconnect delay unit in ms; attempt n waits n units"
	HelpReconnectMaxAttempts  = "Reconnect attempts before giving up"
	HelpTimeoutDialSeconds    = "Stream dial timeout in seconds"
	HelpTimeoutWriteSeconds   = "Stream write timeout in seconds"
	HelpTimeoutHTTPSeconds    = "REST request timeout in seconds"
	HelpStatusAddr            = "Listen address of the local status API (empty disables)"
	HelpStatusIntervalSeconds = "Status log interval in quiet mode"
	HelpQuiet                 = "Log status lines instead of drawing the terminal UI"
	HelpDebug                 = "Verbose logging"
	HelpConfigFile            = "Config file (yaml, json or toml)"
	HelpVersion               = "Print version and exit"
	HelpShowHelp              = "Show this help message"

	HelpCommands        = "Commands:"
	HelpOptions         = "Options:"
	HelpEnvironmentVars = "Environment Variables:"
	HelpUsage           = "Usage:"
	HelpNote            = "Note: CLI options override environment variables, which override the config file"
)

// Commands lists the subcommands shown in usage, in display order.
var Commands = [][2]string{
	{"run", "Stream telemetry into the dashboard (default)"},
	{"health", "Query the server health endpoint"},
	{"metrics", "Print the server's Prometheus metrics"},
	{"rules", "List the server's alert rules"},
	{"rules push <file>", "Replace the server's alert rules with a YAML file"},
	{"rules init <file>", "Write the default alert rules to a YAML file"},
	{"history [--seconds N]", "Print recent samples from the server"},
}
