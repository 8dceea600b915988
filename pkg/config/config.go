// Package config resolves dashboard settings from command-line flags, the
// environment and an optional config file, in that order of precedence.
package config

import (
	"fmt"
	"io"
	"os"
	"time"
)

// stdout receives usage output; replaced in tests.
var stdout io.Writer = os.Stdout

type Config struct {
	StreamURL  string
	APIURL     string
	Reconnect  ReconnectConfig
	Timeouts   TimeoutConfig
	Status     StatusConfig
	Quiet      bool
	Debug      bool
	ConfigFile string

	// Set when --version was given; nothing else is resolved.
	ShowVersion bool
	// Command words left after the global flags.
	Args []string
}

type ReconnectConfig struct {
	BaseDelayMs int
	MaxAttempts int
}

type TimeoutConfig struct {
	DialSeconds  int
	WriteSeconds int
	HTTPSeconds  int
}

type StatusConfig struct {
	Addr            string
	IntervalSeconds int
}

func (r ReconnectConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMs) * time.Millisecond
}

func (t TimeoutConfig) Dial() time.Duration  { return time.Duration(t.DialSeconds) * time.Second }
func (t TimeoutConfig) Write() time.Duration { return time.Duration(t.WriteSeconds) * time.Second }
func (t TimeoutConfig) HTTP() time.Duration  { return time.Duration(t.HTTPSeconds) * time.Second }

func (s StatusConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// Load resolves configuration from args (without the program name). It returns
// nil, nil after printing usage for --help.
func Load(args []string) (*Config, error) {
	flags, err := parseCLIFlags(args)
	if err != nil {
		return nil, err
	}
	if flags.showHelp {
		PrintUsage(stdout)
		return nil, nil
	}
	if flags.showVersion {
		return &Config{ShowVersion: true, Args: flags.args}, nil
	}

	env := &EnvSource{}

	// The config file location itself can only come from flags or env.
	path := NewConfigResolver(flags.source, env).ResolveString(KeyConfigFile, "")
	file, used, err := loadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	sources := []ConfigSource{flags.source, env}
	if file != nil {
		sources = append(sources, file)
	}
	resolver := NewConfigResolver(sources...)

	cfg := &Config{
		StreamURL: resolver.ResolveString(KeyStreamURL, DefaultStreamURL),
		APIURL:    resolver.ResolveString(KeyAPIURL, DefaultAPIURL),
		Reconnect: ReconnectConfig{
			BaseDelayMs: resolver.ResolveInt(KeyReconnectBaseDelayMs, DefaultReconnectBaseDelayMs),
			MaxAttempts: resolver.ResolveInt(KeyReconnectMaxAttempts, DefaultReconnectMaxAttempts),
		},
		Timeouts: TimeoutConfig{
			DialSeconds:  resolver.ResolveInt(KeyTimeoutDialSeconds, DefaultTimeoutDialSeconds),
			WriteSeconds: resolver.ResolveInt(KeyTimeoutWriteSeconds, DefaultTimeoutWriteSeconds),
			HTTPSeconds:  resolver.ResolveInt(KeyTimeoutHTTPSeconds, DefaultTimeoutHTTPSeconds),
		},
		Status: StatusConfig{
			Addr:            resolver.ResolveString(KeyStatusAddr, DefaultStatusAddr),
			IntervalSeconds: resolver.ResolveInt(KeyStatusIntervalSeconds, DefaultStatusIntervalSeconds),
		},
		Quiet:      resolver.ResolveBool(KeyQuiet, false),
		Debug:      resolver.ResolveBool(KeyDebug, false),
		ConfigFile: used,
		Args:       flags.args,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
