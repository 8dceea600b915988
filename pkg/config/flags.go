package config

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

type parsedFlags struct {
	source      *FlagSource
	showHelp    bool
	showVersion bool
	args        []string
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("dash", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)

	fs.String(FlagStreamURL, DefaultStreamURL, HelpStreamURL)
	fs.String(FlagAPIURL, DefaultAPIURL, HelpAPIURL)
	fs.Int(FlagReconnectBaseDelayMs, DefaultReconnectBaseDelayMs, HelpReconnectBaseDelayMs)
	fs.Int(FlagReconnectMaxAttempts, DefaultReconnectMaxAttempts, HelpReconnectMaxAttempts)
	fs.Int(FlagTimeoutDialSeconds, DefaultTimeoutDialSeconds, HelpTimeoutDialSeconds)
	fs.Int(FlagTimeoutWriteSeconds, DefaultTimeoutWriteSeconds, HelpTimeoutWriteSeconds)
	fs.Int(FlagTimeoutHTTPSeconds, DefaultTimeoutHTTPSeconds, HelpTimeoutHTTPSeconds)
	fs.String(FlagStatusAddr, DefaultStatusAddr, HelpStatusAddr)
	fs.Int(FlagStatusIntervalSeconds, DefaultStatusIntervalSeconds, HelpStatusIntervalSeconds)
	fs.BoolP(FlagQuiet, "q", false, HelpQuiet)
	fs.Bool(FlagDebug, false, HelpDebug)
	fs.StringP(FlagConfigFile, "c", "", HelpConfigFile)
	fs.Bool(FlagVersion, false, HelpVersion)
	fs.BoolP(FlagHelp, "h", false, HelpShowHelp)
	return fs
}

// parseCLIFlags parses global flags up to the first command word. Only flags
// given on the command line land in the FlagSource, so defaults never shadow
// the environment or the config file.
func parseCLIFlags(args []string) (*parsedFlags, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	out := &parsedFlags{
		source: NewFlagSource(),
		args:   fs.Args(),
	}
	out.showHelp, _ = fs.GetBool(FlagHelp)
	out.showVersion, _ = fs.GetBool(FlagVersion)

	stringFlags := map[string]string{
		FlagStreamURL:  KeyStreamURL,
		FlagAPIURL:     KeyAPIURL,
		FlagStatusAddr: KeyStatusAddr,
		FlagConfigFile: KeyConfigFile,
	}
	intFlags := map[string]string{
		FlagReconnectBaseDelayMs:  KeyReconnectBaseDelayMs,
		FlagReconnectMaxAttempts:  KeyReconnectMaxAttempts,
		FlagTimeoutDialSeconds:    KeyTimeoutDialSeconds,
		FlagTimeoutWriteSeconds:   KeyTimeoutWriteSeconds,
		FlagTimeoutHTTPSeconds:    KeyTimeoutHTTPSeconds,
		FlagStatusIntervalSeconds: KeyStatusIntervalSeconds,
	}
	boolFlags := map[string]string{
		FlagQuiet: KeyQuiet,
		FlagDebug: KeyDebug,
	}

	for name, key := range stringFlags {
		if fs.Changed(name) {
			v, _ := fs.GetString(name)
			out.source.Set(key, v)
		}
	}
	for name, key := range intFlags {
		if fs.Changed(name) {
			v, _ := fs.GetInt(name)
			out.source.Set(key, v)
		}
	}
	for name, key := range boolFlags {
		if fs.Changed(name) {
			v, _ := fs.GetBool(name)
			out.source.Set(key, v)
		}
	}

	return out, nil
}

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, "%s - %s\n\n", AppName, AppDescription)
	fmt.Fprintf(w, "%s\n  %s\n\n", HelpUsage, UsageFormat)

	fmt.Fprintf(w, "%s\n", HelpCommands)
	for _, c := range Commands {
		fmt.Fprintf(w, "  %-24s %s\n", c[0], c[1])
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\n", HelpOptions)
	fmt.Fprint(w, newFlagSet().FlagUsages())
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\n", HelpEnvironmentVars)
	for _, row := range [][2]string{
		{KeyStreamURL, HelpStreamURL},
		{KeyAPIURL, HelpAPIURL},
		{KeyReconnectBaseDelayMs, HelpReconnectBaseDelayMs},
		{KeyReconnectMaxAttempts, HelpReconnectMaxAttempts},
		{KeyTimeoutDialSeconds, HelpTimeoutDialSeconds},
		{KeyTimeoutWriteSeconds, HelpTimeoutWriteSeconds},
		{KeyTimeoutHTTPSeconds, HelpTimeoutHTTPSeconds},
		{KeyStatusAddr, HelpStatusAddr},
		{KeyStatusIntervalSeconds, HelpStatusIntervalSeconds},
		{KeyQuiet, HelpQuiet},
		{KeyDebug, HelpDebug},
		{KeyConfigFile, HelpConfigFile},
	} {
		fmt.Fprintf(w, "  %-26s %s\n", row[0], row[1])
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", HelpNote)
}
