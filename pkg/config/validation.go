package config

import (
	"fmt"
	"net/url"
)

func (c *Config) validate() error {
	if err := checkURL(KeyStreamURL, c.StreamURL, "ws", "wss"); err != nil {
		return err
	}
	if err := checkURL(KeyAPIURL, c.APIURL, "http", "https"); err != nil {
		return err
	}

	positive := []struct {
		key   string
		value int
	}{
		{KeyReconnectBaseDelayMs, c.Reconnect.BaseDelayMs},
		{KeyReconnectMaxAttempts, c.Reconnect.MaxAttempts},
		{KeyTimeoutDialSeconds, c.Timeouts.DialSeconds},
		{KeyTimeoutWriteSeconds, c.Timeouts.WriteSeconds},
		{KeyTimeoutHTTPSeconds, c.Timeouts.HTTPSeconds},
		{KeyStatusIntervalSeconds, c.Status.IntervalSeconds},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.key, p.value)
		}
	}
	return nil
}

func checkURL(key, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			if u.Host == "" {
				return fmt.Errorf("%s: missing host in %q", key, raw)
			}
			return nil
		}
	}
	return fmt.Errorf("%s: scheme must be one of %v, got %q", key, schemes, u.Scheme)
}
