package config

import (
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// ConfigSource represents a source of configuration values
type ConfigSource interface {
	GetString(key string) (string, bool)
	GetInt(key string) (int, bool)
	GetBool(key string) (bool, bool)
}

// EnvSource implements ConfigSource for environment variables
type EnvSource struct{}

func (e *EnvSource) GetString(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (e *EnvSource) GetInt(key string) (int, bool) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false
	}
	if i, err := strconv.Atoi(value); err == nil {
		return i, true
	}
	return 0, false
}

func (e *EnvSource) GetBool(key string) (bool, bool) {
	value := os.Getenv(key)
	if value == "" {
		return false, false
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b, true
	}
	return false, false
}

// FlagSource holds only the flags that were set explicitly.
type FlagSource struct {
	values map[string]interface{}
}

func NewFlagSource() *FlagSource {
	return &FlagSource{values: make(map[string]interface{})}
}

func (f *FlagSource) Set(key string, value interface{}) {
	f.values[key] = value
}

func (f *FlagSource) GetString(key string) (string, bool) {
	if value, exists := f.values[key]; exists {
		if str, ok := value.(string); ok {
			return str, true
		}
	}
	return "", false
}

func (f *FlagSource) GetInt(key string) (int, bool) {
	if value, exists := f.values[key]; exists {
		if i, ok := value.(int); ok {
			return i, true
		}
	}
	return 0, false
}

func (f *FlagSource) GetBool(key string) (bool, bool) {
	if value, exists := f.values[key]; exists {
		if b, ok := value.(bool); ok {
			return b, true
		}
	}
	return false, false
}

// ViperSource reads keys from a config file. Keys are matched
// case-insensitively, so TELEMETRY_STREAM_URL is telemetry_stream_url in yaml.
type ViperSource struct {
	v *viper.Viper
}

func NewViperSource(v *viper.Viper) *ViperSource {
	return &ViperSource{v: v}
}

func (s *ViperSource) GetString(key string) (string, bool) {
	if !s.v.IsSet(key) {
		return "", false
	}
	return s.v.GetString(key), true
}

func (s *ViperSource) GetInt(key string) (int, bool) {
	if !s.v.IsSet(key) {
		return 0, false
	}
	return s.v.GetInt(key), true
}

func (s *ViperSource) GetBool(key string) (bool, bool) {
	if !s.v.IsSet(key) {
		return false, false
	}
	return s.v.GetBool(key), true
}

// loadFile reads path, or searches the default locations when path is empty.
// A missing file is only an error when it was asked for by name.
func loadFile(path string) (*ViperSource, string, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("dash")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/dash/")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			return nil, "", nil
		}
		return nil, "", err
	}
	return NewViperSource(v), v.ConfigFileUsed(), nil
}
