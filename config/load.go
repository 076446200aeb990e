package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. RLOG_LEVEL or
// RLOG_CONSOLE_FORMAT.
const EnvPrefix = "RLOG"

// DotEnvPaths are the .env locations LoadDotEnv tries when called
// without arguments.
var DotEnvPaths = []string{
	".env",
	"./configs/.env",
}

// Load reads the configuration from RLOG_* environment variables on top
// of Default and validates it.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Fields = parseFields(v.GetString("fields"))

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads the first existing file of paths (or DotEnvPaths)
// into the process environment. Variables already set win. A missing
// file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = DotEnvPaths
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv overrides reach
// Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("level", d.Level)
	v.SetDefault("caller", d.Caller)
	v.SetDefault("coarse_clock", d.CoarseClock)
	v.SetDefault("fields", "")

	v.SetDefault("console.enabled", d.Console.Enabled)
	v.SetDefault("console.format", d.Console.Format)
	v.SetDefault("console.output", d.Console.Output)
	v.SetDefault("console.timestamp_format", d.Console.TimestampFormat)
	v.SetDefault("console.async", d.Console.Async)
	v.SetDefault("console.buffer_size", d.Console.BufferSize)
	v.SetDefault("console.overflow", d.Console.Overflow)

	v.SetDefault("file.enabled", d.File.Enabled)
	v.SetDefault("file.path", d.File.Path)
	v.SetDefault("file.format", d.File.Format)
	v.SetDefault("file.async", d.File.Async)
	v.SetDefault("file.buffer_size", d.File.BufferSize)
	v.SetDefault("file.overflow", d.File.Overflow)
	v.SetDefault("file.max_size_mb", d.File.MaxSizeMB)
	v.SetDefault("file.max_age", d.File.MaxAge)
	v.SetDefault("file.max_backups", d.File.MaxBackups)
	v.SetDefault("file.rotate_interval", d.File.RotateInterval)

	v.SetDefault("zap.enabled", d.Zap.Enabled)
	v.SetDefault("zap.console", d.Zap.Console)
	v.SetDefault("zap.output", d.Zap.Output)
	v.SetDefault("zerolog.enabled", d.Zerolog.Enabled)
	v.SetDefault("zerolog.console", d.Zerolog.Console)
	v.SetDefault("zerolog.output", d.Zerolog.Output)
	v.SetDefault("logrus.enabled", d.Logrus.Enabled)
	v.SetDefault("logrus.text", d.Logrus.Text)
	v.SetDefault("logrus.output", d.Logrus.Output)
}

// parseFields reads "k1=v1,k2=v2" as set through RLOG_FIELDS.
func parseFields(s string) map[string]string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		k, val, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		out[k] = strings.TrimSpace(val)
	}
	return out
}
