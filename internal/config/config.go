package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultLogLevel     = "info"
	defaultLogFormat    = "line"
	defaultReportSink   = "console"
	defaultScrapeEvery  = 10 * time.Second
	defaultProcstatsOn  = true
	defaultWatchSelf    = true
	defaultPprofListen  = "127.0.0.1:6060"
)

// Duration wraps time.Duration for TOML parsing.
// Params: text duration string (e.g. "5s", "1m").
// Returns: parse error on invalid duration.
type Duration struct {
	time.Duration
}

// UnmarshalText parses TOML duration values.
// Params: text is raw duration bytes from TOML.
// Returns: error when value is not a valid Go duration.
func (d *Duration) UnmarshalText(text []byte) error {
	value := strings.TrimSpace(string(text))
	if value == "" {
		d.Duration = 0
		return nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value, err)
	}

	d.Duration = parsed
	return nil
}

// Config represents the root probe agent configuration.
// Params: TOML document sections.
// Returns: validated runtime configuration.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Report    ReportConfig    `toml:"report"`
	Procstats ProcstatsConfig `toml:"procstats"`
	Pprof     PprofConfig     `toml:"pprof"`
}

// PprofConfig defines the optional runtime pprof HTTP endpoint.
// Params: enabled flag and listen address in host:port format.
// Returns: pprof runtime settings.
type PprofConfig struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// LogConfig contains console/file logging configuration.
// Params: console and file sink options.
// Returns: logger sink settings.
type LogConfig struct {
	Console LogSinkConfig `toml:"console"`
	File    LogSinkConfig `toml:"file"`
}

// LogSinkConfig defines one logging sink.
// Params: sink options from TOML.
// Returns: sink setup.
type LogSinkConfig struct {
	Enabled bool   `toml:"enabled"`
	Level   string `toml:"level"`
	Format  string `toml:"format"`
	Path    string `toml:"path"`
}

// MetricsConfig controls the activation predicate applied at startup and on
// reload. EnableTags entries may contain '*' wildcards; patterns are expanded
// against the tag domains of registered sources.
// Params: enable-all flag and tag name patterns.
// Returns: activation settings.
type MetricsConfig struct {
	EnableAll  bool     `toml:"enable_all"`
	EnableTags []string `toml:"enable_tags"`
}

// ReportConfig selects the installed reporter.
// Params: sink name.
// Returns: reporter settings.
type ReportConfig struct {
	Sink string `toml:"sink"`
}

// ProcstatsConfig controls the built-in GC/process stat sources.
// Params: enabled flag, scrape interval, self flag, and extra pids.
// Returns: stat producer settings.
type ProcstatsConfig struct {
	Enabled *bool    `toml:"enabled"`
	Scrape  Duration `toml:"scrape"`
	Self    *bool    `toml:"self"`
	PIDs    []int32  `toml:"pids"`
}

// On reports whether procstats producers are enabled.
// Params: none.
// Returns: configured or default enabled flag.
func (c ProcstatsConfig) On() bool {
	if c.Enabled == nil {
		return defaultProcstatsOn
	}
	return *c.Enabled
}

// WatchSelf reports whether the current process is observed.
// Params: none.
// Returns: configured or default self flag.
func (c ProcstatsConfig) WatchSelf() bool {
	if c.Self == nil {
		return defaultWatchSelf
	}
	return *c.Self
}

// Load reads, expands, decodes, defaults, and validates configuration.
// Params: path to one TOML file or a directory of *.toml snippets.
// Returns: validated configuration or error.
func Load(path string) (*Config, error) {
	raw, err := readConfigSource(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(raw))

	var cfg Config
	if err := toml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("decode TOML %q: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// readConfigSource reads one TOML file or concatenates *.toml files from directory.
// Params: path to config file or directory.
// Returns: raw TOML bytes or error.
func readConfigSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config %q: %w", path, err)
	}

	if !info.IsDir() {
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read config %q: %w", path, readErr)
		}
		return raw, nil
	}

	return readConfigDir(path)
}

// readConfigDir concatenates config snippets from one directory.
// Params: path to directory that contains *.toml files.
// Returns: concatenated TOML content or error.
func readConfigDir(path string) ([]byte, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read config dir %q: %w", path, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".toml") {
			files = append(files, entry.Name())
		}
	}

	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("read config dir %q: no *.toml files", path)
	}

	var builder strings.Builder
	for _, name := range files {
		filePath := filepath.Join(path, name)
		raw, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("read config %q: %w", filePath, readErr)
		}
		builder.Write(raw)
		if len(raw) == 0 || raw[len(raw)-1] != '\n' {
			builder.WriteByte('\n')
		}
		builder.WriteByte('\n')
	}

	return []byte(builder.String()), nil
}

// applyDefaults fills defaults for optional configuration fields.
// Params: receiver config pointer.
// Returns: none.
func (c *Config) applyDefaults() {
	c.Log.Console.Level = lowerOrDefault(c.Log.Console.Level, defaultLogLevel)
	c.Log.Console.Format = lowerOrDefault(c.Log.Console.Format, defaultLogFormat)
	c.Log.File.Level = lowerOrDefault(c.Log.File.Level, defaultLogLevel)
	c.Log.File.Format = lowerOrDefault(c.Log.File.Format, "json")

	if !c.Log.Console.Enabled && !c.Log.File.Enabled {
		c.Log.Console.Enabled = true
	}

	c.Report.Sink = lowerOrDefault(c.Report.Sink, defaultReportSink)

	if c.Procstats.Scrape.Duration <= 0 {
		c.Procstats.Scrape.Duration = defaultScrapeEvery
	}

	if c.Pprof.Enabled && strings.TrimSpace(c.Pprof.Listen) == "" {
		c.Pprof.Listen = defaultPprofListen
	}
}

// validate checks configuration consistency after defaulting.
// Params: receiver config pointer.
// Returns: first validation error.
func (c *Config) validate() error {
	if err := validateSink("log.console", c.Log.Console, false); err != nil {
		return err
	}
	if err := validateSink("log.file", c.Log.File, true); err != nil {
		return err
	}

	switch c.Report.Sink {
	case "console", "none":
	default:
		return fmt.Errorf("report.sink: unsupported value %q", c.Report.Sink)
	}

	for idx, pattern := range c.Metrics.EnableTags {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("metrics.enable_tags[%d] is empty", idx)
		}
	}

	for idx, pid := range c.Procstats.PIDs {
		if pid <= 0 {
			return fmt.Errorf("procstats.pids[%d]: invalid pid %d", idx, pid)
		}
	}

	if c.Pprof.Enabled {
		if _, _, err := net.SplitHostPort(c.Pprof.Listen); err != nil {
			return fmt.Errorf("pprof.listen: invalid address %q: %w", c.Pprof.Listen, err)
		}
	}

	return nil
}

// validateSink validates one logging sink.
// Params: name config path prefix; sink sink options; requirePath whether path is mandatory.
// Returns: validation error when the sink is misconfigured.
func validateSink(name string, sink LogSinkConfig, requirePath bool) error {
	if sink.Enabled && requirePath && strings.TrimSpace(sink.Path) == "" {
		return fmt.Errorf("%s.path is required when sink is enabled", name)
	}

	if err := validateLogLevel(sink.Level); err != nil {
		return fmt.Errorf("%s.level: %w", name, err)
	}
	if err := validateLogFormat(sink.Format); err != nil {
		return fmt.Errorf("%s.format: %w", name, err)
	}

	return nil
}

// validateLogLevel validates known log levels.
// Params: level is lower-case level name.
// Returns: error when level is unsupported.
func validateLogLevel(level string) error {
	switch strings.TrimSpace(strings.ToLower(level)) {
	case "info", "warn", "error", "debug":
		return nil
	default:
		return fmt.Errorf("unsupported value %q", level)
	}
}

// validateLogFormat validates supported sink formats.
// Params: format is lower-case format name.
// Returns: error when format is unsupported.
func validateLogFormat(format string) error {
	switch strings.TrimSpace(strings.ToLower(format)) {
	case "line", "json":
		return nil
	default:
		return fmt.Errorf("unsupported value %q", format)
	}
}

// lowerOrDefault returns a trimmed lower-case value or default fallback.
// Params: value to normalize; fallback value when empty.
// Returns: normalized value.
func lowerOrDefault(value, fallback string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return fallback
	}
	return normalized
}
