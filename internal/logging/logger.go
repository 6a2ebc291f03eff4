package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"mprobe/internal/config"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiCyan   = "\x1b[36m"
	ansiGray   = "\x1b[90m"
)

// levelToken extracts the level value from one rendered log line.
var levelToken = regexp.MustCompile(`level=([A-Z]+)`)

// colorToken matches colorable tokens: quoted strings, IPv4 addresses, and
// bare numbers, in that precedence.
var colorToken = regexp.MustCompile(`"[^"]*"|(?:\d{1,3}\.){3}\d{1,3}|\d+(?:\.\d+)?`)

// colorLineWriter colors rendered text log lines by level and token class.
// Params: dst receives colored bytes.
// Returns: io.Writer wrapping dst.
type colorLineWriter struct {
	dst io.Writer
}

// Write colors each line and forwards it to the destination writer.
// Params: p rendered log bytes, possibly multiple lines.
// Returns: len(p) and the first destination write error.
func (w *colorLineWriter) Write(p []byte) (int, error) {
	rest := string(p)
	for len(rest) > 0 {
		line := rest
		suffix := ""
		if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
			line = rest[:idx]
			suffix = "\n"
			rest = rest[idx+1:]
		} else {
			rest = ""
		}

		if _, err := io.WriteString(w.dst, colorLine(line)+suffix); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// colorLine renders one line with level base color and token highlighting.
// Lines without a known level pass through unchanged.
// Params: line one rendered log line without trailing newline.
// Returns: colored line or the original.
func colorLine(line string) string {
	base := levelColor(line)
	if base == "" {
		return line
	}

	var out strings.Builder
	out.WriteString(base)

	cursor := 0
	for _, span := range colorToken.FindAllStringIndex(line, -1) {
		token := line[span[0]:span[1]]
		out.WriteString(line[cursor:span[0]])
		out.WriteString(tokenColor(token))
		out.WriteString(token)
		out.WriteString(ansiReset)
		out.WriteString(base)
		cursor = span[1]
	}
	out.WriteString(line[cursor:])
	out.WriteString(ansiReset)
	return out.String()
}

// levelColor maps the line's level token to its base color.
// Params: line one rendered log line.
// Returns: ANSI color or empty string for unknown levels.
func levelColor(line string) string {
	match := levelToken.FindStringSubmatch(line)
	if match == nil {
		return ""
	}

	switch match[1] {
	case "DEBUG":
		return ansiGray
	case "INFO":
		return ansiBlue
	case "WARN":
		return ansiYellow
	case "ERROR":
		return ansiRed
	default:
		return ""
	}
}

// tokenColor classifies one matched token.
// Params: token matched by colorToken.
// Returns: green for quoted strings, cyan for IPs, yellow for numbers.
func tokenColor(token string) string {
	if strings.HasPrefix(token, `"`) {
		return ansiGreen
	}
	if strings.Count(token, ".") == 3 {
		return ansiCyan
	}
	return ansiYellow
}

// New builds the root logger from sink configuration.
// Params: cfg console and file sink settings.
// Returns: logger, sink close function, or setup error.
func New(cfg config.LogConfig) (*slog.Logger, func(), error) {
	var handlers []slog.Handler
	var closers []func()

	if cfg.Console.Enabled {
		handlers = append(handlers, newSinkHandler(os.Stderr, cfg.Console, true))
	}

	if cfg.File.Enabled {
		file, err := os.OpenFile(cfg.File.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %q: %w", cfg.File.Path, err)
		}
		handlers = append(handlers, newSinkHandler(file, cfg.File, false))
		closers = append(closers, func() { _ = file.Close() })
	}

	closeFn := func() {
		for _, closer := range closers {
			closer()
		}
	}

	switch len(handlers) {
	case 0:
		return slog.New(slog.NewTextHandler(io.Discard, nil)), closeFn, nil
	case 1:
		return slog.New(handlers[0]), closeFn, nil
	default:
		return slog.New(multiHandler(handlers)), closeFn, nil
	}
}

// newSinkHandler builds one slog handler for a sink.
// Params: w destination writer; sink sink options; colorize enable line coloring.
// Returns: configured handler.
func newSinkHandler(w io.Writer, sink config.LogSinkConfig, colorize bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(sink.Level)}

	if sink.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	if colorize {
		w = &colorLineWriter{dst: w}
	}
	return slog.NewTextHandler(w, opts)
}

// parseLevel converts a config level name to a slog level.
// Params: level lower-case level name.
// Returns: slog level, info for unknown values.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
