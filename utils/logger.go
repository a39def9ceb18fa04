/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

type Logger = logrus.Logger

const timestampFormat = "2006-01-02 15:04:05.000"

var (
	registryMu   sync.RWMutex
	registry     = map[string]*logrus.Logger{}
	baseLevel    = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "info"))
	logFormat    = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
	outputMu     sync.RWMutex
	output       io.Writer = os.Stdout
	levelPainter           = map[logrus.Level]*color.Color{
		logrus.PanicLevel: color.New(color.FgRed, color.Bold),
		logrus.FatalLevel: color.New(color.FgRed, color.Bold),
		logrus.ErrorLevel: color.New(color.FgRed),
		logrus.WarnLevel:  color.New(color.FgYellow),
		logrus.InfoLevel:  color.New(color.FgGreen),
		logrus.DebugLevel: color.New(color.FgBlue),
		logrus.TraceLevel: color.New(color.FgMagenta),
	}
	namePainter  = color.New(color.FgCyan)
	faintPainter = color.New(color.Faint)
)

// NewLogger returns the named logger, creating it on first use. Loggers
// share the console writer and the base level.
func NewLogger(name string) *logrus.Logger {
	registryMu.Lock()
	defer registryMu.Unlock()
	if l, ok := registry[name]; ok {
		return l
	}
	l := logrus.New()
	l.SetOutput(writer{})
	l.SetLevel(baseLevel)
	l.SetReportCaller(true)
	if logFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap:        logrus.FieldMap{logrus.FieldKeyMsg: "message"},
		})
		l.AddHook(nameHook(name))
	} else {
		l.SetFormatter(&Log4jColorFormatter{LoggerName: name, NameWidth: 10, CallerWidth: 25})
	}
	registry[name] = l
	return l
}

// SetOutput redirects every logger, mainly for tests.
func SetOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	output = w
}

type writer struct{}

func (writer) Write(p []byte) (int, error) {
	outputMu.RLock()
	defer outputMu.RUnlock()
	return output.Write(p)
}

type nameHook string

func (h nameHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h nameHook) Fire(e *logrus.Entry) error {
	e.Data["logger"] = string(h)
	return nil
}

func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// SetLoggerLevel changes one logger. It reports false for unknown names.
func SetLoggerLevel(name, level string) bool {
	registryMu.RLock()
	l, ok := registry[name]
	registryMu.RUnlock()
	if ok {
		l.SetLevel(ParseLogLevel(level))
	}
	return ok
}

// ConfigureLogLevel sets the base level and applies it to every logger.
func ConfigureLogLevel(level string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	baseLevel = ParseLogLevel(level)
	for _, l := range registry {
		l.SetLevel(baseLevel)
	}
}

// Log4jColorFormatter renders "ts LEVEL pid - [main] name caller : msg k=v".
type Log4jColorFormatter struct {
	LoggerName  string
	NameWidth   int
	CallerWidth int
}

func (f *Log4jColorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	b.WriteString(entry.Time.Format(timestampFormat))
	b.WriteByte(' ')
	lvl := fmt.Sprintf("%7s", strings.ToUpper(entry.Level.String()))
	if p, ok := levelPainter[entry.Level]; ok {
		lvl = p.Sprint(lvl)
	}
	b.WriteString(lvl)
	fmt.Fprintf(&b, " %-6d - [main] ", os.Getpid())
	b.WriteString(namePainter.Sprint(padLeft(limitRunes(f.LoggerName, f.NameWidth), f.NameWidth)))
	if entry.Caller != nil {
		line := strconv.Itoa(entry.Caller.Line)
		path := dotPathCompact(callerPath(entry.Caller.File), f.CallerWidth-len(line)-1)
		b.WriteString(faintPainter.Sprint(" " + padLeft(path+":"+line, f.CallerWidth)))
	}
	b.WriteString(faintPainter.Sprint(" :"))
	b.WriteByte(' ')
	b.WriteString(entry.Message)
	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
		}
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// callerPath keeps the last two path elements, e.g. query/execute.go.
func callerPath(file string) string {
	parts := strings.Split(filepath.ToSlash(file), "/")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return strings.Join(parts, "/")
}

func padLeft(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

func limitRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// dotPathCompact shortens a/b/file.go into a.b.file.go, then abbreviates
// directories to their first letter and finally keeps the tail.
func dotPathCompact(p string, max int) string {
	if max <= 0 {
		return ""
	}
	parts := strings.Split(p, "/")
	out := strings.Join(parts, ".")
	if len(out) <= max {
		return out
	}
	for i := 0; i < len(parts)-1; i++ {
		if r := []rune(parts[i]); len(r) > 0 {
			parts[i] = string(r[0])
		}
	}
	out = strings.Join(parts, ".")
	if r := []rune(out); len(r) > max {
		return string(r[len(r)-max:])
	}
	return out
}

func EnvDefaultString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func EnvDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
