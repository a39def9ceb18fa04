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

package database

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tomoncle/querydsl/types"
	"github.com/tomoncle/querydsl/utils"
)

var (
	globalLogger   Logger
	globalLoggerMu sync.RWMutex
)

// LogLevel is the verbosity of a Logger, mapped onto logrus levels.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var _ types.BaseEnum = LogLevelInfo

var logLevels = [...]struct {
	name   string
	logrus logrus.Level
}{
	LogLevelDebug: {"DEBUG", logrus.DebugLevel},
	LogLevelInfo:  {"INFO", logrus.InfoLevel},
	LogLevelWarn:  {"WARN", logrus.WarnLevel},
	LogLevelError: {"ERROR", logrus.ErrorLevel},
}

func (l LogLevel) IsValid() bool { return l >= LogLevelDebug && l <= LogLevelError }
func (l LogLevel) Number() int   { return int(l) }
func (l LogLevel) Name() string  { return l.String() }
func (l LogLevel) Desc() string  { return strings.ToLower(l.String()) + " and above" }

func (l LogLevel) String() string {
	if !l.IsValid() {
		return types.IllegalName
	}
	return logLevels[l].name
}

// Logrus returns the matching logrus level; invalid levels mean debug.
func (l LogLevel) Logrus() logrus.Level {
	if !l.IsValid() {
		return logrus.DebugLevel
	}
	return logLevels[l].logrus
}

// Logger takes a message followed by alternating key/value pairs.
type Logger interface {
	SetLevel(LogLevel)
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// InitLogger installs log as the package logger unless one is already set.
func InitLogger(log Logger) {
	if log == nil {
		return
	}
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = log
	}
}

func GetLogger() Logger {
	globalLoggerMu.RLock()
	l := globalLogger
	globalLoggerMu.RUnlock()
	if l != nil {
		return l
	}
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = &DefaultLogger{logger: utils.NewLogger("DATABASE")}
	}
	return globalLogger
}

// DefaultLogger turns key/value pairs into logrus fields.
type DefaultLogger struct {
	logger *logrus.Logger
}

func (l *DefaultLogger) Debug(msg string, fields ...interface{}) {
	l.entry(fields).Debug(msg)
}

func (l *DefaultLogger) Info(msg string, fields ...interface{}) {
	l.entry(fields).Info(msg)
}

func (l *DefaultLogger) Warn(msg string, fields ...interface{}) {
	l.entry(fields).Warn(msg)
}

func (l *DefaultLogger) Error(msg string, fields ...interface{}) {
	l.entry(fields).Error(msg)
}

func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.logger.SetLevel(level.Logrus())
}

// entry drops a trailing key without a value.
func (l *DefaultLogger) entry(fields []interface{}) *logrus.Entry {
	data := make(logrus.Fields, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		data[key] = fields[i+1]
	}
	return l.logger.WithFields(data)
}
