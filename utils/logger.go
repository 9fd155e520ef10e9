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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger = logrus.Logger

const timestampFormat = "2006-01-02 15:04:05.000"

var (
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
	fileHooks        = map[string]*fileHook{}

	defaultLevel      = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "info"))
	consoleLogFormat  = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
	fileLogEnabled    = EnvDefaultBool("FILE_LOG_ENABLED", false)
	fileLogDir        = EnvDefaultString("FILE_LOG_DIR", "logs")
	fileLogMaxSizeMB  = EnvDefaultInt("FILE_LOG_MAX_SIZE_MB", 50)
	fileLogMaxBackups = EnvDefaultInt("FILE_LOG_MAX_BACKUPS", 5)
	fileLogMaxAgeDays = EnvDefaultInt("FILE_LOG_MAX_AGE_DAYS", 14)
)

// ConfigureFileLog turns on rotated file output in dir for every logger.
// A negative maxAgeDays keeps old files forever. A logger keeps the
// directory it was first given.
func ConfigureFileLog(dir string, maxAgeDays int) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if dir != "" {
		fileLogDir = dir
	}
	if maxAgeDays < 0 {
		maxAgeDays = 0
	}
	fileLogMaxAgeDays = maxAgeDays
	fileLogEnabled = true
	for name, lg := range loggerRegistry {
		attachFileHook(name, lg)
	}
}

// ConfigureConsoleLogFormat selects "json" or "text" console output for
// every logger.
func ConfigureConsoleLogFormat(format string) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		consoleLogFormat = "json"
	} else {
		consoleLogFormat = "text"
	}
	for name, lg := range loggerRegistry {
		lg.SetFormatter(consoleFormatter(name))
	}
}

// ConfigureLogLevel sets the level of every registered logger and of
// loggers created later.
func ConfigureLogLevel(levelStr string) {
	lvl := ParseLogLevel(levelStr)
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	defaultLevel = lvl
	for _, lg := range loggerRegistry {
		lg.SetLevel(lvl)
	}
}

// SetLoggerLevel changes the level of one named logger.
func SetLoggerLevel(name string, lvlStr string) bool {
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	lg.SetLevel(ParseLogLevel(lvlStr))
	return true
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

// NewLogger returns the logger registered under name, creating it with the
// current console and file settings if needed.
func NewLogger(name string) *logrus.Logger {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if l, ok := loggerRegistry[name]; ok {
		return l
	}

	l := logrus.New()
	l.SetLevel(defaultLevel)
	l.SetReportCaller(true)
	l.SetOutput(os.Stdout)
	l.SetFormatter(consoleFormatter(name))
	if fileLogEnabled {
		attachFileHook(name, l)
	}
	loggerRegistry[name] = l
	return l
}

// consoleFormatter and attachFileHook expect loggerRegistryMu to be held.
func consoleFormatter(name string) logrus.Formatter {
	if consoleLogFormat == "json" {
		return &JSONLogFormatter{LoggerName: name}
	}
	return &Log4jColorFormatter{LoggerName: name, Color: true, NameWidth: 10}
}

func attachFileHook(name string, l *logrus.Logger) {
	if _, ok := fileHooks[name]; ok {
		return
	}
	hook := newFileHook(name)
	fileHooks[name] = hook
	l.AddHook(hook)
}

type fileHook struct {
	writer    io.Writer
	formatter logrus.Formatter
}

func newFileHook(name string) *fileHook {
	return &fileHook{
		writer: &lumberjack.Logger{
			Filename:   filepath.Join(fileLogDir, strings.ToLower(name)+".log"),
			MaxSize:    fileLogMaxSizeMB,
			MaxBackups: fileLogMaxBackups,
			MaxAge:     fileLogMaxAgeDays,
			Compress:   true,
		},
		formatter: &Log4jColorFormatter{LoggerName: name, NameWidth: 10},
	}
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(e *logrus.Entry) error {
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(b)
	return err
}

// Log4jColorFormatter prints "time LEVEL pid --- [name] caller : msg k=v".
type Log4jColorFormatter struct {
	LoggerName string
	Color      bool
	NameWidth  int
}

func (f *Log4jColorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	lvl := fmt.Sprintf("%7s", strings.ToUpper(entry.Level.String()))
	pid := fmt.Sprintf("%-6d", os.Getpid())
	name := fmt.Sprintf("%-*s", f.NameWidth, f.LoggerName)
	caller := callerOf(entry.Caller)
	if f.Color {
		lvl = colorLevel(lvl, entry.Level)
		pid = colorWrap(pid, ansiMagenta)
		caller = colorWrap(caller, ansiCyan)
	}

	var b strings.Builder
	b.WriteString(entry.Time.Format(timestampFormat))
	b.WriteString(" ")
	b.WriteString(lvl)
	b.WriteString(" ")
	b.WriteString(pid)
	b.WriteString("--- [")
	b.WriteString(name)
	b.WriteString("] ")
	b.WriteString(caller)
	b.WriteString(" : ")
	b.WriteString(entry.Message)
	for _, k := range sortedFieldKeys(entry.Data) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// JSONLogFormatter prints one JSON object per entry.
type JSONLogFormatter struct {
	LoggerName string
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Data)+5)
	for k, v := range entry.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}
	data["time"] = entry.Time.Format(timestampFormat)
	data["level"] = entry.Level.String()
	data["logger"] = f.LoggerName
	data["msg"] = entry.Message
	if entry.Caller != nil {
		data["caller"] = callerOf(entry.Caller)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log entry: %w", err)
	}
	return append(b, '\n'), nil
}

func callerOf(frame *runtime.Frame) string {
	if frame == nil {
		return "-"
	}
	dir := filepath.Base(filepath.Dir(frame.File))
	return fmt.Sprintf("%s/%s:%d", dir, filepath.Base(frame.File), frame.Line)
}

func sortedFieldKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
	ansiFaint   = "\x1b[2m"
)

func colorWrap(s, code string) string { return code + s + ansiReset }

func colorLevel(s string, level logrus.Level) string {
	switch level {
	case logrus.TraceLevel:
		return colorWrap(s, ansiFaint)
	case logrus.DebugLevel:
		return colorWrap(s, ansiBlue)
	case logrus.InfoLevel:
		return colorWrap(s, ansiGreen)
	case logrus.WarnLevel:
		return colorWrap(s, ansiYellow)
	default:
		return colorWrap(s, ansiRed)
	}
}

func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func EnvDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return def
		}
		return n
	}
	return def
}

// Since returns the elapsed time rounded for log output.
func Since(start time.Time) time.Duration {
	return time.Since(start).Round(time.Microsecond)
}
