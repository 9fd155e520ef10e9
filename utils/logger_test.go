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
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel(" DEBUG "))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel("warning"))
	assert.Equal(t, logrus.TraceLevel, ParseLogLevel("trace"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("bogus"))
}

func TestNewLogger_Registry(t *testing.T) {
	a := NewLogger("TEST-REGISTRY")
	assert.Same(t, a, NewLogger("TEST-REGISTRY"))

	assert.True(t, SetLoggerLevel("TEST-REGISTRY", "error"))
	assert.Equal(t, logrus.ErrorLevel, a.GetLevel())
	assert.False(t, SetLoggerLevel("TEST-MISSING", "error"))
}

func TestLog4jColorFormatter(t *testing.T) {
	f := &Log4jColorFormatter{LoggerName: "DATABASE", NameWidth: 10}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "Database opened",
		Data:    logrus.Fields{"driver": "sqlite", "attempt": 1},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	line := string(out)
	assert.True(t, strings.HasPrefix(line, "2024-01-02 03:04:05.006    INFO "))
	assert.Contains(t, line, "[DATABASE  ] - : Database opened attempt=1 driver=sqlite\n")
}

func TestJSONLogFormatter(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "SALESDB"}
	out, err := f.Format(&logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.WarnLevel,
		Message: "rolled back",
		Data:    logrus.Fields{"error": errors.New("boom")},
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out), &decoded))
	assert.Equal(t, "warning", decoded["level"])
	assert.Equal(t, "SALESDB", decoded["logger"])
	assert.Equal(t, "rolled back", decoded["msg"])
	assert.Equal(t, "boom", decoded["error"])
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("SALESDB_TEST_STR", "x")
	t.Setenv("SALESDB_TEST_BOOL", "true")
	t.Setenv("SALESDB_TEST_INT", "12")
	t.Setenv("SALESDB_TEST_BAD", "nope")

	assert.Equal(t, "x", EnvDefaultString("SALESDB_TEST_STR", "d"))
	assert.Equal(t, "d", EnvDefaultString("SALESDB_TEST_UNSET", "d"))
	assert.True(t, EnvDefaultBool("SALESDB_TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("SALESDB_TEST_BAD", true))
	assert.Equal(t, 12, EnvDefaultInt("SALESDB_TEST_INT", 1))
	assert.Equal(t, 1, EnvDefaultInt("SALESDB_TEST_BAD", 1))
}

// restoreLogConfig puts the console and file settings back after a test.
func restoreLogConfig(t *testing.T) {
	t.Helper()
	loggerRegistryMu.RLock()
	enabled, dir, maxAge, format := fileLogEnabled, fileLogDir, fileLogMaxAgeDays, consoleLogFormat
	loggerRegistryMu.RUnlock()
	t.Cleanup(func() {
		loggerRegistryMu.Lock()
		defer loggerRegistryMu.Unlock()
		for name, hook := range fileHooks {
			if lg, ok := loggerRegistry[name]; ok {
				lg.ReplaceHooks(make(logrus.LevelHooks))
			}
			if c, ok := hook.writer.(io.Closer); ok {
				_ = c.Close()
			}
			delete(fileHooks, name)
		}
		fileLogEnabled, fileLogDir, fileLogMaxAgeDays, consoleLogFormat = enabled, dir, maxAge, format
		for name, lg := range loggerRegistry {
			lg.SetFormatter(consoleFormatter(name))
		}
	})
}

func TestConfigureConsoleLogFormat(t *testing.T) {
	restoreLogConfig(t)
	existing := NewLogger("TEST-FORMAT")

	ConfigureConsoleLogFormat("JSON")
	assert.IsType(t, &JSONLogFormatter{}, existing.Formatter)
	assert.IsType(t, &JSONLogFormatter{}, NewLogger("TEST-FORMAT-LATER").Formatter)

	ConfigureConsoleLogFormat("anything else")
	assert.IsType(t, &Log4jColorFormatter{}, existing.Formatter)
}

func TestConfigureFileLog(t *testing.T) {
	restoreLogConfig(t)
	dir := t.TempDir()

	existing := NewLogger("TEST-FILE")
	existing.SetOutput(io.Discard)
	existing.SetLevel(logrus.InfoLevel)

	ConfigureFileLog(dir, -1)
	ConfigureFileLog(dir, -1)
	assert.Equal(t, 0, fileLogMaxAgeDays)

	existing.Info("written to file")
	later := NewLogger("TEST-FILE-LATER")
	later.SetOutput(io.Discard)
	later.SetLevel(logrus.InfoLevel)
	later.Warn("also written")

	content, err := os.ReadFile(filepath.Join(dir, "test-file.log"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "written to file"))

	content, err = os.ReadFile(filepath.Join(dir, "test-file-later.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "also written")
}
