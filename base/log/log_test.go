// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSetLogger(t *testing.T) {
	defer CloseLogger()
	temp := t.TempDir()
	path := filepath.Join(temp, "filmify.log")
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flagSet)
	assert.NoError(t, flagSet.Parse([]string{"--log-path", path}))

	// production mode writes JSON lines into the log file
	SetLogger(flagSet, false)
	Logger().Info("hello", zap.Int("answer", 42))
	_ = Logger().Sync()
	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"hello"`)
	assert.Contains(t, string(content), `"logger":"filmify"`)

	// debug mode enables debug level
	SetLogger(flagSet, true)
	assert.True(t, Logger().Core().Enabled(zap.DebugLevel))
}

func TestSetLoggerWithoutFile(t *testing.T) {
	defer CloseLogger()
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flagSet)
	SetLogger(flagSet, false)
	assert.False(t, Logger().Core().Enabled(zap.DebugLevel))
	assert.True(t, Logger().Core().Enabled(zap.InfoLevel))
}

func TestSetLoggerNameAndTimeLayout(t *testing.T) {
	defer CloseLogger()
	path := filepath.Join(t.TempDir(), "filmify.log")
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flagSet)
	assert.NoError(t, flagSet.Parse([]string{
		"--log-path", path,
		"--log-name", "filmify-server",
		"--log-time-layout", "2006",
	}))
	SetLogger(flagSet, false)
	Logger().Info("hello")
	_ = Logger().Sync()
	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(content), `"logger":"filmify-server"`)
	assert.Regexp(t, `"ts":"\d{4}"`, string(content))
}
