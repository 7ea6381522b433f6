// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		level   string
		visible []string
		hidden  []string
	}{
		{"debug", []string{"_Debug_", "_Info_", "_Warning_"}, nil},
		{"info", []string{"_Info_", "_Warning_"}, []string{"_Debug_"}},
		{"warning", []string{"_Warning_"}, []string{"_Debug_", "_Info_"}},
		{"nonsense", []string{"_Info_", "_Warning_"}, []string{"_Debug_"}},
	}
	for _, test := range table {
		var buf bytes.Buffer
		var log Logger = NewLoggerTo(&buf, test.level, "test")
		log.Debug("_Debug_")
		log.Infof("_%s_", "Info")
		log.Warning("_Warning_")

		for _, s := range test.visible {
			assert.Contains(buf.String(), s, "level %s", test.level)
		}
		for _, s := range test.hidden {
			assert.NotContains(buf.String(), s, "level %s", test.level)
		}
	}
}

func TestFlag(t *testing.T) {
	assert.Equal(t, "log", LogLevelFlag.Name)
	assert.Equal(t, "info", LogLevelFlag.Value)
	assert.NotNil(t, NewLogger(LogLevelFlag.Value, "test"))
}
