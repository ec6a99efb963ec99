package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name      string
		cfg       Config
		wantLevel zapcore.Level
	}{
		{name: "defaults", cfg: Config{}, wantLevel: zapcore.InfoLevel},
		{name: "debug_console", cfg: Config{Level: "DEBUG", Encoding: "console"}, wantLevel: zapcore.DebugLevel},
		{name: "bad_level_falls_back", cfg: Config{Level: "loud"}, wantLevel: zapcore.InfoLevel},
		{name: "unknown_encoding_is_json", cfg: Config{Level: "warn", Encoding: "xml"}, wantLevel: zapcore.WarnLevel},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.OutputPath = filepath.Join(t.TempDir(), "out.log")
			l, err := New(tc.cfg)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tc.wantLevel))
			assert.False(t, l.Core().Enabled(tc.wantLevel-1))
		})
	}
}
