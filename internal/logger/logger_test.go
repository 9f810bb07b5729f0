package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/calc/internal/config"
)

func TestSetupLogger_StoresGlobal(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Service.DataDir = t.TempDir()
	cfg.Logging.Output = []string{"file"}
	cfg.Logging.Level = "debug"

	l := SetupLogger(cfg)
	require.NotNil(t, l)
	assert.Equal(t, l, GetLogger())

	l.Debug().Str("component", "test").Msg("Logger ready")
	assert.DirExists(t, cfg.Service.DataDir+"/logs")
}

func TestGetLogger_Fallback(t *testing.T) {
	InitLogger(nil)
	assert.NotNil(t, GetLogger())
}

func TestResolveOutputs(t *testing.T) {
	tests := []struct {
		name        string
		output      []string
		wantConsole bool
		wantFile    bool
	}{
		{"stdout", []string{"stdout"}, true, false},
		{"file", []string{"file"}, false, true},
		{"both", []string{"both"}, true, true},
		{"none", nil, true, false},
		{"unknown", []string{"syslog"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Service.DataDir = t.TempDir()
			cfg.Logging.Output = tt.output

			console, file := resolveOutputs(cfg)
			assert.Equal(t, tt.wantConsole, console)
			assert.Equal(t, tt.wantFile, file)
		})
	}
}

func TestResolveOutputs_UnwritableLogDirStaysOffStdout(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	cfg := config.DefaultConfig()
	cfg.Service.DataDir = blocker
	cfg.Logging.Output = []string{"file"}

	console, file := resolveOutputs(cfg)
	assert.False(t, console)
	assert.False(t, file)

	l := SetupLogger(cfg)
	require.NotNil(t, l)
	l.Info().Msg("Dropped")
}
