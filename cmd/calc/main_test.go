package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("CALC_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
}

func TestCmdEval(t *testing.T) {
	isolateConfig(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"5", "+", "3", "="}, "8"},
		{[]string{"2 + 3 x 4 ="}, "20"},
		{[]string{".5", "+", ".5", "="}, "1"},
		{[]string{"5", "/", "0", "="}, "Error"},
		{[]string{"7", "/"}, "7"},
		{[]string{"12345678901234567", "+", "1", "="}, "12345678901234568"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, cmdEval(tt.args, &out))
			assert.Equal(t, tt.want+"\n", out.String())
		})
	}
}

func TestCmdEval_Errors(t *testing.T) {
	isolateConfig(t)

	var out bytes.Buffer
	assert.Error(t, cmdEval(nil, &out))
	assert.Error(t, cmdEval([]string{"1", "%"}, &out))
	assert.Empty(t, out.String())
}

func TestCmdRepl(t *testing.T) {
	isolateConfig(t)

	in := strings.NewReader("2 +\n3\n* 4 =\n\nbogus\nC\nquit\n9\n")
	var out bytes.Buffer
	require.NoError(t, cmdRepl(in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "2", lines[0])
	assert.Equal(t, "3", lines[1])
	assert.Equal(t, "20", lines[2])
	assert.Contains(t, lines[3], "unknown key")
	assert.Equal(t, "0", lines[4])
}
