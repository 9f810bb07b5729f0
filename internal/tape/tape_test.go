package tape

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/calc/internal/keypad"
	"github.com/ternarybob/calc/pkg/calc"
)

func TestParse(t *testing.T) {
	input := `# chained, no precedence
2 + 3   # first pair
* 4
=
`
	keys, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "+", "3", "*", "4", "="}, keys)
}

func TestParse_Empty(t *testing.T) {
	keys, err := Parse(strings.NewReader("# nothing here\n\n"))
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRun(t *testing.T) {
	snap, err := Run([]string{"1", ".", "2", "5", "*", "4", "="})
	require.NoError(t, err)
	assert.Equal(t, "5", snap.Current)

	_, err = Run([]string{"1", "?"})
	assert.ErrorIs(t, err, keypad.ErrUnknownKey)
}

func TestRun_CalculatorOptions(t *testing.T) {
	snap, err := Run([]string{"1", "2", "3", "4"}, calc.WithMaxDigits(2))
	require.NoError(t, err)
	assert.Equal(t, "12", snap.Current)
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "div.tape")
	require.NoError(t, os.WriteFile(path, []byte("10 / 3 =\n"), 0644))

	snap, err := RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3.3333333333333335", snap.Current)

	_, err = RunFile(filepath.Join(t.TempDir(), "missing.tape"))
	assert.Error(t, err)
}
