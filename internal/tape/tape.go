// Package tape reads and replays recorded key sequences.
//
// A tape is plain text: keys are separated by whitespace and '#' starts a
// comment that runs to the end of the line.
//
//	# 2 + 3 * 4 evaluates left to right
//	2 + 3
//	* 4 =
package tape

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/calc/internal/keypad"
	"github.com/ternarybob/calc/pkg/calc"
)

// Parse reads key labels from r.
func Parse(r io.Reader) ([]string, error) {
	var keys []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		keys = append(keys, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tape: %w", err)
	}
	return keys, nil
}

// ParseFile reads key labels from the tape at path.
func ParseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tape: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Run plays keys on a fresh calculator and returns its final state.
func Run(keys []string, opts ...calc.Option) (calc.Snapshot, error) {
	return keypad.New(calc.New(opts...)).PressAll(keys)
}

// RunFile parses and plays the tape at path.
func RunFile(path string, opts ...calc.Option) (calc.Snapshot, error) {
	keys, err := ParseFile(path)
	if err != nil {
		return calc.Snapshot{}, err
	}
	snap, err := Run(keys, opts...)
	if err != nil {
		return snap, fmt.Errorf("run tape %s: %w", path, err)
	}
	return snap, nil
}
