// Package keypad maps key labels onto calculator operations and serializes
// events from concurrent sources.
package keypad

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ternarybob/calc/pkg/calc"
)

// ErrUnknownKey is returned for a key label with no calculator action.
var ErrUnknownKey = errors.New("unknown key")

// Kind classifies a key.
type Kind int

const (
	KindDigit Kind = iota
	KindNumber
	KindOperator
	KindEquals
	KindClear
)

// Key is a parsed key press. A KindNumber key stands for typing each rune
// of Number in turn.
type Key struct {
	Kind   Kind
	Digit  rune
	Number string
	Op     calc.Operator
}

// ParseKey parses a key label. Labels are case-insensitive and surrounding
// whitespace is ignored.
func ParseKey(label string) (Key, error) {
	s := strings.ToLower(strings.TrimSpace(label))

	if d, err := calc.ParseDigit(s); err == nil {
		return Key{Kind: KindDigit, Digit: d}, nil
	}
	if isNumber(s) {
		return Key{Kind: KindNumber, Number: s}, nil
	}
	if op, err := calc.ParseOperator(s); err == nil {
		return Key{Kind: KindOperator, Op: op}, nil
	}

	switch s {
	case "x", "×":
		return Key{Kind: KindOperator, Op: calc.OpMultiply}, nil
	case "÷":
		return Key{Kind: KindOperator, Op: calc.OpDivide}, nil
	case "−":
		return Key{Kind: KindOperator, Op: calc.OpSubtract}, nil
	case "=", "enter", "return":
		return Key{Kind: KindEquals}, nil
	case "c", "ac", "clear", "esc", "escape":
		return Key{Kind: KindClear}, nil
	}
	return Key{}, fmt.Errorf("%q: %w", label, ErrUnknownKey)
}

// Keypad owns a Calculator and applies key presses to it one at a time.
type Keypad struct {
	mu   sync.Mutex
	calc *calc.Calculator
}

// New creates a keypad around c.
func New(c *calc.Calculator) *Keypad {
	return &Keypad{calc: c}
}

// Press applies a single key and returns the resulting state.
func (k *Keypad) Press(label string) (calc.Snapshot, error) {
	key, err := ParseKey(label)
	if err != nil {
		return k.Snapshot(), err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.apply(key)
	return k.calc.Snapshot(), nil
}

// PressAll applies keys in order. Every label is validated before any is
// applied, so an unknown key leaves the calculator untouched.
func (k *Keypad) PressAll(labels []string) (calc.Snapshot, error) {
	keys := make([]Key, 0, len(labels))
	for i, label := range labels {
		key, err := ParseKey(label)
		if err != nil {
			return k.Snapshot(), fmt.Errorf("key %d: %w", i, err)
		}
		keys = append(keys, key)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	for _, key := range keys {
		k.apply(key)
	}
	return k.calc.Snapshot(), nil
}

// Do runs fn with exclusive access to the calculator.
func (k *Keypad) Do(fn func(c *calc.Calculator)) calc.Snapshot {
	k.mu.Lock()
	defer k.mu.Unlock()
	fn(k.calc)
	return k.calc.Snapshot()
}

// Snapshot returns the current calculator state.
func (k *Keypad) Snapshot() calc.Snapshot {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.calc.Snapshot()
}

func (k *Keypad) apply(key Key) {
	switch key.Kind {
	case KindDigit:
		k.calc.AppendNumber(key.Digit)
	case KindNumber:
		k.calc.EnterNumber(key.Number)
	case KindOperator:
		k.calc.ChooseOperation(key.Op)
	case KindEquals:
		k.calc.Compute()
	case KindClear:
		k.calc.Clear()
	}
}

func isNumber(s string) bool {
	if len(s) < 2 {
		return false
	}
	for _, r := range s {
		if r != '.' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
