// Package calc implements a handheld-style calculator engine with immediate,
// left-to-right evaluation.
//
// Operands are held as the decimal strings being typed. Choosing a second
// operator while an operation is pending computes the pending one first, so
// 2 + 3 * 4 evaluates to 20.
package calc

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
)

// Calculator is the engine state machine. It is not safe for concurrent use;
// callers that receive events concurrently must serialize them.
type Calculator struct {
	current  string
	previous string
	state    State

	maxDigits int
	logger    arbor.ILogger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger logs state transitions at debug level.
func WithLogger(logger arbor.ILogger) Option {
	return func(c *Calculator) {
		c.logger = logger
	}
}

// WithMaxDigits caps the number of digits accepted into one operand.
// Zero or less means unlimited.
func WithMaxDigits(n int) Option {
	return func(c *Calculator) {
		c.maxDigits = n
	}
}

// New creates an idle calculator with empty operands.
func New(opts ...Option) *Calculator {
	c := &Calculator{state: Idle{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AppendNumber appends a digit or decimal point to the current operand.
// A second decimal point, any other rune, and input after an error are ignored.
func (c *Calculator) AppendNumber(digit rune) {
	if c.Failed() || !isEntryRune(digit) {
		return
	}
	if digit == '.' && strings.ContainsRune(c.current, '.') {
		return
	}
	if digit != '.' && c.maxDigits > 0 && countDigits(c.current) >= c.maxDigits {
		return
	}
	c.current += string(digit)
}

// EnterNumber appends each rune of s in turn.
func (c *Calculator) EnterNumber(s string) {
	for _, r := range s {
		c.AppendNumber(r)
	}
}

// ChooseOperation selects the next operator. With an operation already
// pending and a second operand entered, the pending operation is computed
// first and its result becomes the new first operand.
func (c *Calculator) ChooseOperation(op Operator) {
	if !op.Valid() || c.Failed() {
		return
	}

	switch c.state.(type) {
	case Pending:
		if c.current == "" {
			c.transition(Pending{Op: op}, "replace operator")
			return
		}
		c.Compute()
		if _, idle := c.state.(Idle); !idle || c.Failed() {
			return
		}
	case Idle:
		if c.current == "" {
			return
		}
	}

	c.previous = c.current
	c.current = ""
	c.transition(Pending{Op: op}, "choose operation")
}

// Compute applies the pending operation. It does nothing when no operation
// is pending or either operand is not a number.
func (c *Calculator) Compute() {
	pending, ok := c.state.(Pending)
	if !ok {
		return
	}
	a, ok := parseOperand(c.previous)
	if !ok {
		return
	}
	b, ok := parseOperand(c.current)
	if !ok {
		return
	}

	result, err := pending.Op.Apply(a, b)
	if err != nil {
		c.current = ErrorDisplay
	} else {
		c.current = FormatResult(result)
	}
	c.previous = ""
	c.transition(Idle{}, "compute")
}

// Clear resets the calculator to its initial state.
func (c *Calculator) Clear() {
	c.current = ""
	c.previous = ""
	c.transition(Idle{}, "clear")
}

// Current returns the operand being entered or the last result.
func (c *Calculator) Current() string { return c.current }

// Previous returns the first operand of the pending operation, if any.
func (c *Calculator) Previous() string { return c.previous }

// State returns the current entry state.
func (c *Calculator) State() State { return c.state }

// Operation returns the pending operator, or OpNone when idle.
func (c *Calculator) Operation() Operator {
	if p, ok := c.state.(Pending); ok {
		return p.Op
	}
	return OpNone
}

// Failed reports whether the last computation produced ErrorDisplay.
// A failed calculator only responds to Clear.
func (c *Calculator) Failed() bool {
	return c.current == ErrorDisplay
}

// Display returns what a handheld would show: the current operand, else the
// pending first operand, else "0".
func (c *Calculator) Display() string {
	switch {
	case c.current != "":
		return c.current
	case c.previous != "":
		return c.previous
	default:
		return "0"
	}
}

// Snapshot is a read-only copy of the calculator state.
type Snapshot struct {
	Current   string `json:"current"`
	Previous  string `json:"previous"`
	Operation string `json:"operation"`
	State     string `json:"state"`
	Display   string `json:"display"`
}

// Snapshot returns a copy of the current state.
func (c *Calculator) Snapshot() Snapshot {
	return Snapshot{
		Current:   c.current,
		Previous:  c.previous,
		Operation: c.Operation().String(),
		State:     c.state.String(),
		Display:   c.Display(),
	}
}

func (c *Calculator) transition(to State, event string) {
	from := c.state
	c.state = to
	if c.logger == nil {
		return
	}
	c.logger.Debug().
		Str("event", event).
		Str("from", from.String()).
		Str("to", to.String()).
		Str("current", c.current).
		Str("previous", c.previous).
		Msg("Calculator transition")
}

// parseOperand parses an operand string. Out-of-range operands are still
// numbers: they parse to ±Inf and the result displays as ErrorDisplay.
func parseOperand(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
