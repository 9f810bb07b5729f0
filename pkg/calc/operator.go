package calc

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOperator is returned when a string does not name an operator.
	ErrInvalidOperator = errors.New("invalid operator")
	// ErrInvalidDigit is returned when a string is not a single digit or decimal point.
	ErrInvalidDigit = errors.New("invalid digit")
	// ErrDivisionByZero is returned by Apply for a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
)

// Operator is a binary arithmetic operator.
type Operator int

const (
	// OpNone means no operation is pending.
	OpNone Operator = iota
	// OpAdd adds the operands.
	OpAdd
	// OpSubtract subtracts the current operand from the previous one.
	OpSubtract
	// OpMultiply multiplies the operands.
	OpMultiply
	// OpDivide divides the previous operand by the current one.
	OpDivide
)

// String returns the operator symbol.
func (o Operator) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpNone:
		return "none"
	default:
		return "unknown"
	}
}

// Valid reports whether o is one of the four arithmetic operators.
func (o Operator) Valid() bool {
	return o >= OpAdd && o <= OpDivide
}

// Apply evaluates a <o> b.
func (o Operator) Apply(a, b float64) (float64, error) {
	switch o {
	case OpAdd:
		return a + b, nil
	case OpSubtract:
		return a - b, nil
	case OpMultiply:
		return a * b, nil
	case OpDivide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	default:
		return 0, fmt.Errorf("apply %s: %w", o, ErrInvalidOperator)
	}
}

// ParseOperator parses one of "+", "-", "*", "/".
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "+":
		return OpAdd, nil
	case "-":
		return OpSubtract, nil
	case "*":
		return OpMultiply, nil
	case "/":
		return OpDivide, nil
	default:
		return OpNone, fmt.Errorf("%q: %w", s, ErrInvalidOperator)
	}
}

// ParseDigit parses a single "0"-"9" or ".".
func ParseDigit(s string) (rune, error) {
	if len(s) == 1 && isEntryRune(rune(s[0])) {
		return rune(s[0]), nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrInvalidDigit)
}

func isEntryRune(r rune) bool {
	return r == '.' || (r >= '0' && r <= '9')
}
