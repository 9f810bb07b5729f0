package calc

// State is the calculator's entry state: Idle or Pending.
type State interface {
	String() string
	isState()
}

// Idle means no operation is pending.
type Idle struct{}

// Pending means Op was chosen and the second operand is being entered.
type Pending struct {
	Op Operator
}

func (Idle) isState()    {}
func (Pending) isState() {}

// String returns "idle".
func (Idle) String() string { return "idle" }

// String returns "pending(<op>)".
func (p Pending) String() string { return "pending(" + p.Op.String() + ")" }
