package core

// Operator is a comparison operator for ValueTrigger.
type Operator string

const (
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
)

var operatorOrdinals = []string{"==", "!=", ">", ">=", "<", "<="}

func (o *Operator) UnmarshalJSON(data []byte) error {
	s, err := DecodeEnum(data, operatorOrdinals)
	if err != nil {
		return err
	}
	*o = Operator(s)
	return nil
}

// ValueTrigger is one comparison value ⊙ k with a trigger-limit and firing
// counter: a small struct, one job, plain methods, the same shape as a
// balance-check constraint.
type ValueTrigger struct {
	Enabled         bool     `json:"enabled"`
	Operator        Operator `json:"operator,omitempty"`
	ComparisonValue Money    `json:"comparison_value"`
	TriggerLimit    int      `json:"trigger_limit,omitempty"`
	TriggerCount    int      `json:"trigger_count,omitempty"`
	LastTriggerDate SimDate  `json:"last_trigger_date"`
}

// Check evaluates the trigger against v, respecting Enabled and
// TriggerLimit (0 means unlimited).
func (vt ValueTrigger) Check(v Money) bool {
	if !vt.Enabled {
		return false
	}
	if !vt.compare(v) {
		return false
	}
	if vt.TriggerLimit > 0 && vt.TriggerCount >= vt.TriggerLimit {
		return false
	}
	return true
}

func (vt ValueTrigger) compare(v Money) bool {
	switch vt.Operator {
	case OpEqual:
		return v.Equal(vt.ComparisonValue)
	case OpNotEqual:
		return !v.Equal(vt.ComparisonValue)
	case OpGreaterThan:
		return v.GreaterThan(vt.ComparisonValue)
	case OpGreaterOrEqual:
		return v.GreaterThanOrEqual(vt.ComparisonValue)
	case OpLessThan:
		return v.LessThan(vt.ComparisonValue)
	case OpLessOrEqual:
		return v.LessThanOrEqual(vt.ComparisonValue)
	default:
		return false
	}
}

// Record must be called exactly once per firing, exactly when the
// enclosing TriggerConditions has returned true and consumed this trigger.
func (vt *ValueTrigger) Record(now SimDate) {
	vt.TriggerCount++
	vt.LastTriggerDate = now
}
