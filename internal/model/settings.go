package model

// PlanSettings holds the optimizer configuration that is not part of a request.
type PlanSettings struct {
	Priority Priority `json:"priority" yaml:"priority"`

	// MaxTotalQuantity rejects order sets whose total exceeds it. 0 means no limit.
	MaxTotalQuantity int `json:"maxTotalQuantity,omitempty" yaml:"maxTotalQuantity,omitempty"`
}

func DefaultSettings() PlanSettings {
	return PlanSettings{
		Priority: PriorityMinWaste,
	}
}

// WithPriority returns a copy of s using p when p is set.
func (s PlanSettings) WithPriority(p Priority) PlanSettings {
	if p != "" {
		s.Priority = p
	}
	return s
}
