package domain

// Metrics holds the measurable values of a set or record. Which fields are
// meaningful depends on the exercise's MetricType.
type Metrics struct {
	Weight          *float64 `bson:"weight,omitempty" json:"weight,omitempty"` // kilograms
	Reps            *int     `bson:"reps,omitempty" json:"reps,omitempty"`
	DurationSeconds *int     `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
}

// Normalize returns a copy with the fields that mt does not use cleared.
func (m Metrics) Normalize(mt MetricType) Metrics {
	out := m.Clone()
	if !mt.UsesWeight() {
		out.Weight = nil
	}
	if !mt.UsesReps() {
		out.Reps = nil
	}
	if !mt.UsesDuration() {
		out.DurationSeconds = nil
	}
	return out
}

// IsNegative reports whether any present value is below zero.
func (m Metrics) IsNegative() bool {
	return (m.Weight != nil && *m.Weight < 0) ||
		(m.Reps != nil && *m.Reps < 0) ||
		(m.DurationSeconds != nil && *m.DurationSeconds < 0)
}

// Clone copies the pointed-to values so the result shares no memory with m.
func (m Metrics) Clone() Metrics {
	var out Metrics
	if m.Weight != nil {
		w := *m.Weight
		out.Weight = &w
	}
	if m.Reps != nil {
		r := *m.Reps
		out.Reps = &r
	}
	if m.DurationSeconds != nil {
		d := *m.DurationSeconds
		out.DurationSeconds = &d
	}
	return out
}
