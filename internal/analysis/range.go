package analysis

import "time"

// Range is a half-open time window [From, To). A zero From or To leaves
// that side unbounded. The HTTP layer maps the inclusive calendar dates
// users pick to this form by pushing To to the midnight after the chosen
// end date.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r Range) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

func (r Range) Duration() time.Duration { return r.To.Sub(r.From) }

// Previous returns the window of equal length ending where r starts.
func (r Range) Previous() Range {
	return Range{From: r.From.Add(-r.Duration()), To: r.From}
}
