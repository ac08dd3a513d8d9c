package diag

// Series is a named curve inside a report.
type Series struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
}

// Report is the structured outcome of one diagnostic: a pass/fail flag
// against the diagnostic's tolerance, headline scalars, and any curves
// worth plotting.
type Report struct {
	Name    string             `json:"name"`
	Passed  bool               `json:"passed"`
	Summary string             `json:"summary"`
	Scalars map[string]float64 `json:"scalars,omitempty"`
	Series  []Series           `json:"series,omitempty"`
}

// FindSeries returns the named series, or nil.
func (r *Report) FindSeries(name string) *Series {
	for i := range r.Series {
		if r.Series[i].Name == name {
			return &r.Series[i]
		}
	}
	return nil
}

// Diagnostic is one self-contained analysis pass. Run must not mutate
// the inputs the diagnostic was built with.
type Diagnostic interface {
	Name() string
	Run() (*Report, error)
}
