package diag

import "sync"

// Outcome pairs a diagnostic's report with its error. A failed
// diagnostic never blocks the others.
type Outcome struct {
	Name   string
	Report *Report
	Err    error
}

// RunAll executes every diagnostic concurrently and returns outcomes in
// the order the diagnostics were given.
func RunAll(diags ...Diagnostic) []Outcome {
	out := make([]Outcome, len(diags))

	var wg sync.WaitGroup
	for i, d := range diags {
		wg.Add(1)
		go func(i int, d Diagnostic) {
			defer wg.Done()
			out[i].Name = d.Name()
			out[i].Report, out[i].Err = d.Run()
		}(i, d)
	}
	wg.Wait()

	return out
}
