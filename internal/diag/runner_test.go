package diag

import (
	"errors"
	"sync"
	"testing"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/cosmo"
)

type stubDiag struct {
	name    string
	fail    bool
	barrier *sync.WaitGroup
}

func (s stubDiag) Name() string { return s.name }

func (s stubDiag) Run() (*Report, error) {
	if s.barrier != nil {
		s.barrier.Done()
		s.barrier.Wait()
	}
	if s.fail {
		return nil, &body.InputError{Diagnostic: s.name, Reason: "stub failure"}
	}
	return &Report{Name: s.name, Passed: true}, nil
}

func TestRunAllPreservesOrder(t *testing.T) {
	out := RunAll(
		stubDiag{name: "a"},
		stubDiag{name: "b", fail: true},
		stubDiag{name: "c"},
	)
	if len(out) != 3 {
		t.Fatalf("got %d outcomes", len(out))
	}
	for i, want := range []string{"a", "b", "c"} {
		if out[i].Name != want {
			t.Errorf("outcome %d named %q, want %q", i, out[i].Name, want)
		}
	}
	if out[0].Err != nil || out[2].Err != nil {
		t.Error("healthy diagnostics should not error")
	}
	if out[0].Report == nil || !out[0].Report.Passed {
		t.Error("first report missing or failed")
	}
	if !errors.Is(out[1].Err, body.ErrDiagnosticInput) {
		t.Errorf("failure not surfaced: %v", out[1].Err)
	}
	if out[1].Report != nil {
		t.Error("failed diagnostic should carry no report")
	}
}

func TestRunAllIsConcurrent(t *testing.T) {
	// each stub blocks until all three have started, so a sequential
	// runner would deadlock here
	var barrier sync.WaitGroup
	barrier.Add(3)
	out := RunAll(
		stubDiag{name: "a", barrier: &barrier},
		stubDiag{name: "b", barrier: &barrier},
		stubDiag{name: "c", barrier: &barrier},
	)
	for _, o := range out {
		if o.Err != nil {
			t.Errorf("%s: %v", o.Name, o.Err)
		}
	}
}

func TestRunAllMixedRealDiagnostics(t *testing.T) {
	model, res := binaryRun(t, 200)

	out := RunAll(
		EnergyAudit{Model: model, Trajectory: &res.Trajectory},
		ToomreAnalyzer{}, // invalid on purpose
		CosmicExpansion{Params: cosmo.Params{H0: 70, OmegaM: 0.3, OmegaL: 0.7}},
	)

	if out[0].Err != nil || !out[0].Report.Passed {
		t.Errorf("energy audit: %v", out[0].Err)
	}
	if !errors.Is(out[1].Err, body.ErrDiagnosticInput) {
		t.Errorf("bad toomre input should error, got %v", out[1].Err)
	}
	if out[2].Err != nil || !out[2].Report.Passed {
		t.Errorf("cosmic expansion: %v", out[2].Err)
	}
}

func TestRunAllEmpty(t *testing.T) {
	if out := RunAll(); len(out) != 0 {
		t.Errorf("no diagnostics should yield no outcomes, got %d", len(out))
	}
}
