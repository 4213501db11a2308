package worker

import (
	"context"
	"fmt"
	"testing"

	"github.com/clawforge/skirmish/internal/match"
)

func TestRunBatchPreservesSubmissionOrder(t *testing.T) {
	run := func(spec match.Spec) (match.Result, error) {
		return match.Result{Spec: spec}, nil
	}
	pool := New(4, run)
	defer pool.Close()

	specs := make([]match.Spec, 20)
	for i := range specs {
		specs[i] = match.Spec{Seed: int32(i)}
	}

	results, errs := pool.RunBatch(context.Background(), specs)
	for i, r := range results {
		if errs[i] != nil {
			t.Fatalf("unexpected error at index %d: %v", i, errs[i])
		}
		if r.Spec.Seed != int32(i) {
			t.Fatalf("result %d out of order: got seed %d", i, r.Spec.Seed)
		}
	}
}

func TestRunBatchRecoversPanics(t *testing.T) {
	run := func(spec match.Spec) (match.Result, error) {
		if spec.Seed == 3 {
			panic("boom")
		}
		return match.Result{Spec: spec}, nil
	}
	pool := New(2, run)
	defer pool.Close()

	specs := []match.Spec{{Seed: 1}, {Seed: 3}, {Seed: 5}}
	results, errs := pool.RunBatch(context.Background(), specs)

	if errs[1] == nil {
		t.Fatal("expected job at index 1 to surface the recovered panic as an error")
	}
	var pe *PanicError
	if _, ok := errs[1].(*PanicError); !ok {
		t.Fatalf("expected a *PanicError, got %T (%v)", errs[1], errs[1])
	}
	_ = pe
	if errs[0] != nil || errs[2] != nil {
		t.Fatalf("expected the other two jobs to succeed, got %v / %v", errs[0], errs[2])
	}
	if results[0].Spec.Seed != 1 || results[2].Spec.Seed != 5 {
		t.Fatal("expected surrounding jobs to complete with correct specs despite a sibling panic")
	}
}

func TestRunBatchEmpty(t *testing.T) {
	pool := New(2, func(spec match.Spec) (match.Result, error) { return match.Result{}, nil })
	defer pool.Close()

	results, errs := pool.RunBatch(context.Background(), nil)
	if len(results) != 0 || len(errs) != 0 {
		t.Fatalf("expected empty results for an empty batch, got %d/%d", len(results), len(errs))
	}
}

func TestPoolDefaultsWorkerCount(t *testing.T) {
	pool := New(0, func(spec match.Spec) (match.Result, error) { return match.Result{}, nil })
	defer pool.Close()
	if pool.numWorkers <= 0 {
		t.Fatalf("expected a positive default worker count, got %d", pool.numWorkers)
	}
}

func TestPanicErrorMessage(t *testing.T) {
	err := &PanicError{Value: "boom"}
	if err.Error() == "" {
		t.Fatal("expected a non-empty error message")
	}
	_ = fmt.Sprintf("%v", err)
}
