package worker

import (
	"errors"
	"net"
	"testing"

	"github.com/clawforge/skirmish/internal/match"
	"github.com/clawforge/skirmish/internal/sim/ai"
)

func ipcTestSpec(seed int32) match.Spec {
	return match.Spec{
		Seed:          seed,
		MaxSimSeconds: 5,
		NodeDefense:   1,
		PlayerGas:     50,
		EnemyGas:      50,
		AIPlayer:      ai.BaselineComposite(),
		AIEnemy:       ai.BaselineComposite(),
		Scenario:      match.Scenario{InitialUnitsPerSide: 1},
	}
}

func TestRunSubprocessJobRoundTripsASuccessfulResult(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_ = ServeSubprocessWorker(server, match.Run)
	}()

	result, err := RunSubprocessJob(client, ipcTestSpec(1))
	if err != nil {
		t.Fatalf("RunSubprocessJob: %v", err)
	}
	want, wantErr := match.Run(ipcTestSpec(1))
	if wantErr != nil {
		t.Fatalf("match.Run: %v", wantErr)
	}
	if result.Sides.Player.Score != want.Sides.Player.Score {
		t.Fatalf("expected the round-tripped result to match a direct Run, got %+v want %+v", result, want)
	}
}

func TestRunSubprocessJobPropagatesRunError(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	failingRun := func(spec match.Spec) (match.Result, error) {
		return match.Result{}, errors.New("boom")
	}
	go func() {
		_ = ServeSubprocessWorker(server, failingRun)
	}()

	_, err := RunSubprocessJob(client, ipcTestSpec(1))
	if err == nil {
		t.Fatal("expected an error to propagate from a failing run function")
	}
}

func TestServeSubprocessWorkerExitsCleanlyOnEOF(t *testing.T) {
	client, server := net.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- ServeSubprocessWorker(server, match.Run)
	}()

	client.Close()
	if err := <-done; err != nil {
		t.Fatalf("expected a clean exit on client close, got %v", err)
	}
}

func TestWriteFrameReadFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	spec := ipcTestSpec(42)
	errCh := make(chan error, 1)
	go func() {
		errCh <- writeFrame(client, msgTypeSpec, spec)
	}()

	msgType, body, err := readFrame(server)
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	if msgType != msgTypeSpec {
		t.Fatalf("expected msgTypeSpec, got %d", msgType)
	}
	var decoded match.Spec
	if err := decodeGob(body, &decoded); err != nil {
		t.Fatalf("decodeGob: %v", err)
	}
	if decoded.Seed != spec.Seed {
		t.Fatalf("expected seed %d, got %d", spec.Seed, decoded.Seed)
	}
}
