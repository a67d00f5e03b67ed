package runner

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncflow/syncflow/internal/connector/state"
	"github.com/syncflow/syncflow/internal/connector/sync"
)

type stubSyncer struct {
	mu        gosync.Mutex
	runs      int
	lastPrior state.State
	block     chan struct{}
	err       error
}

func (s *stubSyncer) Run(_ context.Context, prior state.State) (*sync.Report, error) {
	s.mu.Lock()
	s.runs++
	s.lastPrior = prior
	s.mu.Unlock()
	if s.block != nil {
		<-s.block
	}
	return &sync.Report{Catalogs: 1, Upserts: 1, Checkpoints: 1}, s.err
}

func (s *stubSyncer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *stubSyncer) prior() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPrior
}

type stubStates struct {
	st  state.State
	err error
}

func (s stubStates) LoadState(context.Context) (state.State, error) {
	return s.st, s.err
}

func TestRunnerImmediateFirstRun(t *testing.T) {
	stub := &stubSyncer{}
	r := New(stub, nil, time.Hour)
	r.Start()
	defer r.Shutdown(context.Background())

	assert.Eventually(t, func() bool { return stub.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return r.Status().LastReport != nil }, time.Second, 5*time.Millisecond)

	st := r.Status()
	assert.False(t, st.Running)
	assert.NotEmpty(t, st.LastRunID)
	assert.Equal(t, "1h0m0s", st.Interval)
	assert.Empty(t, st.LastError)
	assert.Equal(t, 1, st.LastReport.Catalogs)
}

func TestRunnerTriggerCoalesces(t *testing.T) {
	block := make(chan struct{})
	stub := &stubSyncer{block: block}
	r := New(stub, nil, time.Hour)
	r.Start()
	defer r.Shutdown(context.Background())

	assert.Eventually(t, func() bool { return stub.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, r.Status().Running)

	// one trigger queues a follow-up run, further ones collapse into it
	assert.True(t, r.TriggerNow())
	assert.False(t, r.TriggerNow())

	block <- struct{}{}
	assert.Eventually(t, func() bool { return stub.count() == 2 }, time.Second, 5*time.Millisecond)
	block <- struct{}{}
	assert.Eventually(t, func() bool { return !r.Status().Running }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, stub.count())
}

func TestRunnerIntervalTicks(t *testing.T) {
	stub := &stubSyncer{}
	r := New(stub, nil, 10*time.Millisecond)
	r.Start()
	defer r.Shutdown(context.Background())

	assert.Eventually(t, func() bool { return stub.count() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestRunnerLoadsPriorState(t *testing.T) {
	loaded := state.State{LastSyncTime: "2024-01-01T00:00:00Z", CatalogsSynced: 7}
	stub := &stubSyncer{}
	r := New(stub, stubStates{st: loaded}, time.Hour)
	r.Start()
	defer r.Shutdown(context.Background())

	assert.Eventually(t, func() bool { return stub.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, loaded, stub.prior())
}

func TestRunnerStateLoadFailureFallsBack(t *testing.T) {
	stub := &stubSyncer{}
	r := New(stub, stubStates{err: errors.New("connection refused")}, time.Hour)
	r.Start()
	defer r.Shutdown(context.Background())

	assert.Eventually(t, func() bool { return stub.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, state.Default(), stub.prior())
}

func TestRunnerRecordsError(t *testing.T) {
	stub := &stubSyncer{err: errors.New("upstream gone")}
	r := New(stub, nil, time.Hour)
	r.Start()
	defer r.Shutdown(context.Background())

	assert.Eventually(t, func() bool { return r.Status().LastError != "" }, time.Second, 5*time.Millisecond)
	st := r.Status()
	assert.Equal(t, "upstream gone", st.LastError)
	assert.NotNil(t, st.LastReport, "a failed run still reports partial progress")
}

func TestRunnerShutdownTimeout(t *testing.T) {
	block := make(chan struct{})
	stub := &stubSyncer{block: block}
	r := New(stub, nil, time.Hour)
	r.Start()

	assert.Eventually(t, func() bool { return stub.count() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := r.Shutdown(ctx)
	require.Error(t, err, "shutdown cannot finish while a run is stuck")

	close(block)
	require.NoError(t, r.Shutdown(context.Background()))
}
