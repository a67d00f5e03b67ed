// Package runner executes sync runs on a fixed interval inside the daemon,
// with an on-demand trigger for the API. Runs never overlap; triggers that
// arrive while a run is active coalesce into one follow-up run.
package runner

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"

	"github.com/syncflow/syncflow/internal/connector/state"
	"github.com/syncflow/syncflow/internal/connector/sync"
)

// DefaultInterval is the sync cadence when the config does not set one.
const DefaultInterval = 15 * time.Minute

// Sync runs one full sync pass. *sync.Syncer satisfies it.
type Sync interface {
	Run(ctx context.Context, prior state.State) (*sync.Report, error)
}

// StateLoader restores the last checkpointed state before a run. The
// postgres destination implements it; a nil loader starts from defaults.
type StateLoader interface {
	LoadState(ctx context.Context) (state.State, error)
}

// Status is the runner's view served by the sync status endpoint.
type Status struct {
	Running    bool         `json:"running"`
	Interval   string       `json:"interval"`
	LastRunID  string       `json:"last_run_id,omitempty"`
	LastReport *sync.Report `json:"last_report,omitempty"`
	LastError  string       `json:"last_error,omitempty"`
}

type Runner struct {
	syncer   Sync
	states   StateLoader
	interval time.Duration

	trigger chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}

	mu         gosync.Mutex
	running    bool
	lastRunID  string
	lastReport *sync.Report
	lastErr    error
}

func New(syncer Sync, states StateLoader, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{
		syncer:   syncer,
		states:   states,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start launches the interval loop with an immediate first run.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.loop(ctx)
}

// TriggerNow queues a run. It reports false when a run is already queued;
// the pending run covers the request either way.
func (r *Runner) TriggerNow() bool {
	select {
	case r.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Shutdown stops the loop and waits for an active run to wind down, up to
// the context deadline.
func (r *Runner) Shutdown(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current runner state and the outcome of the last run.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Status{
		Running:    r.running,
		Interval:   r.interval.String(),
		LastRunID:  r.lastRunID,
		LastReport: r.lastReport,
	}
	if r.lastErr != nil {
		s.LastError = r.lastErr.Error()
	}
	return s
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		case <-r.trigger:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runID, _ := gonanoid.New(12)
	logger := log.With().Str("run_id", runID).Logger()
	runCtx := logger.WithContext(ctx)

	r.mu.Lock()
	r.running = true
	r.lastRunID = runID
	r.mu.Unlock()

	prior := state.Default()
	if r.states != nil {
		st, err := r.states.LoadState(runCtx)
		if err != nil {
			logger.Warn().Err(err).Msg("unable to load sync state, starting from defaults")
		} else {
			prior = st
		}
	}

	rep, err := r.syncer.Run(runCtx, prior)

	r.mu.Lock()
	r.running = false
	r.lastReport = rep
	r.lastErr = err
	r.mu.Unlock()

	if err != nil && !errors.Is(err, sync.ErrCancelled) && ctx.Err() == nil {
		logger.Error().Err(err).Msg("sync run failed, will retry at next interval")
	}
}
