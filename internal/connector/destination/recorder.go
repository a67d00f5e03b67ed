package destination

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/syncflow/syncflow/internal/connector/records"
	"github.com/syncflow/syncflow/internal/connector/state"
)

type OpKind string

const (
	OpUpsert     OpKind = "upsert"
	OpCheckpoint OpKind = "checkpoint"
)

// Op is one delivery operation in arrival order.
type Op struct {
	Kind   OpKind
	Record records.Record
	State  state.State
}

// Recorder is an in-memory destination. It keeps the final record set keyed
// by primary key plus the ordered operation log, which makes it the fixture
// for sync tests and the sink behind dry runs. Safe for concurrent use.
type Recorder struct {
	mu          sync.Mutex
	ops         []Op
	rows        map[string]map[string]records.Record
	checkpoints []state.State
}

func NewRecorder() *Recorder {
	return &Recorder{
		rows: make(map[string]map[string]records.Record),
	}
}

func (rec *Recorder) Upsert(_ context.Context, r records.Record) error {
	ts, ok := records.SchemaFor(r.Table)
	if !ok {
		return ErrUnknownTable.Msg(fmt.Sprintf("unknown table %q", r.Table))
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.rows[r.Table] == nil {
		rec.rows[r.Table] = make(map[string]records.Record)
	}
	rec.rows[r.Table][primaryKeyOf(ts, r)] = r
	rec.ops = append(rec.ops, Op{Kind: OpUpsert, Record: r})
	return nil
}

func (rec *Recorder) Checkpoint(_ context.Context, st state.State) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.checkpoints = append(rec.checkpoints, st)
	rec.ops = append(rec.ops, Op{Kind: OpCheckpoint, State: st})
	return nil
}

// Ops returns a copy of the operation log in arrival order.
func (rec *Recorder) Ops() []Op {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]Op, len(rec.ops))
	copy(out, rec.ops)
	return out
}

// Rows returns a copy of the final record set of one table, keyed by
// primary key.
func (rec *Recorder) Rows(table string) map[string]records.Record {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make(map[string]records.Record, len(rec.rows[table]))
	for k, v := range rec.rows[table] {
		out[k] = v
	}
	return out
}

// Checkpoints returns a copy of all checkpointed states in order.
func (rec *Recorder) Checkpoints() []state.State {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]state.State, len(rec.checkpoints))
	copy(out, rec.checkpoints)
	return out
}

// LastCheckpoint returns the most recent checkpoint, if any.
func (rec *Recorder) LastCheckpoint() (state.State, bool) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.checkpoints) == 0 {
		return state.State{}, false
	}
	return rec.checkpoints[len(rec.checkpoints)-1], true
}

func primaryKeyOf(ts records.TableSchema, r records.Record) string {
	parts := make([]string, 0, len(ts.PrimaryKey))
	for _, col := range ts.PrimaryKey {
		parts = append(parts, fmt.Sprintf("%v", deref(r.Data[col])))
	}
	return strings.Join(parts, "\x1f")
}

func deref(v any) any {
	switch p := v.(type) {
	case *string:
		if p != nil {
			return *p
		}
	case *int:
		if p != nil {
			return *p
		}
	case *bool:
		if p != nil {
			return *p
		}
	default:
		return v
	}
	return nil
}
