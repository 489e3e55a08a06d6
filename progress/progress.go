package progress

import (
	"context"
	"sync"
	"time"

	"github.com/viant/fairsim/internal/clock"
)

// Delta represents an incremental counter change emitted by the loader or the engine.
type Delta struct {
	Ticks       int
	Executed    int
	Blocked     int
	Exited      int
	Failed      int
	Idle        int
	Interrupts  int
	Dispatches  int
	Loaded      int
	LoadFailed  int
	BlockCycles int
}

// Progress keeps aggregated counters for one run. It is safe for concurrent use.
type Progress struct {
	RunID     string
	StartedAt time.Time

	Ticks       int
	Executed    int
	Blocked     int
	Exited      int
	Failed      int
	Idle        int
	Interrupts  int
	Dispatches  int
	Loaded      int
	LoadFailed  int
	BlockCycles int

	sync.Mutex
	onChange func(Progress)
}

// New creates a tracker for runID.
func New(runID string, onChange func(Progress)) *Progress {
	return &Progress{RunID: runID, StartedAt: clock.Now(), onChange: onChange}
}

// Update applies d. The onChange callback, when set, receives a copy outside
// the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.Lock()
	p.Ticks += d.Ticks
	p.Executed += d.Executed
	p.Blocked += d.Blocked
	p.Exited += d.Exited
	p.Failed += d.Failed
	p.Idle += d.Idle
	p.Interrupts += d.Interrupts
	p.Dispatches += d.Dispatches
	p.Loaded += d.Loaded
	p.LoadFailed += d.LoadFailed
	p.BlockCycles += d.BlockCycles

	snapshot := p.copy()
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copy()
}

// OnChange registers a callback invoked after every Update; nil disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

func (p *Progress) copy() Progress {
	return Progress{
		RunID:       p.RunID,
		StartedAt:   p.StartedAt,
		Ticks:       p.Ticks,
		Executed:    p.Executed,
		Blocked:     p.Blocked,
		Exited:      p.Exited,
		Failed:      p.Failed,
		Idle:        p.Idle,
		Interrupts:  p.Interrupts,
		Dispatches:  p.Dispatches,
		Loaded:      p.Loaded,
		LoadFailed:  p.LoadFailed,
		BlockCycles: p.BlockCycles,
	}
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithTracker embeds tracker in a derived context.
func WithTracker(ctx context.Context, tracker *Progress) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, trackerKey, tracker)
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx applies d to the tracker carried by ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
