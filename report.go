package fairsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/fairsim/model/process"
	"github.com/viant/fairsim/progress"
)

// Report summarises a simulation run.
type Report struct {
	RunID      string            `json:"runId"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	Ticks      int               `json:"ticks"`
	Stats      Stats             `json:"stats"`
	Records    []*process.Record `json:"records"`
	Groups     []*GroupUsage     `json:"groups"`
	LoadErrors []string          `json:"loadErrors,omitempty"`
	// Interrupted is set when the run stopped before every process terminated.
	Interrupted bool `json:"interrupted,omitempty"`
}

// Stats are the run counters.
type Stats struct {
	Loaded      int `json:"loaded"`
	LoadFailed  int `json:"loadFailed"`
	Executed    int `json:"executed"`
	Idle        int `json:"idle"`
	Blocked     int `json:"blocked"`
	BlockCycles int `json:"blockCycles"`
	Exited      int `json:"exited"`
	Failed      int `json:"failed"`
	Interrupts  int `json:"interrupts"`
	Dispatches  int `json:"dispatches"`
}

// GroupUsage is a group ledger entry. The ledger starts at 1 so Utilization is
// one more than the instructions the group executed.
type GroupUsage struct {
	GroupID     int `json:"groupId"`
	Utilization int `json:"utilization"`
}

func newStats(p progress.Progress) Stats {
	return Stats{
		Loaded:      p.Loaded,
		LoadFailed:  p.LoadFailed,
		Executed:    p.Executed,
		Idle:        p.Idle,
		Blocked:     p.Blocked,
		BlockCycles: p.BlockCycles,
		Exited:      p.Exited,
		Failed:      p.Failed,
		Interrupts:  p.Interrupts,
		Dispatches:  p.Dispatches,
	}
}

func newGroupUsage(ledger map[int]int) []*GroupUsage {
	ret := make([]*GroupUsage, 0, len(ledger))
	for groupID, utilization := range ledger {
		ret = append(ret, &GroupUsage{GroupID: groupID, Utilization: utilization})
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].GroupID < ret[j].GroupID })
	return ret
}

// Share returns the fraction of executed instructions charged to groupID.
func (r *Report) Share(groupID int) float64 {
	total, own := 0, 0
	for _, g := range r.Groups {
		total += g.Utilization - 1
		if g.GroupID == groupID {
			own = g.Utilization - 1
		}
	}
	if total == 0 {
		return 0
	}
	return float64(own) / float64(total)
}

// Save writes the report as indented JSON to URL.
func (r *Report) Save(ctx context.Context, fs afs.Service, URL string) error {
	if fs == nil {
		fs = afs.New()
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err = fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save report to %s: %w", URL, err)
	}
	return nil
}
