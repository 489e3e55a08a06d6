package process

import "time"

// Termination reasons recorded in accounting.
const (
	StatusExited = "exited"
	StatusFailed = "failed"
)

// Record is the accounting entry kept for a terminated process.
type Record struct {
	ID          int       `json:"id"`
	GroupID     int       `json:"groupId"`
	Utilization int       `json:"utilization"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	Tick        int       `json:"tick"`
	FinishedAt  time.Time `json:"finishedAt"`
}

// NewRecord snapshots the descriptor accounting at termination.
func NewRecord(d *Descriptor, status string, reason string, tick int, finishedAt time.Time) *Record {
	return &Record{
		ID:          d.ID,
		GroupID:     d.GroupID,
		Utilization: d.Utilization,
		Status:      status,
		Reason:      reason,
		Tick:        tick,
		FinishedAt:  finishedAt,
	}
}
