package scheduler

import (
	"sort"

	"github.com/viant/fairsim/model/process"
)

// Service is the fair-share scheduler.
type Service struct {
	processes map[int]*process.Descriptor
	// order holds registered ids ascending; it is the enumeration order used
	// for tie-breaking.
	order            []int
	groupUtilization map[int]int
}

// New creates an empty scheduler.
func New() *Service {
	return &Service{
		processes:        make(map[int]*process.Descriptor),
		groupUtilization: make(map[int]int),
	}
}

// AddProcess registers p; an unseen group starts its ledger at 1.
func (s *Service) AddProcess(p *process.Descriptor) {
	if _, ok := s.processes[p.ID]; !ok {
		idx := sort.SearchInts(s.order, p.ID)
		s.order = append(s.order, 0)
		copy(s.order[idx+1:], s.order[idx:])
		s.order[idx] = p.ID
	}
	s.processes[p.ID] = p
	if _, ok := s.groupUtilization[p.GroupID]; !ok {
		s.groupUtilization[p.GroupID] = 1
	}
}

// RemoveProcess deregisters p. The group ledger is kept.
func (s *Service) RemoveProcess(p *process.Descriptor) {
	if _, ok := s.processes[p.ID]; !ok {
		return
	}
	delete(s.processes, p.ID)
	idx := sort.SearchInts(s.order, p.ID)
	s.order = append(s.order[:idx], s.order[idx+1:]...)
}

// GetNextProcess returns the non-blocked process with the strictly smallest
// priority, or nil when every registered process is blocked. Ties go to the
// lowest process id.
func (s *Service) GetNextProcess() *process.Descriptor {
	var selected *process.Descriptor
	minPriority := 0
	for _, id := range s.order {
		p := s.processes[id]
		if p.IsBlocked() {
			continue
		}
		priority := p.CalculatePriority(s.groupUtilization[p.GroupID])
		if selected == nil || priority < minPriority {
			selected = p
			minPriority = priority
		}
	}
	return selected
}

// UpdateProcessUtilization accounts one executed cycle to p and its group.
func (s *Service) UpdateProcessUtilization(p *process.Descriptor) {
	p.IncrementUtilization()
	s.groupUtilization[p.GroupID]++
}

// UpdateBlockedProcesses advances every registered block countdown by one cycle.
func (s *Service) UpdateBlockedProcesses() {
	for _, id := range s.order {
		s.processes[id].DecrementBlockTime()
	}
}

// HasProcesses reports whether any process, blocked or not, is registered.
func (s *Service) HasProcesses() bool {
	return len(s.processes) > 0
}

// Len returns the number of registered processes.
func (s *Service) Len() int {
	return len(s.processes)
}

// Process returns a registered descriptor by id.
func (s *Service) Process(id int) (*process.Descriptor, bool) {
	p, ok := s.processes[id]
	return p, ok
}

// GroupUtilization returns the ledger entry of a group; zero means the group
// was never seen.
func (s *Service) GroupUtilization(groupID int) int {
	return s.groupUtilization[groupID]
}

// Groups returns a copy of the group ledger.
func (s *Service) Groups() map[int]int {
	ret := make(map[int]int, len(s.groupUtilization))
	for k, v := range s.groupUtilization {
		ret[k] = v
	}
	return ret
}
