package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/viant/fairsim/internal/clock"
	"github.com/viant/fairsim/internal/logger"
	"github.com/viant/fairsim/model/memory"
	"github.com/viant/fairsim/model/process"
	"github.com/viant/fairsim/model/program"
	"github.com/viant/fairsim/progress"
	"github.com/viant/fairsim/service/dao"
	"github.com/viant/fairsim/service/scheduler"
	"github.com/viant/fairsim/tracing"
)

// Service is the execution engine.
type Service struct {
	config    Config
	scheduler *scheduler.Service
	memory    *memory.Memory
	random    Random
	records   dao.Service[int, process.Record]
	logger    *slog.Logger
	tracker   *progress.Progress
	span      *tracing.Span
	// debug enables the per-instruction trace.
	debug bool

	cpu       cpu
	current   *process.Descriptor
	timerLeft int
	ticks     int
	started   bool
}

// New creates an engine executing programs placed in mem and scheduled by sched.
func New(sched *scheduler.Service, mem *memory.Memory, options ...Option) (*Service, error) {
	s := &Service{
		config:    DefaultConfig(),
		scheduler: sched,
		memory:    mem,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.scheduler == nil {
		return nil, fmt.Errorf("scheduler is required")
	}
	if s.memory == nil {
		return nil, fmt.Errorf("memory is required")
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if s.random == nil {
		s.random = NewRandom(clock.Now().UnixNano())
	}
	if s.logger == nil {
		s.logger = logger.Discard()
	}
	s.debug = s.logger.Enabled(context.Background(), slog.LevelDebug)
	return s, nil
}

// Current returns the dispatched process, or nil while idle.
func (s *Service) Current() *process.Descriptor {
	return s.current
}

// Ticks returns the number of completed ticks.
func (s *Service) Ticks() int {
	return s.ticks
}

// TimerLeft returns the cycles left before the next timer interrupt.
func (s *Service) TimerLeft() int {
	return s.timerLeft
}

// Start arms the timer and dispatches the first process. Tick and Run call it
// on first use.
func (s *Service) Start() {
	if s.started {
		return
	}
	s.started = true
	s.timerLeft = s.config.TimerInterval
	s.Dispatch()
}

// Run ticks until no process is registered or ctx is done.
func (s *Service) Run(ctx context.Context) (err error) {
	ctx, s.span = tracing.StartSpan(ctx, "engine.run")
	s.span.WithInt("process.count", s.scheduler.Len())
	defer func() {
		s.span.WithInt("ticks", s.ticks)
		tracing.EndSpan(s.span, err)
		s.span = nil
	}()

	s.Start()
	for s.scheduler.HasProcesses() {
		if err = ctx.Err(); err != nil {
			s.logger.Warn("simulation interrupted", slog.Int("tick", s.ticks), logger.ErrAttr(err))
			return err
		}
		s.Tick(ctx)
	}
	s.logger.Info("processing complete", slog.Int("ticks", s.ticks))
	return nil
}

// Tick runs one simulation cycle: execute one instruction of the dispatched
// process, handle the timer interrupt, then advance block countdowns.
func (s *Service) Tick(ctx context.Context) {
	s.Start()
	s.ticks++
	delta := progress.Delta{Ticks: 1}

	if current := s.current; current != nil {
		status, err := s.RunOneInst()
		s.scheduler.UpdateProcessUtilization(current)
		delta.Executed = 1

		switch status {
		case StatusContinue:
		case StatusBlock:
			delay := s.blockDuration()
			current.SetBlockTime(delay)
			delta.Blocked = 1
			delta.BlockCycles = delay
			s.logger.Info("process blocked", slog.Int("process", current.ID), slog.Int("cycles", delay))
			s.Dispatch()
		case StatusExit, StatusError:
			if status == StatusExit {
				delta.Exited = 1
			} else {
				delta.Failed = 1
			}
			s.terminate(ctx, current, status, err)
			s.Dispatch()
		}
	} else {
		delta.Idle = 1
	}

	s.timerLeft--
	if s.timerLeft <= 0 {
		delta.Interrupts = 1
		s.Dispatch()
		s.timerLeft = s.config.TimerInterval
	}

	s.scheduler.UpdateBlockedProcesses()
	s.tracker.Update(delta)
}

// Dispatch saves the outgoing context and loads the process selected by the
// scheduler onto the CPU. It returns nil when every registered process is
// blocked or none is left.
func (s *Service) Dispatch() *process.Descriptor {
	if s.current != nil {
		s.cpu.save(s.current)
	}
	s.current = s.scheduler.GetNextProcess()
	if s.current != nil {
		s.cpu.load(s.current)
		s.tracker.Update(progress.Delta{Dispatches: 1})
		s.logger.Debug("process loaded", slog.Int("process", s.current.ID), slog.Int("tick", s.ticks))
	} else if s.scheduler.HasProcesses() {
		s.logger.Debug("waiting for processes to unblock", slog.Int("tick", s.ticks))
	}
	return s.current
}

// RunOneInst executes the instruction at the instruction pointer of the
// dispatched process.
func (s *Service) RunOneInst() (Status, error) {
	if s.current == nil {
		return StatusError, ErrNoProcess
	}
	opcode, err := s.cpu.read(s.memory, s.cpu.instructionPointer)
	if err != nil {
		return StatusError, err
	}
	if s.debug {
		s.logger.Debug("fetch",
			slog.Int("process", s.current.ID),
			slog.Int("ip", s.cpu.instructionPointer),
			slog.String("instruction", program.Describe(opcode)))
	}
	s.cpu.instructionPointer++

	if program.IsBranch(opcode) {
		percentage := program.BranchPercentage(opcode)
		high, err := s.cpu.read(s.memory, s.cpu.instructionPointer)
		if err != nil {
			return StatusError, err
		}
		low, err := s.cpu.read(s.memory, s.cpu.instructionPointer+1)
		if err != nil {
			return StatusError, err
		}
		destination := high<<8 | low
		s.cpu.instructionPointer += 2
		if s.random.Intn(100) < percentage {
			s.cpu.instructionPointer = destination
		}
		return StatusContinue, nil
	}

	switch opcode {
	case program.OpCompute:
		return StatusContinue, nil
	case program.OpBlock:
		return StatusBlock, nil
	case program.OpExit:
		return StatusExit, nil
	}
	return StatusError, fmt.Errorf("%w: %d", ErrIllegalOpcode, opcode)
}

// blockDuration samples the number of cycles a blocking I/O takes.
func (s *Service) blockDuration() int {
	return int(float64(s.config.IOMin) + float64(s.config.IODev)*math.Abs(s.random.NormFloat64()))
}

func (s *Service) terminate(ctx context.Context, p *process.Descriptor, status Status, cause error) {
	s.scheduler.RemoveProcess(p)

	recordStatus, reason := process.StatusExited, ""
	if status == StatusError {
		recordStatus = process.StatusFailed
		if cause != nil {
			reason = cause.Error()
		}
		s.logger.Error("process exiting on run-time error", slog.Int("process", p.ID), slog.Int("tick", s.ticks), logger.ErrAttr(cause))
	} else {
		s.logger.Info("process exiting", slog.Int("process", p.ID), slog.Int("tick", s.ticks))
	}
	s.span.Event("process."+recordStatus, map[string]int{"process.id": p.ID, "tick": s.ticks})

	if s.records == nil {
		return
	}
	record := process.NewRecord(p, recordStatus, reason, s.ticks, clock.Now())
	if err := s.records.Save(ctx, record); err != nil {
		s.logger.Error("failed to save process record", slog.Int("process", p.ID), logger.ErrAttr(err))
	}
}
