package engine

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/fairsim/internal/logger"
	"github.com/viant/fairsim/model/memory"
	"github.com/viant/fairsim/model/process"
	"github.com/viant/fairsim/model/program"
	"github.com/viant/fairsim/progress"
	"github.com/viant/fairsim/service/dao/record"
	"github.com/viant/fairsim/service/scheduler"
)

// fakeRandom replays draws, then keeps returning the last one.
type fakeRandom struct {
	draws  []int
	normal float64
}

func (f *fakeRandom) Intn(n int) int {
	if len(f.draws) == 0 {
		return n - 1
	}
	v := f.draws[0]
	if len(f.draws) > 1 {
		f.draws = f.draws[1:]
	}
	return v
}

func (f *fakeRandom) NormFloat64() float64 {
	return f.normal
}

type fixture struct {
	engine    *Service
	scheduler *scheduler.Service
	memory    *memory.Memory
	records   *record.Service
	tracker   *progress.Progress
}

// newFixture places each program in memory as a process of the given group.
func newFixture(t *testing.T, random Random, config Config, programs map[int][]int, order ...int) *fixture {
	t.Helper()
	f := &fixture{
		scheduler: scheduler.New(),
		memory:    memory.New(),
		records:   record.New(),
		tracker:   progress.New("test", nil),
	}
	for id, group := range order {
		words := programs[group]
		base, err := f.memory.Allocate(words)
		require.NoError(t, err)
		f.scheduler.AddProcess(process.New(id, group, base, len(words), 0, 0))
	}
	var err error
	f.engine, err = New(f.scheduler, f.memory,
		WithRandom(random),
		WithConfig(config),
		WithRecordDAO(f.records),
		WithProgress(f.tracker))
	require.NoError(t, err)
	return f
}

func singleProcess(t *testing.T, random Random, words ...int) *fixture {
	return newFixture(t, random, DefaultConfig(), map[int][]int{0: words}, 0)
}

func TestService_RunOneInst(t *testing.T) {
	testCases := []struct {
		name        string
		words       []int
		steps       int
		expect      Status
		expectErr   error
		expectIP    int
		randomDraws []int
	}{
		{name: "compute", words: []int{program.OpCompute}, steps: 1, expect: StatusContinue, expectIP: 1},
		{name: "block", words: []int{program.OpBlock}, steps: 1, expect: StatusBlock, expectIP: 1},
		{name: "exit", words: []int{program.OpExit}, steps: 1, expect: StatusExit, expectIP: 1},
		{name: "zero opcode", words: []int{0}, steps: 1, expect: StatusError, expectErr: ErrIllegalOpcode},
		{name: "opcode below branch range", words: []int{127}, steps: 1, expect: StatusError, expectErr: ErrIllegalOpcode},
		{name: "opcode above branch range", words: []int{229, 0, 0}, steps: 1, expect: StatusError, expectErr: ErrIllegalOpcode},
		{name: "run past end of window", words: []int{program.OpCompute}, steps: 2, expect: StatusError, expectErr: ErrAddress},
		{name: "branch missing destination", words: []int{150}, steps: 1, expect: StatusError, expectErr: ErrAddress},
		{name: "branch missing low byte", words: []int{150, 0}, steps: 1, expect: StatusError, expectErr: ErrAddress},
		{name: "branch taken", words: append(program.Branch(60, 0x0102), 3), steps: 1, expect: StatusContinue, expectIP: 258, randomDraws: []int{59}},
		{name: "branch not taken", words: append(program.Branch(60, 0), 3), steps: 1, expect: StatusContinue, expectIP: 3, randomDraws: []int{60}},
		{name: "branch to illegal destination", words: append(program.Branch(100, 500), 3), steps: 2, expect: StatusError, expectErr: ErrAddress, randomDraws: []int{0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := singleProcess(t, &fakeRandom{draws: tc.randomDraws}, tc.words...)
			f.engine.Start()
			var status Status
			var err error
			for i := 0; i < tc.steps; i++ {
				status, err = f.engine.RunOneInst()
			}
			assert.Equal(t, tc.expect, status)
			if tc.expectErr != nil {
				assert.True(t, errors.Is(err, tc.expectErr), "%v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expectIP, f.engine.cpu.instructionPointer)
		})
	}
}

func TestService_RunOneInstIdle(t *testing.T) {
	f := newFixture(t, &fakeRandom{}, DefaultConfig(), nil)
	status, err := f.engine.RunOneInst()
	assert.Equal(t, StatusError, status)
	assert.True(t, errors.Is(err, ErrNoProcess))
}

func TestService_BranchPercentage(t *testing.T) {
	testCases := []struct {
		name       string
		percentage int
		expectMin  int
		expectMax  int
	}{
		{name: "never", percentage: 0, expectMin: 0, expectMax: 0},
		{name: "always", percentage: 100, expectMin: 1000, expectMax: 1000},
		{name: "half", percentage: 50, expectMin: 400, expectMax: 600},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := singleProcess(t, NewRandom(42), append(program.Branch(tc.percentage, 0), program.OpExit)...)
			f.engine.Start()
			jumps := 0
			for i := 0; i < 1000; i++ {
				f.engine.cpu.instructionPointer = 0
				status, err := f.engine.RunOneInst()
				require.NoError(t, err)
				require.Equal(t, StatusContinue, status)
				if f.engine.cpu.instructionPointer == 0 {
					jumps++
				}
			}
			assert.GreaterOrEqual(t, jumps, tc.expectMin)
			assert.LessOrEqual(t, jumps, tc.expectMax)
		})
	}
}

func TestService_BranchReproducible(t *testing.T) {
	outcomes := func() []int {
		f := singleProcess(t, NewRandom(7), append(program.Branch(50, 0), program.OpExit)...)
		f.engine.Start()
		var ret []int
		for i := 0; i < 200; i++ {
			f.engine.cpu.instructionPointer = 0
			_, err := f.engine.RunOneInst()
			require.NoError(t, err)
			ret = append(ret, f.engine.cpu.instructionPointer)
		}
		return ret
	}
	assert.Equal(t, outcomes(), outcomes())
}

func TestService_ComputeThenExit(t *testing.T) {
	f := singleProcess(t, &fakeRandom{}, program.OpCompute, program.OpExit)
	ctx := context.Background()
	p := f.engine.Dispatch()
	require.NotNil(t, p)
	f.engine.started = true
	f.engine.timerLeft = DefaultConfig().TimerInterval

	f.engine.Tick(ctx)
	assert.Equal(t, 1, p.Utilization)
	assert.True(t, f.scheduler.HasProcesses())
	assert.Same(t, p, f.engine.Current())

	f.engine.Tick(ctx)
	assert.Equal(t, 2, p.Utilization)
	assert.False(t, f.scheduler.HasProcesses())
	assert.Nil(t, f.engine.Current())

	records, err := f.records.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, process.StatusExited, records[0].Status)
	assert.Equal(t, 2, records[0].Tick)
	assert.Equal(t, 2, records[0].Utilization)
}

func TestService_RunBlockThenIdle(t *testing.T) {
	f := singleProcess(t, &fakeRandom{normal: 0}, program.OpBlock, program.OpExit)
	require.NoError(t, f.engine.Run(context.Background()))

	snapshot := f.tracker.Snapshot()
	// tick 1 blocks for 50 cycles, the CPU idles until the timer interrupt at
	// tick 100 dispatches the process again, tick 101 exits.
	assert.Equal(t, 101, snapshot.Ticks)
	assert.Equal(t, 2, snapshot.Executed)
	assert.Equal(t, 99, snapshot.Idle)
	assert.Equal(t, 1, snapshot.Blocked)
	assert.Equal(t, 50, snapshot.BlockCycles)
	assert.Equal(t, 1, snapshot.Interrupts)
	assert.Equal(t, 1, snapshot.Exited)
	assert.Equal(t, 2, snapshot.Dispatches)
	assert.Equal(t, 101, f.engine.Ticks())
}

func TestService_BlockDuration(t *testing.T) {
	testCases := []struct {
		normal float64
		expect int
	}{
		{normal: 0, expect: 50},
		{normal: 1.234, expect: 173},
		{normal: -0.5, expect: 100},
		{normal: 0.0099, expect: 50},
	}
	for _, tc := range testCases {
		f := singleProcess(t, &fakeRandom{normal: tc.normal}, program.OpBlock)
		assert.Equal(t, tc.expect, f.engine.blockDuration())
	}
}

func TestService_BlockSwitchesProcess(t *testing.T) {
	programs := map[int][]int{
		0: {program.OpBlock, program.OpExit},
		1: {program.OpCompute, program.OpCompute, program.OpExit},
	}
	f := newFixture(t, &fakeRandom{normal: 0}, DefaultConfig(), programs, 0, 1)
	ctx := context.Background()

	f.engine.Tick(ctx)
	blocked, _ := f.scheduler.Process(0)
	assert.True(t, blocked.IsBlocked())
	require.NotNil(t, f.engine.Current())
	assert.Equal(t, 1, f.engine.Current().ID)

	for i := 0; i < 3; i++ {
		f.engine.Tick(ctx)
	}
	assert.Nil(t, f.engine.Current(), "only a blocked process remains")
	assert.Equal(t, 1, f.scheduler.Len())

	require.NoError(t, f.engine.Run(ctx))
	assert.False(t, f.scheduler.HasProcesses())
	records, err := f.records.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 4, records[1].Tick)
	assert.Equal(t, 2, records[0].Utilization)
}

func TestService_TimerPreemption(t *testing.T) {
	loop := append([]int{program.OpCompute}, program.Branch(100, 0)...)
	config := DefaultConfig()
	config.TimerInterval = 10
	f := newFixture(t, &fakeRandom{}, config, map[int][]int{0: loop, 1: loop}, 0, 1)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		f.engine.Tick(ctx)
	}
	p0, _ := f.scheduler.Process(0)
	p1, _ := f.scheduler.Process(1)
	assert.Equal(t, 10, p0.Utilization)
	assert.Equal(t, 0, p1.Utilization)
	assert.Same(t, p1, f.engine.Current())
	assert.Equal(t, 10, f.engine.TimerLeft())

	for i := 0; i < 30; i++ {
		f.engine.Tick(ctx)
	}
	assert.Equal(t, 20, p0.Utilization)
	assert.Equal(t, 20, p1.Utilization)
	assert.Equal(t, 41, f.scheduler.GroupUtilization(0)+f.scheduler.GroupUtilization(1)-1)
	assert.Equal(t, 4, f.tracker.Snapshot().Interrupts)
}

func TestService_ContextSwitchKeepsInstructionPointer(t *testing.T) {
	config := DefaultConfig()
	config.TimerInterval = 2
	programs := map[int][]int{
		0: {program.OpCompute, program.OpCompute, program.OpCompute, program.OpExit},
		1: {program.OpCompute, program.OpCompute, program.OpCompute, program.OpExit},
	}
	f := newFixture(t, &fakeRandom{}, config, programs, 0, 1)
	require.NoError(t, f.engine.Run(context.Background()))

	records, err := f.records.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, process.StatusExited, r.Status)
		assert.Equal(t, 4, r.Utilization)
	}
}

func TestService_RuntimeErrorTerminates(t *testing.T) {
	f := singleProcess(t, &fakeRandom{}, program.OpCompute, 9)
	require.NoError(t, f.engine.Run(context.Background()))

	records, err := f.records.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, process.StatusFailed, records[0].Status)
	assert.Contains(t, records[0].Reason, "illegal opcode")
	assert.Equal(t, 2, records[0].Utilization)
	assert.Equal(t, 1, f.tracker.Snapshot().Failed)
}

func TestService_RunCancelled(t *testing.T) {
	loop := program.Branch(100, 0)
	f := singleProcess(t, &fakeRandom{}, loop...)
	ctx, cancel := context.WithCancel(context.Background())
	f.tracker.OnChange(func(p progress.Progress) {
		if p.Ticks >= 5 {
			cancel()
		}
	})
	err := f.engine.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 5, f.engine.Ticks())
	assert.True(t, f.scheduler.HasProcesses())
}

func TestNew(t *testing.T) {
	_, err := New(nil, memory.New())
	assert.Error(t, err)
	_, err = New(scheduler.New(), nil)
	assert.Error(t, err)
	_, err = New(scheduler.New(), memory.New(), WithConfig(Config{}))
	assert.Error(t, err)
	srv, err := New(scheduler.New(), memory.New())
	require.NoError(t, err)
	assert.NotNil(t, srv.random)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "continue", StatusContinue.String())
	assert.Equal(t, "block", StatusBlock.String())
	assert.Equal(t, "exit", StatusExit.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "unknown", Status(0).String())
}

func TestService_DebugTrace(t *testing.T) {
	buf := &bytes.Buffer{}
	f := singleProcess(t, &fakeRandom{}, program.OpCompute, program.OpExit)
	f.engine.logger = logger.New(buf, "debug")
	f.engine.debug = true
	require.NoError(t, f.engine.Run(context.Background()))
	out := buf.String()
	assert.Contains(t, out, `"instruction":"compute"`)
	assert.Contains(t, out, `"instruction":"exit"`)
	assert.Contains(t, out, "process exiting")
}
