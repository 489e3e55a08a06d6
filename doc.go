// Package fairsim simulates a single-CPU machine running a fair-share
// scheduler.
//
// Programs are plain text images of integer words. They are placed in a flat
// simulated memory, turned into processes grouped by a user id and executed
// one instruction per tick by the engine, which the scheduler preempts on
// every timer interrupt. Processes and groups accumulate CPU utilization that
// lowers their priority, so CPU time is shared fairly between groups first,
// then between the processes of a group.
//
// The root package wires the pieces together:
//
//	cfg := fairsim.DefaultConfig()
//	cfg.Files = []*fairsim.File{{Path: "a.txt", Group: 1}, {Path: "b.txt", Group: 2}}
//	srv, _ := fairsim.New(cfg)
//	report, _ := srv.Run(ctx)
//	_ = report.Save(ctx, afs.New(), "report.json")
//
// Sub-packages:
//
//   - model/memory     flat word memory with a bump allocator
//   - model/program    program image codec and instruction set
//   - model/process    process descriptor and accounting record
//   - service/scheduler fair-share process selection
//   - service/loader   program loading
//   - service/engine   CPU, timer and I/O simulation
//   - service/dao      accounting record storage
package fairsim
