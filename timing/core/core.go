// Package core provides a timing model layered over the emulator.
// It observes every retirement and estimates the cycles it costs from the
// latency table and the instruction and data cache models. Architectural
// state, including the cycle CSR, is never affected.
package core

import (
	"context"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/cache"
	"github.com/sarchlab/rvsim/timing/latency"
)

const cancelCheckInterval = 4096

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the estimated number of cycles spent.
	Cycles uint64
	// Instructions is the number of instructions retired, trapped ones
	// included.
	Instructions uint64
	// Traps is the number of retirements that ended in a trap or a trap
	// return.
	Traps uint64
	// Branches counts retired branches and jumps.
	Branches uint64
	// TakenBranches counts branches and jumps that redirected the PC.
	TakenBranches uint64
	// BranchMispredictions counts branches the predictor got wrong.
	BranchMispredictions uint64

	ICacheHits   uint64
	ICacheMisses uint64
	DCacheHits   uint64
	DCacheMisses uint64
}

// CPI returns cycles per instruction, or 0 before anything retired.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Option configures a Core.
type Option func(*Core)

// WithTimingConfig sets the latency table configuration.
func WithTimingConfig(config *latency.TimingConfig) Option {
	return func(c *Core) {
		c.table = latency.NewTableWithConfig(config)
	}
}

// WithICacheConfig sets the instruction cache configuration.
func WithICacheConfig(config cache.Config) Option {
	return func(c *Core) {
		c.icache = cache.New(config)
	}
}

// WithDCacheConfig sets the data cache configuration.
func WithDCacheConfig(config cache.Config) Option {
	return func(c *Core) {
		c.dcache = cache.New(config)
	}
}

// WithBranchPredictorConfig sets the branch predictor configuration.
func WithBranchPredictorConfig(config BranchPredictorConfig) Option {
	return func(c *Core) {
		c.predictor = NewBranchPredictor(config)
	}
}

// Core wraps an emulator with a cycle estimate.
type Core struct {
	emulator  *emu.Emulator
	table     *latency.Table
	icache    *cache.Cache
	dcache    *cache.Cache
	predictor *BranchPredictor
	stats     Stats
}

// NewCore creates a Core observing e.
func NewCore(e *emu.Emulator, opts ...Option) *Core {
	c := &Core{
		emulator:  e,
		table:     latency.NewTable(),
		icache:    cache.New(cache.DefaultL1IConfig()),
		dcache:    cache.New(cache.DefaultL1DConfig()),
		predictor: NewBranchPredictor(DefaultBranchPredictorConfig()),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Emulator returns the wrapped emulator.
func (c *Core) Emulator() *emu.Emulator {
	return c.emulator
}

// ICache returns the instruction cache model.
func (c *Core) ICache() *cache.Cache {
	return c.icache
}

// DCache returns the data cache model.
func (c *Core) DCache() *cache.Cache {
	return c.dcache
}

// BranchPredictor returns the branch predictor model.
func (c *Core) BranchPredictor() *BranchPredictor {
	return c.predictor
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return c.stats
}

// Step retires one instruction on the emulator and charges its cost.
func (c *Core) Step() emu.StepResult {
	result := c.emulator.Step()
	if result.Err != nil || (result.Inst == nil && result.Trap == nil) {
		return result
	}

	c.stats.Instructions++
	c.stats.Cycles += c.cost(result)

	return result
}

func (c *Core) cost(result emu.StepResult) uint64 {
	config := c.table.Config()

	fetch := c.icache.Read(result.PC)
	if fetch.Hit {
		c.stats.ICacheHits++
	} else {
		c.stats.ICacheMisses++
	}
	cycles := fetch.Latency + c.table.GetLatency(result.Inst)

	if result.Access.Valid {
		var access cache.AccessResult
		if result.Access.Write {
			access = c.dcache.Write(result.Access.Addr)
		} else {
			access = c.dcache.Read(result.Access.Addr)
		}

		if access.Hit {
			c.stats.DCacheHits++
		} else {
			c.stats.DCacheMisses++
		}
		cycles += access.Latency
	}

	if result.Trap != nil {
		c.stats.Traps++
		return cycles + config.TrapPenalty
	}

	if c.table.IsBranchOp(result.Inst) {
		cycles += c.resolveBranch(result.PC)
	}

	if result.Inst.Op == insts.OpFENCEI {
		c.icache.Flush()
	}

	return cycles
}

// resolveBranch trains the predictor with the branch retired at pc and
// returns the misprediction penalty, if any.
func (c *Core) resolveBranch(pc uint64) uint64 {
	next := c.emulator.Hart().PC.Read()
	taken := next != pc+4

	c.stats.Branches++
	if taken {
		c.stats.TakenBranches++
	}

	pred := c.predictor.Predict(pc)
	if c.predictor.Update(pc, pred, taken, next) {
		return 0
	}

	c.stats.BranchMispredictions++
	return c.table.Config().BranchMispredictPenalty
}

// Run steps until the emulator halts, fails or ctx is cancelled, and
// returns the halt result.
func (c *Core) Run(ctx context.Context) (uint64, error) {
	for n := 0; ; n++ {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}

		result := c.Step()
		if result.Err != nil {
			return 0, result.Err
		}
		if result.Halted {
			return result.Result, nil
		}
	}
}

// Reset clears the statistics, the caches and the branch predictor. The
// emulator is left untouched.
func (c *Core) Reset() {
	c.stats = Stats{}
	c.icache.Reset()
	c.dcache.Reset()
	c.predictor.Reset()
}
