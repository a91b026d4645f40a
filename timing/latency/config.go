package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for each instruction class.
// Values model a simple in-order RISC-V core.
type TimingConfig struct {
	// ALULatency is the execution latency for integer arithmetic, logic,
	// shifts, compares and upper-immediate instructions. Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// BranchLatency is the base execution latency for conditional branches
	// and jumps. Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// BranchMispredictPenalty is added when the branch predictor got the
	// direction or the target of a branch or jump wrong. Default: 2 cycles.
	BranchMispredictPenalty uint64 `json:"branch_mispredict_penalty"`

	// LoadLatency is the load-to-use latency, not counting the data cache.
	// Default: 2 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency for store operations. Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// MultiplyLatency is the latency for MUL, MULH* and MULW.
	// Default: 3 cycles.
	MultiplyLatency uint64 `json:"multiply_latency"`

	// DivideLatency is the latency for DIV, REM and their variants.
	// Default: 20 cycles.
	DivideLatency uint64 `json:"divide_latency"`

	// FPLatency is the latency for single-precision add, subtract,
	// multiply, compare, convert and move. Default: 4 cycles.
	FPLatency uint64 `json:"fp_latency"`

	// FPFusedLatency is the latency for fused multiply-add.
	// Default: 5 cycles.
	FPFusedLatency uint64 `json:"fp_fused_latency"`

	// FPDivSqrtLatency is the latency for FDIV.S and FSQRT.S.
	// Default: 16 cycles.
	FPDivSqrtLatency uint64 `json:"fp_div_sqrt_latency"`

	// CSRLatency is the latency for Zicsr instructions. Default: 1 cycle.
	CSRLatency uint64 `json:"csr_latency"`

	// SystemLatency is the latency for ECALL, EBREAK, the trap returns,
	// WFI and the fences. Default: 1 cycle.
	SystemLatency uint64 `json:"system_latency"`

	// TrapPenalty is added whenever a retirement ends in a trap.
	// Default: 4 cycles.
	TrapPenalty uint64 `json:"trap_penalty"`
}

// DefaultTimingConfig returns a TimingConfig with the default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:              1,
		BranchLatency:           1,
		BranchMispredictPenalty: 2,
		LoadLatency:             2,
		StoreLatency:            1,
		MultiplyLatency:         3,
		DivideLatency:           20,
		FPLatency:               4,
		FPFusedLatency:          5,
		FPDivSqrtLatency:        16,
		CSRLatency:              1,
		SystemLatency:           1,
		TrapPenalty:             4,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from
// the file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that every execution latency is non-zero.
func (c *TimingConfig) Validate() error {
	checks := []struct {
		name  string
		value uint64
	}{
		{"alu_latency", c.ALULatency},
		{"branch_latency", c.BranchLatency},
		{"load_latency", c.LoadLatency},
		{"store_latency", c.StoreLatency},
		{"multiply_latency", c.MultiplyLatency},
		{"divide_latency", c.DivideLatency},
		{"fp_latency", c.FPLatency},
		{"fp_fused_latency", c.FPFusedLatency},
		{"fp_div_sqrt_latency", c.FPDivSqrtLatency},
		{"csr_latency", c.CSRLatency},
		{"system_latency", c.SystemLatency},
	}

	for _, check := range checks {
		if check.value == 0 {
			return fmt.Errorf("%s must be > 0", check.name)
		}
	}

	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
