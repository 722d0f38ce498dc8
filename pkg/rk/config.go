package rk

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config gathers the compile-time options §6 enumerates. A real port pins
// these in an os_cfg.h at build time; this module keeps the same shape but
// loads them from YAML so a demo binary can be retargeted without a rebuild.
type Config struct {
	PrioMax      int  `yaml:"prio_max"`
	TickEn       bool `yaml:"tick_en"`
	DynTickEn    bool `yaml:"dyn_tick_en"`
	TickRateHz   int  `yaml:"tick_rate_hz"`

	RoundRobinEn      bool `yaml:"round_robin_en"`
	RoundRobinDflt    int  `yaml:"round_robin_dflt_quanta"`

	StkRedzoneEn    bool `yaml:"task_stk_redzone_en"`
	StkRedzoneDepth int  `yaml:"task_stk_redzone_depth"`

	MutexEn         bool `yaml:"mutex_en"`
	FlagEn          bool `yaml:"flag_en"`
	QEn             bool `yaml:"q_en"`
	SemEn           bool `yaml:"sem_en"`
	TaskQEn         bool `yaml:"task_q_en"`
	TaskSemAbortEn  bool `yaml:"task_sem_pend_abort_en"`
	TaskSuspendEn   bool `yaml:"task_suspend_en"`

	CalledFromISRChkEn  bool `yaml:"called_from_isr_chk_en"`
	ArgChkEn            bool `yaml:"arg_chk_en"`
	ObjTypeChkEn        bool `yaml:"obj_type_chk_en"`
	InvalidOSCallsChkEn bool `yaml:"invalid_os_calls_chk_en"`

	DbgEn bool `yaml:"dbg_en"`
}

// DefaultConfig mirrors the defaults a fresh Cfg/Template/os_cfg.h ships
// with: every optional service on, strict argument checking on, 1kHz tick.
func DefaultConfig() Config {
	return Config{
		PrioMax:             64,
		TickEn:              true,
		DynTickEn:           false,
		TickRateHz:          1000,
		RoundRobinEn:        true,
		RoundRobinDflt:      10,
		StkRedzoneEn:        true,
		StkRedzoneDepth:     8,
		MutexEn:             true,
		FlagEn:              true,
		QEn:                 true,
		SemEn:               true,
		TaskQEn:             true,
		TaskSemAbortEn:      true,
		TaskSuspendEn:       true,
		CalledFromISRChkEn:  true,
		ArgChkEn:            true,
		ObjTypeChkEn:        true,
		InvalidOSCallsChkEn: true,
		DbgEn:               false,
	}
}

// LoadConfig reads a YAML config file and overlays it on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("rk: read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("rk: parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate rejects configurations that can't produce a coherent kernel:
// PRIO_MAX must leave room for the idle task, and a round-robin default of
// zero would mean "use the default" recursively.
func (c Config) Validate() error {
	if c.PrioMax < 2 {
		return fmt.Errorf("rk: prio_max must be >= 2 (got %d)", c.PrioMax)
	}

	if c.TickRateHz <= 0 {
		return fmt.Errorf("rk: tick_rate_hz must be > 0 (got %d)", c.TickRateHz)
	}

	if c.RoundRobinEn && c.RoundRobinDflt <= 0 {
		return fmt.Errorf("rk: round_robin_dflt_quanta must be > 0 when round_robin_en is set")
	}

	return nil
}

// IdlePrio is the reserved priority of the permanently-ready idle task.
func (c Config) IdlePrio() Prio {
	return Prio(c.PrioMax - 1)
}
