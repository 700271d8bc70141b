package metrics

import "fmt"

// Sample is one tick of synthetic system health.
type Sample struct {
	CPU     float64 `yaml:"cpu" json:"cpu"`
	Memory  float64 `yaml:"memory" json:"memory"`
	Errors  int     `yaml:"errors" json:"errors"`
	Network float64 `yaml:"network" json:"network"`
}

func (s Sample) String() string {
	return fmt.Sprintf("cpu=%.1f%% mem=%.1f%% err=%d net=%.1f", s.CPU, s.Memory, s.Errors, s.Network)
}

const (
	MinCPU    = 5.0
	MaxCPU    = 95.0
	MinMemory = 10.0
	MaxMemory = 90.0

	// NetworkSpike is the throughput a burst jumps to.
	NetworkSpike = 200.0

	// StressCPU is the cpu level above which errors start to accumulate.
	StressCPU = 80.0
)

// DefaultSample is the state a fresh Source starts from.
var DefaultSample = Sample{CPU: 20, Memory: 30, Errors: 0, Network: 10}
