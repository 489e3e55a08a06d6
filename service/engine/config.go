package engine

import "fmt"

// Config represents engine timing configuration, in cycles.
type Config struct {
	// TimerInterval is the number of cycles between timer interrupts.
	TimerInterval int `json:"timerInterval" yaml:"timerInterval" toml:"timerInterval"`
	// IOMin is the minimum duration of a blocking I/O.
	IOMin int `json:"ioMin" yaml:"ioMin" toml:"ioMin"`
	// IODev scales the absolute gaussian sample added to IOMin.
	IODev int `json:"ioDev" yaml:"ioDev" toml:"ioDev"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		TimerInterval: 100,
		IOMin:         50,
		IODev:         100,
	}
}

// Validate returns an error describing the first invalid setting.
func (c *Config) Validate() error {
	if c.TimerInterval <= 0 {
		return fmt.Errorf("engine.timerInterval must be > 0")
	}
	if c.IOMin < 0 || c.IODev < 0 {
		return fmt.Errorf("engine.ioMin and engine.ioDev must be >= 0")
	}
	return nil
}
