package main

import "time"

// Config holds the tunables for one bbqbench run.
type Config struct {
	BlockNum int
	SlotNum  int

	Scenario   string
	Producers  int
	Consumers  int
	Duration   time.Duration

	LogLevel    string
	Development bool
	MetricsAddr string
}

// DefaultConfig returns the values bbqbench uses when a flag is left
// unset.
func DefaultConfig() Config {
	return Config{
		BlockNum:    4,
		SlotNum:     1024,
		Scenario:    "mpmc",
		Producers:   4,
		Consumers:   4,
		Duration:    5 * time.Second,
		LogLevel:    "info",
		Development: false,
		MetricsAddr: ":9090",
	}
}
