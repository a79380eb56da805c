package core

// StrategyType selects a wait-strategy implementation by name
type StrategyType string

const (
	// StrategyBlocking parks waiters on a lock and broadcast pair.
	// Lowest CPU usage, highest wake latency.
	StrategyBlocking StrategyType = "blocking"

	// StrategyYielding polls the cursor and yields the processor
	// between checks. Low latency at some CPU cost.
	StrategyYielding StrategyType = "yielding"

	// StrategyBusySpin polls the cursor in a tight loop without ever
	// yielding. Lowest latency; requires a dedicated core.
	StrategyBusySpin StrategyType = "busy-spin"
)
