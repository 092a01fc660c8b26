// Package model is the common vocabulary for the fan-out service — the
// instrument record, deltas, subscriptions, and predicate trees. It has no
// dependencies on other internal packages so it can be imported by every
// layer, from the simulator down to the transport adapter.
package model

// InstrumentKind discriminates the four supported instrument families.
type InstrumentKind string

const (
	KindBond   InstrumentKind = "Bond"
	KindSwap   InstrumentKind = "Swap"
	KindFuture InstrumentKind = "Future"
	KindOption InstrumentKind = "Option"
)

// InstrumentStatus tracks the lifecycle state of an instrument.
type InstrumentStatus string

const (
	StatusActive  InstrumentStatus = "ACTIVE"
	StatusHalted  InstrumentStatus = "HALTED"
	StatusMatured InstrumentStatus = "MATURED"
)

// OptionType distinguishes calls from puts.
type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// Scenario selects the market regime the tick generator applies.
type Scenario string

const (
	ScenarioNormal     Scenario = "normal"
	ScenarioHighVol    Scenario = "high_vol"
	ScenarioTrendingUp Scenario = "trending_up"
	ScenarioTrendingDn Scenario = "trending_down"
	ScenarioFlashEvent Scenario = "flash_event"
)

// TimeOfDay selects the volatility multiplier bucket. "auto" is resolved
// from the wall clock by the Tick Generator on each tick.
type TimeOfDay string

const (
	TimeMarketOpen  TimeOfDay = "market_open"
	TimeMorning     TimeOfDay = "morning"
	TimeLunch       TimeOfDay = "lunch"
	TimeAfternoon   TimeOfDay = "afternoon"
	TimeMarketClose TimeOfDay = "market_close"
	TimeAfterHours  TimeOfDay = "after_hours"
	TimeAuto        TimeOfDay = "auto"
)
