package model

import "time"

// Instrument is a tagged variant: a common header plus exactly one
// kind-specific payload selected by Kind. The Delta Engine and Filter
// Evaluator never touch these fields directly — they operate on the flat
// field-map view produced by ToFieldMap/ApplyFieldMap below.
type Instrument struct {
	ID         string
	Kind       InstrumentKind
	Symbol     string
	Currency   string
	Sector     string
	Rating     string
	Status     InstrumentStatus
	LastUpdate time.Time

	Bond   *BondFields
	Swap   *SwapFields
	Future *FutureFields
	Option *OptionFields
}

// BondFields carries the fields specific to a fixed-coupon bond.
type BondFields struct {
	Price             float64
	Yield             float64
	BidPrice          float64
	AskPrice          float64
	Duration          float64
	Convexity         float64
	SpreadToBenchmark float64
	LastTradePrice    float64
	LastTradeSize     float64
	LastTradeTime     time.Time
	HasTrade          bool // gates whether trade fields are present on the wire
}

// SwapFields carries the fields specific to an interest-rate swap.
type SwapFields struct {
	SwapRate       float64
	BidRate        float64
	AskRate        float64
	FixedDV01      float64
	FloatingDV01   float64
	LastTradePrice float64
	LastTradeSize  float64
	LastTradeTime  time.Time
	HasTrade       bool
}

// FutureFields carries the fields specific to a futures contract.
type FutureFields struct {
	Price          float64
	ImpliedRate    float64
	OpenInterest   float64
	LastTradePrice float64
	LastTradeSize  float64
	LastTradeTime  time.Time
	HasTrade       bool
}

// OptionFields carries the fields specific to a listed option.
type OptionFields struct {
	UnderlyingID   string
	Strike         float64
	OptionType     OptionType
	Premium        float64
	ImpliedVol     float64
	Delta          float64
	Gamma          float64
	Theta          float64
	Vega           float64
	IntrinsicValue float64
	TimeValue      float64
	LastTradePrice float64
	LastTradeSize  float64
	LastTradeTime  time.Time
	HasTrade       bool
}

// Clone returns a deep copy of the instrument, suitable for use as the
// Delta Engine's published baseline or as an outward-facing snapshot.
func (i *Instrument) Clone() *Instrument {
	clone := *i
	if i.Bond != nil {
		b := *i.Bond
		clone.Bond = &b
	}
	if i.Swap != nil {
		s := *i.Swap
		clone.Swap = &s
	}
	if i.Future != nil {
		f := *i.Future
		clone.Future = &f
	}
	if i.Option != nil {
		o := *i.Option
		clone.Option = &o
	}
	return &clone
}

// Field names shared across the wire protocol, delta engine and filter
// evaluator. Keeping them as constants avoids typos scattered across
// three packages that must agree on spelling.
const (
	FieldID           = "id"
	FieldSymbol       = "symbol"
	FieldCurrency     = "currency"
	FieldSector       = "sector"
	FieldRating       = "rating"
	FieldStatus       = "status"
	FieldLastUpdate   = "lastUpdate"
	FieldSecurityType = "securityType"

	FieldPrice             = "price"
	FieldYield             = "yield"
	FieldBidPrice          = "bidPrice"
	FieldAskPrice          = "askPrice"
	FieldDuration          = "duration"
	FieldConvexity         = "convexity"
	FieldSpreadToBenchmark = "spreadToBenchmark"

	FieldSwapRate     = "swapRate"
	FieldBidRate      = "bidRate"
	FieldAskRate      = "askRate"
	FieldFixedDV01    = "fixedDV01"
	FieldFloatingDV01 = "floatingDV01"

	FieldImpliedRate  = "impliedRate"
	FieldOpenInterest = "openInterest"

	FieldUnderlyingID   = "underlyingId"
	FieldStrike         = "strike"
	FieldOptionType     = "optionType"
	FieldPremium        = "premium"
	FieldImpliedVol     = "impliedVol"
	FieldDelta          = "delta"
	FieldGamma          = "gamma"
	FieldTheta          = "theta"
	FieldVega           = "vega"
	FieldIntrinsicValue = "intrinsicValue"
	FieldTimeValue      = "timeValue"

	FieldLastTradePrice = "lastTradePrice"
	FieldLastTradeSize  = "lastTradeSize"
	FieldLastTradeTime  = "lastTradeTime"
)

// ToFieldMap flattens the instrument into the field-name -> value view the
// Delta Engine and Filter Evaluator operate on. Trade fields are included
// only when HasTrade is set on the kind payload, so an instrument that has
// never traded never carries trade fields on the wire.
func (i *Instrument) ToFieldMap() map[string]any {
	f := map[string]any{
		FieldID:           i.ID,
		FieldSecurityType: string(i.Kind),
		FieldSymbol:       i.Symbol,
		FieldCurrency:     i.Currency,
		FieldSector:       i.Sector,
		FieldRating:       i.Rating,
		FieldStatus:       string(i.Status),
		FieldLastUpdate:   i.LastUpdate,
	}

	switch i.Kind {
	case KindBond:
		b := i.Bond
		f[FieldPrice] = b.Price
		f[FieldYield] = b.Yield
		f[FieldBidPrice] = b.BidPrice
		f[FieldAskPrice] = b.AskPrice
		f[FieldDuration] = b.Duration
		f[FieldConvexity] = b.Convexity
		f[FieldSpreadToBenchmark] = b.SpreadToBenchmark
		if b.HasTrade {
			f[FieldLastTradePrice] = b.LastTradePrice
			f[FieldLastTradeSize] = b.LastTradeSize
			f[FieldLastTradeTime] = b.LastTradeTime
		}
	case KindSwap:
		s := i.Swap
		f[FieldSwapRate] = s.SwapRate
		f[FieldBidRate] = s.BidRate
		f[FieldAskRate] = s.AskRate
		f[FieldFixedDV01] = s.FixedDV01
		f[FieldFloatingDV01] = s.FloatingDV01
		if s.HasTrade {
			f[FieldLastTradePrice] = s.LastTradePrice
			f[FieldLastTradeSize] = s.LastTradeSize
			f[FieldLastTradeTime] = s.LastTradeTime
		}
	case KindFuture:
		fut := i.Future
		f[FieldPrice] = fut.Price
		f[FieldImpliedRate] = fut.ImpliedRate
		f[FieldOpenInterest] = fut.OpenInterest
		if fut.HasTrade {
			f[FieldLastTradePrice] = fut.LastTradePrice
			f[FieldLastTradeSize] = fut.LastTradeSize
			f[FieldLastTradeTime] = fut.LastTradeTime
		}
	case KindOption:
		o := i.Option
		f[FieldUnderlyingID] = o.UnderlyingID
		f[FieldStrike] = o.Strike
		f[FieldOptionType] = string(o.OptionType)
		f[FieldPremium] = o.Premium
		f[FieldImpliedVol] = o.ImpliedVol
		f[FieldDelta] = o.Delta
		f[FieldGamma] = o.Gamma
		f[FieldTheta] = o.Theta
		f[FieldVega] = o.Vega
		f[FieldIntrinsicValue] = o.IntrinsicValue
		f[FieldTimeValue] = o.TimeValue
		if o.HasTrade {
			f[FieldLastTradePrice] = o.LastTradePrice
			f[FieldLastTradeSize] = o.LastTradeSize
			f[FieldLastTradeTime] = o.LastTradeTime
		}
	}
	return f
}

// ToWireFieldMap is ToFieldMap with any time.Time values converted to epoch
// milliseconds, matching WireDelta's timestamp convention so initial-data
// and instrument-update frames agree on field representation.
func (i *Instrument) ToWireFieldMap() map[string]any {
	f := i.ToFieldMap()
	for k, v := range f {
		if t, ok := v.(time.Time); ok {
			f[k] = t.UnixMilli()
		}
	}
	return f
}

// ApplyFieldMap merge-updates the instrument from a field-name -> value map,
// used by the Instrument Store's update-via-merge operation and by delta
// round-trip tests. Unknown field names are ignored; type mismatches are
// ignored rather than returned as an error, since this is only ever called
// with maps produced by ToFieldMap or admin input already validated upstream.
func (i *Instrument) ApplyFieldMap(fields map[string]any) {
	for name, v := range fields {
		switch name {
		case FieldSymbol:
			i.Symbol, _ = v.(string)
		case FieldCurrency:
			i.Currency, _ = v.(string)
		case FieldSector:
			i.Sector, _ = v.(string)
		case FieldRating:
			i.Rating, _ = v.(string)
		case FieldStatus:
			if s, ok := v.(string); ok {
				i.Status = InstrumentStatus(s)
			}
		case FieldLastUpdate:
			if t, ok := v.(time.Time); ok {
				i.LastUpdate = t
			}
		}
		applyBondField(i.Bond, name, v)
		applySwapField(i.Swap, name, v)
		applyFutureField(i.Future, name, v)
		applyOptionField(i.Option, name, v)
	}
}

func applyBondField(b *BondFields, name string, v any) {
	if b == nil {
		return
	}
	switch name {
	case FieldPrice:
		b.Price, _ = v.(float64)
	case FieldYield:
		b.Yield, _ = v.(float64)
	case FieldBidPrice:
		b.BidPrice, _ = v.(float64)
	case FieldAskPrice:
		b.AskPrice, _ = v.(float64)
	case FieldDuration:
		b.Duration, _ = v.(float64)
	case FieldConvexity:
		b.Convexity, _ = v.(float64)
	case FieldSpreadToBenchmark:
		b.SpreadToBenchmark, _ = v.(float64)
	case FieldLastTradePrice:
		b.LastTradePrice, _ = v.(float64)
	case FieldLastTradeSize:
		b.LastTradeSize, _ = v.(float64)
	case FieldLastTradeTime:
		if t, ok := v.(time.Time); ok {
			b.LastTradeTime = t
		}
	}
}

func applySwapField(s *SwapFields, name string, v any) {
	if s == nil {
		return
	}
	switch name {
	case FieldSwapRate:
		s.SwapRate, _ = v.(float64)
	case FieldBidRate:
		s.BidRate, _ = v.(float64)
	case FieldAskRate:
		s.AskRate, _ = v.(float64)
	case FieldFixedDV01:
		s.FixedDV01, _ = v.(float64)
	case FieldFloatingDV01:
		s.FloatingDV01, _ = v.(float64)
	case FieldLastTradePrice:
		s.LastTradePrice, _ = v.(float64)
	case FieldLastTradeSize:
		s.LastTradeSize, _ = v.(float64)
	case FieldLastTradeTime:
		if t, ok := v.(time.Time); ok {
			s.LastTradeTime = t
		}
	}
}

func applyFutureField(fut *FutureFields, name string, v any) {
	if fut == nil {
		return
	}
	switch name {
	case FieldPrice:
		fut.Price, _ = v.(float64)
	case FieldImpliedRate:
		fut.ImpliedRate, _ = v.(float64)
	case FieldOpenInterest:
		fut.OpenInterest, _ = v.(float64)
	case FieldLastTradePrice:
		fut.LastTradePrice, _ = v.(float64)
	case FieldLastTradeSize:
		fut.LastTradeSize, _ = v.(float64)
	case FieldLastTradeTime:
		if t, ok := v.(time.Time); ok {
			fut.LastTradeTime = t
		}
	}
}

func applyOptionField(o *OptionFields, name string, v any) {
	if o == nil {
		return
	}
	switch name {
	case FieldUnderlyingID:
		o.UnderlyingID, _ = v.(string)
	case FieldStrike:
		o.Strike, _ = v.(float64)
	case FieldOptionType:
		if s, ok := v.(string); ok {
			o.OptionType = OptionType(s)
		}
	case FieldPremium:
		o.Premium, _ = v.(float64)
	case FieldImpliedVol:
		o.ImpliedVol, _ = v.(float64)
	case FieldDelta:
		o.Delta, _ = v.(float64)
	case FieldGamma:
		o.Gamma, _ = v.(float64)
	case FieldTheta:
		o.Theta, _ = v.(float64)
	case FieldVega:
		o.Vega, _ = v.(float64)
	case FieldIntrinsicValue:
		o.IntrinsicValue, _ = v.(float64)
	case FieldTimeValue:
		o.TimeValue, _ = v.(float64)
	case FieldLastTradePrice:
		o.LastTradePrice, _ = v.(float64)
	case FieldLastTradeSize:
		o.LastTradeSize, _ = v.(float64)
	case FieldLastTradeTime:
		if t, ok := v.(time.Time); ok {
			o.LastTradeTime = t
		}
	}
}
