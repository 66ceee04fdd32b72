// Package trading is the end-to-end generation fixture: two unit enums, one
// config enum, and the generic functions their dispatch directives target.
package trading

//go:concrete:enum
type Exchange int

const (
	//go:concrete:type="./exchanges.Binance"
	ExchangeBinance Exchange = iota
	//go:concrete:type="./exchanges.Okx"
	ExchangeOkx
	//go:concrete:type="./exchanges.Bybit"
	ExchangeBybit
)

//go:concrete:enum
type Strategy int

const (
	//go:concrete:type="./strategies.Grid"
	StrategyGrid Strategy = iota
	//go:concrete:type="./strategies.Momentum"
	StrategyMomentum
)

//go:concrete:enum="config"
type VenueKind int

const (
	//go:concrete:type="./exchanges.Binance,config=./exchanges.BinanceConfig"
	VenueKindBinance VenueKind = iota
	//go:concrete:type="./exchanges.Okx"
	VenueKindOkx
)

//go:concrete:dispatch="enums=Exchange,func=RunTrading"
//go:concrete:dispatch="enums=Exchange;Strategy,func=RunSystem"
//go:concrete:dispatch="enums=VenueKind,func=Connect"

func RunTrading[E any](symbol string) error { return nil }

func RunSystem[E any, S any](symbol string, budget float64) error { return nil }

func Connect[E any, C any](cfg C, timeout int) error { return nil }
