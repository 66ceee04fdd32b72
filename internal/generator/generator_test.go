package generator

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concretekit/concrete/internal/config"
	"github.com/concretekit/concrete/internal/model"
	"github.com/concretekit/concrete/internal/scan"
)

func scanPkg(t *testing.T, src string) *model.Package {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "trading.go", src, parser.ParseComments)
	require.NoError(t, err)
	pkg, diags := scan.New(fset).Scan("trading", "github.com/acme/trading", "github.com/acme/trading", []*ast.File{f})
	require.Empty(t, diags, spew.Sdump(diags))
	return pkg
}

func genFiles(t *testing.T, src string) []File {
	t.Helper()
	files, err := New(config.Default()).Files(scanPkg(t, src))
	require.NoError(t, err)
	return files
}

// requireValidGo parses the generated content so structural mistakes fail
// loudly instead of surfacing in user builds.
func requireValidGo(t *testing.T, f File) {
	t.Helper()
	_, err := parser.ParseFile(token.NewFileSet(), f.Name, f.Content, 0)
	require.NoError(t, err, "generated file %s is not valid Go:\n%s", f.Name, f.Content)
}

const unitSrc = `package trading

//go:concrete:enum
type Exchange int

const (
	//go:concrete:type="./internal/exchanges.Binance"
	ExchangeBinance Exchange = iota
	//go:concrete:type="./internal/exchanges.Okx"
	ExchangeOkx
)

//go:concrete:dispatch="enums=Exchange,func=RunTrading"

func RunTrading[T any](symbol string, amounts ...float64) error { return nil }
`

func TestGenerateUnitEnum(t *testing.T) {
	files := genFiles(t, unitSrc)
	require.Len(t, files, 2)

	enumFile := files[0]
	assert.Equal(t, "exchange.gen.go", enumFile.Name)
	requireValidGo(t, enumFile)
	content := string(enumFile.Content)
	assert.Contains(t, content, "// Code generated by concretegen. DO NOT EDIT.")
	assert.Contains(t, content, `"github.com/acme/trading/internal/exchanges"`)
	assert.Contains(t, content, "func (e Exchange) ConcreteType() reflect.Type")
	assert.Contains(t, content, "concrete.TypeOf[exchanges.Binance]()")
	assert.Contains(t, content, "concrete.NameOf[exchanges.Okx]()")
	assert.Contains(t, content, "type ExchangeVisitor[R any] interface")
	assert.Contains(t, content, "VisitBinance(exchanges.Binance) R")
	assert.Contains(t, content, "func DispatchExchange[R any](e Exchange, v ExchangeVisitor[R]) R")
	assert.Contains(t, content, `panic(fmt.Sprintf("Exchange: unknown variant %v", e))`)
	assert.NotContains(t, content, "Config()")

	bridgeFile := files[1]
	assert.Equal(t, "dispatch_exchange_run_trading.gen.go", bridgeFile.Name)
	requireValidGo(t, bridgeFile)
	content = string(bridgeFile.Content)
	assert.Contains(t, content, "func RunTradingExchange(e1 Exchange, symbol string, amounts ...float64) error")
	assert.Contains(t, content, "return RunTrading[exchanges.Binance](symbol, amounts...)")
	assert.Contains(t, content, "return RunTrading[exchanges.Okx](symbol, amounts...)")
}

const configSrc = `package trading

//go:concrete:enum="config"
type ExchangeKind int

const (
	//go:concrete:type="./internal/exchanges.Binance,config=./internal/exchanges.BinanceConfig"
	ExchangeKindBinance ExchangeKind = iota
	//go:concrete:type="./internal/exchanges.Okx"
	ExchangeKindOkx
)

//go:concrete:dispatch="enums=ExchangeKind,func=Connect"

func Connect[T any, C any](cfg C, timeout int) error { return nil }
`

func TestGenerateConfigEnum(t *testing.T) {
	files := genFiles(t, configSrc)
	require.Len(t, files, 2)

	enumFile := files[0]
	assert.Equal(t, "exchange_config.gen.go", enumFile.Name)
	requireValidGo(t, enumFile)
	content := string(enumFile.Content)
	assert.Contains(t, content, "type ExchangeConfig struct")
	assert.Contains(t, content, "payloadBinance exchanges.BinanceConfig")
	assert.NotContains(t, content, "payloadOkx")
	assert.Contains(t, content, "func NewExchangeConfigBinance(payload exchanges.BinanceConfig) ExchangeConfig")
	assert.Contains(t, content, "func NewExchangeConfigOkx() ExchangeConfig")
	assert.Contains(t, content, "func (c ExchangeConfig) Kind() ExchangeKind")
	assert.Contains(t, content, "func (c ExchangeConfig) Config() any")
	assert.Contains(t, content, "return concrete.Unit{}")
	assert.Contains(t, content, "func (e ExchangeKind) ConcreteType() reflect.Type")
	assert.Contains(t, content, "func (c ExchangeConfig) ConcreteType() reflect.Type")
	assert.Contains(t, content, "VisitBinance(exchanges.Binance, exchanges.BinanceConfig) R")
	assert.Contains(t, content, "VisitOkx(exchanges.Okx, concrete.Unit) R")
	assert.Contains(t, content, "func DispatchExchangeKind[R any](c ExchangeConfig, v ExchangeKindVisitor[R]) R")

	bridgeFile := files[1]
	assert.Equal(t, "dispatch_exchange_kind_connect.gen.go", bridgeFile.Name)
	requireValidGo(t, bridgeFile)
	content = string(bridgeFile.Content)
	assert.Contains(t, content, "func ConnectExchangeKind(cfg ExchangeConfig, timeout int) error")
	assert.Contains(t, content, "switch cfg.Kind()")
	assert.Contains(t, content, "return Connect[exchanges.Binance, exchanges.BinanceConfig](cfg.payloadBinance, timeout)")
	assert.Contains(t, content, "return Connect[exchanges.Okx, concrete.Unit](concrete.Unit{}, timeout)")
}

const combinedSrc = `package trading

//go:concrete:enum
type Exchange int

const (
	//go:concrete:type="./internal/exchanges.Binance"
	ExchangeBinance Exchange = iota
	//go:concrete:type="./internal/exchanges.Okx"
	ExchangeOkx
)

//go:concrete:enum
type Strategy int

const (
	//go:concrete:type="./internal/strategies.Grid"
	StrategyGrid Strategy = iota
	//go:concrete:type="./internal/strategies.Momentum"
	StrategyMomentum
)

//go:concrete:dispatch="enums=Exchange;Strategy,func=RunSystem"

func RunSystem[E any, S any](symbol string) error { return nil }
`

func TestGenerateCombinedDispatch(t *testing.T) {
	files := genFiles(t, combinedSrc)
	require.Len(t, files, 3)

	bridgeFile := files[2]
	assert.Equal(t, "dispatch_exchange_strategy_run_system.gen.go", bridgeFile.Name)
	requireValidGo(t, bridgeFile)
	content := string(bridgeFile.Content)
	assert.Contains(t, content, "func RunSystemExchangeStrategy(e1 Exchange, e2 Strategy, symbol string) error")
	assert.Contains(t, content, "switch e1")
	assert.Contains(t, content, "switch e2")
	assert.Contains(t, content, "return RunSystem[exchanges.Binance, strategies.Grid](symbol)")
	assert.Contains(t, content, "return RunSystem[exchanges.Okx, strategies.Momentum](symbol)")
	assert.Contains(t, content, `panic(fmt.Sprintf("Strategy: unknown variant %v", e2))`)
}

func TestGenerateZeroVariantEnum(t *testing.T) {
	src := `package trading

//go:concrete:enum
type Exchange int
`
	files := genFiles(t, src)
	require.Len(t, files, 1)
	requireValidGo(t, files[0])
	assert.NotContains(t, string(files[0].Content), "concrete.TypeOf")
}

func TestGenerateVoidResultBridge(t *testing.T) {
	src := `package trading

//go:concrete:enum
type Exchange int

const (
	//go:concrete:type="./internal/exchanges.Binance"
	ExchangeBinance Exchange = iota
)

//go:concrete:dispatch="enums=Exchange,func=Warm"

func Warm[T any]() {}
`
	files := genFiles(t, src)
	require.Len(t, files, 2)
	requireValidGo(t, files[1])
	content := string(files[1].Content)
	assert.Contains(t, content, "func WarmExchange(e1 Exchange) {")
	assert.Contains(t, content, "Warm[exchanges.Binance]()")
}

func TestGenerateErrors(t *testing.T) {
	base := `package trading

//go:concrete:enum
type Exchange int

const (
	//go:concrete:type="./internal/exchanges.Binance"
	ExchangeBinance Exchange = iota
)

//go:concrete:enum="config"
type VenueKind int

const (
	//go:concrete:type="./internal/exchanges.Okx"
	VenueKindOkx VenueKind = iota
)

func Run[T any](s string) error  { return nil }
func Leak[T any](v T) error      { return nil }
func Both[A any, B any]() error  { return nil }
`
	cases := map[string]string{
		`//go:concrete:dispatch="enums=Missing,func=Run"`:             "no enum named Missing",
		`//go:concrete:dispatch="enums=Exchange,func=Missing"`:        "no function named Missing",
		`//go:concrete:dispatch="enums=Exchange,func=Both"`:           "type parameters",
		`//go:concrete:dispatch="enums=Exchange,func=Leak"`:           "references type parameter T",
		`//go:concrete:dispatch="enums=Exchange;VenueKind,func=Both"`: "combined dispatch",
	}
	for directive, want := range cases {
		pkg := scanPkg(t, base+"\n"+directive+"\n")
		_, err := New(config.Default()).Files(pkg)
		require.Error(t, err, directive)
		assert.Contains(t, err.Error(), want, directive)
	}
}

func TestGenerateConfiguredAliasesAndSuffix(t *testing.T) {
	src := `package trading

//go:concrete:enum
type Exchange int

const (
	//go:concrete:type="venues.Binance"
	ExchangeBinance Exchange = iota
)
`
	cfg := &config.Config{
		Output:   config.Output{Suffix: "_concrete.gen.go"},
		Packages: []config.PackageAlias{{Path: "github.com/acme/venues"}},
	}
	files, err := New(cfg).Files(scanPkg(t, src))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "exchange_concrete.gen.go", files[0].Name)
	content := string(files[0].Content)
	assert.Contains(t, content, `"github.com/acme/venues"`)
	assert.Contains(t, content, "concrete.TypeOf[venues.Binance]()")
}
