package scan

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concretekit/concrete/internal/model"
)

func scanSrc(t *testing.T, files map[string]string) (*model.Package, []Diagnostic) {
	t.Helper()
	fset := token.NewFileSet()
	var parsed []*ast.File
	for name, src := range files {
		f, err := parser.ParseFile(fset, name, src, parser.ParseComments)
		require.NoError(t, err)
		parsed = append(parsed, f)
	}
	return New(fset).Scan("trading", "github.com/acme/trading", "github.com/acme/trading", parsed)
}

const unitEnumSrc = `package trading

//go:concrete:enum
type Exchange int

const (
	//go:concrete:type="./internal/exchanges.Binance"
	ExchangeBinance Exchange = iota
	//go:concrete:type="./internal/exchanges.Okx"
	ExchangeOkx
)

//go:concrete:dispatch="enums=Exchange,func=RunTrading"

func RunTrading[T any](symbol string) error { return nil }
`

func TestScanUnitEnum(t *testing.T) {
	pkg, diags := scanSrc(t, map[string]string{"trading.go": unitEnumSrc})
	require.Empty(t, diags)
	require.Len(t, pkg.Enums, 1, spew.Sdump(pkg))

	e := pkg.Enums[0]
	assert.Equal(t, "Exchange", e.Name)
	assert.Equal(t, model.ModeUnit, e.Mode)
	assert.False(t, e.HasPayload())
	require.Len(t, e.Variants, 2)
	assert.Equal(t, "Binance", e.Variants[0].Name)
	assert.Equal(t, "ExchangeBinance", e.Variants[0].Const)
	assert.Equal(t, "./internal/exchanges.Binance", e.Variants[0].Type.String())
	assert.Nil(t, e.Variants[0].Payload)
	assert.Equal(t, "Okx", e.Variants[1].Name)

	require.Len(t, pkg.Dispatches, 1)
	d := pkg.Dispatches[0]
	assert.Equal(t, []string{"Exchange"}, d.Enums)
	assert.Equal(t, "RunTrading", d.Func)
	assert.False(t, d.Combined())

	assert.Contains(t, pkg.Funcs, "RunTrading")
}

const configEnumSrc = `package trading

//go:concrete:enum="config"
type ExchangeKind int

const (
	//go:concrete:type="./internal/exchanges.Binance,config=./internal/exchanges.BinanceConfig"
	ExchangeKindBinance ExchangeKind = iota
	//go:concrete:type="./internal/exchanges.Okx"
	ExchangeKindOkx
)
`

func TestScanConfigEnum(t *testing.T) {
	pkg, diags := scanSrc(t, map[string]string{"trading.go": configEnumSrc})
	require.Empty(t, diags)
	require.Len(t, pkg.Enums, 1)

	e := pkg.Enums[0]
	assert.Equal(t, model.ModeConfig, e.Mode)
	assert.Equal(t, "ExchangeConfig", e.UnionName)
	assert.True(t, e.HasPayload())
	require.Len(t, e.Variants, 2)
	require.NotNil(t, e.Variants[0].Payload)
	assert.Equal(t, "./internal/exchanges.BinanceConfig", e.Variants[0].Payload.String())
	assert.Nil(t, e.Variants[1].Payload)
}

func TestScanUnionNameOverride(t *testing.T) {
	src := `package trading

//go:concrete:enum="config,name=Venue"
type ExchangeKind int

const (
	//go:concrete:type="./internal/exchanges.Binance"
	ExchangeKindBinance ExchangeKind = iota
)
`
	pkg, diags := scanSrc(t, map[string]string{"trading.go": src})
	require.Empty(t, diags)
	require.Len(t, pkg.Enums, 1)
	assert.Equal(t, "Venue", pkg.Enums[0].UnionName)
}

func TestScanMissingTagAbortsEnumOnly(t *testing.T) {
	src := `package trading

//go:concrete:enum
type Exchange int

const (
	ExchangeBinance Exchange = iota
)

//go:concrete:enum
type Strategy int

const (
	//go:concrete:type="./internal/strategies.Grid"
	StrategyGrid Strategy = iota
)
`
	pkg, diags := scanSrc(t, map[string]string{"trading.go": src})
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Msg, "enum variant `ExchangeBinance` is missing")
	assert.Contains(t, diags[0].String(), "trading.go:7")

	// The broken enum is dropped; its sibling survives.
	require.Len(t, pkg.Enums, 1)
	assert.Equal(t, "Strategy", pkg.Enums[0].Name)
}

func TestScanDuplicateTag(t *testing.T) {
	src := `package trading

//go:concrete:enum
type Exchange int

const (
	//go:concrete:type="./internal/exchanges.Binance"
	//go:concrete:type="./internal/exchanges.Okx"
	ExchangeBinance Exchange = iota
)
`
	pkg, diags := scanSrc(t, map[string]string{"trading.go": src})
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Msg, "carries 2")
	assert.Empty(t, pkg.Enums)
}

func TestScanNonIntegerEnum(t *testing.T) {
	src := `package trading

//go:concrete:enum
type Exchange struct{}
`
	pkg, diags := scanSrc(t, map[string]string{"trading.go": src})
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Msg, "can only be derived for enums")
	assert.Empty(t, pkg.Enums)
}

func TestScanPayloadOnUnitEnum(t *testing.T) {
	src := `package trading

//go:concrete:enum
type Exchange int

const (
	//go:concrete:type="./internal/exchanges.Binance,config=./internal/exchanges.BinanceConfig"
	ExchangeBinance Exchange = iota
)
`
	pkg, diags := scanSrc(t, map[string]string{"trading.go": src})
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Msg, "not in config mode")
	assert.Empty(t, pkg.Enums)
}

func TestScanBadTypePath(t *testing.T) {
	src := `package trading

//go:concrete:enum
type Exchange int

const (
	//go:concrete:type="./internal/exchanges"
	ExchangeBinance Exchange = iota
)
`
	_, diags := scanSrc(t, map[string]string{"trading.go": src})
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Msg, "ExchangeBinance")
	assert.Contains(t, diags[0].Msg, "./internal/exchanges")
}

func TestScanDispatchDiagnostics(t *testing.T) {
	src := `package trading

//go:concrete:dispatch="enums=A;B;C;D;E;F,func=Run"
//go:concrete:dispatch="enums=A"
`
	pkg, diags := scanSrc(t, map[string]string{"trading.go": src})
	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Msg, "at most 5")
	assert.Contains(t, diags[1].Msg, "missing func=")
	assert.Empty(t, pkg.Dispatches)
}

func TestScanSkipsGeneratedFiles(t *testing.T) {
	pkg, diags := scanSrc(t, map[string]string{"exchange.gen.go": unitEnumSrc})
	require.Empty(t, diags)
	assert.Empty(t, pkg.Enums)
	assert.Empty(t, pkg.Dispatches)
}

func TestScanZeroVariantEnum(t *testing.T) {
	src := `package trading

//go:concrete:enum
type Exchange int
`
	pkg, diags := scanSrc(t, map[string]string{"trading.go": src})
	require.Empty(t, diags)
	require.Len(t, pkg.Enums, 1)
	assert.Empty(t, pkg.Enums[0].Variants)
}
