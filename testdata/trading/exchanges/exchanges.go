package exchanges

type Binance struct{}

type Okx struct{}

type Bybit struct{}

// BinanceConfig is the per-variant payload carried by the config enum.
type BinanceConfig struct {
	APIKey    string
	APISecret string
}
