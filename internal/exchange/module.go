package exchange

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("exchange",
		fx.Provide(
			NewBinance, // *Binance
		),
	)
}
