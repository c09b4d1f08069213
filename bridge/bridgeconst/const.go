package bridgeconst

const (
	// TickerSymbol is the display symbol of the bridged asset.
	TickerSymbol = "TLINERA"

	// Decimals is the precision of the bridged asset.
	Decimals = 18
)
