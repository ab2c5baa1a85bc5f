package models

// -----------------------------------------------------------------------------
// REST Collaborator Payloads (see src/restapi)
//
// Every one of these is optional at runtime: a missing or failing endpoint
// degrades the engine to last-known or simulated values, never crashes it.
// -----------------------------------------------------------------------------

// MClock is the market-open clock payload.
type MClock struct {
	IsOpen    bool   `json:"is_open"`
	Timestamp string `json:"timestamp"`
	NextOpen  string `json:"next_open,omitempty"`
	NextClose string `json:"next_close,omitempty"`
}

// -----------------------------------------------------------------------------

// MAccount is the account summary payload.
type MAccount struct {
	AUM       float64 `json:"aum"`
	PnL       float64 `json:"pnl"`
	CashRatio float64 `json:"cashRatio"`
	VaR       float64 `json:"var"`
	Exposure  float64 `json:"exposure"`
}

// -----------------------------------------------------------------------------

// MConnectivity is the upstream connectivity/health payload.
type MConnectivity struct {
	Status              string  `json:"alpacaStatus"`
	WSLatencyMS         float64 `json:"wsLatencyMs"`
	BuyingPower         float64 `json:"buyingPower"`
	BuyingPowerMultiple float64 `json:"buyingPowerMultiple"`
	DayTradesRemaining  int     `json:"dayTradesRemaining"`
	Feed                string  `json:"feed,omitempty"`
}

// -----------------------------------------------------------------------------

// MMarketRow is one row of the market universe snapshot endpoint.
type MMarketRow struct {
	Symbol    string      `json:"symbol"`
	Last      float64     `json:"last"`
	ChangePct float64     `json:"chgPct"`
	Score     int         `json:"score"`
	VolMa     float64     `json:"volMa"`
	Signal    MSignal     `json:"signal"`
	Asset     MAssetClass `json:"asset"`
	Sector    string      `json:"sector"`
	Volume    float64     `json:"volume"`
}

// -----------------------------------------------------------------------------

// MPosition is one open position.
type MPosition struct {
	Symbol string  `json:"symbol"`
	Cost   float64 `json:"cost"`
	Last   float64 `json:"last"`
	PnLPct float64 `json:"pnlPct"`
	Stop   float64 `json:"stop"`
}

// -----------------------------------------------------------------------------

// MStrategy is one strategy status line.
type MStrategy struct {
	Name      string  `json:"name"`
	PnL       float64 `json:"pnl"`
	Positions int     `json:"positions"`
	Status    string  `json:"status"`
}

// -----------------------------------------------------------------------------

// MPortfolioHistory is the equity history payload.
type MPortfolioHistory struct {
	Timestamp []int64   `json:"timestamp"`
	Equity    []float64 `json:"equity"`
	Timeframe string    `json:"timeframe,omitempty"`
}

// -----------------------------------------------------------------------------

// MAsset carries per-symbol metadata, notably borrow status.
type MAsset struct {
	Symbol       string `json:"symbol"`
	Shortable    bool   `json:"shortable"`
	EasyToBorrow bool   `json:"easy_to_borrow"`
}

// BorrowStatus summarizes borrowability for display: ETB, HTB or UNSHORTABLE.
func (a *MAsset) BorrowStatus() string {
	switch {
	case a.EasyToBorrow:
		return "ETB"
	case a.Shortable:
		return "HTB"
	default:
		return "UNSHORTABLE"
	}
}

// -----------------------------------------------------------------------------

// MBar is one historical bar. Upstream uses single-letter keys.
type MBar struct {
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
	Time   string  `json:"t"`
}
