package config

import "market-eye/src/models"

// -----------------------------------------------------------------------------

// DefaultUniverse returns the built-in instrument universe used when the
// configuration does not supply one. The seed values double as the offline
// fallback dataset: simulation walks prices starting from these.
func DefaultUniverse() []*models.MUniverseEntry {
	return []*models.MUniverseEntry{
		{Symbol: "NVDA", Last: 902.14, ChangePct: 3.42, Score: 92, VolMa: 4.8, Signal: models.SignalStrongBuy, Asset: models.AssetEquity, Sector: "Semis", Volume: 38120000},
		{Symbol: "AAPL", Last: 192.38, ChangePct: 0.82, Score: 71, VolMa: 1.2, Signal: models.SignalWait, Asset: models.AssetEquity, Sector: "Mega Cap", Volume: 71200000},
		{Symbol: "BTC/USD", Last: 64218.0, ChangePct: 1.18, Score: 69, VolMa: 2.2, Signal: models.SignalWait, Asset: models.AssetCrypto, Sector: "Crypto", Volume: 12500},
		{Symbol: "TSLA", Last: 238.09, ChangePct: -2.14, Score: 39, VolMa: 3.1, Signal: models.SignalSell, Asset: models.AssetEquity, Sector: "Auto", Volume: 46800000},
		{Symbol: "MSFT", Last: 402.01, ChangePct: 1.06, Score: 66, VolMa: 0.9, Signal: models.SignalWait, Asset: models.AssetEquity, Sector: "Mega Cap", Volume: 30100000},
		{Symbol: "AMD", Last: 168.44, ChangePct: 2.41, Score: 84, VolMa: 1.7, Signal: models.SignalBuy, Asset: models.AssetEquity, Sector: "Semis", Volume: 51200000},
		{Symbol: "META", Last: 488.61, ChangePct: -0.74, Score: 58, VolMa: 1.0, Signal: models.SignalWait, Asset: models.AssetEquity, Sector: "Mega Cap", Volume: 20900000},
		{Symbol: "COIN", Last: 224.2, ChangePct: 1.74, Score: 76, VolMa: 1.5, Signal: models.SignalWait, Asset: models.AssetEquity, Sector: "Crypto Proxy", Volume: 18200000},
	}
}
