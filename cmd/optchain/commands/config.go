package commands

import (
	"optchain-archive/internal/catalog"
	"optchain-archive/lib/telemetry"
	"path/filepath"
)

// Tickers are fetched in this order, which is also their order in every snapshot.
var Tickers = []string{"SPY", "QQQ", "DIA", "GLD"}

// DataDir receives the snapshot files and the catalog.
const DataDir = "downloaded_data"

// Config only covers operational knobs, what is archived is fixed above.
type Config struct {
	LogLevel          string           `json:"log_level"`
	CloudflareBypass  bool             `json:"cloudflare_bypass"`
	RequestsPerSecond float64          `json:"requests_per_second"`
	DumpDir           string           `json:"dump_dir"`
	Catalog           catalog.Config   `json:"catalog"`
	Telemetry         telemetry.Config `json:"telemetry"`
}

func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Catalog: catalog.Config{
			File: filepath.Join(DataDir, "catalog.db"),
		},
	}
}
