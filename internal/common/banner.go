package common

import (
	"fmt"

	"github.com/ternarybob/banner"
)

// PrintBanner prints the startup banner for the HTTP server.
func PrintBanner(config *Config, version string) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorCyan).
		SetWidth(60)

	b.PrintTopLine()
	b.PrintCenteredText("SCRUTOR")
	b.PrintCenteredText("Filing extraction & forensic scoring")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", version, 10)
	b.PrintKeyValue("Address", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port), 10)
	b.PrintKeyValue("Storage", config.Storage.Type, 10)
	b.PrintKeyValue("Market", config.Market.Provider, 10)
	if config.Scheduler.Enabled {
		b.PrintKeyValue("Schedule", config.Scheduler.Schedule, 10)
	}
	b.PrintBottomLine()
}
