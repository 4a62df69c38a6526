// README: Transit source selection; builds the configured departures source and, when it can, a stop locator.
package transit

import (
	"mrx/internal/config"
	"mrx/internal/modules/departures"
	"mrx/internal/modules/stops"
	"mrx/internal/transit/gtfsrt"
	"mrx/internal/transit/trias"
)

// New returns the source for cfg.Source. The locator is nil for sources that cannot resolve stop coordinates.
func New(cfg config.TransitConfig) (departures.Source, stops.Locator) {
	if cfg.Source == "gtfsrt" {
		return gtfsrt.NewClient(cfg.FeedURL, cfg.MinRefresh), nil
	}
	client := trias.NewClient(cfg.Endpoint, cfg.AccessToken, cfg.Results)
	return client, client
}
