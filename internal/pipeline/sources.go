package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"spinelookup/internal/config"
	"spinelookup/internal/sources"
	"spinelookup/internal/sources/catalogue"
	"spinelookup/internal/sources/dnb"
	"spinelookup/internal/sources/googlebooks"
	"spinelookup/internal/sources/lobid"
	"spinelookup/internal/sources/openlibrary"
	"spinelookup/internal/sources/swisscovery"
)

// BuildSources instantiates the configured source adapters in priority
// order, each wrapped with the response cache when caching is enabled. An
// unknown source name is a configuration error.
func BuildSources(cfg config.Config, log *zap.SugaredLogger) ([]sources.Source, error) {
	var list []sources.Source

	for _, name := range cfg.Lookup.Priority {
		var src sources.Source

		switch name {
		case "swisscovery":
			src = swisscovery.New(cfg.Sources.SwisscoveryURL, log)
		case "googlebooks":
			src = googlebooks.New(cfg.Sources.GoogleBooksURL, cfg.Sources.GoogleBooksAPIKey, log)
		case "dnb":
			src = dnb.New(cfg.Sources.DNBURL, log)
		case "lobid":
			src = lobid.New(cfg.Sources.LobidURL, log)
		case "openlibrary":
			src = openlibrary.New(cfg.Sources.OpenLibraryURL, log)
		case "catalogue":
			if !cfg.Sources.Catalogue.Enabled {
				log.Infow("catalogue source disabled, skipping")
				continue
			}
			client, err := catalogue.New(cfg.Sources.Catalogue.Addresses, cfg.Sources.Catalogue.Index, log)
			if err != nil {
				return nil, err
			}
			src = client
		default:
			return nil, fmt.Errorf("unknown source %q in priority list", name)
		}

		if cfg.Lookup.CacheTTL > 0 {
			src = sources.NewCached(src, cfg.Lookup.CacheTTL)
		}
		list = append(list, src)
	}

	return list, nil
}
