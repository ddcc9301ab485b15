package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every tuning knob of the identification pipeline. The
// numeric thresholds started as empirical values and are expected to be
// recalibrated, so none of them is a hardcoded constant anywhere else.
type Config struct {
	LogLevel      string   `yaml:"log_level"`
	Languages     []string `yaml:"languages"`
	DictionaryDir string   `yaml:"dictionary_dir"`

	Correction CorrectionConfig `yaml:"correction"`
	Lookup     LookupConfig     `yaml:"lookup"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Sources    SourcesConfig    `yaml:"sources"`
}

// CorrectionConfig tunes the spelling corrector and its over-correction guard.
type CorrectionConfig struct {
	// MaxEditDistance is the largest edit distance a dictionary correction
	// may bridge.
	MaxEditDistance int `yaml:"max_edit_distance"`
	// GuardMaxDistance is the normalized edit distance (distance / length)
	// above which a closest-title match is considered too far and discarded.
	GuardMaxDistance float64 `yaml:"guard_max_distance"`
	// GuardMinJaccard is the minimum word overlap a closest-title match must
	// share with the corrected text to be accepted.
	GuardMinJaccard float64 `yaml:"guard_min_jaccard"`
}

// LookupConfig tunes the multi-source orchestration.
type LookupConfig struct {
	// Priority is the ordered list of source names to query.
	Priority []string `yaml:"priority"`
	// MaxSources caps how many sources may contribute records to one lookup.
	// Sources that return nothing or fail do not count, so fallback always
	// reaches the sources further down the priority list.
	MaxSources int `yaml:"max_sources"`
	// MaxRecords caps the total number of candidate records gathered.
	MaxRecords int `yaml:"max_records"`
	// SourceTimeout bounds each individual source call.
	SourceTimeout time.Duration `yaml:"source_timeout"`
	// StopOnValidated stops gathering as soon as one record already passes
	// the validation threshold. Author-name contamination can produce false
	// confident matches, so this is a policy switch rather than a given.
	StopOnValidated bool `yaml:"stop_on_validated"`
	// CacheTTL is how long source responses are cached. Zero disables caching.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// RankingConfig tunes candidate scoring and validation.
type RankingConfig struct {
	// MinValidScore is the title similarity a record must reach to be
	// flagged as validated.
	MinValidScore float64 `yaml:"min_valid_score"`
	// MaxAlternatives caps how many runner-up records are returned.
	MaxAlternatives int `yaml:"max_alternatives"`
	// AuthorBonus is added when a record author matches a preserved name.
	AuthorBonus float64 `yaml:"author_bonus"`
	// PriorityBonus is the maximum tie-break bonus for high-priority sources.
	PriorityBonus float64 `yaml:"priority_bonus"`
}

// SourcesConfig carries per-adapter settings. Base URLs are overridable so
// tests and mirrors can point the adapters elsewhere.
type SourcesConfig struct {
	GoogleBooksAPIKey string `yaml:"google_books_api_key"`

	SwisscoveryURL string `yaml:"swisscovery_url"`
	GoogleBooksURL string `yaml:"google_books_url"`
	DNBURL         string `yaml:"dnb_url"`
	LobidURL       string `yaml:"lobid_url"`
	OpenLibraryURL string `yaml:"open_library_url"`

	Catalogue CatalogueConfig `yaml:"catalogue"`
}

// CatalogueConfig configures the optional local Elasticsearch catalogue.
type CatalogueConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Addresses []string `yaml:"addresses"`
	Index     string   `yaml:"index"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:      "info",
		Languages:     []string{"de", "en", "fr", "it"},
		DictionaryDir: "dictionaries",
		Correction: CorrectionConfig{
			MaxEditDistance:  2,
			GuardMaxDistance: 0.4,
			GuardMinJaccard:  0.5,
		},
		Lookup: LookupConfig{
			Priority:      []string{"swisscovery", "googlebooks", "dnb", "lobid", "openlibrary"},
			MaxSources:    2,
			MaxRecords:    15,
			SourceTimeout: 10 * time.Second,
			CacheTTL:      15 * time.Minute,
		},
		Ranking: RankingConfig{
			MinValidScore:   0.5,
			MaxAlternatives: 4,
			AuthorBonus:     0.15,
			PriorityBonus:   0.02,
		},
		Sources: SourcesConfig{
			Catalogue: CatalogueConfig{
				Index: "books",
			},
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged. The Google Books API key may also come from the
// GOOGLE_BOOKS_API_KEY environment variable.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if key := os.Getenv("GOOGLE_BOOKS_API_KEY"); key != "" {
		cfg.Sources.GoogleBooksAPIKey = key
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if len(c.Languages) == 0 {
		return fmt.Errorf("config: no languages configured")
	}
	if len(c.Lookup.Priority) == 0 {
		return fmt.Errorf("config: empty source priority list")
	}
	if c.Correction.MaxEditDistance < 0 {
		return fmt.Errorf("config: negative max_edit_distance")
	}
	return nil
}
