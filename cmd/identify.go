package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"spinelookup/internal/config"
	"spinelookup/internal/lexicon"
	"spinelookup/internal/lookup"
	"spinelookup/internal/pipeline"
	"spinelookup/internal/query"
	"spinelookup/internal/rank"
	"spinelookup/internal/textproc"
)

func newIdentifyCmd() *cobra.Command {
	var (
		configPath string
		lang       string
	)

	cmd := &cobra.Command{
		Use:   "identify <regions.json>",
		Short: "Identify the books on one photo's spines",
		Long: `Reads a JSON file holding the OCR regions per spine (an array of spines,
each an array of {text, source_order, ocr_confidence} objects) and prints
one identification result per spine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()
			sugar := logger.Sugar()

			store := lexicon.New(cfg.DictionaryDir, cfg.Languages, cfg.Correction.MaxEditDistance, sugar)
			if err := store.Require(); err != nil {
				return err
			}

			srcs, err := pipeline.BuildSources(cfg, sugar)
			if err != nil {
				return err
			}

			p := pipeline.New(
				textproc.NewCorrector(store, cfg.Correction.GuardMaxDistance, cfg.Correction.GuardMinJaccard, sugar),
				query.NewBuilder(store, sugar),
				lookup.New(srcs, lookup.Config{
					MaxSources:      cfg.Lookup.MaxSources,
					MaxRecords:      cfg.Lookup.MaxRecords,
					SourceTimeout:   cfg.Lookup.SourceTimeout,
					StopOnValidated: cfg.Lookup.StopOnValidated,
					MinValidScore:   cfg.Ranking.MinValidScore,
				}, sugar),
				rank.New(rank.Config{
					MinValidScore:   cfg.Ranking.MinValidScore,
					MaxAlternatives: cfg.Ranking.MaxAlternatives,
					AuthorBonus:     cfg.Ranking.AuthorBonus,
					PriorityBonus:   cfg.Ranking.PriorityBonus,
				}, sugar),
				sugar,
			)

			spines, err := readSpines(args[0])
			if err != nil {
				return err
			}

			results, err := p.IdentifyAll(cmd.Context(), spines, lang)
			if err != nil {
				return err
			}

			out := make([]pipeline.Result, 0, len(results))
			for _, r := range results {
				out = append(out, pipeline.Serialize(r))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	cmd.Flags().StringVarP(&lang, "lang", "l", "de", "language of the spines")

	return cmd
}

func readSpines(path string) ([][]pipeline.RawTextRegion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}

	var spines [][]pipeline.RawTextRegion
	if err := json.Unmarshal(data, &spines); err != nil {
		return nil, fmt.Errorf("parse regions file: %w", err)
	}

	return spines, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
