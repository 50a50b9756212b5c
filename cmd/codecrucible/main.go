// Package main provides the command-line interface for codecrucible, the
// code-quality evaluation harness. The CLI is a thin shim over the
// evaluation pipeline engine: it owns argument parsing and presentation
// only, never scheduling or scoring logic.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codecrucible/codecrucible/internal/apikey"
	"github.com/codecrucible/codecrucible/internal/engine"
	"github.com/codecrucible/codecrucible/internal/eval"
	"github.com/codecrucible/codecrucible/internal/evalconfig"
	"github.com/codecrucible/codecrucible/internal/evalset"
	"github.com/codecrucible/codecrucible/internal/logutil"
	"github.com/codecrucible/codecrucible/internal/metrics"
	"github.com/codecrucible/codecrucible/internal/pathutil"
	"github.com/codecrucible/codecrucible/internal/provider"
	"github.com/codecrucible/codecrucible/internal/provider/gemini"
	"github.com/codecrucible/codecrucible/internal/provider/openai"
	"github.com/codecrucible/codecrucible/internal/registry"
	"github.com/codecrucible/codecrucible/internal/report"
	"github.com/codecrucible/codecrucible/internal/spinner"
	"github.com/codecrucible/codecrucible/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "codecrucible",
		Short:   "Evaluate LLM code generation quality across providers and languages",
		Version: version.String(),
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(newRunCmd(), newCompareCmd(), newValidateCmd(), newListModelsCmd(), newInitCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		caseSetPath string
		configPath  string
		outputPath  string
		parallelism int
		passK       []int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a case set against one or more models and write a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logutil.NewLogger(logutil.InfoLevel, os.Stderr, "[codecrucible] ")
			sp := spinner.New(logger, nil)

			sp.Start("loading config and case set")
			cfg, err := evalconfig.Load(configPath)
			if err != nil {
				sp.StopFail(err.Error())
				return err
			}
			set, err := evalset.ParseFile(caseSetPath)
			if err != nil {
				sp.StopFail(err.Error())
				return err
			}
			sp.Stop(fmt.Sprintf("loaded %d cases from %s", len(set.Cases), pathutil.SanitizePathForDisplay(caseSetPath)))

			if parallelism <= 0 {
				parallelism = cfg.Parallelism
			}
			if len(passK) == 0 {
				passK = []int{1}
			}

			providers, models, err := buildProviders(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			eng := engine.New(providers, parallelism, nil, logger)

			outDir := cfg.OutputDir
			if outputPath != "" {
				outDir = filepath.Dir(outputPath)
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			metricsFile, err := os.Create(filepath.Join(outDir, "run.metrics.jsonl"))
			if err != nil {
				return err
			}
			defer metricsFile.Close()
			collector := metrics.NewCollector(metrics.NewJSONLinesExporter(metricsFile))
			eng.SetMetrics(collector)

			opts := engine.Options{
				Models:            models,
				PassK:             passK,
				Parallelism:       parallelism,
				MaxRetriesPerCase: cfg.MaxRetriesPerCase,
				RetryDelay:        time.Duration(cfg.RetryDelayMs) * time.Millisecond,
			}

			r, err := eng.Run(cmd.Context(), set, opts)
			if err != nil {
				return err
			}
			if err := collector.Flush(); err != nil {
				logger.Warn("failed to flush metrics: %v", err)
			}

			if outputPath == "" {
				outputPath = evalconfig.ResolveOutputPath(cfg, r.ID+".json")
			}
			if err := report.Save(r, outputPath); err != nil {
				return err
			}

			fmt.Printf("run %q wrote report %s (%d results)\n", r.Name, pathutil.SanitizePathForDisplay(outputPath), len(r.Results))
			return nil
		},
	}

	cmd.Flags().StringVar(&caseSetPath, "cases", "", "path to a case-set TOML file")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a codecrucible.toml config file")
	cmd.Flags().StringVar(&outputPath, "output", "", "report output path (defaults to the config's output_dir)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "max concurrent tasks (defaults to config)")
	cmd.Flags().IntSliceVar(&passK, "pass-k", nil, "k values to estimate Pass@k for (default: 1)")
	_ = cmd.MarkFlagRequired("cases")

	return cmd
}

func newCompareCmd() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "compare <baseline.json> <current.json>",
		Short: "Compare a current report against a baseline and print regressions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseline, err := report.Load(args[0])
			if err != nil {
				return err
			}
			current, err := report.Load(args[1])
			if err != nil {
				return err
			}

			rr := report.Compare(baseline, current, threshold)
			fmt.Print(rr.Markdown())

			if rr.HasRegressions() {
				os.Exit(2)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0.05, "signed score-delta threshold below which a change is a regression")
	return cmd
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <cases.toml>",
		Short: "Validate a case-set file and print warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := evalset.ParseFile(args[0])
			if err != nil {
				return err
			}
			warnings := evalset.Validate(set)
			display := pathutil.SanitizePathForDisplay(args[0])
			if len(warnings) == 0 {
				fmt.Println(color.GreenString("%s: no issues found", display))
				return nil
			}
			for _, w := range warnings {
				fmt.Println(color.YellowString("%s: %s", display, w.String()))
			}
			return nil
		},
	}
	return cmd
}

func newListModelsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list-models",
		Short: "List models available from configured providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := evalconfig.Load(configPath)
			if err != nil {
				return err
			}
			providers, _, err := buildProviders(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			for name, p := range providers {
				for _, m := range p.AvailableModels() {
					fmt.Printf("%s\t%s\t%s\n", name, m.ID, m.Name)
				}
			}

			mgr := registry.NewManager(nil)
			if err := mgr.Initialize(cmd.Context()); err != nil {
				return nil // catalogue could not be loaded; plain provider listing above still printed
			}
			if err := mgr.RegisterProviders(cmd.Context(), providers); err != nil {
				return err
			}
			for _, info := range mgr.GetRegistry().ModelInfos() {
				fmt.Printf("%s\tcatalogue\tcontext=%d\tcost_in=%.4f\tcost_out=%.4f\n", info.ID, info.MaxContext, info.CostPer1kInput, info.CostPer1kOutput)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a codecrucible.toml config file")
	return cmd
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter codecrucible.toml config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			const starter = `default_provider = "openai"
default_model = "gpt-4.1-mini"
parallelism = 4
max_retries_per_case = 3
retry_delay_ms = 1000
output_dir = "./codecrucible-results"

[providers.openai]
type = "openai"
api_key = "${OPENAI_API_KEY}"
`
			if _, err := os.Stat("codecrucible.toml"); err == nil {
				return fmt.Errorf("codecrucible.toml already exists")
			}
			return os.WriteFile("codecrucible.toml", []byte(starter), 0o644)
		},
	}
	return cmd
}

// buildProviders wires a provider.Provider per configured backend and
// returns the default (provider, model) pair as the run's model list when
// the case set itself doesn't specify one.
func buildProviders(ctx context.Context, cfg evalconfig.Config) (map[string]provider.Provider, []eval.ModelSpec, error) {
	providers := make(map[string]provider.Provider)
	var models []eval.ModelSpec

	base := logutil.NewLogger(logutil.InfoLevel, nil, "[apikey] ")
	resolver := apikey.New(logutil.NewSanitizingLogger(base))

	for name, pc := range cfg.Providers {
		key, err := resolver.Resolve(ctx, pc.Type, pc.APIKey)
		if err != nil {
			return nil, nil, err
		}
		if err := resolver.Validate(ctx, pc.Type, key.Key); err != nil {
			return nil, nil, err
		}

		switch pc.Type {
		case "openai":
			providers[name] = openai.New(key.Key, pc.BaseURL, pc.OrgID)
		case "gemini":
			c, err := gemini.New(ctx, key.Key)
			if err != nil {
				return nil, nil, err
			}
			providers[name] = c
		default:
			return nil, nil, fmt.Errorf("unknown provider type %q for %q", pc.Type, name)
		}
	}

	if _, ok := providers[cfg.DefaultProvider]; ok {
		models = append(models, eval.ModelSpec{Provider: cfg.DefaultProvider, Model: cfg.DefaultModel})
	}

	return providers, models, nil
}
