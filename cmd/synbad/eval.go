package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synthetic-lab/synbad/internal/config"
	"github.com/synthetic-lab/synbad/internal/logger"
	"github.com/synthetic-lab/synbad/pkg/evals"
	"github.com/synthetic-lab/synbad/pkg/factory"
	"github.com/synthetic-lab/synbad/pkg/llm"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Runs the evals",
		Example: `  synbad eval --env-var SYNTHETIC_API_KEY \
    --base-url https://api.synthetic.new/openai/v1 \
    --model hf:zai-org/GLM-4.6`,
		RunE: runEval,
	}

	flags := cmd.Flags()
	flags.String("config", "", "YAML config file; flags override its values")
	flags.String("env-var", "", "The env var to use to authenticate with the inference provider")
	flags.String("base-url", "", "The base URL for the inference provider")
	flags.String("model", "", "The model name to test")
	flags.String("provider", llm.DefaultProvider, "Client implementation: openai, openrouter, deepseek or mock")
	flags.String("only", "", "Specific evals you want to run, e.g. evals/reasoning or evals/tools/simple-tool")
	flags.Int("count", 1, "Number of times to run each eval. Any failures count as an overall failure")
	flags.Bool("skip-reasoning", false, "Skip reasoning evals (set this for non-reasoning models)")
	flags.Bool("stream", false, "Request streamed completions and assemble them from their deltas")
	flags.Bool("validate-shape", false, "Check every response against the chat message contract")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")

	return cmd
}

// loadConfig reads the config file and applies the flags that were set
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	stringFlags := map[string]*string{
		"env-var":    &cfg.EnvVar,
		"base-url":   &cfg.BaseURL,
		"model":      &cfg.Model,
		"provider":   &cfg.Provider,
		"only":       &cfg.Eval.Only,
		"log-level":  &cfg.Logger.Level,
		"log-format": &cfg.Logger.Format,
	}
	for name, dst := range stringFlags {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}

	boolFlags := map[string]*bool{
		"skip-reasoning": &cfg.Eval.SkipReasoning,
		"stream":         &cfg.Eval.Stream,
		"validate-shape": &cfg.Eval.ValidateShape,
	}
	for name, dst := range boolFlags {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}

	if flags.Changed("count") {
		cfg.Eval.Count, _ = flags.GetInt("count")
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLog()

	selected, err := evals.Select(cfg.Eval.Only, cfg.Eval.SkipReasoning)
	if err != nil {
		return err
	}

	clientConfig, err := cfg.ClientConfig()
	if err != nil {
		return err
	}
	client, err := factory.New().CreateClient(clientConfig)
	if err != nil {
		return fmt.Errorf("create %s client: %w", clientConfig.Provider, err)
	}
	client = llm.ClientWithMiddleware(client, []llm.Middleware{llm.NewLoggingMiddleware(log)})
	defer client.Close()

	log.Info("running evals",
		"provider", clientConfig.Provider,
		"base_url", clientConfig.BaseURL,
		"model", clientConfig.Model,
		"evals", len(selected),
		"count", cfg.Eval.Count,
		"stream", cfg.Eval.Stream,
		"middleware", llm.MiddlewareNames(client),
	)

	runner := &evals.Runner{
		Client:        client,
		Model:         cfg.Model,
		Count:         cfg.Eval.Count,
		Stream:        cfg.Eval.Stream,
		ValidateShape: cfg.Eval.ValidateShape,
		Out:           cmd.OutOrStdout(),
		Logger:        log,
	}
	report, err := runner.Run(cmd.Context(), selected)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", report.Summary())
	if !report.OK() {
		return errEvalsFailed
	}
	return nil
}
