package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/briefing"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/config"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/llm"
	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/logger"
)

// 提供方名称 -> 环境变量
var keyEnv = map[string]string{
	"exa":        "EXA_API_KEY",
	"tavily":     "TAVILY_API_KEY",
	"openai":     "OPENAI_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"gemini":     "GEMINI_API_KEY",
	"groq":       "GROQ_API_KEY",
	"deepseek":   "DEEPSEEK_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
}

type options struct {
	cfgFile      string
	envFile      string
	jsonOut      bool
	consolidated bool
	forceRefresh bool
	enhanced     bool
	order        []string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "briefctl",
		Short: "Generate competitive intelligence briefings from the terminal",
		Long: `briefctl runs the briefing pipeline locally.

API keys are read from the environment (or a .env file):
  EXA_API_KEY / TAVILY_API_KEY     search provider
  OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY,
  GROQ_API_KEY, DEEPSEEK_API_KEY, OPENROUTER_API_KEY

Examples:
  briefctl brief stripe.com
  briefctl brief linear.app --json
  briefctl brief notion.so --consolidated`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "app/briefing/configs/engine.yaml", "engine config file")
	root.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "dotenv file with api keys")
	root.AddCommand(newBriefCmd(opts))
	return root
}

func newBriefCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brief [domain]",
		Short: "Stream a briefing for a company domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrief(cmd, opts, args[0])
		},
	}
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print events as newline-delimited JSON")
	cmd.Flags().BoolVar(&opts.consolidated, "consolidated", false, "print the single consolidated report instead of streaming")
	cmd.Flags().BoolVar(&opts.forceRefresh, "force-refresh", false, "bypass the profile cache")
	cmd.Flags().BoolVar(&opts.enhanced, "enhanced", false, "enable enhanced sentiment analysis")
	cmd.Flags().StringSliceVar(&opts.order, "order", nil, "language model provider order, eg: anthropic,openai")
	return cmd
}

// loadConfig 配置文件不存在时使用默认值，其他错误原样返回
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &config.Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func keysFromEnv() map[string]string {
	keys := make(map[string]string, len(keyEnv))
	for provider, env := range keyEnv {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			keys[provider] = v
		}
	}
	return keys
}

func buildRequest(cmd *cobra.Command, cfg *config.Config, opts *options, domain string, keys map[string]string) briefing.Request {
	order := opts.order
	if len(order) == 0 {
		order = cfg.LLM.Order
	}
	req := briefing.Request{
		Domain:       domain,
		SearchKey:    keys[cfg.SearchProvider()],
		Providers:    llm.ProviderConfigsFromKeys(keys, order, cfg.LLM.Models),
		ForceRefresh: opts.forceRefresh,
	}
	if cmd.Flags().Changed("enhanced") {
		enhanced := opts.enhanced
		req.EnhancedSentiment = &enhanced
	}
	return req
}

func runBrief(cmd *cobra.Command, opts *options, domain string) error {
	// .env 不存在时忽略
	_ = godotenv.Load(opts.envFile)

	cfg, err := loadConfig(opts.cfgFile)
	if err != nil {
		return err
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return err
	}
	if cfg.Log.File == "" {
		// stdout 留给事件输出
		logger.Log.SetOutput(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	orch := briefing.New(cfg)
	req := buildRequest(cmd, cfg, opts, domain, keysFromEnv())
	if err := orch.Validate(req); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.consolidated {
		report, err := orch.Consolidated(ctx, req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	events := make(chan briefing.Event, 16)
	done := make(chan error, 1)
	go func() {
		done <- orch.Stream(ctx, req, events)
	}()
	for e := range events {
		if err := printEvent(out, e, opts.jsonOut); err != nil {
			return err
		}
	}
	return <-done
}

type line struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func printEvent(w io.Writer, e briefing.Event, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(line{Event: e.Name, Data: e.Data})
	}
	if e.Name == briefing.EventSummary {
		if p, ok := e.Data.(briefing.SummaryPayload); ok {
			_, err := fmt.Fprintf(w, "== %s (%s)\n%s\n\n", e.Name, p.Source, p.Summary)
			return err
		}
	}
	data, err := json.MarshalIndent(e.Data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "== %s\n%s\n\n", e.Name, data)
	return err
}
