package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"ghostwriter/config"
	"ghostwriter/generator"
	"ghostwriter/logging"
	"ghostwriter/metrics"
	"ghostwriter/publisher"
	"ghostwriter/server"
)

const defaultTopic = "The importance of mental health"

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	offline    bool
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "ghostwriter",
		Short:         "Research, draft and edit a blog post about a topic",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.json (default: ./config/config.json if present)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "text or json (overrides config)")
	cmd.PersistentFlags().BoolVar(&opts.offline, "offline", false, "use the built-in mock model and no web search")

	cmd.AddCommand(newWriteCmd(opts), newServeCmd(opts))
	return cmd
}

// setup loads and validates configuration and initialises logging.
func setup(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logging.Init(level, cfg.Log.Format)
	return cfg, nil
}

func newWriteCmd(opts *rootOptions) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "write [topic...]",
		Short: "Run the pipeline once and print the finished post",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := publisher.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := setup(opts)
			if err != nil {
				return err
			}
			topic := strings.TrimSpace(strings.Join(args, " "))
			if topic == "" {
				topic = defaultTopic
			}

			p, err := buildPipeline(cfg, metrics.New(nil), opts.offline)
			if err != nil {
				return err
			}
			res, err := p.Run(cmd.Context(), generator.NewDocument(topic))
			if err != nil {
				return err
			}
			article, err := publisher.Render(res.Document.Content, topic)
			if err != nil {
				return err
			}
			if out != "" {
				if err := publisher.WriteFile(out, article, f); err != nil {
					return err
				}
				logging.New("cli").Info("article written", "path", out, "run_id", res.RunID)
				return nil
			}
			return publisher.Write(cmd.OutOrStdout(), article, f)
		},
	}
	cmd.Flags().StringVar(&format, "format", "md", "output format: md or html")
	cmd.Flags().StringVar(&out, "out", "", "write to this file instead of stdout")
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(opts)
			if err != nil {
				return err
			}
			reg := prometheus.NewRegistry()
			m := metrics.New(reg)
			p, err := buildPipeline(cfg, m, opts.offline)
			if err != nil {
				return err
			}
			srv, err := server.New(p, reg, cfg.Server.RunTimeout)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
