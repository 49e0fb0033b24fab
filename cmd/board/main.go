package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/departure-board/internal/app"
	"github.com/samvad-hq/departure-board/internal/config"
	"github.com/samvad-hq/departure-board/internal/display"
	"github.com/samvad-hq/departure-board/internal/domain"
	"github.com/samvad-hq/departure-board/internal/logger"
	"github.com/samvad-hq/departure-board/pkg/layout"
)

var exampleUsage = strings.TrimSpace(`
  board watch --direction slussen --poll-interval 15
  board get /traffic/gullmarsplan departure.route.designation departure.nextDepartureIn
  board get /traffic/gullmarsplan --param limit=1
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "board: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "board",
		Short:         "Poll a JSON departures API and show the next departure",
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Flag defaults stay empty so viper defaults and env vars apply unless a flag is set.
	flags := root.PersistentFlags()
	flags.String("api-base-url", "", "base URL of the departures API (default http://localhost:3005/api)")
	flags.String("api-token", "", "bearer token sent with every request")
	flags.String("direction", "", "direction substituted into the endpoint template (default gullmarsplan)")
	flags.String("endpoint-template", "", "endpoint polled by watch (default /traffic/{direction})")
	flags.Int64("poll-interval", 0, "seconds between polls (default 30)")
	flags.Int64("request-timeout", 0, "request timeout in seconds (default 10)")
	flags.String("log-level", "", "debug, info, warn or error (default info)")
	flags.String("layout-file", "", "YAML, JSON or TOML file listing the board fields")
	flags.String("publishers-file", "", "YAML, JSON or TOML file listing change publishers")
	flags.String("storage-type", "", "none or bbolt (default none)")
	flags.String("bbolt-path", "", "bbolt database path (default ./data/board.db)")
	flags.String("http-addr", "", "listen address of the status endpoint, disabled when empty")

	root.AddCommand(newWatchCmd(), newGetCmd())
	return root
}

func loadRuntimeConfig(cmd *cobra.Command) (*config.Config, *logger.ZapLogger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.Init(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll the configured endpoint and redraw the board until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadRuntimeConfig(cmd)
			if err != nil {
				return err
			}
			defer logger.Close()

			logger.InfoObj("board starting", "config", cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := app.NewRuntime(ctx, cfg, log, cmd.OutOrStdout())
			if err != nil {
				logger.ErrorObj("failed to initialize board", "error", err.Error())
				return err
			}
			if err := rt.Run(ctx); err != nil {
				return fmt.Errorf("board run: %w", err)
			}
			return nil
		},
	}
}

func newGetCmd() *cobra.Command {
	var params map[string]string

	cmd := &cobra.Command{
		Use:   "get <endpoint> [path...]",
		Short: "Fetch an endpoint once and print the given dot paths, or the whole payload",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntimeConfig(cmd)
			if err != nil {
				return err
			}
			defer logger.Close()

			client, err := app.NewClient(cfg, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			renderer := display.NewRenderer(cmd.OutOrStdout())
			resp, err := client.Get(ctx, args[0], params)
			if err != nil {
				if rerr := renderer.Error(err); rerr != nil {
					return rerr
				}
				return err
			}

			paths := args[1:]
			if len(paths) == 0 {
				return renderer.JSON(resp.Data())
			}
			lines := make([]domain.Line, 0, len(paths))
			for _, p := range paths {
				lines = append(lines, domain.Line{
					Label: p,
					Path:  p,
					Value: resp.FieldText(p, layout.DefaultPlaceholder),
				})
			}
			return renderer.Lines(lines)
		},
	}
	cmd.Flags().StringToStringVar(&params, "param", nil, "query parameter as key=value, repeatable")
	return cmd
}
