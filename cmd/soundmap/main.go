package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-soundmap/internal/config"
	"github.com/joeblew999/plat-soundmap/internal/logging"
	"github.com/joeblew999/plat-soundmap/internal/server"
)

// Options defines all CLI flags and env vars for the sound map server.
// Flags: --host, --port, --data-dir, --web-dir, --config, --log-level, --log-format, --watch
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_WEB_DIR, ...
type Options struct {
	Host      string `doc:"Host to bind to" default:"0.0.0.0"`
	Port      int    `doc:"Port to listen on" short:"p" default:"8086"`
	DataDir   string `doc:"Directory for the local cache database" default:".data"`
	WebDir    string `doc:"Path to web/ directory" default:"web"`
	Config    string `doc:"Settings file (default: ./soundmap.yaml if present)" short:"c"`
	LogLevel  string `doc:"Log level (trace, debug, info, warn, error)" default:"info"`
	LogFormat string `doc:"Log format (console, json)" default:"console"`
	Watch     bool   `doc:"Reload templates when they change"`
}

func setup(opts *Options) (*server.Server, zerolog.Logger, error) {
	log, err := logging.New(logging.Options{Level: opts.LogLevel, Format: opts.LogFormat})
	if err != nil {
		return nil, log, err
	}
	settings, err := config.Load(opts.Config)
	if err != nil {
		return nil, log, err
	}
	srv := server.New(server.Config{
		Host:     opts.Host,
		Port:     strconv.Itoa(opts.Port),
		DataDir:  opts.DataDir,
		WebDir:   opts.WebDir,
		Watch:    opts.Watch,
		Settings: settings,
		Logger:   log,
	})
	return srv, log, nil
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		var (
			srv    *server.Server
			log    zerolog.Logger
			cancel context.CancelFunc
		)

		hooks.OnStart(func() {
			var err error
			srv, log, err = setup(opts)
			if err != nil {
				fatal("Startup error", err)
			}
			defer srv.Close()

			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)
			log.Info().
				Str("map", baseURL+"/").
				Str("docs", baseURL+"/docs").
				Str("openapi", baseURL+"/openapi.json").
				Str("data", opts.DataDir).
				Msg("plat-soundmap starting")

			var ctx context.Context
			ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := srv.Run(ctx); err != nil {
				log.Fatal().Err(err).Msg("server error")
			}
		})

		hooks.OnStop(func() {
			if cancel != nil {
				cancel()
			}
		})
	})

	cli.Root().Use = "soundmap"
	cli.Root().Short = "Community sound map with mood layers"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			opts.LogLevel = "error"
			srv, _, err := setup(opts)
			if err != nil {
				fatal("Error", err)
			}
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fatal("Error marshaling spec", err)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// refresh subcommand: one cache-first load, reporting what was rendered
	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Load markers cache-first and update the local cache",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv, _, err := setup(opts)
			if err != nil {
				fatal("Error", err)
			}
			defer srv.Close()

			res, err := srv.Sessions().Load(cmd.Context())
			if err != nil {
				fatal("Refresh failed", err)
			}
			fmt.Printf("Loaded %d markers from %s\n", res.Count, res.Source)
			if res.Err != nil {
				fmt.Printf("Network unavailable, cache kept: %v\n", res.Err)
			}
		}),
	}
	cli.Root().AddCommand(refreshCmd)

	cli.Run()
}
