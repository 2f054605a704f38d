package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stagehand-cli/stagehand/internal/checkpoint"
	"github.com/stagehand-cli/stagehand/internal/config"
	"github.com/stagehand-cli/stagehand/internal/editapi"
	"github.com/stagehand-cli/stagehand/internal/logging"
	"github.com/stagehand-cli/stagehand/internal/metrics"
	"github.com/stagehand-cli/stagehand/internal/notify"
	"github.com/stagehand-cli/stagehand/internal/publish"
)

func newPublishCmd() *cobra.Command {
	var (
		configFile     string
		pkg            string
		artifacts      []string
		trackName      string
		userFraction   float64
		metadataRoot   string
		changelogFile  string
		language       string
		credentials    string
		apiURL         string
		timeout        time.Duration
		abortOnFailure bool
		logFormat      string
		logLevel       string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Run one publish transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			applyFlags(&cfg, cmd.Flags(), flagValues{
				pkg:            pkg,
				artifacts:      artifacts,
				trackName:      trackName,
				userFraction:   userFraction,
				metadataRoot:   metadataRoot,
				changelogFile:  changelogFile,
				language:       language,
				credentials:    credentials,
				apiURL:         apiURL,
				timeout:        timeout,
				abortOnFailure: abortOnFailure,
				logFormat:      logFormat,
				logLevel:       logLevel,
			})

			logging.Setup(logging.Config{Format: cfg.Log.Format, Level: cfg.Log.Level})

			if cfg.Metrics.Enabled {
				metrics.Init("stagehand")
				go func() {
					if err := metrics.StartServer(cfg.Metrics.Address); err != nil {
						logging.Component("metrics").Warn("metrics server stopped", "error", err)
					}
				}()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := editapi.NewClient(ctx, editapi.ClientConfig{
				BaseURL:         cfg.API.BaseURL,
				Package:         cfg.Publish.Package,
				Timeout:         cfg.API.Timeout,
				CredentialsFile: cfg.Auth.CredentialsFile,
			})
			if err != nil {
				return err
			}

			cpMgr, err := checkpoint.NewManager(checkpoint.Config{
				Enabled: cfg.Checkpoint.Enabled,
				Dir:     cfg.Checkpoint.Dir,
			})
			if err != nil {
				logging.Component("checkpoint").Warn("checkpointing disabled", "error", err)
				cpMgr = nil
			}

			emitter := notify.NewEmitter(cfg.Notify)
			defer emitter.Close()

			pipeline, err := publish.New(publish.Options{
				Config:     cfg,
				Service:    svc,
				Checkpoint: cpMgr,
				Emitter:    emitter,
			})
			if err != nil {
				return err
			}

			summary, err := pipeline.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "published %s to track %s (edit %s, versions %v)\n",
				summary.Package, summary.Track, summary.EditID, summary.VersionCodes)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "path to YAML config file")
	f.StringVarP(&pkg, "package", "p", "", "package identifier of the application")
	f.StringArrayVarP(&artifacts, "artifact", "a", nil, "artifact path or glob pattern (repeatable, uploaded in order)")
	f.StringVarP(&trackName, "track", "t", "", "release track (internal|alpha|beta|production|rollout or custom)")
	f.Float64Var(&userFraction, "user-fraction", 0, "staged rollout fraction in (0,1], rollout track only")
	f.StringVarP(&metadataRoot, "metadata-root", "m", "", "directory containing the metadata/<language> tree")
	f.StringVar(&changelogFile, "changelog", "", "standalone changelog file, named by version code")
	f.StringVar(&language, "language", "", "language for the standalone changelog")
	f.StringVar(&credentials, "credentials", "", "service-account JSON key file")
	f.StringVar(&apiURL, "api-url", "", "edit store base URL")
	f.DurationVar(&timeout, "timeout", 0, "per-request timeout for edit store calls")
	f.BoolVar(&abortOnFailure, "abort-on-failure", false, "abort the open edit when a step fails (default: leave it to expire)")
	f.StringVar(&logFormat, "log-format", "", "log format (text|json)")
	f.StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")

	return cmd
}

// flagValues carries parsed flag values into config application.
type flagValues struct {
	pkg            string
	artifacts      []string
	trackName      string
	userFraction   float64
	metadataRoot   string
	changelogFile  string
	language       string
	credentials    string
	apiURL         string
	timeout        time.Duration
	abortOnFailure bool
	logFormat      string
	logLevel       string
}

// applyFlags overrides config with any flag the user actually set.
// Precedence: flags > environment > config file > defaults.
func applyFlags(cfg *config.Config, flags *pflag.FlagSet, v flagValues) {
	if flags.Changed("package") {
		cfg.Publish.Package = v.pkg
	}
	if flags.Changed("artifact") {
		cfg.Publish.Artifacts = v.artifacts
	}
	if flags.Changed("track") {
		cfg.Publish.Track = v.trackName
	}
	if flags.Changed("user-fraction") {
		cfg.Publish.UserFraction = v.userFraction
	}
	if flags.Changed("metadata-root") {
		cfg.Publish.MetadataRoot = v.metadataRoot
	}
	if flags.Changed("changelog") {
		cfg.Publish.ChangelogFile = v.changelogFile
	}
	if flags.Changed("language") {
		cfg.Publish.Language = v.language
	}
	if flags.Changed("credentials") {
		cfg.Auth.CredentialsFile = v.credentials
	}
	if flags.Changed("api-url") {
		cfg.API.BaseURL = v.apiURL
	}
	if flags.Changed("timeout") {
		cfg.API.Timeout = v.timeout
	}
	if flags.Changed("abort-on-failure") {
		cfg.Publish.AbortOnFailure = v.abortOnFailure
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = v.logFormat
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = v.logLevel
	}
}
