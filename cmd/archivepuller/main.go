package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantmind-br/archivepuller/internal/app"
	"github.com/quantmind-br/archivepuller/internal/config"
	"github.com/quantmind-br/archivepuller/internal/utils"
	"github.com/quantmind-br/archivepuller/pkg/version"
)

var (
	// Dependencies for testing
	execLookPath = exec.LookPath
	stdin        io.Reader = os.Stdin
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli is the state shared by all subcommands of one root command
type cli struct {
	cfgFile string
	verbose bool
	v       *viper.Viper
	log     *utils.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "archivepuller",
		Short: "Import downloadable archives into local git origins",
		Long: `archivepuller downloads a zip or tar archive from the web, Dropbox or
Google Drive and commits its contents to a bare git repository kept under
~/.archivepuller. Every pull of the same source adds one commit to the
same origin, so the archive can be cloned and updated like any repository.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ~/.archivepuller/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Print every progress line and debug logs")
	rootCmd.PersistentFlags().String("origin-dir", "", "Parent directory of the origin cache (default ~)")
	rootCmd.PersistentFlags().Bool("no-lock", false, "Do not serialize runs per origin")
	rootCmd.PersistentFlags().Bool("no-registry", false, "Do not record origins")

	_ = c.v.BindPFlag("origin.parent_dir", rootCmd.PersistentFlags().Lookup("origin-dir"))

	rootCmd.AddCommand(c.newPullCmd())
	rootCmd.AddCommand(c.newBatchCmd())
	rootCmd.AddCommand(c.newOriginsCmd())
	rootCmd.AddCommand(c.newDoctorCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadConfig loads configuration and applies the global negated flags
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadViper(c.v, c.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if noLock, _ := cmd.Flags().GetBool("no-lock"); noLock {
		cfg.Lock.Enabled = false
	}
	if noRegistry, _ := cmd.Flags().GetBool("no-registry"); noRegistry {
		cfg.Registry.Enabled = false
	}

	c.log = utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cmd.ErrOrStderr(),
		Verbose: c.verbose,
	})
	return cfg, nil
}

func (c *cli) newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	a, err := app.New(app.Options{Config: cfg, Verbose: c.verbose, Logger: c.log})
	if err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}
	return a, nil
}

// signalContext is cancelled on SIGINT or SIGTERM so staging is cleaned up
func (c *cli) signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			c.log.Info().Msg("Shutting down gracefully...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}
