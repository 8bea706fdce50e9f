package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/archivepuller/internal/app"
	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/manifest"
	"github.com/quantmind-br/archivepuller/internal/utils"
)

func (c *cli) newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <manifest.yaml|manifest.json|manifest.toml|->",
		Short: "Import every source listed in a manifest",
		Long: `Import every source listed in a YAML, JSON or TOML manifest. Use "-" to read
the manifest from stdin. Sources run concurrently; two sources resolving to
the same origin never run at the same time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(args[0])
			if err != nil {
				return err
			}

			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("workers") {
				m.Options.Workers = a.Config().Batch.Workers
			}

			ctx, cancel := c.signalContext()
			defer cancel()

			out := cmd.OutOrStdout()
			var hooks app.BatchHooks
			if c.verbose {
				hooks.Progress = func(index int, ev domain.ProgressEvent) {
					fmt.Fprintf(out, "[%d] %s\n", index+1, ev.Message)
				}
			} else {
				bar := utils.NewProgressBarTo(cmd.ErrOrStderr(), len(m.Sources), utils.DescBatch)
				hooks.Done = func(int, app.BatchResult) { _ = bar.Add(1) }
				defer func() {
					_ = bar.Finish()
					fmt.Fprintln(cmd.ErrOrStderr())
				}()
			}

			report, err := a.Batch(ctx, m, hooks)
			if report != nil {
				printReport(cmd, report)
			}
			return err
		},
	}

	cmd.Flags().IntP("workers", "j", 2, "Number of sources imported concurrently")
	cmd.Flags().Bool("continue-on-error", false, "Keep going after a source fails")

	_ = c.v.BindPFlag("batch.workers", cmd.Flags().Lookup("workers"))
	_ = c.v.BindPFlag("batch.continue_on_error", cmd.Flags().Lookup("continue-on-error"))

	return cmd
}

func loadManifest(path string) (*manifest.Config, error) {
	loader := manifest.NewLoader()
	if path == "-" {
		return loader.LoadReader(stdin)
	}
	return loader.Load(path)
}

func printReport(cmd *cobra.Command, report *app.BatchReport) {
	out := cmd.OutOrStdout()
	st := newStyles(out)
	for _, r := range report.Results {
		if r.Error != nil {
			fmt.Fprintf(out, "%s  %s: %v\n", st.fail.Render("FAIL"), r.Source.URL, r.Error)
			continue
		}
		fmt.Fprintf(out, "%s    %s -> %s\n", st.ok.Render("OK"), r.Source.URL, r.Result.LocalOriginPath)
	}
	fmt.Fprintf(out, "%d/%d sources imported in %s\n",
		len(report.Results)-report.Failed(), len(report.Results), report.Duration.Round(time.Millisecond))
}
