package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/pipeline"
	"github.com/quantmind-br/archivepuller/internal/utils"
)

func (c *cli) newPullCmd() *cobra.Command {
	var (
		providerName string
		extension    string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "pull <url>",
		Short: "Import one archive into its local origin",
		Example: `  archivepuller pull https://example.com/course.zip
  archivepuller pull "https://www.dropbox.com/s/abc/notes.zip?dl=0"
  archivepuller pull https://drive.google.com/file/d/FILEID/view --extension tgz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			desc := domain.SourceDescriptor{
				URL:       args[0],
				Provider:  providerName,
				Overrides: domain.Overrides{Extension: extension},
			}

			ctx, cancel := c.signalContext()
			defer cancel()

			progress, finish := c.progressPrinter(cmd)
			res, err := a.Pull(ctx, desc, progress)
			finish()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			if !c.verbose {
				printResult(cmd.OutOrStdout(), res)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "Provider (web, dropbox, googledrive); detected from the URL by default")
	cmd.Flags().StringVar(&extension, "extension", "", "Force the compression format (zip, tgz, ...)")
	cmd.Flags().Bool("prune", false, "Remove files no longer in the archive from the origin")
	cmd.Flags().Duration("timeout", 0, "Download timeout (0 = none)")
	cmd.Flags().String("user-agent", "", "Custom User-Agent for downloads")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	_ = c.v.BindPFlag("staging.prune", cmd.Flags().Lookup("prune"))
	_ = c.v.BindPFlag("download.timeout", cmd.Flags().Lookup("timeout"))
	_ = c.v.BindPFlag("download.user_agent", cmd.Flags().Lookup("user-agent"))

	return cmd
}

// progressPrinter returns the progress sink of a pull and a func that
// ends the display. Verbose runs print every line; others show a spinner
// labelled with the latest line.
func (c *cli) progressPrinter(cmd *cobra.Command) (domain.ProgressFunc, func()) {
	if c.verbose {
		out := cmd.OutOrStdout()
		return func(ev domain.ProgressEvent) {
			fmt.Fprintln(out, ev.Message)
		}, func() {}
	}

	bar := utils.NewProgressBarTo(cmd.ErrOrStderr(), -1, utils.DescPulling)
	progress := func(ev domain.ProgressEvent) {
		if ev.Message == "" {
			return
		}
		bar.Describe(stageDescription(ev.Stage) + ": " + utils.Truncate(ev.Message, 60))
		_ = bar.Add(1)
	}
	finish := func() {
		_ = bar.Finish()
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	return progress, finish
}

func stageDescription(stage string) string {
	switch stage {
	case pipeline.StageDownload:
		return utils.DescDownloading
	case pipeline.StageExtract:
		return utils.DescExtracting
	case pipeline.StagePublish:
		return utils.DescPublishing
	default:
		return utils.DescPulling
	}
}

func printResult(w io.Writer, res *domain.PipelineResult) {
	fmt.Fprintf(w, "Directory: %s\n", res.ExtractedDirectoryName)
	fmt.Fprintf(w, "Origin:    %s\n", res.LocalOriginPath)
	if res.HeadCommit != "" {
		fmt.Fprintf(w, "Head:      %s\n", res.HeadCommit)
	}
}
