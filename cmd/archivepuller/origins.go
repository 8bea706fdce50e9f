package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/archivepuller/internal/domain"
)

func (c *cli) newOriginsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "origins",
		Short: "List the local origins that have been pulled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.Origins(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				if records == nil {
					records = []domain.OriginRecord{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No origins recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tURL\tRUNS\tLAST PULLED\tHEAD\tPATH")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
					r.Provider, r.URL, r.Runs, humanize.Time(r.LastPulledAt), shortHash(r.HeadCommit), r.Path)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the records as JSON")
	cmd.AddCommand(c.newForgetCmd())
	return cmd
}

func (c *cli) newForgetCmd() *cobra.Command {
	var (
		providerName string
		yes          bool
	)

	cmd := &cobra.Command{
		Use:   "forget <url>",
		Short: "Remove an origin from the registry; the repository stays on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			desc := domain.SourceDescriptor{URL: args[0], Provider: providerName}
			if !yes && interactive() {
				ok, err := confirm("Forget "+a.Identity(desc)+"?", "The repository stays at "+a.OriginPath(desc))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			if err := a.Forget(cmd.Context(), desc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s (repository kept at %s)\n", a.Identity(desc), a.OriginPath(desc))
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "Provider the origin was pulled with")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	if h == "" {
		return "-"
	}
	return h
}
