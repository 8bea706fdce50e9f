package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/archivepuller/internal/app"
	"github.com/quantmind-br/archivepuller/internal/config"
	"github.com/quantmind-br/archivepuller/internal/utils"
)

func (c *cli) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check system dependencies",
		Long:  "Verifies that git, unzip and tar are installed and that the origin cache is writable.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			st := newStyles(out)

			fmt.Fprint(out, "  Config: ")
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				fmt.Fprintf(out, "%s (%v)\n", st.status(false), err)
				return err
			}
			fmt.Fprintln(out, st.status(true))

			path := c.cfgFile
			if path == "" {
				path = config.ConfigFilePath()
			}
			if found, _ := utils.Exists(path); found {
				fmt.Fprintf(out, "  Config file: %s\n", path)
			} else {
				fmt.Fprintf(out, "  Config file: %s\n", st.muted.Render("not found, using defaults"))
			}

			checks := app.Doctor(cfg, execLookPath)
			for _, check := range checks {
				fmt.Fprintf(out, "  %s: %s (%s)\n", check.Name, st.status(check.OK), check.Detail)
			}

			fmt.Fprintln(out)
			if !app.Healthy(checks) {
				fmt.Fprintln(out, "Some checks failed. Please resolve the issues above.")
				return errors.New("doctor found problems")
			}
			fmt.Fprintln(out, "All checks passed!")
			return nil
		},
	}
}
