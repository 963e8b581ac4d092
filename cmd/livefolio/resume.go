package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/internal/resume"
)

var resumeFile string

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Inspect resume data",
}

var resumeCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate resume YAML and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resumeFile
		if path == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path = cfg.Resume.Path
		}

		r, err := resume.Load(path)
		if err != nil {
			return err
		}
		if _, err := r.SummaryHTML(); err != nil {
			return err
		}

		source := path
		if source == "" {
			source = "embedded resume"
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: OK\n", source)
		fmt.Fprintf(out, "  name:       %s\n", r.Personal.Name)
		fmt.Fprintf(out, "  experience: %d employers\n", len(r.Experience))
		fmt.Fprintf(out, "  projects:   %d\n", len(r.Projects))
		for _, c := range interaction.Categories() {
			if c == interaction.CategoryAll {
				continue
			}
			fmt.Fprintf(out, "    %-12s %d\n", c.Label(), len(interaction.FilterProjects(r.Projects, c)))
		}
		return nil
	},
}

func init() {
	resumeCheckCmd.Flags().StringVarP(&resumeFile, "file", "f", "", "resume YAML to check (default: resume.path from config)")
	resumeCmd.AddCommand(resumeCheckCmd)
	rootCmd.AddCommand(resumeCmd)
}
