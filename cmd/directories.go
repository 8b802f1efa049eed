package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/linker-cli/internal/directory"
)

var directoriesCmd = &cobra.Command{
	Use:   "directories",
	Short: "List configured directories",
	RunE: func(_ *cobra.Command, _ []string) error {
		names := make([]string, 0, len(cfg.Directories))
		for name := range cfg.Directories {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tENABLED\tCOLUMN\tBASE URL")
		for _, name := range names {
			dc := cfg.Directories[name]
			base := dc.BaseURL
			if base == "" {
				switch name {
				case "ijf":
					base = directory.DefaultIJFBaseURL
				case "judoinside":
					base = directory.DefaultJudoInsideBaseURL
				}
			}
			fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", name, dc.Enabled, dc.Column, base)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(directoriesCmd)
}
