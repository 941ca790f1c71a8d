package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/heritage-cli/internal/arcgis"
)

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List the configured ArcGIS endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("endpoints"); err != nil {
			return err
		}
		eps, err := cfg.ArcGIS.ResolveEndpoints()
		if err != nil {
			return err
		}
		formatEndpoints(os.Stdout, eps)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(endpointsCmd)
}

// formatEndpoints writes a tabular representation of eps to out.
func formatEndpoints(out io.Writer, eps []arcgis.Endpoint) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCATEGORY_HINT\tURL")
	_, _ = fmt.Fprintln(w, "----\t-------------\t---")
	for _, ep := range eps {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", ep.Name, ep.CategoryHint, ep.URL)
	}
	_ = w.Flush()
}
