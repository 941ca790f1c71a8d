package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/heritage-cli/internal/assessment"
	"github.com/sells-group/heritage-cli/internal/search"
)

var assessFlags locationFlags

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess heritage sensitivity around a postcode or point",
	Long:  "Runs a search and reports sensitivity, risk, archaeological potential and planning recommendations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := assessFlags.validate(cmd, "table", "json"); err != nil {
			return err
		}

		env, err := initSearch(cfg, "assess")
		if err != nil {
			return err
		}

		res, err := runLocationSearch(cmd.Context(), env, assessFlags, cmd.Flags().Changed("lat"))
		if err != nil {
			return err
		}
		return writeAssessment(os.Stdout, res, assessment.Evaluate(res.Assets, res.RadiusKm), assessFlags.format)
	},
}

func init() {
	addLocationFlags(assessCmd, &assessFlags, "table")
	rootCmd.AddCommand(assessCmd)
}

func writeAssessment(out io.Writer, res *search.Result, s assessment.Summary, format string) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(struct {
			QueryID  string `json:"query_id"`
			Postcode string `json:"postcode,omitempty"`
			assessment.Summary
		}{res.QueryID, res.Postcode, s}), "encode json")
	}

	_, _ = fmt.Fprintf(out, "Assets:                   %d within %g km\n", s.Total, s.RadiusKm)
	_, _ = fmt.Fprintf(out, "Overall sensitivity:      %s\n", s.OverallSensitivity)
	_, _ = fmt.Fprintf(out, "Overall risk:             %s\n", s.OverallRisk)
	_, _ = fmt.Fprintf(out, "Archaeological potential: %s\n", s.Potential)
	_, _ = fmt.Fprintf(out, "Direct (<= %g km):         %d\n", assessment.DirectZoneKm, len(s.Direct))
	_, _ = fmt.Fprintf(out, "Indirect:                 %d\n\n", len(s.Indirect))

	if len(s.Direct) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "DIST_KM\tCATEGORY\tSENSITIVITY\tIMPACT\tNAME")
		for _, r := range s.Direct {
			_, _ = fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\t%s\n",
				r.DistanceKm, r.Category, r.Sensitivity, r.Impact, truncate(r.Name, 60))
		}
		_ = w.Flush()
		_, _ = fmt.Fprintln(out)
	}

	_, _ = fmt.Fprintln(out, "Recommendations:")
	for _, rec := range s.Recommendations {
		_, _ = fmt.Fprintf(out, "  - %s\n", rec)
	}
	return nil
}
