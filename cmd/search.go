package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/heritage-cli/internal/export"
	"github.com/sells-group/heritage-cli/internal/geodesy"
	"github.com/sells-group/heritage-cli/internal/search"
)

// locationFlags are shared by the search and assess commands.
type locationFlags struct {
	postcode string
	lat      float64
	lng      float64
	radius   float64
	format   string
}

var searchFlags locationFlags

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List heritage assets around a postcode or point",
	Long:  "Geocodes a postcode (or takes --lat/--lng), queries every configured endpoint and prints the assets within the radius, nearest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := searchFlags.validate(cmd, "table", "json", "geojson"); err != nil {
			return err
		}

		env, err := initSearch(cfg, "search")
		if err != nil {
			return err
		}

		res, err := runLocationSearch(cmd.Context(), env, searchFlags, cmd.Flags().Changed("lat"))
		if err != nil {
			return err
		}
		return writeSearchResult(os.Stdout, res, searchFlags.format)
	},
}

func init() {
	addLocationFlags(searchCmd, &searchFlags, "table")
	rootCmd.AddCommand(searchCmd)
}

func addLocationFlags(cmd *cobra.Command, f *locationFlags, defaultFormat string) {
	cmd.Flags().StringVar(&f.postcode, "postcode", "", "UK postcode to search around")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "latitude (WGS84)")
	cmd.Flags().Float64Var(&f.lng, "lng", 0, "longitude (WGS84)")
	cmd.Flags().Float64Var(&f.radius, "radius", 0, "search radius in km (default from config)")
	cmd.Flags().StringVar(&f.format, "format", defaultFormat, "output format")
	cmd.MarkFlagsMutuallyExclusive("postcode", "lat")
	cmd.MarkFlagsMutuallyExclusive("postcode", "lng")
	cmd.MarkFlagsRequiredTogether("lat", "lng")
}

func (f locationFlags) validate(cmd *cobra.Command, formats ...string) error {
	if f.postcode == "" && !cmd.Flags().Changed("lat") {
		return eris.New("either --postcode or --lat and --lng is required")
	}
	for _, ok := range formats {
		if f.format == ok {
			return nil
		}
	}
	return eris.Errorf("unsupported --format %q", f.format)
}

// runLocationSearch runs the search described by f. A point search is
// labelled with its nearest postcode when one can be found.
func runLocationSearch(ctx context.Context, env *searchEnv, f locationFlags, byPoint bool) (*search.Result, error) {
	radius := f.radius
	if radius == 0 {
		radius = cfg.Search.DefaultRadiusKm
	}

	if !byPoint {
		return env.Service.FindByPostcode(ctx, f.postcode, radius)
	}

	res, err := env.Service.Search(ctx, geodesy.LatLng(f.lat, f.lng), radius)
	if err != nil {
		return nil, err
	}
	if near, err := env.Geocoder.Nearest(ctx, f.lat, f.lng); err == nil {
		res.Postcode = near.Postcode
	} else {
		zap.L().Debug("search: no nearest postcode", zap.Error(err))
	}
	return res, nil
}

func writeSearchResult(out io.Writer, res *search.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(res), "encode json")
	case "geojson":
		body, err := export.GeoJSON(res.Assets)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(body))
		return eris.Wrap(err, "write geojson")
	default:
		formatAssets(out, res)
		return nil
	}
}

// formatAssets writes a tabular representation of the search result to out.
func formatAssets(out io.Writer, res *search.Result) {
	label := res.Centroid.String()
	if res.Postcode != "" {
		label = res.Postcode + " " + label
	}
	_, _ = fmt.Fprintf(out, "%d heritage assets within %g km of %s\n\n", len(res.Assets), res.RadiusKm, label)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DIST_KM\tCATEGORY\tSIGNIFICANCE\tPERIOD\tID\tNAME")
	_, _ = fmt.Fprintln(w, "-------\t--------\t------------\t------\t--\t----")
	for _, a := range res.Assets {
		_, _ = fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\t%s\t%s\n",
			a.DistanceKm,
			a.Category,
			a.Significance,
			a.Period,
			a.ID,
			truncate(a.Name, 60),
		)
	}
	_ = w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
