package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"shareregistry/internal/app"
	"shareregistry/internal/profile/handler"
	"shareregistry/internal/profile/models"
)

// Exporter is the slice of the profile service the export command needs.
type Exporter interface {
	ExportAll(ctx context.Context, q models.ListQuery) ([]models.ExportRow, error)
}

func ExportCommand() *cobra.Command {
	var (
		query, status, reviewStatus string
		outPath                     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write matching client profiles as CSV",
		Long: `Write every matching client profile, one row per profile, in the
same CSV layout the API serves.

Examples:
  registryctl export --out all_profiles.csv
  registryctl export --query ABCDE1234F
  registryctl export --review-status needs_attention`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := models.ListQuery{Query: query, Status: status, ReviewStatus: reviewStatus}
			if err := q.Validate(); err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				var w io.Writer = cmd.OutOrStdout()
				if outPath != "" {
					f, err := os.Create(outPath)
					if err != nil {
						return fmt.Errorf("create %s: %w", outPath, err)
					}
					defer f.Close()
					w = f
				}
				n, err := WriteExport(ctx, a.Profiles, q, w)
				if err != nil {
					return err
				}
				if outPath != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", n, outPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Free-text search across client id, names, PAN and email")
	cmd.Flags().StringVar(&status, "status", "", "Profile status filter")
	cmd.Flags().StringVar(&reviewStatus, "review-status", "", "Only profiles with a holding in this review status")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}

// WriteExport streams the export rows for q to w and returns the row count.
func WriteExport(ctx context.Context, exp Exporter, q models.ListQuery, w io.Writer) (int, error) {
	rows, err := exp.ExportAll(ctx, q)
	if err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := handler.WriteCSV(cw, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}
