package main

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/volleystats/internal/infrastructure/csvsource"
	"github.com/riskibarqy/volleystats/internal/usecase"
	"github.com/spf13/cobra"
)

func (c *cli) mergeCommand() *cobra.Command {
	var (
		schedules []string
		csvSpecs  []string
		out       string
		skipPDF   bool
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge box score totals, CSV exports and overrides into one player table",
		Example: "  statsctl merge --schedule schedule.csv --csv 4021:USC Münster=4021_usc.csv --out merged.csv\n" +
			"  statsctl merge --schedule schedule.csv --csv #12:Dresdner SC=dsc.csv --skip-pdf",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			files := make([]usecase.CSVFile, 0, len(csvSpecs))
			for _, spec := range csvSpecs {
				file, err := parseCSVSpec(spec)
				if err != nil {
					return err
				}
				files = append(files, file)
			}

			svc, err := c.services(ctx, c.logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			result, err := svc.Merge.Merge(ctx, usecase.MergeInput{
				SchedulePaths: schedules,
				CSVFiles:      files,
				SkipPDF:       skipPDF,
			})
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				encoded, err := csvsource.Encode(result.Rows)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(encoded)
				return err
			}

			if err := csvsource.WriteFile(ctx, out, result.Rows); err != nil {
				return err
			}
			c.logger.InfoContext(ctx, "merged rows written",
				"run_id", result.RunID,
				"path", out,
				"rows", len(result.Rows),
				"pdf_reports", result.PDFReports,
				"csv_files", result.CSVFiles,
			)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows written to %s\n", result.RunID, len(result.Rows), out)
			return err
		},
	}

	cmd.Flags().StringArrayVar(&schedules, "schedule", nil, "schedule CSV export (repeatable)")
	cmd.Flags().StringArrayVar(&csvSpecs, "csv", nil, "team CSV export as MATCH:TEAM=PATH, MATCH is a match id or #number (repeatable)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output CSV path (stdout when empty)")
	cmd.Flags().BoolVar(&skipPDF, "skip-pdf", false, "do not download box score reports")
	_ = cmd.MarkFlagRequired("schedule")

	return cmd
}

// parseCSVSpec reads MATCH:TEAM=PATH. A MATCH starting with '#' is a match
// number, anything else a match id.
func parseCSVSpec(spec string) (usecase.CSVFile, error) {
	key, path, ok := strings.Cut(spec, "=")
	if !ok {
		return usecase.CSVFile{}, fmt.Errorf("invalid --csv %q: expected MATCH:TEAM=PATH", spec)
	}
	matchRef, team, ok := strings.Cut(key, ":")
	matchRef, team, path = strings.TrimSpace(matchRef), strings.TrimSpace(team), strings.TrimSpace(path)
	if !ok || matchRef == "" || team == "" || path == "" {
		return usecase.CSVFile{}, fmt.Errorf("invalid --csv %q: expected MATCH:TEAM=PATH", spec)
	}

	file := usecase.CSVFile{Team: team, Path: path}
	if number, isNumber := strings.CutPrefix(matchRef, "#"); isNumber {
		file.MatchNumber = strings.TrimSpace(number)
	} else {
		file.MatchID = matchRef
	}
	return file, nil
}
