package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	"github.com/riskibarqy/volleystats/internal/infrastructure/pdftext"
	"github.com/spf13/cobra"
)

func (c *cli) parseCommand() *cobra.Command {
	var team string

	cmd := &cobra.Command{
		Use:   "parse <file.pdf|file.txt>",
		Short: "Print the team totals of a box score report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			text := string(raw)
			if strings.EqualFold(filepath.Ext(path), ".pdf") {
				text, err = pdftext.NewExtractor(c.logger).FirstPageText(ctx, raw)
				if err != nil {
					return fmt.Errorf("extract text from %s: %w", path, err)
				}
			}

			svc, err := c.services(ctx, c.logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			totals, err := svc.Stats.ParseText(ctx, text)
			if err != nil {
				return err
			}
			if team != "" {
				totals = filterTeam(totals, team)
			}

			encoded, err := sonic.ConfigStd.MarshalIndent(totals, "", "  ")
			if err != nil {
				return fmt.Errorf("encode totals: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return err
		},
	}
	cmd.Flags().StringVar(&team, "team", "", "only print the totals of this team")

	return cmd
}

func filterTeam(totals []matchstats.Totals, team string) []matchstats.Totals {
	out := make([]matchstats.Totals, 0, 1)
	for _, t := range totals {
		if strings.EqualFold(strings.TrimSpace(t.TeamName), strings.TrimSpace(team)) {
			out = append(out, t)
		}
	}
	return out
}
