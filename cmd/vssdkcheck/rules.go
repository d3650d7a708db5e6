package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/mpyw/vssdkanalyzers"
	"github.com/mpyw/vssdkanalyzers/internal/diag"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the diagnostics the shipped rules can report",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func runRules(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := vssdkanalyzers.NewEngine(&cfg)
	if err != nil {
		return err
	}
	if err := eng.LoadErrors(); err != nil {
		return err
	}

	header := []string{"ID", "SEVERITY", "ENABLED", "TITLE"}
	rows := [][]string{header}
	for _, d := range eng.Supported() {
		rows = append(rows, []string{d.ID, d.DefaultSeverity.String(), enabled(cfg.Enable, cfg.Disable, d), d.Title})
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]+2))
		}
		b.WriteByte('\n')
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())

	return err
}

func enabled(enable, disable []string, d *diag.Descriptor) string {
	for _, id := range disable {
		if strings.EqualFold(id, d.ID) {
			return "no"
		}
	}
	if d.EnabledByDefault {
		return "yes"
	}
	for _, id := range enable {
		if strings.EqualFold(id, d.ID) {
			return "yes"
		}
	}

	return "no"
}
