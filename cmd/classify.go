package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"shotsort/internal/classifier"
	"shotsort/internal/logging"
	"shotsort/internal/triage"
	"shotsort/internal/tui"
)

var classifyThreshold float64

// classifyRow is one line of the dry-run table.
type classifyRow struct {
	name        string
	result      classifier.Result
	destination triage.Destination
	err         error
}

var classifyCmd = &cobra.Command{
	Use:   "classify [flags] <input-dir>",
	Short: "Show how images would be sorted without copying anything",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, cfgPath, cfgExists, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("threshold") {
			cfg.Triage.ConfidenceThreshold = classifyThreshold
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		inputDir, err := resolveInputDir(args, cfg)
		if err != nil {
			return err
		}

		a, err := newApp(cfg, cfgPath, cfgExists)
		if err != nil {
			return err
		}
		defer a.Close()

		files, err := triage.Discover(inputDir)
		if err != nil {
			a.logger.Errorw("cannot list input folder", logging.FieldPath, inputDir, logging.FieldError, err)
		}
		if len(files) == 0 {
			fmt.Fprintln(os.Stdout, warnStyle.Render(triage.NoImagesMessage))
			return nil
		}

		if err := a.loadClassifier(ctx); err != nil {
			return err
		}

		rows := make([]classifyRow, 0, len(files))
		for _, name := range files {
			row := classifyRow{name: name}
			row.result, row.err = a.classifier.Classify(ctx, filepath.Join(inputDir, name), cfg.Triage.Verbose)
			if row.err == nil {
				row.destination = triage.Route(row.result, cfg.Triage.ConfidenceThreshold)
			}
			rows = append(rows, row)
		}

		renderClassifyTable(os.Stdout, rows, cfg.Triage.ConfidenceThreshold)
		return nil
	},
}

func renderClassifyTable(w io.Writer, rows []classifyRow, threshold float64) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Label", "Confidence", "Code", "Normal", "Destination"})

	counts := map[string]int{}
	for _, row := range rows {
		if row.err != nil {
			counts["error"]++
			t.AppendRow(table.Row{row.name, "-", "-", "-", "-", outcomeStyle("error").Render("error: " + row.err.Error())})
			continue
		}
		dest := row.destination.String()
		counts[dest]++
		t.AppendRow(table.Row{
			row.name,
			row.result.Label.String(),
			fmt.Sprintf("%.3f", row.result.Confidence),
			fmt.Sprintf("%.3f", row.result.Scores[classifier.ScoreCode]),
			fmt.Sprintf("%.3f", row.result.Scores[classifier.ScoreNormal]),
			outcomeStyle(dest).Render(row.destination.Folder()),
		})
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("%d images", len(rows)),
		fmt.Sprintf("threshold %.2f", threshold),
		"",
		fmt.Sprintf("code %d", counts["code"]),
		fmt.Sprintf("clean %d", counts["clean"]),
		fmt.Sprintf("uncertain %d / errors %d", counts["uncertain"], counts["error"]),
	})
	t.Render()
}

func outcomeStyle(outcome string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(tui.OutcomeColor(outcome))
}

func init() {
	classifyCmd.Flags().Float64VarP(&classifyThreshold, "threshold", "t", triage.DefaultConfidenceThreshold, "minimum confidence for a decisive label")

	rootCmd.AddCommand(classifyCmd)
}
