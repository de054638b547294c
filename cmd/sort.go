package cmd

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"shotsort/internal/config"
	"shotsort/internal/logging"
	"shotsort/internal/triage"
	"shotsort/internal/tui"
)

// plainProgressEvery is the event interval for non-terminal progress lines.
const plainProgressEvery = 10

var (
	sortOutputDir  string
	sortThreshold  float64
	sortQuiet      bool
	sortBackend    string
	sortCommand    string
	sortEndpoint   string
	sortNoManifest bool
)

var sortCmd = &cobra.Command{
	Use:   "sort [flags] <input-dir>",
	Short: "Copy images into clean, code, and uncertain folders",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, cfgPath, cfgExists, err := loadConfig()
		if err != nil {
			return err
		}
		applySortFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		inputDir, err := resolveInputDir(args, cfg)
		if err != nil {
			return err
		}
		outputDir := sortOutputDir
		if outputDir == "" {
			outputDir = cfg.Paths.OutputDir
		}
		if outputDir == "" {
			outputDir = "sorted"
		}
		outputDir = absPath(outputDir)

		a, err := newApp(cfg, cfgPath, cfgExists)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.loadClassifier(ctx); err != nil {
			return err
		}

		runCfg := triage.RunConfig{
			InputDir:            inputDir,
			OutputDir:           outputDir,
			ConfidenceThreshold: cfg.Triage.ConfidenceThreshold,
			Verbose:             cfg.Triage.Verbose,
		}
		engine := triage.NewEngine(a.classifier, a.logger.With(logging.FieldComponent, "triage"),
			triage.WithManifest(cfg.Triage.WriteManifest),
		)

		updates := make(chan triage.ProgressEvent, 64)
		done, err := engine.Start(ctx, runCfg, updates)
		if err != nil {
			return err
		}

		if isTerminal(os.Stdout) {
			a.session.MuteConsole()
			err = showProgress(updates)
			a.session.UnmuteConsole()
			if err != nil {
				a.logger.Warnw("progress view failed", logging.FieldError, err)
			}
		} else {
			printProgress(os.Stderr, updates)
		}

		completion := <-done
		if completion.Err != nil {
			return completion.Err
		}
		report := completion.Report

		if report.NoImages {
			fmt.Fprintln(os.Stdout, warnStyle.Render(report.Message()))
			return nil
		}
		if isTerminal(os.Stdout) {
			printReport(os.Stdout, report)
		} else {
			fmt.Fprintln(os.Stdout, report.Message())
		}
		if a.session.LogFile != "" {
			fmt.Fprintln(os.Stdout, dimStyle.Render("Log: "+a.session.LogFile))
		}

		if cfg.Triage.RememberFolders {
			if err := rememberFolders(cfgPath, inputDir, outputDir); err != nil {
				a.logger.Warnw("cannot remember folders", logging.FieldPath, cfgPath, logging.FieldError, err)
			}
		}
		return nil
	},
}

func applySortFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Triage.ConfidenceThreshold = sortThreshold
	}
	if flags.Changed("quiet") {
		cfg.Triage.Verbose = !sortQuiet
	}
	if flags.Changed("backend") {
		cfg.Classifier.Backend = sortBackend
	}
	if flags.Changed("command") {
		cfg.Classifier.Command = sortCommand
	}
	if flags.Changed("endpoint") {
		cfg.Classifier.Endpoint = sortEndpoint
	}
	if sortNoManifest {
		cfg.Triage.WriteManifest = false
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// showProgress runs the progress view until updates closes. Events left
// after the view exits early are drained so the run never blocks.
func showProgress(updates <-chan triage.ProgressEvent) error {
	program := tea.NewProgram(tui.NewModel(updates))
	_, err := program.Run()
	for range updates {
	}
	return err
}

func printProgress(w io.Writer, updates <-chan triage.ProgressEvent) {
	for ev := range updates {
		if ev.Processed%plainProgressEvery == 0 || ev.Processed == ev.Total {
			fmt.Fprintf(w, "%s (%.0f%%)\n", ev.Message, ev.Fraction*100)
		}
	}
}

func printReport(w io.Writer, report triage.SummaryReport) {
	fmt.Fprintln(w, tui.RenderSummary(tui.SummaryRows(report)))
	folders := []struct {
		label string
		dest  triage.Destination
	}{
		{"Clean", triage.DestinationClean},
		{"Code", triage.DestinationCode},
		{"Uncertain", triage.DestinationUncertain},
	}
	for _, folder := range folders {
		style := lipgloss.NewStyle().Foreground(tui.OutcomeColor(folder.dest.String()))
		fmt.Fprintf(w, "%s %s\n", style.Render(fmt.Sprintf("%-10s", folder.label+":")), report.Destinations.Path(folder.dest))
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("Tip: review %s to sort low-confidence images by hand.", report.Destinations.Uncertain)))
}

// rememberFolders stores the folders of a finished run as the next
// defaults. Only the paths change; other settings keep their file values.
func rememberFolders(cfgPath, inputDir, outputDir string) error {
	cfg, _, _, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg.Paths.InputDir = inputDir
	cfg.Paths.OutputDir = outputDir
	return config.Save(cfgPath, cfg)
}

var (
	dimStyle  = lipgloss.NewStyle().Foreground(tui.ColorDim)
	warnStyle = lipgloss.NewStyle().Foreground(tui.ColorWarn)
)

func init() {
	sortCmd.Flags().StringVarP(&sortOutputDir, "output", "o", "", "destination folder for sorted copies (default \"sorted\")")
	sortCmd.Flags().Float64VarP(&sortThreshold, "threshold", "t", triage.DefaultConfidenceThreshold, "minimum confidence for a decisive label")
	sortCmd.Flags().BoolVarP(&sortQuiet, "quiet", "q", false, "log progress every 50 images instead of every score")
	sortCmd.Flags().StringVar(&sortBackend, "backend", "", "classifier backend: exec or http")
	sortCmd.Flags().StringVar(&sortCommand, "command", "", "classifier helper command for the exec backend")
	sortCmd.Flags().StringVar(&sortEndpoint, "endpoint", "", "inference server URL for the http backend")
	sortCmd.Flags().BoolVar(&sortNoManifest, "no-manifest", false, "skip writing shotsort_manifest.json")

	rootCmd.AddCommand(sortCmd)
}
