package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"shotsort/internal/errors"
	"shotsort/internal/tui"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "shotsort",
	Short:         "shotsort - separate screenshots of code from ordinary images",
	Long:          "shotsort classifies every image in a folder as a code screenshot or an ordinary picture and copies it into clean, code, or uncertain folders.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, hintStyle.Render("hint: "+hint))
		}
		os.Exit(1)
	}
}

var (
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorError)
	hintStyle  = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to shotsort.toml (default ~/.config/shotsort/config.toml)")
}
