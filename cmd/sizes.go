package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/layout"
	"github.com/spf13/cobra"
)

var sizesCmd = &cobra.Command{
	Use:   "sizes",
	Short: "List page sizes and format presets",
	Long:  `List the supported page sizes and the built-in format presets.`,
	Args:  cobra.NoArgs,
	RunE:  runSizes,
}

func init() {
	rootCmd.AddCommand(sizesCmd)
}

func printSizes(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tPORTRAIT (MM)\tLANDSCAPE (MM)")
	fmt.Fprintln(w, "----\t-------------\t--------------")
	for _, s := range layout.PageSizes() {
		fmt.Fprintf(w, "%s\t%.0fx%.0f\t%.0fx%.0f\n", s.Size, s.WidthMM, s.HeightMM, s.HeightMM, s.WidthMM)
	}
	w.Flush()
}

func printPresets(out io.Writer, cfg *config.Config) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPAGES\tSIZE\tORIENTATION\tBINDING\tFIT")
	fmt.Fprintln(w, "------\t-----\t----\t-----------\t-------\t---")
	for _, name := range cfg.PresetNames() {
		s, err := cfg.Preset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n", name, s.Pages, s.Size, s.Orientation, s.Binding, s.Fit)
	}
	return w.Flush()
}

func runSizes(cmd *cobra.Command, args []string) error {
	printSizes(os.Stdout)
	fmt.Println()
	return printPresets(os.Stdout, config.Load())
}
