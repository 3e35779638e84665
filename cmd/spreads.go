package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/kozaktomas/photobook/internal/spread"
	"github.com/spf13/cobra"
)

var spreadsCmd = &cobra.Command{
	Use:   "spreads <pages>",
	Short: "Show how pages pair into spreads",
	Long: `Print every spread of a book with the given page count, showing which
page sits on the left and right half for the chosen binding.

Example:
  photobook spreads 8
  photobook spreads 12 --binding right`,
	Args: cobra.ExactArgs(1),
	RunE: runSpreads,
}

func init() {
	rootCmd.AddCommand(spreadsCmd)

	spreadsCmd.Flags().String("binding", string(spread.BindLeft), "Bound edge: left or right")
}

func sideLabel(p spread.Page) string {
	switch {
	case p.Index < 0:
		return ""
	case !p.Present:
		return "(empty)"
	default:
		return strconv.Itoa(p.Index + 1)
	}
}

func printSpreads(out io.Writer, pages int, binding spread.Binding) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPREAD\tKIND\tLEFT\tRIGHT\tLABEL")
	fmt.Fprintln(w, "------\t----\t----\t-----\t-----")
	for _, v := range spread.All(pages) {
		left, right := v.Sides(binding)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", v.Spread, v.Kind, sideLabel(left), sideLabel(right), v.Label)
	}
	w.Flush()
}

func runSpreads(cmd *cobra.Command, args []string) error {
	pages, err := strconv.Atoi(args[0])
	if err != nil || pages < 1 {
		return fmt.Errorf("invalid page count %q", args[0])
	}
	binding, err := spread.ParseBinding(mustGetString(cmd, "binding"))
	if err != nil {
		return err
	}

	fmt.Printf("%d page(s), %d spread(s), %s binding\n\n", pages, spread.Total(pages), binding)
	printSpreads(os.Stdout, pages, binding)
	return nil
}
