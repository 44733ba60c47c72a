package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-hoop-metrics/internal/zone"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <shot_x> <shot_y>",
	Short: "Print the court zone of a shot location",
	Args:  cobra.ExactArgs(2),
	RunE:  runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid shot_x %q: %w", args[0], err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid shot_y %q: %w", args[1], err)
	}
	id := zone.Classify(x, y)
	pts := 2
	if zone.IsThree(id) {
		pts = 3
	}
	fmt.Fprintf(os.Stdout, "zone %d  %s  (%d-pt)\n", id, zone.Name(id), pts)
	return nil
}
