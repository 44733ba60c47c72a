package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-hoop-metrics/internal/storage"
)

var listFilter shotFilterFlags

// listCmd prints the distinct players, teams or years among the stored shots.
var listCmd = &cobra.Command{
	Use:       "list <players|teams|years>",
	Short:     "List distinct players, teams or season years",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"players", "teams", "years"},
	RunE:      runList,
}

func init() {
	listFilter.register(listCmd)
}

var listColumns = map[string]string{
	"players": "player",
	"teams":   "team",
	"years":   "year",
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	return printList(db, listColumns[args[0]], listFilter.filter())
}

func printList(db *storage.DB, column string, f storage.ShotFilter) error {
	values, err := db.DistinctValues(column, f)
	if err != nil {
		return fmt.Errorf("list %s: %w", column, err)
	}
	if len(values) == 0 {
		fmt.Fprintln(os.Stdout, "No shots stored yet. Run 'hoopmetrics ingest <dir>' to add some.")
		return nil
	}
	for _, v := range values {
		fmt.Fprintln(os.Stdout, v)
	}
	fmt.Fprintf(os.Stdout, "\n(%d %ss)\n", len(values), column)
	return nil
}
