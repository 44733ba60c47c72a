package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-hoop-metrics/internal/report"
	"github.com/pable/go-hoop-metrics/internal/storage"
)

var sqlSchema bool

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the shots database",
	Long: `Run an arbitrary SQL query against the shots database and print results as a table.
Use --schema to print the table definitions.

Profile tables store team as '' and year as 0 when they do not group by them.`,
	Example: `  hoopmetrics sql "SELECT zone, COUNT(1) FROM shots GROUP BY zone"
  hoopmetrics sql --schema`,
	Args: func(cmd *cobra.Command, args []string) error {
		if sqlSchema {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runSQL,
}

func init() {
	sqlCmd.Flags().BoolVar(&sqlSchema, "schema", false, "print the database schema and exit")
}

func runSQL(cmd *cobra.Command, args []string) error {
	if sqlSchema {
		fmt.Fprintln(os.Stdout, strings.TrimSpace(storage.Schema()))
		return nil
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}
	report.PrintRawTable(os.Stdout, cols, rows)
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
