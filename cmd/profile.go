package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-hoop-metrics/internal/model"
	"github.com/pable/go-hoop-metrics/internal/report"
)

var (
	profileKey keyFlags
	profileAll bool
)

// profileCmd prints one stored profile, or every profile of a player at the
// chosen granularity.
var profileCmd = &cobra.Command{
	Use:   "profile <player>",
	Short: "Show a player's shot profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfile,
}

func init() {
	profileKey.register(profileCmd)
	profileCmd.Flags().BoolVar(&profileAll, "all", false, "list every profile of the player at the granularity")
}

func runProfile(cmd *cobra.Command, args []string) error {
	key, g, err := profileKey.resolve(args[0])
	if profileAll {
		// --all only needs the granularity; missing team/year is fine.
		if g, err = allGranularity(); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if profileAll {
		profiles, err := db.ProfilesFor(g, []string{key.Player})
		if err != nil {
			return fmt.Errorf("query profiles: %w", err)
		}
		if len(profiles) == 0 {
			fmt.Fprintf(os.Stderr, "No %s profiles found for %s\n", g, key.Player)
			return nil
		}
		fmt.Fprintf(os.Stdout, "\n--- %s (%s) ---\n", key.Player, g)
		report.PrintProfileTable(os.Stdout, g, profiles, nil)
		return nil
	}

	p, err := db.GetProfile(g, key)
	if err != nil {
		return err
	}
	report.PrintProfileCard(os.Stdout, g, p)
	return nil
}

// allGranularity picks the granularity for --all from --by, falling back to
// by-team-and-year so every season and team is listed.
func allGranularity() (g model.Granularity, err error) {
	if profileKey.by == "" {
		return model.ByTeamAndYear, nil
	}
	return model.ParseGranularity(profileKey.by)
}
