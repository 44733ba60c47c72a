package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-hoop-metrics/internal/aggregator"
	"github.com/pable/go-hoop-metrics/internal/model"
	"github.com/pable/go-hoop-metrics/internal/report"
	"github.com/pable/go-hoop-metrics/internal/similarity"
	"github.com/pable/go-hoop-metrics/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long: `Open a persistent session against the database. Distance matrices stay
cached between queries until the profiles are rebuilt. Type 'help' for
available commands.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

// shellArgs is a parsed REPL line: positional words joined with spaces (so
// player names need no quoting) plus --flag value options.
type shellArgs struct {
	name string
	opts map[string]string
}

// shellSwitches never take a value.
var shellSwitches = map[string]bool{"same-team": true, "same-year": true}

func parseShellArgs(tokens []string) shellArgs {
	sa := shellArgs{opts: make(map[string]string)}
	var words []string
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if !strings.HasPrefix(t, "-") {
			words = append(words, t)
			continue
		}
		key := strings.TrimLeft(t, "-")
		if !shellSwitches[key] && i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") {
			sa.opts[key] = tokens[i+1]
			i++
		} else {
			sa.opts[key] = "true"
		}
	}
	sa.name = strings.Join(words, " ")
	return sa
}

func (sa shellArgs) intOpt(key string) (int, error) {
	v, ok := sa.opts[key]
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s %q", key, v)
	}
	return n, nil
}

// key resolves the profile key and granularity from --team, --year and --by.
func (sa shellArgs) key() (model.ProfileKey, model.Granularity, error) {
	year, err := sa.intOpt("year")
	if err != nil {
		return model.ProfileKey{}, model.Overall, err
	}
	kf := keyFlags{team: sa.opts["team"], year: year, by: sa.opts["by"]}
	return kf.resolve(sa.name)
}

// filter builds the candidate filter from --same-team, --same-year,
// --filter-team and --filter-year.
func (sa shellArgs) filter() (similarity.Filter, error) {
	year, err := sa.intOpt("filter-year")
	if err != nil {
		return similarity.Filter{}, err
	}
	return similarity.Filter{
		SameTeam: sa.opts["same-team"] == "true",
		SameYear: sa.opts["same-year"] == "true",
		Team:     sa.opts["filter-team"],
		Year:     year,
	}, nil
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := similarity.NewEngine(logger)
	if _, err := engine.Refresh(db); err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	cGreeting.Println("hoopmetrics shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("hoopmetrics")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], parseShellArgs(tokens[1:])

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "profile":
			if args.name == "" {
				cError.Fprintln(os.Stderr, "usage: profile <player> [--team T] [--year Y]")
				continue
			}
			shellProfile(engine, args)
		case "similar", "least":
			if args.name == "" {
				cError.Fprintf(os.Stderr, "usage: %s <player> [--team T] [--year Y] [-k N] [--features f,...]"+
					" [--same-team] [--same-year] [--filter-team T] [--filter-year Y]\n", cmd)
				continue
			}
			shellSimilar(engine, args, cmd == "least")
		case "zones":
			shellZones(db, args)
		case "list":
			column, ok := listColumns[args.name]
			if !ok {
				cError.Fprintln(os.Stderr, "usage: list players|teams|years")
				continue
			}
			if err := printList(db, column, storage.ShotFilter{}); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		case "summary":
			if err := printSummary(db); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		case "refresh":
			changed, err := engine.Refresh(db)
			if err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			if changed {
				cMuted.Printf("loaded profile generation %s\n", engine.Generation())
			} else {
				cMuted.Println("profiles unchanged")
			}
		case "cache":
			fmt.Printf("generation %s  matrices cached %d  computed %d\n",
				engine.Generation(), engine.CacheSize(), engine.Computations())
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"profile <player> [--team T] [--year Y]", "show one profile"},
		{"similar <player> [... -k N --features f]", "closest profiles"},
		{"least <player> [... -k N --features f]", "farthest profiles"},
		{"zones [player] [--team T] [--year Y]", "FG% per court zone"},
		{"list players|teams|years", "distinct values"},
		{"summary", "database overview"},
		{"refresh", "reload profiles if they were rebuilt"},
		{"cache", "show distance matrix cache state"},
		{"help", "show this message"},
		{"  filters: --same-team --same-year", "only candidates sharing the player's team/season"},
		{"           --filter-team T --filter-year Y", "only candidates from that team/season"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-44s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellProfile(engine *similarity.Engine, args shellArgs) {
	key, g, err := args.key()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	p, err := engine.Profile(key, g)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintProfileCard(os.Stdout, g, p)
}

func shellSimilar(engine *similarity.Engine, args shellArgs, farthest bool) {
	key, g, err := args.key()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	k, err := args.intOpt("k")
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if k == 0 {
		k = cfg.TopK
	}
	features := cfg.Features
	if f, ok := args.opts["features"]; ok {
		if features, err = model.ParseFeatures(f); err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
	}
	filter, err := args.filter()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	q := similarity.Query{Key: key, K: k, Granularity: g, Features: features, Filter: filter}
	if err := printSimilar(engine, q, farthest); err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func shellZones(db *storage.DB, args shellArgs) {
	year, err := args.intOpt("year")
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	f := storage.ShotFilter{Player: args.name, Team: args.opts["team"], Year: year}
	shots, err := db.QueryShots(f)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(shots) == 0 {
		cMuted.Println("no shots found")
		return
	}
	cHeader.Fprintf(os.Stdout, "--- ZONES (%d shots) ---\n", len(shots))
	report.PrintZoneTable(os.Stdout, aggregator.ZoneBreakdown(shots))
}
