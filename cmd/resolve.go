// Package cmd implements the command-line interface for vsel.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vsel-cli/vsel/cms"
	"github.com/vsel-cli/vsel/color"
	"github.com/vsel-cli/vsel/filesystem"
	"github.com/vsel-cli/vsel/icon"
	"github.com/vsel-cli/vsel/inline"
	"github.com/vsel-cli/vsel/key"
	"github.com/vsel-cli/vsel/probe"
	"github.com/vsel-cli/vsel/query"
	"github.com/vsel-cli/vsel/resolver"
	"github.com/vsel-cli/vsel/source"
	"github.com/vsel-cli/vsel/style"
	"github.com/vsel-cli/vsel/util"
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringP("title", "t", "", "Title to search for")
	resolveCmd.Flags().StringP("year", "y", "", "Release year the title must match exactly")
	resolveCmd.Flags().String("type", "", "Media type filter: movie or tv")
	resolveCmd.Flags().StringP("source", "s", "", "Pin an exact catalog site key")
	resolveCmd.Flags().String("id", "", "Pin an exact content id on the pinned site")
	resolveCmd.Flags().BoolP("prefer", "p", viper.GetBool(key.ResolvePrefer), "Probe candidates and pick the best source")
	resolveCmd.Flags().BoolP("json", "j", false, "Emit the full result as JSON")
	resolveCmd.Flags().String("pick", "", "Non-interactive candidate picker: first, last, exact, index")
	resolveCmd.Flags().String("pick-value", "", "Value for the exact and index pickers")
	resolveCmd.Flags().StringP("output", "o", "", "Write the result to a file instead of stdout")

	lo.Must0(resolveCmd.RegisterFlagCompletionFunc("title", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(resolveCmd.RegisterFlagCompletionFunc("type", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(source.MediaTypeMovie), string(source.MediaTypeTV)}, cobra.ShellCompDirectiveNoFileComp
	}))

	resolveCmd.SetOut(os.Stdout)
}

// resolveCmd runs the discovery pipeline for one title.
var resolveCmd = &cobra.Command{
	Use:     "resolve [title]",
	Short:   "Find the best playable source for a title",
	Aliases: []string{"search", "find"},
	Args:    cobra.MaximumNArgs(1),
	Example: `  vsel resolve "中餐厅 第九季" --prefer
  vsel resolve --title "Inception" --year 2010 --type movie --json
  vsel resolve --source okzy --id 42`,
	Run: func(cmd *cobra.Command, args []string) {
		request := resolver.Request{
			Title:      lo.Must(cmd.Flags().GetString("title")),
			Year:       lo.Must(cmd.Flags().GetString("year")),
			Type:       source.MediaType(lo.Must(cmd.Flags().GetString("type"))),
			Source:     lo.Must(cmd.Flags().GetString("source")),
			ID:         lo.Must(cmd.Flags().GetString("id")),
			PreferBest: lo.Must(cmd.Flags().GetBool("prefer")),
		}
		if len(args) > 0 {
			request.Title = args[0]
		}

		asJson := lo.Must(cmd.Flags().GetBool("json"))
		pick := lo.Must(cmd.Flags().GetString("pick"))
		output := lo.Must(cmd.Flags().GetString("output"))

		r := newResolver(!asJson)

		if asJson || pick != "" || output != "" {
			out := cmd.OutOrStdout()
			if output != "" {
				f, err := filesystem.API().Create(output)
				handleErr(err)
				defer util.Ignore(f.Close)
				out = f
			}

			picker := mo.None[inline.Picker]()
			if pick != "" {
				parsed, err := inline.ParsePicker(pick, lo.Must(cmd.Flags().GetString("pick-value")))
				handleErr(err)
				picker = mo.Some(parsed)
			}

			handleErr(inline.Run(context.Background(), r, &inline.Options{
				Out:     out,
				Request: request,
				Json:    asJson,
				Picker:  picker,
			}))
			rememberTitle(request.Title)
			return
		}

		result, err := r.Resolve(context.Background(), request)
		if err != nil {
			var notFound *resolver.NotFoundError
			if errors.As(err, &notFound) {
				if suggestion, ok := notFound.Suggestion.Get(); ok {
					fmt.Fprintf(os.Stderr, "%s did you mean %s?\n",
						icon.Get(icon.Search),
						style.Fg(color.Yellow)(suggestion.Title),
					)
				}
			}
			handleErr(err)
		}

		chosen := result.Chosen
		if len(result.Candidates) > 1 && !request.PreferBest && util.IsTerminal() {
			chosen = askCandidate(result.Candidates)
		}

		printResult(cmd, &chosen, &result)
		rememberTitle(request.Title)
	},
}

// newResolver assembles the full pipeline from the site registry and
// configuration. Progress is reported on stderr unless suppressed.
func newResolver(progress bool) *resolver.Resolver {
	sites, err := cms.LoadSites()
	handleErr(err)

	onStage := func(resolver.Stage) {}
	if progress {
		var erase func()
		onStage = func(stage resolver.Stage) {
			if erase != nil {
				erase()
				erase = nil
			}
			switch stage {
			case resolver.StageSearching:
				erase = util.PrintErasable(fmt.Sprintf("%s Searching catalogs...", icon.Get(icon.Search)))
			case resolver.StageFetchingDetail:
				erase = util.PrintErasable(fmt.Sprintf("%s Fetching detail...", icon.Get(icon.Search)))
			case resolver.StagePreferring:
				erase = util.PrintErasable(fmt.Sprintf("%s Probing sources...", icon.Get(icon.Probe)))
			}
		}
	}

	clock := clockwork.NewRealClock()
	return resolver.New(resolver.Options{
		Providers: []source.Provider{cms.NewProvider(sites, clock)},
		Prober:    probe.New(nil, clock),
		OnStage:   onStage,
	})
}

// askCandidate lets the user choose between equally matching candidates.
func askCandidate(candidates []source.Candidate) source.Candidate {
	options := lo.Map(candidates, func(c source.Candidate, _ int) string {
		return c.String()
	})

	var choice string
	err := survey.AskOne(&survey.Select{
		Message: "Multiple sources match",
		Options: options,
	}, &choice)
	handleErr(err)

	_, i, _ := lo.FindIndexOf(options, func(o string) bool {
		return o == choice
	})
	return candidates[i]
}

func printResult(cmd *cobra.Command, chosen *source.Candidate, result *resolver.Result) {
	cmd.Printf("%s %s %s\n",
		style.Fg(color.Green)(icon.Get(icon.Best)),
		style.Bold(chosen.Title),
		style.Faint(fmt.Sprintf("(%s, %s)", chosen.SourceName, util.Quantify(len(chosen.Episodes), "episode", "episodes"))),
	)

	if i := lo.IndexOf(lo.Map(result.Candidates, func(c source.Candidate, _ int) string {
		return c.Key()
	}), chosen.Key()); i >= 0 && i < len(result.Measurements) {
		m := result.Measurements[i]
		cmd.Printf("  %s %s  %s %dms  %s %s\n",
			style.Faint("quality"), string(m.Quality),
			style.Faint("ping"), m.PingMs,
			style.Faint("speed"), m.LoadSpeed,
		)
	}

	for _, episode := range chosen.Episodes {
		cmd.Println(episode)
	}
}

func rememberTitle(title string) {
	if title != "" {
		_ = query.Remember(title, 1)
	}
}
