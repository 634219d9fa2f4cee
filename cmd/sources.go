// Package cmd implements the command-line interface for vsel.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/vsel-cli/vsel/cms"
	"github.com/vsel-cli/vsel/color"
	"github.com/vsel-cli/vsel/icon"
	"github.com/vsel-cli/vsel/style"
)

func completionSiteKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	sites, err := cms.LoadSites()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return lo.Map(sites, func(s cms.Site, _ int) string {
		return s.Key
	}), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

// sourcesCmd serves as the parent command for managing the catalog site registry.
var sourcesCmd = &cobra.Command{
	Use:     "sources",
	Short:   "Manage the catalog site registry",
	Aliases: []string{"sites"},
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesListCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	sourcesListCmd.SetOut(os.Stdout)
}

// sourcesListCmd displays the configured catalog sites.
var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured catalog sites",
	Run: func(cmd *cobra.Command, args []string) {
		sites, err := cms.LoadSites()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			lo.Must0(encoder.Encode(sites))
			return
		}

		for _, site := range sites {
			status := style.Fg(color.Green)("enabled")
			if site.Disabled {
				status = style.Fg(color.Red)("disabled")
			}

			cmd.Printf("%s %s %s\n", style.Bold(site.Key), site.Name, status)
			cmd.Printf("  %s\n", style.Faint(site.API))
		}
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesEnableCmd)
	sourcesCmd.AddCommand(sourcesDisableCmd)
}

// sourcesEnableCmd re-enables a site for searching.
var sourcesEnableCmd = &cobra.Command{
	Use:               "enable [key]",
	Short:             "Enable a catalog site",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionSiteKeys,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(setSiteDisabled(args[0], false))
		fmt.Printf("%s enabled %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), args[0])
	},
}

// sourcesDisableCmd keeps a site in the registry but out of searches.
var sourcesDisableCmd = &cobra.Command{
	Use:               "disable [key]",
	Short:             "Disable a catalog site without removing it",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionSiteKeys,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(setSiteDisabled(args[0], true))
		fmt.Printf("%s disabled %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), args[0])
	},
}

func setSiteDisabled(siteKey string, disabled bool) error {
	sites, err := cms.LoadSites()
	if err != nil {
		return err
	}

	_, i, ok := lo.FindIndexOf(sites, func(s cms.Site) bool {
		return s.Key == siteKey
	})
	if !ok {
		return fmt.Errorf("unknown site %q", siteKey)
	}

	sites[i].Disabled = disabled
	return cms.SaveSites(sites)
}
