package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankmint/internal/cli"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/service"
)

func newRulesCommand(gf *globalFlags) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
	}
	rulesCmd.AddCommand(
		newRulesListCommand(gf),
		newRulesAddCommand(gf),
		newRulesDeleteCommand(gf),
	)
	return rulesCmd
}

func newRulesListCommand(gf *globalFlags) *cobra.Command {
	var keywords bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules by priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, gf)
			if err != nil {
				return err
			}
			defer a.Close()

			rules, err := a.svc.ListRules(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rules) == 0 {
				fmt.Fprintln(out, "No rules.")
			} else {
				rows := make([][]string, 0, len(rules))
				for _, r := range rules {
					rows = append(rows, []string{
						r.ID,
						string(r.Source),
						string(r.MatchType),
						cli.Truncate(r.Pattern, 30),
						r.Category,
						cli.FormatConfidence(r.Confidence),
						strconv.Itoa(r.Priority),
						cli.FormatNumber(int64(r.HitCount)),
					})
				}
				fmt.Fprint(out, cli.RenderTable(cli.Table{
					Title:   fmt.Sprintf("Rules (%d)", len(rules)),
					Headers: []string{"ID", "Source", "Match", "Pattern", "Category", "Conf", "Priority", "Hits"},
					Rows:    rows,
					Left:    []int{1, 2, 3, 4},
				}))
			}

			if !keywords {
				return nil
			}
			hits, err := a.svc.KeywordHits(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(hits))
			for _, kw := range sortedKeys(hits) {
				rows = append(rows, []string{kw, cli.FormatNumber(int64(hits[kw]))})
			}
			fmt.Fprint(out, cli.RenderTable(cli.Table{
				Title:   "Keyword matches",
				Headers: []string{"Keyword", "Hits"},
				Rows:    rows,
			}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&keywords, "keywords", false, "also show built-in keyword match counts")
	return cmd
}

func newRulesAddCommand(gf *globalFlags) *cobra.Command {
	var matchType string
	var confidence float64
	var priority int

	cmd := &cobra.Command{
		Use:   "add <pattern> <category>",
		Short: "Add a user rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, gf)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.svc.CreateRule(cmd.Context(), model.Rule{
				Pattern:    args[0],
				MatchType:  model.MatchType(matchType),
				Category:   args[1],
				Confidence: confidence,
				Priority:   priority,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Created rule %s: %s %q -> %s\n", cli.Good("✓"), r.ID, r.MatchType, r.Pattern, r.Category)
			return nil
		},
	}

	cmd.Flags().StringVar(&matchType, "match-type", string(model.MatchRegex), "exact, contains or regex")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.90, "confidence assigned to matches")
	cmd.Flags().IntVar(&priority, "priority", service.DefaultRulePriority, "lower value wins")

	return cmd
}

func newRulesDeleteCommand(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, gf)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.DeleteRule(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted rule %s\n", cli.Good("✓"), args[0])
			return nil
		},
	}
}
