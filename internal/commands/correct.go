package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankmint/internal/cli"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/service"
)

func newCorrectCommand(gf *globalFlags) *cobra.Command {
	var req service.CorrectionRequest
	var matchType string

	cmd := &cobra.Command{
		Use:   "correct <transaction-id> <category>",
		Short: "Recategorize a transaction",
		Long: "Recategorize a transaction. Repeated corrections of the same vendor\n" +
			"are learned as memory rules; --rule also creates a user rule now.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.TransactionID = args[0]
			req.NewCategory = args[1]
			req.MatchType = model.MatchType(matchType)

			a, err := openApp(cmd, gf)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.svc.Catalog().Exists(req.NewCategory) {
				a.log.Warn().Str("category", req.NewCategory).Msg("category is not in the catalog")
			}

			res, err := a.svc.Correct(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			t := res.Transaction
			fmt.Fprintf(out, "%s %s %s -> %s\n", cli.Good("✓"), t.ID, cli.Truncate(t.Description, 40), t.Category)
			if res.Rule != nil {
				fmt.Fprintf(out, "  created rule %s: %s %q -> %s\n", res.Rule.ID, res.Rule.MatchType, res.Rule.Pattern, res.Rule.Category)
			}
			for _, r := range res.Promoted {
				fmt.Fprintf(out, "  learned vendor %q -> %s (confidence %s)\n", r.Pattern, r.Category, cli.FormatConfidence(r.Confidence))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Vendor, "vendor", "", "vendor name to learn instead of the derived one")
	cmd.Flags().BoolVar(&req.MakeRule, "rule", false, "also create a user rule")
	cmd.Flags().StringVar(&req.Pattern, "pattern", "", "rule pattern (default: the vendor)")
	cmd.Flags().StringVar(&matchType, "match-type", string(model.MatchContains), "rule match type: exact, contains or regex")

	return cmd
}
