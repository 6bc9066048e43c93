package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankmint/internal/cli"
)

func newSuggestCommand(gf *globalFlags) *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   "suggest <description>",
		Short: "Suggest categories for a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}

			a, err := openApp(cmd, gf)
			if err != nil {
				return err
			}
			defer a.Close()

			desc := strings.Join(args, " ")
			got, err := a.svc.Suggest(cmd.Context(), desc, amt)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(got) == 0 {
				fmt.Fprintf(out, "No suggestions for %q.\n", desc)
				return nil
			}

			rows := make([][]string, 0, len(got))
			for _, r := range got {
				rows = append(rows, []string{
					r.Category,
					cli.FormatConfidence(r.Confidence),
					string(r.Explanation.Tier),
					r.Explanation.Pattern,
				})
			}
			fmt.Fprint(out, cli.RenderTable(cli.Table{
				Title:   "Suggestions: " + cli.Truncate(desc, 40),
				Headers: []string{"Category", "Conf", "Tier", "Matched"},
				Rows:    rows,
				Left:    []int{2, 3},
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "-1", "signed amount; direction selects inflow or outflow keywords")
	return cmd
}
