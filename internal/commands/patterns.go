package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankmint/internal/cli"
	"github.com/cleared-dev/bankmint/internal/model"
)

func newPatternsCommand(gf *globalFlags) *cobra.Command {
	var account string
	var all bool

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Detect recurring inflows and outflows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, gf)
			if err != nil {
				return err
			}
			defer a.Close()

			ps, err := a.svc.Patterns(cmd.Context(), account)
			if err != nil {
				return err
			}
			if !all {
				kept := ps[:0]
				for _, p := range ps {
					if p.Recurring() {
						kept = append(kept, p)
					}
				}
				ps = kept
			}

			out := cmd.OutOrStdout()
			if len(ps) == 0 {
				fmt.Fprintln(out, "No recurring patterns found.")
				return nil
			}
			fmt.Fprint(out, renderPatterns(ps))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "only this account")
	cmd.Flags().BoolVar(&all, "all", false, "include irregular vendors")
	return cmd
}

func renderPatterns(ps []model.RecurringPattern) string {
	rows := make([][]string, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, []string{
			cli.Truncate(p.VendorKey, 24),
			cli.Truncate(p.Category, 22),
			string(p.Frequency),
			cli.FormatSignedMoney(p.AvgAmount),
			strconv.Itoa(p.Occurrences),
			cli.FormatDate(p.NextExpected),
			cli.FormatConfidence(p.Confidence),
			cli.FormatConfidence(p.Criticality),
		})
	}
	return cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Recurring patterns (%d)", len(ps)),
		Headers: []string{"Vendor", "Category", "Cadence", "Avg amount", "Seen", "Next", "Conf", "Critical"},
		Rows:    rows,
		Left:    []int{1, 2},
	})
}
