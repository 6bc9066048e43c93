package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankmint/internal/cli"
	"github.com/cleared-dev/bankmint/internal/forecast"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/service"
)

func newForecastCommand(gf *globalFlags) *cobra.Command {
	var weeks int
	var scenario, threshold, account string
	var daily bool

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project cash balance and flag shortfalls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.ForecastRequest{
				Weeks:     weeks,
				Scenario:  forecast.Scenario(scenario),
				AccountID: account,
			}
			if threshold != "" {
				d, err := decimal.NewFromString(threshold)
				if err != nil {
					return fmt.Errorf("invalid --threshold %q: %w", threshold, err)
				}
				req.CrisisThreshold = &d
			}

			a, err := openApp(cmd, gf)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.svc.Forecast(cmd.Context(), req)
			if err != nil {
				return err
			}
			renderForecast(cmd.OutOrStdout(), resp, daily)
			return nil
		},
	}

	cmd.Flags().IntVar(&weeks, "weeks", 0, "horizon in weeks: 4, 6 or 8 (default from config)")
	cmd.Flags().StringVar(&scenario, "scenario", string(forecast.ScenarioBase), "base, optimistic or pessimistic")
	cmd.Flags().StringVar(&threshold, "threshold", "", "crisis threshold (default from config)")
	cmd.Flags().StringVar(&account, "account", "", "only this account")
	cmd.Flags().BoolVar(&daily, "daily", false, "print every projected day")

	return cmd
}

func renderForecast(w io.Writer, resp *service.ForecastResponse, daily bool) {
	days := resp.DailyProjections
	fmt.Fprintln(w, cli.RenderTitle(fmt.Sprintf("Cash Forecast: %d weeks", (len(days)-1)/7)))

	balances := make([]float64, len(days))
	for i, d := range days {
		balances[i] = d.Balance.InexactFloat64()
	}
	end := days[len(days)-1]

	confidence := fmt.Sprintf("%s (%s)", cli.FormatPercent(resp.Confidence), resp.ConfidenceLevel)
	if resp.ConfidenceLevel == forecast.ConfidenceLow {
		confidence = cli.Warn(confidence)
	}
	runway := cli.FormatDays(resp.Metrics.RunwayDays)
	if resp.Metrics.RunwayDays >= forecast.RunwayUnlimited {
		runway = "no net burn"
	}
	fmt.Fprint(w, cli.RenderKV([][2]string{
		{"Current cash", cli.FormatMoney(resp.CurrentCash)},
		{"Crisis threshold", cli.FormatMoney(resp.CrisisThreshold)},
		{"Projected end", cli.FormatMoney(end.Balance) + " on " + cli.FormatDate(end.Date)},
		{"Trend", cli.RenderSparkline(balances)},
		{"Runway", runway},
		{"Recurring revenue", cli.FormatMoney(resp.Metrics.MonthlyRecurringRevenue) + "/mo"},
		{"Recurring expenses", cli.FormatMoney(resp.Metrics.MonthlyRecurringExpenses) + "/mo"},
		{"Confidence", confidence},
	}))
	if resp.InsufficientHistory {
		fmt.Fprintln(w, cli.Warn(fmt.Sprintf("  Insufficient history: %d days of transactions", resp.HistoryDays)))
	}
	fmt.Fprintln(w)

	if len(resp.CrisisAlerts) == 0 {
		fmt.Fprintln(w, cli.Good("No crisis alerts."))
	}
	for _, a := range resp.CrisisAlerts {
		fmt.Fprintf(w, "%s %s\n", severityLabel(a.Severity), a.Message)
		for _, act := range a.RecommendedActions {
			fmt.Fprintf(w, "    - %s\n", act)
		}
	}
	fmt.Fprintln(w)

	if len(resp.LargePayments) > 0 {
		rows := make([][]string, 0, len(resp.LargePayments))
		for _, p := range resp.LargePayments {
			rows = append(rows, []string{cli.FormatDate(p.Date), p.Vendor, p.Category, cli.FormatMoney(p.Amount)})
		}
		fmt.Fprint(w, cli.RenderTable(cli.Table{
			Title:   "Large payments due",
			Headers: []string{"Date", "Vendor", "Category", "Amount"},
			Rows:    rows,
			Left:    []int{1, 2},
		}))
	}

	rows := make([][]string, 0, len(resp.ScenarioAnalysis))
	for _, s := range resp.ScenarioAnalysis {
		rows = append(rows, []string{
			string(s.Scenario),
			cli.FormatMoney(s.EndingBalance),
			cli.FormatMoney(s.MinimumBalance),
			cli.FormatSignedMoney(s.CashChange),
			fmt.Sprint(s.CrisisDays),
		})
	}
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title:   "Scenarios",
		Headers: []string{"Scenario", "Ending", "Minimum", "Change", "Crisis days"},
		Rows:    rows,
	}))

	fmt.Fprint(w, renderWeekly(resp.WeeklyProjections))
	if daily {
		fmt.Fprint(w, renderDaily(days))
	}

	if len(resp.Recommendations) > 0 {
		fmt.Fprintln(w, "Recommendations")
		for _, r := range resp.Recommendations {
			fmt.Fprintf(w, "  [%s] %s\n", strings.ToUpper(string(r.Priority)), r.Title)
			fmt.Fprintf(w, "      %s\n", cli.Muted(r.Description))
			for _, act := range r.Actions {
				fmt.Fprintf(w, "      - %s\n", act)
			}
		}
	}
}

func renderWeekly(weeks []forecast.WeekProjection) string {
	rows := make([][]string, 0, len(weeks))
	for _, wk := range weeks {
		cats := make([]string, 0, len(wk.Categories))
		for _, c := range wk.Categories {
			cats = append(cats, c.Category+" "+cli.FormatSignedMoney(c.Amount))
		}
		rows = append(rows, []string{
			fmt.Sprint(wk.Week),
			cli.FormatDate(wk.End),
			cli.FormatSignedMoney(wk.Inflows),
			cli.FormatSignedMoney(wk.Outflows),
			cli.FormatSignedMoney(wk.NetFlow),
			cli.FormatMoney(wk.EndingBalance),
			cli.Truncate(strings.Join(cats, ", "), 40),
		})
	}
	return cli.RenderTable(cli.Table{
		Title:   "Weekly projection",
		Headers: []string{"Week", "Ending", "Inflows", "Outflows", "Net", "Balance", "Recurring"},
		Rows:    rows,
		Left:    []int{6},
	})
}

func renderDaily(days []model.ForecastProjection) string {
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		bal := cli.FormatMoney(d.Balance)
		if d.CrisisWarning {
			bal = cli.Alert(bal)
		}
		rows = append(rows, []string{
			cli.FormatDate(d.Date),
			cli.FormatSignedMoney(d.Inflows),
			cli.FormatSignedMoney(d.Outflows),
			bal,
			cli.Truncate(strings.Join(d.ExpectedVendors, ", "), 30),
		})
	}
	return cli.RenderTable(cli.Table{
		Title:   "Daily projection",
		Headers: []string{"Date", "Inflows", "Outflows", "Balance", "Expected"},
		Rows:    rows,
		Left:    []int{4},
	})
}

func severityLabel(s model.Severity) string {
	label := "[" + strings.ToUpper(string(s)) + "]"
	switch s {
	case model.SeverityCritical:
		return cli.Alert(label)
	case model.SeverityHigh:
		return cli.Warn(label)
	default:
		return cli.Muted(label)
	}
}
