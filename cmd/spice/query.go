package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/tui/viewmodel"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// queryOptions are the flags of spice query.
type queryOptions struct {
	Location  string
	Category  string
	Search    string
	Sort      string
	Group     string
	From      string
	To        string
	MinAmount string
	MaxAmount string
	Format    string
	Limit     int
	All       bool
	Income    bool
	Expense   bool
	Recurring bool
}

func queryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print a filtered, sorted view of the ledger",
		Long: `Run the ledger pipeline once and print the result.

Without --limit or --all only the first page is printed, the same window the
browser shows before scrolling.

Examples:
  # Biggest grocery expenses
  spice query --category groceries --sort lowest

  # Everything from one payee, grouped by month, as CSV
  spice query --search "whole foods" --group month --all --format csv

  # Seed from an address copied out of the browser
  spice query --location "/transactions?category=bills&search=power"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Location, "location", "", "ledger address to seed category and search from")
	f.StringVarP(&opts.Category, "category", "c", "", "only this category")
	f.StringVarP(&opts.Search, "search", "s", "", "match description, category or amount")
	f.StringVar(&opts.Sort, "sort", string(ledger.DefaultSortKey), "sort order (latest, oldest, a-z, z-a, highest, lowest)")
	f.StringVar(&opts.Group, "group", "none", "grouping (none, category, month, type, recipient)")
	f.StringVar(&opts.From, "from", "", "earliest date (YYYY-MM-DD)")
	f.StringVar(&opts.To, "to", "", "latest date (YYYY-MM-DD)")
	f.StringVar(&opts.MinAmount, "min", "", "smallest amount")
	f.StringVar(&opts.MaxAmount, "max", "", "largest amount")
	f.BoolVar(&opts.Income, "income", false, "only income")
	f.BoolVar(&opts.Expense, "expense", false, "only expenses")
	f.BoolVar(&opts.Recurring, "recurring", false, "only recurring payments")
	f.IntVarP(&opts.Limit, "limit", "n", 0, "reveal pages until at least this many records are shown")
	f.BoolVar(&opts.All, "all", false, "reveal every matching record")
	f.StringVarP(&opts.Format, "format", "f", "table", "output format (table, json, csv)")
	cmd.MarkFlagsMutuallyExclusive("income", "expense")
	cmd.MarkFlagsMutuallyExclusive("limit", "all")
	cmd.Flags().String("snapshot", "", "read records from a JSON snapshot file")

	return cmd
}

func runQuery(cmd *cobra.Command, opts queryOptions) error {
	ctx := cmd.Context()
	snapshot, _ := cmd.Flags().GetString("snapshot")

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	var store service.Fetcher
	if snapshot == "" {
		s, err := initStorage(ctx, settings)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		store = s
	}

	records, err := newSource(store, snapshot, settings).Get(ctx)
	if err != nil {
		return common.NewUserError("transactions are unavailable", err)
	}

	p, err := buildQuery(records, opts, settings.PipelineOptions()...)
	if err != nil {
		return err
	}
	defer p.Close()

	return writeQuery(cmd.OutOrStdout(), opts.Format, p)
}

// buildQuery runs records through a pipeline configured from opts and
// reveals as many pages as requested.
func buildQuery(records []model.Transaction, opts queryOptions, pipelineOpts ...ledger.Option) (*ledger.Pipeline, error) {
	loc := ledger.Location{Path: ledger.LedgerPath, Query: ledger.Query{Category: ledger.CategoryAll}}
	if opts.Location != "" {
		parsed, err := ledger.ParseLocation(opts.Location)
		if err != nil {
			return nil, common.NewUserError("invalid --location", err)
		}
		loc = parsed
	}
	if opts.Category != "" {
		loc.Query.Category = opts.Category
	}
	if opts.Search != "" {
		loc.Query.Search = opts.Search
	}

	filters, err := queryFilters(opts)
	if err != nil {
		return nil, err
	}

	p := ledger.NewPipeline(records, append(pipelineOpts, ledger.WithLocation(loc))...)
	if err := p.SetSortKey(ledger.SortKey(opts.Sort)); err != nil {
		p.Close()
		return nil, common.NewUserError("invalid --sort", err)
	}
	group := ledger.GroupKey(opts.Group)
	if opts.Group == "none" {
		group = ledger.GroupNone
	}
	if err := p.SetGroupKey(group); err != nil {
		p.Close()
		return nil, common.NewUserError("invalid --group", err)
	}
	for _, f := range filters {
		p.AddFilter(f)
	}

	for {
		v := p.View()
		if !v.HasMore || (!opts.All && len(v.VisibleRecords) >= opts.Limit) {
			break
		}
		p.LoadMore()
	}
	return p, nil
}

func queryFilters(opts queryOptions) ([]ledger.Filter, error) {
	var filters []ledger.Filter

	switch {
	case opts.Income:
		filters = append(filters, ledger.IncomeFilter())
	case opts.Expense:
		filters = append(filters, ledger.ExpenseFilter())
	}
	if opts.Recurring {
		filters = append(filters, ledger.RecurringFilter())
	}

	if opts.From != "" || opts.To != "" {
		from, err := parseDateFlag("from", opts.From)
		if err != nil {
			return nil, err
		}
		to, err := parseDateFlag("to", opts.To)
		if err != nil {
			return nil, err
		}
		if !to.IsZero() {
			// inclusive of the whole day
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filters = append(filters, ledger.DateRangeFilter(from, to))
	}

	if opts.MinAmount != "" || opts.MaxAmount != "" {
		lo, err := parseAmountFlag("min", opts.MinAmount)
		if err != nil {
			return nil, err
		}
		hi, err := parseAmountFlag("max", opts.MaxAmount)
		if err != nil {
			return nil, err
		}
		filters = append(filters, ledger.AmountRangeFilter(lo, hi))
	}

	return filters, nil
}

func parseDateFlag(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("invalid --%s, expected YYYY-MM-DD", name), err)
	}
	return t, nil
}

func parseAmountFlag(name, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("invalid --%s", name), err)
	}
	return &d, nil
}

func writeQuery(w io.Writer, format string, p *ledger.Pipeline) error {
	switch format {
	case "json":
		return writeQueryJSON(w, p)
	case "csv":
		return writeQueryCSV(w, p.View())
	case "table", "":
		return writeQueryTable(w, p.State(), p.View())
	default:
		return common.NewUserError(fmt.Sprintf("unknown --format %q", format), nil)
	}
}

type jsonRecord struct {
	Amount      *decimal.Decimal `json:"amount"`
	ID          string           `json:"id"`
	Date        string           `json:"date"`
	Description string           `json:"description"`
	Category    string           `json:"category,omitempty"`
}

type jsonGroup struct {
	Total decimal.Decimal `json:"total"`
	Label string          `json:"label"`
	Count int             `json:"count"`
}

type jsonTotals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

type jsonQueryResult struct {
	Location string       `json:"location"`
	Sort     string       `json:"sort"`
	Group    string       `json:"group"`
	Records  []jsonRecord `json:"records"`
	Groups   []jsonGroup  `json:"groups,omitempty"`
	Totals   jsonTotals   `json:"totals"`
	Total    int          `json:"total"`
	HasMore  bool         `json:"has_more"`
}

func toJSONRecord(tx model.Transaction) jsonRecord {
	r := jsonRecord{
		ID:          tx.ID,
		Date:        tx.Date,
		Description: tx.Description,
		Category:    tx.Category,
	}
	if tx.Amount.Valid {
		amount := tx.Amount.Decimal
		r.Amount = &amount
	}
	return r
}

func writeQueryJSON(w io.Writer, p *ledger.Pipeline) error {
	v, st := p.View(), p.State()

	result := jsonQueryResult{
		Location: ledger.Location{Path: ledger.LedgerPath, Query: p.Query()}.String(),
		Sort:     string(st.SortKey),
		Group:    string(st.GroupKey),
		Records:  make([]jsonRecord, 0, len(v.VisibleRecords)),
		Totals:   jsonTotals(v.Totals),
		Total:    v.TotalFilteredCount,
		HasMore:  v.HasMore,
	}
	for _, tx := range v.VisibleRecords {
		result.Records = append(result.Records, toJSONRecord(tx))
	}
	for _, g := range v.Groups {
		result.Groups = append(result.Groups, jsonGroup{Label: g.Label, Count: len(g.Records), Total: g.Total})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode query result: %w", err)
	}
	return nil
}

func writeQueryCSV(w io.Writer, v ledger.View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"group", "id", "date", "description", "category", "amount"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	groups := v.Groups
	if groups == nil {
		groups = []ledger.Group{{Records: v.VisibleRecords}}
	}
	for _, g := range groups {
		for _, tx := range g.Records {
			amount := ""
			if tx.Amount.Valid {
				amount = tx.Amount.Decimal.StringFixed(2)
			}
			row := []string{g.Label, tx.ID, tx.Date, tx.Description, tx.Category, amount}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func writeQueryTable(w io.Writer, st ledger.State, v ledger.View) error {
	if v.TotalFilteredCount == 0 {
		_, err := fmt.Fprintln(w, cli.FormatInfo("No transactions match."))
		return err
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(cli.SubtleStyle).
		Headers("Date", "Description", "Category", "Amount").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cli.TableHeaderStyle.Padding(0, 1)
			}
			if col == 3 {
				return lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, row := range viewmodel.Rows(v) {
		if !row.IsRecord() {
			t.Row("", cli.TitleStyle.Render("▸ "+row.Label+" ("+strconv.Itoa(row.Count)+")"), "", row.Total)
			continue
		}
		tx := row.Record
		t.Row(
			viewmodel.FormatDate(tx.Date),
			viewmodel.TruncateString(viewmodel.SanitizeForDisplay(tx.Description), 40),
			ledger.DisplayCategory(tx.Category),
			viewmodel.FormatAmount(tx.Amount),
		)
	}

	footer := fmt.Sprintf("%s\nIn %s · Out %s · Net %s",
		cli.SubtleStyle.Render(viewmodel.Summary(st, v)),
		viewmodel.FormatDecimal(v.Totals.Income),
		viewmodel.FormatDecimal(v.Totals.Expenses),
		viewmodel.FormatDecimal(v.Totals.Net),
	)
	_, err := fmt.Fprintf(w, "%s\n%s\n", t.Render(), footer)
	return err
}
