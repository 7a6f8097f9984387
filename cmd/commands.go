package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tsiemens/lotbook/app"
	"github.com/tsiemens/lotbook/date"
	"github.com/tsiemens/lotbook/log"
	ptf "github.com/tsiemens/lotbook/portfolio"
)

var lotsCmd = &cobra.Command{
	Use:   "lots CSV_FILE ...",
	Short: "Print sales, open lots and realized gains",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRootCmd,
}

var summaryCmd = &cobra.Command{
	Use:   "summary CSV_FILE ...",
	Short: "Print a CSV of txs which recreate the current open lots",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, _, readers, closeAll, err := commonSetup(args)
		if err != nil {
			return err
		}
		defer closeAll()
		return app.RunSummaryApp(os.Stdout, readers, opts, &log.StderrErrorPrinter{})
	},
}

var asOfOpt string

func parseAsOf() (date.Date, error) {
	if asOfOpt == "" {
		return date.Today(), nil
	}
	d, err := date.Parse(DateFmt, asOfOpt)
	if err != nil {
		return date.Date{}, fmt.Errorf("Invalid --as-of: %w", err)
	}
	return d, nil
}

var priceOpts []string

var taxCmd = &cobra.Command{
	Use:   "tax --price SEC:PRICE ... CSV_FILE ...",
	Short: "Estimate unrealized gains and the tax due if they were realized",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prices, err := app.ParsePrices(priceOpts)
		if err != nil {
			return fmt.Errorf("Error parsing --price: %w", err)
		}
		asOf, err := parseAsOf()
		if err != nil {
			return err
		}
		settings, err := Cfg.TaxSettings()
		if err != nil {
			return err
		}
		opts, w, readers, closeAll, err := commonSetup(args)
		if err != nil {
			return err
		}
		defer closeAll()
		if err := app.RunTaxApp(w, readers, prices, settings, asOf, opts, &log.StderrErrorPrinter{}); err != nil {
			os.Exit(1)
		}
		return nil
	},
}

var whatIfSecurity string
var whatIfShares string
var whatIfPrice string
var whatIfCommission string
var whatIfLotIds []string

var whatIfCmd = &cobra.Command{
	Use:   "whatif --security SEC --shares N --price P [--lot ID ...] CSV_FILE ...",
	Short: "Preview which lots a sale would consume, and its gains",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := ptf.SaleRequest{Security: whatIfSecurity}
		var err error
		if req.Quantity, err = decimal.NewFromString(whatIfShares); err != nil {
			return fmt.Errorf("Invalid --shares: %w", err)
		}
		if req.Price, err = decimal.NewFromString(whatIfPrice); err != nil {
			return fmt.Errorf("Invalid --price: %w", err)
		}
		if req.Commission, err = decimal.NewFromString(whatIfCommission); err != nil {
			return fmt.Errorf("Invalid --commission: %w", err)
		}
		if req.Date, err = parseAsOf(); err != nil {
			return err
		}

		opts, w, readers, closeAll, err := commonSetup(args)
		if err != nil {
			return err
		}
		defer closeAll()

		req.Strategy = opts.Strategy
		if len(whatIfLotIds) > 0 {
			req.Strategy = ptf.SpecificId
			for _, idStr := range whatIfLotIds {
				id, err := uuid.Parse(idStr)
				if err != nil {
					return fmt.Errorf("Invalid --lot %q: %w", idStr, err)
				}
				req.LotIds = append(req.LotIds, id)
			}
		}

		if _, err := app.RunWhatIfApp(w, readers, req, opts, &log.StderrErrorPrinter{}); err != nil {
			os.Exit(1)
		}
		return nil
	},
}

var horizonOpt int

var agingCmd = &cobra.Command{
	Use:   "aging [--horizon DAYS] CSV_FILE ...",
	Short: "List short term lots which become long term soon",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		horizon := Cfg.Lots.AgingHorizonDays
		if cmd.Flags().Changed("horizon") {
			horizon = horizonOpt
		}
		asOf, err := parseAsOf()
		if err != nil {
			return err
		}
		opts, w, readers, closeAll, err := commonSetup(args)
		if err != nil {
			return err
		}
		defer closeAll()
		if _, err := app.RunAgingApp(w, readers, horizon, asOf, opts, &log.StderrErrorPrinter{}); err != nil {
			os.Exit(1)
		}
		return nil
	},
}

var riskFreeRateOpt float64

var perfCmd = &cobra.Command{
	Use:   "perf VALUES_CSV",
	Short: "Report returns, drawdown and Sharpe ratio of a portfolio value history",
	Long: `Reports returns, drawdown and Sharpe ratio of a portfolio value history.

The CSV must contain a header with the columns: date, total value, interpolated
(optional).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		riskFreeRate := Cfg.Performance.RiskFreeRate
		if cmd.Flags().Changed("risk-free-rate") {
			riskFreeRate = riskFreeRateOpt
		}
		opts, w, readers, closeAll, err := commonSetup(args)
		if err != nil {
			return err
		}
		defer closeAll()
		if _, err := app.RunPerfApp(w, readers[0], riskFreeRate, opts, &log.StderrErrorPrinter{}); err != nil {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	taxCmd.Flags().StringSliceVarP(&priceOpts, "price", "p", []string{},
		"Current price of a security, formatted as SYM:price. Eg. GOOG:135.20 . "+
			"May be provided multiple times.")
	taxCmd.Flags().StringVar(&asOfOpt, "as-of", "", "Valuation date. Defaults to today")

	whatIfCmd.Flags().StringVarP(&whatIfSecurity, "security", "s", "", "Security to sell")
	whatIfCmd.Flags().StringVarP(&whatIfShares, "shares", "n", "", "Number of shares to sell")
	whatIfCmd.Flags().StringVarP(&whatIfPrice, "price", "p", "", "Sale price per share")
	whatIfCmd.Flags().StringVar(&whatIfCommission, "commission", "0", "Sale commission")
	whatIfCmd.Flags().StringSliceVar(&whatIfLotIds, "lot", []string{},
		"Lot id to sell from, in order. May be provided multiple times. Implies specific lot selection")
	whatIfCmd.Flags().StringVar(&asOfOpt, "as-of", "", "Sale date. Defaults to today")
	whatIfCmd.MarkFlagRequired("security")
	whatIfCmd.MarkFlagRequired("shares")
	whatIfCmd.MarkFlagRequired("price")

	agingCmd.Flags().IntVar(&horizonOpt, "horizon", 30, "Days to look ahead. Defaults to the config value")
	agingCmd.Flags().StringVar(&asOfOpt, "as-of", "", "Reference date. Defaults to today")

	perfCmd.Flags().Float64Var(&riskFreeRateOpt, "risk-free-rate", 0.04,
		"Annual risk free rate, as a fraction. Defaults to the config value")
}
