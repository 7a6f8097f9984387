package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsiemens/lotbook/app"
	"github.com/tsiemens/lotbook/app/outfmt"
	"github.com/tsiemens/lotbook/config"
	"github.com/tsiemens/lotbook/date"
	"github.com/tsiemens/lotbook/log"
	"github.com/tsiemens/lotbook/perf"
	ptf "github.com/tsiemens/lotbook/portfolio"
)

var ConfigFile = config.DefaultConfigFile
var StrategyOpt = ""
var PrintFullValues = false
var CsvOutDir = ""
var DateFmt = date.DefaultFormat

// Set by onInit.
var Cfg *config.Config

func options() (app.Options, error) {
	strategy, err := Cfg.Strategy()
	if err != nil {
		return app.Options{}, err
	}
	if StrategyOpt != "" {
		strategy, err = ptf.ParseLotSelectionStrategy(StrategyOpt)
		if err != nil {
			return app.Options{}, err
		}
		if strategy == ptf.SpecificId {
			return app.Options{}, fmt.Errorf(
				"--strategy %s is only valid for whatif, with --lot", StrategyOpt)
		}
	}
	return app.Options{Strategy: strategy, RenderFullValues: PrintFullValues}, nil
}

func writer() (outfmt.ReportWriter, error) {
	if CsvOutDir != "" {
		return outfmt.NewCSVWriter(CsvOutDir)
	}
	return outfmt.NewSTDWriter(os.Stdout), nil
}

func openCsvs(paths []string) ([]app.DescribedReader, func(), error) {
	readers := make([]app.DescribedReader, 0, len(paths))
	files := make([]*os.File, 0, len(paths))
	closeAll := func() {
		for _, fp := range files {
			fp.Close()
		}
	}
	for _, path := range paths {
		fp, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("Error opening %s: %w", path, err)
		}
		files = append(files, fp)
		readers = append(readers, app.DescribedReader{Desc: path, Reader: fp})
	}
	return readers, closeAll, nil
}

// commonSetup resolves the options, output writer and CSV readers shared by
// every subcommand. The returned func closes the CSVs.
func commonSetup(args []string) (app.Options, outfmt.ReportWriter, []app.DescribedReader, func(), error) {
	opts, err := options()
	if err != nil {
		return opts, nil, nil, nil, err
	}
	w, err := writer()
	if err != nil {
		return opts, nil, nil, nil, err
	}
	readers, closeAll, err := openCsvs(args)
	if err != nil {
		return opts, nil, nil, nil, err
	}
	return opts, w, readers, closeAll, nil
}

func runRootCmd(cmd *cobra.Command, args []string) error {
	opts, w, readers, closeAll, err := commonSetup(args)
	if err != nil {
		return err
	}
	defer closeAll()

	ok, _ := app.RunLotAppToWriter(w, readers, opts, &log.StderrErrorPrinter{})
	if !ok {
		os.Exit(1)
	}
	return nil
}

func cmdName() string {
	binName := os.Args[0]
	return filepath.Base(binName)
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   cmdName() + " [CSV_FILE ...]",
	Short: "Tax lot accounting tool",
	Long: fmt.Sprintf(
		`A cli tool which tracks the individual tax lots of stock holdings, and reports
realized and unrealized gains, estimated tax, and portfolio performance.

Sales consume lots in FIFO, LIFO or highest-cost-first order, or by specific lot
ids when previewing a sale with the whatif command.

Each CSV provided should contain a header with these column names:
%s
Only security, date and action are required. ESPP, RSU and split columns only
apply to those actions.
 `, strings.Join(ptf.ColNames, ", ")),
	RunE:          runRootCmd,
	Args:          cobra.MinimumNArgs(1),
	Version:       app.LotbookVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(onInit)

	// Persistent flags, which are global to the app cli
	RootCmd.PersistentFlags().BoolVarP(&log.VerboseEnabled, "verbose", "v", false,
		"Print verbose output")
	RootCmd.PersistentFlags().StringVar(&DateFmt, "date-fmt", date.DefaultFormat,
		"Format of how dates appear in the csv files. Must represent Jan 2, 2006")
	RootCmd.PersistentFlags().StringVar(&ConfigFile, "config", config.DefaultConfigFile,
		"TOML config file. Skipped if it does not exist")
	RootCmd.PersistentFlags().StringVar(&StrategyOpt, "strategy", "",
		"Lot selection strategy for sales: fifo, lifo or hifo. Overrides the config")
	RootCmd.PersistentFlags().BoolVar(&PrintFullValues, "print-full-values", false,
		"Print values without rounding to cents")
	RootCmd.PersistentFlags().StringVar(&CsvOutDir, "csv-out", "",
		"Write tables as CSV files into this directory, instead of printing them")

	RootCmd.AddCommand(lotsCmd, summaryCmd, taxCmd, whatIfCmd, agingCmd, perfCmd)
}

// onInit reads in config file and ENV variables if set, and performs global
// or common actions before running command functions.
func onInit() {
	ptf.CsvDateFormat = DateFmt
	perf.CsvDateFormat = DateFmt

	cfg, err := config.LoadConfig(ConfigFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	Cfg = cfg
	log.Verbosef("Config: %+v", *Cfg)
}
