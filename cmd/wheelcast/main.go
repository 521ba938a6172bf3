package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/deflationproof/wheelcast/internal/advisor"
	"github.com/deflationproof/wheelcast/internal/config"
	"github.com/deflationproof/wheelcast/internal/forecast"
	"github.com/deflationproof/wheelcast/internal/logger"
	"github.com/deflationproof/wheelcast/internal/position"
	"github.com/deflationproof/wheelcast/internal/prices"
	"github.com/deflationproof/wheelcast/internal/pricing"
	"github.com/deflationproof/wheelcast/internal/report"
	"github.com/deflationproof/wheelcast/internal/server"
)

type forecastCmd struct {
	Symbols      []string `arg:"-s,--symbol,separate" help:"instrument symbol, repeatable up to twice"`
	Capital      float64  `arg:"-c,--capital" default:"26000" help:"starting capital"`
	Target       float64  `arg:"-t,--target" default:"6000" help:"target monthly net income"`
	Contribution float64  `arg:"--contribution" default:"0" help:"monthly contribution"`
	Strategy     string   `arg:"--strategy" default:"conservative" help:"conservative or aggressive"`
	Job          string   `arg:"--job" help:"job profile for survive/thrive annotations"`
	Horizon      int      `arg:"--horizon" default:"60" help:"projection cap in months"`
	Out          string   `arg:"-o,--out" default:"./out" help:"report output directory"`
}

type estimateCmd struct {
	Strike     float64 `arg:"--strike,required" help:"option strike"`
	Underlying float64 `arg:"--underlying,required" help:"current underlying price"`
	Expiration string  `arg:"--expiration,required" help:"expiration date, YYYY-MM-DD"`
	Premium    float64 `arg:"--premium" help:"credit received at open, 0 estimates 6% of strike"`
}

type strikeCmd struct {
	Underlying float64 `arg:"--underlying,required" help:"current underlying price"`
	Delta      float64 `arg:"--delta" default:"30" help:"target delta in delta points"`
	DTE        int     `arg:"--dte" default:"30" help:"days to expiration"`
	Call       bool    `arg:"--call" help:"suggest a call strike instead of a put strike"`
	IV         float64 `arg:"--iv" default:"30" help:"implied volatility in percent"`
	Model      string  `arg:"--model" default:"rule16" help:"rule16 or bs"`
}

type adviseCmd struct {
	File string `arg:"positional,required" help:"JSON file holding an array of position snapshots"`
	Out  string `arg:"-o,--out" help:"also export the book as CSV into this directory"`
}

type serveCmd struct {
	Listen string `arg:"--listen" help:"listen address, overrides WHEELCAST_LISTEN"`
	Rules  string `arg:"--rules" help:"JSON file with a custom advisory rule table"`
}

type cliArgs struct {
	Forecast  *forecastCmd `arg:"subcommand:forecast" help:"project months to income replacement"`
	Estimate  *estimateCmd `arg:"subcommand:estimate" help:"estimate a short option's current value"`
	Strike    *strikeCmd   `arg:"subcommand:strike" help:"suggest a strike for a target delta"`
	Advise    *adviseCmd   `arg:"subcommand:advise" help:"evaluate positions against the rule table"`
	Serve     *serveCmd    `arg:"subcommand:serve" help:"run the REST server"`
	Verbosity int          `arg:"-v,--verbosity" default:"1" help:"0=errors 1=info 2=debug 3=trace"`
}

func (cliArgs) Description() string {
	return "wheelcast projects wheel-strategy income and manages short-option positions"
}

func main() {
	cfg := config.Load()

	var args cliArgs
	p := arg.MustParse(&args)

	// the env setting holds unless the flag moves off its default
	verbosity := cfg.Verbosity
	if args.Verbosity != 1 {
		verbosity = args.Verbosity
	}
	logger.SetVerbosity(verbosity)

	prov := buildProvider(cfg)

	var err error
	switch {
	case args.Forecast != nil:
		err = runForecast(args.Forecast, prov)
	case args.Estimate != nil:
		err = runEstimate(args.Estimate)
	case args.Strike != nil:
		err = runStrike(args.Strike)
	case args.Advise != nil:
		err = runAdvise(args.Advise)
	case args.Serve != nil:
		err = runServe(args.Serve, cfg, prov)
	default:
		p.WriteHelp(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

// buildProvider assembles the price chain: HTTP feed when configured,
// always terminated by the static fallback table.
func buildProvider(cfg config.Config) prices.Provider {
	static := prices.NewStaticProvider()
	if cfg.PriceAPI == "" {
		logger.Infof("event=price_provider provider=static")
		return static
	}
	logger.Infof("event=price_provider provider=http url=%s", cfg.PriceAPI)
	return prices.NewHTTPProvider(cfg.PriceAPI, cfg.PriceKey, static)
}

func runForecast(cmd *forecastCmd, prov prices.Provider) error {
	if len(cmd.Symbols) == 0 {
		cmd.Symbols = []string{"TSLA"}
	}
	quotes, err := prov.Prices(context.Background(), cmd.Symbols)
	if err != nil {
		return fmt.Errorf("fetching prices: %w", err)
	}

	in := forecast.Input{
		Job:                 forecast.JobType(cmd.Job),
		TargetMonthlyIncome: cmd.Target,
		StartingCapital:     cmd.Capital,
		MonthlyContribution: cmd.Contribution,
		Strategy:            forecast.Strategy(cmd.Strategy),
		HorizonMonths:       cmd.Horizon,
	}
	for _, s := range cmd.Symbols {
		in.Instruments = append(in.Instruments, forecast.Instrument{Symbol: s, Price: quotes[s]})
	}

	if err := os.MkdirAll(cmd.Out, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	now := time.Now()
	if len(in.Instruments) == 1 {
		res, err := forecast.Project(in, now)
		if err != nil {
			return err
		}
		if err := report.WriteForecastJSON(res, cmd.Out); err != nil {
			return err
		}
		if err := report.WriteForecastCSV(res.Series, cmd.Out); err != nil {
			return err
		}
		printSummary(res.Reached, res.FreedomMonth, res.FreedomDate)
		return nil
	}

	res, err := forecast.ProjectCombined(in, now)
	if err != nil {
		return err
	}
	if err := report.WriteCombinedJSON(res, cmd.Out); err != nil {
		return err
	}
	printSummary(res.Reached, res.FreedomMonth, res.FreedomDate)
	return nil
}

func printSummary(reached bool, month int, date time.Time) {
	if reached {
		fmt.Printf("freedom reached in month %d (%s)\n", month, date.Format("January 2006"))
		return
	}
	fmt.Println("target not reached inside the horizon")
}

func runEstimate(cmd *estimateCmd) error {
	exp, err := time.Parse("2006-01-02", cmd.Expiration)
	if err != nil {
		return fmt.Errorf("parsing expiration: %w", err)
	}
	bd, err := pricing.EstimateOptionPrice(cmd.Strike, cmd.Underlying, exp, time.Now(), cmd.Premium)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(bd)
}

func runStrike(cmd *strikeCmd) error {
	var (
		strike float64
		err    error
	)
	switch cmd.Model {
	case "rule16":
		strike, err = pricing.SuggestStrike(cmd.Underlying, cmd.Delta, cmd.DTE, cmd.Call, cmd.IV)
	case "bs":
		strike, err = pricing.SuggestStrikeExact(cmd.Underlying, cmd.Delta, cmd.DTE, cmd.Call, cmd.IV/100)
	default:
		return fmt.Errorf("unknown model %q", cmd.Model)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%.2f\n", strike)
	return nil
}

func runAdvise(cmd *adviseCmd) error {
	data, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("reading positions: %w", err)
	}
	var snaps []position.Snapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return fmt.Errorf("parsing positions: %w", err)
	}

	now := time.Now()
	book := make([]position.Position, 0, len(snaps))
	out := json.NewEncoder(os.Stdout)
	for _, snap := range snaps {
		adv, err := advisor.Advise(snap, now)
		if err != nil {
			return err
		}
		if err := out.Encode(adv); err != nil {
			return err
		}
		book = append(book, position.Position{Snapshot: snap, CreatedAt: now, UpdatedAt: now})
	}

	if cmd.Out != "" {
		if err := os.MkdirAll(cmd.Out, 0755); err != nil {
			return err
		}
		return report.WritePositionsCSV(book, cmd.Out, now)
	}
	return nil
}

func runServe(cmd *serveCmd, cfg config.Config, prov prices.Provider) error {
	// Cache quotes in serve mode and refresh them on the configured
	// schedule so forecasts do not hit the feed per request.
	cached := prices.NewCached(prov, 15*time.Minute, prices.KnownSymbols())
	cr, err := cached.ScheduleRefresh(cfg.RefreshCron)
	if err != nil {
		return fmt.Errorf("scheduling price refresh: %w", err)
	}
	defer cr.Stop()

	srv := server.New(cached)
	if cmd.Rules != "" {
		f, err := os.Open(cmd.Rules)
		if err != nil {
			return fmt.Errorf("opening rules: %w", err)
		}
		rules, err := advisor.LoadRules(f)
		f.Close()
		if err != nil {
			return err
		}
		srv = srv.WithRules(rules)
		logger.Infof("event=custom_rules_loaded count=%d file=%s", len(rules), cmd.Rules)
	}

	addr := cfg.ListenAddr
	if cmd.Listen != "" {
		addr = cmd.Listen
	}
	logger.Infof("event=serve addr=%s", addr)
	return http.ListenAndServe(addr, srv.Router())
}
