// Package pipeline orchestrates one workbook-fetch-and-process cycle: fetch
// the source workbooks, normalize each table, apply the period filter, and
// build the joined economic records.
package pipeline

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/euroirte/avanzamento/internal/config"
	"github.com/euroirte/avanzamento/internal/economic"
	"github.com/euroirte/avanzamento/internal/fetcher"
	"github.com/euroirte/avanzamento/internal/sheet"
)

// Pipeline runs the economic report for one selected period. All
// configuration is passed in at construction; a Pipeline owns its fetch
// cache and nothing else.
type Pipeline struct {
	cfg   *config.Config
	cache *fetcher.Cache
}

// New creates a Pipeline from explicit configuration.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg:   cfg,
		cache: fetcher.NewCache(cfg.Source.CacheTTL()),
	}
}

// Result is the outcome of one run: the joined records for the selected
// month, plus the months available across all sources.
type Result struct {
	Records []economic.Record
	Month   sheet.Month // "" when unfiltered
	Months  []sheet.Month
}

// Options select the period for a run.
type Options struct {
	// Month restricts sources to one calendar month. Empty selects the most
	// recent available month unless AllMonths is set.
	Month     sheet.Month
	AllMonths bool
}

// Run fetches the four source workbooks, normalizes them, filters to the
// selected period, and builds the joined table. A fetch failure or a missing
// required column is fatal for the run and names the offending source.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	tables, err := p.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	months := sheet.AvailableMonths(tables.presenze, tables.deliveryTIM, tables.assuranceTIM, tables.deliveryOF)

	month := opts.Month
	if opts.AllMonths {
		month = ""
	} else if month == "" && len(months) > 0 {
		month = months[len(months)-1]
	}

	if month != "" {
		tables.presenze = sheet.FilterMonth(tables.presenze, month)
		tables.deliveryTIM = sheet.FilterMonth(tables.deliveryTIM, month)
		tables.assuranceTIM = sheet.FilterMonth(tables.assuranceTIM, month)
		tables.deliveryOF = sheet.FilterMonth(tables.deliveryOF, month)
	}

	hours, err := economic.NormalizePresenze(tables.presenze)
	if err != nil {
		return nil, err
	}
	delTIM, err := economic.NormalizeDeliveryTIM(tables.deliveryTIM)
	if err != nil {
		return nil, err
	}
	assTIM, err := economic.NormalizeAssuranceTIM(tables.assuranceTIM)
	if err != nil {
		return nil, err
	}
	delOF, err := economic.NormalizeDeliveryOF(tables.deliveryOF)
	if err != nil {
		return nil, err
	}

	records := economic.Build(hours, delTIM, assTIM, delOF, p.cfg.Rates)

	zap.L().Info("pipeline run complete",
		zap.String("month", string(month)),
		zap.Int("technicians", len(records)),
	)
	return &Result{Records: records, Month: month, Months: months}, nil
}

// AvailableMonths fetches the sources and returns the distinct year-months
// they carry, sorted ascending.
func (p *Pipeline) AvailableMonths(ctx context.Context) ([]sheet.Month, error) {
	tables, err := p.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return sheet.AvailableMonths(tables.presenze, tables.deliveryTIM, tables.assuranceTIM, tables.deliveryOF), nil
}

// FetchTable fetches and parses one named workbook into a raw table.
func (p *Pipeline) FetchTable(ctx context.Context, name string) (sheet.RawTable, error) {
	rawURL := SourceURL(p.cfg.Source.BaseURL, name)
	f := fetcher.ForURL(rawURL, fetcher.Options{
		Timeout:   p.cfg.Source.Timeout(),
		AuthToken: p.cfg.Source.Token,
	})

	bs, err := p.cache.Fetch(ctx, f, rawURL)
	if err != nil {
		return sheet.RawTable{}, eris.Wrapf(err, "source %s", name)
	}

	rows, err := fetcher.ParseXLSX(bs, fetcher.XLSXOptions{})
	if err != nil {
		return sheet.RawTable{}, eris.Wrapf(err, "source %s", name)
	}

	return sheet.NewRawTable(name, rows), nil
}

type sourceTables struct {
	presenze     sheet.RawTable
	deliveryTIM  sheet.RawTable
	assuranceTIM sheet.RawTable
	deliveryOF   sheet.RawTable
}

func (p *Pipeline) fetchAll(ctx context.Context) (*sourceTables, error) {
	var tables sourceTables
	g, gctx := errgroup.WithContext(ctx)

	fetch := func(name string, dst *sheet.RawTable) {
		g.Go(func() error {
			t, err := p.FetchTable(gctx, name)
			if err != nil {
				return err
			}
			*dst = t
			return nil
		})
	}

	fetch(p.cfg.Source.Presenze, &tables.presenze)
	fetch(p.cfg.Source.DeliveryTIM, &tables.deliveryTIM)
	fetch(p.cfg.Source.AssuranceTIM, &tables.assuranceTIM)
	fetch(p.cfg.Source.DeliveryOF, &tables.deliveryOF)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &tables, nil
}

// SourceURL joins the configured base URL with a workbook file name. Plain
// file-system bases are joined as paths; HTTP bases get the name
// path-escaped (raw repository hosts reject literal spaces).
func SourceURL(base, name string) string {
	if base == "" {
		return name
	}
	joined := strings.TrimRight(base, "/") + "/" + name
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		return strings.TrimRight(base, "/") + "/" + url.PathEscape(name)
	}
	return joined
}
