package services

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/aggregate"
	"sales-dashboard/internal/cleaning"
	"sales-dashboard/internal/loader"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/selection"
)

const (
	cacheVersion    = "v2"
	defaultCacheDir = ".cache"
)

// Dataset is an immutable cleaned snapshot. Reloads replace the pointer held
// by Analytics; a Dataset is never modified after it is built.
type Dataset struct {
	ID         string
	Source     string
	Cleaned    models.Table
	Duplicates models.Table
	Quality    cleaning.Report
	Countries  []string
	LoadedAt   time.Time
}

// ReportDefaults are used when a caller does not choose a parameter.
type ReportDefaults struct {
	TopProducts     int
	TopCountries    int
	SeasonalityFrom int
	SeasonalityTo   int
	VolumeYear      int
}

func DefaultReportDefaults() ReportDefaults {
	return ReportDefaults{
		TopProducts:     10,
		TopCountries:    2,
		SeasonalityFrom: 2011,
		SeasonalityTo:   2015,
		VolumeYear:      2015,
	}
}

type Analytics struct {
	mu               sync.RWMutex
	dataset          *Dataset
	pipeline         cleaning.Pipeline
	cacheDir         string
	cacheEnabled     bool
	defaults         ReportDefaults
	recordsProcessed atomic.Int64
	logger           *slog.Logger
	metrics          *observability.Metrics
}

type Option func(*Analytics)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analytics) { a.logger = observability.Component(logger, "analytics") }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(a *Analytics) { a.metrics = m }
}

func WithPipeline(p cleaning.Pipeline) Option {
	return func(a *Analytics) { a.pipeline = p }
}

// WithCache enables the gob cache in dir. An empty dir disables caching.
func WithCache(dir string) Option {
	return func(a *Analytics) {
		a.cacheDir = dir
		a.cacheEnabled = dir != ""
	}
}

func WithReportDefaults(d ReportDefaults) Option {
	return func(a *Analytics) { a.defaults = d }
}

func NewAnalytics(opts ...Option) *Analytics {
	a := &Analytics{
		dataset:      &Dataset{Cleaned: models.Table{}, Duplicates: models.Table{}, Countries: []string{}},
		pipeline:     cleaning.PipelineStandard,
		cacheDir:     defaultCacheDir,
		cacheEnabled: false,
		defaults:     DefaultReportDefaults(),
		logger:       observability.Component(slog.Default(), "analytics"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetData cleans raw and installs it as the current dataset.
func (a *Analytics) SetData(raw models.Table) error {
	ds, err := a.build(context.Background(), raw, "memory")
	if err != nil {
		return err
	}
	a.swap(ds)
	return nil
}

// LoadFromFile reads, cleans and installs the dataset at filename. A cached
// snapshot newer than the file is used instead when caching is enabled.
func (a *Analytics) LoadFromFile(ctx context.Context, filename string) error {
	ctx, span := observability.StartSpan(ctx, "dataset.load")
	span.SetTag("file", filename)
	defer span.End(a.logger)

	if a.cacheEnabled {
		if cached, err := a.loadFromCache(filename); err == nil {
			fileInfo, statErr := os.Stat(filename)
			if statErr == nil && fileInfo.ModTime().Before(cached.LoadedAt) {
				a.swap(cached)
				span.SetTag("cache", "hit")
				a.logger.Info("loaded from cache", "records", len(cached.Cleaned), "dataset_id", cached.ID)
				return nil
			}
		}
	}

	start := time.Now()
	a.logger.Info("loading dataset", "filename", filename, "pipeline", a.pipeline)

	raw, err := loader.LoadFile(ctx, filename)
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("load dataset: %w", err)
	}

	ds, err := a.build(ctx, raw, filename)
	if err != nil {
		span.SetError(err)
		return err
	}
	a.swap(ds)

	if a.cacheEnabled {
		if err := a.saveToCache(filename, ds); err != nil {
			a.logger.Warn("failed to save cache", "error", err)
		}
	}

	duration := time.Since(start)
	a.logger.Info("dataset ready",
		"dataset_id", ds.ID,
		"raw_records", len(raw),
		"clean_records", len(ds.Cleaned),
		"complete_years", ds.Quality.CompleteYears,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(raw))/duration.Seconds()))

	return nil
}

func (a *Analytics) build(ctx context.Context, raw models.Table, source string) (*Dataset, error) {
	_, span := observability.StartSpan(ctx, "dataset.clean")
	span.SetTag("pipeline", string(a.pipeline))
	defer span.End(a.logger)

	cleaned, report, err := cleaning.Clean(raw, cleaning.Options{Pipeline: a.pipeline, DateField: models.FieldDate})
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("clean dataset: %w", err)
	}

	a.recordsProcessed.Store(int64(len(raw)))
	a.metrics.RowsLoaded(len(raw))
	for step, n := range report.Dropped() {
		a.metrics.RowsDropped(step, n)
	}
	a.metrics.SetCompleteYears(len(report.CompleteYears))

	if report.UnparseableDates > 0 {
		a.logger.Warn("rows with unparseable dates", "count", report.UnparseableDates, "pipeline", report.Pipeline)
	}
	if len(report.CompleteYears) == 0 && len(raw) > 0 {
		a.logger.Warn("no complete years in dataset, all views will be empty")
	}

	return &Dataset{
		ID:         uuid.NewString(),
		Source:     source,
		Cleaned:    cleaned,
		Duplicates: cleaning.DetectDuplicates(raw),
		Quality:    report,
		Countries:  aggregate.Countries(cleaned),
		LoadedAt:   time.Now(),
	}, nil
}

func (a *Analytics) swap(ds *Dataset) {
	a.mu.Lock()
	a.dataset = ds
	a.mu.Unlock()
}

func (a *Analytics) current() *Dataset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dataset
}

// Cache management
func (a *Analytics) getCacheFilename(path string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(path)
	return filepath.Join(a.cacheDir, fmt.Sprintf("%s_%s_%s.gob", name, a.pipeline, cacheVersion))
}

func (a *Analytics) saveToCache(path string, ds *Dataset) error {
	if err := os.MkdirAll(a.cacheDir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(a.getCacheFilename(path))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(ds)
}

func (a *Analytics) loadFromCache(path string) (*Dataset, error) {
	file, err := os.Open(a.getCacheFilename(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var ds Dataset
	if err := gob.NewDecoder(file).Decode(&ds); err != nil {
		return nil, err
	}
	if ds.Quality.Pipeline != a.pipeline {
		return nil, errors.New("cache built with a different pipeline")
	}

	// gob drops empty slices
	if ds.Cleaned == nil {
		ds.Cleaned = models.Table{}
	}
	if ds.Duplicates == nil {
		ds.Duplicates = models.Table{}
	}
	if ds.Countries == nil {
		ds.Countries = []string{}
	}
	return &ds, nil
}

func (a *Analytics) observe(view string) {
	a.metrics.ReportComputed(view)
}

func (a *Analytics) Defaults() ReportDefaults {
	return a.defaults
}

func (a *Analytics) RevenueByYear() models.Series {
	a.observe(aggregate.ViewRevenueByYear)
	return aggregate.RevenueByYear(a.current().Cleaned)
}

func (a *Analytics) RevenueByMonth() models.Series {
	a.observe(aggregate.ViewRevenueByMonth)
	return aggregate.RevenueByMonth(a.current().Cleaned)
}

func (a *Analytics) RevenueByCountry() models.Series {
	a.observe(aggregate.ViewRevenueByCountry)
	return aggregate.RevenueByCountry(a.current().Cleaned)
}

func (a *Analytics) RevenueByGender() models.Series {
	a.observe(aggregate.ViewRevenueByGender)
	return aggregate.RevenueByGender(a.current().Cleaned)
}

func (a *Analytics) RevenueByCountryGender() models.Pivot {
	a.observe(aggregate.ViewRevenueByCountryGender)
	return aggregate.RevenueByCountryGender(a.current().Cleaned)
}

func (a *Analytics) VolumeByMonth(year int, country string) models.Series {
	a.observe(aggregate.ViewVolumeByMonth)
	return aggregate.VolumeByMonth(a.current().Cleaned, year, country)
}

func (a *Analytics) Seasonality(top, from, to int) models.Seasonality {
	a.observe(aggregate.ViewSeasonality)
	return aggregate.SeasonalityTopCountries(a.current().Cleaned, top, from, to)
}

func (a *Analytics) CountrySeasonality(country string) models.Seasonality {
	a.observe(aggregate.ViewCountrySeasonality)
	return aggregate.CountrySeasonality(a.current().Cleaned, country)
}

func (a *Analytics) TopProducts(limit int) models.Series {
	a.observe(aggregate.ViewTopProducts)
	return aggregate.TopProducts(a.current().Cleaned, limit)
}

func (a *Analytics) CategoryVolume() models.CategoryBreakdown {
	a.observe(aggregate.ViewCategoryVolume)
	return aggregate.CategoryVolume(a.current().Cleaned)
}

// Series returns a single-series view by name.
func (a *Analytics) Series(view string) (models.Series, bool) {
	switch view {
	case aggregate.ViewRevenueByYear:
		return a.RevenueByYear(), true
	case aggregate.ViewRevenueByMonth:
		return a.RevenueByMonth(), true
	case aggregate.ViewRevenueByCountry:
		return a.RevenueByCountry(), true
	case aggregate.ViewRevenueByGender:
		return a.RevenueByGender(), true
	case aggregate.ViewTopProducts:
		return a.TopProducts(a.defaults.TopProducts), true
	}
	return models.Series{}, false
}

func (a *Analytics) Countries() []string {
	return a.current().Countries
}

// SelectCountry resolves a 1-based index or a country name.
func (a *Analytics) SelectCountry(input string) (string, error) {
	return selection.Select(a.Countries(), input)
}

func (a *Analytics) Quality() cleaning.Report {
	return a.current().Quality
}

func (a *Analytics) Duplicates() models.Table {
	return a.current().Duplicates
}

// Table returns the cleaned table. Callers must not modify it.
func (a *Analytics) Table() models.Table {
	return a.current().Cleaned
}

// Snapshot holds every default view, computed from one dataset.
type Snapshot struct {
	DatasetID              string                   `json:"dataset_id"`
	RevenueByYear          models.Series            `json:"revenue_by_year"`
	RevenueByMonth         models.Series            `json:"revenue_by_month"`
	RevenueByCountry       models.Series            `json:"revenue_by_country"`
	RevenueByGender        models.Series            `json:"revenue_by_gender"`
	RevenueByCountryGender models.Pivot             `json:"revenue_by_country_gender"`
	Seasonality            models.Seasonality       `json:"seasonality"`
	TopProducts            models.Series            `json:"top_products"`
	Categories             models.CategoryBreakdown `json:"categories"`
	Countries              []string                 `json:"countries"`
	Quality                cleaning.Report          `json:"quality"`
}

// Snapshot computes the default views concurrently. Views only read the
// dataset, so they share it without locking.
func (a *Analytics) Snapshot(ctx context.Context) (*Snapshot, error) {
	ctx, span := observability.StartSpan(ctx, "analytics.snapshot")
	defer span.End(a.logger)

	ds := a.current()
	t := ds.Cleaned
	d := a.defaults
	snap := &Snapshot{DatasetID: ds.ID, Countries: ds.Countries, Quality: ds.Quality}

	g, ctx := errgroup.WithContext(ctx)
	run := func(view string, fn func()) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn()
			a.observe(view)
			return nil
		})
	}

	run(aggregate.ViewRevenueByYear, func() { snap.RevenueByYear = aggregate.RevenueByYear(t) })
	run(aggregate.ViewRevenueByMonth, func() { snap.RevenueByMonth = aggregate.RevenueByMonth(t) })
	run(aggregate.ViewRevenueByCountry, func() { snap.RevenueByCountry = aggregate.RevenueByCountry(t) })
	run(aggregate.ViewRevenueByGender, func() { snap.RevenueByGender = aggregate.RevenueByGender(t) })
	run(aggregate.ViewRevenueByCountryGender, func() { snap.RevenueByCountryGender = aggregate.RevenueByCountryGender(t) })
	run(aggregate.ViewSeasonality, func() {
		snap.Seasonality = aggregate.SeasonalityTopCountries(t, d.TopCountries, d.SeasonalityFrom, d.SeasonalityTo)
	})
	run(aggregate.ViewTopProducts, func() { snap.TopProducts = aggregate.TopProducts(t, d.TopProducts) })
	run(aggregate.ViewCategoryVolume, func() { snap.Categories = aggregate.CategoryVolume(t) })

	if err := g.Wait(); err != nil {
		span.SetError(err)
		return nil, err
	}
	return snap, nil
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	ds := a.current()

	return map[string]any{
		"dataset_id":        ds.ID,
		"source":            ds.Source,
		"pipeline":          a.pipeline,
		"records_processed": a.recordsProcessed.Load(),
		"record_count":      len(ds.Cleaned),
		"duplicate_rows":    len(ds.Duplicates),
		"complete_years":    ds.Quality.CompleteYears,
		"excluded_years":    ds.Quality.ExcludedYears,
		"countries":         len(ds.Countries),
		"last_processed":    ds.LoadedAt,
	}
}
