package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"salesetl/internal/clean"
	"salesetl/internal/config"
	"salesetl/internal/datasource/httpds"
	"salesetl/internal/datasource/pdfds"
	"salesetl/internal/datasource/rds"
	"salesetl/internal/datasource/s3ds"
	"salesetl/internal/metrics"
	"salesetl/internal/records"
	"salesetl/internal/warehouse"
)

// allEntities is the run order. Dimensions load before the orders fact table
// so the fact table's foreign keys have targets to reference.
var allEntities = []string{"users", "cards", "stores", "products", "dates", "orders"}

func isEntity(name string) bool {
	for _, e := range allEntities {
		if e == name {
			return true
		}
	}
	return false
}

// pipeline carries the shared handles of one run. The relational source is
// opened lazily because a -only subset may never touch it.
type pipeline struct {
	cfg     *config.Config
	loader  *warehouse.Loader
	verbose bool

	source *rds.Source
}

// run executes the extract, clean, load cycle for each selected entity.
func run(ctx context.Context, cfg *config.Config, entities []string, verbose bool) error {
	pool, err := pgxpool.New(ctx, cfg.Warehouse.DSN)
	if err != nil {
		return errors.Wrap(err, "connect warehouse")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return errors.Wrap(err, "warehouse unreachable")
	}

	p := &pipeline{
		cfg:     cfg,
		loader:  warehouse.NewLoader(pool),
		verbose: verbose,
	}
	defer p.close()

	for _, name := range entities {
		if err := p.runEntity(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) close() {
	if p.source != nil {
		_ = p.source.Close()
	}
}

// runEntity takes one entity through all three stages, recording counts and
// stage latencies along the way.
func (p *pipeline) runEntity(ctx context.Context, name string) error {
	start := time.Now()
	raw, err := p.extract(ctx, name)
	metrics.RecordStage(name, "extract", err, time.Since(start))
	if err != nil {
		return errors.Wrapf(err, "extract %s", name)
	}
	metrics.RecordRows(name, "extracted", int64(len(raw)))
	if p.verbose {
		log.Printf("%s: extracted %d rows", name, len(raw))
	}

	start = time.Now()
	spec, err := buildTableSpec(name, raw)
	metrics.RecordStage(name, "clean", err, time.Since(start))
	if err != nil {
		return errors.Wrapf(err, "clean %s", name)
	}
	cleaned := int64(len(spec.Rows))
	metrics.RecordRows(name, "cleaned", cleaned)
	metrics.RecordRows(name, "dropped", int64(len(raw))-cleaned)
	log.Printf("%s: %d rows cleaned, %d dropped", name, cleaned, int64(len(raw))-cleaned)

	start = time.Now()
	err = p.loader.Configure(ctx, spec)
	metrics.RecordStage(name, "load", err, time.Since(start))
	if err != nil {
		return errors.Wrapf(err, "load %s", name)
	}
	metrics.RecordRows(name, "loaded", cleaned)
	return nil
}

// extract pulls the raw batch for one entity from its source system.
func (p *pipeline) extract(ctx context.Context, name string) ([]records.Record, error) {
	switch name {
	case "users":
		src, err := p.sourceDB(ctx)
		if err != nil {
			return nil, err
		}
		return src.ReadTable(ctx, p.cfg.SourceDB.UsersTable)

	case "orders":
		src, err := p.sourceDB(ctx)
		if err != nil {
			return nil, err
		}
		return src.ReadTable(ctx, p.cfg.SourceDB.OrdersTable)

	case "cards":
		return pdfds.Retrieve(p.cfg.CardPDF.Path)

	case "stores":
		client := httpds.NewClient(httpds.Config{
			APIKey:      p.cfg.StoreAPI.Key,
			Concurrency: p.cfg.StoreAPI.Concurrency,
			MaxRetries:  p.cfg.StoreAPI.MaxRetries,
		})
		count, err := client.StoreCount(ctx, p.cfg.StoreAPI.CountURL)
		if err != nil {
			return nil, err
		}
		if p.verbose {
			log.Printf("stores: API reports %d stores", count)
		}
		return client.RetrieveStores(ctx, p.cfg.StoreAPI.DetailURLTemplate, count)

	case "products":
		return s3ds.Retrieve(ctx, p.cfg.Objects.ProductsAddress)

	case "dates":
		return s3ds.Retrieve(ctx, p.cfg.Objects.DatesAddress)

	default:
		return nil, errors.Errorf("unknown entity %q", name)
	}
}

// sourceDB opens the relational source on first use.
func (p *pipeline) sourceDB(ctx context.Context) (*rds.Source, error) {
	if p.source != nil {
		return p.source, nil
	}
	src, err := rds.Open(ctx, rds.Config{
		Driver: p.cfg.SourceDB.Driver,
		DSN:    p.cfg.SourceDB.DSN(),
	})
	if err != nil {
		return nil, err
	}
	p.source = src
	return src, nil
}

// buildTableSpec normalizes a raw batch into the warehouse table for the
// entity: cleaned rows, target column types, and key constraints.
func buildTableSpec(name string, raw []records.Record) (warehouse.TableSpec, error) {
	switch name {
	case "users":
		us, err := clean.Users(raw)
		if err != nil {
			return warehouse.TableSpec{}, err
		}
		return warehouse.TableSpec{
			Table:       warehouse.TableUsers,
			Columns:     clean.UserColumns,
			Rows:        clean.UserRows(us),
			ColumnTypes: warehouse.UserColumnTypes(),
			PrimaryKey:  "user_uuid",
		}, nil

	case "cards":
		cs, err := clean.Cards(raw)
		if err != nil {
			return warehouse.TableSpec{}, err
		}
		return warehouse.TableSpec{
			Table:       warehouse.TableCards,
			Columns:     clean.CardColumns,
			Rows:        clean.CardRows(cs),
			ColumnTypes: warehouse.CardColumnTypes(),
			PrimaryKey:  "card_number",
		}, nil

	case "stores":
		ss, err := clean.Stores(raw)
		if err != nil {
			return warehouse.TableSpec{}, err
		}
		return warehouse.TableSpec{
			Table:       warehouse.TableStores,
			Columns:     clean.StoreColumns,
			Rows:        clean.StoreRows(ss),
			ColumnTypes: warehouse.StoreColumnTypes(),
			PrimaryKey:  "store_code",
		}, nil

	case "products":
		ps, err := clean.Products(raw)
		if err != nil {
			return warehouse.TableSpec{}, err
		}
		return warehouse.TableSpec{
			Table:       warehouse.TableProducts,
			Columns:     clean.ProductColumns,
			Rows:        clean.ProductRows(ps),
			ColumnTypes: warehouse.ProductColumnTypes(),
			PrimaryKey:  "product_code",
		}, nil

	case "dates":
		ds, err := clean.Dates(raw)
		if err != nil {
			return warehouse.TableSpec{}, err
		}
		return warehouse.TableSpec{
			Table:       warehouse.TableDates,
			Columns:     clean.DateColumns,
			Rows:        clean.DateRows(ds),
			ColumnTypes: warehouse.DateColumnTypes(),
			PrimaryKey:  "date_uuid",
		}, nil

	case "orders":
		os, err := clean.Orders(raw)
		if err != nil {
			return warehouse.TableSpec{}, err
		}
		return warehouse.TableSpec{
			Table:       warehouse.TableOrders,
			Columns:     clean.OrderColumns,
			Rows:        clean.OrderRows(os),
			ColumnTypes: warehouse.OrderColumnTypes(),
			ForeignKeys: warehouse.OrderForeignKeys(),
		}, nil

	default:
		return warehouse.TableSpec{}, errors.Errorf("unknown entity %q", name)
	}
}
