// Package catalog discovers, registers, and refreshes datasets backed by
// files in a data directory, holding each dataset's Arrow schema and
// metadata in memory.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/flightbridge/flightbridge/csvsource"
	"github.com/flightbridge/flightbridge/schema"
)

// Sentinel errors for catalog-local conditions not tied to an RPC boundary.
var (
	ErrNilCatalog    = errors.New("catalog: nil catalog")
	ErrNotFound      = errors.New("catalog: dataset not found")
	ErrInvalidConfig = errors.New("catalog: invalid configuration")
)

// Metadata carries auxiliary facts about a dataset that aren't part of its
// shape. TotalRecords is -1 until a full scan is performed (the directory
// scan that registers the dataset only inspects its schema, not its full
// row count).
type Metadata struct {
	TotalRecords int64
	TotalBytes   int64
	Created      time.Time
	Type         string
}

// Dataset is one catalog entry: an immutable, frozen shape paired with an
// opaque source locator the Flight service never interprets itself.
type Dataset struct {
	ID            string
	SourceLocator string
	ArrowSchema   *arrow.Schema
	Metadata      Metadata
}

// Config configures a Catalog's directory scan.
type Config struct {
	DataDirectory string
	Extension     string // defaults to ".csv"
	Adapter       csvsource.Options
	Schema        schema.Options
	Logger        *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Extension == "" {
		c.Extension = ".csv"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

func validateConfig(c Config) error {
	if c.DataDirectory == "" {
		return fmt.Errorf("%w: DataDirectory is required", ErrInvalidConfig)
	}
	return nil
}

// Catalog is a read-mostly, goroutine-safe map of dataset id to Dataset.
// Refresh replaces its contents atomically; entries are otherwise
// immutable while referenced by an in-flight DoGet.
type Catalog struct {
	cfg Config

	mu          sync.RWMutex
	datasets    map[string]Dataset
	insertOrder []string
	initialized bool
}

// New validates cfg and constructs an empty Catalog. Call Initialize to
// populate it from disk.
func New(cfg Config) (*Catalog, error) {
	cfg = cfg.withDefaults()
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Catalog{cfg: cfg, datasets: make(map[string]Dataset)}, nil
}

// Initialize scans the configured data directory once. It is idempotent:
// subsequent calls after a successful initialization are no-ops. A missing
// directory logs a warning and leaves the catalog empty rather than
// failing.
func (c *Catalog) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	datasets, order, err := c.scan(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.datasets = datasets
	c.insertOrder = order
	c.initialized = true
	c.mu.Unlock()
	return nil
}

// Refresh replaces the catalog's contents with the result of a fresh
// directory scan, atomically.
func (c *Catalog) Refresh(ctx context.Context) (int, error) {
	datasets, order, err := c.scan(ctx)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.datasets = datasets
	c.insertOrder = order
	c.initialized = true
	c.mu.Unlock()
	return len(datasets), nil
}

func (c *Catalog) scan(ctx context.Context) (map[string]Dataset, []string, error) {
	entries, err := os.ReadDir(c.cfg.DataDirectory)
	if errors.Is(err, os.ErrNotExist) {
		c.cfg.Logger.Warn("catalog: data directory does not exist, yielding empty catalog", "dir", c.cfg.DataDirectory)
		return make(map[string]Dataset), nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: failed to read data directory %q: %w", c.cfg.DataDirectory, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), c.cfg.Extension) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	datasets := make(map[string]Dataset, len(names))
	order := make([]string, 0, len(names))

	for _, name := range names {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		path := filepath.Join(c.cfg.DataDirectory, name)
		id := strings.TrimSuffix(name, filepath.Ext(name))

		ds, err := c.registerFile(ctx, id, path)
		if err != nil {
			c.cfg.Logger.Warn("catalog: skipping dataset, schema inference failed", "id", id, "path", path, "error", err)
			continue
		}
		datasets[id] = ds
		order = append(order, id)
	}

	return datasets, order, nil
}

func (c *Catalog) registerFile(ctx context.Context, id, path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Dataset{}, fmt.Errorf("stat %q: %w", path, err)
	}

	adapterOpts := c.cfg.Adapter
	adapterOpts.BatchSize = 1
	adapter := csvsource.New(adapterOpts, c.cfg.Logger)

	result, err := adapter.Start(ctx, f)
	if err != nil {
		return Dataset{}, err
	}

	var schemaEvent *csvsource.Event
	for ev := range adapter.Events {
		switch ev.Kind {
		case csvsource.EventSchema:
			e := ev
			schemaEvent = &e
		case csvsource.EventError:
			adapter.Stop()
			return Dataset{}, ev.Err
		}
		if schemaEvent != nil {
			adapter.Stop()
			break
		}
	}
	if schemaEvent == nil {
		return Dataset{}, fmt.Errorf("catalog: no schema event observed for %q", path)
	}
	// Drain any remaining buffered events so the adapter's goroutine can
	// exit after Stop(); the scan only needs the schema.
	go func() {
		for range adapter.Events {
		}
	}()

	arrowSchema := schema.GenerateArrowSchema(result.ColumnOrder, result.Schema, c.cfg.Schema)

	return Dataset{
		ID:            id,
		SourceLocator: path,
		ArrowSchema:   arrowSchema,
		Metadata: Metadata{
			TotalRecords: -1,
			TotalBytes:   info.Size(),
			Created:      info.ModTime(),
			Type:         "csv",
		},
	}, nil
}

// Get returns the dataset registered under id, or (Dataset{}, false) if
// absent.
func (c *Catalog) Get(id string) (Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.datasets[id]
	return ds, ok
}

// Has reports whether id is registered.
func (c *Catalog) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.datasets[id]
	return ok
}

// Ids returns dataset ids in catalog insertion (directory-scan) order.
func (c *Catalog) Ids() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.insertOrder))
	copy(out, c.insertOrder)
	return out
}

// All returns every registered Dataset in insertion order.
func (c *Catalog) All() []Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Dataset, 0, len(c.insertOrder))
	for _, id := range c.insertOrder {
		out = append(out, c.datasets[id])
	}
	return out
}
