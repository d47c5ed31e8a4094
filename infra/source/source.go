package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kilianp07/rideslots/core/eventlog"
	"github.com/kilianp07/rideslots/core/factory"
	"github.com/kilianp07/rideslots/core/model"
)

// Config locates the observation log.
type Config struct {
	// Path of a .csv, .xlsx or SQLite (.db, .sqlite, .sqlite3) file.
	Path string `json:"path"`
	// Sheet selects the worksheet of an .xlsx file; empty means the first.
	Sheet string `json:"sheet"`
	// Table names the SQLite table holding the rows.
	Table string `json:"table"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Path == "" {
		c.Path = "assets/ride_hailing.xlsx"
	}
	if c.Table == "" {
		c.Table = "observations"
	}
}

// Validate checks the file type is supported.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("source path is required")
	}
	if _, err := reader(c); err != nil {
		return err
	}
	return nil
}

// Read loads the raw table described by cfg.
func Read(cfg Config) (Table, error) {
	read, err := reader(cfg)
	if err != nil {
		return Table{}, err
	}
	return read()
}

// Readers maps a lower-cased file extension to the reader for that format.
var Readers = factory.NewRegistry[Config, Table]()

func init() {
	Readers.MustRegister(".csv", func(c Config) (Table, error) { return ReadCSV(c.Path) })
	Readers.MustRegister(".xlsx", func(c Config) (Table, error) { return ReadXLSX(c.Path, c.Sheet) })
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		Readers.MustRegister(ext, func(c Config) (Table, error) { return ReadSQLite(c.Path, c.Table) })
	}
}

func reader(cfg Config) (func() (Table, error), error) {
	ext := strings.ToLower(filepath.Ext(cfg.Path))
	if !Readers.Has(ext) {
		return nil, fmt.Errorf("unsupported source format: %s (known: %s)", ext, strings.Join(Readers.Names(), ", "))
	}
	return func() (Table, error) { return Readers.Create(ext, cfg) }, nil
}

// Load reads and indexes the observation log. Every failure is a
// *model.LoadError.
func Load(cfg Config) (*eventlog.Store, error) {
	t, err := Read(cfg)
	if err != nil {
		return nil, &model.LoadError{Source: cfg.Path, Err: err}
	}
	rows, err := t.Decode()
	if err != nil {
		return nil, &model.LoadError{Source: cfg.Path, Err: err}
	}
	return eventlog.New(rows), nil
}
