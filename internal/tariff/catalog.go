package tariff

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/iwvelando/rental-quote/pkg/constants"
)

//go:embed data/*.json
var builtinFiles embed.FS

// Catalog holds the read-only built-in table of each season.
type Catalog struct {
	summer Table
	autumn Table
}

// DefaultCatalog returns the tables shipped with the binary.
func DefaultCatalog() Catalog {
	return Catalog{
		summer: mustEmbedded("data/summer.json"),
		autumn: mustEmbedded("data/autumn.json"),
	}
}

// LoadCatalog reads season tables from JSON files. An empty path keeps the
// shipped table for that season.
func LoadCatalog(summerFile, autumnFile string) (Catalog, error) {
	catalog := DefaultCatalog()

	if summerFile != "" {
		table, err := LoadTable(summerFile)
		if err != nil {
			return Catalog{}, fmt.Errorf("failed to load summer tariff: %w", err)
		}
		catalog.summer = table
	}
	if autumnFile != "" {
		table, err := LoadTable(autumnFile)
		if err != nil {
			return Catalog{}, fmt.Errorf("failed to load autumn tariff: %w", err)
		}
		catalog.autumn = table
	}
	return catalog, nil
}

// NewCatalog builds a catalog from explicit tables.
func NewCatalog(summer, autumn Table) Catalog {
	return Catalog{summer: summer.Clone(), autumn: autumn.Clone()}
}

// Builtin returns a copy of the season's shipped table. Anything other than
// autumn is treated as summer.
func (c Catalog) Builtin(season string) Table {
	if season == constants.SeasonAutumn {
		return c.autumn.Clone()
	}
	return c.summer.Clone()
}

// Effective merges the season's override over its built-in table.
func (c Catalog) Effective(season string, overrides Overrides) Table {
	return Merge(c.Builtin(season), overrides.For(season))
}

// LoadTable reads and validates a JSON tariff document.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, err
	}
	return decodeTable(data)
}

func decodeTable(data []byte) (Table, error) {
	var table Table
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&table); err != nil {
		return Table{}, fmt.Errorf("invalid tariff document: %w", err)
	}
	if err := table.Validate(); err != nil {
		return Table{}, err
	}
	return table, nil
}

func mustEmbedded(name string) Table {
	data, err := builtinFiles.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("missing embedded tariff %s: %v", name, err))
	}
	table, err := decodeTable(data)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded tariff %s: %v", name, err))
	}
	return table
}
