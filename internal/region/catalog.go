package region

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tartampluch/go-countdown/internal/config"
)

// Catalog is the immutable, loaded list of regions.
// It is built once at startup and shared read-only by every consumer.
type Catalog struct {
	regions []Region
	byCode  map[string]int
	source  string
}

// Load resolves the source chain and builds a Catalog.
//
// Codes are upper-cased. Regions with an empty or unknown timezone are dropped,
// as are duplicate codes (first occurrence wins). Source order is preserved.
func Load(ctx context.Context, sources ...Source) (*Catalog, error) {
	name, c := Chain(sources).resolve(ctx)
	c.source = name
	if c.Len() == 0 {
		return nil, errors.New(config.ErrRegionsEmpty)
	}

	slog.Info(config.MsgRegionsLoaded,
		config.LogKeyComponent, config.CompRegion,
		config.LogKeySource, name,
		config.LogKeyCount, c.Len(),
	)
	return c, nil
}

// New builds a Catalog from an in-memory list, applying the same filtering as Load.
func New(raw []Region) *Catalog {
	c := &Catalog{
		regions: make([]Region, 0, len(raw)),
		byCode:  make(map[string]int, len(raw)),
	}

	for _, r := range raw {
		r.Code = normalizeCode(r.Code)
		if r.Code == "" {
			continue
		}
		if _, err := Location(r.Timezone); err != nil {
			slog.Debug(config.MsgRegionSkipped,
				config.LogKeyComponent, config.CompRegion,
				config.LogKeyCode, r.Code,
				config.LogKeyTimezone, r.Timezone,
				config.LogKeyError, err,
			)
			continue
		}
		if _, dup := c.byCode[r.Code]; dup {
			slog.Debug(config.MsgRegionDuplicate,
				config.LogKeyComponent, config.CompRegion,
				config.LogKeyCode, r.Code,
			)
			continue
		}
		c.byCode[r.Code] = len(c.regions)
		c.regions = append(c.regions, r)
	}
	return c
}

// All returns a copy of the regions in catalog order.
func (c *Catalog) All() []Region {
	out := make([]Region, len(c.regions))
	copy(out, c.regions)
	return out
}

// Lookup finds a region by code, case-insensitively.
func (c *Catalog) Lookup(code string) (Region, error) {
	i, ok := c.byCode[normalizeCode(code)]
	if !ok {
		return Region{}, ErrNotFound
	}
	return c.regions[i], nil
}

// Len returns the number of regions.
func (c *Catalog) Len() int {
	return len(c.regions)
}

// Source names the source the catalog was loaded from.
func (c *Catalog) Source() string {
	return c.source
}
