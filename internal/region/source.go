package region

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tartampluch/go-countdown/internal/config"
	"gopkg.in/yaml.v3"
)

// Source yields a raw list of regions.
type Source interface {
	Name() string
	Regions(ctx context.Context) ([]Region, error)
}

// catalogFile is the YAML schema shared by the embedded and on-disk catalogs.
type catalogFile struct {
	Regions []Region `yaml:"regions"`
}

// Decode parses a YAML region catalog.
func Decode(r io.Reader) ([]Region, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", config.ErrRegionParse, err)
	}
	return f.Regions, nil
}

// BuiltinSource is the guaranteed-available fallback list.
type BuiltinSource struct{}

// Name implements Source.
func (BuiltinSource) Name() string { return "builtin" }

// Regions implements Source.
func (BuiltinSource) Regions(context.Context) ([]Region, error) {
	return []Region{
		{Code: "US", Name: "United States", Timezone: "America/New_York"},
		{Code: "GB", Name: "United Kingdom", Timezone: "Europe/London"},
		{Code: "IN", Name: "India", Timezone: "Asia/Kolkata"},
		{Code: "JP", Name: "Japan", Timezone: "Asia/Tokyo"},
		{Code: "AU", Name: "Australia (Sydney)", Timezone: "Australia/Sydney"},
	}, nil
}

//go:embed regions.yaml
var embeddedCatalog []byte

// EmbeddedSource reads the country catalog compiled into the binary.
type EmbeddedSource struct{}

// Name implements Source.
func (EmbeddedSource) Name() string { return "embedded" }

// Regions implements Source.
func (EmbeddedSource) Regions(context.Context) ([]Region, error) {
	return Decode(bytes.NewReader(embeddedCatalog))
}

// FileSource reads a YAML catalog from disk.
type FileSource struct {
	Path string
}

// Name implements Source.
func (s FileSource) Name() string { return "file:" + s.Path }

// Regions implements Source.
func (s FileSource) Regions(ctx context.Context) ([]Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRegionSource, err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Chain tries each source in order and returns the output of the first one
// yielding at least one region with a usable timezone. Failing sources are logged
// and skipped. BuiltinSource terminates the chain when it is not already part of it.
type Chain []Source

// Name implements Source.
func (c Chain) Name() string { return "chain" }

// Regions implements Source.
func (c Chain) Regions(ctx context.Context) ([]Region, error) {
	_, catalog := c.resolve(ctx)
	return catalog.All(), nil
}

func (c Chain) resolve(ctx context.Context) (string, *Catalog) {
	sources := make([]Source, 0, len(c)+1)
	hasBuiltin := false
	for _, s := range c {
		if s == nil {
			continue
		}
		if _, ok := s.(BuiltinSource); ok {
			hasBuiltin = true
		}
		sources = append(sources, s)
	}
	if !hasBuiltin {
		sources = append(sources, BuiltinSource{})
	}

	for _, s := range sources {
		regions, err := s.Regions(ctx)
		if err == nil {
			// A list whose zones all fail to resolve counts as empty.
			if catalog := New(regions); catalog.Len() > 0 {
				return s.Name(), catalog
			}
			err = errors.New(config.ErrRegionsEmpty)
		}
		slog.Warn(config.MsgSourceFailed,
			config.LogKeyComponent, config.CompRegion,
			config.LogKeySource, s.Name(),
			config.LogKeyError, err,
		)
	}
	return "", New(nil)
}
