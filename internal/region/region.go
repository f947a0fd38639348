// Package region loads the immutable list of countries the countdown runs over.
//
// Regions come from a chain of sources. The first source that yields a non-empty
// list wins, and the built-in list always terminates the chain so the service can
// start without any external data.
package region

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	// Ship the IANA database so zone lookups do not depend on the host image.
	_ "time/tzdata"

	"github.com/tartampluch/go-countdown/internal/apperr"
	"github.com/tartampluch/go-countdown/internal/config"
)

// Region is a country paired with the IANA zone its countdown is computed in.
type Region struct {
	Code     string `json:"code" yaml:"code"`
	Name     string `json:"name" yaml:"name"`
	Timezone string `json:"timezone" yaml:"timezone"`
}

// ErrNotFound is returned by Catalog.Lookup for unknown codes.
var ErrNotFound = apperr.New(apperr.NotFound, config.ErrRegionNotFound)

var locations sync.Map // timezone name -> *time.Location

// Location resolves an IANA zone name, memoising successful lookups.
func Location(name string) (*time.Location, error) {
	if name == "" {
		return nil, errors.New(config.ErrTimezone)
	}
	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", config.ErrTimezone, name, err)
	}
	locations.Store(name, loc)
	return loc, nil
}

// normalizeCode upper-cases and trims a region code.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
