package regions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stackform/stackform/pkg/multierr"
)

type (
	// Coordinates is the approximate location of an AWS region, used by the
	// edge router to pick the nearest server origin for a viewer.
	Coordinates struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}

	// RegionSet is an ordered list of regions a component is replicated into.
	// The first region is the primary; order is preserved so generated
	// resource names stay stable.
	RegionSet []string
)

// coordinates holds every region multi-region components may deploy into.
// Values are rounded city coordinates; nearest-region routing only needs
// continental accuracy.
var coordinates = map[string]Coordinates{
	"us-east-1":      {Lat: 38.9, Lon: -77.4},
	"us-east-2":      {Lat: 40.0, Lon: -83.0},
	"us-west-1":      {Lat: 37.4, Lon: -121.9},
	"us-west-2":      {Lat: 45.8, Lon: -119.7},
	"ca-central-1":   {Lat: 45.5, Lon: -73.6},
	"sa-east-1":      {Lat: -23.5, Lon: -46.6},
	"eu-west-1":      {Lat: 53.3, Lon: -6.3},
	"eu-west-2":      {Lat: 51.5, Lon: -0.1},
	"eu-west-3":      {Lat: 48.9, Lon: 2.4},
	"eu-central-1":   {Lat: 50.1, Lon: 8.7},
	"eu-north-1":     {Lat: 59.3, Lon: 18.1},
	"eu-south-1":     {Lat: 45.5, Lon: 9.2},
	"ap-south-1":     {Lat: 19.1, Lon: 72.9},
	"ap-southeast-1": {Lat: 1.4, Lon: 103.8},
	"ap-southeast-2": {Lat: -33.9, Lon: 151.2},
	"ap-northeast-1": {Lat: 35.7, Lon: 139.7},
	"ap-northeast-2": {Lat: 37.6, Lon: 126.9},
	"ap-northeast-3": {Lat: 34.7, Lon: 135.5},
	"ap-east-1":      {Lat: 22.3, Lon: 114.2},
	"af-south-1":     {Lat: -33.9, Lon: 18.4},
	"me-south-1":     {Lat: 26.1, Lon: 50.6},
}

// Lookup returns the routing coordinates for a region.
func Lookup(region string) (Coordinates, bool) {
	c, ok := coordinates[region]
	return c, ok
}

// NewRegionSet validates that every region is supported and that none repeat.
// An empty list falls back to the single defaultRegion.
func NewRegionSet(regionList []string, defaultRegion string) (RegionSet, error) {
	if len(regionList) == 0 {
		regionList = []string{defaultRegion}
	}
	var errs multierr.Error
	seen := make(map[string]struct{}, len(regionList))
	for _, r := range regionList {
		if _, ok := coordinates[r]; !ok {
			errs.Append(fmt.Errorf("unsupported deployment region %q (supported: %s)", r, supportedList()))
			continue
		}
		if _, dup := seen[r]; dup {
			errs.Append(fmt.Errorf("deployment region %q listed more than once", r))
		}
		seen[r] = struct{}{}
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return RegionSet(regionList), nil
}

// Primary returns the first region of the set.
func (s RegionSet) Primary() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func (s RegionSet) Contains(region string) bool {
	for _, r := range s {
		if r == region {
			return true
		}
	}
	return false
}

func supportedList() string {
	names := make([]string, 0, len(coordinates))
	for r := range coordinates {
		names = append(names, r)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
