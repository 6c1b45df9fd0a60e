package models

import (
	"slices"
	"sort"

	"immersionfacile/pkg/geo"
)

// Matches reports whether the agency passes every filter.
func (f Filters) Matches(a *Agency) bool {
	if f.DepartmentCode != "" && a.Address.DepartmentCode != f.DepartmentCode {
		return false
	}
	switch f.Kind {
	case KindFilterPEOnly:
		if a.Kind != KindPoleEmploi {
			return false
		}
	case KindFilterPEExcluded:
		if a.Kind == KindPoleEmploi {
			return false
		}
	}
	if f.Position != nil && geo.DistanceKm(a.Position, f.Position.Position) > f.Position.DistanceKm {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, a.Status) {
		return false
	}
	return true
}

// Apply filters agencies, sorts them nearest first when a position is
// given, then applies the limit.
func (f Filters) Apply(agencies []*Agency) []*Agency {
	out := make([]*Agency, 0, len(agencies))
	for _, a := range agencies {
		if f.Matches(a) {
			out = append(out, a)
		}
	}
	if f.Position != nil {
		from := f.Position.Position
		sort.SliceStable(out, func(i, j int) bool {
			return geo.DistanceKm(out[i].Position, from) < geo.DistanceKm(out[j].Position, from)
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
