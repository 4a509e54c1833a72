package section

import (
	"fmt"
	"strings"
)

// WarningKind classifies a Warning.
type WarningKind string

const (
	WarnDuplicateName     WarningKind = "duplicate-name"
	WarnDuplicateLocation WarningKind = "duplicate-location"
)

// Warning describes input that is valid but probably not intended.
type Warning struct {
	Kind WarningKind `json:"kind"`
	// Columns holds the input indices involved, ascending.
	Columns []int  `json:"columns"`
	Message string `json:"message"`
}

func (w Warning) String() string { return w.Message }

// Check reports columns sharing a name or a plan location. Warnings come in
// order of first occurrence; duplicate names before duplicate locations.
func Check(columns []Column) []Warning {
	var warnings []Warning

	byName := make(map[string][]int)
	var names []string
	for i, c := range columns {
		if _, ok := byName[c.Name]; !ok {
			names = append(names, c.Name)
		}
		byName[c.Name] = append(byName[c.Name], i)
	}
	for _, name := range names {
		if idx := byName[name]; len(idx) > 1 {
			warnings = append(warnings, Warning{
				Kind:    WarnDuplicateName,
				Columns: idx,
				Message: fmt.Sprintf("column name %q is used %d times (indices %s)", name, len(idx), joinInts(idx)),
			})
		}
	}

	type loc struct{ x, y float64 }
	byLoc := make(map[loc][]int)
	var locs []loc
	for i, c := range columns {
		k := loc{c.X, c.Y}
		if _, ok := byLoc[k]; !ok {
			locs = append(locs, k)
		}
		byLoc[k] = append(byLoc[k], i)
	}
	for _, k := range locs {
		if idx := byLoc[k]; len(idx) > 1 {
			warnings = append(warnings, Warning{
				Kind:    WarnDuplicateLocation,
				Columns: idx,
				Message: fmt.Sprintf("%d columns share location (%g, %g) (indices %s)", len(idx), k.x, k.y, joinInts(idx)),
			})
		}
	}
	return warnings
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
