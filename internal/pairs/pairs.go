// Package pairs discovers discipline model sets in a directory. Files named
// <prefix>-STR.ifc, <prefix>-ARCH.ifc and <prefix>-MEP.ifc are grouped by
// prefix; any other .ifc file forms a group of its own.
package pairs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Discipline suffixes recognised in file names.
const (
	SuffixStructural    = "-STR"
	SuffixArchitectural = "-ARCH"
	SuffixMEP           = "-MEP"
)

// Pair is the set of models sharing a prefix. Paths are empty when the
// discipline is missing.
type Pair struct {
	Prefix        string `json:"prefix"`
	Structural    string `json:"structural,omitempty"`
	Architectural string `json:"architectural,omitempty"`
	MEP           string `json:"mep,omitempty"`
	// Other is set for files without a discipline suffix.
	Other string `json:"other,omitempty"`
}

// Model returns the model to check: the structural one, else the
// unsuffixed file.
func (p Pair) Model() string {
	if p.Structural != "" {
		return p.Structural
	}
	return p.Other
}

// Complete reports whether both a structural and an architectural model exist.
func (p Pair) Complete() bool {
	return p.Structural != "" && p.Architectural != ""
}

// Scan groups the .ifc files in dir (not recursive) by prefix, sorted by
// prefix. Suffix and extension matching is case-insensitive.
func Scan(dir string) ([]Pair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	groups := make(map[string]*Pair)
	get := func(prefix string) *Pair {
		p, ok := groups[prefix]
		if !ok {
			p = &Pair{Prefix: prefix}
			groups[prefix] = p
		}
		return p
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, ".ifc") {
			continue
		}
		path := filepath.Join(dir, name)
		stem := strings.TrimSuffix(name, ext)
		upper := strings.ToUpper(stem)

		switch {
		case strings.HasSuffix(upper, SuffixStructural):
			get(stem[:len(stem)-len(SuffixStructural)]).Structural = path
		case strings.HasSuffix(upper, SuffixArchitectural):
			get(stem[:len(stem)-len(SuffixArchitectural)]).Architectural = path
		case strings.HasSuffix(upper, SuffixMEP):
			get(stem[:len(stem)-len(SuffixMEP)]).MEP = path
		default:
			get(stem).Other = path
		}
	}

	out := make([]Pair, 0, len(groups))
	for _, p := range groups {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out, nil
}

// Select picks a pair by 1-based index or by case-insensitive prefix.
func Select(pairs []Pair, choice string) (Pair, error) {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return Pair{}, fmt.Errorf("no selection given")
	}
	if n, err := strconv.Atoi(choice); err == nil {
		if n < 1 || n > len(pairs) {
			return Pair{}, fmt.Errorf("selection %d out of range 1-%d", n, len(pairs))
		}
		return pairs[n-1], nil
	}
	for _, p := range pairs {
		if strings.EqualFold(p.Prefix, choice) {
			return p, nil
		}
	}
	return Pair{}, fmt.Errorf("no model set with prefix %q", choice)
}
