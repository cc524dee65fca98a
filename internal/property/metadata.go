package property

import (
	"sort"
	"strings"
)

// Metadata summarises one property across every card on a board.
type Metadata struct {
	Name    string
	Type    Type
	Options []string
}

// Collect scans the property bags in order and returns one Metadata per
// property name, sorted by name. The type is inferred from the first non-nil
// value seen for a name; options gather every scalar value and list element.
func Collect(bags []map[string]any) []Metadata {
	byName := make(map[string]*Metadata)
	options := make(map[string]map[string]struct{})
	var names []string

	for _, bag := range bags {
		for _, name := range sortedKeys(bag) {
			value := bag[name]
			meta, ok := byName[name]
			if !ok {
				meta = &Metadata{Name: name}
				byName[name] = meta
				options[name] = make(map[string]struct{})
				names = append(names, name)
			}
			if meta.Type == "" && value != nil {
				meta.Type = Infer(value, name)
			}
			for _, opt := range optionValues(value) {
				options[name][opt] = struct{}{}
			}
		}
	}

	sort.Strings(names)
	out := make([]Metadata, 0, len(names))
	for _, name := range names {
		meta := byName[name]
		if meta.Type == "" {
			meta.Type = Infer(nil, name)
		}
		meta.Options = SortedSet(options[name])
		out = append(out, *meta)
	}
	return out
}

// Lookup returns the metadata entry for name.
func Lookup(all []Metadata, name string) (Metadata, bool) {
	for _, meta := range all {
		if meta.Name == name {
			return meta, true
		}
	}
	return Metadata{}, false
}

func optionValues(value any) []string {
	if value == nil {
		return nil
	}
	if IsList(value) {
		return Elements(value)
	}
	switch value.(type) {
	case map[string]any:
		return nil
	}
	s := strings.TrimSpace(String(value))
	if s == "" {
		return nil
	}
	return []string{s}
}

// SortedSet returns the members of set in ascending order, skipping empty
// strings.
func SortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(bag map[string]any) []string {
	keys := make([]string, 0, len(bag))
	for k := range bag {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
