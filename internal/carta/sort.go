package carta

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vinarium/carta/internal/airtable"
)

// PriorityTies selects how zones with equal numeric priority are ordered.
// The base carries duplicate priorities whose intended semantics are still
// an open product decision, so the policy is a parameter rather than a
// hard-coded rule.
type PriorityTies int

const (
	// TiesByName orders equal-priority zones by their resolved name.
	TiesByName PriorityTies = iota
	// TiesKeepInput leaves equal-priority zones in input order.
	TiesKeepInput
)

// defaultZonePriority pads a missing priority inside the numeric branch.
const defaultZonePriority = 999

// Sort returns the records in the list's canonical order: category, region,
// zone (priority first, then name), producer, wine name, record id. The
// input is not mutated.
func Sort(records []airtable.Record, zones ZoneMapping) []airtable.Record {
	return SortWithPolicy(records, zones, TiesByName)
}

// SortWithPolicy is Sort with an explicit priority-tie policy.
func SortWithPolicy(records []airtable.Record, zones ZoneMapping, ties PriorityTies) []airtable.Record {
	out := make([]airtable.Record, len(records))
	copy(out, records)

	s := &sorter{
		// Case-insensitive, accent-insensitive, numeric-substring-aware
		// comparison under Italian collation rules.
		col:   collate.New(language.Italian, collate.IgnoreCase, collate.Loose, collate.Numeric),
		zones: zones,
		ties:  ties,
	}
	sort.SliceStable(out, func(i, j int) bool {
		return s.compare(out[i], out[j]) < 0
	})
	return out
}

type sorter struct {
	col   *collate.Collator
	zones ZoneMapping
	ties  PriorityTies
}

func (s *sorter) compare(a, b airtable.Record) int {
	if c := s.col.CompareString(Normalize(a.Fields[FieldCategory]), Normalize(b.Fields[FieldCategory])); c != 0 {
		return c
	}
	if c := s.col.CompareString(Normalize(a.Fields[FieldRegion]), Normalize(b.Fields[FieldRegion])); c != 0 {
		return c
	}
	if c := s.compareZones(a, b); c != 0 {
		return c
	}
	if c := s.col.CompareString(Normalize(a.Fields[FieldProducer]), Normalize(b.Fields[FieldProducer])); c != 0 {
		return c
	}

	// Final tie-break guarantees a total order even among otherwise
	// identical records.
	na := Normalize(a.Fields[FieldName])
	if na == "" {
		na = a.ID
	}
	nb := Normalize(b.Fields[FieldName])
	if nb == "" {
		nb = b.ID
	}
	return s.col.CompareString(na, nb)
}

func (s *sorter) compareZones(a, b airtable.Record) int {
	if s.zones != nil {
		da, oka := s.zones[LinkedID(a.Fields[FieldZone])]
		db, okb := s.zones[LinkedID(b.Fields[FieldZone])]
		hasA := oka && da.Priority != nil
		hasB := okb && db.Priority != nil

		switch {
		case hasA && hasB:
			pa, pb := priorityOrDefault(da.Priority), priorityOrDefault(db.Priority)
			if pa != pb {
				if pa < pb {
					return -1
				}
				return 1
			}
			if s.ties == TiesKeepInput {
				return 0
			}
			return s.col.CompareString(zoneName(da), zoneName(db))
		case hasA:
			return -1
		case hasB:
			return 1
		}
	}

	// Neither side resolves a priority: alphabetical on the raw field.
	return s.col.CompareString(Normalize(a.Fields[FieldZone]), Normalize(b.Fields[FieldZone]))
}

func priorityOrDefault(p *float64) float64 {
	if p == nil {
		return defaultZonePriority
	}
	return *p
}

func zoneName(d ZoneDescriptor) string {
	if d.Name == nil {
		return ""
	}
	return *d.Name
}
