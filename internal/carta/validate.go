package carta

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vinarium/carta/internal/airtable"
	"github.com/vinarium/carta/pkg/logger"
)

// WineEntry is a fully normalized wine record, ready for the document.
type WineEntry struct {
	Name               string   `yaml:"name"`
	Producer           string   `yaml:"producer"`
	Zone               string   `yaml:"zone"`
	PriceEUR           *float64 `yaml:"price_eur"`
	Category           string   `yaml:"category"`
	Region             string   `yaml:"region"`
	Grapes             string   `yaml:"grapes,omitempty"`
	ProductionLocation string   `yaml:"production_location,omitempty"`
	Aging              string   `yaml:"aging,omitempty"`
	ABV                string   `yaml:"abv,omitempty"`
}

// Warning is a record whose required fields all resolved but one or more
// optional fields are missing. The normalized entry is kept so an operator
// can inspect exactly what would have been printed.
type Warning struct {
	ID            string
	WarningFields []string
	Entry         WineEntry
}

// Invalid is a record excluded from the list, with the required fields that
// failed.
type Invalid struct {
	ID            string
	InvalidFields []string
}

// Classification partitions the input records. Every record lands in exactly
// one of Valid, Warnings or Invalid; only fully complete records count as
// valid, so the warning and invalid buckets together are the full audit
// trail of what the list omits or prints incomplete.
type Classification struct {
	Valid      []WineEntry
	Warnings   []Warning
	Invalid    []Invalid
	Categories []string
}

// ProducerResolver maps a producer's linked record id to its display name.
type ProducerResolver interface {
	ProducerName(ctx context.Context, producerID string) (string, error)
}

// MapProducerResolver resolves producers from a preloaded map.
type MapProducerResolver map[string]string

func (m MapProducerResolver) ProducerName(_ context.Context, producerID string) (string, error) {
	if name, ok := m[producerID]; ok {
		return name, nil
	}
	return "", fmt.Errorf("producer %s not found", producerID)
}

// RemoteProducerResolver resolves producers by fetching their record from
// the producers table. Lookups are issued one at a time to bound load on the
// API and keep error attribution per record.
type RemoteProducerResolver struct {
	Client *airtable.Client
	Table  string
}

func (r *RemoteProducerResolver) ProducerName(ctx context.Context, producerID string) (string, error) {
	rec, err := r.Client.GetRecord(ctx, r.Table, producerID)
	if err != nil {
		return "", err
	}
	if name := fieldString(rec.Fields, "Nome Produttore", "Nome"); name != nil {
		return *name, nil
	}
	return "", fmt.Errorf("producer %s has no name field", producerID)
}

// Validate classifies each record against the required/optional field
// contract. Required: name, producer, zone, price, category, region — any
// failure excludes the record. Optional: grapes, production location, aging,
// abv — absence only demotes the record to a warning. Validation failures
// are data, never errors.
func Validate(ctx context.Context, records []airtable.Record, zones ZoneMapping, producers ProducerResolver) Classification {
	var out Classification
	seenCategories := make(map[string]bool)

	for _, rec := range records {
		entry, invalid, warnings := classifyRecord(ctx, rec, zones, producers)
		switch {
		case len(invalid) > 0:
			out.Invalid = append(out.Invalid, Invalid{ID: rec.ID, InvalidFields: invalid})
		case len(warnings) > 0:
			out.Warnings = append(out.Warnings, Warning{ID: rec.ID, WarningFields: warnings, Entry: entry})
		default:
			out.Valid = append(out.Valid, entry)
			if entry.Category != "" && !seenCategories[entry.Category] {
				seenCategories[entry.Category] = true
				out.Categories = append(out.Categories, entry.Category)
			}
		}
	}
	return out
}

func classifyRecord(ctx context.Context, rec airtable.Record, zones ZoneMapping, producers ProducerResolver) (WineEntry, []string, []string) {
	fields := rec.Fields
	var invalid, warnings []string
	var entry WineEntry

	entry.Name = Extract(fields[FieldName])
	if entry.Name == "" {
		invalid = append(invalid, FieldName)
	}

	if producerID := LinkedID(fields[FieldProducer]); producerID == "" {
		invalid = append(invalid, FieldProducer)
	} else if name, err := producers.ProducerName(ctx, producerID); err != nil {
		logger.Warnf("record %s: resolving producer %s: %v", rec.ID, producerID, err)
		invalid = append(invalid, FieldProducer)
	} else {
		entry.Producer = name
	}

	zoneID := LinkedID(fields[FieldZone])
	switch {
	case zoneID != "":
		entry.Zone = zones.DisplayName(zoneID)
	case Extract(fields[FieldZone]) != "":
		entry.Zone = Extract(fields[FieldZone])
	default:
		invalid = append(invalid, FieldZone)
	}

	if raw := Extract(fields[FieldPrice]); raw == "" {
		invalid = append(invalid, FieldPrice)
	} else if price, ok := ParsePrice(raw); ok {
		entry.PriceEUR = &price
	} else {
		invalid = append(invalid, FieldPrice)
	}

	entry.Category = Extract(fields[FieldCategory])
	if entry.Category == "" {
		invalid = append(invalid, FieldCategory)
	}

	entry.Region = Extract(fields[FieldRegion])
	if entry.Region == "" {
		invalid = append(invalid, FieldRegion)
	}

	optional := []struct {
		field string
		dst   *string
	}{
		{FieldGrapes, &entry.Grapes},
		{FieldProductionLocation, &entry.ProductionLocation},
		{FieldAging, &entry.Aging},
		{FieldABV, &entry.ABV},
	}
	for _, opt := range optional {
		if v := Extract(fields[opt.field]); v != "" {
			*opt.dst = v
		} else {
			warnings = append(warnings, opt.field)
		}
	}

	return entry, invalid, warnings
}

var priceJunk = regexp.MustCompile(`[^0-9.]`)

// ParsePrice parses a price string as written in the base ("12,50 €",
// "1234.5"): decimal comma becomes a dot, everything except digits and dots
// is stripped, the result is rounded to two decimals. The second return is
// false when nothing numeric remains.
func ParsePrice(raw string) (float64, bool) {
	s := strings.ReplaceAll(raw, ",", ".")
	s = priceJunk.ReplaceAllString(s, "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return math.Round(v*100) / 100, true
}
