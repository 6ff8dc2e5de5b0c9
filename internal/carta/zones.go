package carta

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vinarium/carta/internal/airtable"
	"github.com/vinarium/carta/pkg/logger"
)

// ZoneDescriptor is the metadata attached to one geographic zone. Nil
// pointers mark values the source record does not carry.
type ZoneDescriptor struct {
	ID       string
	Name     *string
	Region   *string
	Country  *string
	Priority *float64
}

// ZoneMapping indexes zone descriptors by record id.
type ZoneMapping map[string]ZoneDescriptor

// ResolveZones fetches every record of the zones table and builds the
// mapping used for sorting and display. A fetch failure returns no partial
// mapping.
func ResolveZones(ctx context.Context, client *airtable.Client, table string) (ZoneMapping, error) {
	records, err := client.ListAllRecords(ctx, table, airtable.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("resolve zones: %w", err)
	}
	return BuildZoneMapping(records), nil
}

// BuildZoneMapping converts zone records into a ZoneMapping. Records without
// an id are skipped and logged, never inserted under a synthetic key. The
// zone name and priority come from fallback chains since the production base
// renamed those columns over time.
func BuildZoneMapping(records []airtable.Record) ZoneMapping {
	mapping := make(ZoneMapping, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			logger.Warnf("skipping zone record without id (%d fields)", len(rec.Fields))
			continue
		}

		d := ZoneDescriptor{ID: rec.ID}
		d.Name = fieldString(rec.Fields, "Nome Zona", "Zona", "Nome")
		d.Region = fieldString(rec.Fields, "Regione")
		d.Country = fieldString(rec.Fields, "Nazione")
		d.Priority = fieldNumber(rec.Fields, "Priorità Zone", "Priorità Zona")
		mapping[rec.ID] = d
	}
	return mapping
}

// DisplayName resolves a zone id to its display name, falling back to the
// raw id when the mapping has no entry or the entry has no name. It never
// fails: a totally absent zone is caught by the required-field check instead.
func (m ZoneMapping) DisplayName(zoneID string) string {
	if d, ok := m[zoneID]; ok && d.Name != nil {
		return *d.Name
	}
	return zoneID
}

func fieldString(fields map[string]interface{}, keys ...string) *string {
	for _, key := range keys {
		if s := Extract(fields[key]); s != "" {
			return &s
		}
	}
	return nil
}

func fieldNumber(fields map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		s := Normalize(fields[key])
		if s == "" {
			continue
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return &v
		}
	}
	return nil
}
