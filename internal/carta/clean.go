package carta

import (
	"github.com/vinarium/carta/internal/airtable"
)

// FieldWhitelist is the fixed projection applied to raw wine records.
// Anything outside it is dropped before the pipeline runs.
var FieldWhitelist = []string{
	FieldName,
	FieldProducer,
	FieldZone,
	FieldPrice,
	FieldCategory,
	FieldRegion,
	FieldGrapes,
	FieldProductionLocation,
	FieldAging,
	FieldABV,
	FieldCountry,
	FieldVintage,
	FieldFormat,
}

// Clean projects raw records down to the field whitelist. A nil response or
// record list yields an empty slice; a record with missing fields degrades
// to an empty field map rather than being dropped, so the record count is
// preserved. The returned records own their field maps.
func Clean(resp *airtable.ListResponse) []airtable.Record {
	if resp == nil {
		return []airtable.Record{}
	}

	cleaned := make([]airtable.Record, 0, len(resp.Records))
	for _, rec := range resp.Records {
		fields := make(map[string]interface{}, len(FieldWhitelist))
		for _, key := range FieldWhitelist {
			if v, ok := rec.Fields[key]; ok {
				fields[key] = v
			}
		}
		cleaned = append(cleaned, airtable.Record{
			ID:          rec.ID,
			CreatedTime: rec.CreatedTime,
			Fields:      fields,
		})
	}
	return cleaned
}
