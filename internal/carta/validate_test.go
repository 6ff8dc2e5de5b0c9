package carta

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinarium/carta/internal/airtable"
)

func completeRecord(id string) airtable.Record {
	return airtable.Record{ID: id, Fields: map[string]interface{}{
		FieldName:               "Barolo Bussia 2019",
		FieldProducer:           []interface{}{"recPROD1"},
		FieldZone:               []interface{}{"recZONE1"},
		FieldPrice:              "45,00 €",
		FieldCategory:           "Rosso",
		FieldRegion:             "Piemonte",
		FieldGrapes:             map[string]interface{}{"value": "Nebbiolo"},
		FieldProductionLocation: "Monforte d'Alba",
		FieldAging:              map[string]interface{}{"value": "36 mesi in botte grande"},
		FieldABV:                map[string]interface{}{"value": "14.5%"},
	}}
}

func testZones() ZoneMapping {
	name := "Langhe"
	return ZoneMapping{"recZONE1": {ID: "recZONE1", Name: &name}}
}

func testProducers() MapProducerResolver {
	return MapProducerResolver{"recPROD1": "Poderi Aldo Conterno"}
}

func TestValidate_CompleteRecordIsValid(t *testing.T) {
	result := Validate(context.Background(), []airtable.Record{completeRecord("rec1")}, testZones(), testProducers())

	require.Len(t, result.Valid, 1)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, result.Invalid)

	entry := result.Valid[0]
	assert.Equal(t, "Barolo Bussia 2019", entry.Name)
	assert.Equal(t, "Poderi Aldo Conterno", entry.Producer)
	assert.Equal(t, "Langhe", entry.Zone)
	require.NotNil(t, entry.PriceEUR)
	assert.InDelta(t, 45.00, *entry.PriceEUR, 0.001)
	assert.Equal(t, "Nebbiolo", entry.Grapes)
	assert.Equal(t, []string{"Rosso"}, result.Categories)
}

func TestValidate_MissingRequiredFieldExcludes(t *testing.T) {
	rec := completeRecord("rec1")
	delete(rec.Fields, FieldPrice)

	result := Validate(context.Background(), []airtable.Record{rec}, testZones(), testProducers())

	assert.Empty(t, result.Valid)
	require.Len(t, result.Invalid, 1)
	assert.Equal(t, "rec1", result.Invalid[0].ID)
	assert.Contains(t, result.Invalid[0].InvalidFields, FieldPrice)
}

func TestValidate_WarningsExcludeFromValid(t *testing.T) {
	rec := completeRecord("rec1")
	delete(rec.Fields, FieldGrapes)
	delete(rec.Fields, FieldAging)

	result := Validate(context.Background(), []airtable.Record{rec}, testZones(), testProducers())

	// A record with only warnings is not valid, but its normalized entry
	// is preserved for inspection.
	assert.Empty(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	warn := result.Warnings[0]
	assert.ElementsMatch(t, []string{FieldGrapes, FieldAging}, warn.WarningFields)
	assert.Equal(t, "Barolo Bussia 2019", warn.Entry.Name)
	assert.Empty(t, result.Invalid)
	assert.Empty(t, result.Categories)
}

func TestValidate_PartitionIsExhaustiveAndExclusive(t *testing.T) {
	valid := completeRecord("recValid")

	warning := completeRecord("recWarning")
	delete(warning.Fields, FieldABV)

	invalid := completeRecord("recInvalid")
	delete(invalid.Fields, FieldCategory)

	// Invalid wins over warning when both apply.
	both := completeRecord("recBoth")
	delete(both.Fields, FieldRegion)
	delete(both.Fields, FieldGrapes)

	input := []airtable.Record{valid, warning, invalid, both}
	result := Validate(context.Background(), input, testZones(), testProducers())

	assert.Len(t, result.Valid, 1)
	assert.Len(t, result.Warnings, 1)
	assert.Len(t, result.Invalid, 2)
	assert.Equal(t, len(input), len(result.Valid)+len(result.Warnings)+len(result.Invalid))
}

func TestValidate_ProducerResolutionFailure(t *testing.T) {
	rec := completeRecord("rec1")
	rec.Fields[FieldProducer] = []interface{}{"recUNKNOWN"}

	result := Validate(context.Background(), []airtable.Record{rec}, testZones(), testProducers())

	require.Len(t, result.Invalid, 1)
	assert.Contains(t, result.Invalid[0].InvalidFields, FieldProducer)
}

func TestValidate_ZoneFallsBackToRawID(t *testing.T) {
	rec := completeRecord("rec1")
	rec.Fields[FieldZone] = []interface{}{"recNOTMAPPED"}

	result := Validate(context.Background(), []airtable.Record{rec}, testZones(), testProducers())

	require.Len(t, result.Valid, 1)
	assert.Equal(t, "recNOTMAPPED", result.Valid[0].Zone)
}

func TestValidate_CategoriesFirstSeenDeduplicated(t *testing.T) {
	rosso1 := completeRecord("rec1")
	bianco := completeRecord("rec2")
	bianco.Fields[FieldCategory] = "Bianco"
	rosso2 := completeRecord("rec3")

	result := Validate(context.Background(), []airtable.Record{rosso1, bianco, rosso2}, testZones(), testProducers())

	assert.Equal(t, []string{"Rosso", "Bianco"}, result.Categories)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
		ok   bool
	}{
		{"decimal_comma_with_currency", "12,50 €", 12.50, true},
		{"plain_decimal", "1234.5", 1234.5, true},
		{"integer", "80", 80, true},
		{"whitespace_and_symbols", " € 9,90 ", 9.90, true},
		{"rounds_to_two_decimals", "12.509", 12.51, true},
		{"non_numeric", "abc", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.0001)
			}
		})
	}
}
