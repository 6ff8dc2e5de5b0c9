// Package carta turns raw Airtable wine records into the sorted, grouped
// document model the list renderer consumes.
package carta

import (
	"fmt"
	"strconv"
	"strings"
)

// Airtable field names used by the pipeline.
const (
	FieldName               = "Vino + Annata"
	FieldProducer           = "Produttore"
	FieldZone               = "Zona"
	FieldPrice              = "Prezzo In Carta Testo"
	FieldCategory           = "Tipologia"
	FieldRegion             = "Regione"
	FieldGrapes             = "Lista Vitigni AI"
	FieldProductionLocation = "Luogo di Produzione"
	FieldAging              = "Affinamento AI"
	FieldABV                = "Alcolicità AI"
	FieldCountry            = "Nazione"
	FieldVintage            = "Annata"
	FieldFormat             = "Formato"
)

// Normalize reduces a loosely typed field value to a single comparable
// string. Arrays collapse to their first element, wrapped {"value": ...}
// objects (computed/AI fields) unwrap recursively, anything unresolvable
// becomes the empty string. This is the sorting reducer; Extract is the
// display reducer.
func Normalize(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []interface{}:
		if len(t) == 0 {
			return ""
		}
		return Normalize(t[0])
	case map[string]interface{}:
		inner, ok := t["value"]
		if !ok {
			return ""
		}
		return Normalize(inner)
	default:
		return scalarString(v)
	}
}

// Extract reduces a field value for validation and display. It unwraps like
// Normalize but joins array elements with ", " instead of dropping all but
// the first, so multi-value fields (grape lists) survive intact.
func Extract(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, elem := range t {
			if s := Extract(elem); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		inner, ok := t["value"]
		if !ok {
			return ""
		}
		return Extract(inner)
	default:
		return scalarString(v)
	}
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// LinkedID returns the foreign record id held by a linked field: the first
// element of an array value, a plain string value, or "" when neither.
func LinkedID(v interface{}) string {
	switch t := v.(type) {
	case []interface{}:
		if len(t) == 0 {
			return ""
		}
		if s, ok := t[0].(string); ok {
			return s
		}
		return ""
	case string:
		return t
	default:
		return ""
	}
}

// AttachmentURL returns the URL of the first file in an attachment field
// value, or "" when the field holds none.
func AttachmentURL(v interface{}) string {
	items, ok := v.([]interface{})
	if !ok || len(items) == 0 {
		return ""
	}
	first, ok := items[0].(map[string]interface{})
	if !ok {
		return ""
	}
	url, _ := first["url"].(string)
	return url
}
