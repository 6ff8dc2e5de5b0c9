package airtable

import (
	"fmt"
	"strings"
)

// Formula helpers build filterByFormula expressions. Values are embedded as
// single-quoted strings with embedded quotes escaped.

func quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "\\'") + "'"
}

// EqualsField matches records whose field equals value exactly.
func EqualsField(field, value string) string {
	return fmt.Sprintf("{%s} = %s", field, quote(value))
}

// IsTrue matches records whose checkbox/boolean field is set.
func IsTrue(field string) string {
	return fmt.Sprintf("{%s} = TRUE()", field)
}

// LinkedRecordContains matches records whose linked field contains the given
// record id, using the ARRAYJOIN + SEARCH idiom since formulas cannot index
// into linked arrays directly.
func LinkedRecordContains(field, recordID string) string {
	return fmt.Sprintf("SEARCH(%s, ARRAYJOIN({%s})) > 0", quote(recordID), field)
}

// And combines expressions with AND(); a single expression passes through.
func And(exprs ...string) string {
	switch len(exprs) {
	case 0:
		return ""
	case 1:
		return exprs[0]
	}
	return "AND(" + strings.Join(exprs, ", ") + ")"
}
