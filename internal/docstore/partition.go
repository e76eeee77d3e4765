package docstore

import (
	"fmt"
	"strings"
	"unicode"
)

// PartitionCollection derives the class-partition collection name for a
// student cohort, e.g. ("PG", "M.Sc CS", 1) -> "pg_msc_cs_year1".
func PartitionCollection(course, program string, year int) string {
	return fmt.Sprintf("%s_%s_year%d", normalize(course), normalize(program), year)
}

// normalize lowercases and collapses every non-alphanumeric run into a single
// underscore. Dots are dropped outright so "M.Sc" becomes "msc", not "m_sc".
func normalize(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, ".", ""))

	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
