package provider

import (
	"strings"

	"github.com/seenimoa/mortgagewatch/pkg/models"
)

// SplitList splits a comma-separated parameter value, dropping blanks.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList is the inverse of SplitList.
func JoinList(items []string) string {
	return strings.Join(items, ",")
}

// EncodeSeries encodes an ordered county→series mapping as
// "County=SERIES,County=SERIES". Order is preserved.
func EncodeSeries(series []models.CountySeries) string {
	parts := make([]string, 0, len(series))
	for _, s := range series {
		parts = append(parts, s.County+"="+s.SeriesID)
	}
	return strings.Join(parts, ",")
}

// DecodeSeries parses the EncodeSeries form. Entries without "=" use the
// series ID as the county label.
func DecodeSeries(s string) []models.CountySeries {
	var out []models.CountySeries
	for _, part := range SplitList(s) {
		county, id, ok := strings.Cut(part, "=")
		if !ok {
			county, id = part, part
		}
		out = append(out, models.CountySeries{
			County:   strings.TrimSpace(county),
			SeriesID: strings.TrimSpace(id),
		})
	}
	return out
}
