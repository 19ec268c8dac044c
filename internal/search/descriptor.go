// Package search turns the loosely-typed query parameters of the listing
// search endpoint into one canonical, strongly-typed descriptor. All
// defaulting and validation of search input happens here, at a single
// boundary, instead of scattered checks in the handler.
package search

import (
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// DefaultLimit is the page size used when the client sends none.
const DefaultLimit = 9

// sortColumns is the allowlist of sortable fields: API name -> column.
// Anything outside the allowlist falls back to creation time so an
// arbitrary field name can never reach the ORDER BY clause.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
	"name":      "name",
	"bedrooms":  "bedrooms",
	"bathrooms": "bathrooms",
}

// Descriptor is the canonical form of a listing search request.
type Descriptor struct {
	SearchTerm string
	Types      []string
	Furnished  *bool // nil: match both
	Parking    *bool // nil: match both
	SortColumn string
	Descending bool
	Limit      int
	Offset     int
}

// Normalize maps raw query parameters to a Descriptor. It is pure:
// identical input always produces an identical descriptor.
func Normalize(values url.Values) Descriptor {
	d := Descriptor{
		SearchTerm: values.Get("searchTerm"),
		Types:      []string{"sell", "rent"},
		SortColumn: sortColumns["createdAt"],
		Descending: true,
		Limit:      DefaultLimit,
		Offset:     0,
	}

	if n, err := strconv.Atoi(values.Get("limit")); err == nil && n > 0 {
		d.Limit = n
	}
	if n, err := strconv.Atoi(values.Get("startIndex")); err == nil && n > 0 {
		d.Offset = n
	}

	// "false" means "don't care", not an actual false filter; only an
	// explicit non-false value narrows the match to true. This asymmetry
	// mirrors how the search form submits its checkboxes.
	d.Furnished = triState(values.Get("furnished"))
	d.Parking = triState(values.Get("parking"))

	if t := values.Get("type"); t != "" && t != "all" {
		d.Types = []string{t}
	}

	if col, ok := sortColumns[values.Get("sort")]; ok {
		d.SortColumn = col
	}
	if strings.EqualFold(values.Get("order"), "asc") {
		d.Descending = false
	}

	return d
}

func triState(raw string) *bool {
	if raw == "" || raw == "false" {
		return nil
	}
	yes := true
	return &yes
}

// Apply composes the descriptor's filter, sort and pagination onto a GORM
// query. LOWER/LIKE keeps the substring match case-insensitive on both
// Postgres and SQLite.
func (d Descriptor) Apply(q *gorm.DB) *gorm.DB {
	q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(d.SearchTerm)+"%").
		Where("type IN ?", d.Types)
	if d.Furnished != nil {
		q = q.Where("furnished = ?", *d.Furnished)
	}
	if d.Parking != nil {
		q = q.Where("parking = ?", *d.Parking)
	}

	dir := " ASC"
	if d.Descending {
		dir = " DESC"
	}
	return q.Order(d.SortColumn + dir).Offset(d.Offset)
}
