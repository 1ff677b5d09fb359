// Package query turns free-form search/sort/pagination parameters into
// bounded, injection-safe MongoDB queries.
package query

import (
	"regexp"
	"sort"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"

	"taxiline/internal/apperrors"
)

// roleField selects a category, not free text. It is always matched exactly
// and never compiled into a pattern.
const roleField = "role"

// FieldSet is the validated mapping of searchable fields for one collection.
// Only listed field names may reach a storage predicate; fields in the exact
// set are matched literally, every other allowed field becomes a
// case-insensitive substring match.
type FieldSet struct {
	allowed map[string]struct{}
	exact   map[string]struct{}
}

func NewFieldSet(allowed, exact []string) *FieldSet {
	fs := &FieldSet{
		allowed: make(map[string]struct{}, len(allowed)+len(exact)+1),
		exact:   make(map[string]struct{}, len(exact)),
	}
	for _, f := range allowed {
		fs.allowed[f] = struct{}{}
	}
	for _, f := range exact {
		fs.allowed[f] = struct{}{}
		fs.exact[f] = struct{}{}
	}
	fs.allowed[roleField] = struct{}{}
	return fs
}

// BuildPredicate compiles a search specification into a filter document. An
// empty specification yields an empty filter (matches all). Unknown fields and
// patterns that fail to compile are reported per field as a client error, not
// a server fault.
func (fs *FieldSet) BuildPredicate(search map[string]string) (bson.M, error) {
	filter := bson.M{}
	invalid := make(map[string]string)

	for field, value := range search {
		if _, ok := fs.allowed[field]; !ok {
			invalid[field] = "unknown search field"
			continue
		}
		if field == roleField {
			filter[field] = value
			continue
		}
		if _, ok := fs.exact[field]; ok {
			filter[field] = coerceExact(value)
			continue
		}
		if _, err := regexp.Compile("(?i)" + value); err != nil {
			invalid[field] = "invalid search pattern"
			continue
		}
		filter[field] = bson.M{"$regex": value, "$options": "i"}
	}

	if len(invalid) > 0 {
		return nil, apperrors.NewValidation(invalid)
	}
	return filter, nil
}

// coerceExact normalizes a raw exact-match value: query parameters arrive as
// strings while the stored fields are typed, so boolean and numeric literals
// are converted before they reach the filter.
func coerceExact(value string) interface{} {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

// AllowedFields lists the searchable field names, sorted for stable output.
func (fs *FieldSet) AllowedFields() []string {
	fields := make([]string, 0, len(fs.allowed))
	for f := range fs.allowed {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
