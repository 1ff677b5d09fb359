package query

import (
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SortSpec carries the raw sort part of a listing request. Reverse arrives as
// a string for wire compatibility; only the literal "true" flips the order.
type SortSpec struct {
	Predicate string `json:"predicate" form:"predicate"`
	Reverse   string `json:"reverse" form:"reverse"`
}

// Descending normalizes the string-typed reverse flag to a real boolean.
func (s SortSpec) Descending() bool {
	return s.Reverse == "true"
}

// PageSpec carries the raw pagination part of a listing request. Start is a
// zero-based offset, Number the page size.
type PageSpec struct {
	Start  int `json:"start" form:"start"`
	Number int `json:"number" form:"number"`
}

// Skip returns the page-aligned offset: Start rounded down to the nearest
// multiple of Number. A start of 7 with page size 10 lands on offset 0.
func (p PageSpec) Skip() int64 {
	if p.Number <= 0 {
		return 0
	}
	return int64(p.Start / p.Number * p.Number)
}

func (p PageSpec) Limit() int64 {
	return int64(p.Number)
}

// Params is a full listing specification; every part is optional.
type Params struct {
	Search     map[string]string `json:"search" form:"search"`
	Sort       SortSpec          `json:"sort"`
	Pagination PageSpec          `json:"pagination"`
}

// FindOptions builds the driver options for the listing query: sort when a
// predicate is present, page-aligned skip/limit when a page size is set, and
// a projection excluding the given fields from every returned record.
func (p *Params) FindOptions(exclude ...string) *options.FindOptions {
	opts := options.Find()

	if len(exclude) > 0 {
		projection := bson.M{}
		for _, field := range exclude {
			projection[field] = 0
		}
		opts.SetProjection(projection)
	}

	if p.Sort.Predicate != "" {
		order := 1
		if p.Sort.Descending() {
			order = -1
		}
		opts.SetSort(bson.D{{Key: p.Sort.Predicate, Value: order}})
	}

	if p.Pagination.Number > 0 {
		opts.SetSkip(p.Pagination.Skip())
		opts.SetLimit(p.Pagination.Limit())
	}

	return opts
}

// NumberOfPages is ceil(count/number); a listing without a page size is a
// single page.
func NumberOfPages(count int64, number int) int {
	if number <= 0 {
		return 1
	}
	return int(math.Ceil(float64(count) / float64(number)))
}

// Envelope is the listing response shape consumed by the table widgets.
type Envelope struct {
	Data          interface{} `json:"data"`
	NumberOfPages int         `json:"numberOfPages"`
}
