package directus

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query represents Directus global query parameters for list and read
// operations.
type Query struct {
	Fields []string
	// Filter is encoded as JSON, e.g. {"status": {"_eq": "published"}}.
	Filter map[string]interface{}
	Search string
	Sort   []string
	// Limit is a pointer because -1 (no limit) and 0 are both meaningful.
	Limit  *int
	Offset int
	Page   int
	Meta   []string
	// Deep is encoded as JSON and applies nested queries to relations.
	Deep  map[string]interface{}
	Extra url.Values
}

// NewQuery creates a new Query.
func NewQuery() *Query {
	return &Query{
		Filter: make(map[string]interface{}),
		Deep:   make(map[string]interface{}),
		Extra:  url.Values{},
	}
}

// WithFields appends fields to the field list.
func (q *Query) WithFields(fields ...string) *Query {
	q.Fields = append(q.Fields, fields...)

	return q
}

// WithFilter adds a filter rule on field. Rules for the same field merge.
func (q *Query) WithFilter(field, operator string, value interface{}) *Query {
	if q.Filter == nil {
		q.Filter = make(map[string]interface{})
	}

	rule, ok := q.Filter[field].(map[string]interface{})
	if !ok {
		rule = make(map[string]interface{})
	}

	rule[operator] = value
	q.Filter[field] = rule

	return q
}

// WithSearch sets the search term.
func (q *Query) WithSearch(search string) *Query {
	q.Search = search

	return q
}

// WithSort appends sort fields. Prefix a field with "-" for descending order.
func (q *Query) WithSort(fields ...string) *Query {
	q.Sort = append(q.Sort, fields...)

	return q
}

// WithLimit sets the limit.
func (q *Query) WithLimit(limit int) *Query {
	q.Limit = &limit

	return q
}

// WithOffset sets the offset.
func (q *Query) WithOffset(offset int) *Query {
	q.Offset = offset

	return q
}

// WithPage sets the page.
func (q *Query) WithPage(page int) *Query {
	q.Page = page

	return q
}

// WithMeta requests metadata such as "total_count" or "filter_count".
func (q *Query) WithMeta(meta ...string) *Query {
	q.Meta = append(q.Meta, meta...)

	return q
}

// WithDeep sets a nested query for relation.
func (q *Query) WithDeep(relation string, query map[string]interface{}) *Query {
	if q.Deep == nil {
		q.Deep = make(map[string]interface{})
	}

	q.Deep[relation] = query

	return q
}

// WithParam sets an arbitrary query parameter.
func (q *Query) WithParam(key, value string) *Query {
	if q.Extra == nil {
		q.Extra = url.Values{}
	}

	q.Extra.Set(key, value)

	return q
}

// ToValues converts the query to URL values.
func (q *Query) ToValues() (url.Values, error) {
	values := url.Values{}

	if q == nil {
		return values, nil
	}

	if len(q.Fields) > 0 {
		values.Set("fields", strings.Join(q.Fields, ","))
	}

	if len(q.Filter) > 0 {
		encoded, err := json.Marshal(q.Filter)
		if err != nil {
			return nil, fmt.Errorf("encoding filter: %w", err)
		}

		values.Set("filter", string(encoded))
	}

	if q.Search != "" {
		values.Set("search", q.Search)
	}

	if len(q.Sort) > 0 {
		values.Set("sort", strings.Join(q.Sort, ","))
	}

	if q.Limit != nil {
		values.Set("limit", strconv.Itoa(*q.Limit))
	}

	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if len(q.Meta) > 0 {
		values.Set("meta", strings.Join(q.Meta, ","))
	}

	if len(q.Deep) > 0 {
		encoded, err := json.Marshal(q.Deep)
		if err != nil {
			return nil, fmt.Errorf("encoding deep: %w", err)
		}

		values.Set("deep", string(encoded))
	}

	for key, vals := range q.Extra {
		for _, v := range vals {
			values.Add(key, v)
		}
	}

	return values, nil
}
