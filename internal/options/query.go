package options

import (
	"fmt"
	"net/url"
	"strings"
)

// Query is the decoded resource query of a template request.
type Query struct {
	ID         string
	Scoped     bool
	Comments   bool
	Functional bool
}

// QueryError reports a resource query that could not be decoded.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("parsing resource query %q: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ParseQuery decodes a query such as "?id=1a2b&scoped=true&functional".
// A flag is set when its key is present, unless its value is "false" or "0".
// Plain qs decoding differs: it treats "scoped=false" as set and a bare
// "comments" as unset.
func ParseQuery(raw string) (Query, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return Query{}, &QueryError{Query: raw, Err: err}
	}
	return Query{
		ID:         values.Get("id"),
		Scoped:     flag(values, "scoped"),
		Comments:   flag(values, "comments"),
		Functional: flag(values, "functional"),
	}, nil
}

func flag(values url.Values, key string) bool {
	if !values.Has(key) {
		return false
	}
	switch values.Get(key) {
	case "false", "0":
		return false
	}
	return true
}
