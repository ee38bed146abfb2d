package character

import (
	"net/url"
	"strconv"
	"strings"
)

// Info is the pagination envelope returned with every list response.
type Info struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// Page is one page of list results.
type Page struct {
	Info    Info        `json:"info"`
	Results []Character `json:"results"`
}

// Cursor tracks the position of an incremental load.
// Total is 0 until the first successful fetch.
type Cursor struct {
	Current int
	Total   int
}

// HasNext reports whether another page can be requested.
func (c Cursor) HasNext() bool {
	return c.Current < c.Total
}

// Filters is the sparse set of list filters the API accepts.
// Empty fields are not sent.
type Filters struct {
	Name    string
	Status  Status
	Species string
	Type    string
	Gender  Gender
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.Count() == 0
}

// Count is the number of filters that would be sent.
func (f Filters) Count() int {
	return len(f.Values())
}

// Values serializes the present, trimmed fields as query parameters.
func (f Filters) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val = strings.TrimSpace(val); val != "" {
			v.Set(key, val)
		}
	}
	set("name", f.Name)
	set("status", string(f.Status))
	set("species", f.Species)
	set("type", f.Type)
	set("gender", string(f.Gender))
	return v
}

// Query returns the encoded query for the given page, including filters.
// A page below 1 is omitted.
func (f Filters) Query(page int) string {
	v := f.Values()
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	return v.Encode()
}
