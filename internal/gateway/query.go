package gateway

import "encoding/json"

// Query is a single filter, ordering, or paging directive for a list
// operation. Queries are serialized to JSON and passed as repeated
// "queries[]" URL parameters, the document store's query syntax.
type Query struct {
	Method    string        `json:"method"`
	Attribute string        `json:"attribute,omitempty"`
	Values    []interface{} `json:"values,omitempty"`
}

// QueryEqual filters documents whose attribute equals value.
func QueryEqual(attribute string, value interface{}) Query {
	return Query{Method: "equal", Attribute: attribute, Values: []interface{}{value}}
}

// QueryOrderAsc sorts results ascending by attribute.
func QueryOrderAsc(attribute string) Query {
	return Query{Method: "orderAsc", Attribute: attribute}
}

// QueryLimit caps the number of returned documents.
func QueryLimit(n int) Query {
	return Query{Method: "limit", Values: []interface{}{n}}
}

// encode serializes the query for transmission.
func (q Query) encode() string {
	data, err := json.Marshal(q)
	if err != nil {
		// Query fields are plain strings and numbers; marshaling
		// cannot fail for values constructed by the helpers above.
		return "{}"
	}
	return string(data)
}
