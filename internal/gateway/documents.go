package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// UniqueID requests a server-assigned document identifier at creation.
const UniqueID = "unique()"

// Databases provides document CRUD against a single database of the
// remote store. It is the only component that performs network reads
// and writes of task and completion records.
type Databases struct {
	client     *Client
	databaseID string
}

// NewDatabases returns a document API bound to the given database.
func NewDatabases(client *Client, databaseID string) *Databases {
	return &Databases{client: client, databaseID: databaseID}
}

// documentList is the envelope returned by list operations.
type documentList struct {
	Total     int             `json:"total"`
	Documents json.RawMessage `json:"documents"`
}

// createDocumentRequest is the body of a document create call.
type createDocumentRequest struct {
	DocumentID string      `json:"documentId"`
	Data       interface{} `json:"data"`
}

// collectionPath builds the documents path for a collection.
func (d *Databases) collectionPath(collection string) string {
	return fmt.Sprintf(
		"/databases/%s/collections/%s/documents",
		url.PathEscape(d.databaseID), url.PathEscape(collection),
	)
}

// CreateDocument creates a document with the given ID and fields. Pass
// UniqueID to let the server assign the identifier. The operation is a
// strict create: an existing document with the same ID is rejected
// with a conflict, which IsConflict recognizes. The created document
// is unmarshaled into result when result is non-nil.
func (d *Databases) CreateDocument(
	ctx context.Context,
	collection string,
	documentID string,
	data interface{},
	result interface{},
) error {
	body := createDocumentRequest{DocumentID: documentID, Data: data}
	return d.client.do(
		ctx, http.MethodPost, d.collectionPath(collection), body, result,
	)
}

// GetDocument fetches a single document by ID into result.
func (d *Databases) GetDocument(
	ctx context.Context,
	collection string,
	documentID string,
	result interface{},
) error {
	path := d.collectionPath(collection) + "/" + url.PathEscape(documentID)
	return d.client.do(ctx, http.MethodGet, path, nil, result)
}

// ListDocuments fetches the documents of a collection matching the
// given queries and unmarshals the document array into out, which must
// be a pointer to a slice.
func (d *Databases) ListDocuments(
	ctx context.Context,
	collection string,
	queries []Query,
	out interface{},
) error {
	path := d.collectionPath(collection)
	if len(queries) > 0 {
		params := url.Values{}
		for _, q := range queries {
			params.Add("queries[]", q.encode())
		}
		path += "?" + params.Encode()
	}

	var list documentList
	if err := d.client.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return err
	}

	if len(list.Documents) == 0 {
		return nil
	}
	if err := json.Unmarshal(list.Documents, out); err != nil {
		return fmt.Errorf("unmarshaling %s documents: %w", collection, err)
	}
	return nil
}

// DeleteDocument removes a document by ID.
func (d *Databases) DeleteDocument(
	ctx context.Context,
	collection string,
	documentID string,
) error {
	path := d.collectionPath(collection) + "/" + url.PathEscape(documentID)
	return d.client.do(ctx, http.MethodDelete, path, nil, nil)
}
