package furnilytics

import (
	"context"
	"encoding/json"
	"net/url"
)

// Health calls GET /health and reports service availability.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	body, err := c.getJSON(ctx, "/health", nil)
	if err != nil {
		return nil, err
	}
	var health Health
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, shapeError("/health", err)
	}
	return &health, nil
}

// Datasets calls GET /datasets and returns the dataset catalog as a Table.
// The endpoint wraps rows in an envelope {..., "data": [rows...]}; a missing
// or null "data" field yields an empty Table.
func (c *Client) Datasets(ctx context.Context) (*Table, error) {
	body, err := c.getJSON(ctx, "/datasets", nil)
	if err != nil {
		return nil, err
	}
	return tableFromEnvelope("/datasets", body)
}

// Metadata calls GET /metadata and returns the metadata listing as a Table,
// using the same envelope handling as Datasets.
func (c *Client) Metadata(ctx context.Context) (*Table, error) {
	body, err := c.getJSON(ctx, "/metadata", nil)
	if err != nil {
		return nil, err
	}
	return tableFromEnvelope("/metadata", body)
}

// MetadataOne calls GET /metadata/{id} and returns the metadata object for a
// single dataset. Surrounding slashes in datasetID are trimmed and each path
// segment is percent-encoded.
func (c *Client) MetadataOne(ctx context.Context, datasetID string) (*DatasetMetadata, error) {
	path, err := datasetPath("/metadata", datasetID)
	if err != nil {
		return nil, err
	}
	body, err := c.getJSON(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	var meta DatasetMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, shapeError("/metadata/{id}", err)
	}
	return &meta, nil
}

// Data calls GET /data/{id} and returns observation rows as a Table. The
// endpoint answers with a bare JSON array; an enveloped {"data": [...]}
// answer is accepted as a fallback. query may be nil.
func (c *Client) Data(ctx context.Context, datasetID string, query *DataQuery) (*Table, error) {
	path, err := datasetPath("/data", datasetID)
	if err != nil {
		return nil, err
	}

	var params url.Values
	if query != nil {
		params = query.values()
	}

	body, err := c.getJSON(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return tableFromRows("/data/{id}", body)
}
