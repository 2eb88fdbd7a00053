package furnilytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"status":"ok","version":"1.4.2"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.True(t, health.OK())
	assert.Equal(t, "1.4.2", health.Extra["version"])
}

func TestHealth_Degraded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"degraded"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "degraded", health.Status)
	assert.False(t, health.OK())
	assert.Nil(t, health.Extra)
}

func TestHealth_ShapeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2,3]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Health(context.Background())
	require.Error(t, err)
	assert.True(t, IsAPI(err))
	assert.Contains(t, err.Error(), "Unexpected response shape from /health")
}

func TestDatasets_Envelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/datasets", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"source": "catalog",
			"count": 2,
			"data": [
				{"id": "furniture/sales", "title": "Monthly furniture sales", "access": "public"},
				{"id": "furniture/stock", "title": "Stock levels", "access": "paid"}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	table, err := client.Datasets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"id", "title", "access"}, table.Columns())

	id, ok := table.Value(0, "id")
	assert.True(t, ok)
	assert.Equal(t, "furniture/sales", id)
	assert.Equal(t, "paid", table.Cell(1, "access"))
}

func TestDatasets_EmptyData(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"EmptyArray", `{"data": []}`},
		{"MissingDataField", `{"source": "catalog"}`},
		{"NullData", `{"data": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)

			table, err := client.Datasets(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 0, table.Len())
			assert.Empty(t, table.Columns())
		})
	}
}

func TestDatasets_ShapeError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"BareString", `"not an envelope"`},
		{"DataNotArray", `{"data": 42}`},
		{"RowNotObject", `{"data": [17]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)

			_, err := client.Datasets(context.Background())
			require.Error(t, err)
			assert.True(t, IsAPI(err))
			assert.Contains(t, err.Error(), "Unexpected response shape from /datasets")
		})
	}
}

func TestMetadata_Envelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metadata", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": [{"id": "furniture/sales", "frequency": "monthly"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	table, err := client.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, []string{"id", "frequency"}, table.Columns())
}

func TestMetadataOne_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metadata/furniture/sales", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": "furniture/sales",
			"meta": {"frequency": "monthly", "unit": "EUR"},
			"schema": [{"name": "date", "type": "string"}],
			"updated_at": "2026-08-01"
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	meta, err := client.MetadataOne(context.Background(), "furniture/sales")
	require.NoError(t, err)
	assert.Equal(t, "furniture/sales", meta.ID)
	assert.Equal(t, "monthly", meta.Meta["frequency"])
	assert.NotNil(t, meta.Schema)
	assert.Equal(t, "2026-08-01", meta.Extra["updated_at"])
}

func TestMetadataOne_TrimsDatasetID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metadata/furniture/sales", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": "furniture/sales"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	meta, err := client.MetadataOne(context.Background(), "/furniture/sales/")
	require.NoError(t, err)
	assert.Equal(t, "furniture/sales", meta.ID)
}

func TestMetadataOne_EscapesDatasetID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metadata/furniture/q1%20sales", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"id": "furniture/q1 sales"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.MetadataOne(context.Background(), "furniture/q1 sales")
	require.NoError(t, err)
}

func TestMetadataOne_EmptyDatasetID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected no request for empty dataset id")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	for _, id := range []string{"", "/", "///"} {
		_, err := client.MetadataOne(context.Background(), id)
		require.Error(t, err, "id %q", id)
		assert.True(t, IsConfig(err), "id %q", id)
	}
}

func TestMetadataOne_ShapeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["not", "an", "object"]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.MetadataOne(context.Background(), "furniture/sales")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unexpected response shape from /metadata/{id}")
}

func TestData_BareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/furniture/sales", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`[
			{"date": "2024-01-31", "sales": 120.5, "region": "north"},
			{"date": "2024-02-29", "sales": 98.2, "region": "north"}
		]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	table, err := client.Data(context.Background(), "furniture/sales", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"date", "sales", "region"}, table.Columns())
	assert.Equal(t, "120.5", table.Cell(0, "sales"))
}

func TestData_EnvelopeFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"date": "2024-01-31", "sales": 120.5}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	table, err := client.Data(context.Background(), "furniture/sales", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, []string{"date", "sales"}, table.Columns())
}

func TestData_ShapeError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"ObjectWithoutData", `{"rows": [1, 2]}`},
		{"Scalar", `42`},
		{"Null", `null`},
		{"BareString", `"no rows here"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)

			_, err := client.Data(context.Background(), "furniture/sales", nil)
			require.Error(t, err)
			assert.True(t, IsAPI(err))
			assert.Contains(t, err.Error(), "Unexpected response shape from /data/{id}")
		})
	}
}

func TestData_QueryParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "2024-01-01", query.Get("frm"))
		assert.Equal(t, "2024-06-30", query.Get("to"))
		assert.Equal(t, "100", query.Get("limit"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	table, err := client.Data(context.Background(), "furniture/sales", &DataQuery{
		From:  "2024-01-01",
		To:    "2024-06-30",
		Limit: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestData_ZeroQueryOmitsParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Data(context.Background(), "furniture/sales", &DataQuery{})
	require.NoError(t, err)
}

func TestData_PartialQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "2024-01-01", query.Get("frm"))
		assert.False(t, query.Has("to"))
		assert.False(t, query.Has("limit"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Data(context.Background(), "furniture/sales", &DataQuery{From: "2024-01-01"})
	require.NoError(t, err)
}

func TestData_EmptyDatasetID(t *testing.T) {
	client, err := New(WithEnvironment(noEnv))
	require.NoError(t, err)

	_, err = client.Data(context.Background(), "", nil)
	require.Error(t, err)
	assert.True(t, IsConfig(err))
}
