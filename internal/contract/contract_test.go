package contract

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/catalog"
)

func TestDefault_DescribesEveryRoute(t *testing.T) {
	doc, err := Default(context.Background())
	require.NoError(t, err)

	assert.Empty(t, Check(doc, catalog.Routes))
	assert.NoError(t, Verify(doc, catalog.Routes))
}

const partialDoc = `
openapi: 3.0.3
info:
  title: partial
  version: "1"
paths:
  /Categories:
    get:
      responses:
        '200':
          description: ok
  /Categories/{categoryId}:
    parameters:
      - name: categoryId
        in: path
        required: true
        schema:
          type: string
    get:
      responses:
        '200':
          description: ok
`

func TestCheck_ReportsMissingRoutes(t *testing.T) {
	doc, err := Load(context.Background(), []byte(partialDoc))
	require.NoError(t, err)

	routes := []catalog.Route{
		{Operation: "category.list", Method: http.MethodGet, Path: catalog.RouteCategories},
		{Operation: "category.get", Method: http.MethodGet, Path: catalog.RouteCategory},
		{Operation: "category.update", Method: http.MethodPost, Path: catalog.RouteCategory},
		{Operation: "subcategory.list", Method: http.MethodGet, Path: catalog.RouteSubCategories},
	}

	mismatches := Check(doc, routes)
	require.Len(t, mismatches, 2)
	assert.Equal(t, "category.update", mismatches[0].Operation)
	assert.Equal(t, "method not allowed", mismatches[0].Reason)
	assert.Equal(t, "subcategory.list", mismatches[1].Operation)
	assert.Equal(t, "path not found", mismatches[1].Reason)

	err = Verify(doc, routes)
	assert.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, err.Error(), "category.update POST /Categories/{id}: method not allowed")
}

func TestLoad_RejectsInvalidDocument(t *testing.T) {
	_, err := Load(context.Background(), []byte(`openapi: 3.0.3
paths: {}
`))
	assert.Error(t, err)

	_, err = Load(context.Background(), []byte(`{not yaml`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(partialDoc), 0o600))

	doc, err := LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/Categories"))

	_, err = LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
