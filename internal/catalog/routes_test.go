package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/client"
	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/config"
)

func TestExpandRoute(t *testing.T) {
	tests := []struct {
		name     string
		template string
		values   []string
		want     string
	}{
		{"plain id", RouteCategory, []string{"c1"}, "/Categories/c1"},
		{"two placeholders", RouteCategorySubCategory, []string{"c1", "s1"}, "/Categories/c1/subcategories/s1"},
		{"slash in id", RouteCategory, []string{"a/b"}, "/Categories/a%2Fb"},
		{"traversal in id", RouteSubCategory, []string{"x/../../Categories/5"}, "/SubCategories/x%2F..%2F..%2FCategories%2F5"},
		{"dot-dot id", RouteSubSubCategory, []string{".."}, "/SubSubCategories/%2E%2E"},
		{"dot id", RouteSubSubCategory, []string{"."}, "/SubSubCategories/%2E"},
		{"space and query chars", RouteCategory, []string{"a b?c#d"}, "/Categories/a%20b%3Fc%23d"},
		{"missing value keeps placeholder", RouteCategorySubCategory, []string{"c1"}, "/Categories/c1/subcategories/{id}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandRoute(tt.template, tt.values...))
		})
	}
}

func TestDelete_IDsWithSeparatorsStayOneSegment(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.RequestURI)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"deleted"}`))
	}))
	defer server.Close()

	c, err := client.New(config.APIConfig{BaseURL: server.URL + "/api", Timeout: 5 * time.Second}, config.AuthConfig{})
	require.NoError(t, err)

	_, err = NewSubCategoryService(c).Delete(context.Background(), "x/../../Categories/5")
	require.NoError(t, err)
	_, err = NewCategoryService(c).Delete(context.Background(), "a/b")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"DELETE /api/SubCategories/x%2F..%2F..%2FCategories%2F5",
		"DELETE /api/Categories/a%2Fb",
	}, seen)
}
