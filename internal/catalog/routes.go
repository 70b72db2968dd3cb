package catalog

import (
	"net/http"
	"net/url"
	"strings"
)

// Route templates of the merchant API. The mix of owner-scoped and flat
// routes matches the deployed backend and must not be normalized.
const (
	RouteCategories                  = "/Categories"
	RouteCategoryTree                = "/Categories/tree"
	RouteCategory                    = "/Categories/{id}"
	RouteCategorySubCategories       = "/Categories/{categoryId}/subcategories"
	RouteCategorySubCategory         = "/Categories/{categoryId}/subcategories/{id}"
	RouteSubCategories               = "/SubCategories"
	RouteSubCategory                 = "/SubCategories/{id}"
	RouteSubCategorySubSubCategories = "/SubCategories/{subCategoryId}/subsubcategories"
	RouteSubSubCategories            = "/SubSubCategories"
	RouteSubSubCategory              = "/SubSubCategories/{id}"
)

// Route is one operation of the merchant API used by the services.
type Route struct {
	Operation string
	Method    string
	Path      string
}

// Routes lists every call the catalog services make.
var Routes = []Route{
	{"category.list", http.MethodGet, RouteCategories},
	{"category.tree", http.MethodGet, RouteCategoryTree},
	{"category.get", http.MethodGet, RouteCategory},
	{"category.create", http.MethodPost, RouteCategories},
	{"category.update", http.MethodPost, RouteCategory},
	{"category.delete", http.MethodDelete, RouteCategory},

	{"subcategory.list", http.MethodGet, RouteSubCategories},
	{"subcategory.get", http.MethodGet, RouteSubCategory},
	{"subcategory.children", http.MethodGet, RouteCategorySubCategories},
	{"subcategory.create", http.MethodPost, RouteCategorySubCategories},
	{"subcategory.update", http.MethodPut, RouteCategorySubCategory},
	{"subcategory.delete", http.MethodDelete, RouteSubCategory},

	{"subsubcategory.list", http.MethodGet, RouteSubSubCategories},
	{"subsubcategory.get", http.MethodGet, RouteSubSubCategory},
	{"subsubcategory.children", http.MethodGet, RouteSubCategorySubSubCategories},
	{"subsubcategory.create", http.MethodPost, RouteSubSubCategories},
	{"subsubcategory.update", http.MethodPut, RouteSubSubCategory},
	{"subsubcategory.delete", http.MethodDelete, RouteSubSubCategory},
}

// expandRoute substitutes the {placeholders} of template, in order, with
// path-escaped values.
func expandRoute(template string, values ...string) string {
	segments := strings.Split(template, "/")
	next := 0
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && next < len(values) {
			segments[i] = escapeSegment(values[next])
			next++
		}
	}
	return strings.Join(segments, "/")
}

// escapeSegment escapes v as a single path segment. "." and ".." are
// percent-encoded too so they never act as dot-segments.
func escapeSegment(v string) string {
	e := url.PathEscape(v)
	if e == "." || e == ".." {
		return strings.ReplaceAll(e, ".", "%2E")
	}
	return e
}
