// Package testutil provides an in-memory merchant API for tests.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BasePath is the prefix the fake API serves under.
const BasePath = "/api"

// EnvelopeMode selects how the fake API shapes successful responses.
type EnvelopeMode int

const (
	// EnvelopeWrapped answers {"success":true,"data":...}; lists are paginated.
	EnvelopeWrapped EnvelopeMode = iota
	// EnvelopeBare answers entities and arrays directly.
	EnvelopeBare
	// EnvelopePaginated answers lists as unwrapped {"items":[...]} pages.
	EnvelopePaginated
)

// Record is a stored entity as the backend would serialize it.
type Record map[string]any

// RecordedRequest is a request received by the fake API.
type RecordedRequest struct {
	Method string
	Path   string // without BasePath
	Query  url.Values
	Header http.Header
	Body   []byte
}

type failure struct {
	status int
	body   string
}

// FakeAPI is an in-memory merchant catalog API served over httptest.
type FakeAPI struct {
	mu       sync.Mutex
	server   *httptest.Server
	mode     EnvelopeMode
	token    string
	failures map[string]failure
	requests []RecordedRequest

	categories       []Record
	subCategories    []Record
	subSubCategories []Record
}

// Option configures a FakeAPI.
type Option func(*FakeAPI)

// WithEnvelope sets the response envelope mode.
func WithEnvelope(mode EnvelopeMode) Option {
	return func(f *FakeAPI) { f.mode = mode }
}

// WithBearerToken requires "Authorization: Bearer token" on every request.
func WithBearerToken(token string) Option {
	return func(f *FakeAPI) { f.token = token }
}

// NewFakeAPI starts a fake API. It is closed when the test ends.
func NewFakeAPI(t testing.TB, opts ...Option) *FakeAPI {
	f := &FakeAPI{failures: make(map[string]failure)}
	for _, opt := range opts {
		opt(f)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group(BasePath, f.record, f.authenticate, f.inject)

	api.GET("/Categories", f.listCategories)
	api.GET("/Categories/tree", f.categoryTree)
	api.GET("/Categories/:id", f.getCategory)
	api.POST("/Categories", f.createCategory)
	api.POST("/Categories/:id", f.updateCategory)
	api.DELETE("/Categories/:id", f.deleteCategory)
	api.GET("/Categories/:id/subcategories", f.categorySubCategories)
	api.POST("/Categories/:id/subcategories", f.createSubCategory)
	api.PUT("/Categories/:id/subcategories/:subId", f.updateSubCategory)

	api.GET("/SubCategories", f.listSubCategories)
	api.GET("/SubCategories/:id", f.getSubCategory)
	api.DELETE("/SubCategories/:id", f.deleteSubCategory)
	api.GET("/SubCategories/:id/subsubcategories", f.subCategorySubSubCategories)

	api.GET("/SubSubCategories", f.listSubSubCategories)
	api.GET("/SubSubCategories/:id", f.getSubSubCategory)
	api.POST("/SubSubCategories", f.createSubSubCategory)
	api.PUT("/SubSubCategories/:id", f.updateSubSubCategory)
	api.DELETE("/SubSubCategories/:id", f.deleteSubSubCategory)

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the base URL to configure clients with.
func (f *FakeAPI) URL() string {
	return f.server.URL + BasePath
}

// Close stops the server.
func (f *FakeAPI) Close() {
	f.server.Close()
}

// FailWith makes every request matching method and path (without BasePath,
// e.g. "/SubCategories/s-1/subsubcategories") answer status with body.
func (f *FakeAPI) FailWith(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = failure{status: status, body: body}
}

// Requests returns the requests received so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// LastRequest returns the most recent request matching method and path prefix.
func (f *FakeAPI) LastRequest(method, pathPrefix string) (RecordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		r := f.requests[i]
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			return r, true
		}
	}
	return RecordedRequest{}, false
}

// AddCategory stores a category as given, adding an id when absent, and
// returns its id.
func (f *FakeAPI) AddCategory(rec Record) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := ensureID(rec, "categoryId")
	f.categories = append(f.categories, rec)
	return id
}

// AddSubCategory stores a subcategory under categoryID.
func (f *FakeAPI) AddSubCategory(categoryID string, rec Record) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := ensureID(rec, "subCategoryId")
	rec["categoryId"] = categoryID
	f.subCategories = append(f.subCategories, rec)
	return id
}

// AddSubSubCategory stores a sub-subcategory under subCategoryID.
func (f *FakeAPI) AddSubSubCategory(subCategoryID string, rec Record) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := ensureID(rec, "subSubCategoryId")
	rec["subCategoryId"] = subCategoryID
	f.subSubCategories = append(f.subSubCategories, rec)
	return id
}

// Counts returns the number of stored entities per level.
func (f *FakeAPI) Counts() (categories, subCategories, subSubCategories int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.categories), len(f.subCategories), len(f.subSubCategories)
}

func ensureID(rec Record, alias string) string {
	if id, ok := rec[alias].(string); ok && id != "" {
		return id
	}
	if id, ok := rec["id"].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	rec["id"] = id
	return id
}

func recordID(rec Record, alias string) string {
	if id, ok := rec[alias].(string); ok && id != "" {
		return id
	}
	id, _ := rec["id"].(string)
	return id
}

// middleware

func (f *FakeAPI) record(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: c.Request.Method,
		Path:   strings.TrimPrefix(c.Request.URL.Path, BasePath),
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header.Clone(),
		Body:   body,
	})
	f.mu.Unlock()
	c.Next()
}

func (f *FakeAPI) authenticate(c *gin.Context) {
	if f.token != "" && c.GetHeader("Authorization") != "Bearer "+f.token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}
	c.Next()
}

func (f *FakeAPI) inject(c *gin.Context) {
	key := c.Request.Method + " " + strings.TrimPrefix(c.Request.URL.Path, BasePath)
	f.mu.Lock()
	fail, ok := f.failures[key]
	f.mu.Unlock()
	if !ok {
		c.Next()
		return
	}
	c.Data(fail.status, "application/json", []byte(fail.body))
	c.Abort()
}

// response shaping

func (f *FakeAPI) respond(c *gin.Context, status int, data any) {
	if f.mode == EnvelopeWrapped {
		c.JSON(status, gin.H{"success": true, "data": data})
		return
	}
	c.JSON(status, data)
}

func (f *FakeAPI) respondList(c *gin.Context, items []Record) {
	items = sortRecords(items, c.Query("sortBy"), c.Query("sortOrder"))
	total := len(items)

	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = total
	}
	totalPages := 1
	if pageSize > 0 && total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	pageItems := append([]Record{}, items[start:end]...)

	switch f.mode {
	case EnvelopeBare:
		c.JSON(http.StatusOK, pageItems)
	default:
		f.respond(c, http.StatusOK, gin.H{
			"items":      pageItems,
			"totalCount": total,
			"page":       page,
			"pageSize":   pageSize,
			"totalPages": totalPages,
		})
	}
}

func (f *FakeAPI) respondDeleted(c *gin.Context, label string) {
	msg := label + " deleted successfully"
	if f.mode == EnvelopeWrapped {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func failJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "message": msg})
}

func sortRecords(items []Record, sortBy, order string) []Record {
	out := append([]Record{}, items...)
	if sortBy == "" {
		return out
	}
	desc := strings.EqualFold(order, "desc")
	sort.SliceStable(out, func(i, j int) bool {
		a, b := toFloat(out[i][sortBy]), toFloat(out[j][sortBy])
		if desc {
			return a > b
		}
		return a < b
	})
	return out
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}

func filterRecords(items []Record, c *gin.Context, ownerKey, ownerParam string) []Record {
	search := strings.ToLower(c.Query("search"))
	active := c.Query("isActive")
	owner := c.Query(ownerParam)

	out := []Record{}
	for _, rec := range items {
		if search != "" {
			name, _ := rec["name"].(string)
			if !strings.Contains(strings.ToLower(name), search) {
				continue
			}
		}
		if active != "" {
			isActive, ok := rec["isActive"].(bool)
			if !ok {
				isActive = true
			}
			if strconv.FormatBool(isActive) != active {
				continue
			}
		}
		if owner != "" && ownerKey != "" {
			if v, _ := rec[ownerKey].(string); v != owner {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

func findRecord(items []Record, alias, id string) (Record, int) {
	for i, rec := range items {
		if recordID(rec, alias) == id {
			return rec, i
		}
	}
	return nil, -1
}

func slugTaken(items []Record, slug, exceptID, alias string) bool {
	if slug == "" {
		return false
	}
	for _, rec := range items {
		if s, _ := rec["slug"].(string); s == slug && recordID(rec, alias) != exceptID {
			return true
		}
	}
	return false
}

func newRecord(body map[string]any, alias string) Record {
	now := time.Now().UTC().Format(time.RFC3339)
	id := uuid.NewString()
	rec := Record{
		"id":        id,
		alias:       id,
		"createdOn": now,
		"updatedOn": now,
		"createdBy": "merchant",
	}
	for k, v := range body {
		rec[k] = v
	}
	rec["id"] = id
	rec[alias] = id
	return rec
}

func merge(rec Record, body map[string]any) {
	for k, v := range body {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	rec["updatedOn"] = time.Now().UTC().Format(time.RFC3339)
	rec["updatedBy"] = "merchant"
}

func bindBody(c *gin.Context) (map[string]any, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		failJSON(c, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	return body, true
}
