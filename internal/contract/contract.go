// Package contract checks the routes the catalog services call against an
// OpenAPI description of the merchant API.
package contract

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/catalog"
)

//go:embed merchant-api.yaml
var merchantAPI []byte

// ErrMismatch is returned by Verify when routes are missing from the document.
var ErrMismatch = errors.New("contract: routes not described by the API document")

// Mismatch is a route the API document does not describe.
type Mismatch struct {
	Operation string
	Method    string
	Path      string
	Reason    string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s %s %s: %s", m.Operation, m.Method, m.Path, m.Reason)
}

// Default returns the bundled description of the merchant API.
func Default(ctx context.Context) (*openapi3.T, error) {
	return Load(ctx, merchantAPI)
}

// Load parses and validates an OpenAPI 3 document.
func Load(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("loading API document: %w", err)
	}
	return validated(ctx, doc)
}

// LoadFile parses and validates an OpenAPI 3 document from disk.
func LoadFile(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading API document %s: %w", path, err)
	}
	return validated(ctx, doc)
}

func validated(ctx context.Context, doc *openapi3.T) (*openapi3.T, error) {
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validating API document: %w", err)
	}
	return doc, nil
}

// Check returns the routes that doc does not describe. Path parameter names
// are not compared, only their positions.
func Check(doc *openapi3.T, routes []catalog.Route) []Mismatch {
	var out []Mismatch
	for _, r := range routes {
		var item *openapi3.PathItem
		if doc.Paths != nil {
			item = doc.Paths.Find(r.Path)
		}
		if item == nil {
			out = append(out, Mismatch{r.Operation, r.Method, r.Path, "path not found"})
			continue
		}
		if item.GetOperation(strings.ToUpper(r.Method)) == nil {
			out = append(out, Mismatch{r.Operation, r.Method, r.Path, "method not allowed"})
		}
	}
	return out
}

// Verify is Check reported as an error wrapping ErrMismatch.
func Verify(doc *openapi3.T, routes []catalog.Route) error {
	mismatches := Check(doc, routes)
	if len(mismatches) == 0 {
		return nil
	}
	lines := make([]string, len(mismatches))
	for i, m := range mismatches {
		lines[i] = m.String()
	}
	return fmt.Errorf("%w:\n  %s", ErrMismatch, strings.Join(lines, "\n  "))
}
