package catalog

import (
	"context"
	"net/http"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/telemetry"
)

// CategoryService manages top-level categories.
type CategoryService struct {
	service
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(api APIClient, opts ...Option) *CategoryService {
	return &CategoryService{service: newService(api, categoryKind, opts...)}
}

// List returns a page of categories matching filter.
func (s *CategoryService) List(ctx context.Context, filter CategoryFilter) (result ListResult[Category], err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "list")
	defer telemetry.End(span, &err)

	req := request(http.MethodGet, RouteCategories)
	req.QueryParams = filter.query()

	env, err := s.fetch(ctx, req)
	if err != nil {
		return ListResult[Category]{}, err
	}
	result, err = normalizeList(env, s.now(), normalizeCategory)
	if err != nil {
		return ListResult[Category]{}, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrItemCount, len(result.Items))
	return result, nil
}

// Tree returns the backend's category tree.
func (s *CategoryService) Tree(ctx context.Context) (nodes []CategoryTreeNode, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "tree")
	defer telemetry.End(span, &err)

	env, err := s.fetch(ctx, request(http.MethodGet, RouteCategoryTree))
	if err != nil {
		return nil, err
	}
	result, err := normalizeList(env, s.now(), normalizeTreeNode)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Get returns one category.
func (s *CategoryService) Get(ctx context.Context, id string) (category *Category, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "get",
		telemetry.WithAttribute(telemetry.SpanAttrCategoryID, id))
	defer telemetry.End(span, &err)

	if id == "" {
		return nil, ErrMissingID
	}

	env, err := s.fetch(ctx, request(http.MethodGet, RouteCategory, id))
	if err != nil {
		return nil, err
	}
	c, err := normalizeSingle(env, s.now(), normalizeCategory)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create creates a category. An empty slug is derived from the name and an
// empty parent id is sent as null.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (category *Category, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "create")
	defer telemetry.End(span, &err)

	req.Slug = slugOrDefault(req.Slug, req.Name)
	req.ParentID = nullableID(req.ParentID)

	r := request(http.MethodPost, RouteCategories)
	r.Body = req

	env, err := s.fetch(ctx, r)
	if err != nil {
		return nil, s.createError(err)
	}
	c, err := normalizeSingle(env, s.now(), normalizeCategory)
	if err != nil {
		return nil, s.createError(err)
	}

	s.notify(ctx, ActionCreated, c.ID, c.Name)
	return &c, nil
}

// Update sends the set fields of req for category id. The parent id is
// always sent, as null when empty.
func (s *CategoryService) Update(ctx context.Context, id string, req UpdateCategoryRequest) (category *Category, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "update",
		telemetry.WithAttribute(telemetry.SpanAttrCategoryID, id))
	defer telemetry.End(span, &err)

	if id == "" {
		return nil, ErrMissingID
	}

	req.Slug = updateSlug(req.Name, req.Slug)
	req.ParentID = nullableID(req.ParentID)

	r := request(http.MethodPost, RouteCategory, id)
	r.Body = req

	env, err := s.fetch(ctx, r)
	if err != nil {
		return nil, err
	}
	c, err := normalizeSingle(env, s.now(), normalizeCategory)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, ActionUpdated, c.ID, c.Name)
	return &c, nil
}

// Delete deletes category id. Previously loaded data is not touched; callers
// reload to observe the removal.
func (s *CategoryService) Delete(ctx context.Context, id string) (result DeleteResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "delete",
		telemetry.WithAttribute(telemetry.SpanAttrCategoryID, id))
	defer telemetry.End(span, &err)

	if id == "" {
		return DeleteResult{}, ErrMissingID
	}

	result, err = s.remove(ctx, request(http.MethodDelete, RouteCategory, id))
	if err != nil {
		return DeleteResult{}, err
	}

	s.notify(ctx, ActionDeleted, id, "")
	return result, nil
}
