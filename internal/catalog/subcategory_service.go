package catalog

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/logger"
	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/telemetry"
)

// SubCategoryService manages subcategories. Create and update use routes
// scoped to the owning category; get, list and delete use flat routes.
type SubCategoryService struct {
	service
}

// NewSubCategoryService creates a new SubCategoryService
func NewSubCategoryService(api APIClient, opts ...Option) *SubCategoryService {
	return &SubCategoryService{service: newService(api, subCategoryKind, opts...)}
}

// List returns a page of subcategories matching filter.
func (s *SubCategoryService) List(ctx context.Context, filter SubCategoryFilter) (result ListResult[SubCategory], err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "list")
	defer telemetry.End(span, &err)

	req := request(http.MethodGet, RouteSubCategories)
	req.QueryParams = filter.query()

	env, err := s.fetch(ctx, req)
	if err != nil {
		return ListResult[SubCategory]{}, err
	}
	return normalizeList(env, s.now(), normalizeSubCategory)
}

// Get returns one subcategory.
func (s *SubCategoryService) Get(ctx context.Context, id string) (sub *SubCategory, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "get",
		telemetry.WithAttribute(telemetry.SpanAttrSubCategoryID, id))
	defer telemetry.End(span, &err)

	if id == "" {
		return nil, ErrMissingID
	}

	env, err := s.fetch(ctx, request(http.MethodGet, RouteSubCategory, id))
	if err != nil {
		return nil, err
	}
	sc, err := normalizeSingle(env, s.now(), normalizeSubCategory)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// FetchSubCategories returns the subcategories of categoryID and reports
// failures. Most callers want GetSubCategories.
func (s *SubCategoryService) FetchSubCategories(ctx context.Context, categoryID string) (subs []SubCategory, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "children",
		telemetry.WithAttribute(telemetry.SpanAttrCategoryID, categoryID))
	defer telemetry.End(span, &err)

	if categoryID == "" {
		return nil, fmt.Errorf("%w: categoryId", ErrMissingOwner)
	}

	env, err := s.fetch(ctx, request(http.MethodGet, RouteCategorySubCategories, categoryID))
	if err != nil {
		return nil, err
	}
	result, err := normalizeList(env, s.now(), normalizeSubCategory)
	if err != nil {
		return nil, err
	}
	for i := range result.Items {
		if result.Items[i].CategoryID == "" {
			result.Items[i].CategoryID = categoryID
		}
	}
	return result.Items, nil
}

// GetSubCategories returns the subcategories of categoryID. Any failure
// yields an empty list and a warning; it never returns an error.
func (s *SubCategoryService) GetSubCategories(ctx context.Context, categoryID string) []SubCategory {
	subs, err := s.FetchSubCategories(ctx, categoryID)
	if err != nil {
		logger.For(ctx, s.logger).Warn("loading subcategories failed, using empty list",
			zap.String("category_id", categoryID),
			zap.Error(err),
		)
		return []SubCategory{}
	}
	return subs
}

// Create creates a subcategory under req.CategoryID.
func (s *SubCategoryService) Create(ctx context.Context, req CreateSubCategoryRequest) (sub *SubCategory, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "create",
		telemetry.WithAttribute(telemetry.SpanAttrCategoryID, req.CategoryID))
	defer telemetry.End(span, &err)

	if req.CategoryID == "" {
		return nil, fmt.Errorf("%w: categoryId", ErrMissingOwner)
	}
	req.Slug = slugOrDefault(req.Slug, req.Name)

	r := request(http.MethodPost, RouteCategorySubCategories, req.CategoryID)
	r.Body = req

	env, err := s.fetch(ctx, r)
	if err != nil {
		return nil, s.createError(err)
	}
	sc, err := normalizeSingle(env, s.now(), normalizeSubCategory)
	if err != nil {
		return nil, s.createError(err)
	}
	if sc.CategoryID == "" {
		sc.CategoryID = req.CategoryID
	}

	s.notify(ctx, ActionCreated, sc.ID, sc.Name)
	return &sc, nil
}

// Update updates subcategory id. req.CategoryID must name the current
// owning category; it selects the route.
func (s *SubCategoryService) Update(ctx context.Context, id string, req UpdateSubCategoryRequest) (sub *SubCategory, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "update",
		telemetry.WithAttribute(telemetry.SpanAttrSubCategoryID, id))
	defer telemetry.End(span, &err)

	if id == "" {
		return nil, ErrMissingID
	}
	if req.CategoryID == "" {
		return nil, fmt.Errorf("%w: categoryId", ErrMissingOwner)
	}
	req.Slug = updateSlug(req.Name, req.Slug)

	r := request(http.MethodPut, RouteCategorySubCategory, req.CategoryID, id)
	r.Body = req

	env, err := s.fetch(ctx, r)
	if err != nil {
		return nil, err
	}
	sc, err := normalizeSingle(env, s.now(), normalizeSubCategory)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, ActionUpdated, sc.ID, sc.Name)
	return &sc, nil
}

// Delete deletes subcategory id.
func (s *SubCategoryService) Delete(ctx context.Context, id string) (result DeleteResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "delete",
		telemetry.WithAttribute(telemetry.SpanAttrSubCategoryID, id))
	defer telemetry.End(span, &err)

	if id == "" {
		return DeleteResult{}, ErrMissingID
	}

	result, err = s.remove(ctx, request(http.MethodDelete, RouteSubCategory, id))
	if err != nil {
		return DeleteResult{}, err
	}

	s.notify(ctx, ActionDeleted, id, "")
	return result, nil
}
