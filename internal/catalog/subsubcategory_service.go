package catalog

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/logger"
	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/telemetry"
)

// SubSubCategoryService manages sub-subcategories. Only the children
// listing is scoped to the owning subcategory; everything else uses the
// flat /SubSubCategories routes with the owner in the body.
type SubSubCategoryService struct {
	service
}

// NewSubSubCategoryService creates a new SubSubCategoryService
func NewSubSubCategoryService(api APIClient, opts ...Option) *SubSubCategoryService {
	return &SubSubCategoryService{service: newService(api, subSubCategoryKind, opts...)}
}

// List returns a page of sub-subcategories matching filter.
func (s *SubSubCategoryService) List(ctx context.Context, filter SubSubCategoryFilter) (result ListResult[SubSubCategory], err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "list")
	defer telemetry.End(span, &err)

	req := request(http.MethodGet, RouteSubSubCategories)
	req.QueryParams = filter.query()

	env, err := s.fetch(ctx, req)
	if err != nil {
		return ListResult[SubSubCategory]{}, err
	}
	return normalizeList(env, s.now(), normalizeSubSubCategory)
}

// Get returns one sub-subcategory.
func (s *SubSubCategoryService) Get(ctx context.Context, id string) (subSub *SubSubCategory, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "get",
		telemetry.WithAttribute(telemetry.SpanAttrSubSubCategoryID, id))
	defer telemetry.End(span, &err)

	if id == "" {
		return nil, ErrMissingID
	}

	env, err := s.fetch(ctx, request(http.MethodGet, RouteSubSubCategory, id))
	if err != nil {
		return nil, err
	}
	ss, err := normalizeSingle(env, s.now(), normalizeSubSubCategory)
	if err != nil {
		return nil, err
	}
	return &ss, nil
}

// FetchSubSubCategories returns the sub-subcategories of subCategoryID and
// reports failures. Most callers want GetSubSubCategories.
func (s *SubSubCategoryService) FetchSubSubCategories(ctx context.Context, subCategoryID string) (subSubs []SubSubCategory, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "children",
		telemetry.WithAttribute(telemetry.SpanAttrSubCategoryID, subCategoryID))
	defer telemetry.End(span, &err)

	if subCategoryID == "" {
		return nil, fmt.Errorf("%w: subCategoryId", ErrMissingOwner)
	}

	env, err := s.fetch(ctx, request(http.MethodGet, RouteSubCategorySubSubCategories, subCategoryID))
	if err != nil {
		return nil, err
	}
	result, err := normalizeList(env, s.now(), normalizeSubSubCategory)
	if err != nil {
		return nil, err
	}
	for i := range result.Items {
		if result.Items[i].SubCategoryID == "" {
			result.Items[i].SubCategoryID = subCategoryID
		}
	}
	return result.Items, nil
}

// GetSubSubCategories returns the sub-subcategories of subCategoryID. Any
// failure yields an empty list and a warning; it never returns an error.
func (s *SubSubCategoryService) GetSubSubCategories(ctx context.Context, subCategoryID string) []SubSubCategory {
	subSubs, err := s.FetchSubSubCategories(ctx, subCategoryID)
	if err != nil {
		logger.For(ctx, s.logger).Warn("loading sub-subcategories failed, using empty list",
			zap.String("sub_category_id", subCategoryID),
			zap.Error(err),
		)
		return []SubSubCategory{}
	}
	return subSubs
}

// Create creates a sub-subcategory. req.SubCategoryID is required.
func (s *SubSubCategoryService) Create(ctx context.Context, req CreateSubSubCategoryRequest) (subSub *SubSubCategory, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "create",
		telemetry.WithAttribute(telemetry.SpanAttrSubCategoryID, req.SubCategoryID))
	defer telemetry.End(span, &err)

	if req.SubCategoryID == "" {
		return nil, fmt.Errorf("%w: subCategoryId", ErrMissingOwner)
	}
	req.Slug = slugOrDefault(req.Slug, req.Name)

	r := request(http.MethodPost, RouteSubSubCategories)
	r.Body = req

	env, err := s.fetch(ctx, r)
	if err != nil {
		return nil, s.createError(err)
	}
	ss, err := normalizeSingle(env, s.now(), normalizeSubSubCategory)
	if err != nil {
		return nil, s.createError(err)
	}
	if ss.SubCategoryID == "" {
		ss.SubCategoryID = req.SubCategoryID
	}

	s.notify(ctx, ActionCreated, ss.ID, ss.Name)
	return &ss, nil
}

// Update updates sub-subcategory id. req.SubCategoryID is required.
func (s *SubSubCategoryService) Update(ctx context.Context, id string, req UpdateSubSubCategoryRequest) (subSub *SubSubCategory, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "update",
		telemetry.WithAttribute(telemetry.SpanAttrSubSubCategoryID, id))
	defer telemetry.End(span, &err)

	if id == "" {
		return nil, ErrMissingID
	}
	if req.SubCategoryID == "" {
		return nil, fmt.Errorf("%w: subCategoryId", ErrMissingOwner)
	}
	req.Slug = updateSlug(req.Name, req.Slug)

	r := request(http.MethodPut, RouteSubSubCategory, id)
	r.Body = req

	env, err := s.fetch(ctx, r)
	if err != nil {
		return nil, err
	}
	ss, err := normalizeSingle(env, s.now(), normalizeSubSubCategory)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, ActionUpdated, ss.ID, ss.Name)
	return &ss, nil
}

// Delete deletes sub-subcategory id.
func (s *SubSubCategoryService) Delete(ctx context.Context, id string) (result DeleteResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.kind.span, "delete",
		telemetry.WithAttribute(telemetry.SpanAttrSubSubCategoryID, id))
	defer telemetry.End(span, &err)

	if id == "" {
		return DeleteResult{}, ErrMissingID
	}

	result, err = s.remove(ctx, request(http.MethodDelete, RouteSubSubCategory, id))
	if err != nil {
		return DeleteResult{}, err
	}

	s.notify(ctx, ActionDeleted, id, "")
	return result, nil
}
