package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/client"
	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/logger"
)

// Identity aliases per entity type. They take precedence over "id".
const (
	aliasCategory       = "categoryId"
	aliasSubCategory    = "subCategoryId"
	aliasSubSubCategory = "subSubCategoryId"
)

// fields is a decoded JSON object from the backend.
type fields map[string]any

func decodeFields(raw json.RawMessage) (fields, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var f fields
	if err := dec.Decode(&f); err != nil || f == nil {
		return nil, fmt.Errorf("%w: entity is not an object", client.ErrUnexpectedFormat)
	}
	return f, nil
}

// identity returns the alias value when present, else "id".
func (f fields) identity(alias string) string {
	if id := f.str(alias); id != "" {
		return id
	}
	return f.str("id")
}

// str returns a string or number field as a string; anything else is "".
func (f fields) str(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (f fields) optStr(key string) *string {
	s := f.str(key)
	if s == "" {
		return nil
	}
	return &s
}

func (f fields) boolOr(key string, def bool) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	case json.Number:
		if n, err := v.Float64(); err == nil {
			return n != 0
		}
	}
	return def
}

// number coerces numbers and numeric strings to int. Missing, NaN or
// non-numeric values are 0.
func (f fields) number(key string) int {
	var n float64
	switch v := f[key].(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		n = parsed
	case float64:
		n = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int(n)
}

func (f fields) timestamp(key string, now time.Time) string {
	if s := f.str(key); s != "" {
		return s
	}
	return now.UTC().Format(logger.ISOMillis)
}

// objects returns the object elements of the first array found under keys.
func (f fields) objects(keys ...string) []fields {
	for _, key := range keys {
		arr, ok := f[key].([]any)
		if !ok {
			continue
		}
		out := make([]fields, 0, len(arr))
		for _, el := range arr {
			if m, ok := el.(map[string]any); ok {
				out = append(out, fields(m))
			}
		}
		return out
	}
	return nil
}

func normalizeCategory(f fields, now time.Time) Category {
	c := Category{
		ID:              f.identity(aliasCategory),
		Name:            f.str("name"),
		Slug:            f.str("slug"),
		Description:     f.str("description"),
		IsActive:        f.boolOr("isActive", true),
		SortOrder:       f.number("sortOrder"),
		MerchantID:      f.str("merchantId"),
		ParentID:        f.optStr("parentId"),
		ImageURL:        f.str("imageUrl"),
		MetaTitle:       f.str("metaTitle"),
		MetaDescription: f.str("metaDescription"),
		ProductCount:    f.number("productCount"),
		SubCategories:   []SubCategory{},
		CreatedOn:       f.timestamp("createdOn", now),
		UpdatedOn:       f.timestamp("updatedOn", now),
		CreatedBy:       f.str("createdBy"),
		UpdatedBy:       f.str("updatedBy"),
	}
	for _, sub := range f.objects("subcategories", "subCategories") {
		s := normalizeSubCategory(sub, now)
		if s.CategoryID == "" {
			s.CategoryID = c.ID
		}
		c.SubCategories = append(c.SubCategories, s)
	}
	return c
}

func normalizeSubCategory(f fields, now time.Time) SubCategory {
	s := SubCategory{
		ID:               f.identity(aliasSubCategory),
		Name:             f.str("name"),
		Slug:             f.str("slug"),
		Description:      f.str("description"),
		IsActive:         f.boolOr("isActive", true),
		SortOrder:        f.number("sortOrder"),
		CategoryID:       f.str("categoryId"),
		MerchantID:       f.str("merchantId"),
		ImageURL:         f.str("imageUrl"),
		ProductCount:     f.number("productCount"),
		SubSubCategories: []SubSubCategory{},
		CreatedOn:        f.timestamp("createdOn", now),
		UpdatedOn:        f.timestamp("updatedOn", now),
		CreatedBy:        f.str("createdBy"),
		UpdatedBy:        f.str("updatedBy"),
	}
	for _, subSub := range f.objects("subSubCategories", "subsubcategories") {
		ss := normalizeSubSubCategory(subSub, now)
		if ss.SubCategoryID == "" {
			ss.SubCategoryID = s.ID
		}
		s.SubSubCategories = append(s.SubSubCategories, ss)
	}
	return s
}

func normalizeSubSubCategory(f fields, now time.Time) SubSubCategory {
	return SubSubCategory{
		ID:            f.identity(aliasSubSubCategory),
		Name:          f.str("name"),
		Slug:          f.str("slug"),
		Description:   f.str("description"),
		IsActive:      f.boolOr("isActive", true),
		SortOrder:     f.number("sortOrder"),
		SubCategoryID: f.str("subCategoryId"),
		MerchantID:    f.str("merchantId"),
		ImageURL:      f.str("imageUrl"),
		ProductCount:  f.number("productCount"),
		CreatedOn:     f.timestamp("createdOn", now),
		UpdatedOn:     f.timestamp("updatedOn", now),
		CreatedBy:     f.str("createdBy"),
		UpdatedBy:     f.str("updatedBy"),
	}
}

func normalizeTreeNode(f fields, now time.Time) CategoryTreeNode {
	n := CategoryTreeNode{
		ID:           f.identity(aliasCategory),
		Name:         f.str("name"),
		Slug:         f.str("slug"),
		IsActive:     f.boolOr("isActive", true),
		SortOrder:    f.number("sortOrder"),
		ParentID:     f.optStr("parentId"),
		ProductCount: f.number("productCount"),
		Children:     []CategoryTreeNode{},
	}
	for _, child := range f.objects("children") {
		n.Children = append(n.Children, normalizeTreeNode(child, now))
	}
	return n
}

// normalizeList normalizes every item of a list-like envelope.
func normalizeList[T any](env client.Envelope, now time.Time, normalize func(fields, time.Time) T) (ListResult[T], error) {
	payload, err := env.AsList()
	if err != nil {
		return ListResult[T]{}, err
	}

	items := make([]T, 0, len(payload.Items))
	for _, raw := range payload.Items {
		f, err := decodeFields(raw)
		if err != nil {
			return ListResult[T]{}, err
		}
		items = append(items, normalize(f, now))
	}

	return ListResult[T]{
		Items:      items,
		TotalCount: payload.TotalCount,
		Page:       payload.Page,
		PageSize:   payload.PageSize,
		TotalPages: payload.TotalPages,
	}, nil
}

// normalizeSingle normalizes a single-entity envelope.
func normalizeSingle[T any](env client.Envelope, now time.Time, normalize func(fields, time.Time) T) (T, error) {
	var zero T
	raw, err := env.AsSingle()
	if err != nil {
		return zero, err
	}
	f, err := decodeFields(raw)
	if err != nil {
		return zero, err
	}
	return normalize(f, now), nil
}
