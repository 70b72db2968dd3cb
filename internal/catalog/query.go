package catalog

import "strconv"

// ListFilter holds the query options shared by all list endpoints. Zero
// values are not sent.
type ListFilter struct {
	Search    string
	IsActive  *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string // asc or desc
}

// CategoryFilter filters GET /Categories.
type CategoryFilter struct {
	ListFilter
	ParentID string
}

// SubCategoryFilter filters GET /SubCategories.
type SubCategoryFilter struct {
	ListFilter
	CategoryID string
}

// SubSubCategoryFilter filters GET /SubSubCategories.
type SubSubCategoryFilter struct {
	ListFilter
	SubCategoryID string
}

func (f ListFilter) query() map[string]string {
	q := make(map[string]string)
	if f.Search != "" {
		q["search"] = f.Search
	}
	if f.IsActive != nil {
		q["isActive"] = strconv.FormatBool(*f.IsActive)
	}
	if f.Page > 0 {
		q["page"] = strconv.Itoa(f.Page)
	}
	if f.PageSize > 0 {
		q["pageSize"] = strconv.Itoa(f.PageSize)
	}
	if f.SortBy != "" {
		q["sortBy"] = f.SortBy
	}
	if f.SortOrder != "" {
		q["sortOrder"] = f.SortOrder
	}
	return q
}

func (f CategoryFilter) query() map[string]string {
	q := f.ListFilter.query()
	if f.ParentID != "" {
		q["parentId"] = f.ParentID
	}
	return q
}

func (f SubCategoryFilter) query() map[string]string {
	q := f.ListFilter.query()
	if f.CategoryID != "" {
		q["categoryId"] = f.CategoryID
	}
	return q
}

func (f SubSubCategoryFilter) query() map[string]string {
	q := f.ListFilter.query()
	if f.SubCategoryID != "" {
		q["subCategoryId"] = f.SubCategoryID
	}
	return q
}
