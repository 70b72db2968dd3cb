// Package catalog implements the merchant category hierarchy client: the
// per-level services, response normalization, the hierarchy loader and
// local tree filtering.
package catalog

// Category is a top-level catalog category.
type Category struct {
	ID              string        `json:"id" yaml:"id"`
	Name            string        `json:"name" yaml:"name"`
	Slug            string        `json:"slug" yaml:"slug"`
	Description     string        `json:"description" yaml:"description"`
	IsActive        bool          `json:"isActive" yaml:"isActive"`
	SortOrder       int           `json:"sortOrder" yaml:"sortOrder"`
	MerchantID      string        `json:"merchantId,omitempty" yaml:"merchantId,omitempty"`
	ParentID        *string       `json:"parentId" yaml:"parentId"` // reserved for nested categories
	ImageURL        string        `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	MetaTitle       string        `json:"metaTitle,omitempty" yaml:"metaTitle,omitempty"`
	MetaDescription string        `json:"metaDescription,omitempty" yaml:"metaDescription,omitempty"`
	ProductCount    int           `json:"productCount" yaml:"productCount"`
	SubCategories   []SubCategory `json:"subcategories" yaml:"subcategories"`
	CreatedOn       string        `json:"createdOn" yaml:"createdOn"`
	UpdatedOn       string        `json:"updatedOn" yaml:"updatedOn"`
	CreatedBy       string        `json:"createdBy" yaml:"createdBy"`
	UpdatedBy       string        `json:"updatedBy" yaml:"updatedBy"`
}

// SubCategory belongs to exactly one Category.
type SubCategory struct {
	ID               string           `json:"id" yaml:"id"`
	Name             string           `json:"name" yaml:"name"`
	Slug             string           `json:"slug" yaml:"slug"`
	Description      string           `json:"description" yaml:"description"`
	IsActive         bool             `json:"isActive" yaml:"isActive"`
	SortOrder        int              `json:"sortOrder" yaml:"sortOrder"`
	CategoryID       string           `json:"categoryId" yaml:"categoryId"`
	MerchantID       string           `json:"merchantId,omitempty" yaml:"merchantId,omitempty"`
	ImageURL         string           `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	ProductCount     int              `json:"productCount" yaml:"productCount"`
	SubSubCategories []SubSubCategory `json:"subSubCategories" yaml:"subSubCategories"`
	CreatedOn        string           `json:"createdOn" yaml:"createdOn"`
	UpdatedOn        string           `json:"updatedOn" yaml:"updatedOn"`
	CreatedBy        string           `json:"createdBy" yaml:"createdBy"`
	UpdatedBy        string           `json:"updatedBy" yaml:"updatedBy"`
}

// SubSubCategory belongs to exactly one SubCategory.
type SubSubCategory struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Slug          string `json:"slug" yaml:"slug"`
	Description   string `json:"description" yaml:"description"`
	IsActive      bool   `json:"isActive" yaml:"isActive"`
	SortOrder     int    `json:"sortOrder" yaml:"sortOrder"`
	SubCategoryID string `json:"subCategoryId" yaml:"subCategoryId"`
	MerchantID    string `json:"merchantId,omitempty" yaml:"merchantId,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	ProductCount  int    `json:"productCount" yaml:"productCount"`
	CreatedOn     string `json:"createdOn" yaml:"createdOn"`
	UpdatedOn     string `json:"updatedOn" yaml:"updatedOn"`
	CreatedBy     string `json:"createdBy" yaml:"createdBy"`
	UpdatedBy     string `json:"updatedBy" yaml:"updatedBy"`
}

// CategoryTreeNode is a node of GET /Categories/tree.
type CategoryTreeNode struct {
	ID           string             `json:"id" yaml:"id"`
	Name         string             `json:"name" yaml:"name"`
	Slug         string             `json:"slug" yaml:"slug"`
	IsActive     bool               `json:"isActive" yaml:"isActive"`
	SortOrder    int                `json:"sortOrder" yaml:"sortOrder"`
	ParentID     *string            `json:"parentId" yaml:"parentId"`
	ProductCount int                `json:"productCount" yaml:"productCount"`
	Children     []CategoryTreeNode `json:"children" yaml:"children"`
}

// ListResult is a page of normalized entities.
type ListResult[T any] struct {
	Items      []T `json:"items" yaml:"items"`
	TotalCount int `json:"totalCount" yaml:"totalCount"`
	Page       int `json:"page" yaml:"page"`
	PageSize   int `json:"pageSize" yaml:"pageSize"`
	TotalPages int `json:"totalPages" yaml:"totalPages"`
}

// DeleteResult is the outcome of a delete call.
type DeleteResult struct {
	Message string `json:"message" yaml:"message"`
}

// CreateCategoryRequest is the body of POST /Categories.
type CreateCategoryRequest struct {
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	Description     string  `json:"description"`
	IsActive        bool    `json:"isActive"`
	SortOrder       int     `json:"sortOrder"`
	ParentID        *string `json:"parentId"` // always sent; "" is sent as null
	ImageURL        string  `json:"imageUrl,omitempty"`
	MetaTitle       string  `json:"metaTitle,omitempty"`
	MetaDescription string  `json:"metaDescription,omitempty"`
}

// UpdateCategoryRequest is the body of POST /Categories/{id}. Nil fields
// are not sent.
type UpdateCategoryRequest struct {
	Name            *string `json:"name,omitempty"`
	Slug            *string `json:"slug,omitempty"`
	Description     *string `json:"description,omitempty"`
	IsActive        *bool   `json:"isActive,omitempty"`
	SortOrder       *int    `json:"sortOrder,omitempty"`
	ParentID        *string `json:"parentId"` // always sent; nil and "" are sent as null
	ImageURL        *string `json:"imageUrl,omitempty"`
	MetaTitle       *string `json:"metaTitle,omitempty"`
	MetaDescription *string `json:"metaDescription,omitempty"`
}

// CreateSubCategoryRequest is the body of POST /Categories/{categoryId}/subcategories.
type CreateSubCategoryRequest struct {
	CategoryID  string `json:"categoryId"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	SortOrder   int    `json:"sortOrder"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// UpdateSubCategoryRequest is the body of PUT /Categories/{categoryId}/subcategories/{id}.
// CategoryID is required and selects the route.
type UpdateSubCategoryRequest struct {
	CategoryID  string  `json:"categoryId"`
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	SortOrder   *int    `json:"sortOrder,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

// CreateSubSubCategoryRequest is the body of POST /SubSubCategories.
type CreateSubSubCategoryRequest struct {
	SubCategoryID string `json:"subCategoryId"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`
	IsActive      bool   `json:"isActive"`
	SortOrder     int    `json:"sortOrder"`
	ImageURL      string `json:"imageUrl,omitempty"`
}

// UpdateSubSubCategoryRequest is the body of PUT /SubSubCategories/{id}.
type UpdateSubSubCategoryRequest struct {
	SubCategoryID string  `json:"subCategoryId"`
	Name          *string `json:"name,omitempty"`
	Slug          *string `json:"slug,omitempty"`
	Description   *string `json:"description,omitempty"`
	IsActive      *bool   `json:"isActive,omitempty"`
	SortOrder     *int    `json:"sortOrder,omitempty"`
	ImageURL      *string `json:"imageUrl,omitempty"`
}
