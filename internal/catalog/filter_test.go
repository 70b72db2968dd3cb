package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() []Category {
	return []Category{
		{
			ID: "c1", Name: "Electronics", Slug: "electronics", IsActive: true,
			SubCategories: []SubCategory{
				{
					ID: "s1", CategoryID: "c1", Name: "Phones", Slug: "phones", IsActive: true,
					SubSubCategories: []SubSubCategory{
						{ID: "ss1", SubCategoryID: "s1", Name: "Smartphones", Slug: "smartphones", IsActive: true},
						{ID: "ss2", SubCategoryID: "s1", Name: "Feature Phones", Slug: "feature-phones", IsActive: false},
					},
				},
				{ID: "s2", CategoryID: "c1", Name: "Laptops", Slug: "laptops", IsActive: false, SubSubCategories: []SubSubCategory{}},
			},
		},
		{
			ID: "c2", Name: "Fashion", Slug: "fashion", IsActive: false,
			SubCategories: []SubCategory{
				{
					ID: "s3", CategoryID: "c2", Name: "Shoes", Slug: "shoes", IsActive: true,
					SubSubCategories: []SubSubCategory{
						{ID: "ss3", SubCategoryID: "s3", Name: "Sneakers", Slug: "sneakers", Description: "Running and casual", IsActive: true},
					},
				},
			},
		},
	}
}

func ids(tree []Category) []string {
	var out []string
	for _, r := range Flatten(tree) {
		out = append(out, r.ID)
	}
	return out
}

func TestFilterTree(t *testing.T) {
	tests := []struct {
		name   string
		filter TreeFilter
		want   []string
	}{
		{"no filter keeps everything", TreeFilter{}, []string{"c1", "s1", "ss1", "ss2", "s2", "c2", "s3", "ss3"}},
		{"category match keeps its subtree", TreeFilter{Search: "electro"}, []string{"c1", "s1", "ss1", "ss2", "s2"}},
		{"deep match keeps ancestors", TreeFilter{Search: "SMART"}, []string{"c1", "s1", "ss1"}},
		{"description match", TreeFilter{Search: "running"}, []string{"c2", "s3", "ss3"}},
		{"slug match", TreeFilter{Search: "feature-"}, []string{"c1", "s1", "ss2"}},
		{"no match", TreeFilter{Search: "garden"}, nil},
		{"active only", TreeFilter{Status: StatusActive}, []string{"c1", "s1", "ss1", "c2", "s3", "ss3"}},
		{"inactive only", TreeFilter{Status: StatusInactive}, []string{"c1", "s1", "ss2", "s2", "c2"}},
		{"search and status", TreeFilter{Search: "phones", Status: StatusInactive}, []string{"c1", "s1", "ss2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterTree(sampleTree(), tt.filter)))
		})
	}
}

func TestFilterTree_DoesNotModifyInput(t *testing.T) {
	tree := sampleTree()
	_ = FilterTree(tree, TreeFilter{Search: "smart"})
	assert.Equal(t, sampleTree(), tree)
}

func TestFilterTree_EmptyResultIsNotNil(t *testing.T) {
	out := FilterTree(sampleTree(), TreeFilter{Search: "nothing"})
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestParseStatusFilter(t *testing.T) {
	assert.Equal(t, StatusActive, ParseStatusFilter("Active"))
	assert.Equal(t, StatusInactive, ParseStatusFilter(" inactive "))
	assert.Equal(t, StatusAll, ParseStatusFilter("all"))
	assert.Equal(t, StatusAll, ParseStatusFilter("whatever"))
}

func TestFlatten(t *testing.T) {
	rows := Flatten(sampleTree())
	require.Len(t, rows, 8)

	assert.Equal(t, Row{Level: 0, Kind: "category", ID: "c1", Name: "Electronics", Slug: "electronics", IsActive: true}, rows[0])
	assert.Equal(t, 1, rows[1].Level)
	assert.Equal(t, "c1", rows[1].OwnerID)
	assert.Equal(t, 2, rows[2].Level)
	assert.Equal(t, "s1", rows[2].OwnerID)
	assert.Equal(t, "subsubcategory", rows[2].Kind)
}
