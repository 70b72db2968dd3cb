package testutil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers hold f.mu for their whole run so stored records are never
// serialized while being modified.

func (f *FakeAPI) listCategories(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.respondList(c, filterRecords(f.categories, c, "parentId", "parentId"))
}

func (f *FakeAPI) categoryTree(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	nodes := make([]Record, 0, len(f.categories))
	for _, rec := range sortRecords(f.categories, "sortOrder", "asc") {
		node := Record{"children": []Record{}}
		for _, k := range []string{"id", "categoryId", "name", "slug", "isActive", "sortOrder", "parentId", "productCount"} {
			if v, ok := rec[k]; ok {
				node[k] = v
			}
		}
		nodes = append(nodes, node)
	}
	if f.mode == EnvelopeWrapped {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nodes})
		return
	}
	c.JSON(http.StatusOK, nodes)
}

func (f *FakeAPI) getCategory(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, _ := findRecord(f.categories, "categoryId", c.Param("id"))
	if rec == nil {
		failJSON(c, http.StatusNotFound, "Category not found")
		return
	}
	f.respond(c, http.StatusOK, rec)
}

func (f *FakeAPI) createCategory(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if name, _ := body["name"].(string); name == "" {
		failJSON(c, http.StatusBadRequest, "Name is required")
		return
	}
	slug, _ := body["slug"].(string)
	if slugTaken(f.categories, slug, "", "categoryId") {
		failJSON(c, http.StatusConflict, "A category with this slug already exists")
		return
	}
	rec := newRecord(body, "categoryId")
	rec["productCount"] = 0
	f.categories = append(f.categories, rec)
	f.respond(c, http.StatusCreated, rec)
}

func (f *FakeAPI) updateCategory(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	id := c.Param("id")
	rec, _ := findRecord(f.categories, "categoryId", id)
	if rec == nil {
		failJSON(c, http.StatusNotFound, "Category not found")
		return
	}
	if slug, _ := body["slug"].(string); slugTaken(f.categories, slug, id, "categoryId") {
		failJSON(c, http.StatusConflict, "A category with this slug already exists")
		return
	}
	merge(rec, body)
	f.respond(c, http.StatusOK, rec)
}

func (f *FakeAPI) deleteCategory(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, i := findRecord(f.categories, "categoryId", c.Param("id"))
	if i < 0 {
		failJSON(c, http.StatusNotFound, "Category not found")
		return
	}
	f.categories = append(f.categories[:i], f.categories[i+1:]...)
	f.respondDeleted(c, "Category")
}

func (f *FakeAPI) categorySubCategories(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := c.Param("id")
	if rec, _ := findRecord(f.categories, "categoryId", id); rec == nil {
		failJSON(c, http.StatusNotFound, "Category not found")
		return
	}
	subs := []Record{}
	for _, rec := range sortRecords(f.subCategories, "sortOrder", "asc") {
		if rec["categoryId"] == id {
			subs = append(subs, rec)
		}
	}
	if f.mode == EnvelopeWrapped {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": subs})
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (f *FakeAPI) createSubCategory(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	categoryID := c.Param("id")
	if rec, _ := findRecord(f.categories, "categoryId", categoryID); rec == nil {
		failJSON(c, http.StatusNotFound, "Category not found")
		return
	}
	if name, _ := body["name"].(string); name == "" {
		failJSON(c, http.StatusBadRequest, "Name is required")
		return
	}
	if slug, _ := body["slug"].(string); slugTaken(f.subCategories, slug, "", "subCategoryId") {
		failJSON(c, http.StatusConflict, "A subcategory with this slug already exists")
		return
	}
	rec := newRecord(body, "subCategoryId")
	rec["categoryId"] = categoryID
	rec["productCount"] = 0
	f.subCategories = append(f.subCategories, rec)
	f.respond(c, http.StatusCreated, rec)
}

func (f *FakeAPI) updateSubCategory(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	id := c.Param("subId")
	rec, _ := findRecord(f.subCategories, "subCategoryId", id)
	if rec == nil || rec["categoryId"] != c.Param("id") {
		failJSON(c, http.StatusNotFound, "Subcategory not found")
		return
	}
	if owner, _ := body["categoryId"].(string); owner == "" {
		failJSON(c, http.StatusBadRequest, "categoryId is required")
		return
	}
	if slug, _ := body["slug"].(string); slugTaken(f.subCategories, slug, id, "subCategoryId") {
		failJSON(c, http.StatusConflict, "A subcategory with this slug already exists")
		return
	}
	merge(rec, body)
	f.respond(c, http.StatusOK, rec)
}

func (f *FakeAPI) listSubCategories(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.respondList(c, filterRecords(f.subCategories, c, "categoryId", "categoryId"))
}

func (f *FakeAPI) getSubCategory(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, _ := findRecord(f.subCategories, "subCategoryId", c.Param("id"))
	if rec == nil {
		failJSON(c, http.StatusNotFound, "Subcategory not found")
		return
	}
	f.respond(c, http.StatusOK, rec)
}

func (f *FakeAPI) deleteSubCategory(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, i := findRecord(f.subCategories, "subCategoryId", c.Param("id"))
	if i < 0 {
		failJSON(c, http.StatusNotFound, "Subcategory not found")
		return
	}
	f.subCategories = append(f.subCategories[:i], f.subCategories[i+1:]...)
	f.respondDeleted(c, "Subcategory")
}

func (f *FakeAPI) subCategorySubSubCategories(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := c.Param("id")
	if rec, _ := findRecord(f.subCategories, "subCategoryId", id); rec == nil {
		failJSON(c, http.StatusNotFound, "Subcategory not found")
		return
	}
	subSubs := []Record{}
	for _, rec := range sortRecords(f.subSubCategories, "sortOrder", "asc") {
		if rec["subCategoryId"] == id {
			subSubs = append(subSubs, rec)
		}
	}
	if f.mode == EnvelopeWrapped {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": subSubs})
		return
	}
	c.JSON(http.StatusOK, subSubs)
}

func (f *FakeAPI) listSubSubCategories(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.respondList(c, filterRecords(f.subSubCategories, c, "subCategoryId", "subCategoryId"))
}

func (f *FakeAPI) getSubSubCategory(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, _ := findRecord(f.subSubCategories, "subSubCategoryId", c.Param("id"))
	if rec == nil {
		failJSON(c, http.StatusNotFound, "Sub-subcategory not found")
		return
	}
	f.respond(c, http.StatusOK, rec)
}

func (f *FakeAPI) createSubSubCategory(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	owner, _ := body["subCategoryId"].(string)
	if rec, _ := findRecord(f.subCategories, "subCategoryId", owner); owner == "" || rec == nil {
		failJSON(c, http.StatusBadRequest, "A valid subCategoryId is required")
		return
	}
	if name, _ := body["name"].(string); name == "" {
		failJSON(c, http.StatusBadRequest, "Name is required")
		return
	}
	if slug, _ := body["slug"].(string); slugTaken(f.subSubCategories, slug, "", "subSubCategoryId") {
		failJSON(c, http.StatusConflict, "A sub-subcategory with this slug already exists")
		return
	}
	rec := newRecord(body, "subSubCategoryId")
	rec["productCount"] = 0
	f.subSubCategories = append(f.subSubCategories, rec)
	f.respond(c, http.StatusCreated, rec)
}

func (f *FakeAPI) updateSubSubCategory(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	id := c.Param("id")
	rec, _ := findRecord(f.subSubCategories, "subSubCategoryId", id)
	if rec == nil {
		failJSON(c, http.StatusNotFound, "Sub-subcategory not found")
		return
	}
	if slug, _ := body["slug"].(string); slugTaken(f.subSubCategories, slug, id, "subSubCategoryId") {
		failJSON(c, http.StatusConflict, "A sub-subcategory with this slug already exists")
		return
	}
	merge(rec, body)
	f.respond(c, http.StatusOK, rec)
}

func (f *FakeAPI) deleteSubSubCategory(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, i := findRecord(f.subSubCategories, "subSubCategoryId", c.Param("id"))
	if i < 0 {
		failJSON(c, http.StatusNotFound, "Sub-subcategory not found")
		return
	}
	f.subSubCategories = append(f.subSubCategories[:i], f.subSubCategories[i+1:]...)
	f.respondDeleted(c, "Sub-subcategory")
}
