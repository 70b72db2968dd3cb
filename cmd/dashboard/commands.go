package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/catalog"
)

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

// setFlags returns the names of the flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func positional(fs *flag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 || fs.Arg(0) == "" {
		return "", fmt.Errorf("%w: %s requires exactly one <%s> argument", errUsage, fs.Name(), what)
	}
	return fs.Arg(0), nil
}

func parseOptionalBool(name, s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("%w: -%s must be true or false", errUsage, name)
	}
	return &b, nil
}

func stringIf(set map[string]bool, name, value string) *string {
	if !set[name] {
		return nil
	}
	return &value
}

func intIf(set map[string]bool, name string, value int) *int {
	if !set[name] {
		return nil
	}
	return &value
}

// listFlags are the flags shared by all list operations.
type listFlags struct {
	search, active, sortBy, sortOrder, output string
	page, pageSize                            int
}

func (l *listFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&l.search, "search", "", "Search text")
	fs.StringVar(&l.active, "active", "", "Only active (true) or inactive (false) entries")
	fs.IntVar(&l.page, "page", 0, "Page number")
	fs.IntVar(&l.pageSize, "page-size", 0, "Page size")
	fs.StringVar(&l.sortBy, "sort-by", "", "Sort field, e.g. sortOrder or name")
	fs.StringVar(&l.sortOrder, "sort-order", "", "asc or desc")
	fs.StringVar(&l.output, "output", formatTable, "Output format: table, json, yaml")
}

func (l *listFlags) filter() (catalog.ListFilter, error) {
	active, err := parseOptionalBool("active", l.active)
	if err != nil {
		return catalog.ListFilter{}, err
	}
	return catalog.ListFilter{
		Search:    l.search,
		IsActive:  active,
		Page:      l.page,
		PageSize:  l.pageSize,
		SortBy:    l.sortBy,
		SortOrder: l.sortOrder,
	}, nil
}

// operation runs one level operation. Operations parse and check their flags
// before connecting, so usage errors never depend on the API configuration.
type operation func(ctx context.Context, a *app, args []string) error

func dispatch(ctx context.Context, a *app, level string, args []string, ops map[string]operation) error {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(args) == 0 {
		return fmt.Errorf("%w: %s requires an operation (%s)", errUsage, level, strings.Join(names, ", "))
	}
	op, ok := ops[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown %s operation %q (%s)", errUsage, level, args[0], strings.Join(names, ", "))
	}

	return op(ctx, a, args[1:])
}

func runTree(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "tree")
	output := fs.String("output", formatTable, "Output format: table, json, yaml")
	search := fs.String("search", "", "Only show entries matching this text, with their ancestors")
	status := fs.String("status", string(catalog.StatusAll), "all, active or inactive")
	backend := fs.Bool("backend", false, "Print the backend's category tree instead of loading the hierarchy")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}

	s, err := a.connect()
	if err != nil {
		return err
	}

	if *backend {
		nodes, err := s.categories.Tree(ctx)
		if err != nil {
			return err
		}
		return render(a.stdout, format, nodes, treeNodeTable(nodes))
	}

	tree, err := s.loader(a.cfg.Loader, a.logger).Load(ctx)
	if err != nil {
		return err
	}
	tree = catalog.FilterTree(tree, catalog.TreeFilter{Search: *search, Status: catalog.ParseStatusFilter(*status)})
	return render(a.stdout, format, tree, treeTable(catalog.Flatten(tree)))
}

func runCategory(ctx context.Context, a *app, args []string) error {
	return dispatch(ctx, a, "category", args, map[string]operation{
		"list":   categoryList,
		"get":    categoryGet,
		"create": categoryCreate,
		"update": categoryUpdate,
		"delete": categoryDelete,
	})
}

func categoryList(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "category list")
	var lf listFlags
	lf.register(fs)
	parentID := fs.String("parent-id", "", "Only children of this category")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(lf.output)
	if err != nil {
		return err
	}
	filter, err := lf.filter()
	if err != nil {
		return err
	}

	s, err := a.connect()
	if err != nil {
		return err
	}
	result, err := s.categories.List(ctx, catalog.CategoryFilter{ListFilter: filter, ParentID: *parentID})
	if err != nil {
		return err
	}
	return render(a.stdout, format, result, entityTable("", categoryRows(result.Items...)))
}

func categoryGet(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "category get")
	output := fs.String("output", formatTable, "Output format: table, json, yaml")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}
	id, err := positional(fs, "id")
	if err != nil {
		return err
	}

	s, err := a.connect()
	if err != nil {
		return err
	}
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return err
	}
	return render(a.stdout, format, c, entityTable("", categoryRows(*c)))
}

func categoryCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "category create")
	name := fs.String("name", "", "Category name (required)")
	slug := fs.String("slug", "", "URL slug; derived from the name when empty")
	description := fs.String("description", "", "Description")
	inactive := fs.Bool("inactive", false, "Create the category inactive")
	sortOrder := fs.Int("sort-order", 0, "Sort order")
	parentID := fs.String("parent-id", "", "Parent category id")
	imageURL := fs.String("image-url", "", "Image URL")
	output := fs.String("output", formatTable, "Output format: table, json, yaml")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return fmt.Errorf("%w: -name is required", errUsage)
	}

	s, err := a.connect()
	if err != nil {
		return err
	}
	c, err := s.categories.Create(ctx, catalog.CreateCategoryRequest{
		Name:        *name,
		Slug:        *slug,
		Description: *description,
		IsActive:    !*inactive,
		SortOrder:   *sortOrder,
		ParentID:    parentID,
		ImageURL:    *imageURL,
	})
	if err != nil {
		return err
	}
	return render(a.stdout, format, c, entityTable("", categoryRows(*c)))
}

func categoryUpdate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "category update")
	name := fs.String("name", "", "New name")
	slug := fs.String("slug", "", "New slug; derived from -name when omitted")
	description := fs.String("description", "", "New description")
	active := fs.String("active", "", "true or false")
	sortOrder := fs.Int("sort-order", 0, "New sort order")
	parentID := fs.String("parent-id", "", "Parent category id; omitted or empty clears it")
	imageURL := fs.String("image-url", "", "New image URL")
	output := fs.String("output", formatTable, "Output format: table, json, yaml")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}
	id, err := positional(fs, "id")
	if err != nil {
		return err
	}
	isActive, err := parseOptionalBool("active", *active)
	if err != nil {
		return err
	}

	set := setFlags(fs)
	s, err := a.connect()
	if err != nil {
		return err
	}
	c, err := s.categories.Update(ctx, id, catalog.UpdateCategoryRequest{
		Name:        stringIf(set, "name", *name),
		Slug:        stringIf(set, "slug", *slug),
		Description: stringIf(set, "description", *description),
		IsActive:    isActive,
		SortOrder:   intIf(set, "sort-order", *sortOrder),
		ParentID:    stringIf(set, "parent-id", *parentID),
		ImageURL:    stringIf(set, "image-url", *imageURL),
	})
	if err != nil {
		return err
	}
	return render(a.stdout, format, c, entityTable("", categoryRows(*c)))
}

func categoryDelete(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "category delete")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := positional(fs, "id")
	if err != nil {
		return err
	}
	s, err := a.connect()
	if err != nil {
		return err
	}
	result, err := s.categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, result.Message)
	return nil
}

func runSubCategory(ctx context.Context, a *app, args []string) error {
	return dispatch(ctx, a, "subcategory", args, map[string]operation{
		"list":     subCategoryList,
		"children": subCategoryChildren,
		"get":      subCategoryGet,
		"create":   subCategoryCreate,
		"update":   subCategoryUpdate,
		"delete":   subCategoryDelete,
	})
}

func subCategoryList(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "subcategory list")
	var lf listFlags
	lf.register(fs)
	categoryID := fs.String("category-id", "", "Only subcategories of this category")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(lf.output)
	if err != nil {
		return err
	}
	filter, err := lf.filter()
	if err != nil {
		return err
	}

	s, err := a.connect()
	if err != nil {
		return err
	}
	result, err := s.subCategories.List(ctx, catalog.SubCategoryFilter{ListFilter: filter, CategoryID: *categoryID})
	if err != nil {
		return err
	}
	return render(a.stdout, format, result, entityTable("CATEGORY", subCategoryRows(result.Items...)))
}

func subCategoryChildren(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "subcategory children")
	output := fs.String("output", formatTable, "Output format: table, json, yaml")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}
	categoryID, err := positional(fs, "category-id")
	if err != nil {
		return err
	}

	s, err := a.connect()
	if err != nil {
		return err
	}
	subs, err := s.subCategories.FetchSubCategories(ctx, categoryID)
	if err != nil {
		return err
	}
	return render(a.stdout, format, subs, entityTable("CATEGORY", subCategoryRows(subs...)))
}

func subCategoryGet(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "subcategory get")
	output := fs.String("output", formatTable, "Output format: table, json, yaml")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}
	id, err := positional(fs, "id")
	if err != nil {
		return err
	}

	s, err := a.connect()
	if err != nil {
		return err
	}
	sub, err := s.subCategories.Get(ctx, id)
	if err != nil {
		return err
	}
	return render(a.stdout, format, sub, entityTable("CATEGORY", subCategoryRows(*sub)))
}

func subCategoryCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "subcategory create")
	categoryID := fs.String("category-id", "", "Owning category id (required)")
	name := fs.String("name", "", "Subcategory name (required)")
	slug := fs.String("slug", "", "URL slug; derived from the name when empty")
	description := fs.String("description", "", "Description")
	inactive := fs.Bool("inactive", false, "Create the subcategory inactive")
	sortOrder := fs.Int("sort-order", 0, "Sort order")
	output := fs.String("output", formatTable, "Output format: table, json, yaml")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return fmt.Errorf("%w: -name is required", errUsage)
	}

	s, err := a.connect()
	if err != nil {
		return err
	}
	sub, err := s.subCategories.Create(ctx, catalog.CreateSubCategoryRequest{
		CategoryID:  *categoryID,
		Name:        *name,
		Slug:        *slug,
		Description: *description,
		IsActive:    !*inactive,
		SortOrder:   *sortOrder,
	})
	if err != nil {
		return err
	}
	return render(a.stdout, format, sub, entityTable("CATEGORY", subCategoryRows(*sub)))
}

func subCategoryUpdate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "subcategory update")
	categoryID := fs.String("category-id", "", "Owning category id (required)")
	name := fs.String("name", "", "New name")
	slug := fs.String("slug", "", "New slug; derived from -name when omitted")
	description := fs.String("description", "", "New description")
	active := fs.String("active", "", "true or false")
	sortOrder := fs.Int("sort-order", 0, "New sort order")
	output := fs.String("output", formatTable, "Output format: table, json, yaml")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}
	id, err := positional(fs, "id")
	if err != nil {
		return err
	}
	isActive, err := parseOptionalBool("active", *active)
	if err != nil {
		return err
	}

	set := setFlags(fs)
	s, err := a.connect()
	if err != nil {
		return err
	}
	sub, err := s.subCategories.Update(ctx, id, catalog.UpdateSubCategoryRequest{
		CategoryID:  *categoryID,
		Name:        stringIf(set, "name", *name),
		Slug:        stringIf(set, "slug", *slug),
		Description: stringIf(set, "description", *description),
		IsActive:    isActive,
		SortOrder:   intIf(set, "sort-order", *sortOrder),
	})
	if err != nil {
		return err
	}
	return render(a.stdout, format, sub, entityTable("CATEGORY", subCategoryRows(*sub)))
}

func subCategoryDelete(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "subcategory delete")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := positional(fs, "id")
	if err != nil {
		return err
	}
	s, err := a.connect()
	if err != nil {
		return err
	}
	result, err := s.subCategories.Delete(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, result.Message)
	return nil
}

func runSubSubCategory(ctx context.Context, a *app, args []string) error {
	return dispatch(ctx, a, "subsubcategory", args, map[string]operation{
		"list":     subSubCategoryList,
		"children": subSubCategoryChildren,
		"get":      subSubCategoryGet,
		"create":   subSubCategoryCreate,
		"update":   subSubCategoryUpdate,
		"delete":   subSubCategoryDelete,
	})
}

func subSubCategoryList(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "subsubcategory list")
	var lf listFlags
	lf.register(fs)
	subCategoryID := fs.String("subcategory-id", "", "Only sub-subcategories of this subcategory")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(lf.output)
	if err != nil {
		return err
	}
	filter, err := lf.filter()
	if err != nil {
		return err
	}

	s, err := a.connect()
	if err != nil {
		return err
	}
	result, err := s.subSubCategories.List(ctx, catalog.SubSubCategoryFilter{ListFilter: filter, SubCategoryID: *subCategoryID})
	if err != nil {
		return err
	}
	return render(a.stdout, format, result, entityTable("SUBCATEGORY", subSubCategoryRows(result.Items...)))
}

func subSubCategoryChildren(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "subsubcategory children")
	output := fs.String("output", formatTable, "Output format: table, json, yaml")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}
	subCategoryID, err := positional(fs, "subcategory-id")
	if err != nil {
		return err
	}

	s, err := a.connect()
	if err != nil {
		return err
	}
	items, err := s.subSubCategories.FetchSubSubCategories(ctx, subCategoryID)
	if err != nil {
		return err
	}
	return render(a.stdout, format, items, entityTable("SUBCATEGORY", subSubCategoryRows(items...)))
}

func subSubCategoryGet(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "subsubcategory get")
	output := fs.String("output", formatTable, "Output format: table, json, yaml")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}
	id, err := positional(fs, "id")
	if err != nil {
		return err
	}

	s, err := a.connect()
	if err != nil {
		return err
	}
	item, err := s.subSubCategories.Get(ctx, id)
	if err != nil {
		return err
	}
	return render(a.stdout, format, item, entityTable("SUBCATEGORY", subSubCategoryRows(*item)))
}

func subSubCategoryCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "subsubcategory create")
	subCategoryID := fs.String("subcategory-id", "", "Owning subcategory id (required)")
	name := fs.String("name", "", "Sub-subcategory name (required)")
	slug := fs.String("slug", "", "URL slug; derived from the name when empty")
	description := fs.String("description", "", "Description")
	inactive := fs.Bool("inactive", false, "Create the sub-subcategory inactive")
	sortOrder := fs.Int("sort-order", 0, "Sort order")
	output := fs.String("output", formatTable, "Output format: table, json, yaml")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return fmt.Errorf("%w: -name is required", errUsage)
	}

	s, err := a.connect()
	if err != nil {
		return err
	}
	item, err := s.subSubCategories.Create(ctx, catalog.CreateSubSubCategoryRequest{
		SubCategoryID: *subCategoryID,
		Name:          *name,
		Slug:          *slug,
		Description:   *description,
		IsActive:      !*inactive,
		SortOrder:     *sortOrder,
	})
	if err != nil {
		return err
	}
	return render(a.stdout, format, item, entityTable("SUBCATEGORY", subSubCategoryRows(*item)))
}

func subSubCategoryUpdate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "subsubcategory update")
	subCategoryID := fs.String("subcategory-id", "", "Owning subcategory id (required)")
	name := fs.String("name", "", "New name")
	slug := fs.String("slug", "", "New slug; derived from -name when omitted")
	description := fs.String("description", "", "New description")
	active := fs.String("active", "", "true or false")
	sortOrder := fs.Int("sort-order", 0, "New sort order")
	output := fs.String("output", formatTable, "Output format: table, json, yaml")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}
	id, err := positional(fs, "id")
	if err != nil {
		return err
	}
	isActive, err := parseOptionalBool("active", *active)
	if err != nil {
		return err
	}

	set := setFlags(fs)
	s, err := a.connect()
	if err != nil {
		return err
	}
	item, err := s.subSubCategories.Update(ctx, id, catalog.UpdateSubSubCategoryRequest{
		SubCategoryID: *subCategoryID,
		Name:          stringIf(set, "name", *name),
		Slug:          stringIf(set, "slug", *slug),
		Description:   stringIf(set, "description", *description),
		IsActive:      isActive,
		SortOrder:     intIf(set, "sort-order", *sortOrder),
	})
	if err != nil {
		return err
	}
	return render(a.stdout, format, item, entityTable("SUBCATEGORY", subSubCategoryRows(*item)))
}

func subSubCategoryDelete(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "subsubcategory delete")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := positional(fs, "id")
	if err != nil {
		return err
	}
	s, err := a.connect()
	if err != nil {
		return err
	}
	result, err := s.subSubCategories.Delete(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, result.Message)
	return nil
}
