package catalog

import "strings"

// StatusFilter selects entities by active flag.
type StatusFilter string

const (
	StatusAll      StatusFilter = "all"
	StatusActive   StatusFilter = "active"
	StatusInactive StatusFilter = "inactive"
)

// ParseStatusFilter parses all, active or inactive; anything else is all.
func ParseStatusFilter(s string) StatusFilter {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive
	case StatusInactive:
		return StatusInactive
	default:
		return StatusAll
	}
}

// TreeFilter is a local search over an already loaded tree.
type TreeFilter struct {
	Search string
	Status StatusFilter
}

func (f TreeFilter) statusMatches(active bool) bool {
	switch f.Status {
	case StatusActive:
		return active
	case StatusInactive:
		return !active
	default:
		return true
	}
}

func textMatches(needle string, values ...string) bool {
	if needle == "" {
		return true
	}
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// FilterTree returns the part of tree that matches f, without touching the
// input. Search is a case-insensitive substring match on name, slug and
// description at every level. A node is kept when it matches or when any
// descendant is kept; the descendants of a text match only need to pass
// the status filter.
func FilterTree(tree []Category, f TreeFilter) []Category {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := []Category{}

	for _, c := range tree {
		textHit := textMatches(needle, c.Name, c.Slug, c.Description)
		subs := filterSubCategories(c.SubCategories, f, needle, textHit)
		self := textHit && f.statusMatches(c.IsActive)
		if !self && len(subs) == 0 {
			continue
		}
		c.SubCategories = subs
		out = append(out, c)
	}
	return out
}

func filterSubCategories(subs []SubCategory, f TreeFilter, needle string, ancestorHit bool) []SubCategory {
	out := []SubCategory{}
	for _, s := range subs {
		textHit := ancestorHit || textMatches(needle, s.Name, s.Slug, s.Description)

		subSubs := []SubSubCategory{}
		for _, ss := range s.SubSubCategories {
			ssHit := textHit || textMatches(needle, ss.Name, ss.Slug, ss.Description)
			if ssHit && f.statusMatches(ss.IsActive) {
				subSubs = append(subSubs, ss)
			}
		}

		self := textHit && f.statusMatches(s.IsActive)
		if !self && len(subSubs) == 0 {
			continue
		}
		s.SubSubCategories = subSubs
		out = append(out, s)
	}
	return out
}

// Row is one line of the flattened hierarchy table.
type Row struct {
	Level        int // 0 category, 1 subcategory, 2 sub-subcategory
	Kind         string
	ID           string
	OwnerID      string
	Name         string
	Slug         string
	IsActive     bool
	SortOrder    int
	ProductCount int
}

// Flatten lists the tree depth-first, each child directly under its parent.
func Flatten(tree []Category) []Row {
	var rows []Row
	for _, c := range tree {
		rows = append(rows, Row{
			Level: 0, Kind: "category", ID: c.ID, Name: c.Name, Slug: c.Slug,
			IsActive: c.IsActive, SortOrder: c.SortOrder, ProductCount: c.ProductCount,
		})
		for _, s := range c.SubCategories {
			rows = append(rows, Row{
				Level: 1, Kind: "subcategory", ID: s.ID, OwnerID: c.ID, Name: s.Name, Slug: s.Slug,
				IsActive: s.IsActive, SortOrder: s.SortOrder, ProductCount: s.ProductCount,
			})
			for _, ss := range s.SubSubCategories {
				rows = append(rows, Row{
					Level: 2, Kind: "subsubcategory", ID: ss.ID, OwnerID: s.ID, Name: ss.Name, Slug: ss.Slug,
					IsActive: ss.IsActive, SortOrder: ss.SortOrder, ProductCount: ss.ProductCount,
				})
			}
		}
	}
	return rows
}
