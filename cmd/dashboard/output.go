package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/catalog"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func parseFormat(s string) (string, error) {
	switch strings.ToLower(s) {
	case "", formatTable:
		return formatTable, nil
	case formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q (table, json, yaml)", errUsage, s)
	}
}

// render writes v as JSON or YAML, or calls table for the table format.
func render(w io.Writer, format string, v any, table func(tw *tabwriter.Writer)) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func treeTable(rows []catalog.Row) func(*tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "NAME\tSLUG\tID\tACTIVE\tSORT\tPRODUCTS")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%d\t%d\n",
				strings.Repeat("  ", r.Level), r.Name, r.Slug, r.ID, yesNo(r.IsActive), r.SortOrder, r.ProductCount)
		}
	}
}

// entityRow is the table form of any hierarchy entity.
type entityRow struct {
	ID, Name, Slug, Owner string
	Active                bool
	Sort, Products        int
}

func entityTable(ownerHeader string, rows []entityRow) func(*tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		header := "ID\tNAME\tSLUG\tACTIVE\tSORT\tPRODUCTS"
		if ownerHeader != "" {
			header += "\t" + ownerHeader
		}
		fmt.Fprintln(tw, header)
		for _, r := range rows {
			line := fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%d", r.ID, r.Name, r.Slug, yesNo(r.Active), r.Sort, r.Products)
			if ownerHeader != "" {
				line += "\t" + r.Owner
			}
			fmt.Fprintln(tw, line)
		}
	}
}

func categoryRows(items ...catalog.Category) []entityRow {
	rows := make([]entityRow, len(items))
	for i, c := range items {
		rows[i] = entityRow{ID: c.ID, Name: c.Name, Slug: c.Slug, Active: c.IsActive, Sort: c.SortOrder, Products: c.ProductCount}
	}
	return rows
}

func subCategoryRows(items ...catalog.SubCategory) []entityRow {
	rows := make([]entityRow, len(items))
	for i, s := range items {
		rows[i] = entityRow{ID: s.ID, Name: s.Name, Slug: s.Slug, Owner: s.CategoryID, Active: s.IsActive, Sort: s.SortOrder, Products: s.ProductCount}
	}
	return rows
}

func subSubCategoryRows(items ...catalog.SubSubCategory) []entityRow {
	rows := make([]entityRow, len(items))
	for i, s := range items {
		rows[i] = entityRow{ID: s.ID, Name: s.Name, Slug: s.Slug, Owner: s.SubCategoryID, Active: s.IsActive, Sort: s.SortOrder, Products: s.ProductCount}
	}
	return rows
}

func treeNodeTable(nodes []catalog.CategoryTreeNode) func(*tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "NAME\tSLUG\tID\tACTIVE\tSORT\tPRODUCTS")
		var walk func(nodes []catalog.CategoryTreeNode, depth int)
		walk = func(nodes []catalog.CategoryTreeNode, depth int) {
			for _, n := range nodes {
				fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%d\t%d\n",
					strings.Repeat("  ", depth), n.Name, n.Slug, n.ID, yesNo(n.IsActive), n.SortOrder, n.ProductCount)
				walk(n.Children, depth+1)
			}
		}
		walk(nodes, 0)
	}
}
