package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/catalog"
	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/contract"
	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/seed"
)

func runSeed(ctx context.Context, a *app, args []string) error {
	defaults := seed.DefaultOptions()
	fs := newFlagSet(a, "seed")
	categories := fs.Int("categories", defaults.Categories, "Number of categories")
	subCategories := fs.Int("subcategories", defaults.SubCategories, "Subcategories per category")
	subSubCategories := fs.Int("subsubcategories", defaults.SubSubCategories, "Sub-subcategories per subcategory")
	inactiveRatio := fs.Int("inactive-ratio", defaults.InactiveRatio, "Percentage of entries created inactive")
	seedValue := fs.Uint64("seed", 0, "Random seed (0 picks one)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *categories < 0 || *subCategories < 0 || *subSubCategories < 0 {
		return fmt.Errorf("%w: counts must not be negative", errUsage)
	}
	if *inactiveRatio < 0 || *inactiveRatio > 100 {
		return fmt.Errorf("%w: -inactive-ratio must be between 0 and 100", errUsage)
	}

	s, err := a.connect()
	if err != nil {
		return err
	}

	res, err := seed.New(s.categories, s.subCategories, s.subSubCategories, a.logger).Run(ctx, seed.Options{
		Categories:       *categories,
		SubCategories:    *subCategories,
		SubSubCategories: *subSubCategories,
		InactiveRatio:    *inactiveRatio,
		Seed:             *seedValue,
	})
	fmt.Fprintf(a.stdout, "Created %d categories, %d subcategories, %d sub-subcategories\n",
		res.Categories, res.SubCategories, res.SubSubCategories)
	return err
}

func runContract(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "contract")
	file := fs.String("file", "", "OpenAPI document to check against (default: bundled document)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var (
		doc *openapi3.T
		err error
	)
	if *file != "" {
		doc, err = contract.LoadFile(ctx, *file)
	} else {
		doc, err = contract.Default(ctx)
	}
	if err != nil {
		return err
	}

	mismatches := contract.Check(doc, catalog.Routes)
	for _, m := range mismatches {
		fmt.Fprintln(a.stdout, m.String())
	}
	if err := contract.Verify(doc, catalog.Routes); err != nil {
		if errors.Is(err, contract.ErrMismatch) {
			return fmt.Errorf("%d of %d routes not described", len(mismatches), len(catalog.Routes))
		}
		return err
	}
	fmt.Fprintf(a.stdout, "OK: %d routes described\n", len(catalog.Routes))
	return nil
}
