// Package seed fills a merchant API with a random but reproducible demo
// category hierarchy, created through the catalog services.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/catalog"
)

// CategoryCreator creates categories.
type CategoryCreator interface {
	Create(ctx context.Context, req catalog.CreateCategoryRequest) (*catalog.Category, error)
}

// SubCategoryCreator creates subcategories.
type SubCategoryCreator interface {
	Create(ctx context.Context, req catalog.CreateSubCategoryRequest) (*catalog.SubCategory, error)
}

// SubSubCategoryCreator creates sub-subcategories.
type SubSubCategoryCreator interface {
	Create(ctx context.Context, req catalog.CreateSubSubCategoryRequest) (*catalog.SubSubCategory, error)
}

// Options sizes the generated hierarchy.
type Options struct {
	Categories       int    // top-level categories
	SubCategories    int    // per category
	SubSubCategories int    // per subcategory
	InactiveRatio    int    // percentage of entities created inactive
	Seed             uint64 // 0 picks a random seed
}

// DefaultOptions returns a small demo hierarchy.
func DefaultOptions() Options {
	return Options{Categories: 4, SubCategories: 3, SubSubCategories: 2, InactiveRatio: 10}
}

// Result counts what was created.
type Result struct {
	Categories       int
	SubCategories    int
	SubSubCategories int
}

// Seeder creates demo hierarchies.
type Seeder struct {
	categories       CategoryCreator
	subCategories    SubCategoryCreator
	subSubCategories SubSubCategoryCreator
	logger           *zap.Logger
}

// New creates a Seeder.
func New(categories CategoryCreator, subCategories SubCategoryCreator, subSubCategories SubSubCategoryCreator, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		categories:       categories,
		subCategories:    subCategories,
		subSubCategories: subSubCategories,
		logger:           logger.Named("seed"),
	}
}

// Run creates the hierarchy top-down and stops at the first failure. The
// partial result is returned together with the error.
func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	faker := gofakeit.New(opts.Seed)
	names := newNamer()

	for i := 0; i < opts.Categories; i++ {
		cat, err := s.categories.Create(ctx, catalog.CreateCategoryRequest{
			Name:        names.unique(faker.ProductCategory()),
			Description: faker.ProductDescription(),
			IsActive:    active(faker, opts.InactiveRatio),
			SortOrder:   i + 1,
		})
		if err != nil {
			return res, fmt.Errorf("creating category %d: %w", i+1, err)
		}
		res.Categories++

		for j := 0; j < opts.SubCategories; j++ {
			sub, err := s.subCategories.Create(ctx, catalog.CreateSubCategoryRequest{
				CategoryID:  cat.ID,
				Name:        names.unique(faker.ProductName()),
				Description: faker.ProductDescription(),
				IsActive:    active(faker, opts.InactiveRatio),
				SortOrder:   j + 1,
			})
			if err != nil {
				return res, fmt.Errorf("creating subcategory under %s: %w", cat.ID, err)
			}
			res.SubCategories++

			for k := 0; k < opts.SubSubCategories; k++ {
				_, err := s.subSubCategories.Create(ctx, catalog.CreateSubSubCategoryRequest{
					SubCategoryID: sub.ID,
					Name:          names.unique(titleWords(faker.Adjective(), faker.Noun())),
					IsActive:      active(faker, opts.InactiveRatio),
					SortOrder:     k + 1,
				})
				if err != nil {
					return res, fmt.Errorf("creating sub-subcategory under %s: %w", sub.ID, err)
				}
				res.SubSubCategories++
			}
		}

		s.logger.Debug("seeded category",
			zap.String("id", cat.ID),
			zap.String("name", cat.Name),
		)
	}

	s.logger.Info("seed complete",
		zap.Int("categories", res.Categories),
		zap.Int("subcategories", res.SubCategories),
		zap.Int("subsubcategories", res.SubSubCategories),
	)
	return res, nil
}

func active(faker *gofakeit.Faker, inactiveRatio int) bool {
	if inactiveRatio <= 0 {
		return true
	}
	return faker.Number(1, 100) > inactiveRatio
}

func titleWords(words ...string) string {
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// namer keeps generated names unique by slug, since slugs are unique per
// level on the backend.
type namer struct {
	seen map[string]int
}

func newNamer() *namer {
	return &namer{seen: make(map[string]int)}
}

func (n *namer) unique(name string) string {
	slug := catalog.GenerateSlug(name)
	n.seen[slug]++
	if count := n.seen[slug]; count > 1 {
		return fmt.Sprintf("%s %d", name, count)
	}
	return name
}
