package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/logger"
	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/telemetry"
)

// ErrStaleLoad is returned by Hierarchy.Refresh when a newer refresh
// started before this one finished. The stale result is discarded.
var ErrStaleLoad = errors.New("catalog: hierarchy load superseded by a newer load")

// Load results reported to a LoadObserver.
const (
	LoadResultOK    = "ok"
	LoadResultError = "error"
	LoadResultStale = "stale"
)

// Hierarchy levels used in degraded-branch reports.
const (
	LevelSubCategory    = "subcategory"
	LevelSubSubCategory = "subsubcategory"
)

// maxCategoryPages bounds page following against a backend that never
// reports its last page.
const maxCategoryPages = 1000

// CategoryLister lists categories.
type CategoryLister interface {
	List(ctx context.Context, filter CategoryFilter) (ListResult[Category], error)
}

// SubCategorySource fetches the subcategories of a category.
type SubCategorySource interface {
	FetchSubCategories(ctx context.Context, categoryID string) ([]SubCategory, error)
}

// SubSubCategorySource fetches the sub-subcategories of a subcategory.
type SubSubCategorySource interface {
	FetchSubSubCategories(ctx context.Context, subCategoryID string) ([]SubSubCategory, error)
}

// LoadObserver receives hierarchy load measurements.
type LoadObserver interface {
	ObserveHierarchyLoad(duration time.Duration, result string, categories, subCategories, subSubCategories int)
	ObserveDegradedBranch(level string)
}

// LoadStats summarizes one hierarchy load.
type LoadStats struct {
	Categories       int
	SubCategories    int
	SubSubCategories int
	Degraded         int
	Duration         time.Duration
}

// HierarchyLoader assembles the full category tree: the category list, then
// concurrently the subcategories of every category and, as each arrives,
// the sub-subcategories of every subcategory.
type HierarchyLoader struct {
	categories       CategoryLister
	subCategories    SubCategorySource
	subSubCategories SubSubCategorySource
	observer         LoadObserver
	logger           *zap.Logger
	maxConcurrency   int
	pageSize         int
}

// LoaderOption configures a HierarchyLoader.
type LoaderOption func(*HierarchyLoader)

// WithMaxConcurrency bounds the number of child fetches in flight. 0 means
// unbounded.
func WithMaxConcurrency(n int) LoaderOption {
	return func(l *HierarchyLoader) { l.maxConcurrency = n }
}

// WithPageSize makes the loader request categories n at a time and follow
// pages. 0 leaves paging to the backend and reads a single response.
func WithPageSize(n int) LoaderOption {
	return func(l *HierarchyLoader) { l.pageSize = n }
}

// WithLoadObserver registers a load observer.
func WithLoadObserver(o LoadObserver) LoaderOption {
	return func(l *HierarchyLoader) { l.observer = o }
}

// WithLoaderLogger sets the loader logger.
func WithLoaderLogger(log *zap.Logger) LoaderOption {
	return func(l *HierarchyLoader) {
		if log != nil {
			l.logger = log
		}
	}
}

// NewHierarchyLoader creates a loader over the three level services.
func NewHierarchyLoader(categories CategoryLister, subCategories SubCategorySource, subSubCategories SubSubCategorySource, opts ...LoaderOption) *HierarchyLoader {
	l := &HierarchyLoader{
		categories:       categories,
		subCategories:    subCategories,
		subSubCategories: subSubCategories,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named("hierarchy")
	return l
}

// Load fetches the full hierarchy. A failed category list is returned as an
// error; failed child fetches degrade to empty branches.
func (l *HierarchyLoader) Load(ctx context.Context) ([]Category, error) {
	tree, stats, err := l.load(ctx)
	l.observe(stats, err)
	return tree, err
}

func (l *HierarchyLoader) observe(stats LoadStats, err error) {
	if l.observer == nil {
		return
	}
	result := LoadResultOK
	switch {
	case errors.Is(err, ErrStaleLoad):
		result = LoadResultStale
	case err != nil:
		result = LoadResultError
	}
	l.observer.ObserveHierarchyLoad(stats.Duration, result, stats.Categories, stats.SubCategories, stats.SubSubCategories)
}

func (l *HierarchyLoader) load(ctx context.Context) (tree []Category, stats LoadStats, err error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "hierarchy.load")
	defer func() {
		stats.Duration = time.Since(start)
		telemetry.SetAttributes(span,
			telemetry.SpanAttrItemCount, stats.Categories,
			telemetry.SpanAttrDegraded, stats.Degraded,
		)
		telemetry.End(span, &err)
	}()

	categories, err := l.fetchCategories(ctx)
	if err != nil {
		return nil, stats, err
	}

	var sem *semaphore.Weighted
	if l.maxConcurrency > 0 {
		sem = semaphore.NewWeighted(int64(l.maxConcurrency))
	}
	acquire := func() bool {
		if sem == nil {
			return true
		}
		return sem.Acquire(ctx, 1) == nil
	}
	release := func() {
		if sem != nil {
			sem.Release(1)
		}
	}

	var (
		mu       sync.Mutex
		degraded int
	)
	degrade := func(level, id string, err error) {
		mu.Lock()
		degraded++
		mu.Unlock()
		if l.observer != nil {
			l.observer.ObserveDegradedBranch(level)
		}
		logger.For(ctx, l.logger).Warn("child fetch failed, using empty branch",
			zap.String("level", level),
			zap.String("owner_id", id),
			zap.Error(err),
		)
	}

	// Branch goroutines never fail the group; errgroup only tracks completion.
	var g errgroup.Group
	for i := range categories {
		cat := &categories[i]
		g.Go(func() error {
			var subs []SubCategory
			var err error
			if acquire() {
				subs, err = l.subCategories.FetchSubCategories(ctx, cat.ID)
				release()
			} else {
				err = ctx.Err()
			}
			if err != nil {
				degrade(LevelSubCategory, cat.ID, err)
				subs = nil
			}
			if subs == nil {
				subs = []SubCategory{}
			}
			cat.SubCategories = subs

			for j := range subs {
				sub := &subs[j]
				g.Go(func() error {
					var subSubs []SubSubCategory
					var err error
					if acquire() {
						subSubs, err = l.subSubCategories.FetchSubSubCategories(ctx, sub.ID)
						release()
					} else {
						err = ctx.Err()
					}
					if err != nil {
						degrade(LevelSubSubCategory, sub.ID, err)
						subSubs = nil
					}
					if subSubs == nil {
						subSubs = []SubSubCategory{}
					}
					sub.SubSubCategories = subSubs
					return nil
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	stats.Categories = len(categories)
	stats.Degraded = degraded
	for _, c := range categories {
		stats.SubCategories += len(c.SubCategories)
		for _, s := range c.SubCategories {
			stats.SubSubCategories += len(s.SubSubCategories)
		}
	}

	logger.For(ctx, l.logger).Debug("hierarchy loaded",
		zap.Int("categories", stats.Categories),
		zap.Int("subcategories", stats.SubCategories),
		zap.Int("subsubcategories", stats.SubSubCategories),
		zap.Int("degraded", stats.Degraded),
	)
	return categories, stats, nil
}

// fetchCategories lists categories by ascending sort order, following pages
// when a page size is configured.
func (l *HierarchyLoader) fetchCategories(ctx context.Context) ([]Category, error) {
	filter := CategoryFilter{ListFilter: ListFilter{SortBy: "sortOrder", SortOrder: "asc"}}
	if l.pageSize <= 0 {
		result, err := l.categories.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		if result.Items == nil {
			return []Category{}, nil
		}
		return result.Items, nil
	}

	filter.PageSize = l.pageSize
	var all []Category
	for page := 1; page <= maxCategoryPages; page++ {
		filter.Page = page
		result, err := l.categories.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Items...)
		if len(result.Items) == 0 || page >= result.TotalPages {
			break
		}
	}
	if all == nil {
		all = []Category{}
	}
	return all, nil
}

// Hierarchy holds the most recently committed tree. Each Refresh cancels the
// load before it, and a load only commits if no newer load has started.
type Hierarchy struct {
	loader *HierarchyLoader

	mu         sync.Mutex
	generation uint64
	committed  uint64
	tree       []Category
	loadedAt   time.Time
	cancel     context.CancelFunc
}

// NewHierarchy creates an empty Hierarchy backed by loader.
func NewHierarchy(loader *HierarchyLoader) *Hierarchy {
	return &Hierarchy{loader: loader}
}

// Refresh loads the hierarchy and commits it. It returns ErrStaleLoad when a
// newer Refresh started in the meantime; the committed tree is then left to
// the newer load.
func (h *Hierarchy) Refresh(ctx context.Context) ([]Category, error) {
	h.mu.Lock()
	h.generation++
	gen := h.generation
	if h.cancel != nil {
		h.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.mu.Unlock()
	defer cancel()

	tree, stats, err := h.loader.load(loadCtx)

	h.mu.Lock()
	defer h.mu.Unlock()

	if gen != h.generation {
		h.loader.observe(stats, ErrStaleLoad)
		return nil, ErrStaleLoad
	}
	h.cancel = nil
	h.loader.observe(stats, err)
	if err != nil {
		return nil, err
	}

	h.tree = tree
	h.committed = gen
	h.loadedAt = time.Now()
	return cloneTree(tree), nil
}

// Snapshot returns a copy of the committed tree and the generation that
// produced it. Generation 0 means nothing has been committed yet.
func (h *Hierarchy) Snapshot() ([]Category, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return cloneTree(h.tree), h.committed
}

// LoadedAt returns when the committed tree was loaded.
func (h *Hierarchy) LoadedAt() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loadedAt
}

func cloneTree(tree []Category) []Category {
	if tree == nil {
		return nil
	}
	out := make([]Category, len(tree))
	for i, c := range tree {
		out[i] = c
		if c.ParentID != nil {
			p := *c.ParentID
			out[i].ParentID = &p
		}
		out[i].SubCategories = make([]SubCategory, len(c.SubCategories))
		for j, s := range c.SubCategories {
			out[i].SubCategories[j] = s
			out[i].SubCategories[j].SubSubCategories = append([]SubSubCategory{}, s.SubSubCategories...)
		}
	}
	return out
}
