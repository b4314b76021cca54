package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/pkg/filter"
	"github.com/dixis/dixis/pkg/slug"
	"github.com/dixis/dixis/repository"
)

const maxSuggestions = 8

// CatalogService serves the public storefront listing.
type CatalogService interface {
	List(ctx context.Context, q models.CatalogQuery) (pkg.Page[models.CatalogProduct], error)
	GetBySlug(ctx context.Context, slug string) (*models.CatalogProduct, error)
	Suggestions(ctx context.Context, q string) ([]models.Suggestion, error)
}

type catalogService struct {
	catalogRepo repository.CatalogRepository
	compiler    *filter.Compiler
	now         func() time.Time
}

func NewCatalogService(catalogRepo repository.CatalogRepository, compiler *filter.Compiler) CatalogService {
	return &catalogService{catalogRepo: catalogRepo, compiler: compiler, now: time.Now}
}

type scored struct {
	product models.CatalogProduct
	score   int
}

func (s *catalogService) List(ctx context.Context, q models.CatalogQuery) (pkg.Page[models.CatalogProduct], error) {
	if err := q.Validate(); err != nil {
		return pkg.Page[models.CatalogProduct]{}, err
	}

	var pred *filter.Predicate
	if strings.TrimSpace(q.Filter) != "" {
		p, err := s.compiler.Compile(q.Filter)
		if err != nil {
			return pkg.Page[models.CatalogProduct]{}, err
		}
		pred = p
	}

	products, err := s.catalogRepo.ActiveProducts(ctx, q)
	if err != nil {
		return pkg.Page[models.CatalogProduct]{}, err
	}

	term := slug.Fold(strings.TrimSpace(q.Search))
	now := s.now()
	matched := make([]scored, 0, len(products))
	for _, p := range products {
		score := 0
		if term != "" {
			if score = searchScore(p, term); score == 0 {
				continue
			}
		}
		if q.MinPrice != nil && p.FinalPrice < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && p.FinalPrice > *q.MaxPrice {
			continue
		}
		if pred != nil {
			ok, err := pred.Match(filterEnv(p, now))
			if err != nil {
				return pkg.Page[models.CatalogProduct]{}, err
			}
			if !ok {
				continue
			}
		}
		matched = append(matched, scored{product: p, score: score})
	}

	sortCatalog(matched, q.Sort)

	total := len(matched)
	from := min(q.Page.Offset(), total)
	to := min(from+q.Page.PerPage, total)
	page := make([]models.CatalogProduct, 0, to-from)
	for _, m := range matched[from:to] {
		page = append(page, m.product)
	}
	return pkg.NewPage(page, total, q.Page), nil
}

func (s *catalogService) GetBySlug(ctx context.Context, productSlug string) (*models.CatalogProduct, error) {
	return s.catalogRepo.ActiveBySlug(ctx, productSlug)
}

// Suggestions ranks prefix matches ahead of substring matches. An empty
// query returns the popular searches.
func (s *catalogService) Suggestions(ctx context.Context, q string) ([]models.Suggestion, error) {
	term := slug.Fold(strings.TrimSpace(q))
	if term == "" {
		out := make([]models.Suggestion, 0, maxSuggestions)
		for _, text := range models.PopularSearches[:min(maxSuggestions, len(models.PopularSearches))] {
			out = append(out, models.Suggestion{Text: text, Kind: "popular"})
		}
		return out, nil
	}

	names, err := s.catalogRepo.Names(ctx)
	if err != nil {
		return nil, err
	}

	var prefix, contains []models.Suggestion
	seen := make(map[string]bool)
	for _, n := range names {
		folded := slug.Fold(n.Text)
		key := n.Kind + "\x00" + folded
		if seen[key] {
			continue
		}
		switch {
		case strings.HasPrefix(folded, term):
			prefix = append(prefix, n)
		case strings.Contains(folded, term):
			contains = append(contains, n)
		default:
			continue
		}
		seen[key] = true
	}

	out := append(prefix, contains...)
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return nonNil(out), nil
}

// searchScore weighs a folded term against name, producer and description.
func searchScore(p models.CatalogProduct, term string) int {
	name := slug.Fold(p.Name)
	switch {
	case strings.HasPrefix(name, term):
		return 4
	case strings.Contains(name, term):
		return 3
	case strings.Contains(slug.Fold(p.Producer.BusinessName), term):
		return 2
	case strings.Contains(slug.Fold(p.Description), term):
		return 1
	}
	return 0
}

func sortCatalog(items []scored, mode string) {
	less := map[string]func(a, b *scored) bool{
		"price_asc":  func(a, b *scored) bool { return a.product.FinalPrice < b.product.FinalPrice },
		"price_desc": func(a, b *scored) bool { return a.product.FinalPrice > b.product.FinalPrice },
		"name":       func(a, b *scored) bool { return slug.Fold(a.product.Name) < slug.Fold(b.product.Name) },
		"name_asc":   func(a, b *scored) bool { return slug.Fold(a.product.Name) < slug.Fold(b.product.Name) },
		"name_desc":  func(a, b *scored) bool { return slug.Fold(a.product.Name) > slug.Fold(b.product.Name) },
		"newest":     func(a, b *scored) bool { return a.product.CreatedAt.After(b.product.CreatedAt) },
		"popular":    func(a, b *scored) bool { return a.product.Sold > b.product.Sold },
		"relevance": func(a, b *scored) bool {
			if a.score != b.score {
				return a.score > b.score
			}
			if a.product.Featured != b.product.Featured {
				return a.product.Featured
			}
			return a.product.CreatedAt.After(b.product.CreatedAt)
		},
	}[mode]
	if less == nil {
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(&items[i], &items[j]) })
}

// filterEnv exposes a product to filter expressions.
func filterEnv(p models.CatalogProduct, now time.Time) map[string]any {
	categories := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		categories = append(categories, c.Slug)
	}
	category := ""
	if len(categories) > 0 {
		category = categories[0]
	}
	discount := 0.0
	if p.FinalPrice < p.Price && p.Price > 0 {
		discount = roundCents((p.Price - p.FinalPrice) / p.Price * 100)
	}
	weight := 0
	if p.WeightGrams != nil {
		weight = *p.WeightGrams
	}
	region := ""
	if p.Region != nil {
		region = *p.Region
	}

	return map[string]any{
		"id":           p.ID,
		"name":         p.Name,
		"price":        p.Price,
		"final_price":  p.FinalPrice,
		"discount":     discount,
		"stock":        p.Stock,
		"featured":     p.Featured,
		"category":     category,
		"categories":   categories,
		"producer":     p.Producer.BusinessName,
		"producer_id":  p.Producer.ID,
		"region":       region,
		"weight_grams": weight,
		"created_days": int(now.Sub(p.CreatedAt).Hours() / 24),
	}
}
