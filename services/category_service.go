package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/pkg/slug"
	"github.com/dixis/dixis/repository"
)

type CategoryService interface {
	List(ctx context.Context, f models.CategoryFilter) (pkg.Page[models.Category], error)
	Get(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id int64, req *models.UpdateCategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
	// Tree returns main categories with their children for the storefront.
	Tree(ctx context.Context) ([]models.CategoryNode, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) List(ctx context.Context, f models.CategoryFilter) (pkg.Page[models.Category], error) {
	categories, total, err := s.categoryRepo.List(ctx, f)
	if err != nil {
		return pkg.Page[models.Category]{}, err
	}

	ids := make([]int64, len(categories))
	for i := range categories {
		ids[i] = categories[i].ID
	}
	children, err := s.categoryRepo.Children(ctx, ids)
	if err != nil {
		return pkg.Page[models.Category]{}, err
	}
	for i := range categories {
		categories[i].Children = nonNil(children[categories[i].ID])
	}

	return pkg.NewPage(categories, total, f.Page), nil
}

func (s *categoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	children, err := s.categoryRepo.Children(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	category.Children = nonNil(children[id])

	n, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	category.ProductCount = &n
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	v := pkg.ValidationErrors{}
	if err := s.checkName(ctx, v, req.Name, 0); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if err := s.checkParentExists(ctx, v, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		ParentID:        req.ParentID,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
	}

	if req.Slug != nil && *req.Slug != "" {
		if err := s.checkSlug(ctx, v, *req.Slug, 0); err != nil {
			return nil, err
		}
		category.Slug = *req.Slug
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if category.Slug == "" {
		generated, err := uniqueSlug(ctx, req.Name, "category", func(ctx context.Context, candidate string) (bool, error) {
			return s.categoryRepo.SlugExists(ctx, candidate, 0)
		})
		if err != nil {
			return nil, err
		}
		category.Slug = generated
	}

	if req.Order != nil {
		category.Order = *req.Order
	} else {
		maxOrder, err := s.categoryRepo.MaxOrder(ctx)
		if err != nil {
			return nil, err
		}
		category.Order = maxOrder + 1
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return s.Get(ctx, category.ID)
}

func (s *categoryService) Update(ctx context.Context, id int64, req *models.UpdateCategoryRequest) (*models.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := pkg.ValidationErrors{}
	nameChanged := false
	if req.Name != nil && *req.Name != category.Name {
		if err := s.checkName(ctx, v, *req.Name, id); err != nil {
			return nil, err
		}
		category.Name = *req.Name
		nameChanged = true
	}

	switch {
	case req.Slug != nil && *req.Slug != "":
		if err := s.checkSlug(ctx, v, *req.Slug, id); err != nil {
			return nil, err
		}
		category.Slug = *req.Slug
	case nameChanged:
		generated, err := uniqueSlug(ctx, category.Name, "category", func(ctx context.Context, candidate string) (bool, error) {
			return s.categoryRepo.SlugExists(ctx, candidate, id)
		})
		if err != nil {
			return nil, err
		}
		category.Slug = generated
	}

	if req.ParentID.Set {
		if req.ParentID.Value != nil {
			parentID := *req.ParentID.Value
			if parentID == id {
				v.Add("parent_id", "a category cannot be its own parent")
			} else if err := s.checkParentExists(ctx, v, parentID); err != nil {
				return nil, err
			} else if !v.Has("parent_id") {
				cycle, err := s.wouldCreateCycle(ctx, id, parentID)
				if err != nil {
					return nil, err
				}
				if cycle {
					v.Add("parent_id", "this would create a circular reference")
				}
			}
		}
		category.ParentID = req.ParentID.Value
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if req.Description.Set {
		category.Description = req.Description.Value
	}
	if req.Type != nil {
		category.Type = *req.Type
	}
	if req.Order != nil {
		category.Order = *req.Order
	}
	if req.MetaTitle.Set {
		category.MetaTitle = req.MetaTitle.Value
	}
	if req.MetaDescription.Set {
		category.MetaDescription = req.MetaDescription.Value
	}
	if req.MetaKeywords.Set {
		category.MetaKeywords = req.MetaKeywords.Value
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		return err
	}

	products, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if products > 0 {
		return fmt.Errorf("%w: cannot delete category with associated products", pkg.ErrUnprocessable)
	}

	children, err := s.categoryRepo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("%w: cannot delete category with subcategories", pkg.ErrUnprocessable)
	}

	return s.categoryRepo.Delete(ctx, id)
}

func (s *categoryService) Tree(ctx context.Context) ([]models.CategoryNode, error) {
	all, err := s.categoryRepo.All(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCategoryTree(all), nil
}

// BuildCategoryTree nests categories under their parents. Categories whose
// parent is missing are promoted to roots; input order is preserved.
func BuildCategoryTree(categories []models.Category) []models.CategoryNode {
	known := make(map[int64]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	byParent := make(map[int64][]models.Category)
	var roots []models.Category
	for _, c := range categories {
		if c.ParentID == nil || !known[*c.ParentID] || *c.ParentID == c.ID {
			roots = append(roots, c)
			continue
		}
		byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
	}

	visited := make(map[int64]bool, len(categories))
	var build func(c models.Category) models.CategoryNode
	build = func(c models.Category) models.CategoryNode {
		visited[c.ID] = true
		node := models.CategoryNode{ID: c.ID, Name: c.Name, Slug: c.Slug, Children: []models.CategoryNode{}}
		for _, child := range byParent[c.ID] {
			if !visited[child.ID] {
				node.Children = append(node.Children, build(child))
			}
		}
		return node
	}

	tree := make([]models.CategoryNode, 0, len(roots))
	for _, r := range roots {
		tree = append(tree, build(r))
	}
	return tree
}

// wouldCreateCycle walks the ancestor chain from parentID and reports
// whether it reaches categoryID. A loop elsewhere in the chain ends the walk.
func (s *categoryService) wouldCreateCycle(ctx context.Context, categoryID, parentID int64) (bool, error) {
	visited := make(map[int64]bool)
	current := &parentID
	for current != nil {
		if *current == categoryID {
			return true, nil
		}
		if visited[*current] {
			return false, nil
		}
		visited[*current] = true

		next, err := s.categoryRepo.ParentID(ctx, *current)
		if errors.Is(err, pkg.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		current = next
	}
	return false, nil
}

func (s *categoryService) checkName(ctx context.Context, v pkg.ValidationErrors, name string, exceptID int64) error {
	taken, err := s.categoryRepo.NameExists(ctx, name, exceptID)
	if err != nil {
		return err
	}
	if taken {
		v.Add("name", "has already been taken")
	}
	return nil
}

func (s *categoryService) checkSlug(ctx context.Context, v pkg.ValidationErrors, candidate string, exceptID int64) error {
	if candidate != slug.Make(candidate) {
		v.Add("slug", "may only contain lowercase letters, digits and dashes")
		return nil
	}
	taken, err := s.categoryRepo.SlugExists(ctx, candidate, exceptID)
	if err != nil {
		return err
	}
	if taken {
		v.Add("slug", "has already been taken")
	}
	return nil
}

func (s *categoryService) checkParentExists(ctx context.Context, v pkg.ValidationErrors, parentID int64) error {
	_, err := s.categoryRepo.ParentID(ctx, parentID)
	if errors.Is(err, pkg.ErrNotFound) {
		v.Add("parent_id", "the selected parent category does not exist")
		return nil
	}
	return err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
