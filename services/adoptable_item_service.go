package services

import (
	"context"
	"fmt"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
)

const itemImageDir = "adoptable-items"

// ItemImages are the optional files sent with an item create or update.
// A non-empty Gallery replaces the whole existing gallery.
type ItemImages struct {
	Main    *ImageFile
	Gallery []ImageFile
}

type AdoptableItemService interface {
	List(ctx context.Context, f models.AdoptableItemFilter) (pkg.Page[models.AdoptableItem], error)
	Get(ctx context.Context, id int64) (*models.AdoptableItem, error)
	Create(ctx context.Context, in *models.AdoptableItemInput, images ItemImages) (*models.AdoptableItem, error)
	Update(ctx context.Context, id int64, in *models.AdoptableItemInput, images ItemImages) (*models.AdoptableItem, error)
	Delete(ctx context.Context, id int64) error
}

type adoptableItemService struct {
	itemRepo     repository.AdoptableItemRepository
	producerRepo repository.ProducerRepository
	uploads      UploadService
}

func NewAdoptableItemService(
	itemRepo repository.AdoptableItemRepository,
	producerRepo repository.ProducerRepository,
	uploads UploadService,
) AdoptableItemService {
	return &adoptableItemService{
		itemRepo:     itemRepo,
		producerRepo: producerRepo,
		uploads:      uploads,
	}
}

func (s *adoptableItemService) List(ctx context.Context, f models.AdoptableItemFilter) (pkg.Page[models.AdoptableItem], error) {
	items, total, err := s.itemRepo.List(ctx, f)
	if err != nil {
		return pkg.Page[models.AdoptableItem]{}, err
	}
	return pkg.NewPage(items, total, f.Page), nil
}

func (s *adoptableItemService) Get(ctx context.Context, id int64) (*models.AdoptableItem, error) {
	return s.itemRepo.GetByID(ctx, id)
}

func (s *adoptableItemService) Create(ctx context.Context, in *models.AdoptableItemInput, images ItemImages) (*models.AdoptableItem, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	if err := s.checkProducer(ctx, *in.ProducerID); err != nil {
		return nil, err
	}

	itemSlug, err := uniqueSlug(ctx, *in.Name, "item", func(ctx context.Context, candidate string) (bool, error) {
		return s.itemRepo.SlugExists(ctx, candidate, 0)
	})
	if err != nil {
		return nil, err
	}

	item := &models.AdoptableItem{
		ProducerID:    *in.ProducerID,
		Name:          *in.Name,
		Slug:          itemSlug,
		Description:   *in.Description,
		Type:          *in.Type,
		Location:      *in.Location,
		Status:        *in.Status,
		Attributes:    models.JSONMap{},
		GalleryImages: models.StringList{},
	}
	if in.Attributes != nil {
		item.Attributes = orEmpty(*in.Attributes)
	}
	if in.Featured != nil {
		item.Featured = *in.Featured
	}

	stored, err := s.storeImages(item, images)
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		s.removeAll(stored)
		return nil, err
	}
	return s.itemRepo.GetByID(ctx, item.ID)
}

func (s *adoptableItemService) Update(ctx context.Context, id int64, in *models.AdoptableItemInput, images ItemImages) (*models.AdoptableItem, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ProducerID != nil {
		if err := s.checkProducer(ctx, *in.ProducerID); err != nil {
			return nil, err
		}
		item.ProducerID = *in.ProducerID
	}

	if in.Name != nil && *in.Name != item.Name {
		item.Name = *in.Name
		item.Slug, err = uniqueSlug(ctx, item.Name, "item", func(ctx context.Context, candidate string) (bool, error) {
			return s.itemRepo.SlugExists(ctx, candidate, id)
		})
		if err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Type != nil {
		item.Type = *in.Type
	}
	if in.Location != nil {
		item.Location = *in.Location
	}
	if in.Status != nil {
		item.Status = *in.Status
	}
	if in.Attributes != nil {
		item.Attributes = orEmpty(*in.Attributes)
	}
	if in.Featured != nil {
		item.Featured = *in.Featured
	}

	oldMain, oldGallery := item.MainImage, item.GalleryImages
	stored, err := s.storeImages(item, images)
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		s.removeAll(stored)
		return nil, err
	}

	if images.Main != nil && oldMain != nil {
		s.uploads.Remove(*oldMain)
	}
	if len(images.Gallery) > 0 {
		s.removeAll(oldGallery)
	}
	return s.itemRepo.GetByID(ctx, id)
}

func (s *adoptableItemService) Delete(ctx context.Context, id int64) error {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	active, err := s.itemRepo.HasActiveAdoptions(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return fmt.Errorf("%w: cannot delete adoptable item with active adoptions", pkg.ErrUnprocessable)
	}

	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return err
	}

	if item.MainImage != nil {
		s.uploads.Remove(*item.MainImage)
	}
	s.removeAll(item.GalleryImages)
	return nil
}

func (s *adoptableItemService) checkProducer(ctx context.Context, producerID int64) error {
	ok, err := s.producerRepo.Exists(ctx, producerID)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.ValidationErrors{"producer_id": "the selected producer does not exist"}
	}
	return nil
}

// storeImages writes the uploaded files and points item at them. On error
// every file written so far is removed.
func (s *adoptableItemService) storeImages(item *models.AdoptableItem, images ItemImages) ([]string, error) {
	var stored []string

	if images.Main != nil {
		p, err := s.uploads.SaveImage(itemImageDir, *images.Main)
		if err != nil {
			return nil, err
		}
		stored = append(stored, p)
		item.MainImage = &p
	}

	if len(images.Gallery) > 0 {
		gallery := make(models.StringList, 0, len(images.Gallery))
		for _, f := range images.Gallery {
			p, err := s.uploads.SaveImage(itemImageDir, f)
			if err != nil {
				s.removeAll(stored)
				return nil, err
			}
			stored = append(stored, p)
			gallery = append(gallery, p)
		}
		item.GalleryImages = gallery
	}
	return stored, nil
}

func (s *adoptableItemService) removeAll(paths []string) {
	for _, p := range paths {
		s.uploads.Remove(p)
	}
}
