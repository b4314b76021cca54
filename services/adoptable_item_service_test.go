package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dixis/dixis/database/dbtest"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
)

type memFile struct{ *bytes.Reader }

func (memFile) Close() error { return nil }

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func imageFile(field string, data []byte) ImageFile {
	return ImageFile{
		Field:  field,
		File:   memFile{bytes.NewReader(data)},
		Header: &multipart.FileHeader{Filename: field + ".png", Size: int64(len(data))},
	}
}

func uploadedPath(dir, public string) string {
	return filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(public, UploadPrefix)))
}

func TestAdoptableItemLifecycle(t *testing.T) {
	db := dbtest.New(t)
	dir := t.TempDir()
	svc := NewAdoptableItemService(
		repository.NewSQLiteAdoptableItemRepo(db.Conn),
		repository.NewSQLiteProducerRepo(db.Conn),
		NewUploadService(dir, 1<<20, zap.NewNop()),
	)
	ctx := context.Background()
	producerID := insertProducer(t, db.Conn, "Chania Groves")

	_, err := svc.Create(ctx, &models.AdoptableItemInput{}, ItemImages{})
	fields := validationFields(t, err)
	for _, f := range []string{"name", "description", "type", "location", "status", "producer_id"} {
		assert.Contains(t, fields, f)
	}

	input := func() *models.AdoptableItemInput {
		return &models.AdoptableItemInput{
			Name:        ptr("  Koroneiki Tree "),
			Description: ptr("Hundred year old olive tree"),
			Type:        ptr("olive_tree"),
			Location:    ptr("Chania"),
			Status:      ptr(models.ItemStatusAvailable),
			ProducerID:  ptr(producerID),
		}
	}

	missing := input()
	missing.ProducerID = ptr(int64(999))
	_, err = svc.Create(ctx, missing, ItemImages{})
	assert.Contains(t, validationFields(t, err), "producer_id")

	_, err = svc.Create(ctx, input(), ItemImages{Main: ptr(imageFile("main_image", []byte("plain text")))})
	assert.Contains(t, validationFields(t, err), "main_image")

	item, err := svc.Create(ctx, input(), ItemImages{Main: ptr(imageFile("main_image", pngHeader))})
	require.NoError(t, err)
	assert.Equal(t, "Koroneiki Tree", item.Name)
	assert.Equal(t, "koroneiki-tree", item.Slug)
	assert.NotNil(t, item.GalleryImages)
	require.NotNil(t, item.Producer)
	assert.Equal(t, "Chania Groves", item.Producer.BusinessName)
	require.NotNil(t, item.MainImage)
	firstMain := uploadedPath(dir, *item.MainImage)
	assert.FileExists(t, firstMain)

	second, err := svc.Create(ctx, input(), ItemImages{})
	require.NoError(t, err)
	assert.Equal(t, "koroneiki-tree-1", second.Slug)

	updated, err := svc.Update(ctx, item.ID, &models.AdoptableItemInput{
		Location: ptr("Kissamos"),
		Featured: ptr(true),
	}, ItemImages{
		Main:    ptr(imageFile("main_image", pngHeader)),
		Gallery: []ImageFile{imageFile("gallery_images", pngHeader), imageFile("gallery_images", pngHeader)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Kissamos", updated.Location)
	assert.Equal(t, "koroneiki-tree", updated.Slug)
	assert.True(t, updated.Featured)
	assert.Len(t, updated.GalleryImages, 2)
	assert.NoFileExists(t, firstMain)

	_, err = svc.Update(ctx, item.ID, &models.AdoptableItemInput{Status: ptr("sold")}, ItemImages{})
	assert.Contains(t, validationFields(t, err), "status")

	page, err := svc.List(ctx, models.AdoptableItemFilter{
		Search: "koroneiki",
		Sort:   models.SortSpec{Column: "i.created_at", Desc: true},
		Page:   firstPage,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	userID := insertUser(t, db.Conn, "Eleni", "eleni@example.test", "consumer")
	start := time.Now().UTC().Add(-24 * time.Hour)
	insertAdoption(t, db.Conn, userID, item.ID, "active", start, start.AddDate(1, 0, 0), 120)
	err = svc.Delete(ctx, item.ID)
	assert.ErrorIs(t, err, pkg.ErrUnprocessable)

	_, err = db.Conn.Exec(`UPDATE adoptions SET status = 'cancelled'`)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, item.ID))
	for _, p := range updated.GalleryImages {
		_, statErr := os.Stat(uploadedPath(dir, p))
		assert.True(t, os.IsNotExist(statErr), p)
	}

	_, err = svc.Get(ctx, item.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}
