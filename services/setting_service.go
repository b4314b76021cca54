package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/pkg/crypto"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/ws"
)

const defaultSettingGroup = "general"

type SettingService interface {
	// Grouped returns every setting keyed by group, secrets masked.
	Grouped(ctx context.Context) (map[string][]models.Setting, error)
	Update(ctx context.Context, adminID int64, req *models.UpdateSettingsRequest) (map[string][]models.Setting, error)
}

type settingService struct {
	db          *sql.DB
	settingRepo repository.SettingRepository
	box         *crypto.Box
	hub         ws.EventPublisher
}

func NewSettingService(db *sql.DB, settingRepo repository.SettingRepository, box *crypto.Box, hub ws.EventPublisher) SettingService {
	return &settingService{db: db, settingRepo: settingRepo, box: box, hub: hub}
}

func (s *settingService) Grouped(ctx context.Context) (map[string][]models.Setting, error) {
	settings, err := s.settingRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]models.Setting)
	for _, st := range settings {
		if st.IsSecret {
			st.Value = models.SecretMask
		}
		out[st.Group] = append(out[st.Group], st)
	}
	return out, nil
}

// Update upserts all settings in one transaction. Sending the mask back for
// a secret keeps its stored value.
func (s *settingService) Update(ctx context.Context, adminID int64, req *models.UpdateSettingsRequest) (map[string][]models.Setting, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var changed []string
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txRepo := repository.NewSQLiteSettingRepo(tx)
		for i, in := range req.Settings {
			existing, err := txRepo.Get(ctx, in.Key)
			if err != nil && !errors.Is(err, pkg.ErrNotFound) {
				return err
			}

			st := &models.Setting{Key: in.Key, Value: in.Value, Group: defaultSettingGroup, UpdatedBy: &adminID}
			if existing != nil {
				st.Group = existing.Group
				st.IsSecret = existing.IsSecret
			}
			if in.Group != nil {
				st.Group = *in.Group
			}
			if in.IsSecret != nil {
				st.IsSecret = *in.IsSecret
			}

			if st.IsSecret {
				if in.Value == models.SecretMask && existing != nil && existing.IsSecret {
					st.Value = existing.Value
				} else {
					sealed, err := s.box.Seal(st.Key, in.Value)
					if errors.Is(err, crypto.ErrNoKey) {
						return pkg.ValidationErrors{
							fmt.Sprintf("settings.%d.value", i): "cannot store a secret: ENCRYPTION_KEY is not configured",
						}
					}
					if err != nil {
						return fmt.Errorf("failed to encrypt setting %s: %w", st.Key, err)
					}
					st.Value = sealed
				}
			}

			if err := txRepo.Upsert(ctx, st); err != nil {
				return err
			}
			changed = append(changed, st.Key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpSettingsUpdated, Data: map[string]any{"keys": changed}})
	return s.Grouped(ctx)
}
