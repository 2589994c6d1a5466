package repository

import (
	"context"

	"footstep/internal/domain/posting/model"
	"footstep/pkg/database"

	"gorm.io/gorm"
)

// PlaceRepository 接口定义
type PlaceRepository interface {
	GetByCoordinates(ctx context.Context, lat, lng float64) (*model.Place, error)
	GetByID(ctx context.Context, id uint) (*model.Place, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]model.Place, error)
	Create(ctx context.Context, place *model.Place) error
}

type placeRepository struct {
	db *gorm.DB
}

func NewPlaceRepository(db *gorm.DB) PlaceRepository {
	return &placeRepository{db: db}
}

func (r *placeRepository) GetByCoordinates(ctx context.Context, lat, lng float64) (*model.Place, error) {
	var place model.Place
	if err := database.Conn(ctx, r.db).Where("latitude = ? AND longitude = ?", lat, lng).First(&place).Error; err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *placeRepository) GetByID(ctx context.Context, id uint) (*model.Place, error) {
	var place model.Place
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&place).Error; err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *placeRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]model.Place, error) {
	places := make(map[uint]model.Place, len(ids))
	if len(ids) == 0 {
		return places, nil
	}

	var rows []model.Place
	if err := database.Conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		places[p.ID] = p
	}
	return places, nil
}

func (r *placeRepository) Create(ctx context.Context, place *model.Place) error {
	return database.Conn(ctx, r.db).Create(place).Error
}
