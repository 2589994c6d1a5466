package service

import (
	"context"
	"errors"

	"footstep/internal/domain/posting/model"
	"footstep/internal/domain/posting/repository"
	"footstep/pkg/database"

	"gorm.io/gorm"
)

// PlaceCandidate 上传时携带的地点信息
type PlaceCandidate struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
}

type PlaceService interface {
	// ResolvePlace 按精确经纬度复用已有地点，不存在则创建；不按名称或地址去重
	ResolvePlace(ctx context.Context, candidate PlaceCandidate) (*model.Place, error)
}

type placeService struct {
	repo repository.PlaceRepository
	tx   database.Transactor
}

func NewPlaceService(repo repository.PlaceRepository, tx database.Transactor) PlaceService {
	return &placeService{repo: repo, tx: tx}
}

func (s *placeService) ResolvePlace(ctx context.Context, candidate PlaceCandidate) (*model.Place, error) {
	place, err := s.repo.GetByCoordinates(ctx, candidate.Latitude, candidate.Longitude)
	if err == nil {
		return place, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	place = &model.Place{
		Name:      candidate.Name,
		Address:   candidate.Address,
		Latitude:  candidate.Latitude,
		Longitude: candidate.Longitude,
	}
	// 插入放在独立的保存点里，唯一冲突不会让外层事务失效
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, place)
	})
	if err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, err
		}
		// 并发插入同一坐标，读回胜出的那一行
		return s.repo.GetByCoordinates(ctx, candidate.Latitude, candidate.Longitude)
	}
	return place, nil
}
