package person

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	List(ctx context.Context) ([]Person, error)
	GetByID(ctx context.Context, id int) (*Person, error)
	Create(ctx context.Context, req CreateRequest) (*Person, error)
	Update(ctx context.Context, id int, req UpdateRequest) (*Person, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Person, error) {
	var persons []Person
	if err := r.db.WithContext(ctx).Order("id").Find(&persons).Error; err != nil {
		return nil, err
	}
	return persons, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Person, error) {
	var p Person
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, req CreateRequest) (*Person, error) {
	p := Person{
		ExternalID:    uuid.New(),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PreferredName: req.PreferredName,
	}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, id int, req UpdateRequest) (*Person, error) {
	var p Person
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.PreferredName != nil {
		p.PreferredName = req.PreferredName
	}

	if err := r.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Delete(ctx context.Context, id int) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&Person{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
