package profile

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	ListByPerson(ctx context.Context, personID int) ([]IdentityProfile, error)
	GetByID(ctx context.Context, id int) (*IdentityProfile, error)
	Create(ctx context.Context, personID int, req CreateRequest) (*IdentityProfile, error)
	Update(ctx context.Context, id int, req UpdateRequest) (*IdentityProfile, error)
	Delete(ctx context.Context, id int) (bool, error)
	GetPersonIDByProfileID(ctx context.Context, profileID int) (*int, error)

	// SetAsDefault atomically clears the current default for the target's
	// (person, context) pair and flags the target. Runs in one transaction
	// re-reading the current default inside it, so two concurrent calls
	// cannot leave two defaults set.
	SetAsDefault(ctx context.Context, profileID int) (bool, error)
	UnsetDefault(ctx context.Context, profileID int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListByPerson(ctx context.Context, personID int) ([]IdentityProfile, error) {
	var profiles []IdentityProfile
	err := r.db.WithContext(ctx).
		Where("person_id = ?", personID).
		Order("context, is_default_for_context DESC, display_name").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*IdentityProfile, error) {
	var p IdentityProfile
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, personID int, req CreateRequest) (*IdentityProfile, error) {
	p := IdentityProfile{
		PersonID:    personID,
		DisplayName: req.DisplayName,
		Context:     req.Context,
		BirthDate:   req.BirthDate,
		Title:       req.Title,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
	}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, id int, req UpdateRequest) (*IdentityProfile, error) {
	var p IdentityProfile
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.BirthDate != nil {
		p.BirthDate = req.BirthDate
	}
	if req.Title != nil {
		p.Title = req.Title
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}
	if req.Address != nil {
		p.Address = req.Address
	}

	if err := r.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Delete(ctx context.Context, id int) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&IdentityProfile{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) GetPersonIDByProfileID(ctx context.Context, profileID int) (*int, error) {
	var p IdentityProfile
	err := r.db.WithContext(ctx).Select("id", "person_id").First(&p, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p.PersonID, nil
}

func (r *repository) SetAsDefault(ctx context.Context, profileID int) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Target and current default are both read inside the transaction;
		// a stale read from before it began could let two concurrent swaps
		// each see "no default" and both commit their flag.
		var target IdentityProfile
		if err := tx.First(&target, profileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		found = true
		now := time.Now().UTC()

		err := tx.Model(&IdentityProfile{}).
			Where("person_id = ? AND context = ? AND is_default_for_context AND id <> ?",
				target.PersonID, target.Context, target.ID).
			Updates(map[string]interface{}{
				"is_default_for_context": false,
				"updated_at":             now,
			}).Error
		if err != nil {
			return err
		}

		return tx.Model(&IdentityProfile{}).
			Where("id = ?", target.ID).
			Updates(map[string]interface{}{
				"is_default_for_context": true,
				"updated_at":             now,
			}).Error
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *repository) UnsetDefault(ctx context.Context, profileID int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&IdentityProfile{}).
		Where("id = ?", profileID).
		Updates(map[string]interface{}{
			"is_default_for_context": false,
			"updated_at":             time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
