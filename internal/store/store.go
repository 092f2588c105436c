package store

import (
	"context"
	"fmt"
	"time"

	"github.com/prodkart/backend/models"
	"gorm.io/gorm"
)

// SubmissionStore owns persistence of submission records. Create applies the
// schema defaults and required-field checks at the storage boundary;
// FindByUser is an exact-match lookup, storage-default order, no pagination.
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	FindByUser(ctx context.Context, userName, userEmail string) ([]models.Submission, error)
}

type SubmissionStoreImpl struct {
	db *gorm.DB
}

func NewSubmissionStore(db *gorm.DB) SubmissionStore {
	return &SubmissionStoreImpl{db: db}
}

func (s *SubmissionStoreImpl) Create(ctx context.Context, sub *models.Submission) error {
	if err := validateRequired(sub); err != nil {
		return err
	}
	if sub.ProductNumber == 0 {
		sub.ProductNumber = 1
	}
	if sub.Date.IsZero() {
		sub.Date = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func (s *SubmissionStoreImpl) FindByUser(ctx context.Context, userName, userEmail string) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.WithContext(ctx).
		Where("user_name = ? AND user_email = ?", userName, userEmail).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	return subs, nil
}

func validateRequired(sub *models.Submission) error {
	required := map[string]string{
		"userName":    sub.UserName,
		"userEmail":   sub.UserEmail,
		"ingredients": sub.Ingredients,
		"size":        sub.Size,
		"cost":        sub.Cost,
		"server":      sub.Server,
		"description": sub.Description,
		"image1Url":   sub.Image1URL,
	}
	for field, val := range required {
		if val == "" {
			return fmt.Errorf("submission missing required field %s", field)
		}
	}
	return nil
}
