package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"kolo/internal/models"
)

// Users is the read-side user directory.
type Users struct {
	db *gorm.DB
}

// NewUsers creates the directory.
func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// UserByID fetches a user by primary key.
func (r *Users) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
