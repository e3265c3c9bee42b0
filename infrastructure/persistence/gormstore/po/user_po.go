package po

import (
	"time"

	"ddd-commerce/domain/user"
)

type UserPO struct {
	ID           string `gorm:"primaryKey;size:64"`
	Name         string `gorm:"size:100;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:100;not null"`
	Age          int    `gorm:"not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	Version      int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserPO) TableName() string {
	return "users"
}

func FromUserDomain(u *user.User) *UserPO {
	snap := u.Snapshot()
	return &UserPO{
		ID:           snap.ID,
		Name:         snap.Name,
		Email:        snap.Email,
		PasswordHash: snap.PasswordHash,
		Age:          snap.Age,
		IsActive:     snap.IsActive,
		Version:      snap.Version,
		CreatedAt:    snap.CreatedAt,
		UpdatedAt:    snap.UpdatedAt,
	}
}

func (po *UserPO) ToDomain() *user.User {
	return user.RebuildFromDTO(user.ReconstructionDTO{
		ID:           po.ID,
		Name:         po.Name,
		Email:        po.Email,
		PasswordHash: po.PasswordHash,
		Age:          po.Age,
		IsActive:     po.IsActive,
		Version:      po.Version,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	})
}
