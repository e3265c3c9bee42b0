package gormstore

import (
	"context"
	"errors"

	"ddd-commerce/domain/shared"
	"ddd-commerce/domain/user"
	"ddd-commerce/infrastructure/persistence/gormstore/po"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	store
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{store{db: db}}
}

func (r *UserRepository) NextIdentity() string {
	return "user-" + uuid.New().String()
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	userPO := po.FromUserDomain(u)
	return r.write(ctx, "user.Create", func(tx *gorm.DB) error {
		if err := tx.Create(userPO).Error; err != nil {
			if isDuplicateKeyError(err) {
				return user.NewEmailAlreadyExistsError(userPO.Email)
			}
			return storeErr("user.Create", err)
		}
		return nil
	})
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	userPO := po.FromUserDomain(u)
	expectedVersion := u.Version()

	err := r.write(ctx, "user.Update", func(tx *gorm.DB) error {
		// 严格乐观锁：必须使用聚合当前版本作为更新条件，避免静默覆盖并发写入。
		result := tx.Model(&po.UserPO{}).
			Where("id = ? AND version = ?", u.ID(), expectedVersion).
			Updates(map[string]any{
				"name":          userPO.Name,
				"email":         userPO.Email,
				"password_hash": userPO.PasswordHash,
				"age":           userPO.Age,
				"is_active":     userPO.IsActive,
				"version":       expectedVersion + 1,
				"updated_at":    userPO.UpdatedAt,
			})
		if result.Error != nil {
			if isDuplicateKeyError(result.Error) {
				return user.NewEmailAlreadyExistsError(userPO.Email)
			}
			return storeErr("user.Update", result.Error)
		}
		if result.RowsAffected == 0 {
			return storeErr("user.Update", versionConflict(tx, &po.UserPO{}, u.ID(),
				user.NewUserNotFoundError, user.NewConcurrentModificationError))
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.IncrementVersionForSave()
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var userPO po.UserPO
	if err := r.getDB(ctx).First(&userPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.NewUserNotFoundError(id)
		}
		return nil, storeErr("user.FindByID", err)
	}
	return userPO.ToDomain(), nil
}

func (r *UserRepository) FindOne(ctx context.Context, spec shared.Specification[*user.User]) (*user.User, error) {
	users, err := r.find(ctx, spec, 1)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, user.NewUserNotFoundError("")
	}
	return users[0], nil
}

func (r *UserRepository) FindAll(ctx context.Context, spec shared.Specification[*user.User]) ([]*user.User, error) {
	return r.find(ctx, spec, 0)
}

func (r *UserRepository) find(ctx context.Context, spec shared.Specification[*user.User], limit int) ([]*user.User, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	db := r.getDB(ctx).Order("created_at, id")
	scope, translated := UserSpecs.Scope(spec)
	if translated {
		db = db.Scopes(scope)
		if limit > 0 {
			db = db.Limit(limit)
		}
	}

	var userPOs []po.UserPO
	if err := db.Find(&userPOs).Error; err != nil {
		return nil, storeErr("user.FindAll", err)
	}
	users := make([]*user.User, len(userPOs))
	for i := range userPOs {
		users[i] = userPOs[i].ToDomain()
	}
	if translated {
		return users, nil
	}
	return filter(ctx, spec, users, limit), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.write(ctx, "user.Delete", func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&po.UserPO{})
		if result.Error != nil {
			return storeErr("user.Delete", result.Error)
		}
		if result.RowsAffected == 0 {
			return user.NewUserNotFoundError(id)
		}
		return nil
	})
}

var _ user.Repository = (*UserRepository)(nil)
