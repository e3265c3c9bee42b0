package user

import (
	"strings"
	"time"

	"ddd-commerce/domain/shared"
)

// MinOrderAge youngest age allowed to place orders
const MinOrderAge = 18

// User 用户聚合根
// User has no child entities; the aggregate is the user itself.
type User struct {
	id        string
	name      string
	email     Email
	password  Password
	age       int
	isActive  bool
	version   int // 乐观锁版本号, advanced by the repository
	createdAt time.Time
	updatedAt time.Time
}

// NewUser 创建新用户
// id comes from Repository.NextIdentity.
func NewUser(id, name, email, rawPassword string, age int) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.NewValidationError("user", "id", "user id cannot be empty")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewInvalidNameError()
	}

	emailVO, err := NewEmail(email)
	if err != nil {
		return nil, err
	}

	if age < 0 || age > 150 {
		return nil, NewInvalidAgeError(age)
	}

	password, err := NewPassword(rawPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &User{
		id:        id,
		name:      name,
		email:     emailVO,
		password:  password,
		age:       age,
		isActive:  true,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ============================================================================
// 领域行为方法
// ============================================================================

// Activate 激活用户
func (u *User) Activate() {
	u.isActive = true
	u.updatedAt = time.Now()
}

// Deactivate 停用用户
func (u *User) Deactivate() {
	u.isActive = false
	u.updatedAt = time.Now()
}

// Rename 更新用户名称
func (u *User) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewInvalidNameError()
	}
	u.name = name
	u.updatedAt = time.Now()
	return nil
}

// ChangePassword replaces the password after checking the current one.
func (u *User) ChangePassword(current, next string) error {
	if !u.password.Matches(current) {
		return NewPasswordMismatchError()
	}
	password, err := NewPassword(next)
	if err != nil {
		return err
	}
	u.password = password
	u.updatedAt = time.Now()
	return nil
}

// CheckPassword reports whether raw matches the stored password.
func (u *User) CheckPassword(raw string) bool {
	return u.password.Matches(raw)
}

// CanPlaceOrder 业务规则：用户必须激活且年满18岁
func (u *User) CanPlaceOrder() error {
	if !u.isActive {
		return NewUserNotActiveError(u.id)
	}
	if u.age < MinOrderAge {
		return NewUserTooYoungError(u.id, u.age)
	}
	return nil
}

// IncrementVersionForSave is called by the repository after a successful write.
func (u *User) IncrementVersionForSave() {
	u.version++
}

// ============================================================================
// Getters
// ============================================================================
func (u *User) ID() string           { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() Email         { return u.email }
func (u *User) Password() Password   { return u.password }
func (u *User) Age() int             { return u.age }
func (u *User) IsActive() bool       { return u.isActive }
func (u *User) Version() int         { return u.version }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// ReconstructionDTO 用户重建数据传输对象
// ⚠️ Repository implementations only.
type ReconstructionDTO struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Age          int
	IsActive     bool
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Snapshot exports the aggregate state for storage.
func (u *User) Snapshot() ReconstructionDTO {
	return ReconstructionDTO{
		ID:           u.id,
		Name:         u.name,
		Email:        u.email.Value(),
		PasswordHash: u.password.Hash(),
		Age:          u.age,
		IsActive:     u.isActive,
		Version:      u.version,
		CreatedAt:    u.createdAt,
		UpdatedAt:    u.updatedAt,
	}
}

// RebuildFromDTO 从DTO重建User聚合根
// Stored data is trusted; no validation runs here.
func RebuildFromDTO(dto ReconstructionDTO) *User {
	return &User{
		id:        dto.ID,
		name:      dto.Name,
		email:     Email{value: dto.Email},
		password:  PasswordFromHash(dto.PasswordHash),
		age:       dto.Age,
		isActive:  dto.IsActive,
		version:   dto.Version,
		createdAt: dto.CreatedAt,
		updatedAt: dto.UpdatedAt,
	}
}

// 编译时检查 User 实现了 AggregateRoot 接口
var _ shared.AggregateRoot = (*User)(nil)
