package user

import (
	"time"
)

// User 是平台的注册用户。Email 唯一且统一保存为小写。
type User struct {
	ID           uint   `gorm:"primarykey"`
	Name         string `gorm:"size:150"`
	Email        string `gorm:"size:254;uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName 返回展示用的名字，未填写姓名时退化为邮箱
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Principal 是经过认证的调用者。
// 中间件只负责从令牌中提取它，业务层的每个操作都显式接收它作为参数。
type Principal struct {
	UserID uint
	Email  string
}

// UserSchema 是返回给前端的用户信息
type UserSchema struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse 是注册和登录的响应体
type AuthResponse struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	User         UserSchema `json:"user"`
}

func toSchema(u *User) UserSchema {
	return UserSchema{ID: u.ID, Name: u.Name, Email: u.Email}
}
