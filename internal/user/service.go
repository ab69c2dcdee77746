package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/SlpAus/plantify-backend/pkg/token"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// FileCollector 在删除账号的事务中收集该用户拥有的文件路径，供提交后清理。
type FileCollector func(tx *gorm.DB, userID uint) ([]string, error)

// FileRemover 删除一个已保存的文件
type FileRemover func(path string)

// fileCleanup 是一组收集器和对应的删除函数
type fileCleanup struct {
	collect FileCollector
	remove  FileRemover
}

// Service 实现注册、登录和账号管理
type Service struct {
	db       *gorm.DB
	issuer   *token.Issuer
	cleanups []fileCleanup
}

// NewService 创建用户服务
func NewService(db *gorm.DB, issuer *token.Issuer) *Service {
	return &Service{db: db, issuer: issuer}
}

// OnAccountDelete 注册删除账号时需要一并清理的文件
func (s *Service) OnAccountDelete(collect FileCollector, remove FileRemover) {
	s.cleanups = append(s.cleanups, fileCleanup{collect: collect, remove: remove})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validate 与gin绑定使用的是同一个校验器，规则写法与请求结构体的 binding 标签一致
var validate = validator.New()

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

func (s *Service) authResponse(u *User) (*AuthResponse, error) {
	pair, err := s.issuer.IssuePair(u.ID)
	if err != nil {
		return nil, apperr.Internal("签发令牌失败", err)
	}
	return &AuthResponse{AccessToken: pair.Access, RefreshToken: pair.Refresh, User: toSchema(u)}, nil
}

// Register 创建用户并返回令牌对
func (s *Service) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, apperr.Validation("Email tidak valid.")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Validation(fmt.Sprintf("Password minimal %d karakter.", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("密码哈希失败", err)
	}

	u := &User{Name: strings.TrimSpace(name), Email: email, PasswordHash: string(hash)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Validation("Email sudah terdaftar.")
		}
		return tx.Create(u).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validation("Email sudah terdaftar.")
		}
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	logger.Log.Infof("新用户已注册: id=%d", u.ID)
	return s.authResponse(u)
}

// Authenticate 校验邮箱和密码
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.AuthenticationFailed("Invalid credentials")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.AuthenticationFailed("Invalid credentials")
	}
	return &u, nil
}

// Login 校验凭据并返回令牌对
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.authResponse(u)
}

// Get 按ID读取用户
func (s *Service) Get(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Pengguna tidak ditemukan.")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &u, nil
}

// Me 返回当前用户的信息
func (s *Service) Me(ctx context.Context, p Principal) (UserSchema, error) {
	u, err := s.Get(ctx, p.UserID)
	if err != nil {
		return UserSchema{}, err
	}
	return toSchema(u), nil
}

// DeleteAccount 删除用户。数据库外键级联删除该用户拥有的所有记录，
// 上传的图片文件在事务提交后删除。
func (s *Service) DeleteAccount(ctx context.Context, p Principal) error {
	// 与 s.cleanups 一一对应
	files := make([][]string, len(s.cleanups))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, c := range s.cleanups {
			paths, err := c.collect(tx, p.UserID)
			if err != nil {
				return fmt.Errorf("收集用户文件失败: %w", err)
			}
			files[i] = paths
		}
		res := tx.Delete(&User{}, p.UserID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Pengguna tidak ditemukan.")
		}
		return nil
	})
	if err != nil {
		return err
	}

	removed := 0
	for i, c := range s.cleanups {
		if c.remove == nil {
			continue
		}
		for _, path := range files[i] {
			c.remove(path)
			removed++
		}
	}
	logger.Log.Infof("用户账号已删除: id=%d, 清理文件 %d 个", p.UserID, removed)
	return nil
}

// RefreshAccess 用刷新令牌换取新的访问令牌
func (s *Service) RefreshAccess(refresh string) (string, error) {
	access, err := s.issuer.Refresh(refresh)
	if err != nil {
		return "", apperr.AuthenticationFailed("Token is invalid or expired")
	}
	return access, nil
}

// Verify 检查任意类型的令牌是否有效
func (s *Service) Verify(tok string) error {
	if _, err := s.issuer.Parse(tok, ""); err != nil {
		return apperr.AuthenticationFailed("Token is invalid or expired")
	}
	return nil
}

// IssuePair 为已认证的凭据签发令牌对
func (s *Service) IssuePair(ctx context.Context, email, password string) (token.Pair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return token.Pair{}, err
	}
	pair, err := s.issuer.IssuePair(u.ID)
	if err != nil {
		return token.Pair{}, apperr.Internal("签发令牌失败", err)
	}
	return pair, nil
}
