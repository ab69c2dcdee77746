package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/SlpAus/plantify-backend/internal/testutil"
	"github.com/SlpAus/plantify-backend/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// upload 模拟一个属于用户、需要级联删除的记录
type upload struct {
	ID     uint `gorm:"primarykey"`
	UserID uint
	User   User `gorm:"constraint:OnDelete:CASCADE"`
	Path   string
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t, &User{}, &upload{})
	issuer := token.NewIssuer("test-secret", time.Hour, 24*time.Hour)
	return NewService(db, issuer), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, "  Sari ", " Sari@Example.com ", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, "Sari", resp.User.Name)
	assert.Equal(t, "sari@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	login, err := svc.Login(ctx, "SARI@example.com", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(ctx, "sari@example.com", "salah")
	assert.True(t, apperr.Is(err, apperr.KindAuthenticationFailed))
	_, err = svc.Login(ctx, "nobody@example.com", "rahasia123")
	assert.True(t, apperr.Is(err, apperr.KindAuthenticationFailed))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "A", "a@example.com", "rahasia123")
	require.NoError(t, err)

	tests := []struct {
		name, email, password string
	}{
		{"duplicate email", "A@example.com", "rahasia123"},
		{"bad email", "not-an-email", "rahasia123"},
		{"missing domain", "sari@", "rahasia123"},
		{"display name form", "Sari <sari@example.com>", "rahasia123"},
		{"short password", "b@example.com", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, "B", tt.email, tt.password)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "%v", err)
		})
	}
}

func TestDeleteAccountCascadesAndRemovesFiles(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, "A", "a@example.com", "rahasia123")
	require.NoError(t, err)
	other, err := svc.Register(ctx, "B", "b@example.com", "rahasia123")
	require.NoError(t, err)

	require.NoError(t, db.Create(&upload{UserID: resp.User.ID, Path: "scans/a.jpg"}).Error)
	require.NoError(t, db.Create(&upload{UserID: other.User.ID, Path: "scans/b.jpg"}).Error)

	var removed []string
	svc.OnAccountDelete(func(tx *gorm.DB, userID uint) ([]string, error) {
		var paths []string
		err := tx.Model(&upload{}).Where("user_id = ?", userID).Pluck("path", &paths).Error
		return paths, err
	}, func(path string) { removed = append(removed, path) })

	require.NoError(t, svc.DeleteAccount(ctx, Principal{UserID: resp.User.ID}))

	assert.Equal(t, []string{"scans/a.jpg"}, removed)
	var remaining []upload
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.User.ID, remaining[0].UserID)

	_, err = svc.Me(ctx, Principal{UserID: resp.User.ID})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = svc.DeleteAccount(ctx, Principal{UserID: resp.User.ID})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRefreshAndVerify(t *testing.T) {
	svc, _ := newTestService(t)
	resp, err := svc.Register(context.Background(), "A", "a@example.com", "rahasia123")
	require.NoError(t, err)

	access, err := svc.RefreshAccess(resp.RefreshToken)
	require.NoError(t, err)
	require.NoError(t, svc.Verify(access))

	_, err = svc.RefreshAccess(resp.AccessToken)
	assert.True(t, apperr.Is(err, apperr.KindAuthenticationFailed))
	assert.True(t, apperr.Is(svc.Verify("garbage"), apperr.KindAuthenticationFailed))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Sari", (&User{Name: "Sari", Email: "s@x.id"}).DisplayName())
	assert.Equal(t, "s@x.id", (&User{Email: "s@x.id"}).DisplayName())
}

func TestDeleteAccountRoutesFilesToTheirRemover(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	resp, err := svc.Register(ctx, "A", "a@example.com", "rahasia123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&upload{UserID: resp.User.ID, Path: "scans/a.jpg"}).Error)

	var images, avatars []string
	svc.OnAccountDelete(func(tx *gorm.DB, userID uint) ([]string, error) {
		var paths []string
		err := tx.Model(&upload{}).Where("user_id = ?", userID).Pluck("path", &paths).Error
		return paths, err
	}, func(path string) { images = append(images, path) })
	svc.OnAccountDelete(func(*gorm.DB, uint) ([]string, error) {
		return []string{"avatars/a.png"}, nil
	}, func(path string) { avatars = append(avatars, path) })

	require.NoError(t, svc.DeleteAccount(ctx, Principal{UserID: resp.User.ID}))
	assert.Equal(t, []string{"scans/a.jpg"}, images)
	assert.Equal(t, []string{"avatars/a.png"}, avatars)
}

func TestDeleteAccountCollectorFailureKeepsUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	resp, err := svc.Register(ctx, "A", "a@example.com", "rahasia123")
	require.NoError(t, err)

	removed := 0
	svc.OnAccountDelete(func(*gorm.DB, uint) ([]string, error) {
		return []string{"scans/a.jpg"}, nil
	}, func(string) { removed++ })
	svc.OnAccountDelete(func(*gorm.DB, uint) ([]string, error) {
		return nil, errors.New("db closed")
	}, func(string) { removed++ })

	require.Error(t, svc.DeleteAccount(ctx, Principal{UserID: resp.User.ID}))
	assert.Zero(t, removed)
	_, err = svc.Me(ctx, Principal{UserID: resp.User.ID})
	assert.NoError(t, err)
}
