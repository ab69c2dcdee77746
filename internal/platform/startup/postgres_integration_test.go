//go:build integration

package startup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SlpAus/plantify-backend/internal/community"
	"github.com/SlpAus/plantify-backend/internal/dashboard"
	"github.com/SlpAus/plantify-backend/internal/platform/database"
	"github.com/SlpAus/plantify-backend/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "plantify",
				"POSTGRES_PASSWORD": "plantify",
				"POSTGRES_DB":       "plantify",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=plantify password=plantify dbname=plantify sslmode=disable", host, port.Port())
	db, err := database.OpenPostgres(dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPostgresMigrateAndCascade(t *testing.T) {
	db := startPostgres(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	ctx := context.Background()
	alice := user.User{Email: "alice@example.com", PasswordHash: "x"}
	bob := user.User{Email: "bob@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	svc := community.NewService(db)
	post, err := svc.CreatePost(ctx, user.Principal{UserID: bob.ID}, community.PostCreate{Title: "Halo", Body: "Isi", Tags: []string{"padi"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"padi"}, post.Tags)

	res, err := svc.ToggleLike(ctx, user.Principal{UserID: alice.ID}, post.ID)
	require.NoError(t, err)
	assert.Equal(t, community.LikeResult{Liked: true, Likes: 1}, res)

	metrics, err := dashboard.NewAggregator(db).ComputeMetrics(ctx, time.Now().Add(time.Second))
	require.NoError(t, err)
	require.Len(t, metrics, 4)
	assert.Equal(t, "100.0%", metrics[3].Value)
	assert.Equal(t, dashboard.NoData, metrics[2].Value)

	require.NoError(t, db.Delete(&user.User{}, alice.ID).Error)
	var likes int64
	require.NoError(t, db.Model(&community.Like{}).Count(&likes).Error)
	assert.Zero(t, likes)
}
