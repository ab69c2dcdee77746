package community

import (
	"context"
	"testing"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/SlpAus/plantify-backend/internal/testutil"
	"github.com/SlpAus/plantify-backend/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   *Service
	alice user.Principal
	bob   user.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t, &user.User{}, &Post{}, &Like{}, &Comment{})
	alice := user.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x"}
	bob := user.User{Email: "bob@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)
	return &fixture{
		db:    db,
		svc:   NewService(db),
		alice: user.Principal{UserID: alice.ID},
		bob:   user.Principal{UserID: bob.ID},
	}
}

func (f *fixture) post(t *testing.T, p user.Principal, title string) *PostSchema {
	t.Helper()
	post, err := f.svc.CreatePost(context.Background(), p, PostCreate{Title: title, Body: "isi " + title})
	require.NoError(t, err)
	return post
}

func (f *fixture) upvotes(t *testing.T, id uint) int {
	t.Helper()
	var post Post
	require.NoError(t, f.db.First(&post, id).Error)
	return post.Upvotes
}

func TestCreatePostTrimsAndValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.alice, PostCreate{Title: "  Daun kuning ", Body: " Kenapa? ", Tags: []string{" tomat", "", "hama "}})
	require.NoError(t, err)
	assert.Equal(t, "Daun kuning", post.Title)
	assert.Equal(t, "Kenapa?", post.Body)
	assert.Equal(t, []string{"tomat", "hama"}, post.Tags)
	assert.Equal(t, "Alice", post.Author)
	assert.True(t, post.IsOwner)
	assert.Zero(t, post.Likes)

	for _, in := range []PostCreate{{Title: " ", Body: "x"}, {Title: "x", Body: "\n"}} {
		_, err := f.svc.CreatePost(ctx, f.alice, in)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		assert.Equal(t, "Judul dan isi wajib diisi.", err.Error())
	}
}

func TestToggleLikeRecountsUpvotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t, f.alice, "Karat daun")

	res, err := f.svc.ToggleLike(ctx, f.alice, post.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, Likes: 1}, res)

	res, err = f.svc.ToggleLike(ctx, f.bob, post.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, Likes: 2}, res)
	assert.Equal(t, 2, f.upvotes(t, post.ID))

	// 连续切换两次回到原状态
	res, err = f.svc.ToggleLike(ctx, f.bob, post.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: false, Likes: 1}, res)
	res, err = f.svc.ToggleLike(ctx, f.bob, post.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, Likes: 2}, res)

	_, err = f.svc.ToggleLike(ctx, f.bob, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestToggleLikeFixesDriftedCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t, f.alice, "Embun tepung")
	require.NoError(t, f.db.Model(&Post{}).Where("id = ?", post.ID).UpdateColumn("upvotes", 42).Error)

	res, err := f.svc.ToggleLike(ctx, f.bob, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Likes)
	assert.Equal(t, 1, f.upvotes(t, post.ID))
}

func TestListPostsStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := f.post(t, f.alice, "lama")
	newer := f.post(t, f.bob, "baru")

	_, err := f.svc.ToggleLike(ctx, f.alice, older.ID)
	require.NoError(t, err)
	_, err = f.svc.ToggleLike(ctx, f.bob, older.ID)
	require.NoError(t, err)
	_, err = f.svc.CreateComment(ctx, f.bob, older.ID, CommentCreate{Body: "setuju"})
	require.NoError(t, err)

	posts, err := f.svc.ListPosts(ctx, f.bob)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, "bob@example.com", posts[0].Author)
	assert.True(t, posts[0].IsOwner)
	assert.Equal(t, []string{}, posts[0].Tags)

	assert.Equal(t, older.ID, posts[1].ID)
	assert.Equal(t, 2, posts[1].Likes)
	assert.True(t, posts[1].IsLiked)
	assert.Equal(t, 1, posts[1].CommentsCount)
	assert.False(t, posts[1].IsOwner)
}

func TestPostOwnershipIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t, f.alice, "milik alice")
	title := "diubah bob"

	_, err := f.svc.UpdatePost(ctx, f.bob, post.ID, PostUpdate{Title: &title})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.True(t, apperr.Is(f.svc.DeletePost(ctx, f.bob, post.ID), apperr.KindForbidden))

	_, err = f.svc.UpdatePost(ctx, f.bob, 999, PostUpdate{Title: &title})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t, f.alice, "judul")

	title, tags := "  judul baru ", []string{"cabai"}
	updated, err := f.svc.UpdatePost(ctx, f.alice, post.ID, PostUpdate{Title: &title, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, "judul baru", updated.Title)
	assert.Equal(t, "isi judul", updated.Body)
	assert.Equal(t, []string{"cabai"}, updated.Tags)

	var stored Post
	require.NoError(t, f.db.First(&stored, post.ID).Error)
	assert.Equal(t, []string{"cabai"}, stored.Tags)

	empty := " "
	_, err = f.svc.UpdatePost(ctx, f.alice, post.ID, PostUpdate{Body: &empty})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDeletePostCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t, f.alice, "hapus")
	_, err := f.svc.ToggleLike(ctx, f.bob, post.ID)
	require.NoError(t, err)
	_, err = f.svc.CreateComment(ctx, f.bob, post.ID, CommentCreate{Body: "x"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePost(ctx, f.alice, post.ID))

	var likes, comments int64
	require.NoError(t, f.db.Model(&Like{}).Count(&likes).Error)
	require.NoError(t, f.db.Model(&Comment{}).Count(&comments).Error)
	assert.Zero(t, likes)
	assert.Zero(t, comments)
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t, f.alice, "diskusi")
	other := f.post(t, f.alice, "lain")

	root, err := f.svc.CreateComment(ctx, f.bob, post.ID, CommentCreate{Body: " pertama "})
	require.NoError(t, err)
	assert.Equal(t, "pertama", root.Body)
	assert.Nil(t, root.ParentID)

	reply, err := f.svc.CreateComment(ctx, f.alice, post.ID, CommentCreate{Body: "balasan", ParentID: &root.ID})
	require.NoError(t, err)
	assert.Equal(t, root.ID, *reply.ParentID)
	assert.Equal(t, "Alice", reply.Author)

	_, err = f.svc.CreateComment(ctx, f.alice, other.ID, CommentCreate{Body: "salah", ParentID: &root.ID})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.CreateComment(ctx, f.alice, post.ID, CommentCreate{Body: "  "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	comments, err := f.svc.ListComments(ctx, f.alice, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, root.ID, comments[0].ID)
	assert.False(t, comments[0].IsOwner)
	assert.True(t, comments[1].IsOwner)

	assert.True(t, apperr.Is(f.svc.DeleteComment(ctx, f.alice, post.ID, root.ID), apperr.KindForbidden))
	assert.True(t, apperr.Is(f.svc.DeleteComment(ctx, f.bob, other.ID, root.ID), apperr.KindNotFound))

	// 删除根评论时回复一起删除
	require.NoError(t, f.svc.DeleteComment(ctx, f.bob, post.ID, root.ID))
	comments, err = f.svc.ListComments(ctx, f.alice, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestUserDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.post(t, f.bob, "punya bob")
	_, err := f.svc.ToggleLike(ctx, f.alice, post.ID)
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&user.User{}, f.alice.UserID).Error)

	var likes int64
	require.NoError(t, f.db.Model(&Like{}).Count(&likes).Error)
	assert.Zero(t, likes)
}
