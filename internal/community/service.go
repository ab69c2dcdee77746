package community

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/SlpAus/plantify-backend/internal/user"
	"gorm.io/gorm"
)

// Service 实现社区帖子、评论和点赞
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// postStats 是一个帖子的点赞数、评论数以及调用者是否已点赞
type postStats struct {
	likes    int
	comments int
	liked    bool
}

type countRow struct {
	PostID uint
	N      int
}

// loadStats 用分组统计一次性取出给定帖子的统计信息
func (s *Service) loadStats(db *gorm.DB, p user.Principal, ids []uint) (map[uint]*postStats, error) {
	stats := make(map[uint]*postStats, len(ids))
	for _, id := range ids {
		stats[id] = &postStats{}
	}
	if len(ids) == 0 {
		return stats, nil
	}

	var likeRows, commentRows []countRow
	if err := db.Model(&Like{}).Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).Group("post_id").Scan(&likeRows).Error; err != nil {
		return nil, fmt.Errorf("统计点赞失败: %w", err)
	}
	if err := db.Model(&Comment{}).Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).Group("post_id").Scan(&commentRows).Error; err != nil {
		return nil, fmt.Errorf("统计评论失败: %w", err)
	}
	var likedIDs []uint
	if err := db.Model(&Like{}).Where("post_id IN ? AND user_id = ?", ids, p.UserID).
		Pluck("post_id", &likedIDs).Error; err != nil {
		return nil, fmt.Errorf("查询点赞状态失败: %w", err)
	}

	for _, r := range likeRows {
		stats[r.PostID].likes = r.N
	}
	for _, r := range commentRows {
		stats[r.PostID].comments = r.N
	}
	for _, id := range likedIDs {
		stats[id].liked = true
	}
	return stats, nil
}

func toPostSchema(post *Post, st *postStats, p user.Principal) PostSchema {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostSchema{
		ID:            post.ID,
		Author:        post.User.DisplayName(),
		AuthorID:      post.UserID,
		Title:         post.Title,
		Body:          post.Body,
		CreatedAt:     formatTime(post.CreatedAt),
		UpdatedAt:     formatTime(post.UpdatedAt),
		Likes:         st.likes,
		IsLiked:       st.liked,
		CommentsCount: st.comments,
		Tags:          tags,
		IsOwner:       post.UserID == p.UserID,
	}
}

// ListPosts 按时间倒序返回所有帖子
func (s *Service) ListPosts(ctx context.Context, p user.Principal) ([]PostSchema, error) {
	db := s.db.WithContext(ctx)
	var posts []Post
	if err := db.Preload("User").Order("created_at DESC").Order("id DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("查询帖子失败: %w", err)
	}

	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	stats, err := s.loadStats(db, p, ids)
	if err != nil {
		return nil, err
	}

	out := make([]PostSchema, 0, len(posts))
	for i := range posts {
		out = append(out, toPostSchema(&posts[i], stats[posts[i].ID], p))
	}
	return out, nil
}

func (s *Service) getPost(ctx context.Context, id uint) (*Post, error) {
	var post Post
	if err := s.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Postingan tidak ditemukan.")
		}
		return nil, fmt.Errorf("查询帖子失败: %w", err)
	}
	return &post, nil
}

func (s *Service) postSchema(ctx context.Context, post *Post, p user.Principal) (*PostSchema, error) {
	stats, err := s.loadStats(s.db.WithContext(ctx), p, []uint{post.ID})
	if err != nil {
		return nil, err
	}
	out := toPostSchema(post, stats[post.ID], p)
	return &out, nil
}

// CreatePost 发帖，标题和正文去除首尾空白后都不能为空
func (s *Service) CreatePost(ctx context.Context, p user.Principal, in PostCreate) (*PostSchema, error) {
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Body)
	if title == "" || body == "" {
		return nil, apperr.Validation("Judul dan isi wajib diisi.")
	}

	post := &Post{UserID: p.UserID, Title: title, Body: body, Tags: cleanTags(in.Tags)}
	if err := s.db.WithContext(ctx).Omit("User").Create(post).Error; err != nil {
		return nil, fmt.Errorf("创建帖子失败: %w", err)
	}
	logger.Log.Debugf("用户 %d 发布了帖子 %d", p.UserID, post.ID)

	created, err := s.getPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return s.postSchema(ctx, created, p)
}

// UpdatePost 修改自己的帖子，修改他人的帖子返回403
func (s *Service) UpdatePost(ctx context.Context, p user.Principal, id uint, in PostUpdate) (*PostSchema, error) {
	post, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != p.UserID {
		return nil, apperr.Forbidden("Anda tidak dapat mengubah postingan pengguna lain.")
	}

	fields := []string{"UpdatedAt"}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Validation("Judul tidak boleh kosong.")
		}
		post.Title = title
		fields = append(fields, "Title")
	}
	if in.Body != nil {
		body := strings.TrimSpace(*in.Body)
		if body == "" {
			return nil, apperr.Validation("Isi tidak boleh kosong.")
		}
		post.Body = body
		fields = append(fields, "Body")
	}
	if in.Tags != nil {
		post.Tags = cleanTags(*in.Tags)
		fields = append(fields, "Tags")
	}
	post.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Model(post).Omit("User").Select(fields).Updates(post).Error; err != nil {
		return nil, fmt.Errorf("更新帖子失败: %w", err)
	}
	return s.postSchema(ctx, post, p)
}

// DeletePost 删除自己的帖子，点赞和评论随之级联删除
func (s *Service) DeletePost(ctx context.Context, p user.Principal, id uint) error {
	post, err := s.getPost(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != p.UserID {
		return apperr.Forbidden("Anda tidak dapat menghapus postingan pengguna lain.")
	}
	if err := s.db.WithContext(ctx).Delete(&Post{}, post.ID).Error; err != nil {
		return fmt.Errorf("删除帖子失败: %w", err)
	}
	return nil
}

// ToggleLike 切换调用者对帖子的点赞：存在则删除，不存在则创建。
// 之后重新统计该帖子的点赞数并写回 upvotes，不做增减。
func (s *Service) ToggleLike(ctx context.Context, p user.Principal, postID uint) (LikeResult, error) {
	var result LikeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Postingan tidak ditemukan.")
			}
			return fmt.Errorf("查询帖子失败: %w", err)
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, p.UserID).Delete(&Like{})
		if res.Error != nil {
			return fmt.Errorf("取消点赞失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			if err := tx.Omit("Post", "User").Create(&Like{PostID: postID, UserID: p.UserID}).Error; err != nil {
				return fmt.Errorf("点赞失败: %w", err)
			}
			result.Liked = true
		}

		var n int64
		if err := tx.Model(&Like{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
			return fmt.Errorf("统计点赞失败: %w", err)
		}
		result.Likes = int(n)
		return tx.Model(&Post{}).Where("id = ?", postID).UpdateColumn("upvotes", n).Error
	})
	if err != nil {
		return LikeResult{}, err
	}
	return result, nil
}

func toCommentSchema(c *Comment, p user.Principal) CommentSchema {
	return CommentSchema{
		ID:        c.ID,
		PostID:    c.PostID,
		ParentID:  c.ParentID,
		Author:    c.User.DisplayName(),
		AuthorID:  c.UserID,
		Body:      c.Body,
		CreatedAt: formatTime(c.CreatedAt),
		IsOwner:   c.UserID == p.UserID,
	}
}

// ListComments 按时间顺序返回帖子下的全部评论（含回复）
func (s *Service) ListComments(ctx context.Context, p user.Principal, postID uint) ([]CommentSchema, error) {
	if _, err := s.getPost(ctx, postID); err != nil {
		return nil, err
	}
	var comments []Comment
	err := s.db.WithContext(ctx).Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}
	out := make([]CommentSchema, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentSchema(&comments[i], p))
	}
	return out, nil
}

// CreateComment 发表评论，ParentID 指向的评论必须属于同一个帖子
func (s *Service) CreateComment(ctx context.Context, p user.Principal, postID uint, in CommentCreate) (*CommentSchema, error) {
	if _, err := s.getPost(ctx, postID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if in.ParentID != nil {
		var parent Comment
		if err := db.Select("id").Where("id = ? AND post_id = ?", *in.ParentID, postID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("Komentar induk tidak ditemukan.")
			}
			return nil, fmt.Errorf("查询父评论失败: %w", err)
		}
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, apperr.Validation("Komentar tidak boleh kosong.")
	}

	comment := &Comment{PostID: postID, UserID: p.UserID, ParentID: in.ParentID, Body: body}
	if err := db.Omit("Post", "User", "Parent").Create(comment).Error; err != nil {
		return nil, fmt.Errorf("创建评论失败: %w", err)
	}
	if err := db.Preload("User").First(comment, comment.ID).Error; err != nil {
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}
	out := toCommentSchema(comment, p)
	return &out, nil
}

// DeleteComment 删除自己的评论，其回复随之级联删除
func (s *Service) DeleteComment(ctx context.Context, p user.Principal, postID, commentID uint) error {
	db := s.db.WithContext(ctx)
	var comment Comment
	if err := db.Where("id = ? AND post_id = ?", commentID, postID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Komentar tidak ditemukan.")
		}
		return fmt.Errorf("查询评论失败: %w", err)
	}
	if comment.UserID != p.UserID {
		return apperr.Forbidden("Anda tidak dapat menghapus komentar pengguna lain.")
	}
	if err := db.Delete(&Comment{}, comment.ID).Error; err != nil {
		return fmt.Errorf("删除评论失败: %w", err)
	}
	return nil
}
