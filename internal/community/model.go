package community

import (
	"time"

	"github.com/SlpAus/plantify-backend/internal/user"
)

// Post 是社区帖子。Upvotes 始终等于点赞记录的数量，每次点赞切换后重新统计写回。
type Post struct {
	ID     uint      `gorm:"primarykey"`
	UserID uint      `gorm:"index;not null"`
	User   user.User `gorm:"constraint:OnDelete:CASCADE"`

	Title   string   `gorm:"size:255;not null"`
	Body    string   `gorm:"type:text;not null"`
	Tags    []string `gorm:"serializer:json;type:text"`
	Upvotes int      `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (Post) TableName() string { return "community_posts" }

// Like 是一个用户对一个帖子的点赞，(post_id, user_id) 唯一
type Like struct {
	ID     uint      `gorm:"primarykey"`
	PostID uint      `gorm:"uniqueIndex:idx_post_like_user;not null"`
	Post   Post      `gorm:"constraint:OnDelete:CASCADE"`
	UserID uint      `gorm:"uniqueIndex:idx_post_like_user;not null"`
	User   user.User `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
}

func (Like) TableName() string { return "community_post_likes" }

// Comment 是帖子下的评论，ParentID 非空时是对另一条评论的回复
type Comment struct {
	ID       uint      `gorm:"primarykey"`
	PostID   uint      `gorm:"index;not null"`
	Post     Post      `gorm:"constraint:OnDelete:CASCADE"`
	UserID   uint      `gorm:"index;not null"`
	User     user.User `gorm:"constraint:OnDelete:CASCADE"`
	ParentID *uint     `gorm:"index"`
	Parent   *Comment  `gorm:"constraint:OnDelete:CASCADE"`

	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (Comment) TableName() string { return "community_comments" }

// PostCreate 是发帖的请求体
type PostCreate struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

// PostUpdate 是修改帖子的请求体，nil 表示未提供
type PostUpdate struct {
	Title *string   `json:"title"`
	Body  *string   `json:"body"`
	Tags  *[]string `json:"tags"`
}

// CommentCreate 是发表评论的请求体
type CommentCreate struct {
	Body     string `json:"body"`
	ParentID *uint  `json:"parentId"`
}

// PostSchema 是帖子的响应体
type PostSchema struct {
	ID            uint     `json:"id"`
	Author        string   `json:"author"`
	AuthorID      uint     `json:"authorId"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
	Likes         int      `json:"likes"`
	IsLiked       bool     `json:"isLiked"`
	CommentsCount int      `json:"commentsCount"`
	Tags          []string `json:"tags"`
	IsOwner       bool     `json:"isOwner"`
}

// CommentSchema 是评论的响应体
type CommentSchema struct {
	ID        uint   `json:"id"`
	PostID    uint   `json:"postId"`
	ParentID  *uint  `json:"parentId"`
	Author    string `json:"author"`
	AuthorID  uint   `json:"authorId"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
	IsOwner   bool   `json:"isOwner"`
}

// LikeResult 是点赞切换的结果
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}
