// Package media 管理上传的图片文件。数据库中只保存相对于 Root 的路径。
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/google/uuid"
)

// ErrNotImage 表示上传的文件不是图片
var ErrNotImage = errors.New("文件不是图片")

var extByMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Store 把文件保存在本地目录，并通过 URLPrefix 对外提供
type Store struct {
	Root      string
	URLPrefix string
}

// NewStore 创建存储并确保根目录存在
func NewStore(root, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("无法创建媒体目录: %w", err)
	}
	return &Store{Root: root, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// SaveImage 把图片写入 dir 子目录，文件名为 UUIDv7，返回相对路径（使用 / 分隔）。
// 文件类型根据内容嗅探，不信任客户端给出的类型。
func (s *Store) SaveImage(dir string, r io.Reader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("读取上传文件失败: %w", err)
	}
	head = head[:n]
	ext, ok := extByMime[http.DetectContentType(head)]
	if !ok {
		return "", ErrNotImage
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成文件名: %w", err)
	}
	rel := path.Join(dir, id.String()+ext)
	abs := s.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("无法创建目录: %w", err)
	}

	f, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("无法创建文件: %w", err)
	}
	if _, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), r)); err != nil {
		f.Close()
		os.Remove(abs)
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(abs)
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	return rel, nil
}

// Abs 返回相对路径对应的本地路径
func (s *Store) Abs(rel string) string {
	return filepath.Join(s.Root, filepath.FromSlash(rel))
}

// URL 返回相对路径对应的URL路径（不含主机）
func (s *Store) URL(rel string) string {
	return s.URLPrefix + "/" + rel
}

// Remove 删除文件，文件不存在不算错误
func (s *Store) Remove(rel string) {
	if rel == "" {
		return
	}
	if err := os.Remove(s.Abs(rel)); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Log.Warnf("删除媒体文件失败: %s: %v", rel, err)
	}
}
