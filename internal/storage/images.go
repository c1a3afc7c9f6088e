package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"path"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

// ThumbnailWidth は生成するサムネイルの幅。高さは
// 縦横比を保つ
const ThumbnailWidth = 800

// ErrInvalidImage はアップロードされた内容を画像としてデコードできない場合に返す
var ErrInvalidImage = errors.New("invalid image")

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// MakeThumbnail は JPEG か PNG をデコードし、幅 width 以下の JPEG にする。
// 小さい画像はそのままのサイズで再エンコードする
func MakeThumbnail(data []byte, width uint) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if uint(img.Bounds().Dx()) > width {
		img = resize.Resize(width, 0, img, resize.Lanczos3)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// Images はアップロード画像をサムネイルと一緒に保存する
type Images struct {
	store Storage
}

// NewImages は store を包む
func NewImages(store Storage) *Images {
	return &Images{store: store}
}

// Put は data を prefix 配下に保存し、元画像とサムネイルの URL を返す。
// デコードできない形式（WebP）は元画像をサムネイルとして使う
func (im *Images) Put(ctx context.Context, prefix, contentType string, data []byte) (string, string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", "", fmt.Errorf("unsupported content type %q", contentType)
	}
	var thumb []byte
	if contentType != "image/webp" {
		var err error
		if thumb, err = MakeThumbnail(data, ThumbnailWidth); err != nil {
			return "", "", err
		}
	}

	name := uuid.NewString()
	url, err := im.store.Save(ctx, path.Join(prefix, name+ext), bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return "", "", err
	}
	if thumb == nil {
		return url, url, nil
	}
	thumbURL, err := im.store.Save(ctx, path.Join(prefix, name+"_thumb.jpg"), bytes.NewReader(thumb), int64(len(thumb)), "image/jpeg")
	if err != nil {
		return "", "", err
	}
	return url, thumbURL, nil
}
