// Package service はスタジオサイトのビジネスロジック（プロジェクトの
// 参照と管理、お問い合わせ、管理者サインイン）をまとめる。
package service

import (
	"context"
	"strconv"
	"time"
)

// DefaultStoreTimeout は設定がない場合のストア呼び出し 1 回あたりの上限
const DefaultStoreTimeout = 5 * time.Second

// MaxPage は一覧で受け付ける最大のページ番号
const MaxPage = 10000

// storeCtx はストア呼び出し 1 回分の期限付きコンテキストを作る
func storeCtx(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}

func clamp(v, def, max int) int {
	if v < 1 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// pageNumber は 1 始まりのページ番号を正規化する。1 未満は先頭ページ、
// MaxPage を超える値はエラー
func pageNumber(page int) (int, error) {
	if page < 1 {
		return 1, nil
	}
	if page > MaxPage {
		return 0, NewValidationError("page", "must be at most "+strconv.Itoa(MaxPage))
	}
	return page, nil
}
