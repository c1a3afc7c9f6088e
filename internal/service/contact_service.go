package service

import (
	"context"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
)

// お問い合わせ一覧のページング既定値
const (
	DefaultContactLimit = 10
	MaxContactLimit     = 50
)

// ContactInput は公開フォームから送られる内容
type ContactInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	ProjectType string `json:"projectType"`
	Budget      string `json:"budget"`
	Timeline    string `json:"timeline"`
	Location    string `json:"location"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
}

// ClientContext はレート制限と不正調査のための送信元情報
type ClientContext struct {
	IP        string
	UserAgent string
}

// ContactListParams は一覧の取得条件。Status には
// model.NormalizeContactStatus が受け付ける旧表記も使える
type ContactListParams struct {
	Status string
	Page   int
	Limit  int
}

// ContactService はお問い合わせに関するビジネスロジックのインターフェース
type ContactService interface {
	// Submit は制限・無害化・検証を経てメッセージを保存し、
	// 通知をバックグラウンドで送る
	Submit(ctx context.Context, in ContactInput, client ClientContext) (*model.ContactReceipt, error)

	// List は新しい順にメッセージを返す
	List(ctx context.Context, params ContactListParams) (*model.Page[*model.ContactMessage], error)

	// Get はメッセージを返す。new のものは read になる
	Get(ctx context.Context, id string) (*model.ContactMessage, error)

	SetStatus(ctx context.Context, id, status string) (*model.ContactMessage, error)
	Delete(ctx context.Context, id string) error

	// SendTestEmail は指定アドレスへ送信してメール設定を確認する
	SendTestEmail(ctx context.Context, to string) error
}

// NotificationDispatcher は保存済みメッセージの通知をバックグラウンドで開始する
type NotificationDispatcher interface {
	Dispatch(msg *model.ContactMessage)
}
