package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/AnnaNajafiH/SabaStudio/internal/notify"
	"github.com/AnnaNajafiH/SabaStudio/internal/ratelimit"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository"
	"golang.org/x/sync/errgroup"
)

// ContactDeps は ContactService の依存一式
type ContactDeps struct {
	Repo repository.ContactRepository
	// IPLimiter はクライアント IP ごとの送信数を制限する。必須
	IPLimiter ratelimit.Limiter
	// DuplicateLimiter はメールアドレスごとの送信数を制限する。nil なら確認しない
	DuplicateLimiter ratelimit.Limiter
	Dispatcher       NotificationDispatcher
	Notifier         notify.Notifier
	StoreTimeout     time.Duration
}

// contactServiceImpl は ContactService の実装
type contactServiceImpl struct {
	ContactDeps
}

// NewContactService は deps から ContactService を生成する
func NewContactService(deps ContactDeps) ContactService {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	return &contactServiceImpl{ContactDeps: deps}
}

// contactRules は送信内容の制約
type contactRules struct {
	Name        string `json:"name" validate:"required,min=2,max=100,person_name"`
	Email       string `json:"email" validate:"required,max=254,email"`
	Phone       string `json:"phone" validate:"omitempty,phone"`
	Company     string `json:"company" validate:"max=200"`
	ProjectType string `json:"projectType" validate:"omitempty,contact_project_type"`
	Budget      string `json:"budget" validate:"omitempty,contact_budget"`
	Timeline    string `json:"timeline" validate:"omitempty,contact_timeline"`
	Location    string `json:"location" validate:"max=200"`
	Subject     string `json:"subject" validate:"required,min=5,max=200"`
	Message     string `json:"message" validate:"required,min=10,max=2000"`
}

// allow は l に問い合わせる。リミッタ障害時は通す
func allow(ctx context.Context, l ratelimit.Limiter, key string) error {
	res, err := l.Allow(ctx, key)
	if err != nil {
		slog.Error("rate limiter unavailable, allowing request", "key", key, "error", err)
		return nil
	}
	if !res.Allowed {
		return &RateLimitError{RetryAfter: res.RetryAfter}
	}
	return nil
}

// Submit は status "new" でメッセージを保存し、dispatcher に渡す。
// 通知の成否は結果に影響しない
func (s *contactServiceImpl) Submit(ctx context.Context, in ContactInput, client ClientContext) (*model.ContactReceipt, error) {
	if err := allow(ctx, s.IPLimiter, "contact:"+client.IP); err != nil {
		slog.Warn("contact rate limit exceeded", "ip", client.IP)
		return nil, err
	}

	msg := &model.ContactMessage{
		Name:        stripTags(in.Name),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:       strings.TrimSpace(in.Phone),
		Company:     stripTags(in.Company),
		ProjectType: strings.TrimSpace(in.ProjectType),
		Budget:      strings.TrimSpace(in.Budget),
		Timeline:    strings.TrimSpace(in.Timeline),
		Location:    stripTags(in.Location),
		Subject:     stripTags(in.Subject),
		Message:     stripTags(in.Message),
		Status:      model.ContactStatusNew,
		IPAddress:   client.IP,
		UserAgent:   client.UserAgent,
	}
	if err := checkStruct(contactRules{
		Name:        msg.Name,
		Email:       msg.Email,
		Phone:       msg.Phone,
		Company:     msg.Company,
		ProjectType: msg.ProjectType,
		Budget:      msg.Budget,
		Timeline:    msg.Timeline,
		Location:    msg.Location,
		Subject:     msg.Subject,
		Message:     msg.Message,
	}); err != nil {
		return nil, err
	}

	dupKey := "contact-email:" + msg.Email
	if s.DuplicateLimiter != nil {
		var rl *RateLimitError
		if err := allow(ctx, s.DuplicateLimiter, dupKey); errors.As(err, &rl) {
			return nil, ErrDuplicateSubmission
		}
	}

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()
	if err := s.Repo.Save(sctx, msg); err != nil {
		// 保存されていないので再送は重複ではない
		if s.DuplicateLimiter != nil {
			if rerr := s.DuplicateLimiter.Reset(ctx, dupKey); rerr != nil {
				slog.Error("duplicate window reset failed", "error", rerr)
			}
		}
		return nil, storeErr("save contact message", err)
	}
	slog.Info("contact message received", "contact_id", msg.ID)

	if s.Dispatcher != nil {
		s.Dispatcher.Dispatch(msg)
	}
	return &model.ContactReceipt{ID: msg.ID, SubmittedAt: msg.CreatedAt}, nil
}

// List は status で絞り込んだメッセージのページを返す
func (s *contactServiceImpl) List(ctx context.Context, p ContactListParams) (*model.Page[*model.ContactMessage], error) {
	status := ""
	if strings.TrimSpace(p.Status) != "" {
		norm, ok := model.NormalizeContactStatus(p.Status)
		if !ok {
			return nil, NewValidationError("status", "must be one of: "+strings.Join(model.ContactStatuses, ", "))
		}
		status = norm
	}
	page, err := pageNumber(p.Page)
	if err != nil {
		return nil, err
	}
	limit := clamp(p.Limit, DefaultContactLimit, MaxContactLimit)

	ctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	var (
		items []*model.ContactMessage
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.Repo.List(gctx, model.ContactListOptions{Status: status, Limit: limit, Offset: model.Offset(page, limit)})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.Repo.Count(gctx, status)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr("list contact messages", err)
	}
	return model.NewPage(items, total, page, limit), nil
}

// Get はメッセージを返す。初回取得時に new から read に移す
func (s *contactServiceImpl) Get(ctx context.Context, id string) (*model.ContactMessage, error) {
	ctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	msg, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get contact message", err)
	}
	if msg.Status != model.ContactStatusNew {
		return msg, nil
	}

	marked, err := s.Repo.MarkRead(ctx, id)
	if err != nil {
		return nil, storeErr("mark contact message read", err)
	}
	if marked {
		slog.Debug("contact message marked read", "contact_id", id)
	}
	// 競合した書き込みの結果を反映するため読み直す
	msg, err = s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get contact message", err)
	}
	return msg, nil
}

// SetStatus は正規化済みの status を書き込む。遷移の制約はない
func (s *contactServiceImpl) SetStatus(ctx context.Context, id, status string) (*model.ContactMessage, error) {
	norm, ok := model.NormalizeContactStatus(status)
	if !ok {
		return nil, NewValidationError("status", "must be one of: "+strings.Join(model.ContactStatuses, ", "))
	}

	ctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()
	msg, err := s.Repo.UpdateStatus(ctx, id, norm)
	if err != nil {
		return nil, storeErr("update contact status", err)
	}
	slog.Info("contact status updated", "contact_id", id, "status", norm)
	return msg, nil
}

// Delete はメッセージを完全に削除する
func (s *contactServiceImpl) Delete(ctx context.Context, id string) error {
	ctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()
	if err := s.Repo.Delete(ctx, id); err != nil {
		return storeErr("delete contact message", err)
	}
	slog.Info("contact message deleted", "contact_id", id)
	return nil
}

// SendTestEmail は設定済みの notifier で確認用メールを送る
func (s *contactServiceImpl) SendTestEmail(ctx context.Context, to string) error {
	to = strings.TrimSpace(to)
	if err := validatorInstance().Var(to, "required,email"); err != nil {
		return NewValidationError("email", "must be a valid email address")
	}
	if err := s.Notifier.SendTest(ctx, to); err != nil {
		return fmt.Errorf("send test email: %w", err)
	}
	return nil
}
