package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository"
	"github.com/google/uuid"
)

// ContactRepository is an in-memory repository.ContactRepository.
type ContactRepository struct {
	mu       sync.Mutex
	messages map[string]*model.ContactMessage
	seq      map[string]int
	next     int
	now      func() time.Time
}

// NewContactRepository returns an empty ContactRepository.
func NewContactRepository() *ContactRepository {
	return &ContactRepository{
		messages: make(map[string]*model.ContactMessage),
		seq:      make(map[string]int),
		now:      time.Now,
	}
}

var _ repository.ContactRepository = (*ContactRepository)(nil)

func cloneContact(m *model.ContactMessage) *model.ContactMessage {
	c := *m
	return &c
}

// Save stores msg, assigning its id and timestamps.
func (r *ContactRepository) Save(_ context.Context, msg *model.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	msg.ID = uuid.NewString()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	r.next++
	r.seq[msg.ID] = r.next
	r.messages[msg.ID] = cloneContact(msg)
	return nil
}

// List returns messages newest first.
func (r *ContactRepository) List(_ context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*model.ContactMessage
	for _, m := range r.messages {
		if opts.Status == "" || m.Status == opts.Status {
			all = append(all, m)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return r.seq[all[i].ID] > r.seq[all[j].ID]
	})

	out := []*model.ContactMessage{}
	for i := max(opts.Offset, 0); i < len(all) && len(out) < opts.Limit; i++ {
		out = append(out, cloneContact(all[i]))
	}
	return out, nil
}

// Count returns the number of messages with the given status, or all
// messages when status is empty.
func (r *ContactRepository) Count(_ context.Context, status string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, m := range r.messages {
		if status == "" || m.Status == status {
			n++
		}
	}
	return n, nil
}

// GetByID returns the message with the given id.
func (r *ContactRepository) GetByID(_ context.Context, id string) (*model.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneContact(m), nil
}

// MarkRead moves a message from new to read.
func (r *ContactRepository) MarkRead(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok || m.Status != model.ContactStatusNew {
		return false, nil
	}
	m.Status = model.ContactStatusRead
	m.UpdatedAt = r.now().UTC()
	return true, nil
}

// UpdateStatus sets the status of a message.
func (r *ContactRepository) UpdateStatus(_ context.Context, id, status string) (*model.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.Status = status
	m.UpdatedAt = r.now().UTC()
	return cloneContact(m), nil
}

// Delete removes a message.
func (r *ContactRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.messages, id)
	delete(r.seq, id)
	return nil
}
