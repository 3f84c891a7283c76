package patient

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is the in-memory patient store used when no database is
// configured and in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Patient
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]Patient)}
}

func (r *MemoryRepository) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	r.items[p.ID] = *p
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Patient, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now()
	r.items[p.ID] = *p
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) Exists(_ context.Context, patientID string) (bool, error) {
	id, err := uuid.Parse(patientID)
	if err != nil {
		return false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[id]
	return ok, nil
}
