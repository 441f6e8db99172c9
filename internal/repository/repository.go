package repository

import (
	"context"
	"sync"

	"klaso-client/internal/logger"
	"klaso-client/internal/model"

	"github.com/rs/zerolog"
)

// Collaborator is the remote CRUD contract for one entity type.
type Collaborator[T any] interface {
	List(ctx context.Context, scope model.Scope) ([]T, error)
	Get(ctx context.Context, id model.ID) (T, error)
	Create(ctx context.Context, payload interface{}) (T, error)
	Update(ctx context.Context, id model.ID, payload interface{}) (T, error)
	Delete(ctx context.Context, id model.ID) error
}

// Identity is read at call time by owner-scoped repositories.
type Identity interface {
	Require() (model.User, error)
}

type Option func(*options)

type options struct {
	identity Identity
}

// OwnerScoped makes Load and Create require an authenticated identity and
// stamps the owner on Owned create requests.
func OwnerScoped(identity Identity) Option {
	return func(o *options) {
		o.identity = identity
	}
}

// Repository caches the last known collection of one entity type and
// broadcasts every new snapshot to its subscribers.
//
// The backend is authoritative: the cache only reflects responses, applied in
// the order they arrive. Two concurrent writes to the same record resolve to
// whichever response is applied last; there is no version check.
type Repository[T model.Entity, C any, U any] struct {
	name     string
	remote   Collaborator[T]
	identity Identity

	mu       sync.RWMutex
	snapshot []T
	subs     map[uint64]chan []T
	nextSub  uint64

	log zerolog.Logger
}

func New[T model.Entity, C any, U any](name string, remote Collaborator[T], opts ...Option) *Repository[T, C, U] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return &Repository[T, C, U]{
		name:     name,
		remote:   remote,
		identity: o.identity,
		snapshot: []T{},
		subs:     make(map[uint64]chan []T),
		log:      logger.For("repository").With().Str("entity", name).Logger(),
	}
}

func (r *Repository[T, C, U]) Name() string {
	return r.name
}

// Load replaces the snapshot with the collection of the given parent.
// On failure the previous snapshot is kept and the error is returned as is.
func (r *Repository[T, C, U]) Load(ctx context.Context, parentID model.ID) ([]T, error) {
	return r.LoadScope(ctx, model.Scope{ParentID: parentID})
}

func (r *Repository[T, C, U]) LoadScope(ctx context.Context, scope model.Scope) ([]T, error) {
	if err := r.requireIdentity(); err != nil {
		return nil, err
	}

	items, err := r.remote.List(ctx, scope)
	if err != nil {
		r.log.Error().Err(err).Str("scope", scope.ParentID.String()).Msg("Load failed")
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishLocked(clone(items))

	return clone(items), nil
}

// Create sends the request and appends the backend's canonical entity.
func (r *Repository[T, C, U]) Create(ctx context.Context, req C) (T, error) {
	var zero T

	if r.identity != nil {
		user, err := r.identity.Require()
		if err != nil {
			return zero, err
		}
		if owned, ok := any(&req).(model.Owned); ok {
			owned.SetOwner(user.ID)
		}
	}

	item, err := r.remote.Create(ctx, req)
	if err != nil {
		r.log.Error().Err(err).Msg("Create failed")
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]T, 0, len(r.snapshot)+1)
	next = append(next, r.snapshot...)
	next = append(next, item)
	r.publishLocked(next)

	return item, nil
}

// Update sends a partial update and swaps in the returned entity. When the
// identifier is not cached the returned entity is not added; the cache stays
// stale until the next Load.
func (r *Repository[T, C, U]) Update(ctx context.Context, id model.ID, req U) (T, error) {
	item, err := r.remote.Update(ctx, id, req)
	if err != nil {
		r.log.Error().Err(err).Str("id", id.String()).Msg("Update failed")
		var zero T
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		r.log.Warn().Str("id", id.String()).Msg("Updated entity not in cache, dropped")
		return item, nil
	}

	next := clone(r.snapshot)
	next[idx] = item
	r.publishLocked(next)

	return item, nil
}

func (r *Repository[T, C, U]) Delete(ctx context.Context, id model.ID) error {
	if err := r.remote.Delete(ctx, id); err != nil {
		r.log.Error().Err(err).Str("id", id.String()).Msg("Delete failed")
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]T, 0, len(r.snapshot))
	for _, item := range r.snapshot {
		if item.EntityID() != id {
			next = append(next, item)
		}
	}
	r.publishLocked(next)

	return nil
}

// Fetch reads one entity from the backend without touching the cache.
func (r *Repository[T, C, U]) Fetch(ctx context.Context, id model.ID) (T, error) {
	return r.remote.Get(ctx, id)
}

func (r *Repository[T, C, U]) CachedByID(id model.ID) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if idx := r.indexLocked(id); idx >= 0 {
		return r.snapshot[idx], true
	}
	var zero T
	return zero, false
}

func (r *Repository[T, C, U]) CachedByParent(parentID model.ID) []T {
	return r.Filter(func(item T) bool {
		return item.ParentID() == parentID
	})
}

// Filter returns the cached entities matching keep, in snapshot order.
func (r *Repository[T, C, U]) Filter(keep func(T) bool) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []T{}
	for _, item := range r.snapshot {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Snapshot returns a copy of the last published collection.
func (r *Repository[T, C, U]) Snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.snapshot)
}

// Subscribe delivers the current snapshot immediately, then every new one.
// A subscriber that falls behind only ever sees the newest snapshot.
// cancel stops delivery and closes the channel; requests already in flight
// still update the cache.
func (r *Repository[T, C, U]) Subscribe() (<-chan []T, func()) {
	ch := make(chan []T, 1)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	ch <- clone(r.snapshot)
	r.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// replaceWhere drops the cached entities matching stale and appends fresh.
func (r *Repository[T, C, U]) replaceWhere(stale func(T) bool, fresh []T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]T, 0, len(r.snapshot)+len(fresh))
	for _, item := range r.snapshot {
		if !stale(item) {
			next = append(next, item)
		}
	}
	next = append(next, fresh...)
	r.publishLocked(next)
}

func (r *Repository[T, C, U]) requireIdentity() error {
	if r.identity == nil {
		return nil
	}
	_, err := r.identity.Require()
	return err
}

func (r *Repository[T, C, U]) indexLocked(id model.ID) int {
	for i, item := range r.snapshot {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

// publishLocked installs next as the snapshot. next must not be shared.
func (r *Repository[T, C, U]) publishLocked(next []T) {
	r.snapshot = next
	for _, ch := range r.subs {
		// Only publishers send, and they hold the lock, so after draining a
		// stale snapshot the buffered send cannot block.
		select {
		case <-ch:
		default:
		}
		ch <- clone(next)
	}
	r.log.Debug().Int("count", len(next)).Int("subscribers", len(r.subs)).Msg("Snapshot published")
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
