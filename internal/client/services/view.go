package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrNotEditing    = errors.New("row is not in edit mode")
	ErrRecordBusy    = errors.New("another change to this record is in progress")
	ErrNotConfigured = errors.New("operation not supported by this view")
)

// Confirm asks the user to approve a destructive action.
type Confirm func(prompt string) bool

// Store binds a View to its backend endpoints. Create, Update and Delete may
// be nil for read-only views; Validate may be nil.
type Store[T any] struct {
	List     func(ctx context.Context) ([]T, error)
	Create   func(ctx context.Context, item T) error
	Update   func(ctx context.Context, id models.ID, item T) error
	Delete   func(ctx context.Context, id models.ID) error
	ID       func(item T) models.ID
	Validate func(item T) error
}

// View is the shared shape of the admin screens: fetch everything, filter
// locally, edit one row at a time, and re-fetch after each mutation.
type View[T any] struct {
	store Store[T]

	mu      sync.Mutex
	items   []T
	editing models.ID
	busy    map[models.ID]struct{}
}

func NewView[T any](store Store[T]) *View[T] {
	return &View[T]{store: store, busy: make(map[models.ID]struct{})}
}

// Refresh re-fetches the list. On failure the previous list is kept.
func (v *View[T]) Refresh(ctx context.Context) ([]T, error) {
	items, err := v.store.List(ctx)
	if err != nil {
		return v.Items(), err
	}

	v.mu.Lock()
	v.items = items
	v.mu.Unlock()
	return v.Items(), nil
}

// Items returns a copy of the loaded list.
func (v *View[T]) Items() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]T, len(v.items))
	copy(out, v.items)
	return out
}

// Filter applies pred to the loaded list without touching the backend.
func (v *View[T]) Filter(pred func(T) bool) []T {
	items := v.Items()
	out := make([]T, 0, len(items))
	for _, it := range items {
		if pred == nil || pred(it) {
			out = append(out, it)
		}
	}
	return out
}

func (v *View[T]) Find(id models.ID) (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, it := range v.items {
		if v.store.ID(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// BeginEdit puts one row into edit mode; any other row leaves it.
func (v *View[T]) BeginEdit(id models.ID) (T, error) {
	item, ok := v.Find(id)
	if !ok {
		return item, ErrNotFound
	}
	v.mu.Lock()
	v.editing = id
	v.mu.Unlock()
	return item, nil
}

// Editing returns the id of the row in edit mode.
func (v *View[T]) Editing() (models.ID, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.editing, v.editing != ""
}

func (v *View[T]) CancelEdit() {
	v.mu.Lock()
	v.editing = ""
	v.mu.Unlock()
}

// Save sends the edited row and re-fetches. The row stays in edit mode when
// validation or the update fails.
func (v *View[T]) Save(ctx context.Context, item T) error {
	if v.store.Update == nil {
		return ErrNotConfigured
	}
	id := v.store.ID(item)

	if cur, ok := v.Editing(); !ok || cur != id {
		return ErrNotEditing
	}
	if err := v.validate(item); err != nil {
		return err
	}

	err := v.mutate(id, func() error { return v.store.Update(ctx, id, item) })
	if err != nil {
		return err
	}

	v.CancelEdit()
	_, err = v.Refresh(ctx)
	return err
}

// Create adds a record and re-fetches.
func (v *View[T]) Create(ctx context.Context, item T) error {
	if v.store.Create == nil {
		return ErrNotConfigured
	}
	if err := v.validate(item); err != nil {
		return err
	}
	if err := v.store.Create(ctx, item); err != nil {
		return err
	}
	_, err := v.Refresh(ctx)
	return err
}

// Delete removes a record after confirm approves it. It reports whether the
// request was sent.
func (v *View[T]) Delete(ctx context.Context, id models.ID, confirm Confirm) (bool, error) {
	if v.store.Delete == nil {
		return false, ErrNotConfigured
	}
	if _, ok := v.Find(id); !ok {
		return false, ErrNotFound
	}
	if confirm == nil || !confirm(fmt.Sprintf("Delete record %s?", id)) {
		return false, nil
	}

	if err := v.mutate(id, func() error { return v.store.Delete(ctx, id) }); err != nil {
		return true, err
	}

	if cur, ok := v.Editing(); ok && cur == id {
		v.CancelEdit()
	}
	_, err := v.Refresh(ctx)
	return true, err
}

// Do runs a custom mutation for id under the same one-at-a-time guard and
// re-fetches afterwards.
func (v *View[T]) Do(ctx context.Context, id models.ID, fn func(ctx context.Context) error) error {
	if err := v.mutate(id, func() error { return fn(ctx) }); err != nil {
		return err
	}
	_, err := v.Refresh(ctx)
	return err
}

func (v *View[T]) validate(item T) error {
	if v.store.Validate == nil {
		return nil
	}
	return v.store.Validate(item)
}

func (v *View[T]) mutate(id models.ID, fn func() error) error {
	v.mu.Lock()
	if _, ok := v.busy[id]; ok {
		v.mu.Unlock()
		return ErrRecordBusy
	}
	v.busy[id] = struct{}{}
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		delete(v.busy, id)
		v.mu.Unlock()
	}()

	return fn()
}
