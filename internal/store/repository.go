package store

import (
	"context"

	"port-ops-api-server/internal/idgen"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the CRUD surface shared by every entity table.
type Repository[T any] struct {
	db       *gorm.DB
	key      string
	order    string
	prefix   string
	ident    func(*T) *string
	preloads []string
}

type option[T any] func(*Repository[T])

// withID makes Create allocate a PREFIX-NNN identifier when the entity has none.
func withID[T any](prefix string, ident func(*T) *string) option[T] {
	return func(r *Repository[T]) {
		r.prefix = prefix
		r.ident = ident
	}
}

func withKey[T any](column string) option[T] {
	return func(r *Repository[T]) { r.key = column; r.order = column }
}

func withPreload[T any](assocs ...string) option[T] {
	return func(r *Repository[T]) { r.preloads = append(r.preloads, assocs...) }
}

func newRepository[T any](db *gorm.DB, opts ...option[T]) *Repository[T] {
	r := &Repository[T]{db: db, key: "id", order: "id"}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Repository[T]) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	for _, p := range r.preloads {
		q = q.Preload(p)
	}
	return q
}

// WithTx returns a copy of the repository bound to tx.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	cp := *r
	cp.db = tx
	return &cp
}

func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	items := []T{}
	if err := r.query(ctx).Order(r.order).Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

// Find lists the rows matching a where clause.
func (r *Repository[T]) Find(ctx context.Context, where string, args ...interface{}) ([]T, error) {
	items := []T{}
	if err := r.query(ctx).Where(where, args...).Order(r.order).Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r *Repository[T]) Get(ctx context.Context, id interface{}) (*T, error) {
	var item T
	if err := r.query(ctx).Where(r.key+" = ?", id).First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// Exists reports whether a row with id is present.
func (r *Repository[T]) Exists(ctx context.Context, id interface{}) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where(r.key+" = ?", id).Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *Repository[T]) Create(ctx context.Context, item *T) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.ident != nil && *r.ident(item) == "" {
			id, err := idgen.Next(ctx, tx, r.prefix)
			if err != nil {
				return err
			}
			*r.ident(item) = id
		}
		return tx.Omit(clause.Associations).Create(item).Error
	})
	if err != nil && r.ident != nil {
		*r.ident(item) = ""
	}
	return translate(err)
}

// Update writes every column of item except created_at. The row must exist.
func (r *Repository[T]) Update(ctx context.Context, item *T) error {
	res := r.db.WithContext(ctx).Model(item).Select("*").Omit("created_at", clause.Associations).Updates(item)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository[T]) Delete(ctx context.Context, id interface{}) error {
	res := r.db.WithContext(ctx).Where(r.key+" = ?", id).Delete(new(T))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).Count(&n).Error
	return n, translate(err)
}
