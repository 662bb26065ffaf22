package records

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aagaur/studiocms/models"
)

const maxPageSize = 100

// ListQuery narrows a list. Equals keys are JSON field names already checked
// against the collection filters.
type ListQuery struct {
	Equals   map[string]string
	Page     int
	PageSize int
}

// Key is a stable, escaped representation used for cache keys.
func (q ListQuery) Key() string {
	v := url.Values{}
	for k, val := range q.Equals {
		v.Set("f."+k, val)
	}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.PageSize))
	return v.Encode()
}

func (q ListQuery) window() (offset, limit int) {
	if q.PageSize <= 0 {
		return 0, -1
	}
	size := q.PageSize
	if size > maxPageSize {
		size = maxPageSize
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * size, size
}

// Store persists records of any collection.
type Store interface {
	Create(ctx context.Context, c *Collection, rec models.Record) error
	Get(ctx context.Context, c *Collection, id string, dest models.Record) error
	Save(ctx context.Context, c *Collection, rec models.Record) error
	Delete(ctx context.Context, c *Collection, id string) error
	List(ctx context.Context, c *Collection, q ListQuery) (interface{}, error)
	Count(ctx context.Context, c *Collection) (int64, error)
}

// GormStore keeps records in MySQL or PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, c *Collection, rec models.Record) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *GormStore) Get(ctx context.Context, c *Collection, id string, dest models.Record) error {
	err := s.db.WithContext(ctx).Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) Save(ctx context.Context, c *Collection, rec models.Record) error {
	return s.db.WithContext(ctx).Save(rec).Error
}

func (s *GormStore) Delete(ctx context.Context, c *Collection, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(c.New())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, c *Collection, q ListQuery) (interface{}, error) {
	tx := s.db.WithContext(ctx).Model(c.New())
	for field, value := range q.Equals {
		column, ok := c.Filters[field]
		if !ok {
			continue
		}
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	}
	for _, o := range c.Sorts {
		if o.NullsLast {
			tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column + " IS NULL", Raw: true}})
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	if offset, limit := q.window(); limit > 0 {
		tx = tx.Offset(offset).Limit(limit)
	}
	dest := c.NewList()
	if err := tx.Find(dest).Error; err != nil {
		return nil, err
	}
	return dest, nil
}

func (s *GormStore) Count(ctx context.Context, c *Collection) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(c.New()).Count(&n).Error
	return n, err
}
