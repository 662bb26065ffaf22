package records

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/aagaur/studiocms/media"
	"github.com/aagaur/studiocms/models"
	"github.com/aagaur/studiocms/utils"
)

// Input is one write request: raw field values and buffered files.
// Field values are strings from forms or decoded JSON values.
type Input struct {
	Fields map[string]interface{}
	Files  []media.File
}

// Service implements create, list, get, update and delete for one collection.
type Service struct {
	col     *Collection
	store   Store
	gateway *media.Gateway
	cache   *utils.Cache
}

func NewService(col *Collection, store Store, gateway *media.Gateway, cache *utils.Cache) *Service {
	return &Service{col: col, store: store, gateway: gateway, cache: cache}
}

func (s *Service) Collection() *Collection { return s.col }

// Create validates the input, uploads its files and stores the new record.
// Nothing is uploaded when validation fails, and uploads are released when
// the store rejects the record.
func (s *Service) Create(ctx context.Context, in Input) (models.Record, error) {
	values, err := s.col.Schema.Normalize(in.Fields, false)
	if err != nil {
		return nil, err
	}
	main, gallery, err := s.splitFiles(in.Files)
	if err != nil {
		return nil, err
	}
	images := s.col.Schema.Images
	if images.MainRequired && main == nil {
		return nil, invalid(images.Main, "is required")
	}

	rec := s.col.New()
	if err := apply(values, rec); err != nil {
		return nil, err
	}

	assets, err := s.upload(ctx, main, gallery)
	if err != nil {
		return nil, err
	}
	if err := apply(s.imageValues(main, gallery, assets, true), rec); err != nil {
		s.gateway.Release(ctx, assets)
		return nil, err
	}

	if err := s.store.Create(ctx, s.col, rec); err != nil {
		s.gateway.Release(ctx, assets)
		return nil, &PersistenceError{Op: "create " + s.col.Name, Err: err}
	}
	s.invalidate(ctx)
	utils.Logger.Info("record created", zap.String("collection", s.col.Name), zap.String("id", rec.GetID()), zap.Int("files", len(assets)))
	return rec, nil
}

// Update overwrites only the fields present in the input. Images change only
// when new files are posted for them.
func (s *Service) Update(ctx context.Context, id string, in Input) (models.Record, error) {
	rec := s.col.New()
	if err := s.store.Get(ctx, s.col, id, rec); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "load " + s.col.Name, Err: err}
	}
	values, err := s.col.Schema.Normalize(in.Fields, true)
	if err != nil {
		return nil, err
	}
	main, gallery, err := s.splitFiles(in.Files)
	if err != nil {
		return nil, err
	}
	if err := apply(values, rec); err != nil {
		return nil, err
	}

	assets, err := s.upload(ctx, main, gallery)
	if err != nil {
		return nil, err
	}
	if err := apply(s.imageValues(main, gallery, assets, false), rec); err != nil {
		s.gateway.Release(ctx, assets)
		return nil, err
	}

	if err := s.store.Save(ctx, s.col, rec); err != nil {
		s.gateway.Release(ctx, assets)
		return nil, &PersistenceError{Op: "update " + s.col.Name, Err: err}
	}
	s.invalidate(ctx)
	utils.Logger.Info("record updated", zap.String("collection", s.col.Name), zap.String("id", id), zap.Int("files", len(assets)))
	return rec, nil
}

// Get returns the record with id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (interface{}, error) {
	key := s.cachePrefix() + "id:" + id
	if b, ok := s.cache.GetBytes(ctx, key); ok {
		return json.RawMessage(b), nil
	}
	rec := s.col.New()
	if err := s.store.Get(ctx, s.col, id, rec); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "get " + s.col.Name, Err: err}
	}
	s.cache.SetJSON(ctx, key, rec)
	return rec, nil
}

// List returns matching records. Query parameters that are not allowed filters are dropped.
func (s *Service) List(ctx context.Context, q ListQuery) (interface{}, error) {
	equals := map[string]string{}
	for k, v := range q.Equals {
		if _, ok := s.col.Filters[k]; ok && v != "" {
			equals[k] = v
		}
	}
	q.Equals = equals

	key := s.cachePrefix() + "list:" + q.Key()
	if b, ok := s.cache.GetBytes(ctx, key); ok {
		return json.RawMessage(b), nil
	}
	list, err := s.store.List(ctx, s.col, q)
	if err != nil {
		return nil, &PersistenceError{Op: "list " + s.col.Name, Err: err}
	}
	s.cache.SetJSON(ctx, key, list)
	return list, nil
}

// Delete removes the record. Media it references stays on the host.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.col, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &PersistenceError{Op: "delete " + s.col.Name, Err: err}
	}
	s.invalidate(ctx)
	utils.Logger.Info("record deleted", zap.String("collection", s.col.Name), zap.String("id", id))
	return nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx, s.col)
}

// splitFiles separates the main image from gallery files and checks them all.
func (s *Service) splitFiles(files []media.File) (*media.File, []media.File, error) {
	images := s.col.Schema.Images
	var main *media.File
	var gallery []media.File
	for i := range files {
		f := files[i]
		switch {
		case images.Main != "" && f.Field == images.Main:
			if main != nil {
				return nil, nil, invalid(images.Main, "accepts a single file")
			}
			main = &f
		case images.Gallery != "" && f.Field == images.Gallery:
			gallery = append(gallery, f)
		default:
			return nil, nil, invalid(f.Field, "is not a file field")
		}
	}
	check := gallery
	if main != nil {
		check = append([]media.File{*main}, gallery...)
	}
	if err := media.Check(check); err != nil {
		return nil, nil, AsValidation(err)
	}
	return main, gallery, nil
}

// upload sends the main file first, so assets[0] is the main image when present.
func (s *Service) upload(ctx context.Context, main *media.File, gallery []media.File) ([]media.Asset, error) {
	files := make([]media.File, 0, len(gallery)+1)
	if main != nil {
		files = append(files, *main)
	}
	files = append(files, gallery...)
	if len(files) == 0 {
		return nil, nil
	}
	return s.gateway.UploadAll(ctx, files)
}

func (s *Service) imageValues(main *media.File, gallery []media.File, assets []media.Asset, creating bool) map[string]interface{} {
	images := s.col.Schema.Images
	values := map[string]interface{}{}
	rest := assets
	if main != nil {
		values[images.Main] = assets[0].URL
		rest = assets[1:]
	}
	if images.Gallery != "" && (len(gallery) > 0 || creating) {
		urls := make([]string, 0, len(rest))
		for _, a := range rest {
			urls = append(urls, a.URL)
		}
		values[images.Gallery] = urls
	}
	return values
}

func (s *Service) cachePrefix() string {
	return "records:" + s.col.Name + ":"
}

func (s *Service) invalidate(ctx context.Context) {
	s.cache.InvalidateByPrefix(ctx, s.cachePrefix())
}
