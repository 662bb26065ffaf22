package records

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aagaur/studiocms/models"
)

// MemoryStore keeps records in process, encoded as JSON documents.
// It backs DB_DRIVER=memory and the service tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string][]byte
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string]map[string][]byte{}, now: time.Now}
}

func (s *MemoryStore) Create(ctx context.Context, c *Collection, rec models.Record) error {
	rec.Stamp(s.now())
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.docs[c.Name]
	if coll == nil {
		coll = map[string][]byte{}
		s.docs[c.Name] = coll
	}
	if _, exists := coll[rec.GetID()]; exists {
		return fmt.Errorf("duplicate id %s", rec.GetID())
	}
	coll[rec.GetID()] = b
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, c *Collection, id string, dest models.Record) error {
	s.mu.RLock()
	b, ok := s.docs[c.Name][id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(b, dest)
}

// Save replaces the stored document, creating it when absent.
func (s *MemoryStore) Save(ctx context.Context, c *Collection, rec models.Record) error {
	rec.Stamp(s.now())
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[c.Name] == nil {
		s.docs[c.Name] = map[string][]byte{}
	}
	s.docs[c.Name][rec.GetID()] = b
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, c *Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[c.Name][id]; !ok {
		return ErrNotFound
	}
	delete(s.docs[c.Name], id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, c *Collection, q ListQuery) (interface{}, error) {
	type doc struct {
		raw    json.RawMessage
		fields map[string]interface{}
	}
	s.mu.RLock()
	docs := make([]doc, 0, len(s.docs[c.Name]))
	for _, b := range s.docs[c.Name] {
		var fields map[string]interface{}
		if err := json.Unmarshal(b, &fields); err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		docs = append(docs, doc{raw: b, fields: fields})
	}
	s.mu.RUnlock()

	filtered := docs[:0]
	for _, d := range docs {
		if matches(c, d.fields, q.Equals) {
			filtered = append(filtered, d)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return less(c.Sorts, filtered[i].fields, filtered[j].fields)
	})

	offset, limit := q.window()
	if offset > len(filtered) {
		offset = len(filtered)
	}
	filtered = filtered[offset:]
	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}

	raws := make([]json.RawMessage, len(filtered))
	for i, d := range filtered {
		raws[i] = d.raw
	}
	b, err := json.Marshal(raws)
	if err != nil {
		return nil, err
	}
	dest := c.NewList()
	if err := json.Unmarshal(b, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

func (s *MemoryStore) Count(ctx context.Context, c *Collection) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.docs[c.Name])), nil
}

func matches(c *Collection, fields map[string]interface{}, equals map[string]string) bool {
	for k, want := range equals {
		if _, ok := c.Filters[k]; !ok {
			continue
		}
		if fmt.Sprint(fields[k]) != want {
			return false
		}
	}
	return true
}

func less(sorts []Sort, a, b map[string]interface{}) bool {
	for _, o := range sorts {
		if o.NullsLast {
			an, bn := a[o.Field] == nil, b[o.Field] == nil
			if an != bn {
				return bn
			}
		}
		c := compare(a[o.Field], b[o.Field])
		if c == 0 {
			continue
		}
		if o.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

// compare orders numbers and timestamps by value and everything else by
// string form. Missing values sort first.
func compare(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if fa, ok := a.(float64); ok {
		if fb, ok := b.(float64); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	if ta, err := time.Parse(time.RFC3339Nano, sa); err == nil {
		if tb, err := time.Parse(time.RFC3339Nano, sb); err == nil {
			return ta.Compare(tb)
		}
	}
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}
