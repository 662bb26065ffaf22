package media

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeHost records calls. Files whose name is in failUpload fail; public ids in
// failDelete cannot be deleted.
type fakeHost struct {
	mu         sync.Mutex
	failUpload map[string]int
	failDelete map[string]bool
	delay      map[string]time.Duration
	uploaded   []string
	deleted    []string
	attempts   map[string]int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		failUpload: map[string]int{},
		failDelete: map[string]bool{},
		delay:      map[string]time.Duration{},
		attempts:   map[string]int{},
	}
}

func (h *fakeHost) Name() string { return "fake" }

func (h *fakeHost) Upload(ctx context.Context, f File, key string) (Asset, error) {
	h.mu.Lock()
	d := h.delay[f.Filename]
	h.attempts[f.Filename]++
	attempt := h.attempts[f.Filename]
	remaining := h.failUpload[f.Filename]
	h.mu.Unlock()

	if d > 0 {
		time.Sleep(d)
	}
	// -1 fails forever, n > 0 fails the first n attempts
	if remaining < 0 || attempt <= remaining {
		return Asset{}, errors.New("cdn unavailable")
	}
	h.mu.Lock()
	h.uploaded = append(h.uploaded, key)
	h.mu.Unlock()
	return Asset{URL: "https://cdn.test/" + key, PublicID: key, Kind: f.Kind()}, nil
}

func (h *fakeHost) Delete(ctx context.Context, a Asset) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failDelete[a.PublicID] {
		return errors.New("delete refused")
	}
	h.deleted = append(h.deleted, a.PublicID)
	return nil
}

type orphanLog struct {
	mu     sync.Mutex
	assets []Asset
}

func (o *orphanLog) RecordOrphan(ctx context.Context, host string, a Asset, cause error) {
	o.mu.Lock()
	o.assets = append(o.assets, a)
	o.mu.Unlock()
}

func png(name, field string) File {
	return File{Field: field, Filename: name, MediaType: "image/png", Data: []byte("\x89PNG\r\n\x1a\nfake")}
}
