package media

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aagaur/studiocms/utils"
)

// OrphanRecorder keeps track of assets that could not be deleted.
type OrphanRecorder interface {
	RecordOrphan(ctx context.Context, host string, a Asset, cause error)
}

// Options tune a Gateway. Zero values give one attempt per file and eight parallel uploads.
type Options struct {
	Folder      string
	Concurrency int
	Retries     int
	Orphans     OrphanRecorder
}

// Result is the outcome for one input file. Exactly one of Asset.URL or Err is set.
type Result struct {
	Asset Asset
	Err   error
}

// Gateway turns buffered files into public URLs on a Host.
type Gateway struct {
	host        Host
	folder      string
	concurrency int
	retries     int
	orphans     OrphanRecorder
	now         func() time.Time
}

func NewGateway(host Host, opts Options) *Gateway {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Gateway{
		host:        host,
		folder:      opts.Folder,
		concurrency: opts.Concurrency,
		retries:     opts.Retries,
		orphans:     opts.Orphans,
		now:         time.Now,
	}
}

func (g *Gateway) Host() Host { return g.host }

// Upload sends every file concurrently. Each upload runs to completion regardless
// of the others, and results[i] belongs to files[i].
func (g *Gateway) Upload(ctx context.Context, files []File) []Result {
	results := make([]Result, len(files))
	var eg errgroup.Group
	eg.SetLimit(g.concurrency)
	for i := range files {
		i := i
		eg.Go(func() error {
			asset, err := g.uploadOne(ctx, files[i])
			if err != nil {
				results[i].Err = &UploadError{Field: files[i].Field, Filename: files[i].Filename, Err: err}
				return nil
			}
			results[i].Asset = asset
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

// UploadAll uploads files with all-or-nothing semantics. When any file fails,
// the ones that succeeded are deleted again and the first failure is returned.
func (g *Gateway) UploadAll(ctx context.Context, files []File) ([]Asset, error) {
	if len(files) == 0 {
		return nil, nil
	}
	results := g.Upload(ctx, files)
	assets := make([]Asset, 0, len(results))
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		assets = append(assets, r.Asset)
	}
	if firstErr != nil {
		utils.Logger.Warn("upload batch failed, releasing stored files",
			zap.String("host", g.host.Name()), zap.Int("files", len(files)), zap.Int("stored", len(assets)), zap.Error(firstErr))
		g.Release(ctx, assets)
		return nil, firstErr
	}
	return assets, nil
}

// Release deletes assets that will not be referenced by any record.
// Failures are handed to the orphan recorder.
func (g *Gateway) Release(ctx context.Context, assets []Asset) {
	if len(assets) == 0 {
		return
	}
	// the request may already be cancelled; cleanup must still run
	ctx = context.WithoutCancel(ctx)
	var eg errgroup.Group
	eg.SetLimit(g.concurrency)
	for _, a := range assets {
		a := a
		eg.Go(func() error {
			if err := g.host.Delete(ctx, a); err != nil {
				utils.Logger.Error("release asset failed", zap.String("host", g.host.Name()), zap.String("publicId", a.PublicID), zap.Error(err))
				if g.orphans != nil {
					g.orphans.RecordOrphan(ctx, g.host.Name(), a, err)
				}
			}
			return nil
		})
	}
	_ = eg.Wait()
}

func (g *Gateway) uploadOne(ctx context.Context, f File) (Asset, error) {
	key := ObjectKey(g.folder, f.Filename, g.now())
	if g.retries == 0 {
		return g.host.Upload(ctx, f, key)
	}
	var asset Asset
	op := func() error {
		a, err := g.host.Upload(ctx, f, key)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return backoff.Permanent(err)
			}
			return err
		}
		asset = a
		return nil
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	notify := func(err error, wait time.Duration) {
		utils.Logger.Warn("upload attempt failed, retrying", zap.String("file", f.Filename), zap.Duration("wait", wait), zap.Error(err))
	}
	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(g.retries)), ctx), notify)
	return asset, err
}
