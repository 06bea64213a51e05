// Package photos fills the photo cache for every member of the unit.
package photos

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"
	"wardroster/internal/resources"
	"wardroster/lib/cachedir"
	"wardroster/lib/iterutil"
	"wardroster/lib/scrapers/mls"
	"wardroster/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// the photo url service stops answering reliably above this many ids
	DefaultBatchSize  = 19
	DefaultBatchDelay = 500 * time.Millisecond
	DefaultSize       = "large"

	report_photos_missing_ids = "photos.missing-ids"
	report_photos_lookup      = "photos.lookup"
	report_photos_download    = "photos.download"
	report_photos_no_photo    = "photos.no-photo"
	report_photos_wrong_type  = "photos.wrong-content-type"
	report_photos_written     = "photos.written"
)

var tracer = telemetry.Tracer("wardroster.internal.photos")
var meter = otel.Meter("wardroster.internal.photos")
var writtenCounter = newWrittenCounter()

func newWrittenCounter() metric.Int64Counter {
	counter, err := meter.Int64Counter("photos_written")
	if err != nil {
		panic(err)
	}
	return counter
}

// Source is the part of the MLS client photos are fetched with.
type Source interface {
	LookupPhotoUris(ctx context.Context, ids []int64, size string) ([]mls.PhotoUri, error)
	DownloadPhoto(ctx context.Context, uri string) (mls.Photo, error)
}

type Options struct {
	// BatchSize is the most ids resolved by one lookup, DefaultBatchSize if zero.
	BatchSize int
	// BatchDelay is the pause between two lookups. Negative disables it,
	// zero means DefaultBatchDelay.
	BatchDelay time.Duration
	Tel        telemetry.API
}

type Fetcher struct {
	src       Source
	raw       cachedir.RawStore
	photos    cachedir.PhotoStore
	batchSize int
	delay     time.Duration
	tel       telemetry.API
}

func NewFetcher(src Source, raw cachedir.RawStore, photos cachedir.PhotoStore, opts Options) *Fetcher {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BatchDelay == 0 {
		opts.BatchDelay = DefaultBatchDelay
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	}
	if opts.Tel == nil {
		opts.Tel = telemetry.SlogAPI{}
	}
	return &Fetcher{
		src:       src,
		raw:       raw,
		photos:    photos,
		batchSize: opts.BatchSize,
		delay:     opts.BatchDelay,
		tel:       telemetry.NewScopedAPI("photos", opts.Tel),
	}
}

// MissingIds returns the members of the cached member list that have no
// photo of the given size yet. The photo cache is checked as the sequence is
// consumed, so a photo written in the meantime is skipped. A member whose
// cache entry cannot be checked is reported and left out.
func (f *Fetcher) MissingIds(size string) (iter.Seq[int64], error) {
	return f.missingIds(size, func(id int64, err error) bool {
		f.tel.ReportBroken(report_photos_missing_ids, id, err)
		return true
	})
}

// missingIds calls `onErr` when the cache entry of a member cannot be
// checked, the sequence stops when it returns false.
func (f *Fetcher) missingIds(size string, onErr func(id int64, err error) bool) (iter.Seq[int64], error) {
	members, err := cachedir.ReadOr[[]mls.Member](f.raw, resources.MemberList, nil)
	if err != nil {
		return nil, err
	}
	if members == nil {
		return nil, fmt.Errorf("%w: %s", resources.ErrMissingDependency, resources.MemberList)
	}

	return func(yield func(int64) bool) {
		for _, m := range members {
			exists, err := f.photos.Exists(m.Id, size)
			if err != nil {
				if !onErr(m.Id, err) {
					return
				}
				continue
			}
			if exists {
				continue
			}
			if !yield(m.Id) {
				return
			}
		}
	}, nil
}

type Stats struct {
	Batches   int
	Written   int
	NoPhoto   int
	WrongType int
	// Failed counts photos the server answered with an error status for.
	Failed int
}

func (f *Fetcher) pause(ctx context.Context) error {
	if f.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(f.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fetch downloads the photo of every member that does not have one cached.
//
// Members are resolved in batches with a pause after each batch that is
// followed by another one. A member without a photo, whose photo download is
// answered with an error status or whose photo is not a jpeg is reported and
// skipped. A lookup that fails, a download that cannot be made or a photo
// cache that cannot be read stops the run; photos written before that stay
// cached so that the next run picks up where this one stopped.
func (f *Fetcher) Fetch(ctx context.Context, size string) (Stats, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()

	var stats Stats
	if !mls.ValidPhotoSize(size) {
		return stats, fmt.Errorf("unknown photo size %q, expected one of %v", size, mls.PhotoSizes)
	}

	var cacheErr error
	ids, err := f.missingIds(size, func(id int64, err error) bool {
		f.tel.ReportBroken(report_photos_missing_ids, id, err)
		cacheErr = fmt.Errorf("photo cache of %d: %w", id, err)
		return false
	})
	if err != nil {
		return stats, err
	}

	for batch := range iterutil.Chunk(ids, f.batchSize) {
		if stats.Batches > 0 {
			err := f.pause(ctx)
			if err != nil {
				return stats, err
			}
		}
		stats.Batches++

		err := f.fetchBatch(ctx, stats.Batches, batch, size, &stats)
		if err != nil {
			return stats, err
		}
	}
	if cacheErr != nil {
		return stats, cacheErr
	}

	span.SetAttributes(
		attribute.Int("batches", stats.Batches),
		attribute.Int("written", stats.Written),
	)
	f.tel.ReportCount(report_photos_written, int64(stats.Written))
	return stats, nil
}

func (f *Fetcher) fetchBatch(ctx context.Context, index int, batch []int64, size string, stats *Stats) error {
	ctx, span := tracer.Start(ctx, "fetchBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("batch", index), attribute.Int("size", len(batch)))

	f.tel.ReportInfo("resolving photos", index, len(batch))
	uris, err := f.src.LookupPhotoUris(ctx, batch, size)
	if err != nil {
		f.tel.ReportBroken(report_photos_lookup, index, batch, err)
		return fmt.Errorf("photo batch %d %v: %w", index, batch, err)
	}

	for _, uri := range uris {
		if uri.Uri == "" {
			f.tel.ReportWarning(report_photos_no_photo, uri.MemberId)
			stats.NoPhoto++
			continue
		}

		photo, err := f.src.DownloadPhoto(ctx, uri.Uri)
		var upstream *mls.UpstreamError
		if errors.As(err, &upstream) {
			f.tel.ReportWarning(report_photos_download, upstream.Status, uri.MemberId)
			stats.Failed++
			continue
		}
		if err != nil {
			f.tel.ReportBroken(report_photos_download, uri.MemberId, err)
			return fmt.Errorf("photo of %d: %w", uri.MemberId, err)
		}
		if photo.ContentType != "image/jpeg" {
			f.tel.ReportWarning(report_photos_wrong_type, photo.ContentType, uri.MemberId)
			stats.WrongType++
			continue
		}

		err = f.photos.Write(uri.MemberId, size, photo.Data)
		if err != nil {
			f.tel.ReportBroken(report_photos_download, uri.MemberId, err)
			return fmt.Errorf("store photo of %d: %w", uri.MemberId, err)
		}
		writtenCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("size", size)))
		stats.Written++
	}

	return nil
}
