package mls

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const photoUrlPath = "/directory/services/web/v3.0/photo/url/%s/individual"

// PhotoSizes are the variants the photo service can resolve.
var PhotoSizes = []string{"large", "medium", "original", "thumbnail"}

func ValidPhotoSize(size string) bool {
	return slices.Contains(PhotoSizes, size)
}

// PhotoUri is the resolved location of one member's photo, Uri is empty if
// the member has no photo.
type PhotoUri struct {
	MemberId int64
	Uri      string
}

// LookupPhotoUris resolves the photo of every member in `ids` in a single
// request. The result has one entry per id in the same order.
func (c *Client) LookupPhotoUris(ctx context.Context, ids []int64, size string) ([]PhotoUri, error) {
	ctx, span := tracer.Start(ctx, "client:LookupPhotoUris")
	defer span.End()

	if !ValidPhotoSize(size) {
		return nil, fmt.Errorf("unknown photo size %q", size)
	}

	joined := make([]string, len(ids))
	for i, id := range ids {
		joined[i] = strconv.FormatInt(id, 10)
	}
	span.SetAttributes(attribute.Int("batch_size", len(ids)))

	res, err := c.get(ctx, fmt.Sprintf(photoUrlPath, strings.Join(joined, ",")), getOptions{
		acceptJson: true,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch photo urls")
		return nil, err
	}

	var entries []map[string]json.RawMessage
	err = json.Unmarshal(res.Body(), &entries)
	if err != nil {
		err = &ParseError{What: "photo urls", Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal photo urls")
		return nil, err
	}
	if len(entries) != len(ids) {
		err = &ParseError{
			What: "photo urls",
			Err:  fmt.Errorf("asked for %d members, got %d", len(ids), len(entries)),
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "photo url count mismatch")
		return nil, err
	}

	field := size + "Uri"
	out := make([]PhotoUri, len(ids))
	for i, entry := range entries {
		out[i].MemberId = ids[i]

		raw, ok := entry[field]
		if !ok {
			continue
		}
		// null leaves the uri empty
		var uri *string
		err = json.Unmarshal(raw, &uri)
		if err != nil {
			err = &ParseError{What: fmt.Sprintf("photo url of %d", ids[i]), Err: err}
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to unmarshal photo url")
			return nil, err
		}
		if uri != nil {
			out[i].Uri = strings.TrimSpace(*uri)
		}
	}
	return out, nil
}

type Photo struct {
	ContentType string
	Data        []byte
}

// DownloadPhoto fetches an image from a uri returned by LookupPhotoUris. The
// content type is returned as is, checking it is up to the caller.
func (c *Client) DownloadPhoto(ctx context.Context, uri string) (Photo, error) {
	ctx, span := tracer.Start(ctx, "client:DownloadPhoto")
	defer span.End()

	res, err := c.get(ctx, uri, getOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to download photo")
		return Photo{}, err
	}

	photo := Photo{
		ContentType: res.Header().Get("content-type"),
		Data:        res.Body(),
	}
	span.SetAttributes(
		attribute.String("content_type", photo.ContentType),
		attribute.Int("content_length", len(photo.Data)),
	)
	return photo, nil
}
