package mls

import (
	"context"
	"errors"
	"testing"
	"wardroster/lib/scrapers/mls/mlstest"

	"github.com/stretchr/testify/require"
)

func TestLookupPhotoUris(t *testing.T) {
	server := mlstest.NewServer()
	defer server.Close()
	server.Photos[1] = mlstest.Photo{ContentType: "image/jpeg", Data: []byte("jpeg")}

	client := newTestClient(t, server, server.Password)
	uris, err := client.LookupPhotoUris(context.Background(), []int64{1, 2}, "large")
	require.NoError(t, err)
	require.Equal(t, []PhotoUri{
		{MemberId: 1, Uri: server.URL + mlstest.PhotoPath(1)},
		{MemberId: 2},
	}, uris)
	require.Equal(t, [][]int64{{1, 2}}, server.Lookups())
}

func TestLookupPhotoUrisMalformed(t *testing.T) {
	server := mlstest.NewServer()
	defer server.Close()
	server.MalformedLookup = 1

	client := newTestClient(t, server, server.Password)
	_, err := client.LookupPhotoUris(context.Background(), []int64{1}, "large")

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr), "got %v", err)
}

func TestLookupPhotoUrisUnknownSize(t *testing.T) {
	server := mlstest.NewServer()
	defer server.Close()

	client := newTestClient(t, server, server.Password)
	_, err := client.LookupPhotoUris(context.Background(), []int64{1}, "huge")
	require.Error(t, err)
	require.Empty(t, server.Lookups())
}

func TestDownloadPhoto(t *testing.T) {
	server := mlstest.NewServer()
	defer server.Close()
	server.Photos[7] = mlstest.Photo{ContentType: "image/png", Data: []byte("png")}

	client := newTestClient(t, server, server.Password)
	photo, err := client.DownloadPhoto(context.Background(), server.URL+mlstest.PhotoPath(7))
	require.NoError(t, err)
	require.Equal(t, Photo{ContentType: "image/png", Data: []byte("png")}, photo)

	_, err = client.DownloadPhoto(context.Background(), server.URL+mlstest.PhotoPath(8))
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	require.Equal(t, 404, upstream.Status)
}
