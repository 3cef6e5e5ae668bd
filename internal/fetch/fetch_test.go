package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/taggo/internal/testutil"
)

func newTestClient() *Client {
	return NewClient(Config{Timeout: 2 * time.Second})
}

func TestFetchURL_Success(t *testing.T) {
	pngData := testutil.EncodePNG(t, testutil.GenerateImage(32, 24))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngData)
	}))
	defer srv.Close()

	img, err := newTestClient().FetchURL(context.Background(), srv.URL+"/cat.png")
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, pngData, img.Data)
	assert.Equal(t, 32, img.Decoded.Bounds().Dx())
	assert.Equal(t, 24, img.Decoded.Bounds().Dy())
}

func TestFetchURL_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	img, err := newTestClient().FetchURL(context.Background(), srv.URL+"/gone.jpg")
	assert.Nil(t, img)
	require.Error(t, err)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrStatus, fe.Kind)
}

func TestFetchURL_DecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("html, not pixels"))
	}))
	defer srv.Close()

	img, err := newTestClient().FetchURL(context.Background(), srv.URL+"/fake.png")
	assert.Nil(t, img)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrDecode, fe.Kind)
}

func TestFetchURL_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Config{Timeout: 50 * time.Millisecond})
	_, err := c.FetchURL(context.Background(), srv.URL)
	require.Error(t, err)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrNetwork, fe.Kind)
}

func TestFetchURL_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient().FetchURL(ctx, "http://127.0.0.1:1/never.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetchURL_RateLimitSpacing(t *testing.T) {
	pngData := testutil.EncodePNG(t, testutil.GenerateImage(4, 4))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngData)
	}))
	defer srv.Close()

	c := NewClient(Config{Timeout: 2 * time.Second, MinDelay: 60 * time.Millisecond})
	start := time.Now()
	for range 3 {
		_, err := c.FetchURL(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	// First request is immediate; the following two must each wait MinDelay.
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestFetchPath_Success(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.jpg")
	testutil.WriteImageFile(t, path, testutil.GenerateImage(16, 16))

	img, err := FetchPath(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", img.Format)
	assert.Equal(t, 16, img.Decoded.Bounds().Dx())
	assert.NotEmpty(t, img.Data)
}

func TestFetchPath_OpenError(t *testing.T) {
	_, err := FetchPath(filepath.Join(t.TempDir(), "missing.png"))
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrOpen, fe.Kind)
}

func TestFetchPath_DecodeError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.png")
	testutil.WriteCorruptImageFile(t, path)

	_, err := FetchPath(path)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrDecode, fe.Kind)
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "network", ErrNetwork.String())
	assert.Equal(t, "status", ErrStatus.String())
	assert.Equal(t, "read", ErrRead.String())
	assert.Equal(t, "open", ErrOpen.String())
	assert.Equal(t, "decode", ErrDecode.String())
}
