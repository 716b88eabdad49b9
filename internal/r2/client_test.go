package r2

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdfquiz/internal/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_DisabledWhenIncomplete(t *testing.T) {
	c, err := NewClient(context.Background(), Config{BucketName: "b"}, logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.False(t, c.Enabled())

	_, err = c.UploadArtifact(context.Background(), uuid.New(), uuid.New(), "x.txt", []byte("x"))
	assert.Error(t, err)
}

func TestUploadArtifact(t *testing.T) {
	var (
		method, path, contentType string
		body                      []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	t.Setenv("AWS_REQUEST_CHECKSUM_CALCULATION", "when_required")
	c, err := NewClient(context.Background(), Config{
		AccountID:       "acct",
		BucketName:      "study",
		AccessKeyID:     "id",
		SecretAccessKey: "secret",
		PublicURL:       "https://pub.example.r2.dev/base",
		Endpoint:        server.URL,
	}, logger.Nop())
	require.NoError(t, err)
	require.True(t, c.Enabled())

	sid, aid := uuid.New(), uuid.New()
	got, err := c.UploadArtifact(context.Background(), sid, aid, "summary.txt", []byte("A summary."))
	require.NoError(t, err)

	key := ObjectKey(sid, aid, "summary.txt")
	assert.Equal(t, "https://pub.example.r2.dev/base/"+key, got)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/study/"+key, path)
	assert.Contains(t, contentType, "text/plain")
	assert.Equal(t, "A summary.", string(body))
}
