package blob

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderUploadReturnsUsableReference(t *testing.T) {
	store := NewPlaceholder(zerolog.New(io.Discard))

	result, err := store.Upload(context.Background(), []byte("hello"), "submissions/s1/a1/file.pdf", "application/pdf")
	require.NoError(t, err)
	require.Equal(t, "/local-placeholder/submissions/s1/a1/file.pdf", result.PublicURL)
	require.Equal(t, "submissions/s1/a1/file.pdf", result.Path)

	signed, err := store.SignedURL(context.Background(), result.Path, time.Hour)
	require.NoError(t, err)
	require.Equal(t, result.PublicURL, signed)
}

func TestPlaceholderRejectsEmptyDestination(t *testing.T) {
	store := NewPlaceholder(zerolog.New(io.Discard))

	_, err := store.Upload(context.Background(), nil, "  ", "text/plain")
	require.Error(t, err)
}

func TestUniqueNameKeepsExtension(t *testing.T) {
	first := UniqueName("Report Final.PDF")
	second := UniqueName("Report Final.PDF")

	require.True(t, strings.HasSuffix(first, ".pdf"))
	require.NotEqual(t, first, second)
	require.NotContains(t, first, "-")
}

func TestJoinPathSkipsEmptySegments(t *testing.T) {
	require.Equal(t, "gema/submissions/s1", JoinPath("/gema/", "", "submissions", " s1 "))
	require.Equal(t, "", JoinPath("", "/"))
}
