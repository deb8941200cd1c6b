package storage

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorportal/catalog"
	"vendorportal/models"
)

func TestMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()

	u := &models.User{Email: "Vendor@Grote.com", Role: models.RoleVendor, Vendor: "Grote Lighting", Active: true}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Equal(t, 1, u.ID)
	assert.Error(t, s.CreateUser(ctx, &models.User{Email: "vendor@grote.com"}))

	got, err := s.GetUserByEmail(ctx, "VENDOR@grote.com")
	require.NoError(t, err)
	assert.Equal(t, "Grote Lighting", got.Vendor)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemorySessionStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.SaveSession(ctx, &models.Session{UserID: 1, SessionID: "a", ExpiresAt: now.Add(time.Hour)}, true))
	require.NoError(t, s.SaveSession(ctx, &models.Session{UserID: 1, SessionID: "b", ExpiresAt: now.Add(-time.Minute)}, true))
	require.NoError(t, s.SaveSession(ctx, &models.Session{UserID: 2, SessionID: "c", ExpiresAt: now.Add(time.Hour)}, true))

	n, err := s.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = s.GetSession(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveSession(ctx, &models.Session{UserID: 1, SessionID: "d", ExpiresAt: now.Add(time.Hour)}, false))
	_, err = s.GetSession(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound, "single session mode drops the user's other sessions")
	_, err = s.GetSession(ctx, "c")
	assert.NoError(t, err)

	require.NoError(t, s.DeleteSession(ctx, "d"))
	assert.ErrorIs(t, s.DeleteSession(ctx, "d"), ErrNotFound)
}

func TestMemorySubmissionStoreNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySubmissionStore()
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, s.RecordSubmission(ctx, &models.Submission{SubmissionID: id, Vendor: "Tetran"}))
	}
	require.NoError(t, s.RecordSubmission(ctx, &models.Submission{SubmissionID: "4", Vendor: "Stemco"}))

	subs, err := s.ListSubmissions(ctx, "Tetran", 2)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "3", subs[0].SubmissionID)
	assert.Equal(t, "2", subs[1].SubmissionID)

	all, err := s.ListSubmissions(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSubmissionGormFilesRoundTrip(t *testing.T) {
	sub := models.Submission{SubmissionID: "x", Files: []string{"a.xml", "b.xlsx"}}
	assert.Equal(t, sub.Files, models.NewSubmissionGorm(sub).ToSubmission().Files)
	assert.Nil(t, models.NewSubmissionGorm(models.Submission{}).ToSubmission().Files)
}

func sampleEntry(sku string) BatchEntry {
	book := catalog.Book{}
	book.Append(catalog.SheetItemMaster, []string{"Tetran", sku})
	return BatchEntry{Vendor: "Tetran", SKU: sku, MethodSummary: "Net Cost Provided", Rows: book}
}

func TestMemoryBatchStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryBatchStore()

	require.NoError(t, s.Append(ctx, "sid", sampleEntry("A")))
	require.NoError(t, s.Append(ctx, "sid", sampleEntry("B")))
	require.NoError(t, s.Append(ctx, "other", sampleEntry("C")))

	entries, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "B", entries[1].SKU)

	require.NoError(t, s.Clear(ctx, "sid"))
	entries, err = s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, _ = s.Load(ctx, "other")
	assert.Len(t, entries, 1)
}

func TestDecodeBatch(t *testing.T) {
	data, err := json.Marshal(sampleEntry("A"))
	require.NoError(t, err)

	entries, err := decodeBatch([]string{string(data)})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, [][]string{{"Tetran", "A"}}, entries[0].Rows[catalog.SheetItemMaster])

	_, err = decodeBatch([]string{"{"})
	assert.Error(t, err)
}

func TestLocalBlobStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Upload(ctx, "bronze", "raw/vendor=Tetran/a.txt", strings.NewReader("one")))
	require.NoError(t, s.Upload(ctx, "bronze", "raw/vendor=Tetran/b.txt", strings.NewReader("two")))
	require.NoError(t, s.Upload(ctx, "bronze", "raw/vendor=Stemco/c.txt", strings.NewReader("three")))

	data, err := s.Download(ctx, "bronze", "raw/vendor=Tetran/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	blobs, err := s.List(ctx, "bronze", "raw/vendor=Tetran/")
	require.NoError(t, err)
	require.Len(t, blobs, 2)
	assert.Equal(t, "raw/vendor=Tetran/a.txt", blobs[0].Name)
	assert.EqualValues(t, 3, blobs[1].Size)

	empty, err := s.List(ctx, "silver", "")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.Move(ctx, "bronze", "raw/vendor=Tetran/a.txt", "raw/vendor=Tetran/moved/a.txt"))
	_, err = s.Download(ctx, "bronze", "raw/vendor=Tetran/a.txt")
	assert.ErrorIs(t, err, ErrBlobNotFound)

	require.NoError(t, s.Delete(ctx, "bronze", "raw/vendor=Tetran/moved/a.txt"))
	assert.ErrorIs(t, s.Delete(ctx, "bronze", "raw/vendor=Tetran/moved/a.txt"), ErrBlobNotFound)

	url, err := s.ReadURL(ctx, "bronze", "raw/vendor=Tetran/b.txt", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.True(t, strings.HasSuffix(url, "raw/vendor=Tetran/b.txt"))
}

func TestLocalBlobStoreRejectsEscapes(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../x", "a/../../x", "/etc/passwd", "", `a\b`} {
		err := s.Upload(ctx, "bronze", name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidPath, name)
	}
	_, err = s.Download(ctx, "../bronze", "x")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestJSONHelpersAndLatest(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	in := models.Status{Vendor: "Tetran", Stage: "UPLOAD", Status: "DONE"}
	require.NoError(t, UploadJSON(ctx, s, "silver", "logs/status.json", in))

	var out models.Status
	require.NoError(t, DownloadJSON(ctx, s, "silver", "logs/status.json", &out))
	assert.Equal(t, in, out)
	assert.ErrorIs(t, DownloadJSON(ctx, s, "silver", "logs/missing.json", &out), ErrBlobNotFound)

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	latest, ok := Latest([]BlobInfo{
		{Name: "b", LastModified: t0.Add(time.Hour)},
		{Name: "c", LastModified: t0},
		{Name: "a", LastModified: t0.Add(time.Hour)},
	})
	require.True(t, ok)
	assert.Equal(t, "b", latest.Name)
	_, ok = Latest(nil)
	assert.False(t, ok)
	assert.Equal(t, "status.json", BaseName("logs/status.json"))
}
