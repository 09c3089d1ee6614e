package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"rbc2mm/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFiles struct {
	existing map[string]string
	findErrs []error
	created  map[string]string
	updated  map[string]string
	mimes    []string
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		existing: map[string]string{},
		created:  map[string]string{},
		updated:  map[string]string{},
	}
}

func (f *fakeFiles) Find(_ context.Context, name, folderID string) (string, bool, error) {
	if len(f.findErrs) > 0 {
		err := f.findErrs[0]
		f.findErrs = f.findErrs[1:]
		return "", false, err
	}
	id, ok := f.existing[folderID+"/"+name]
	return id, ok, nil
}

func (f *fakeFiles) Create(_ context.Context, name, folderID, mimeType string, content io.Reader) (string, error) {
	b, _ := io.ReadAll(content)
	f.created[folderID+"/"+name] = string(b)
	f.mimes = append(f.mimes, mimeType)
	return "new-id", nil
}

func (f *fakeFiles) Update(_ context.Context, id, mimeType string, content io.Reader) (string, error) {
	b, _ := io.ReadAll(content)
	f.updated[id] = string(b)
	f.mimes = append(f.mimes, mimeType)
	return id, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestUpload_CreatesNewFile(t *testing.T) {
	files := newFakeFiles()
	u := NewUploader(files, "folder", logging.NewMockLogger()).WithRetry(1, 0)

	res, err := u.Upload(context.Background(), writeFile(t, "Funds.tsv", "a\tb\n"))
	require.NoError(t, err)

	assert.False(t, res.Updated)
	assert.Equal(t, "new-id", res.FileID)
	assert.Equal(t, "a\tb\n", files.created["folder/Funds.tsv"])
	assert.Equal(t, []string{"text/tab-separated-values"}, files.mimes)
}

func TestUpload_ReplacesExistingFile(t *testing.T) {
	files := newFakeFiles()
	files.existing["folder/Funds.tsv"] = "abc"
	logger := logging.NewMockLogger()
	u := NewUploader(files, "folder", logger).WithRetry(1, 0)

	res, err := u.Upload(context.Background(), writeFile(t, "Funds.tsv", "new"))
	require.NoError(t, err)

	assert.True(t, res.Updated)
	assert.Equal(t, "abc", res.FileID)
	assert.Equal(t, "new", files.updated["abc"])
	assert.Empty(t, files.created)
	assert.True(t, logger.HasEntry("INFO", "Updated file on Drive"))
}

func TestUpload_RetriesTransientErrors(t *testing.T) {
	files := newFakeFiles()
	files.findErrs = []error{errors.New("503")}
	logger := logging.NewMockLogger()
	u := NewUploader(files, "folder", logger).WithRetry(3, 0)

	_, err := u.Upload(context.Background(), writeFile(t, "out.csv", "x"))
	require.NoError(t, err)
	assert.Equal(t, "x", files.created["folder/out.csv"])
	assert.Len(t, logger.GetEntriesByLevel("WARN"), 1)
}

func TestUpload_GivesUp(t *testing.T) {
	files := newFakeFiles()
	files.findErrs = []error{errors.New("503"), errors.New("503")}
	u := NewUploader(files, "folder", logging.NewMockLogger()).WithRetry(2, 0)

	_, err := u.Upload(context.Background(), writeFile(t, "out.csv", "x"))
	assert.ErrorContains(t, err, "503")
}

func TestUpload_Validation(t *testing.T) {
	u := NewUploader(newFakeFiles(), "", logging.NewMockLogger())
	_, err := u.Upload(context.Background(), "whatever.csv")
	assert.ErrorContains(t, err, "folder id")

	u = NewUploader(newFakeFiles(), "folder", logging.NewMockLogger())
	_, err = u.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestSearchQuery(t *testing.T) {
	assert.Equal(t,
		`name = 'Bob\'s.tsv' and 'f1' in parents and trashed = false`,
		searchQuery("Bob's.tsv", "f1"))
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "text/csv", MimeType("a.CSV"))
	assert.Equal(t, "application/octet-stream", MimeType("a.unknownext"))
}
