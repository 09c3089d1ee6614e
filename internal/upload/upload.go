// Package upload publishes result files to a Google Drive folder, replacing a
// file of the same name when one exists.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rbc2mm/internal/logging"

	"github.com/avast/retry-go"
)

// Files is the subset of the Drive files API the uploader needs.
type Files interface {
	Find(ctx context.Context, name, folderID string) (id string, found bool, err error)
	Create(ctx context.Context, name, folderID, mimeType string, content io.Reader) (string, error)
	Update(ctx context.Context, id, mimeType string, content io.Reader) (string, error)
}

// Result describes a finished upload.
type Result struct {
	FileID  string
	Name    string
	Updated bool
}

// Uploader sends local files to one Drive folder.
type Uploader struct {
	files      Files
	folderID   string
	attempts   uint
	retryDelay time.Duration
	logger     logging.Logger
}

// NewUploader creates an uploader for the given folder.
func NewUploader(files Files, folderID string, logger logging.Logger) *Uploader {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Uploader{
		files:      files,
		folderID:   folderID,
		attempts:   3,
		retryDelay: time.Second,
		logger:     logger,
	}
}

// WithRetry overrides the retry policy.
func (u *Uploader) WithRetry(attempts uint, delay time.Duration) *Uploader {
	if attempts == 0 {
		attempts = 1
	}
	u.attempts = attempts
	u.retryDelay = delay
	return u
}

// Upload sends the file at path, updating an existing file with the same
// name in the folder or creating a new one.
func (u *Uploader) Upload(ctx context.Context, path string) (Result, error) {
	if u.folderID == "" {
		return Result{}, fmt.Errorf("upload folder id is not configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	name := filepath.Base(path)
	mimeType := MimeType(path)
	res := Result{Name: name}

	err = retry.Do(
		func() error {
			id, found, err := u.files.Find(ctx, name, u.folderID)
			if err != nil {
				return fmt.Errorf("searching drive: %w", err)
			}
			if found {
				res.FileID, err = u.files.Update(ctx, id, mimeType, bytes.NewReader(data))
				res.Updated = true
			} else {
				res.FileID, err = u.files.Create(ctx, name, u.folderID, mimeType, bytes.NewReader(data))
				res.Updated = false
			}
			return err
		},
		retry.Context(ctx),
		retry.RetryIf(func(error) bool { return ctx.Err() == nil }),
		retry.Attempts(u.attempts),
		retry.Delay(u.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			u.logger.WithError(err).Warn("Drive upload failed, retrying",
				logging.Field{Key: logging.FieldFile, Value: name},
				logging.Field{Key: logging.FieldAttempt, Value: n + 1})
		}),
	)
	if err != nil {
		return Result{}, fmt.Errorf("failed to upload %s: %w", name, err)
	}

	action := "Uploaded file to Drive"
	if res.Updated {
		action = "Updated file on Drive"
	}
	u.logger.Info(action,
		logging.Field{Key: logging.FieldFile, Value: name},
		logging.Field{Key: "file_id", Value: res.FileID})
	return res, nil
}

// MimeType picks the upload content type from the file extension.
func MimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv":
		return "text/tab-separated-values"
	case ".csv":
		return "text/csv"
	}
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
