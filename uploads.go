package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/utils"
)

const maxUploadSizeBytes int64 = 10 * 1024 * 1024

// spreadsheetExtensions is the allow-list for uploaded report files.
// The reader handles OOXML only, so a binary-format .xls passes this
// check but is rejected at parse time as malformed; most floor tools
// write .xlsx with a legacy extension.
var spreadsheetExtensions = map[string]bool{
	".xls":  true,
	".xlsx": true,
}

// sanitizeFilename strips path separators and anything else that has
// no business in a stored filename.
func sanitizeFilename(input string) string {
	base := filepath.Base(input)
	var out strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '-' || r == '_' || r == '.' || r == ' ' {
			out.WriteRune(r)
		}
	}
	return strings.TrimSpace(out.String())
}

// openUpload validates the form file's extension and size and returns
// its content plus the sanitized filename.
func openUpload(fileHeader *multipart.FileHeader) (io.ReadCloser, string, error) {
	filename := sanitizeFilename(fileHeader.Filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if !spreadsheetExtensions[ext] {
		return nil, "", fmt.Errorf("unsupported file type %q: only .xls and .xlsx are allowed", ext)
	}
	if fileHeader.Size > maxUploadSizeBytes {
		return nil, "", errors.New("file size exceeds 10MB limit")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	return f, filename, nil
}

// saveUpload stores the raw upload under UPLOAD_DIR so MOAT batches can
// be served back and deleted with their rows.
func saveUpload(reader io.Reader, filename string) (string, error) {
	dir := config.UploadDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, filename)
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return dest, nil
}

func removeUpload(filename string) error {
	dest := filepath.Join(config.UploadDir(), sanitizeFilename(filename))
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// withUploadLock serializes ingestion per target table. Uploads are
// single-writer-at-a-time; readers are unaffected.
func withUploadLock(ctx context.Context, key string, fn func() error) error {
	logger := config.GetLogger()

	locker := config.GetRedisLock()
	if locker == nil {
		logger.WithFields(logrus.Fields{
			"field": "withUploadLock",
			"key":   key,
		}).Warn("redis lock not ready; proceeding without upload lock")
		return fn()
	}

	lock, err := locker.Obtain(ctx, "UploadLock:"+key, 60*time.Second, nil)
	if err != nil {
		return errors.New("another upload is in progress; try again shortly")
	}
	defer func() {
		if releaseErr := lock.Release(ctx); releaseErr != nil {
			logger.WithFields(logrus.Fields{
				"field": "withUploadLock",
				"key":   key,
			}).Warn("failed to release upload lock: " + releaseErr.Error())
		}
	}()
	return fn()
}

func serveUploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := sanitizeFilename(c.Param("filename"))
		if filename == "" || strings.Contains(filename, "..") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filename"})
			return
		}
		dest := filepath.Join(config.UploadDir(), filename)
		if _, err := os.Stat(dest); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.File(dest)
	}
}

func getSessionUser(ctx context.Context) (*models.User, error) {
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return nil, errors.New("unauthorized")
	}

	user, err := models.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, errors.New("unauthorized")
	}
	return user, nil
}
