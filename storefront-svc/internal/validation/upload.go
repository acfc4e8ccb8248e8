package validation

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	MaxUploadBytes = 5 << 20
	maxFilenameLen = 100
)

var (
	allowedImageTypes = map[string][]string{
		"image/jpeg": {".jpg", ".jpeg"},
		"image/png":  {".png"},
		"image/webp": {".webp"},
		"image/gif":  {".gif"},
	}
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
)

// Upload checks an image upload and returns the name it should be stored
// under.
func Upload(filename, contentType string, size int64, now time.Time) (string, error) {
	if size <= 0 {
		return "", Invalid("image", "file is empty")
	}
	if size > MaxUploadBytes {
		return "", Invalid("image", "file exceeds 5MB")
	}

	exts, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return "", Invalid("image", "only JPEG, PNG, WebP and GIF images are allowed")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	matched := false
	for _, allowed := range exts {
		if ext == allowed {
			matched = true
			break
		}
	}
	if !matched {
		return "", Invalid("image", "file extension does not match its content type")
	}

	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + SafeFilename(filename), nil
}

// SafeFilename replaces anything outside [a-zA-Z0-9.-] with an underscore
// and caps the length.
func SafeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if len(name) > maxFilenameLen {
		name = name[:maxFilenameLen]
	}
	return name
}
