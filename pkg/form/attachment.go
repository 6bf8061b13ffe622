package form

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Attachment is an opaque, read-only reference to uploaded bytes. Treat the
// value as immutable once constructed; snapshots share it.
type Attachment struct {
	name        string
	contentType string
	data        []byte
}

// NewAttachment copies data into a new Attachment. When contentType is empty
// it is derived from the name's extension, then sniffed from the content.
func NewAttachment(name, contentType string, data []byte) *Attachment {
	buf := append([]byte(nil), data...)
	return &Attachment{
		name:        strings.TrimSpace(name),
		contentType: resolveContentType(name, contentType, buf),
		data:        buf,
	}
}

// AttachmentFromFile reads path from disk into an Attachment.
func AttachmentFromFile(path string) (*Attachment, error) {
	clean := filepath.Clean(strings.TrimSpace(path))
	if clean == "" || clean == "." {
		return nil, fmt.Errorf("form: attachment path is required")
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("form: read attachment %s: %w", clean, err)
	}
	return NewAttachment(filepath.Base(clean), "", data), nil
}

// Name returns the original file name, if known.
func (a *Attachment) Name() string {
	if a == nil {
		return ""
	}
	return a.name
}

// ContentType returns the MIME type used when the attachment is transmitted.
func (a *Attachment) ContentType() string {
	if a == nil {
		return ""
	}
	return a.contentType
}

// Size reports the attachment length in bytes.
func (a *Attachment) Size() int {
	if a == nil {
		return 0
	}
	return len(a.data)
}

// Bytes returns a copy of the attachment content.
func (a *Attachment) Bytes() []byte {
	if a == nil {
		return nil
	}
	return append([]byte(nil), a.data...)
}

func resolveContentType(name, contentType string, data []byte) string {
	if ct := strings.TrimSpace(contentType); ct != "" {
		return ct
	}
	if ext := filepath.Ext(name); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return http.DetectContentType(data)
}
