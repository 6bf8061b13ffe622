package packager

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Encoded is a serialised multipart body ready to send.
type Encoded struct {
	ContentType string
	Body        []byte
}

// Reader returns a fresh reader over the body.
func (e Encoded) Reader() io.Reader {
	return bytes.NewReader(e.Body)
}

// EncoderOption customises an Encoder.
type EncoderOption func(*Encoder)

// WithBoundary fixes the multipart boundary, mainly for golden tests.
func WithBoundary(boundary string) EncoderOption {
	return func(e *Encoder) {
		e.boundary = strings.TrimSpace(boundary)
	}
}

// Encoder writes payloads as multipart/form-data.
type Encoder struct {
	boundary string
}

// NewEncoder returns an Encoder using a random boundary unless overridden.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Encode serialises payload into memory.
func (e *Encoder) Encode(payload Payload) (Encoded, error) {
	var buf bytes.Buffer
	contentType, err := e.EncodeTo(&buf, payload)
	if err != nil {
		return Encoded{}, err
	}
	return Encoded{ContentType: contentType, Body: buf.Bytes()}, nil
}

// EncodeTo streams payload into w and returns the Content-Type header value,
// boundary included.
func (e *Encoder) EncodeTo(w io.Writer, payload Payload) (string, error) {
	mw := multipart.NewWriter(w)
	if e != nil && e.boundary != "" {
		if err := mw.SetBoundary(e.boundary); err != nil {
			return "", fmt.Errorf("packager: set boundary: %w", err)
		}
	}

	for _, part := range payload.Parts {
		if part.IsFile() {
			if err := writeFile(mw, part); err != nil {
				return "", err
			}
			continue
		}
		if err := mw.WriteField(part.Name, part.Value); err != nil {
			return "", fmt.Errorf("packager: write field %s: %w", part.Name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("packager: close multipart writer: %w", err)
	}
	return mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(mw *multipart.Writer, part Part) error {
	contentType := part.File.ContentType()
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(part.Name), quoteEscaper.Replace(part.Value)))
	header.Set("Content-Type", contentType)

	w, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("packager: create part %s: %w", part.Name, err)
	}
	if _, err := w.Write(part.File.Bytes()); err != nil {
		return fmt.Errorf("packager: write part %s: %w", part.Name, err)
	}
	return nil
}
