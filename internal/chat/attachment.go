package chat

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// MaxAttachmentSize is the largest attachment accepted at ingestion (10 MiB).
const MaxAttachmentSize int64 = 10 * 1024 * 1024

// MimeTypePDF is the only media type accepted for attachments.
const MimeTypePDF = "application/pdf"

var (
	ErrUnsupportedType    = errors.New("unsupported attachment type")
	ErrAttachmentTooLarge = errors.New("attachment too large")
)

// IsSupportedType reports whether attachments of this media type are accepted.
func IsSupportedType(mimeType string) bool {
	return mimeType == MimeTypePDF
}

// ValidateAttachment applies the ingestion policy: PDF only, at most
// MaxAttachmentSize bytes. It runs before an attachment is staged.
func ValidateAttachment(mimeType string, size int64) error {
	if !IsSupportedType(mimeType) {
		return fmt.Errorf("%w: %s (only PDF files are supported)", ErrUnsupportedType, mimeType)
	}
	if size > MaxAttachmentSize {
		return fmt.Errorf("%w: %d bytes (maximum is %d)", ErrAttachmentTooLarge, size, MaxAttachmentSize)
	}
	return nil
}

// BlobSource resolves transient attachment references to their content.
// References may have been released already; Open then returns an error.
type BlobSource interface {
	Open(ref string) (io.ReadCloser, error)
}

// Encoder turns attachments that are only reachable through a transient
// reference into attachments carrying their content as a data URL.
type Encoder struct {
	source BlobSource
	logger Logger
}

// NewEncoder creates an Encoder reading from source.
func NewEncoder(source BlobSource, logger Logger) *Encoder {
	return &Encoder{source: source, logger: logger}
}

// Encode returns a copy of att with Data populated.
//
// Unsupported types, attachments that already carry a payload and attachments
// without a reference are returned unchanged. A reference that can no longer be
// read is logged and the attachment is returned unchanged. Encode never
// releases the reference and does not check the size.
func (e *Encoder) Encode(att Attachment) Attachment {
	if !IsSupportedType(att.MimeType) || att.HasPayload() || att.Ref == "" {
		return att
	}

	data, err := e.read(att.Ref)
	if err != nil {
		e.logger.Error("storing attachment data failed", "attachment", att.ID, "name", att.Name, "error", err)
		return att
	}

	att.Data = DataURL(att.MimeType, data)
	return att
}

// EncodeAll encodes each attachment in order.
func (e *Encoder) EncodeAll(atts []Attachment) []Attachment {
	if len(atts) == 0 {
		return nil
	}
	out := make([]Attachment, len(atts))
	for i, att := range atts {
		out[i] = e.Encode(att)
	}
	return out
}

func (e *Encoder) read(ref string) ([]byte, error) {
	r, err := e.source.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", ref, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ref, err)
	}
	return data, nil
}

// DataURL encodes data as "data:<mime>;base64,<payload>".
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
