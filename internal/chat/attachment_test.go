package chat_test

import (
	"errors"
	"testing"

	"legalgist/internal/chat"
	"legalgist/internal/testutil"
)

func TestValidateAttachment(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		size     int64
		wantErr  error
	}{
		{"small pdf", chat.MimeTypePDF, 1024, nil},
		{"empty pdf", chat.MimeTypePDF, 0, nil},
		{"exactly 10 MiB", chat.MimeTypePDF, 10 * 1024 * 1024, nil},
		{"11 MiB", chat.MimeTypePDF, 11 * 1024 * 1024, chat.ErrAttachmentTooLarge},
		{"one byte over", chat.MimeTypePDF, chat.MaxAttachmentSize + 1, chat.ErrAttachmentTooLarge},
		{"png", "image/png", 1024, chat.ErrUnsupportedType},
		{"empty type", "", 1024, chat.ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := chat.ValidateAttachment(tt.mimeType, tt.size)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateAttachment() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAttachment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncoder_Encode(t *testing.T) {
	src := testutil.NewStubBlobSource()
	src.Add("blob:pdf", []byte("%PDF-"))
	src.Add("blob:png", []byte("\x89PNG"))
	enc := chat.NewEncoder(src, chat.NewNopLogger())

	t.Run("pdf gets data url", func(t *testing.T) {
		att := chat.Attachment{ID: "a1", Name: "x.pdf", MimeType: chat.MimeTypePDF, Size: 5, Ref: "blob:pdf"}

		got := enc.Encode(att)

		if got.Data != "data:application/pdf;base64,JVBERi0=" {
			t.Errorf("Data = %q", got.Data)
		}
		if got.ID != att.ID || got.Name != att.Name || got.Size != att.Size || got.Ref != att.Ref {
			t.Errorf("metadata changed: %+v", got)
		}
	})

	t.Run("unsupported type passes through", func(t *testing.T) {
		att := chat.Attachment{ID: "a2", MimeType: "image/png", Ref: "blob:png"}
		if got := enc.Encode(att); got.HasPayload() {
			t.Errorf("Data = %q, want empty", got.Data)
		}
	})

	t.Run("existing payload is kept", func(t *testing.T) {
		att := chat.Attachment{ID: "a3", MimeType: chat.MimeTypePDF, Ref: "blob:pdf", Data: "data:application/pdf;base64,QUJD"}
		if got := enc.Encode(att); got.Data != att.Data {
			t.Errorf("Data = %q, want %q", got.Data, att.Data)
		}
	})

	t.Run("no reference passes through", func(t *testing.T) {
		att := chat.Attachment{ID: "a4", MimeType: chat.MimeTypePDF}
		if got := enc.Encode(att); got.HasPayload() {
			t.Errorf("Data = %q, want empty", got.Data)
		}
	})

	t.Run("released reference passes through", func(t *testing.T) {
		src.Add("blob:gone", []byte("%PDF-"))
		src.Revoke("blob:gone")
		att := chat.Attachment{ID: "a5", MimeType: chat.MimeTypePDF, Ref: "blob:gone"}
		if got := enc.Encode(att); got.HasPayload() {
			t.Errorf("Data = %q, want empty", got.Data)
		}
	})

	t.Run("reference is not released", func(t *testing.T) {
		att := chat.Attachment{ID: "a6", MimeType: chat.MimeTypePDF, Ref: "blob:pdf"}
		enc.Encode(att)
		if got := enc.Encode(att); !got.HasPayload() {
			t.Error("second Encode() of the same reference produced no payload")
		}
	})
}

func TestEncoder_EncodeAll(t *testing.T) {
	src := testutil.NewStubBlobSource()
	src.Add("blob:1", []byte("one"))
	enc := chat.NewEncoder(src, chat.NewNopLogger())

	if got := enc.EncodeAll(nil); got != nil {
		t.Errorf("EncodeAll(nil) = %v, want nil", got)
	}

	got := enc.EncodeAll([]chat.Attachment{
		{ID: "a", MimeType: chat.MimeTypePDF, Ref: "blob:1"},
		{ID: "b", MimeType: chat.MimeTypePDF, Ref: "blob:missing"},
	})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("EncodeAll() = %+v", got)
	}
	if !got[0].HasPayload() || got[1].HasPayload() {
		t.Errorf("payloads = [%t %t], want [true false]", got[0].HasPayload(), got[1].HasPayload())
	}
}

func TestDataURL(t *testing.T) {
	if got := chat.DataURL("application/pdf", []byte("ABC")); got != "data:application/pdf;base64,QUJD" {
		t.Errorf("DataURL() = %q", got)
	}
	if got := chat.DataURL("application/pdf", nil); got != "data:application/pdf;base64," {
		t.Errorf("DataURL(nil) = %q", got)
	}
}
