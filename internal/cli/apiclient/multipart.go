package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// ProgressFunc receives bytes sent so far and the total body size.
type ProgressFunc func(sent, total int64)

// Form is a multipart/form-data body.
type Form struct {
	fields   [][2]string
	files    []formFile
	progress ProgressFunc

	size int64
}

type formFile struct {
	field, name, contentType string
	data                     []byte
}

// NewForm creates an empty form.
func NewForm() *Form {
	return &Form{}
}

// Field adds a text field. Empty values are skipped.
func (f *Form) Field(name, value string) *Form {
	if value != "" {
		f.fields = append(f.fields, [2]string{name, value})
	}
	return f
}

// File adds a file part from memory.
func (f *Form) File(field, filename, contentType string, data []byte) *Form {
	f.files = append(f.files, formFile{field: field, name: filename, contentType: contentType, data: data})
	return f
}

// FileFromPath reads path and adds it as a file part.
func (f *Form) FileFromPath(field, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	f.File(field, filepath.Base(path), ContentTypeByName(path), data)
	return nil
}

// OnProgress sets a callback invoked as the body is sent.
func (f *Form) OnProgress(fn ProgressFunc) *Form {
	f.progress = fn
	return f
}

// HasFiles reports whether any file part was added.
func (f *Form) HasFiles() bool { return len(f.files) > 0 }

// encode renders the body. Bodies are small admin uploads and are built in
// memory so the request has a known Content-Length.
func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", kv[0], err)
		}
	}
	for _, file := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(file.field), escapeQuotes(file.name)))
		ct := file.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", file.name, err)
		}
		if _, err := part.Write(file.data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", file.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}

	f.size = int64(buf.Len())
	var r io.Reader = bytes.NewReader(buf.Bytes())
	if f.progress != nil {
		r = &progressReader{r: r, total: f.size, fn: f.progress}
	}
	return r, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// ContentTypeByName guesses a media type from a file extension.
func ContentTypeByName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	default:
		return "application/octet-stream"
	}
}

type progressReader struct {
	r     io.Reader
	sent  atomic.Int64
	total int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.fn(p.sent.Add(int64(n)), p.total)
	}
	return n, err
}
