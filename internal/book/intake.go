package book

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kozaktomas/photobook/internal/imagefmt"
)

// DefaultMaxUploadBytes is the per-file upload limit.
const DefaultMaxUploadBytes = 30 << 20

// Rejection codes.
const (
	CodeTooLarge    = "file-too-large"
	CodeInvalidType = "file-invalid-type"
	CodeReadFailed  = "file-read-failed"
)

// Rejection explains why an uploaded file was not added.
type Rejection struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (r *Rejection) Error() string {
	return r.Message
}

// JoinRejections aggregates rejection messages into one user-visible message.
func JoinRejections(rejections []Rejection) string {
	msgs := make([]string, 0, len(rejections))
	for _, r := range rejections {
		msgs = append(msgs, r.Message)
	}
	return strings.Join(msgs, "\n")
}

var acceptedExtensions = map[string]Kind{
	".jpeg": KindImage,
	".jpg":  KindImage,
	".png":  KindImage,
	".gif":  KindImage,
	".bmp":  KindImage,
	".webp": KindImage,
	".pdf":  KindDocument,
}

// AcceptedExtensions returns the lower-case file extensions intake accepts,
// sorted.
func AcceptedExtensions() []string {
	exts := make([]string, 0, len(acceptedExtensions))
	for ext := range acceptedExtensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// HasAcceptedExtension reports whether name carries an accepted extension.
func HasAcceptedExtension(name string) bool {
	_, ok := acceptedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

var sniffedFormats = map[string]imagefmt.Format{
	"image/jpeg": imagefmt.JPEG,
	"image/png":  imagefmt.PNG,
	"image/gif":  imagefmt.GIF,
	"image/bmp":  imagefmt.BMP,
	"image/webp": imagefmt.WEBP,
}

// Intake validates uploads and turns accepted ones into entries.
type Intake struct {
	MaxBytes int64
}

// NewIntake creates an intake with the given per-file limit. A non-positive
// limit selects DefaultMaxUploadBytes.
func NewIntake(maxBytes int64) *Intake {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Intake{MaxBytes: maxBytes}
}

// Accept reads one upload. size is the declared size or -1 when unknown.
// The content is sniffed and must agree with the file extension.
func (in *Intake) Accept(name string, size int64, r io.Reader) (*Entry, *Rejection) {
	if size > in.MaxBytes {
		return nil, in.tooLarge(name, size)
	}

	ext := strings.ToLower(filepath.Ext(name))
	kind, ok := acceptedExtensions[ext]
	if !ok {
		return nil, invalidType(name)
	}

	data, err := io.ReadAll(io.LimitReader(r, in.MaxBytes+1))
	if err != nil {
		return nil, &Rejection{
			File:    name,
			Code:    CodeReadFailed,
			Message: fmt.Sprintf("%q could not be read: %v", name, err),
		}
	}
	if int64(len(data)) > in.MaxBytes {
		return nil, in.tooLarge(name, -1)
	}

	mime := http.DetectContentType(data)
	switch kind {
	case KindDocument:
		if mime != "application/pdf" {
			return nil, invalidType(name)
		}
		return NewEntry(name, NewDocument(data, strings.TrimPrefix(ext, "."))), nil
	default:
		format, ok := sniffedFormats[mime]
		if !ok {
			return nil, invalidType(name)
		}
		return NewEntry(name, NewImage(data, format)), nil
	}
}

func (in *Intake) tooLarge(name string, size int64) *Rejection {
	limitMB := in.MaxBytes >> 20
	msg := fmt.Sprintf("%q exceeds %dMB", name, limitMB)
	if size > 0 {
		msg = fmt.Sprintf("%q exceeds %dMB (%.1fMB)", name, limitMB, float64(size)/1024/1024)
	}
	return &Rejection{File: name, Code: CodeTooLarge, Message: msg}
}

func invalidType(name string) *Rejection {
	return &Rejection{
		File:    name,
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("%q is not a supported format", name),
	}
}
