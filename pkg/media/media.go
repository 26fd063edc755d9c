// Package media validates uploaded lesson artefacts before they are sent to
// the AI service.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/noah-isme/edupro-navigator/pkg/config"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
)

// Upload is validated inline media ready to forward.
type Upload struct {
	Data     []byte
	MIMEType string
	Resized  bool
}

// Processor enforces the MIME allow-list and size limit.
type Processor struct {
	maxBytes int64
	maxDim   int
	allowed  map[string]struct{}
}

// NewProcessor builds a processor from media configuration.
func NewProcessor(cfg config.MediaConfig) *Processor {
	allowed := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mime := range cfg.AllowedMIMEs {
		allowed[strings.ToLower(mime)] = struct{}{}
	}
	return &Processor{maxBytes: cfg.MaxBytes, maxDim: cfg.MaxImageDimension, allowed: allowed}
}

// Decode accepts raw base64 or a data URL. Images wider or taller than the
// configured dimension are downscaled and re-encoded in their own format.
func (p *Processor) Decode(encoded, mimeType string) (*Upload, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(encoded, ";base64,"); strings.HasPrefix(encoded, "data:") && idx > 0 {
		if mimeType == "" {
			mimeType = strings.ToLower(encoded[len("data:"):idx])
		}
		encoded = encoded[idx+len(";base64,"):]
	}
	if mimeType == "" {
		return nil, rejected(http.StatusBadRequest, "media mime type is required")
	}
	if len(p.allowed) > 0 {
		if _, ok := p.allowed[mimeType]; !ok {
			return nil, rejected(http.StatusUnsupportedMediaType, fmt.Sprintf("media type %s is not supported", mimeType))
		}
	}
	if p.maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(encoded))) > p.maxBytes+2 {
		return nil, rejected(http.StatusRequestEntityTooLarge, fmt.Sprintf("media exceeds %d bytes", p.maxBytes))
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, rejected(http.StatusBadRequest, "media is not valid base64")
	}
	if len(data) == 0 {
		return nil, rejected(http.StatusBadRequest, "media is empty")
	}
	if p.maxBytes > 0 && int64(len(data)) > p.maxBytes {
		return nil, rejected(http.StatusRequestEntityTooLarge, fmt.Sprintf("media exceeds %d bytes", p.maxBytes))
	}

	upload := &Upload{Data: data, MIMEType: mimeType}
	if format, ok := imageFormat(mimeType); ok && p.maxDim > 0 {
		if err := p.downscale(upload, format); err != nil {
			return nil, err
		}
	}
	return upload, nil
}

func (p *Processor) downscale(upload *Upload, format imaging.Format) error {
	img, err := imaging.Decode(bytes.NewReader(upload.Data), imaging.AutoOrientation(true))
	if err != nil {
		return rejected(http.StatusBadRequest, "image could not be decoded")
	}
	bounds := img.Bounds()
	if bounds.Dx() <= p.maxDim && bounds.Dy() <= p.maxDim {
		return nil
	}

	resized := imaging.Fit(img, p.maxDim, p.maxDim, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resize image")
	}
	upload.Data = buf.Bytes()
	upload.Resized = true
	return nil
}

func imageFormat(mimeType string) (imaging.Format, bool) {
	switch mimeType {
	case "image/png":
		return imaging.PNG, true
	case "image/jpeg", "image/jpg":
		return imaging.JPEG, true
	case "image/gif":
		return imaging.GIF, true
	default:
		return 0, false
	}
}

func rejected(status int, message string) *appErrors.Error {
	return appErrors.New(appErrors.ErrMediaRejected.Code, status, message)
}
