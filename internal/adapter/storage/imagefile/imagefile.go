// Package imagefile проверяет загружаемые изображения до записи в файловое хранилище
package imagefile

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/GoArmGo/PhotoGallery/internal/apperr"
	"github.com/GoArmGo/PhotoGallery/internal/domain"
)

// allowed: допустимые MIME-типы и расширения файлов для них
var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Validator проверяет размер, сигнатуру и заголовок изображения
type Validator struct {
	maxBytes int64
}

func NewValidator(maxBytes int64) *Validator {
	return &Validator{maxBytes: maxBytes}
}

// Validate возвращает сведения о файле или ошибку валидации
func (v *Validator) Validate(in domain.UploadPhotoInput) (domain.FileInfo, error) {
	if len(in.Content) == 0 {
		return domain.FileInfo{}, apperr.Validation("File is required")
	}
	if int64(len(in.Content)) > v.maxBytes {
		return domain.FileInfo{}, apperr.Validation(fmt.Sprintf("File too large (max %s)", humanSize(v.maxBytes)))
	}

	detected := http.DetectContentType(in.Content)
	ext, ok := allowed[detected]
	if !ok {
		return domain.FileInfo{}, apperr.Validation("Unsupported file type: only JPEG, PNG, GIF and WebP images are allowed")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil || "image/"+format != detected {
		return domain.FileInfo{}, apperr.Validation("Invalid image file")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return domain.FileInfo{}, apperr.Validation("Invalid image dimensions")
	}

	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && provided != detected {
		return domain.FileInfo{}, apperr.Validation("Image content type mismatch")
	}

	return domain.FileInfo{
		ContentType: detected,
		Ext:         ext,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "image/jpg" || ct == "image/pjpeg" {
		return "image/jpeg"
	}
	return ct
}

func humanSize(n int64) string {
	const mib = 1 << 20
	if n >= mib && n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
