package services

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/abrezinsky/partyvote/internal/models"
)

// EncodeLogo turns an uploaded image into the data URL sent at registration.
// No data yields the placeholder logo. maxBytes <= 0 disables the size check.
func EncodeLogo(data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return models.PlaceholderLogo, nil
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", &LogoTooLargeError{
			Size:  int64(len(data)),
			Limit: maxBytes,
			label: humanize.IBytes(uint64(maxBytes)),
		}
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotAnImage
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
