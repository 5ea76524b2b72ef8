package blogfront

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	jpegQuality   = 80
	maxPhotoBytes = 20 << 20 // 20MB
)

// handlePhoto proxies a post photo from the backend, downscaling it to
// Config.PhotoMaxWidth.
func (a *App) handlePhoto(c echo.Context) error {
	name, err := pathParam(c, "filename")
	if err != nil || !validPhotoName(name) {
		return echo.ErrNotFound
	}

	body, _, err := a.Client.FetchPhoto(c.Request().Context(), name)
	if err != nil {
		return backendError(err)
	}
	defer body.Close()

	data, err := resizePhoto(io.LimitReader(body, maxPhotoBytes), a.Config.PhotoMaxWidth)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "invalid photo").WithInternal(err)
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}

// validPhotoName rejects anything that could escape the backend's photo
// directory.
func validPhotoName(name string) bool {
	if name == "" || name == "." || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}

// resizePhoto decodes an image from src, scales it down to maxWidth if it
// is wider, and encodes it as JPEG.
func resizePhoto(src io.Reader, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if maxWidth > 0 && w > maxWidth {
		newH := h * maxWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
