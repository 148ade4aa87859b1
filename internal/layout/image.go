package layout

import (
	"image"
	"log"

	// decoders for image.DecodeConfig
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/net/html"

	htmlparser "github.com/gompdf/pageflow/internal/parser/html"
	"github.com/gompdf/pageflow/internal/res"
	"github.com/gompdf/pageflow/internal/style"
)

const defaultImageSize = 40.0

// ImageLoader fetches the bytes behind an <img> src
type ImageLoader interface {
	Load(ref string) (*res.Resource, error)
}

// intrinsic is the decoded pixel size of an image; ok is false when it could not be read
type intrinsic struct {
	width, height float64
	ok            bool
}

// SetImageLoader sets where image sources are read from. Without one, images
// with no explicit size measure as a 40px square.
func (e *Engine) SetImageLoader(loader ImageLoader) {
	e.imageMu.Lock()
	defer e.imageMu.Unlock()
	e.images = loader
	e.intrinsics = make(map[string]intrinsic)
}

// intrinsicSize decodes the header of the image at src, caching the result
func (e *Engine) intrinsicSize(src string) (float64, float64, bool) {
	e.imageMu.Lock()
	defer e.imageMu.Unlock()
	if e.images == nil || src == "" {
		return 0, 0, false
	}
	if in, ok := e.intrinsics[src]; ok {
		return in.width, in.height, in.ok
	}

	var in intrinsic
	r, err := e.images.Load(src)
	if err == nil {
		var cfg image.Config
		cfg, _, err = image.DecodeConfig(r.Reader())
		if err == nil && cfg.Width > 0 && cfg.Height > 0 {
			in = intrinsic{width: float64(cfg.Width), height: float64(cfg.Height), ok: true}
		}
	}
	if err != nil && e.options.Debug {
		log.Printf("[Layout] failed to read image %s: %v", src, err)
	}
	e.intrinsics[src] = in
	return in.width, in.height, in.ok
}

// imageSize sizes an <img> from its style or attributes, filling in missing
// dimensions from the decoded image. Images wider than the body shrink to fit.
func (e *Engine) imageSize(n *html.Node, cs style.ComputedStyle) (float64, float64) {
	fs := cs.FontSize()
	dim := func(prop string) float64 {
		if v := cs.Get(prop); v != "" {
			if d := style.ParseLength(v, 0, fs, 0); d > 0 {
				return d
			}
		}
		if v, ok := htmlparser.Attr(n, prop); ok {
			if d := style.ParseLength(v, 0, fs, 0); d > 0 {
				return d
			}
		}
		return 0
	}
	w, h := dim("width"), dim("height")
	if w > 0 && h > 0 {
		return w, h
	}

	src, _ := htmlparser.Attr(n, "src")
	iw, ih, ok := e.intrinsicSize(src)
	if !ok {
		switch {
		case w == 0 && h == 0:
			return defaultImageSize, defaultImageSize
		case w == 0:
			return h, h
		}
		return w, w
	}

	switch {
	case w > 0:
		h = w * ih / iw
	case h > 0:
		w = h * iw / ih
	default:
		w, h = iw, ih
		if limit := e.options.Width; limit > 0 && w > limit {
			h *= limit / w
			w = limit
		}
	}
	return w, h
}
