package res

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a local resource exists neither at its
// resolved path nor in any search path
var ErrNotFound = errors.New("resource not found")

// Kind represents the kind of document a resource holds
type Kind int

const (
	// KindOther is anything the importer does not understand
	KindOther Kind = iota
	// KindHTML is an HTML document or fragment
	KindHTML
	// KindMarkdown is a Markdown document
	KindMarkdown
	// KindText is plain text
	KindText
	// KindSnapshot is a saved page list (JSON)
	KindSnapshot
	// KindCSS is a stylesheet
	KindCSS
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindMarkdown:
		return "markdown"
	case KindText:
		return "text"
	case KindSnapshot:
		return "snapshot"
	case KindCSS:
		return "css"
	default:
		return "other"
	}
}

// Resource represents a loaded resource
type Resource struct {
	URL      string
	Kind     Kind
	Data     []byte
	MimeType string
}

// Loader loads documents from files, http(s) URLs and data: URIs and caches
// them by reference
type Loader struct {
	// Base URL or file path for resolving relative references
	BaseURL string

	cache     map[string]*Resource
	cacheLock sync.RWMutex

	searchPaths []string

	client *http.Client
}

// NewLoader creates a new resource loader
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL: baseURL,
		cache:   make(map[string]*Resource),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// AddSearchPath adds a directory to search for local resources
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// Forget drops a reference from the cache so the next Load reads it again
func (l *Loader) Forget(ref string) {
	l.cacheLock.Lock()
	delete(l.cache, ref)
	l.cacheLock.Unlock()
}

// Load loads a resource from a URL, data: URI or file path
func (l *Loader) Load(ref string) (*Resource, error) {
	l.cacheLock.RLock()
	if res, ok := l.cache[ref]; ok {
		l.cacheLock.RUnlock()
		return res, nil
	}
	l.cacheLock.RUnlock()

	var (
		res *Resource
		err error
	)
	if strings.HasPrefix(ref, "data:") {
		res, err = parseDataURL(ref)
	} else {
		var resolved string
		resolved, err = l.resolveURL(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", ref, err)
		}
		if isRemote(resolved) {
			res, err = l.loadRemote(resolved)
		} else {
			res, err = l.loadLocal(resolved)
		}
	}
	if err != nil {
		return nil, err
	}

	l.cacheLock.Lock()
	l.cache[ref] = res
	l.cacheLock.Unlock()
	return res, nil
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// parseDataURL parses a data URL (RFC 2397).
//
//	data:text/html;base64,PHA+aGk8L3A+
//	data:text/plain,Hello%20World
func parseDataURL(u string) (*Resource, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URL")
	}

	mimeType := "text/plain"
	isBase64 := false
	comps := strings.Split(meta, ";")
	if comps[0] != "" {
		mimeType = comps[0]
	}
	for _, c := range comps[1:] {
		if strings.EqualFold(strings.TrimSpace(c), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		d, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
		data = d
	} else if d, err := url.PathUnescape(payload); err == nil {
		data = []byte(d)
	} else {
		data = []byte(payload)
	}

	return &Resource{URL: u, Data: data, MimeType: mimeType, Kind: kindOf(mimeType, "")}, nil
}

// resolveURL resolves a reference relative to the base URL
func (l *Loader) resolveURL(ref string) (string, error) {
	if isRemote(ref) || filepath.IsAbs(ref) || l.BaseURL == "" {
		return ref, nil
	}

	if !isRemote(l.BaseURL) {
		return filepath.Join(filepath.Dir(l.BaseURL), ref), nil
	}

	base, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}

func (l *Loader) loadRemote(u string) (*Resource, error) {
	resp, err := l.client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: HTTP %s", u, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", u, err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mt
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimeTypeOf(u)
	}
	return &Resource{URL: u, Data: data, MimeType: mimeType, Kind: kindOf(mimeType, u)}, nil
}

func (l *Loader) loadLocal(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l.loadFromSearchPaths(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return newLocal(path, data), nil
}

func (l *Loader) loadFromSearchPaths(filename string) (*Resource, error) {
	base := filepath.Base(filename)
	for _, dir := range l.searchPaths {
		path := filepath.Join(dir, base)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return newLocal(path, data), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
}

func newLocal(path string, data []byte) *Resource {
	mimeType := mimeTypeOf(path)
	return &Resource{URL: path, Data: data, MimeType: mimeType, Kind: kindOf(mimeType, path)}
}

// mimeTypeOf guesses the MIME type from a file extension
func mimeTypeOf(path string) string {
	if u, err := url.Parse(path); err == nil && isRemote(path) {
		path = u.Path
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return "text/html"
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt", ".text":
		return "text/plain"
	case ".json":
		return "application/json"
	case ".css":
		return "text/css"
	default:
		return "application/octet-stream"
	}
}

// kindOf determines the kind of a resource from its MIME type, falling back
// to the extension of path
func kindOf(mimeType, path string) Kind {
	switch mimeType {
	case "text/html", "application/xhtml+xml":
		return KindHTML
	case "text/markdown", "text/x-markdown":
		return KindMarkdown
	case "text/plain":
		return KindText
	case "application/json":
		return KindSnapshot
	case "text/css":
		return KindCSS
	}
	if path != "" {
		if mt := mimeTypeOf(path); mt != "application/octet-stream" {
			return kindOf(mt, "")
		}
	}
	return KindOther
}

// LoadCSS loads a stylesheet
func (l *Loader) LoadCSS(ref string) (*Resource, error) {
	r, err := l.Load(ref)
	if err != nil {
		return nil, err
	}
	if r.Kind != KindCSS {
		return nil, fmt.Errorf("resource is not CSS: %s", ref)
	}
	return r, nil
}

// Reader returns a reader over the resource data
func (r *Resource) Reader() *bytes.Reader {
	return bytes.NewReader(r.Data)
}

// String returns the resource data as a string
func (r *Resource) String() string {
	return string(r.Data)
}
