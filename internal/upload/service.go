// Package upload stores base64 data-URI images in a local directory and
// keeps an inventory of the files it serves.
package upload

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/starford/mannaz/internal/apperr"
)

// URLPrefix is the public path under which uploaded images are served.
const URLPrefix = "/api/upload/images/"

var dataURIRe = regexp.MustCompile(`^data:image/(\w+);base64,(.+)$`)

var allowedExts = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"webp": {},
}

// SavedImage describes a stored upload.
type SavedImage struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// ImageInfo is one inventory entry.
type ImageInfo struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Service writes uploads to dir and tracks the directory contents.
type Service struct {
	dir string

	mu        sync.RWMutex
	inventory map[string]int64 // filename -> size
}

// NewService creates the upload service, creating dir if needed and
// loading the existing files into the inventory.
func NewService(dir string) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create dir: %w", err)
	}
	s := &Service{dir: dir, inventory: make(map[string]int64)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("upload: read dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if info, err := e.Info(); err == nil {
			s.inventory[e.Name()] = info.Size()
		}
	}
	return s, nil
}

// Dir returns the uploads directory.
func (s *Service) Dir() string {
	return s.dir
}

// SaveImage validates and decodes a data-URI body and writes it under a
// collision-resistant name. The body must match
// "data:image/<ext>;base64,<payload>" with an allow-listed extension.
func (s *Service) SaveImage(body []byte) (*SavedImage, error) {
	m := dataURIRe.FindSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("not a base64 image data-URI: %w", apperr.ErrInvalid)
	}
	ext := strings.ToLower(string(m[1]))
	if _, ok := allowedExts[ext]; !ok {
		return nil, fmt.Errorf("image type %q not allowed: %w", ext, apperr.ErrInvalid)
	}

	data, err := base64.StdEncoding.DecodeString(string(m[2]))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", apperr.ErrInvalid)
	}

	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("upload: random name: %w", err)
	}
	filename := fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), hex.EncodeToString(buf), ext)

	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return nil, fmt.Errorf("upload: write file: %w", err)
	}

	s.mu.Lock()
	s.inventory[filename] = int64(len(data))
	s.mu.Unlock()

	return &SavedImage{URL: URLPrefix + filename, Filename: filename}, nil
}

// Path resolves a stored filename to its absolute path, rejecting names
// with separators or traversal.
func (s *Service) Path(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required: %w", apperr.ErrInvalid)
	}
	cleaned := filepath.Clean(filename)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename %q: %w", filename, apperr.ErrInvalid)
	}
	return filepath.Join(s.dir, cleaned), nil
}

// List returns the inventory sorted by filename. Because filenames start
// with a millisecond timestamp this is also upload order.
func (s *Service) List() []ImageInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ImageInfo, 0, len(s.inventory))
	for name, size := range s.inventory {
		out = append(out, ImageInfo{Filename: name, Size: size})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out
}

func (s *Service) track(name string, size int64) {
	s.mu.Lock()
	s.inventory[name] = size
	s.mu.Unlock()
}

func (s *Service) forget(name string) {
	s.mu.Lock()
	delete(s.inventory, name)
	s.mu.Unlock()
}
