package texture

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

// Extensions tried, in order, when an image name has none or its file is missing.
var searchExtensions = []string{".tga", ".png", ".jpg", ".bmp"}

// Cache resolves image names to Images, loading files from a file system on first use.
type Cache struct {
	mu      sync.Mutex
	fsys    fs.FS
	maxSize int
	images  map[string]*Image

	// placeholders makes Find return a generated checker image for missing files.
	placeholders bool
}

// NewCache creates a cache reading from dir ("" = working directory).
// maxSize limits internal texture size (0 = unlimited).
func NewCache(dir string, maxSize int) *Cache {
	if dir == "" {
		dir = "."
	}
	return NewCacheFS(os.DirFS(dir), maxSize, false)
}

// NewCacheFS creates a cache reading from fsys, e.g. a GRF archive.
func NewCacheFS(fsys fs.FS, maxSize int, placeholders bool) *Cache {
	return &Cache{
		fsys:         fsys,
		maxSize:      maxSize,
		images:       make(map[string]*Image),
		placeholders: placeholders,
	}
}

// NewPlaceholderCache creates a cache that never fails: unknown names resolve to a checker image.
func NewPlaceholderCache(dir string) *Cache {
	c := NewCache(dir, 0)
	c.placeholders = true
	return c
}

// Add registers an image under its name, replacing any previous one.
func (c *Cache) Add(img *Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[normalizeName(img.Name)] = img
}

// Find returns the named image, loading it if necessary.
func (c *Cache) Find(name string) (*Image, error) {
	key := normalizeName(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.images[key]; ok {
		return img, nil
	}

	file, err := c.resolve(name)
	if err != nil {
		if !c.placeholders {
			return nil, err
		}
		img := NewImage(name, checker(PlaceholderSize), c.maxSize)
		c.images[key] = img
		return img, nil
	}
	pix, err := LoadFS(c.fsys, file)
	if err != nil {
		return nil, err
	}
	img := NewImage(name, pix, c.maxSize)
	c.images[key] = img
	return img, nil
}

// All returns the cached images sorted by name.
func (c *Cache) All() []*Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Image, 0, len(c.images))
	for _, img := range c.images {
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Cache) resolve(name string) (string, error) {
	base := strings.TrimPrefix(path.Clean(strings.ReplaceAll(name, "\\", "/")), "/")
	if path.Ext(base) != "" && c.exists(base) {
		return base, nil
	}
	for _, ext := range searchExtensions {
		file := strings.TrimSuffix(base, path.Ext(base)) + ext
		if c.exists(file) {
			return file, nil
		}
	}
	return "", fmt.Errorf("image %q: %w", name, fs.ErrNotExist)
}

func (c *Cache) exists(name string) bool {
	if c.fsys == nil || !fs.ValidPath(name) {
		return false
	}
	_, err := fs.Stat(c.fsys, name)
	return err == nil
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(name, path.Ext(name))
}
