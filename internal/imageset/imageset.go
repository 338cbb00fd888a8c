// Package imageset loads the ordered, read-only collection of images that the
// browser steps through.
package imageset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mri-enhancer/internal/logger"
	"mri-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ErrEmptyCollection is returned when an operation needs at least one image.
var ErrEmptyCollection = errors.New("image collection is empty")

// Image is one decoded file. Mat holds BGR pixels and must not be modified.
type Image struct {
	Name string
	Path string
	Mat  *safe.Mat
}

// Collection is the ordered set of loaded images, indexed 0..Len()-1.
type Collection struct {
	images []*Image
}

// NewCollection builds a collection from already decoded images, keeping
// their order.
func NewCollection(images ...*Image) *Collection {
	return &Collection{images: images}
}

func (c *Collection) Len() int {
	return len(c.images)
}

func (c *Collection) At(index int) (*Image, error) {
	if index < 0 || index >= len(c.images) {
		return nil, fmt.Errorf("image index %d out of range [0, %d)", index, len(c.images))
	}
	return c.images[index], nil
}

func (c *Collection) Names() []string {
	names := make([]string, len(c.images))
	for i, img := range c.images {
		names[i] = img.Name
	}
	return names
}

// Validate reports ErrEmptyCollection for a collection without images.
func (c *Collection) Validate() error {
	if len(c.images) == 0 {
		return ErrEmptyCollection
	}
	return nil
}

// Close releases every decoded Mat.
func (c *Collection) Close() {
	for _, img := range c.images {
		if img.Mat != nil {
			img.Mat.Close()
		}
	}
}

// Shutdown satisfies shutdown.Shutdownable.
func (c *Collection) Shutdown() {
	c.Close()
}

type Loader struct {
	extensions []string
	logger     logger.Logger
	tracker    safe.MemoryTracker
}

// NewLoader creates a loader for files with the given extensions, compared
// case-insensitively. tracker may be nil.
func NewLoader(extensions []string, log logger.Logger, tracker safe.MemoryTracker) *Loader {
	lowered := make([]string, len(extensions))
	for i, ext := range extensions {
		lowered[i] = strings.ToLower(ext)
	}
	return &Loader{
		extensions: lowered,
		logger:     log,
		tracker:    tracker,
	}
}

// Load decodes every matching file in dir, sorted by filename. Filesystem
// problems are logged and produce an empty collection; undecodable files
// are skipped.
func (l *Loader) Load(dir string) *Collection {
	l.logger.Info("ImageLoader", "loading images from folder", map[string]interface{}{
		"folder":     dir,
		"extensions": l.extensions,
	})

	paths, err := l.matchingFiles(dir)
	if err != nil {
		l.logger.Error("ImageLoader", fmt.Errorf("error loading images: %w", err), map[string]interface{}{
			"folder": dir,
		})
		return NewCollection()
	}

	images := make([]*Image, 0, len(paths))
	for _, path := range paths {
		img, err := l.loadFile(path)
		if err != nil {
			l.logger.Warning("ImageLoader", "skipping undecodable image", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		images = append(images, img)
	}

	l.logger.Info("ImageLoader", "total images loaded", map[string]interface{}{
		"count":   len(images),
		"matched": len(paths),
	})

	if len(images) == 0 {
		l.logger.Warning("ImageLoader", "no images found", map[string]interface{}{
			"folder": dir,
		})
	}

	return NewCollection(images...)
}

func (l *Loader) matchingFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if !l.matches(entry.Name()) {
			continue
		}

		// Stat follows symlinks; links to regular files are kept
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, path)
	}

	sort.Strings(paths)
	return paths, nil
}

func (l *Loader) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range l.extensions {
		if ext == want {
			return true
		}
	}
	return false
}

func (l *Loader) loadFile(path string) (*Image, error) {
	l.logger.Debug("ImageLoader", "loading image", map[string]interface{}{
		"path": path,
	})

	mat := gocv.IMRead(path, gocv.IMReadColor)
	safeMat, err := safe.Wrap(mat, l.tracker, "loaded_image")
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	l.logger.Info("ImageLoader", "image loaded", map[string]interface{}{
		"path":     path,
		"width":    safeMat.Cols(),
		"height":   safeMat.Rows(),
		"channels": safeMat.Channels(),
	})

	return &Image{
		Name: filepath.Base(path),
		Path: path,
		Mat:  safeMat,
	}, nil
}
