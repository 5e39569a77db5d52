// Package images loads local case photos and encodes them for vision calls.
package images

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var supportedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Image is one case photo ready to send to a classifier.
type Image struct {
	Filename string
	DataURL  string
}

// Supported reports whether filename has a recognized image extension.
func Supported(filename string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ListImageFiles returns the supported image files in dir, sorted by name.
func ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image folder: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := supportedExtensions[ext]; ok {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// EncodeDataURL reads path and returns its contents as a base64 data URL.
func EncodeDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	mime := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	if mime == "" {
		return "", fmt.Errorf("unsupported image extension: %s", filepath.Ext(path))
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Load lists and encodes every supported image in dir.
func Load(dir string) ([]Image, error) {
	files, err := ListImageFiles(dir)
	if err != nil {
		return nil, err
	}

	images := make([]Image, 0, len(files))
	for _, name := range files {
		dataURL, err := EncodeDataURL(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", name, err)
		}
		images = append(images, Image{Filename: name, DataURL: dataURL})
	}
	return images, nil
}
