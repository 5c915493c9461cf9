package bot

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".jfif": true,
}

// randomImage picks a random picture from dir/folder. It reports false when
// the folder is missing or holds no pictures.
func randomImage(dir, folder string) (string, bool) {
	path := filepath.Join(dir, folder)
	entries, err := os.ReadDir(path)
	if err != nil {
		return "", false
	}

	var images []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			images = append(images, e.Name())
		}
	}
	if len(images) == 0 {
		return "", false
	}
	return filepath.Join(path, images[rand.IntN(len(images))]), true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
