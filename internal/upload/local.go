package upload

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage writes images under Dir and serves them below URLPrefix.
type LocalStorage struct {
	Dir       string
	URLPrefix string
}

var _ Storage = (*LocalStorage)(nil)

func NewLocalStorage(dir, urlPrefix string) *LocalStorage {
	return &LocalStorage{
		Dir:       filepath.Clean(dir),
		URLPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}
}

func (s *LocalStorage) Save(_ context.Context, file *multipart.FileHeader) (string, error) {
	img, err := ReadImage(file)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		log.Printf("[UPLOAD] [ERROR] failed to create directory %s: %v", s.Dir, err)
		return "", err
	}

	fullPath := filepath.Join(s.Dir, img.Name)
	if err := os.WriteFile(fullPath, img.Data, 0o644); err != nil {
		log.Printf("[UPLOAD] [ERROR] failed to save file %s: %v", fullPath, err)
		return "", err
	}

	log.Printf("[UPLOAD] [INFO] saved %s (%s, %d bytes)", img.Name, img.ContentType, len(img.Data))
	return path.Join(s.URLPrefix, img.Name), nil
}

// Delete removes a previously saved image. URLs outside the prefix are
// refused and missing files are not an error.
func (s *LocalStorage) Delete(_ context.Context, url string) error {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil
	}

	cleanRel := path.Clean("/" + strings.TrimPrefix(trimmed, "/"))
	if !strings.HasPrefix(cleanRel, s.URLPrefix+"/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", url)
	}
	name := strings.TrimPrefix(cleanRel, s.URLPrefix+"/")

	cleanBase := s.Dir
	cleanTarget := filepath.Clean(filepath.Join(cleanBase, filepath.FromSlash(name)))
	if !strings.HasPrefix(cleanTarget, cleanBase+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside upload dir: %s", url)
	}

	if err := os.Remove(cleanTarget); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}
