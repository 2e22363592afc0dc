// Package annotations gathers YOLO label files from an extracted dataset tree.
package annotations

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/dataset-hub/internal/layout"
	"github.com/jonathan/dataset-hub/internal/yolo"
)

// ValidationError reports that no annotation files were found anywhere in the
// dataset tree.
type ValidationError struct {
	Searched []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("no annotation files found (searched %d label directories)", len(e.Searched))
}

// Collector reads annotation files and resolves their lines against a class
// schema.
type Collector struct {
	log *zap.Logger
}

func NewCollector(log *zap.Logger) *Collector {
	return &Collector{log: log}
}

// Collect walks every candidate labels directory under root and parses each
// .txt file found. Malformed lines and unreadable files are logged and
// skipped. Files sharing a stem across directories resolve last-write-wins in
// candidate-directory order. Returns annotations keyed by file stem.
func (c *Collector) Collect(root string, classNames []string) (map[string][]yolo.Annotation, error) {
	dirs := layout.CandidateDirs(root, "labels")

	result := make(map[string][]yolo.Annotation)
	files := 0
	for _, dir := range dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if strings.ToLower(filepath.Ext(d.Name())) != ".txt" {
				return nil
			}

			anns, err := c.parseFile(path, classNames)
			if err != nil {
				c.log.Warn("skipping unreadable annotation file",
					zap.String("path", path), zap.Error(err))
				return nil
			}

			stem := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
			result[stem] = anns
			files++
			return nil
		})
	}

	if files == 0 {
		return nil, &ValidationError{Searched: dirs}
	}

	c.log.Info("collected annotations",
		zap.Int("files", files), zap.Int("stems", len(result)))
	return result, nil
}

func (c *Collector) parseFile(path string, classNames []string) ([]yolo.Annotation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	anns := make([]yolo.Annotation, 0)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ann, err := yolo.ParseAnnotation(line, classNames)
		if err != nil {
			c.log.Warn("skipping malformed annotation line",
				zap.String("path", path), zap.Error(err))
			continue
		}
		anns = append(anns, ann)
	}
	return anns, nil
}
