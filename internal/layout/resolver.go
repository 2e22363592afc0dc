// Package layout locates the usable root of an extracted dataset archive and
// enumerates candidate annotation and image directories beneath it.
package layout

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Resolve walks an ordered cascade of heuristics over the extracted tree and
// returns the directory that should be treated as the dataset root:
//
//  1. the root itself, if it holds both images/ and labels/
//  2. a direct child holding both images/ and labels/
//  3. the parent of any nested labels/ dir that also has an images/ sibling
//  4. the parent of the first nested labels/ dir found
//  5. the root, unchanged
func Resolve(root string) string {
	if hasBoth(root) {
		return root
	}

	children, err := os.ReadDir(root)
	if err == nil {
		for _, child := range children {
			if !child.IsDir() {
				continue
			}
			dir := filepath.Join(root, child.Name())
			if hasBoth(dir) {
				return dir
			}
		}
	}

	labelDirs := findDirs(root, "labels")
	for _, dir := range labelDirs {
		parent := filepath.Dir(dir)
		if isDir(filepath.Join(parent, "images")) {
			return parent
		}
	}
	if len(labelDirs) > 0 {
		return filepath.Dir(labelDirs[0])
	}

	return root
}

// CandidateDirs returns the existing directories named name that a dataset
// may use, in priority order: root/name, root/train/name, root/val/name, then
// every nested directory of that name. Duplicates are removed, order kept.
func CandidateDirs(root, name string) []string {
	candidates := []string{
		filepath.Join(root, name),
		filepath.Join(root, "train", name),
		filepath.Join(root, "val", name),
	}
	candidates = append(candidates, findDirs(root, name)...)

	seen := make(map[string]bool, len(candidates))
	var dirs []string
	for _, dir := range candidates {
		if seen[dir] || !isDir(dir) {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// findDirs returns all directories under root (excluding root itself) whose
// base name matches name, in deterministic lexical order.
func findDirs(root, name string) []string {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != root && d.Name() == name {
			dirs = append(dirs, path)
		}
		return nil
	})
	sort.Strings(dirs)
	return dirs
}

func hasBoth(dir string) bool {
	return isDir(filepath.Join(dir, "images")) && isDir(filepath.Join(dir, "labels"))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
