package app

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FileHistory tracks what this session has touched, plus a snapshot of the
// workspace taken when the session started, so the model can be told which
// paths already exist and which it created itself.
type FileHistory struct {
	created   map[string]bool
	modified  map[string]bool
	order     []string
	workspace []string
}

func NewFileHistory(workspace []string) *FileHistory {
	return &FileHistory{
		created:   make(map[string]bool),
		modified:  make(map[string]bool),
		workspace: workspace,
	}
}

// Workspace returns the file listing captured at session start.
func (h *FileHistory) Workspace() []string {
	return h.workspace
}

func (h *FileHistory) RecordCreated(path string) {
	if !h.created[path] && !h.modified[path] {
		h.order = append(h.order, path)
	}
	h.created[path] = true
	// A create supersedes earlier in-place edits to the same file.
	delete(h.modified, path)
}

func (h *FileHistory) RecordModified(path string) {
	// Creation wins; modifying a file this session created keeps it "created".
	if h.created[path] {
		return
	}
	if !h.modified[path] {
		h.order = append(h.order, path)
	}
	h.modified[path] = true
}

func (h *FileHistory) Created() []string {
	return h.filter(h.created)
}

func (h *FileHistory) Modified() []string {
	return h.filter(h.modified)
}

func (h *FileHistory) filter(set map[string]bool) []string {
	var out []string
	for _, p := range h.order {
		if set[p] {
			out = append(out, p)
		}
	}
	return out
}

// Summary renders the session's file activity for inclusion in a prompt.
// Empty when nothing was touched.
func (h *FileHistory) Summary() string {
	created := h.Created()
	modified := h.Modified()
	if len(created) == 0 && len(modified) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Files touched this session:\n")
	for _, p := range created {
		fmt.Fprintf(&b, "  created:  %s\n", p)
	}
	for _, p := range modified {
		fmt.Fprintf(&b, "  modified: %s\n", p)
	}
	return b.String()
}

// WorkspaceFiles lists regular files under root, relative paths, sorted,
// skipping dot directories and capped at limit entries.
func WorkspaceFiles(root string, limit int) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(files)
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files
}
