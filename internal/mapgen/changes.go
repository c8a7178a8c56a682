package mapgen

import (
	"os/exec"
	"path/filepath"
	"strings"
)

// ChangeDetector reports which paths under a source root have pending
// modifications. It exists so incremental cache logic is testable without a
// real repository.
type ChangeDetector interface {
	// Changed returns relative paths with uncommitted, staged, or untracked
	// modifications under root. all=true means change status could not be
	// narrowed and every path must be treated as changed.
	Changed(root string) (paths map[string]struct{}, all bool)
}

// GitDetector shells out to git for the changed-path set. Roots that are not
// inside a git repository report everything as changed.
type GitDetector struct{}

// Changed implements ChangeDetector. git reports paths relative to the
// repository top level, so when root is a subdirectory of the repository the
// paths are rebased onto root; changes outside root are dropped.
func (GitDetector) Changed(root string) (map[string]struct{}, bool) {
	top, err := exec.Command("git", "-C", root, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return nil, true
	}
	out, err := exec.Command("git", "-C", root, "status", "--porcelain").Output()
	if err != nil {
		return nil, true
	}
	paths, err := rebasePaths(parsePorcelain(out), strings.TrimSpace(string(top)), root)
	if err != nil {
		return nil, true
	}
	return paths, false
}

// rebasePaths converts repository-relative paths to root-relative ones,
// keeping only paths under root.
func rebasePaths(paths map[string]struct{}, top, root string) (map[string]struct{}, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	out := make(map[string]struct{}, len(paths))
	for p := range paths {
		abs := filepath.Join(top, filepath.FromSlash(p))
		rel, err := filepath.Rel(absRoot, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		out[filepath.ToSlash(rel)] = struct{}{}
	}
	return out, nil
}

// parsePorcelain extracts paths from git status --porcelain output. Covers
// staged and unstaged modifications plus untracked files; renames report the
// new path.
func parsePorcelain(out []byte) map[string]struct{} {
	paths := make(map[string]struct{})
	for _, line := range strings.Split(string(out), "\n") {
		if len(line) < 4 {
			continue
		}
		p := line[3:]
		if i := strings.Index(p, " -> "); i >= 0 {
			p = p[i+4:]
		}
		p = strings.Trim(p, `"`)
		if p != "" {
			paths[p] = struct{}{}
		}
	}
	return paths
}

// AllChanged is a detector that invalidates every path unconditionally.
type AllChanged struct{}

// Changed implements ChangeDetector.
func (AllChanged) Changed(string) (map[string]struct{}, bool) {
	return nil, true
}
