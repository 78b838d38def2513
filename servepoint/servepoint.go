// Package servepoint confines every filesystem lookup to a single root
// directory. All request paths are resolved through the canonical filesystem
// path (symlinks followed, dot components collapsed) before the containment
// check, never through the raw joined string.
package servepoint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/moyoez/friendlyshare-go/types"
)

const mtimeFormat = "02/01/2006 15:04:05"

// ServePoint canonicalizes its root once at construction and answers all
// containment queries against that fixed prefix.
type ServePoint struct {
	rootPath string
}

// New canonicalizes root and fails when it does not exist, cannot be resolved,
// or is not a directory. The process cannot start without a valid share root.
func New(root string) (*ServePoint, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve share root %q: %v", root, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("could not canonicalise share root %q: %v", root, err)
	}
	info, err := os.Stat(canonical)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%q does not exist or is not a directory", root)
	}
	return &ServePoint{rootPath: canonical}, nil
}

// Root returns the canonical root path.
func (sp *ServePoint) Root() string {
	return sp.rootPath
}

// resolve joins p to the root and canonicalizes the result. Failure to
// canonicalize (missing file, broken symlink) reports not-contained, which is
// the safe default.
func (sp *ServePoint) resolve(p string) (string, bool) {
	complete := filepath.Join(sp.rootPath, filepath.FromSlash(p))
	canonical, err := filepath.EvalSymlinks(complete)
	if err != nil {
		return "", false
	}
	return canonical, true
}

// IsSubdir reports whether p stays inside the root. Empty and root-denoting
// paths always count as inside. A non-empty path that collapses back onto the
// root itself (such as "a/..") is rejected: it names nothing below the root.
func (sp *ServePoint) IsSubdir(p string) bool {
	if isRootPath(p) {
		return true
	}
	canonical, ok := sp.resolve(p)
	if !ok {
		return false
	}
	if canonical == sp.rootPath {
		return false
	}
	return strings.HasPrefix(canonical, sp.rootPath+string(filepath.Separator))
}

// IsFile reports whether p is a regular file inside the root.
func (sp *ServePoint) IsFile(p string) bool {
	if !sp.IsSubdir(p) {
		return false
	}
	canonical, ok := sp.resolve(p)
	if !ok {
		return false
	}
	info, err := os.Stat(canonical)
	return err == nil && info.Mode().IsRegular()
}

// ResolveFile returns the canonical absolute path for a regular file inside
// the root, for handing to the byte-range file server.
func (sp *ServePoint) ResolveFile(p string) (string, bool) {
	if !sp.IsFile(p) {
		return "", false
	}
	return sp.resolve(p)
}

// createTrail walks from the resolved path up to (but not including) the root,
// then reverses so the trail reads root to leaf.
func (sp *ServePoint) createTrail(p string) []types.TrailEntry {
	trail := []types.TrailEntry{}
	if !sp.IsSubdir(p) {
		return trail
	}
	canonical, ok := sp.resolve(p)
	if !ok {
		return trail
	}
	for cur := canonical; cur != sp.rootPath; cur = filepath.Dir(cur) {
		rel, err := filepath.Rel(sp.rootPath, cur)
		if err != nil || rel == "." {
			break
		}
		trail = append(trail, types.TrailEntry{
			Path: filepath.ToSlash(rel),
			Name: filepath.Base(cur),
		})
	}
	for i, j := 0, len(trail)-1; i < j; i, j = i+1, j-1 {
		trail[i], trail[j] = trail[j], trail[i]
	}
	return trail
}

// GetDirectoryListing enumerates the immediate children of p. Returns nil when
// p is outside the root, does not exist, or is not a directory; the caller
// cannot tell which.
func (sp *ServePoint) GetDirectoryListing(p string) *types.DirectoryListing {
	if !sp.IsSubdir(p) {
		return nil
	}

	var complete string
	if isRootPath(p) {
		complete = sp.rootPath
	} else {
		var ok bool
		complete, ok = sp.resolve(p)
		if !ok {
			return nil
		}
	}

	info, err := os.Stat(complete)
	if err != nil || !info.IsDir() {
		return nil
	}

	listing := &types.DirectoryListing{
		Path:     toURIPath(p),
		Trail:    sp.createTrail(p),
		Children: []types.DirectoryEntry{},
	}

	entries, err := os.ReadDir(complete)
	if err != nil {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		meta, err := entry.Info()
		if err != nil {
			// entry vanished between ReadDir and Stat
			continue
		}
		name := entry.Name()
		size := "-"
		if !entry.IsDir() {
			size = humanSize(meta.Size())
		} else {
			name += "/"
		}
		listing.Children = append(listing.Children, types.DirectoryEntry{
			Name:   name,
			IsFile: meta.Mode().IsRegular(),
			IsDir:  entry.IsDir(),
			Mtime:  meta.ModTime().UTC().Format(mtimeFormat),
			Size:   size,
		})
	}
	return listing
}

func isRootPath(p string) bool {
	return p == "" || p == "/" || p == "."
}

// toURIPath renders the request path in canonical URI form: leading slash,
// every component followed by one.
func toURIPath(p string) string {
	if isRootPath(p) {
		return "/"
	}
	var b strings.Builder
	b.WriteByte('/')
	for _, part := range strings.Split(filepath.ToSlash(p), "/") {
		if part == "" || part == "." {
			continue
		}
		b.WriteString(part)
		b.WriteByte('/')
	}
	return b.String()
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
