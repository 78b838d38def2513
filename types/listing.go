package types

// DirectoryEntry is one immediate child of a listed directory. Directory names
// carry a trailing separator for display.
type DirectoryEntry struct {
	Name   string `json:"name"`
	IsFile bool   `json:"is_file"`
	IsDir  bool   `json:"is_dir"`
	Mtime  string `json:"mtime"`
	Size   string `json:"size"`
}

// TrailEntry is one breadcrumb step: the relative path so far and the display
// name of that component.
type TrailEntry struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// DirectoryListing is built fresh per request and discarded after rendering.
type DirectoryListing struct {
	Path     string           `json:"path"`
	Trail    []TrailEntry     `json:"trail"`
	Children []DirectoryEntry `json:"children"`
}
