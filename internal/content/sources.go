package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	ContentDir = "content"
	LayoutsDir = "layouts"
	StaticDir  = "static"
)

// Sources are the three trees a site is built from.
type Sources struct {
	Content fs.FS
	Layouts fs.FS
	Static  fs.FS

	// Dirs lists the on-disk directories in use, for watching.
	Dirs []string
}

// Resolve picks each tree from dir when it has a subdirectory of the same
// name and from the embedded defaults otherwise. An empty dir selects the
// embedded defaults only.
func Resolve(embedded fs.FS, dir string) (Sources, error) {
	var src Sources
	for _, t := range []struct {
		name string
		dst  *fs.FS
	}{
		{ContentDir, &src.Content},
		{LayoutsDir, &src.Layouts},
		{StaticDir, &src.Static},
	} {
		if dir != "" {
			onDisk := filepath.Join(dir, t.name)
			if info, err := os.Stat(onDisk); err == nil && info.IsDir() {
				*t.dst = os.DirFS(onDisk)
				src.Dirs = append(src.Dirs, onDisk)
				continue
			}
		}
		sub, err := fs.Sub(embedded, t.name)
		if err != nil {
			return Sources{}, fmt.Errorf("embedded %s tree: %w", t.name, err)
		}
		*t.dst = sub
	}
	return src, nil
}
