package site

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/content"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/effect"
)

// PosterBackground fills behind the points of every effect poster.
const PosterBackground = "#05050a"

// posterSeed fixes the point placement of built posters so rebuilding
// unchanged content yields identical files.
const posterSeed = 2024

const buildWorkers = 4

// Build renders every page, the 404 page and the effect posters into
// outDir, and copies the static tree to outDir/static. outDir is emptied
// first.
func (s *Site) Build(ctx context.Context, outDir string) error {
	s.log.Info("starting build", zap.String("outputDir", outDir), zap.String("baseURL", s.cfg.BaseURL))

	s.log.Debug("cleaning output directory", zap.String("dir", outDir))
	if err := os.RemoveAll(outDir); err != nil {
		return fmt.Errorf("failed to remove output directory '%s': %w", outDir, err)
	}
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", outDir, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(buildWorkers)

	g.Go(func() error {
		dst := filepath.Join(outDir, content.StaticDir)
		if err := copyDirContents(s.src.Static, dst); err != nil {
			return fmt.Errorf("failed to copy static assets: %w", err)
		}
		s.log.Debug("static assets copied", zap.String("dir", dst))
		return nil
	})
	for _, p := range Pages {
		g.Go(func() error { return s.buildPage(ctx, p, filepath.Join(outDir, filepath.FromSlash(p.OutputPath()))) })
	}
	g.Go(func() error { return s.buildPage(ctx, NotFound, filepath.Join(outDir, "404.html")) })
	g.Go(func() error { return s.buildPosters(ctx, filepath.Join(outDir, "effects")) })

	if err := g.Wait(); err != nil {
		return err
	}
	s.log.Info("build completed", zap.Int("pages", len(Pages)+1))
	return nil
}

func (s *Site) buildPage(ctx context.Context, p Page, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	view := s.StaticData(p)
	err := writeFile(outputPath, func(w io.Writer) error { return s.Render(w, view) })
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", p.Path, err)
	}
	s.log.Info("successfully generated", zap.String("path", outputPath), zap.String("layout", p.Layout))
	return nil
}

// buildPosters mounts every effect on a seeded stage, writes its first frame
// as SVG and unmounts it again.
func (s *Site) buildPosters(ctx context.Context, dir string) error {
	stage := effect.NewStage(effect.DefaultViewport, effect.WithSeed(posterSeed))
	defer stage.Close()
	for _, e := range Effects() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writePoster(stage, e, filepath.Join(dir, e.Name+".svg")); err != nil {
			return err
		}
	}
	s.log.Debug("effect posters written", zap.String("dir", dir), zap.Int("count", len(Effects())))
	return nil
}

func writePoster(stage *effect.Stage, e MountedEffect, outputPath string) error {
	sf, err := stage.MountPreset(e.Name, e.Preset)
	if err != nil {
		return fmt.Errorf("mount effect %s: %w", e.Name, err)
	}
	defer sf.Close()
	frame, err := sf.Snapshot(effect.Viewport{})
	if err != nil {
		return fmt.Errorf("snapshot effect %s: %w", e.Name, err)
	}
	return writeFile(outputPath, func(w io.Writer) error {
		return effect.WriteSVG(w, frame, PosterBackground)
	})
}

func writeFile(outputPath string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", filepath.Dir(outputPath), err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file '%s': %w", outputPath, err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// copyDirContents recursively copies the contents of src to dst.
func copyDirContents(src fs.FS, dst string) error {
	return fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dstPath := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			if err := os.MkdirAll(dstPath, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dstPath, err)
			}
			return nil
		}
		if err := copyFile(src, p, dstPath); err != nil {
			return fmt.Errorf("failed to copy file from %s to %s: %w", p, dstPath, err)
		}
		return nil
	})
}

// copyFile copies a single file out of fsys.
func copyFile(fsys fs.FS, name, dstFile string) error {
	srcF, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", name, err)
	}
	defer srcF.Close()

	return writeFile(dstFile, func(w io.Writer) error {
		if _, err := io.Copy(w, srcF); err != nil {
			return fmt.Errorf("failed to copy data from %s to %s: %w", name, dstFile, err)
		}
		return nil
	})
}
