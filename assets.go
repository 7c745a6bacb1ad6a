package watermark

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// assetName returns the file name of the reference overlay for size.
func assetName(size int) string {
	return fmt.Sprintf("bg_%d.png", size)
}

// referenceSet holds the reference overlay rasters, one per overlay size.
// It is read-only once loaded.
type referenceSet map[int]image.Image

// loadReferences reads the small and large reference rasters from fsys
// concurrently. When upscale is set and the large asset does not exist, it
// is derived from the small one.
func loadReferences(ctx context.Context, fsys fs.FS, upscale bool) (referenceSet, error) {
	var small, large image.Image

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := loadReference(ctx, fsys, SmallSize)
		small = img
		return err
	})
	g.Go(func() error {
		img, err := loadReference(ctx, fsys, LargeSize)
		if err != nil && upscale && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		large = img
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if large == nil {
		large = upscaleReference(small, LargeSize)
	}

	return referenceSet{SmallSize: small, LargeSize: large}, nil
}

func loadReference(ctx context.Context, fsys fs.FS, size int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := assetName(size)
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrAssetLoad, name, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrAssetLoad, name, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != size || bounds.Dy() != size {
		return nil, fmt.Errorf("%w: %s is %dx%d, want %dx%d",
			ErrShapeMismatch, name, bounds.Dx(), bounds.Dy(), size, size)
	}

	return img, nil
}

// upscaleReference scales the reference raster to size x size.
func upscaleReference(src image.Image, size int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// AssetsFromDir returns the file system holding the reference overlays in dir.
func AssetsFromDir(dir string) fs.FS {
	return os.DirFS(dir)
}
