package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	watermark "github.com/gcslaoli/gemini-watermark-server"
)

// RemoveCmd removes the overlay from one image, skipping images where none
// is detected unless forced.
type RemoveCmd struct {
	In        string `help:"Path to the watermarked image (png/jpg/webp)" type:"path"`
	InBase64  string `name:"in-base64" help:"Base64 image input (optionally data URL)"`
	Out       string `help:"Output path (defaults to <name>_unwatermarked.<format>); '-' writes to stdout"`
	OutBase64 bool   `name:"out-base64" help:"Write cleaned PNG as base64 to stdout instead of file"`
	Format    string `help:"Output format" enum:"png,jpeg,gif,bmp,tiff" default:"png"`
	Force     bool   `help:"Remove even when no watermark is detected"`
}

// Validate rejects conflicting input and output flags.
func (c *RemoveCmd) Validate() error {
	switch {
	case c.In == "" && c.InBase64 == "":
		return fmt.Errorf("one of --in or --in-base64 is required")
	case c.In != "" && c.InBase64 != "":
		return fmt.Errorf("--in and --in-base64 are mutually exclusive")
	case c.OutBase64 && c.Out != "":
		return fmt.Errorf("--out and --out-base64 are mutually exclusive")
	}
	return nil
}

// Run executes the remove command.
func (c *RemoveCmd) Run(g *Globals) error {
	ctx := context.Background()
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	engine, err := g.engine(ctx, cfg, logger)
	if err != nil {
		return err
	}

	img, format, source, err := readInput(c.In, c.InBase64)
	if err != nil {
		return err
	}

	det, err := engine.Detect(img)
	if err != nil {
		return fmt.Errorf("detect watermark: %w", err)
	}
	info := det.Placement
	if !det.Present && !c.Force {
		fmt.Fprintf(g.out(), "No visible Gemini watermark detected (score %.2f, correlation %.2f). Skipping removal.\n", det.Score, det.Correlation)
		return nil
	}

	res, err := engine.Process(img)
	if err != nil {
		return fmt.Errorf("remove watermark: %w", err)
	}

	if c.OutBase64 {
		encoded, err := watermark.EncodePNGToBase64(res.Image)
		if err != nil {
			return fmt.Errorf("encode base64 output: %w", err)
		}
		fmt.Fprintln(g.out(), encoded)
		return nil
	}

	if c.Out == "-" {
		if f, ok := g.out().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return fmt.Errorf("refusing to write binary image data to a terminal")
		}
		return watermark.Encode(g.out(), res.Image, c.Format)
	}

	outPath := c.Out
	if outPath == "" {
		outPath = defaultOutputPath(c.In, c.Format)
	}
	if err := writeImage(outPath, res.Image, c.Format); err != nil {
		return err
	}

	fmt.Fprintf(g.out(), "Processed %s (%s) -> %s [watermark %dx%d at (%d, %d)]\n",
		source, format, outPath, info.Size, info.Size, info.OffsetX, info.OffsetY)
	return nil
}

func readInput(path, b64 string) (image.Image, string, string, error) {
	if b64 != "" {
		img, format, err := watermark.DecodeBase64Image(b64)
		if err != nil {
			return nil, "", "", fmt.Errorf("decode input: %w", err)
		}
		return img, format, "base64", nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", "", fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	img, format, err := watermark.Decode(f)
	if err != nil {
		return nil, "", "", fmt.Errorf("decode input: %w", err)
	}
	return img, format, path, nil
}

func defaultOutputPath(input, format string) string {
	base := "output"
	dir := "."
	if input != "" {
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base+"_unwatermarked."+format)
}

func writeImage(path string, img image.Image, format string) error {
	outFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if err := watermark.Encode(outFile, img, format); err != nil {
		outFile.Close()
		return fmt.Errorf("encode output: %w", err)
	}
	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// DetectCmd reports the detection result for one image.
type DetectCmd struct {
	In string `help:"Path to the image" type:"existingfile" required:""`
}

// Run executes the detect command.
func (c *DetectCmd) Run(g *Globals) error {
	ctx := context.Background()
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	engine, err := g.engine(ctx, cfg, logger)
	if err != nil {
		return err
	}

	img, _, _, err := readInput(c.In, "")
	if err != nil {
		return err
	}
	det, err := engine.Detect(img)
	if err != nil {
		return fmt.Errorf("detect watermark: %w", err)
	}

	verdict := "not detected"
	if det.Present {
		verdict = "detected"
	}
	fmt.Fprintf(g.out(), "%s: watermark %s (score %.2f, correlation %.3f, %dx%d at %v)\n",
		c.In, verdict, det.Score, det.Correlation, det.Placement.Size, det.Placement.Size, det.Position)
	return nil
}
