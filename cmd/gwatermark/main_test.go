package main

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	watermark "github.com/gcslaoli/gemini-watermark-server"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func flat(size int, v uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
	}
	return img
}

// setup writes flat 20% references and returns the working directory.
func setup(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"PORT", "GWATERMARK_ASSETS", "GWATERMARK_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	assets := filepath.Join(dir, "assets")
	if err := os.Mkdir(assets, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writePNG(t, filepath.Join(assets, "bg_48.png"), flat(48, 51))
	writePNG(t, filepath.Join(assets, "bg_96.png"), flat(96, 51))
	return dir
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("gwatermark"), kong.Exit(func(int) {}))
	if err != nil {
		t.Fatalf("kong: %v", err)
	}
	base := []string{
		"--config", filepath.Join(dir, "missing.toml"),
		"--assets", filepath.Join(dir, "assets"),
		"--log-level", "error",
	}
	kctx, err := parser.Parse(append(base, args...))
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	cli.Globals.stdout = &out
	err = kctx.Run(&cli.Globals)
	return out.String(), err
}

func readPixel(t *testing.T, path string, x, y int) color.NRGBA {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestRemoveWritesDefaultOutput(t *testing.T) {
	dir := setup(t)
	in := filepath.Join(dir, "photo.png")
	writePNG(t, in, flat(200, 131))

	out, err := run(t, dir, "remove", "--in", in, "--force")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	dst := filepath.Join(dir, "photo_unwatermarked.png")
	if !strings.Contains(out, dst) {
		t.Fatalf("output %q does not mention %s", out, dst)
	}

	p := watermark.Resolve(200, 200)
	got := readPixel(t, dst, p.OffsetX+2, p.OffsetY+2)
	if d := int(got.R) - 100; d < -1 || d > 1 {
		t.Fatalf("restored %d, want about 100", got.R)
	}
	if c := readPixel(t, dst, 0, 0); c.R != 131 {
		t.Fatalf("corner changed to %d", c.R)
	}
}

func TestRemoveSkipsWithoutWatermark(t *testing.T) {
	dir := setup(t)
	in := filepath.Join(dir, "clean.png")
	writePNG(t, in, flat(200, 90))

	out, err := run(t, dir, "remove", "--in", in)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.Contains(out, "Skipping removal") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "clean_unwatermarked.png")); !os.IsNotExist(err) {
		t.Fatalf("output written for a clean image")
	}
}

func TestRemoveBase64RoundTrip(t *testing.T) {
	dir := setup(t)
	var buf bytes.Buffer
	if err := png.Encode(&buf, flat(200, 131)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	in := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	out, err := run(t, dir, "remove", "--in-base64", in, "--out-base64", "--force")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	img, _, err := watermark.DecodeBase64Image(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	p := watermark.Resolve(200, 200)
	got := color.NRGBAModel.Convert(img.At(p.OffsetX+1, p.OffsetY+1)).(color.NRGBA)
	if d := int(got.R) - 100; d < -1 || d > 1 {
		t.Fatalf("restored %d, want about 100", got.R)
	}
}

func TestRemoveValidation(t *testing.T) {
	dir := setup(t)
	if _, err := run(t, dir, "remove"); err == nil {
		t.Fatalf("expected error without input")
	}
	if _, err := run(t, dir, "remove", "--in", "a.png", "--in-base64", "xx"); err == nil {
		t.Fatalf("expected error for two inputs")
	}
}

func TestEngineFailureAborts(t *testing.T) {
	dir := setup(t)
	in := filepath.Join(dir, "photo.png")
	writePNG(t, in, flat(200, 131))
	if err := os.Remove(filepath.Join(dir, "assets", "bg_96.png")); err != nil {
		t.Fatalf("remove asset: %v", err)
	}

	_, err := run(t, dir, "detect", "--in", in)
	if err == nil || !strings.Contains(err.Error(), "initialize watermark engine") {
		t.Fatalf("expected engine error, got %v", err)
	}
}

func TestDetectReports(t *testing.T) {
	dir := setup(t)
	in := filepath.Join(dir, "photo.png")
	writePNG(t, in, flat(200, 90))

	out, err := run(t, dir, "detect", "--in", in)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !strings.Contains(out, "watermark not detected") {
		t.Fatalf("unexpected output %q", out)
	}
}
