package data

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// truncatedTarball writes a .tgz whose gzip header is intact but whose
// stream stops partway through its only entry. Opening it succeeds; reading
// it cannot.
func truncatedTarball(t *testing.T) string {
	t.Helper()

	// Incompressible content, so cutting the file in half cuts the entry.
	content := make([]byte, 8192)
	rand.New(rand.NewSource(7)).Read(content)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	hdr := &tar.Header{Name: "3/sample.png", Mode: 0o600, Size: int64(len(content)), Typeflag: tar.TypeReg}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}

	fn := filepath.Join(t.TempDir(), "truncated.tgz")
	raw := buf.Bytes()
	if err := os.WriteFile(fn, raw[:len(raw)/2], 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return fn
}

func TestImageTarballSurfacesReadErrors(t *testing.T) {
	src := NewImageTarball(truncatedTarball(t), map[string]int{"3": 0}, ImageConfig{BatchSize: 2, Seed: 1})
	if err := src.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	for src.Scan() {
	}
	if src.Err() == nil {
		t.Fatal("Err = nil after a truncated archive, want the read error")
	}
	if src.Scan() {
		t.Fatal("Scan kept going after a read error")
	}
}

func TestImageTarballScanBeforeReset(t *testing.T) {
	src := NewImageTarball("no-such.tgz", nil, ImageConfig{})
	if src.Scan() {
		t.Fatal("Scan succeeded without a Reset")
	}
	if err := src.Err(); err != nil {
		t.Fatalf("Err before Reset: %v", err)
	}
	if src.Batch() != nil {
		t.Fatal("Batch produced data without a Reset")
	}
}

func TestImageTarballDefaults(t *testing.T) {
	src := NewImageTarball("x.tgz", nil, ImageConfig{})
	if src.cfg.BatchSize != 64 || src.cfg.ColorMode != "gray" {
		t.Errorf("config = %+v, want MNIST defaults", src.cfg)
	}
	if len(src.cfg.Mean) != 1 || src.cfg.Mean[0] != 0.1307 {
		t.Errorf("mean = %v, want [0.1307]", src.cfg.Mean)
	}
}
