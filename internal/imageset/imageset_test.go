package imageset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mri-enhancer/internal/logger"

	"gocv.io/x/gocv"
)

func writeImage(t *testing.T, path string, value float64) {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, value, value, 0), 8, 12, gocv.MatTypeCV8UC3)
	defer m.Close()
	if ok := gocv.IMWrite(path, m); !ok {
		t.Fatalf("could not write %s", path)
	}
}

func TestLoadSortsByFilename(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "c.jpg"), 30)
	writeImage(t, filepath.Join(dir, "a.jpg"), 10)
	writeImage(t, filepath.Join(dir, "b.JPG"), 20)
	writeImage(t, filepath.Join(dir, "ignored.png"), 40)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755); err != nil {
		t.Fatal(err)
	}

	c := NewLoader([]string{".jpg"}, logger.Nop(), nil).Load(dir)
	defer c.Close()

	want := []string{"a.jpg", "b.JPG", "c.jpg"}
	got := c.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	img, err := c.At(0)
	if err != nil {
		t.Fatal(err)
	}
	if img.Mat.Rows() != 8 || img.Mat.Cols() != 12 || img.Mat.Channels() != 3 {
		t.Errorf("decoded %dx%dx%d", img.Mat.Cols(), img.Mat.Rows(), img.Mat.Channels())
	}
	if img.Path != filepath.Join(dir, "a.jpg") {
		t.Errorf("path = %q", img.Path)
	}
}

func TestLoadMissingFolderReturnsEmpty(t *testing.T) {
	c := NewLoader([]string{".jpg"}, logger.Nop(), nil).Load(filepath.Join(t.TempDir(), "missing"))
	if c.Len() != 0 {
		t.Fatalf("len = %d, want 0", c.Len())
	}
	if !errors.Is(c.Validate(), ErrEmptyCollection) {
		t.Errorf("Validate = %v, want ErrEmptyCollection", c.Validate())
	}
}

func TestLoadFolderWithoutMatches(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "only.png"), 10)

	c := NewLoader([]string{".jpg"}, logger.Nop(), nil).Load(dir)
	if c.Len() != 0 {
		t.Fatalf("len = %d, want 0", c.Len())
	}
}

func TestLoadSkipsUndecodableFiles(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "good.jpg"), 10)
	if err := os.WriteFile(filepath.Join(dir, "broken.jpg"), []byte("not a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewLoader([]string{".jpg"}, logger.Nop(), nil).Load(dir)
	defer c.Close()

	if c.Len() != 1 || c.Names()[0] != "good.jpg" {
		t.Fatalf("names = %v", c.Names())
	}
}

func TestCollectionAt(t *testing.T) {
	c := NewCollection(&Image{Name: "a"}, &Image{Name: "b"})

	if img, err := c.At(1); err != nil || img.Name != "b" {
		t.Errorf("At(1) = %v, %v", img, err)
	}
	if _, err := c.At(2); err == nil {
		t.Error("expected out of range error")
	}
	if _, err := c.At(-1); err == nil {
		t.Error("expected out of range error")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate = %v", err)
	}
}

func TestLoadFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	elsewhere := t.TempDir()

	writeImage(t, filepath.Join(elsewhere, "source.jpg"), 10)
	writeImage(t, filepath.Join(dir, "b.jpg"), 20)

	links := map[string]string{
		"a.jpg":        filepath.Join(elsewhere, "source.jpg"),
		"dir.jpg":      elsewhere,
		"dangling.jpg": filepath.Join(elsewhere, "missing.jpg"),
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(dir, name)); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}
	}

	c := NewLoader([]string{".jpg"}, logger.Nop(), nil).Load(dir)
	defer c.Close()

	names := c.Names()
	if len(names) != 2 || names[0] != "a.jpg" || names[1] != "b.jpg" {
		t.Fatalf("names = %v, want [a.jpg b.jpg]", names)
	}
}
