package storage

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

type opener struct {
	name string
	open func(string) (Source, error)
}

var openers = []opener{
	{"file", OpenFile},
	{"mmap", OpenMmap},
}

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.bp")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSourceReadAt(t *testing.T) {
	data := []byte("0123456789abcdef")
	path := writeTemp(t, data)

	for _, o := range openers {
		t.Run(o.name, func(t *testing.T) {
			src, err := o.open(path)
			if err != nil {
				t.Fatalf("open failed: %v", err)
			}
			defer src.Close()

			if src.Size() != int64(len(data)) {
				t.Errorf("Size() = %d, want %d", src.Size(), len(data))
			}

			src.WillNeed(4, 8)
			buf := make([]byte, 6)
			if _, err := src.ReadAt(buf, 4); err != nil {
				t.Fatalf("ReadAt failed: %v", err)
			}
			if !bytes.Equal(buf, data[4:10]) {
				t.Errorf("got %q, want %q", buf, data[4:10])
			}

			n, err := src.ReadAt(buf, 12)
			if n != 4 || err != io.EOF {
				t.Errorf("short read: n=%d err=%v", n, err)
			}
			if _, err := src.ReadAt(buf, 100); err != io.EOF {
				t.Errorf("read past end: expected io.EOF, got %v", err)
			}
		})
	}
}

func TestSourceDoubleClose(t *testing.T) {
	path := writeTemp(t, []byte("payload"))

	for _, o := range openers {
		t.Run(o.name, func(t *testing.T) {
			src, err := o.open(path)
			if err != nil {
				t.Fatalf("open failed: %v", err)
			}
			if err := src.Close(); err != nil {
				t.Fatalf("first Close failed: %v", err)
			}
			if err := src.Close(); err == nil {
				t.Error("second Close should report an error")
			}
			if _, err := src.ReadAt(make([]byte, 1), 0); err == nil {
				t.Error("ReadAt after Close should fail")
			}
		})
	}
}

func TestOpenMissing(t *testing.T) {
	for _, o := range openers {
		_, err := o.open(filepath.Join(t.TempDir(), "missing.bp"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s: expected os.ErrNotExist, got %v", o.name, err)
		}
	}
}

func TestOpenMmapEmptyFile(t *testing.T) {
	src, err := OpenMmap(writeTemp(t, nil))
	if err != nil {
		t.Fatalf("OpenMmap failed: %v", err)
	}
	defer src.Close()
	if src.Size() != 0 {
		t.Errorf("Size() = %d", src.Size())
	}
}
