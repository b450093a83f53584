package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestWalkFiles(t *testing.T) {
	dir := t.TempDir()
	var path = dir
	for i := 0; i < 3; i++ {
		path = filepath.Join(path, fmt.Sprintf("%d", i))
		os.Mkdir(path, 0755)
		for w := 0; w < 2; w++ {
			os.WriteFile(filepath.Join(path, fmt.Sprintf("%d.png", w)), []byte{byte(w)}, 0644)
		}
	}
	os.WriteFile(filepath.Join(dir, "top.jpg"), []byte("x"), 0644)

	out := filepath.Join(dir, "0", "out")
	os.Mkdir(out, 0755)
	os.WriteFile(filepath.Join(out, "artifact.webp"), []byte("x"), 0644)

	t.Run("visits every regular file", func(t *testing.T) {
		var got []string
		err := WalkFiles(dir, nil, func(p string, d fs.DirEntry) error {
			got = append(got, p)
			return nil
		}, nil)
		if err != nil {
			t.Fatalf("WalkFiles() error = %v", err)
		}
		if len(got) != 8 {
			t.Errorf("WalkFiles() visited %d files, want 8: %v", len(got), got)
		}
	})

	t.Run("prunes output directory", func(t *testing.T) {
		var got []string
		err := WalkFiles(dir, []string{out}, func(p string, d fs.DirEntry) error {
			got = append(got, p)
			return nil
		}, nil)
		if err != nil {
			t.Fatalf("WalkFiles() error = %v", err)
		}
		if len(got) != 7 {
			t.Errorf("WalkFiles() visited %d files, want 7: %v", len(got), got)
		}
		for _, p := range got {
			if PathWithin(p, out) {
				t.Errorf("WalkFiles() visited pruned file %s", p)
			}
		}
	})

	t.Run("callback error stops the walk", func(t *testing.T) {
		stop := errors.New("stop")
		calls := 0
		err := WalkFiles(dir, nil, func(p string, d fs.DirEntry) error {
			calls++
			return stop
		}, nil)
		if err != stop {
			t.Errorf("WalkFiles() error = %v, want %v", err, stop)
		}
		if calls != 1 {
			t.Errorf("WalkFiles() made %d calls after error, want 1", calls)
		}
	})

	t.Run("nonexistent root", func(t *testing.T) {
		err := WalkFiles(filepath.Join(dir, "nonexistent"), nil, func(string, fs.DirEntry) error { return nil }, nil)
		if !os.IsNotExist(err) {
			t.Errorf("Expected error of type IsNotExist but got %v", err)
		}
	})

	t.Run("file instead of directory", func(t *testing.T) {
		err := WalkFiles(filepath.Join(dir, "top.jpg"), nil, func(string, fs.DirEntry) error { return nil }, nil)
		if err != ErrExpectedDirectory {
			t.Errorf("Expected error of type %v but got %v", ErrExpectedDirectory, err)
		}
	})
}

func TestWalkFilesReportsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "real.png")
	os.WriteFile(target, []byte("x"), 0644)
	if err := os.Symlink(target, filepath.Join(dir, "link.png")); err != nil {
		t.Fatal(err)
	}

	var visited int
	var reported []error
	err := WalkFiles(dir, nil, func(string, fs.DirEntry) error {
		visited++
		return nil
	}, func(_ string, err error) {
		reported = append(reported, err)
	})
	if err != nil {
		t.Fatalf("WalkFiles() error = %v", err)
	}
	if visited != 1 {
		t.Errorf("WalkFiles() visited %d files, want 1", visited)
	}
	if len(reported) != 1 || !errors.Is(reported[0], ErrUnexpectedSymlink) {
		t.Errorf("WalkFiles() reported %v, want one ErrUnexpectedSymlink", reported)
	}
}

func TestPathWithin(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		dir      string
		expected bool
	}{
		{
			name:     "identical paths",
			path:     "/tmp/images",
			dir:      "/tmp/images",
			expected: true,
		},
		{
			name:     "trailing separator",
			path:     "/tmp/images/",
			dir:      "/tmp/images",
			expected: true,
		},
		{
			name:     "nested below dir",
			path:     "/tmp/images/webp",
			dir:      "/tmp/images",
			expected: true,
		},
		{
			name:     "dir below path",
			path:     "/tmp/images",
			dir:      "/tmp/images/webp",
			expected: false,
		},
		{
			name:     "completely separate paths",
			path:     "/tmp/images",
			dir:      "/mnt/webp",
			expected: false,
		},
		{
			name:     "sibling directories",
			path:     "/tmp/webp",
			dir:      "/tmp/images",
			expected: false,
		},
		{
			name:     "shared name prefix",
			path:     "/tmp/images-webp",
			dir:      "/tmp/images",
			expected: false,
		},
		{
			name:     "relative paths - nested",
			path:     "images/webp",
			dir:      "images",
			expected: true,
		},
		{
			name:     "relative paths - separate",
			path:     "webp",
			dir:      "images",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PathWithin(tt.path, tt.dir)
			if result != tt.expected {
				t.Errorf("PathWithin(%q, %q) = %v, expected %v", tt.path, tt.dir, result, tt.expected)
			}
		})
	}
}
