package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStatArtifact(t *testing.T) {
	dir := t.TempDir()

	marker := filepath.Join(dir, "marker.webp")
	os.WriteFile(marker, nil, 0644)

	encoded := filepath.Join(dir, "encoded.webp")
	os.WriteFile(encoded, []byte("RIFF1234"), 0644)

	sub := filepath.Join(dir, "sub.webp")
	os.Mkdir(sub, 0755)

	tests := []struct {
		name      string
		path      string
		wantState ArtifactState
		wantSize  int64
		wantErr   error
	}{
		{name: "missing", path: filepath.Join(dir, "nope.webp"), wantState: ArtifactMissing},
		{name: "marker", path: marker, wantState: ArtifactMarker},
		{name: "encoded", path: encoded, wantState: ArtifactEncoded, wantSize: 8},
		{name: "directory", path: sub, wantState: ArtifactMissing, wantErr: ErrExpectedFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, size, err := StatArtifact(tt.path)
			if err != tt.wantErr {
				t.Fatalf("StatArtifact() error = %v, want %v", err, tt.wantErr)
			}
			if state != tt.wantState {
				t.Errorf("StatArtifact() state = %v, want %v", state, tt.wantState)
			}
			if size != tt.wantSize {
				t.Errorf("StatArtifact() size = %d, want %d", size, tt.wantSize)
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()

	t.Run("writes data", func(t *testing.T) {
		path := filepath.Join(dir, "data.webp")
		if err := WriteFileAtomic(path, []byte("payload")); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "payload" {
			t.Errorf("WriteFileAtomic() wrote %q, want %q", got, "payload")
		}
	})

	t.Run("empty data writes a marker", func(t *testing.T) {
		path := filepath.Join(dir, "marker.webp")
		if err := WriteFileAtomic(path, nil); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}
		state, _, err := StatArtifact(path)
		if err != nil || state != ArtifactMarker {
			t.Errorf("StatArtifact() = %v, %v; want marker", state, err)
		}
	})

	t.Run("replaces existing file", func(t *testing.T) {
		path := filepath.Join(dir, "replace.webp")
		os.WriteFile(path, []byte("old contents"), 0644)
		if err := WriteFileAtomic(path, []byte("new")); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}
		got, _ := os.ReadFile(path)
		if string(got) != "new" {
			t.Errorf("WriteFileAtomic() left %q", got)
		}
	})

	t.Run("missing directory fails cleanly", func(t *testing.T) {
		path := filepath.Join(dir, "missing", "x.webp")
		if err := WriteFileAtomic(path, []byte("x")); err == nil {
			t.Error("WriteFileAtomic() expected error for missing directory")
		}
	})

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if IsTempPath(e.Name()) {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}

func TestIsTempPath(t *testing.T) {
	tmp := TempPathFor("/out/" + emptyHash + ".webp")
	if filepath.Dir(tmp) != "/out" {
		t.Errorf("TempPathFor() = %q, want a sibling in /out", tmp)
	}

	tests := []struct {
		path string
		want bool
	}{
		{tmp, true},
		{filepath.Base(tmp), true},
		{"/out/" + emptyHash + ".webp", false},
		{"/out/.hidden.tmp", false},
		{"/out/.6ba7b810-9dad-11d1-80b4-00c04fd430c8.tmp", true},
	}

	for _, tt := range tests {
		if got := IsTempPath(tt.path); got != tt.want {
			t.Errorf("IsTempPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestArtifactStateString(t *testing.T) {
	if ArtifactMarker.String() != "marker" {
		t.Errorf("ArtifactMarker.String() = %q", ArtifactMarker.String())
	}
	if ArtifactState(9).String() != "ArtifactState(9)" {
		t.Errorf("ArtifactState(9).String() = %q", ArtifactState(9).String())
	}
}
