package util

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"
)

// HashSize is the digest length in bytes. Hex-encoded digests are twice as long.
const HashSize = 32

// ArtifactExt is the extension of every artifact written to the output directory.
const ArtifactExt = ".webp"

// GetHash calculates the BLAKE3-256 hash of data from an io.Reader.
// It returns the hash as a hexadecimal string.
func GetHash(r io.Reader) (string, error) {
	h := blake3.New(HashSize, nil)
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the hex BLAKE3-256 digest of data.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Hashes a file and returns the hash as a hex string suitable for use in a filepath
func GetFileHash(path string) (hash string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", ErrExpectedFile
	}
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return GetHash(file)
}

// ValidHash reports whether hash is a lowercase hex digest of HashSize bytes.
func ValidHash(hash string) bool {
	if len(hash) != HashSize*2 {
		return false
	}
	for i := 0; i < len(hash); i++ {
		c := hash[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// ArtifactPathFromHash returns the path of the artifact for hash inside dir.
// Every digest maps to exactly one path, so the path doubles as the dedup key.
func ArtifactPathFromHash(dir, hash string) string {
	return filepath.Join(dir, hash+ArtifactExt)
}

// HashFromArtifactPath extracts the content hash from an artifact path.
// It expects a base name of the form "<hash>.webp" and validates the hash.
func HashFromArtifactPath(path string) (string, error) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ArtifactExt) {
		return "", ErrInvalidArtifactPath
	}
	hash := strings.TrimSuffix(base, ArtifactExt)
	if !ValidHash(hash) {
		return "", ErrInvalidHash
	}
	return hash, nil
}

// WriteJSONFile writes any value as JSON to the specified file path.
// It creates the file and encodes the value using the standard JSON encoder.
func WriteJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
