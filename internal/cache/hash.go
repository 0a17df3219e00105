package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// hashChunkSize is the read size used when streaming file content through
// the digest. Sources can be arbitrarily large; they are never read whole.
const hashChunkSize = 4096

// HashFile computes the hex-encoded MD5 digest of a file's content,
// streamed in fixed-size chunks.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, hashChunkSize)

	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashString computes the hex-encoded MD5 digest of a string. Used to name
// object files after their source's absolute path, which keeps the mapping
// collision-resistant for distinct paths sharing a base name.
func HashString(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
