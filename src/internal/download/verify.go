package download

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrChecksumMismatch is returned when content does not hash to the expected SHA256
type ErrChecksumMismatch struct {
	Expected string
	Actual   string
}

func (e *ErrChecksumMismatch) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// VerifyFile checks that filePath hashes to expectedSHA256
func VerifyFile(filePath, expectedSHA256 string) error {
	actual, err := ComputeSHA256(filePath)
	if err != nil {
		return err
	}
	return compare(expectedSHA256, actual)
}

// ComputeSHA256 returns the hex SHA256 of a file
func ComputeSHA256(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// compare matches checksums case-insensitively
func compare(expected, actual string) error {
	if strings.EqualFold(strings.TrimSpace(expected), actual) {
		return nil
	}
	return &ErrChecksumMismatch{Expected: expected, Actual: actual}
}
