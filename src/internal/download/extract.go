package download

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"

	"github.com/shellpm/spm/src/internal/fsutil"
)

// Archive formats spm can unpack
const (
	FormatZip   = ".zip"
	FormatTarGz = ".tar.gz"
	FormatTgz   = ".tgz"
	Format7z    = ".7z"
)

var formats = []string{FormatTarGz, FormatTgz, FormatZip, Format7z}

// ArchiveFormat returns the archive extension of name, or "" if it is not an archive
func ArchiveFormat(name string) string {
	lower := strings.ToLower(name)
	for _, f := range formats {
		if strings.HasSuffix(lower, f) {
			return f
		}
	}
	return ""
}

// Extract unpacks archivePath into destDir based on its extension
func Extract(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	switch ArchiveFormat(archivePath) {
	case FormatZip:
		return ExtractZip(archivePath, destDir)
	case FormatTarGz, FormatTgz:
		return ExtractTarGz(archivePath, destDir)
	case Format7z:
		return Extract7z(archivePath, destDir)
	default:
		return fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
	}
}

// ExtractZip extracts a zip archive to destDir
func ExtractZip(zipPath, destDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	for _, file := range reader.File {
		err := writeEntry(destDir, file.Name, file.FileInfo().IsDir(), file.Mode(), file.Open)
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
	}
	return nil
}

// Extract7z extracts a 7-Zip archive to destDir
func Extract7z(archivePath, destDir string) error {
	reader, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	for _, file := range reader.File {
		err := writeEntry(destDir, file.Name, file.FileInfo().IsDir(), file.Mode(), file.Open)
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
	}
	return nil
}

// ExtractTarGz extracts a gzip-compressed tarball to destDir
func ExtractTarGz(tarGzPath, destDir string) error {
	file, err := os.Open(tarGzPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer func() { _ = gzReader.Close() }()

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir, tar.TypeReg:
			open := func() (io.ReadCloser, error) { return io.NopCloser(tarReader), nil }
			isDir := header.Typeflag == tar.TypeDir
			if err := writeEntry(destDir, header.Name, isDir, fs.FileMode(header.Mode).Perm(), open); err != nil {
				return fmt.Errorf("failed to extract %s: %w", header.Name, err)
			}
		case tar.TypeSymlink:
			if err := writeSymlink(destDir, header.Name, header.Linkname); err != nil {
				return fmt.Errorf("failed to extract %s: %w", header.Name, err)
			}
		}
	}
}

// writeSymlink creates a link whose target stays inside destDir. The target is
// stored cleaned so ".." can only lead it, which keeps its resolution textual.
func writeSymlink(destDir, name, linkname string) error {
	target, err := safeJoin(destDir, name)
	if err != nil {
		return err
	}
	if err := checkParents(destDir, target); err != nil {
		return err
	}

	link := filepath.Clean(filepath.FromSlash(linkname))
	if linkname == "" || filepath.IsAbs(link) || filepath.VolumeName(link) != "" || strings.HasPrefix(link, string(os.PathSeparator)) {
		return fmt.Errorf("illegal link target: %s -> %s", name, linkname)
	}
	if !fsutil.Within(filepath.Clean(destDir), filepath.Join(filepath.Dir(target), link)) {
		return fmt.Errorf("illegal link target: %s -> %s", name, linkname)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	return os.Symlink(link, target)
}

// writeEntry materializes one archive member under destDir
func writeEntry(destDir, name string, isDir bool, mode fs.FileMode, open func() (io.ReadCloser, error)) error {
	target, err := safeJoin(destDir, name)
	if err != nil {
		return err
	}

	if err := checkParents(destDir, target); err != nil {
		return err
	}

	if isDir {
		return os.MkdirAll(target, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	src, err := open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// safeJoin resolves name under destDir, rejecting entries that escape it
func safeJoin(destDir, name string) (string, error) {
	root := filepath.Clean(destDir)
	target := filepath.Join(root, name)
	if !fsutil.Within(root, target) {
		return "", fmt.Errorf("illegal file path: %s", name)
	}
	return target, nil
}

// checkParents rejects a target whose parent directories below destDir include a
// symlink, since writing through it could land anywhere
func checkParents(destDir, target string) error {
	root := filepath.Clean(destDir)
	rel, err := filepath.Rel(root, filepath.Dir(target))
	if err != nil || rel == "." {
		return err
	}

	current := root
	for _, part := range strings.Split(rel, string(os.PathSeparator)) {
		current = filepath.Join(current, part)
		info, err := os.Lstat(current)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			rel, _ := filepath.Rel(root, target)
			return fmt.Errorf("illegal file path: %s is below the symbolic link %s", rel, filepath.Base(current))
		}
	}
	return nil
}

// StripTopLevelDir hoists the contents of a lone top-level directory into extractDir,
// the usual shape of a "project-1.0/" release archive
func StripTopLevelDir(extractDir string) error {
	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return err
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	tempDir := extractDir + ".tmp"
	if err := os.Rename(extractDir, tempDir); err != nil {
		return err
	}
	if err := os.Rename(filepath.Join(tempDir, entries[0].Name()), extractDir); err != nil {
		_ = os.Rename(tempDir, extractDir)
		return err
	}
	return os.RemoveAll(tempDir)
}
