package runner

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/firmlab/firmlab/internal/model"
)

// loadFirmware copies the staged firmware binary into the environment's
// firmware mount and unpacks it when it is an archive. Returns the
// in-container path of the loaded file.
func (b *Backend) loadFirmware(env *Environment, firmware model.FirmwareInfo, logf Logf) (string, error) {
	env.Status = model.EnvLoadingFirmware

	destPath := filepath.Join(env.firmwareDir(), firmware.Filename)
	if err := copyFile(firmware.Path, destPath); err != nil {
		return "", fmt.Errorf("load firmware %s: %w", firmware.Filename, err)
	}
	emit(logf, fmt.Sprintf("Firmware copied: %s (%d bytes, sha256 %s...)",
		firmware.Filename, firmware.SizeBytes, shortChecksum(firmware.SHA256)))

	if isArchive(firmware.Filename) {
		n, err := extractArchive(destPath, env.firmwareDir())
		if err != nil {
			// Extraction problems are logged, not fatal: the binary
			// itself is already in place.
			b.logger.Warn("firmware archive extraction failed", "file", firmware.Filename, "error", err)
			emit(logf, fmt.Sprintf("Archive extraction warning: %v", err))
		} else {
			emit(logf, fmt.Sprintf("Extracted %d files from archive", n))
		}
	}

	return "/firmware/" + firmware.Filename, nil
}

func isArchive(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".zip", ".tar", ".gz", ".tgz":
		return true
	}
	return false
}

// extractArchive unpacks a firmware archive into destDir, returning the
// number of extracted files. Entries escaping destDir are rejected.
func extractArchive(archivePath, destDir string) (int, error) {
	switch strings.ToLower(filepath.Ext(archivePath)) {
	case ".zip":
		return extractZip(archivePath, destDir)
	case ".tar":
		f, err := os.Open(archivePath)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		return extractTar(f, destDir)
	case ".gz", ".tgz":
		f, err := os.Open(archivePath)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		gz, err := gzip.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		return extractTar(gz, destDir)
	}
	return 0, fmt.Errorf("unsupported archive format: %s", filepath.Ext(archivePath))
}

func extractZip(archivePath, destDir string) (int, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	count := 0
	for _, entry := range zr.File {
		target, err := safeJoin(destDir, entry.Name)
		if err != nil {
			return count, err
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return count, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return count, err
		}
		rc, err := entry.Open()
		if err != nil {
			return count, err
		}
		if err := writeStream(target, rc); err != nil {
			rc.Close()
			return count, err
		}
		rc.Close()
		count++
	}
	return count, nil
}

func extractTar(r io.Reader, destDir string) (int, error) {
	tr := tar.NewReader(r)
	count := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("read tar: %w", err)
		}
		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return count, err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return count, err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return count, err
			}
			if err := writeStream(target, tr); err != nil {
				return count, err
			}
			count++
		}
	}
}

// safeJoin joins name under dir, rejecting path traversal out of dir.
func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, name)
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return target, nil
}

func writeStream(path string, r io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeStream(dst, in)
}
