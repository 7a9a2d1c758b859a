package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	errUnsafePath = errors.New("entry escapes the destination")
	errSymlink    = errors.New("symbolic link entries are not supported")
)

// ExtractZip unpacks src into destDir and returns the extracted file paths.
// The zip handle is closed before ExtractZip returns.
func ExtractZip(src, destDir string) (files []string, err error) {
	reader, err := zip.OpenReader(filepath.Clean(src))
	if err != nil {
		if reader != nil {
			_ = reader.Close()
		}

		if errors.Is(err, zip.ErrInsecurePath) {
			return nil, fmt.Errorf("%w: %s", errUnsafePath, src)
		}

		return nil, fmt.Errorf("open %s: %w", src, err)
	}

	defer func() {
		if closeErr := reader.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", src, closeErr)
		}
	}()

	destDir, err = filepath.Abs(destDir)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(destDir, 0o755); err != nil { //nolint:mnd // Standard directory mode.
		return nil, err
	}

	for _, entry := range reader.File {
		target, err := safeJoin(destDir, entry.Name)
		if err != nil {
			return nil, err
		}

		if entry.Mode()&os.ModeSymlink != 0 {
			return nil, fmt.Errorf("%w: %s", errSymlink, entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err = os.MkdirAll(target, 0o755); err != nil { //nolint:mnd // Standard directory mode.
				return nil, err
			}

			continue
		}

		if err = extractFile(entry, target); err != nil {
			return nil, fmt.Errorf("extract %s: %w", entry.Name, err)
		}

		files = append(files, target)
	}

	return files, nil
}

func extractFile(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil { //nolint:mnd // Standard directory mode.
		return err
	}

	in, err := entry.Open()
	if err != nil {
		return err
	}

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return errors.Join(err, in.Close())
	}

	//nolint:gosec // Archives come from our own release pipeline.
	_, err = io.Copy(out, in)

	return errors.Join(err, out.Close(), in.Close())
}

// safeJoin rejects entries like "../evil" that would land outside destDir.
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if target != destDir && !strings.HasPrefix(target, destDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", errUnsafePath, name)
	}

	return target, nil
}
