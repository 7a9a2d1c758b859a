package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/client-release/internal/domain/build"
)

// CreateTarGz archives the contents of srcDir into dest. Entries are
// relative to srcDir and prefixed with "./"; owner names and ids are dropped
// so the archive extracts the same on every machine.
func CreateTarGz(srcDir, dest string) (err error) {
	srcDir, err = filepath.Abs(srcDir)
	if err != nil {
		return fmt.Errorf("%w: %w", build.ErrFileSystem, err)
	}

	out, err := os.Create(filepath.Clean(dest))
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", build.ErrFileSystem, dest, err)
	}

	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: close %s: %w", build.ErrFileSystem, dest, closeErr)
		}
	}()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		return addEntry(tw, srcDir, path, d)
	})

	// Close in order even after a walk failure so nothing leaks.
	err = errors.Join(walkErr, tw.Close(), gz.Close())
	if err != nil {
		return fmt.Errorf("%w: archive %s: %w", build.ErrFileSystem, srcDir, err)
	}

	return nil
}

func addEntry(tw *tar.Writer, root, path string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}

	name := "./"
	if rel != "." {
		name += filepath.ToSlash(rel)
	}

	var link string
	if info.Mode()&os.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return err
		}
	}

	header, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}

	header.Name = name
	if info.IsDir() && !strings.HasSuffix(header.Name, "/") {
		header.Name += "/"
	}

	header.Uid, header.Gid = 0, 0
	header.Uname, header.Gname = "", ""
	header.Format = tar.FormatPAX

	if err = tw.WriteHeader(header); err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}

	_, err = io.Copy(tw, f)

	return errors.Join(err, f.Close())
}
