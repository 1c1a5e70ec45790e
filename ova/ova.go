// Package ova packs and unpacks OVA archives, the uncompressed tar bundles
// that carry an OVF descriptor, its manifest and the disk images.
package ova

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath indicates an archive member would extract outside the
// destination directory.
var ErrUnsafePath = errors.New("ova: archive entry escapes destination")

// IsArchive reports whether the file at path starts with a readable tar
// header. Used to route OVA inputs to extraction before editing.
func IsArchive(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("ova: open %s: %w", path, err)
	}
	defer f.Close()

	_, err = tar.NewReader(f).Next()
	return err == nil, nil
}

// Extract unpacks every regular file in the archive at src into dstDir and
// returns the extracted paths in archive order. Entries that would resolve
// outside dstDir are rejected.
func Extract(src, dstDir string) ([]string, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("ova: open %s: %w", src, err)
	}
	defer f.Close()

	var out []string
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("ova: read %s: %w", src, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		dst, err := safeJoin(dstDir, hdr.Name)
		if err != nil {
			return out, err
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return out, fmt.Errorf("ova: extract %s: %w", hdr.Name, err)
		}
		if err := writeMember(dst, tr, hdr.FileInfo().Mode().Perm()); err != nil {
			return out, err
		}
		out = append(out, dst)
	}
}

// Pack writes the files at paths into a new flat tar archive at dst. Member
// names are the basenames of the inputs; callers put the descriptor first,
// per OVA packaging convention.
func Pack(dst string, paths []string) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("ova: create %s: %w", dst, err)
	}
	defer f.Close()

	tw := tar.NewWriter(f)
	for _, p := range paths {
		if err := addMember(tw, p); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("ova: finalize %s: %w", dst, err)
	}
	return f.Close()
}

// DescriptorPath returns the conventional descriptor path for an archive
// name inside dir: "<name>.ovf".
func DescriptorPath(dir, name string) string {
	return filepath.Join(dir, name+".ovf")
}

func addMember(tw *tar.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("ova: stat %s: %w", path, err)
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("ova: header for %s: %w", path, err)
	}
	hdr.Name = filepath.Base(path)
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("ova: add %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ova: open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("ova: add %s: %w", path, err)
	}
	return nil
}

func writeMember(dst string, r io.Reader, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o644
	}
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("ova: extract %s: %w", dst, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("ova: extract %s: %w", dst, err)
	}
	return f.Close()
}

// safeJoin joins an archive member name onto dir, rejecting names that
// climb out of it.
func safeJoin(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return filepath.Join(dir, clean), nil
}
