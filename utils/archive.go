package utils

import (
	"archive/tar"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/xerrors"
)

// MemberInTar reports whether member is an entry of the tar archive at
// tarPath. Archives with a .gz or .tgz suffix are decompressed on the fly.
func MemberInTar(tarPath, member string) (bool, error) {
	f, err := os.Open(tarPath)
	if err != nil {
		return false, xerrors.Errorf("failed to open %s: %w", tarPath, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(tarPath, ".gz") || strings.HasSuffix(tarPath, ".tgz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return false, xerrors.Errorf("failed to decompress %s: %w", tarPath, err)
		}
		defer gr.Close()
		r = gr
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, xerrors.Errorf("failed to read %s: %w", tarPath, err)
		}
		if hdr.Name == member {
			log.Printf("%s found in %s", member, tarPath)
			return true, nil
		}
	}
	return false, nil
}

// FindInDirectory returns the paths of directory entries whose names contain
// fileName. A missing directory yields no results, not an error.
func FindInDirectory(directory, fileName string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if os.IsNotExist(err) {
		log.Printf("Can't find %s", directory)
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", directory, err)
	}

	var found []string
	for _, entry := range entries {
		if strings.Contains(entry.Name(), fileName) {
			found = append(found, filepath.Join(directory, entry.Name()))
		}
	}
	return found, nil
}
