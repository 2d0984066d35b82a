package util

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/edsrzf/mmap-go"
)

// MaxMappedFileMB bounds the size of a single mapped input file.
const MaxMappedFileMB = 64

// ReadFile returns the contents of an HTML or CSS input file.
//
// Files are memory-mapped and copied out so the mapping can be released
// immediately; if mmap fails (special files, some network filesystems) it
// falls back to os.ReadFile. Empty files return an empty slice.
func ReadFile(path string, log *slog.Logger) ([]byte, error) {
	if log == nil {
		log = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("read %s: is a directory", path)
	}
	if info.Size() == 0 {
		return []byte{}, nil
	}
	if info.Size() > MaxMappedFileMB<<20 {
		return nil, fmt.Errorf("read %s: file is %d bytes, limit is %d MB", path, info.Size(), MaxMappedFileMB)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		log.Debug("mmap failed, falling back to read", "path", path, "error", err)
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, fmt.Errorf("read %s: %w", path, rerr)
		}
		return data, nil
	}
	defer func() {
		if uerr := m.Unmap(); uerr != nil {
			log.Warn("failed to unmap file", "path", path, "error", uerr)
		}
	}()

	data := make([]byte, len(m))
	copy(data, m)
	return data, nil
}
