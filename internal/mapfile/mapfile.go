// Package mapfile provides read-only memory-mapped file access. Each
// analysis goroutine opens its own mapping so no locking is needed between
// concurrent readers of the same file.
package mapfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"bytescope/internal/analysis"
)

// File is a read-only memory-mapped file.
type File struct {
	data []byte
	size uint64
}

// Open memory-maps path for reading. Empty files map to a valid File with
// zero length.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()
	if size == 0 {
		return &File{}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &File{data: data, size: uint64(size)}, nil
}

// Len returns the mapped file size in bytes.
func (f *File) Len() uint64 { return f.size }

// Bytes returns the whole mapping. The slice is invalid after Close.
func (f *File) Bytes() []byte { return f.data }

// Slice returns the bytes covered by region, truncated to the file extent.
// Regions entirely past the end yield an empty slice.
func (f *File) Slice(r analysis.FileRegion) []byte {
	if r.Offset >= f.size {
		return nil
	}
	end := r.End()
	if end > f.size {
		end = f.size
	}
	return f.data[r.Offset:end]
}

// Close unmaps the file. Slices obtained earlier must not be used afterward.
func (f *File) Close() error {
	if f.data == nil {
		return nil
	}
	data := f.data
	f.data = nil
	f.size = 0
	return unix.Munmap(data)
}
