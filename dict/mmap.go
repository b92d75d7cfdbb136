package dict

import (
	"os"

	"github.com/fschiettecatte/mpscore/internal/base"
	"golang.org/x/sys/unix"
)

// mappedFile is the one place this package touches the operating system's
// mmap syscall directly (the teacher's sstable package hides the equivalent
// behind its vfs/objstorage layers, which are out of scope here; spec.md
// §4.2 just says "memory-map the file read-only").
type mappedFile struct {
	f    *os.File
	data []byte
}

func mapFileReadOnly(path string) (*mappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, base.Wrapf(base.KindIO, err, "dict: open %q", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, base.Wrapf(base.KindIO, err, "dict: stat %q", path)
	}
	size := info.Size()
	if size < headerLength {
		f.Close()
		return nil, base.Errorf(base.KindCorruption, "dict: %q is too short to contain a header (%d bytes)", path, size)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, base.Wrapf(base.KindIO, err, "dict: mmap %q", path)
	}
	return &mappedFile{f: f, data: data}, nil
}

func (m *mappedFile) Close() error {
	var err error
	if m.data != nil {
		err = unix.Munmap(m.data)
		m.data = nil
	}
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return base.Wrapf(base.KindIO, err, "dict: close mapped file")
	}
	return nil
}
