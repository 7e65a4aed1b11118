package logging

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"sync"
)

// rotatingFile appends to path. A write that would push the file past
// maxBytes first shifts path.1..path.N-1 up by one, moves path to path.1 and
// starts path empty, so at most N old files are kept.
type rotatingFile struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	backups  int
	f        *os.File
	written  int64
}

func openRotatingFile(path string, maxMB, backups int) (*rotatingFile, error) {
	if maxMB <= 0 {
		maxMB = 10
	}
	if backups < 1 {
		backups = 1
	}
	rf := &rotatingFile{path: path, maxBytes: int64(maxMB) << 20, backups: backups}
	if err := rf.reopen(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *rotatingFile) reopen() error {
	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	rf.f, rf.written = f, info.Size()
	return nil
}

func (rf *rotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.f == nil {
		if err := rf.reopen(); err != nil {
			return 0, err
		}
	}
	if rf.written > 0 && rf.written+int64(len(p)) > rf.maxBytes {
		if err := rf.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := rf.f.Write(p)
	rf.written += int64(n)
	return n, err
}

func (rf *rotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.f == nil {
		return nil
	}
	err := rf.f.Close()
	rf.f = nil
	return err
}

func (rf *rotatingFile) rotate() error {
	_ = rf.f.Close()
	rf.f = nil
	for i := rf.backups - 1; i >= 1; i-- {
		if err := renameIfExists(backupName(rf.path, i), backupName(rf.path, i+1)); err != nil {
			return err
		}
	}
	if err := renameIfExists(rf.path, backupName(rf.path, 1)); err != nil {
		return err
	}
	return rf.reopen()
}

func backupName(path string, n int) string {
	return path + "." + strconv.Itoa(n)
}

func renameIfExists(from, to string) error {
	if err := os.Rename(from, to); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
