package storage

import (
	"fmt"
	"os"
	"sync"
)

// WAL is an append-only commit log the consensus engine writes one
// line to per committed block, independent of the ChainStore itself —
// useful for an operator tailing commits without opening the pebble DB.
type WAL interface {
	Append(line string)
}

type NopWAL struct{}

func NewNopWAL() *NopWAL          { return &NopWAL{} }
func (w *NopWAL) Append(_ string) {}

type FileWAL struct {
	mu sync.Mutex
	f  *os.File
}

func NewFileWAL(path string) (*FileWAL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileWAL{f: f}, nil
}
func (w *FileWAL) Append(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.f, line)
}

var _ WAL = (*NopWAL)(nil)
var _ WAL = (*FileWAL)(nil)
