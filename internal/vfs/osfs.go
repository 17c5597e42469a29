package vfs

import (
	"io/fs"
	"os"
)

// OSFS is the host file system.
type OSFS struct{}

func NewOS() *OSFS { return &OSFS{} }

func (fsys *OSFS) Open(name string) (File, error)               { return os.Open(name) }
func (fsys *OSFS) Create(name string) (File, error)             { return os.Create(name) }
func (fsys *OSFS) MkdirAll(name string, perm fs.FileMode) error { return os.MkdirAll(name, perm) }
func (fsys *OSFS) Stat(name string) (fs.FileInfo, error)        { return os.Stat(name) }
