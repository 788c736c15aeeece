package services

import "github.com/deploymenttheory/go-minifs/internal/managers/descriptors"

// FileSystemService is the full set of operations on one image
type FileSystemService interface {
	Format() error
	CheckMagic() error
	List(path string) ([]DirEntry, error)
	MakeDir(path string) error
	MakeFile(path string) error
	Open(path string) (uint16, error)
	Close(handle uint16) error
	Seek(handle uint16, pos uint32) error
	Read(handle uint16, size int) ([]byte, error)
	Write(handle uint16, data []byte) (int, error)
	ReadTo(handle uint16, hostPath string, size int) (int, error)
	WriteFrom(handle uint16, hostPath string) (int, error)
	Stat(path string) (*FileStat, error)
	Info() (*FsReport, error)
	Descriptors() ([]descriptors.OpenDescriptor, error)
}

var _ FileSystemService = (*FileSystem)(nil)
