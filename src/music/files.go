package music

// TransferMode selects how a file reaches its destination.
type TransferMode int

const (
	Copy TransferMode = iota
	Move
)

func (m TransferMode) String() string {
	if m == Move {
		return "move"
	}
	return "copy"
}

// FileKind classifies an entry produced by a tree walk. Only RegularFile
// entries are ever dispatched.
type FileKind int

const (
	RegularFile FileKind = iota
	Directory
	Symlink
	UnreadableDirectory
	DanglingSymlink
	OtherFile
)

func (k FileKind) String() string {
	switch k {
	case RegularFile:
		return "file"
	case Directory:
		return "directory"
	case Symlink:
		return "symlink"
	case UnreadableDirectory:
		return "unreadable_directory"
	case DanglingSymlink:
		return "dangling_symlink"
	default:
		return "other"
	}
}
