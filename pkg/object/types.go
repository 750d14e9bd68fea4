package object

// Hash is a 40-character hex-encoded SHA-1 digest, git's canonical
// object identifier.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

// Mode is a git file mode. The numeric values match git's canonical
// tree-entry modes.
type Mode uint32

const (
	ModeTree       Mode = 0o040000
	ModeBlob       Mode = 0o100644
	ModeExecutable Mode = 0o100755
	ModeSymlink    Mode = 0o120000
	// ModeCommit marks a sub-repository link (gitlink); the entry hash
	// names a commit in another repository.
	ModeCommit Mode = 0o160000
)

// Kind maps a tree-entry mode to the object type its hash refers to.
func (m Mode) Kind() ObjectType {
	switch m {
	case ModeTree:
		return TypeTree
	case ModeCommit:
		return TypeCommit
	default:
		return TypeBlob
	}
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode Mode
	Hash Hash
}

// Tree maps entry names to entries. Entry order is irrelevant to
// identity; canonical serialization sorts.
type Tree map[string]TreeEntry

// Date is a git timestamp: epoch seconds plus a timezone offset in
// minutes west of UTC (positive offsets are behind UTC, mirroring the
// convention the wire date format encodes).
type Date struct {
	Seconds int64
	Offset  int
}

// Person identifies a commit author/committer or tag tagger.
type Person struct {
	Name  string
	Email string
	Date  Date
}

// Commit points at a tree with metadata. Parent, if set while Parents
// is empty, is normalized into a one-element parent list at encode
// time.
type Commit struct {
	Tree      Hash
	Parents   []Hash
	Parent    Hash
	Author    Person
	Committer Person
	Message   string
}

// Tag is an annotated tag pointing at an object of a declared type.
type Tag struct {
	Object  Hash
	Type    ObjectType
	Tag     string
	Tagger  Person
	Message string
}

// ParentList returns the commit's parent hashes with the single-parent
// shorthand normalized in. Never nil.
func (c *Commit) ParentList() []Hash {
	if len(c.Parents) > 0 {
		return c.Parents
	}
	if c.Parent != "" {
		return []Hash{c.Parent}
	}
	return []Hash{}
}
