package github

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/odvcencio/hubmount/pkg/object"
)

// Encode translates a domain object into the wire shape the API accepts
// for creation.
func Encode(objType object.ObjectType, obj any) (any, error) {
	switch objType {
	case object.TypeBlob:
		b, ok := obj.(*object.Blob)
		if !ok {
			return nil, fmt.Errorf("encode blob: unsupported value %T", obj)
		}
		return encodeBlob(b), nil
	case object.TypeTree:
		t, ok := obj.(object.Tree)
		if !ok {
			return nil, fmt.Errorf("encode tree: unsupported value %T", obj)
		}
		return encodeTree(t), nil
	case object.TypeCommit:
		c, ok := obj.(*object.Commit)
		if !ok {
			return nil, fmt.Errorf("encode commit: unsupported value %T", obj)
		}
		return encodeCommit(c)
	case object.TypeTag:
		t, ok := obj.(*object.Tag)
		if !ok {
			return nil, fmt.Errorf("encode tag: unsupported value %T", obj)
		}
		return encodeTag(t)
	default:
		return nil, fmt.Errorf("encode: unknown object type %q", objType)
	}
}

// Decode translates an API response body into a domain object.
func Decode(objType object.ObjectType, raw json.RawMessage) (any, error) {
	switch objType {
	case object.TypeBlob:
		return decodeBlob(raw)
	case object.TypeTree:
		return decodeTree(raw)
	case object.TypeCommit:
		return decodeCommit(raw)
	case object.TypeTag:
		return decodeTag(raw)
	default:
		return nil, fmt.Errorf("decode: unknown object type %q", objType)
	}
}

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// encodeBlob tags text content as utf-8 and everything else as base64.
func encodeBlob(b *object.Blob) wireBlob {
	if utf8.Valid(b.Data) && !bytes.ContainsRune(b.Data, 0) {
		return wireBlob{Content: string(b.Data), Encoding: "utf-8"}
	}
	return wireBlob{
		Content:  base64.StdEncoding.EncodeToString(b.Data),
		Encoding: "base64",
	}
}

func decodeBlob(raw json.RawMessage) (*object.Blob, error) {
	var resp wireBlobResp
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode blob: %w", err)
	}
	switch resp.Encoding {
	case "base64":
		// The service line-wraps base64 payloads.
		content := strings.ReplaceAll(resp.Content, "\n", "")
		data, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("decode blob: base64: %w", err)
		}
		return &object.Blob{Data: data}, nil
	case "utf-8":
		return &object.Blob{Data: []byte(resp.Content)}, nil
	default:
		return nil, fmt.Errorf("decode blob: unknown encoding %q", resp.Encoding)
	}
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

func encodeTree(t object.Tree) wireTree {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)

	wire := wireTree{Tree: make([]wireTreeEntry, 0, len(t))}
	for _, name := range names {
		entry := t[name]
		sha := string(entry.Hash)
		wire.Tree = append(wire.Tree, wireTreeEntry{
			Path: name,
			Mode: formatMode(entry.Mode),
			Type: string(entry.Mode.Kind()),
			SHA:  &sha,
		})
	}
	return wire
}

func decodeTree(raw json.RawMessage) (object.Tree, error) {
	var resp wireTreeResp
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return decodeTreeEntries(resp.Tree)
}

func decodeTreeEntries(entries []wireTreeEntry) (object.Tree, error) {
	t := make(object.Tree, len(entries))
	for _, entry := range entries {
		mode, err := strconv.ParseUint(entry.Mode, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("decode tree: entry %q has bad mode %q: %w", entry.Path, entry.Mode, err)
		}
		if entry.SHA == nil {
			return nil, fmt.Errorf("decode tree: entry %q has no sha", entry.Path)
		}
		t[entry.Path] = object.TreeEntry{
			Mode: object.Mode(mode),
			Hash: object.Hash(*entry.SHA),
		}
	}
	return t, nil
}

// formatMode renders a mode as the fixed-width octal string the API
// requires (zero-padded to 6 characters).
func formatMode(m object.Mode) string {
	return fmt.Sprintf("%06o", uint32(m))
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

func encodeCommit(c *object.Commit) (wireCommit, error) {
	wire := wireCommit{
		Message: c.Message,
		Tree:    string(c.Tree),
		Parents: make([]string, 0, len(c.Parents)),
	}
	for _, p := range c.ParentList() {
		wire.Parents = append(wire.Parents, string(p))
	}
	if present(c.Author) {
		p, err := encodePerson(c.Author)
		if err != nil {
			return wireCommit{}, fmt.Errorf("encode commit author: %w", err)
		}
		wire.Author = p
	}
	if present(c.Committer) {
		p, err := encodePerson(c.Committer)
		if err != nil {
			return wireCommit{}, fmt.Errorf("encode commit committer: %w", err)
		}
		wire.Committer = p
	}
	return wire, nil
}

func decodeCommit(raw json.RawMessage) (*object.Commit, error) {
	var resp wireCommitResp
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode commit: %w", err)
	}
	c := &object.Commit{
		Tree:    object.Hash(resp.Tree.SHA),
		Parents: make([]object.Hash, 0, len(resp.Parents)),
		Message: resp.Message,
	}
	for _, p := range resp.Parents {
		c.Parents = append(c.Parents, object.Hash(p.SHA))
	}
	var err error
	if c.Author, err = decodePerson(resp.Author); err != nil {
		return nil, fmt.Errorf("decode commit author: %w", err)
	}
	if c.Committer, err = decodePerson(resp.Committer); err != nil {
		return nil, fmt.Errorf("decode commit committer: %w", err)
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Tag
// ---------------------------------------------------------------------------

func encodeTag(t *object.Tag) (wireTag, error) {
	tagger, err := encodePerson(t.Tagger)
	if err != nil {
		return wireTag{}, fmt.Errorf("encode tag tagger: %w", err)
	}
	return wireTag{
		Tag:     t.Tag,
		Message: t.Message,
		Object:  string(t.Object),
		Type:    string(t.Type),
		Tagger:  tagger,
	}, nil
}

func decodeTag(raw json.RawMessage) (*object.Tag, error) {
	var resp wireTagResp
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode tag: %w", err)
	}
	tagger, err := decodePerson(resp.Tagger)
	if err != nil {
		return nil, fmt.Errorf("decode tag tagger: %w", err)
	}
	return &object.Tag{
		Tag:     resp.Tag,
		Type:    object.ObjectType(resp.Object.Type),
		Object:  object.Hash(resp.Object.SHA),
		Tagger:  tagger,
		Message: resp.Message,
	}, nil
}

// ---------------------------------------------------------------------------
// Person
// ---------------------------------------------------------------------------

func present(p object.Person) bool {
	return p.Name != "" || p.Email != ""
}

func encodePerson(p object.Person) (*wirePerson, error) {
	if p.Name == "" || p.Email == "" {
		return nil, fmt.Errorf("name and email are required")
	}
	return &wirePerson{
		Name:  p.Name,
		Email: p.Email,
		Date:  object.EncodeDate(p.Date),
	}, nil
}

func decodePerson(w *wirePerson) (object.Person, error) {
	if w == nil {
		return object.Person{}, nil
	}
	date, err := object.ParseDate(w.Date)
	if err != nil {
		return object.Person{}, err
	}
	return object.Person{
		Name:  w.Name,
		Email: w.Email,
		Date:  date,
	}, nil
}
