package object

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Marshal canonically encodes a domain object for the given type.
// The resulting bytes are exactly what HashObject frames and digests.
func Marshal(objType ObjectType, obj any) ([]byte, error) {
	switch objType {
	case TypeBlob:
		b, ok := obj.(*Blob)
		if !ok {
			return nil, fmt.Errorf("marshal blob: unsupported value %T", obj)
		}
		return MarshalBlob(b), nil
	case TypeTree:
		t, ok := obj.(Tree)
		if !ok {
			return nil, fmt.Errorf("marshal tree: unsupported value %T", obj)
		}
		return MarshalTree(t)
	case TypeCommit:
		c, ok := obj.(*Commit)
		if !ok {
			return nil, fmt.Errorf("marshal commit: unsupported value %T", obj)
		}
		return MarshalCommit(c), nil
	case TypeTag:
		t, ok := obj.(*Tag)
		if !ok {
			return nil, fmt.Errorf("marshal tag: unsupported value %T", obj)
		}
		return MarshalTag(t), nil
	default:
		return nil, fmt.Errorf("marshal: unknown object type %q", objType)
	}
}

// Unmarshal parses canonical bytes back into a domain object.
func Unmarshal(objType ObjectType, data []byte) (any, error) {
	switch objType {
	case TypeBlob:
		return UnmarshalBlob(data), nil
	case TypeTree:
		return UnmarshalTree(data)
	case TypeCommit:
		return UnmarshalCommit(data)
	case TypeTag:
		return UnmarshalTag(data)
	default:
		return nil, fmt.Errorf("unmarshal: unknown object type %q", objType)
	}
}

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) *Blob {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// MarshalTree serializes a Tree in git's canonical binary form. Entries
// are sorted by name, with directory names compared as name+"/" (git's
// tree order). Each entry is:
//
//	<octal mode> <name>\0<20 raw sha bytes>
func MarshalTree(t Tree) ([]byte, error) {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return treeSortKey(names[i], t[names[i]].Mode) < treeSortKey(names[j], t[names[j]].Mode)
	})

	var buf bytes.Buffer
	for _, name := range names {
		entry := t[name]
		raw, err := hex.DecodeString(string(entry.Hash))
		if err != nil || len(raw) != 20 {
			return nil, fmt.Errorf("marshal tree: entry %q has invalid hash %q", name, entry.Hash)
		}
		fmt.Fprintf(&buf, "%s %s\x00", strconv.FormatUint(uint64(entry.Mode), 8), name)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

func treeSortKey(name string, mode Mode) string {
	if mode == ModeTree {
		return name + "/"
	}
	return name
}

// UnmarshalTree parses a canonical tree encoding.
func UnmarshalTree(data []byte) (Tree, error) {
	t := Tree{}
	rest := data
	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("unmarshal tree: missing mode separator")
		}
		mode, err := strconv.ParseUint(string(rest[:sp]), 8, 32)
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: bad mode %q: %w", rest[:sp], err)
		}
		rest = rest[sp+1:]
		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("unmarshal tree: missing name terminator")
		}
		name := string(rest[:nul])
		rest = rest[nul+1:]
		if len(rest) < 20 {
			return nil, fmt.Errorf("unmarshal tree: truncated hash for entry %q", name)
		}
		t[name] = TreeEntry{
			Mode: Mode(mode),
			Hash: Hash(hex.EncodeToString(rest[:20])),
		}
		rest = rest[20:]
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

// MarshalCommit serializes a Commit in git's canonical text form:
//
//	tree H
//	parent H     (zero or more)
//	author P
//	committer P
//
//	message
func MarshalCommit(c *Commit) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	for _, p := range c.ParentList() {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", formatPerson(c.Author))
	fmt.Fprintf(&buf, "committer %s\n", formatPerson(c.Committer))
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a canonical commit encoding.
func UnmarshalCommit(data []byte) (*Commit, error) {
	header, message, err := splitHeader(data, "commit")
	if err != nil {
		return nil, err
	}
	c := &Commit{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			c.Tree = Hash(val)
		case "parent":
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			p, err := parsePerson(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: %w", err)
			}
			c.Author = p
		case "committer":
			p, err := parsePerson(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: %w", err)
			}
			c.Committer = p
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Tag
// ---------------------------------------------------------------------------

// MarshalTag serializes a Tag in git's canonical text form.
func MarshalTag(t *Tag) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "object %s\n", t.Object)
	fmt.Fprintf(&buf, "type %s\n", t.Type)
	fmt.Fprintf(&buf, "tag %s\n", t.Tag)
	fmt.Fprintf(&buf, "tagger %s\n", formatPerson(t.Tagger))
	buf.WriteByte('\n')
	buf.WriteString(t.Message)
	return buf.Bytes()
}

// UnmarshalTag parses a canonical tag encoding.
func UnmarshalTag(data []byte) (*Tag, error) {
	header, message, err := splitHeader(data, "tag")
	if err != nil {
		return nil, err
	}
	t := &Tag{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal tag: malformed header line %q", line)
		}
		switch key {
		case "object":
			t.Object = Hash(val)
		case "type":
			t.Type = ObjectType(val)
		case "tag":
			t.Tag = val
		case "tagger":
			p, err := parsePerson(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal tag: %w", err)
			}
			t.Tagger = p
		default:
			return nil, fmt.Errorf("unmarshal tag: unknown header key %q", key)
		}
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// Person
// ---------------------------------------------------------------------------

// formatPerson renders a person line: "Name <email> <seconds> <zone>",
// where the zone sign is "+" for offsets at or east of UTC (offset <= 0
// in the minutes-west convention).
func formatPerson(p Person) string {
	return fmt.Sprintf("%s <%s> %d %s", safe(p.Name), safe(p.Email), p.Date.Seconds, formatZone(p.Date.Offset))
}

func formatZone(offset int) string {
	sign := "+"
	if offset > 0 {
		sign = "-"
	} else {
		offset = -offset
	}
	return fmt.Sprintf("%s%02d%02d", sign, offset/60, offset%60)
}

func parsePerson(s string) (Person, error) {
	open := strings.Index(s, " <")
	end := strings.Index(s, "> ")
	if open < 0 || end < open {
		return Person{}, fmt.Errorf("malformed person %q", s)
	}
	p := Person{
		Name:  s[:open],
		Email: s[open+2 : end],
	}
	fields := strings.Fields(s[end+2:])
	if len(fields) != 2 {
		return Person{}, fmt.Errorf("malformed person date in %q", s)
	}
	seconds, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Person{}, fmt.Errorf("bad person seconds %q: %w", fields[0], err)
	}
	offset, err := parseZone(fields[1])
	if err != nil {
		return Person{}, err
	}
	p.Date = Date{Seconds: seconds, Offset: offset}
	return p, nil
}

func parseZone(zone string) (int, error) {
	if len(zone) != 5 || (zone[0] != '+' && zone[0] != '-') {
		return 0, fmt.Errorf("bad person zone %q", zone)
	}
	hours, err := strconv.Atoi(zone[1:3])
	if err != nil {
		return 0, fmt.Errorf("bad person zone %q: %w", zone, err)
	}
	minutes, err := strconv.Atoi(zone[3:5])
	if err != nil {
		return 0, fmt.Errorf("bad person zone %q: %w", zone, err)
	}
	offset := hours*60 + minutes
	if zone[0] == '+' {
		offset = -offset
	}
	return offset, nil
}

// safe strips characters that would corrupt the person line framing.
func safe(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '\n', 0:
			return -1
		}
		return r
	}, s)
	return strings.Trim(s, " .,:;'\"")
}

func splitHeader(data []byte, kind string) (header, message string, err error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return "", "", fmt.Errorf("unmarshal %s: missing header/message separator", kind)
	}
	return string(data[:idx]), string(data[idx+2:]), nil
}
