package github

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/odvcencio/hubmount/pkg/object"
)

func TestEncodeBlobTagging(t *testing.T) {
	text := encodeBlob(&object.Blob{Data: []byte("plain text")})
	if text.Encoding != "utf-8" || text.Content != "plain text" {
		t.Errorf("text blob encoded as %+v", text)
	}

	binary := encodeBlob(&object.Blob{Data: []byte{0x00, 0x01, 0xff}})
	if binary.Encoding != "base64" {
		t.Errorf("binary blob encoded as %+v", binary)
	}

	// Valid UTF-8 containing NUL still needs base64.
	nul := encodeBlob(&object.Blob{Data: []byte("a\x00b")})
	if nul.Encoding != "base64" {
		t.Errorf("NUL-bearing blob encoded as %+v", nul)
	}
}

func TestDecodeBlobLineWrapped(t *testing.T) {
	raw := []byte(`{"sha":"x","content":"aGVsbG8g\nd29ybGQ=\n","encoding":"base64"}`)
	blob, err := decodeBlob(raw)
	if err != nil {
		t.Fatalf("decodeBlob: %v", err)
	}
	if string(blob.Data) != "hello world" {
		t.Errorf("Data = %q", blob.Data)
	}
}

func TestDecodeBlobUnknownEncoding(t *testing.T) {
	if _, err := decodeBlob([]byte(`{"content":"x","encoding":"utf-16"}`)); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestEncodeCommitParentsNeverNull(t *testing.T) {
	wire, err := encodeCommit(&object.Commit{Tree: object.EmptyTree, Message: "m"})
	if err != nil {
		t.Fatalf("encodeCommit: %v", err)
	}
	data, err := json.Marshal(wire)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"parents":[]`) {
		t.Errorf("rootless commit must send an empty array, got %s", data)
	}
	if strings.Contains(string(data), `"author"`) {
		t.Errorf("absent author must be omitted, got %s", data)
	}
}

func TestEncodeCommitSingleParentShorthand(t *testing.T) {
	wire, err := encodeCommit(&object.Commit{
		Tree:   object.EmptyTree,
		Parent: "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3",
	})
	if err != nil {
		t.Fatalf("encodeCommit: %v", err)
	}
	if len(wire.Parents) != 1 || wire.Parents[0] != "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3" {
		t.Errorf("Parents = %v", wire.Parents)
	}
}

func TestEncodeCommitRejectsPartialPerson(t *testing.T) {
	_, err := encodeCommit(&object.Commit{
		Tree:   object.EmptyTree,
		Author: object.Person{Name: "Alice"},
	})
	if err == nil {
		t.Error("expected error for author without email")
	}
}

func TestDecodeCommitResponse(t *testing.T) {
	raw := []byte(`{
		"sha": "7638417db6d59f3c431d3e1f261cc637155684cd",
		"message": "fix things\n",
		"tree": {"sha": "4b825dc642cb6eb9a060e54bf8d69288fbee4904"},
		"parents": [{"sha": "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3"}],
		"author": {"name": "Alice", "email": "alice@example.com", "date": "2014-10-17T14:47:38-05:00"},
		"committer": {"name": "Bob", "email": "bob@example.com", "date": "2014-10-18T01:17:38+05:30"}
	}`)
	c, err := decodeCommit(raw)
	if err != nil {
		t.Fatalf("decodeCommit: %v", err)
	}
	if c.Tree != object.EmptyTree || c.Message != "fix things\n" {
		t.Errorf("got %+v", c)
	}
	if len(c.Parents) != 1 || c.Parents[0] != "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3" {
		t.Errorf("Parents = %v", c.Parents)
	}
	// Suffix sign inverts: -05:00 is 300 minutes west, +05:30 is -330.
	if c.Author.Date.Offset != 300 {
		t.Errorf("author offset = %d, want 300", c.Author.Date.Offset)
	}
	if c.Committer.Date.Offset != -330 {
		t.Errorf("committer offset = %d, want -330", c.Committer.Date.Offset)
	}
	if c.Author.Date.Seconds != c.Committer.Date.Seconds {
		t.Errorf("both dates name the same instant, got %d / %d",
			c.Author.Date.Seconds, c.Committer.Date.Seconds)
	}
}

// A commit pushed through the response shape and decoded back must hash
// to the same value it started with.
func TestCommitHashSurvivesWire(t *testing.T) {
	c := &object.Commit{
		Tree:    object.EmptyTree,
		Parents: []object.Hash{"a94a8fe5ccb19ba61c4c0873d391e987982fbbd3"},
		Author: object.Person{
			Name:  "Alice",
			Email: "alice@example.com",
			Date:  object.Date{Seconds: 1413574058, Offset: -330},
		},
		Committer: object.Person{
			Name:  "Alice",
			Email: "alice@example.com",
			Date:  object.Date{Seconds: 1413574058, Offset: -330},
		},
		Message: "fix things\n",
	}
	want, err := object.HashOf(object.TypeCommit, c)
	if err != nil {
		t.Fatal(err)
	}

	resp := wireCommitResp{
		Message:   c.Message,
		Tree:      wireObjectRef{SHA: string(c.Tree)},
		Parents:   []wireObjectRef{{SHA: string(c.Parents[0])}},
		Author:    &wirePerson{Name: c.Author.Name, Email: c.Author.Email, Date: object.EncodeDate(c.Author.Date)},
		Committer: &wirePerson{Name: c.Committer.Name, Email: c.Committer.Email, Date: object.EncodeDate(c.Committer.Date)},
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := decodeCommit(raw)
	if err != nil {
		t.Fatalf("decodeCommit: %v", err)
	}
	got, err := object.HashOf(object.TypeCommit, decoded)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("hash changed across the wire: %s != %s", got, want)
	}
}

func TestEncodeTreeModes(t *testing.T) {
	wire := encodeTree(object.Tree{
		"dir":  {Mode: object.ModeTree, Hash: object.EmptyTree},
		"file": {Mode: object.ModeBlob, Hash: object.EmptyBlob},
	})
	byPath := map[string]wireTreeEntry{}
	for _, e := range wire.Tree {
		byPath[e.Path] = e
	}
	if e := byPath["dir"]; e.Mode != "040000" || e.Type != "tree" {
		t.Errorf("dir entry = %+v", e)
	}
	if e := byPath["file"]; e.Mode != "100644" || e.Type != "blob" {
		t.Errorf("file entry = %+v", e)
	}
}

func TestDecodeTreeEntries(t *testing.T) {
	sha := string(object.EmptyBlob)
	tree, err := decodeTreeEntries([]wireTreeEntry{
		{Path: "run.sh", Mode: "100755", Type: "blob", SHA: &sha},
	})
	if err != nil {
		t.Fatalf("decodeTreeEntries: %v", err)
	}
	if tree["run.sh"].Mode != object.ModeExecutable {
		t.Errorf("mode = %o", tree["run.sh"].Mode)
	}

	if _, err := decodeTreeEntries([]wireTreeEntry{{Path: "x", Mode: "100644"}}); err == nil {
		t.Error("expected error for entry without sha")
	}
	if _, err := decodeTreeEntries([]wireTreeEntry{{Path: "x", Mode: "not-octal", SHA: &sha}}); err == nil {
		t.Error("expected error for bad mode")
	}
}

func TestDecodeTagNestedObject(t *testing.T) {
	raw := []byte(`{
		"sha": "940bea91c0c0319e76ad9c0b19c1b25d30aba085",
		"tag": "v1.0.0",
		"message": "release\n",
		"object": {"sha": "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3", "type": "commit"},
		"tagger": {"name": "Alice", "email": "alice@example.com", "date": "2014-10-17T19:47:38+00:00"}
	}`)
	tag, err := decodeTag(raw)
	if err != nil {
		t.Fatalf("decodeTag: %v", err)
	}
	if tag.Object != "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3" || tag.Type != object.TypeCommit {
		t.Errorf("got %+v", tag)
	}
	if tag.Tag != "v1.0.0" || tag.Tagger.Name != "Alice" {
		t.Errorf("got %+v", tag)
	}
}

func TestEncodeTagRequiresTagger(t *testing.T) {
	_, err := encodeTag(&object.Tag{
		Object: object.EmptyTree,
		Type:   object.TypeCommit,
		Tag:    "v1",
	})
	if err == nil {
		t.Error("expected error for tag without tagger")
	}
}
