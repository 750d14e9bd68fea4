package object

import (
	"reflect"
	"testing"
)

func normalizedCommit() (*Commit, *Commit, Hash) {
	original := &Commit{
		Tree: EmptyTree,
		Author: Person{
			Name:  "Alice",
			Email: "alice@example.com",
			Date:  Date{Seconds: 1413574058, Offset: 330},
		},
		Committer: Person{
			Name:  "Alice",
			Email: "alice@example.com",
			Date:  Date{Seconds: 1413574058, Offset: 330},
		},
		Message: "fix things\n",
	}
	want := HashObject(TypeCommit, MarshalCommit(original))

	// What comes back from the remote: trailing newline stripped,
	// offsets collapsed to UTC.
	damaged := &Commit{
		Tree:      original.Tree,
		Author:    original.Author,
		Committer: original.Committer,
		Message:   "fix things",
	}
	damaged.Author.Date.Offset = 0
	damaged.Committer.Date.Offset = 0
	return original, damaged, want
}

func TestRepairCommit(t *testing.T) {
	original, damaged, want := normalizedCommit()
	if !Repair(TypeCommit, damaged, want) {
		t.Fatal("Repair failed for an in-bounds normalization")
	}
	if damaged.Message != original.Message {
		t.Errorf("message = %q, want %q", damaged.Message, original.Message)
	}
	if damaged.Author.Date.Offset != 330 || damaged.Committer.Date.Offset != 330 {
		t.Errorf("offsets = %d/%d, want 330", damaged.Author.Date.Offset, damaged.Committer.Date.Offset)
	}
	if got := HashObject(TypeCommit, MarshalCommit(damaged)); got != want {
		t.Errorf("repaired hash = %s, want %s", got, want)
	}
}

func TestRepairCommitOffsetOnly(t *testing.T) {
	_, damaged, want := normalizedCommit()
	// Undo the message damage so only the offsets are wrong.
	damaged.Message = "fix things\n"
	if !Repair(TypeCommit, damaged, want) {
		t.Fatal("Repair failed when only offsets were normalized")
	}
	if damaged.Message != "fix things\n" {
		t.Errorf("message changed to %q", damaged.Message)
	}
}

func TestRepairOutsideSearchSpace(t *testing.T) {
	original := &Commit{
		Tree: EmptyTree,
		Author: Person{
			Name:  "Alice",
			Email: "alice@example.com",
			// 15-minute offsets are off the 30-minute search grid.
			Date: Date{Seconds: 1413574058, Offset: 345},
		},
		Committer: Person{
			Name:  "Alice",
			Email: "alice@example.com",
			Date:  Date{Seconds: 1413574058, Offset: 345},
		},
		Message: "fix things\n",
	}
	want := HashObject(TypeCommit, MarshalCommit(original))

	damaged := &Commit{
		Tree:      original.Tree,
		Author:    original.Author,
		Committer: original.Committer,
		Message:   "fix things",
	}
	damaged.Author.Date.Offset = 0
	damaged.Committer.Date.Offset = 0
	before := *damaged

	if Repair(TypeCommit, damaged, want) {
		t.Fatal("Repair should fail for an off-grid offset")
	}
	if !reflect.DeepEqual(*damaged, before) {
		t.Error("failed Repair must leave the object untouched")
	}
}

func TestRepairTag(t *testing.T) {
	original := &Tag{
		Object: "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3",
		Type:   TypeCommit,
		Tag:    "v1.0.0",
		Tagger: Person{
			Name:  "Alice",
			Email: "alice@example.com",
			Date:  Date{Seconds: 1413574058, Offset: -90},
		},
		Message: "release\n\n",
	}
	want := HashObject(TypeTag, MarshalTag(original))

	damaged := &Tag{
		Object:  original.Object,
		Type:    original.Type,
		Tag:     original.Tag,
		Tagger:  original.Tagger,
		Message: "release",
	}
	damaged.Tagger.Date.Offset = 0

	if !Repair(TypeTag, damaged, want) {
		t.Fatal("Repair failed for an in-bounds tag normalization")
	}
	if damaged.Message != original.Message || damaged.Tagger.Date.Offset != -90 {
		t.Errorf("repaired to %q / %d", damaged.Message, damaged.Tagger.Date.Offset)
	}
}

func TestRepairIgnoresOtherTypes(t *testing.T) {
	if Repair(TypeBlob, &Blob{Data: []byte("x")}, EmptyBlob) {
		t.Error("Repair should not apply to blobs")
	}
	if Repair(TypeTree, Tree{}, EmptyTree) {
		t.Error("Repair should not apply to trees")
	}
}
