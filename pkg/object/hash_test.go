package object

import "testing"

func TestHashObjectDeterminism(t *testing.T) {
	data := []byte("hello world")
	h1 := HashObject(TypeBlob, data)
	h2 := HashObject(TypeBlob, data)
	if h1 != h2 {
		t.Errorf("HashObject not deterministic: %q != %q", h1, h2)
	}
	if len(h1) != 40 {
		t.Errorf("Hash length: got %d, want 40", len(h1))
	}
}

func TestHashObjectTypeTagged(t *testing.T) {
	data := []byte("hello")
	if HashObject(TypeBlob, data) == HashObject(TypeCommit, data) {
		t.Error("Different types should produce different hashes")
	}
}

// The empty-object hashes are git's well-known constants; anything else
// means the framing or digest is wrong.
func TestWellKnownEmptyHashes(t *testing.T) {
	if EmptyBlob != "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391" {
		t.Errorf("EmptyBlob = %s", EmptyBlob)
	}
	if EmptyTree != "4b825dc642cb6eb9a060e54bf8d69288fbee4904" {
		t.Errorf("EmptyTree = %s", EmptyTree)
	}
}

func TestHashOfMatchesMarshal(t *testing.T) {
	c := &Commit{
		Tree:      EmptyTree,
		Author:    Person{Name: "Alice", Email: "alice@example.com", Date: Date{Seconds: 1413574058}},
		Committer: Person{Name: "Alice", Email: "alice@example.com", Date: Date{Seconds: 1413574058}},
		Message:   "initial\n",
	}
	h, err := HashOf(TypeCommit, c)
	if err != nil {
		t.Fatalf("HashOf: %v", err)
	}
	if want := HashObject(TypeCommit, MarshalCommit(c)); h != want {
		t.Errorf("HashOf = %s, want %s", h, want)
	}
}

func TestHashOfRejectsBadValue(t *testing.T) {
	if _, err := HashOf(TypeCommit, "not a commit"); err == nil {
		t.Error("expected error for mismatched value type")
	}
}

func TestValidateHash(t *testing.T) {
	tests := []struct {
		name       string
		in         Hash
		shouldFail bool
	}{
		{name: "valid", in: EmptyTree},
		{name: "empty", in: "", shouldFail: true},
		{name: "short", in: "abc123", shouldFail: true},
		{name: "non-hex", in: "zz25dc642cb6eb9a060e54bf8d69288fbee4904z", shouldFail: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateHash(tc.in)
			if tc.shouldFail && err == nil {
				t.Fatalf("expected error for %q", tc.in)
			}
			if !tc.shouldFail && err != nil {
				t.Fatalf("ValidateHash(%q): %v", tc.in, err)
			}
		})
	}
}
