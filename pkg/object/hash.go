package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// Well-known hashes for objects the remote service refuses to
// materialize. Computed once at startup from the empty encodings.
var (
	EmptyBlob = HashObject(TypeBlob, nil)
	EmptyTree = HashObject(TypeTree, nil)
)

// HashObject computes the SHA-1 of the envelope "type len\0content",
// git's canonical object hash.
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha1.New()
	fmt.Fprintf(h, "%s %d\x00", objType, len(data))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// HashOf canonically encodes a domain object and hashes the framed
// result. Fails only when the object cannot be canonically encoded.
func HashOf(objType ObjectType, obj any) (Hash, error) {
	data, err := Marshal(objType, obj)
	if err != nil {
		return "", err
	}
	return HashObject(objType, data), nil
}

// ValidateHash checks that a hash is a 40-character hex string.
func ValidateHash(h Hash) error {
	s := strings.TrimSpace(string(h))
	if s == "" {
		return fmt.Errorf("hash is empty")
	}
	if len(s) != 40 {
		return fmt.Errorf("hash length %d, expected 40", len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return fmt.Errorf("hash contains non-hex characters: %w", err)
	}
	return nil
}
