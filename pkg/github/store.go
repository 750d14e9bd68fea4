package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/odvcencio/hubmount/pkg/object"
)

// ObjectCache is an optional local content-addressed cache consulted
// before the network. Entries hold canonical object bytes.
type ObjectCache interface {
	Has(h object.Hash) bool
	Read(h object.Hash) (object.ObjectType, []byte, error)
	Write(objType object.ObjectType, data []byte) (object.Hash, error)
}

// Options configures a Store beyond its Config. All fields are
// optional; zero values get sensible defaults.
type Options struct {
	// Transport overrides the HTTP client, e.g. for tests.
	Transport Transport
	// TypeCache seeds the advisory hash-to-type cache. The store owns
	// the map afterwards.
	TypeCache map[object.Hash]object.ObjectType
	// Cache is a local object cache; nil disables local caching.
	Cache ObjectCache
	// Logger receives integrity warnings; defaults to slog.Default().
	Logger *slog.Logger
	// Resolve maps (root tree, slash path) to the tree hash at that
	// path. Defaults to walking trees through Load.
	Resolve func(ctx context.Context, root object.Hash, path string) (object.Hash, error)
}

// Store presents a remote repository's Git Data API as a local
// content-addressed object store with mutable refs.
type Store struct {
	transport  Transport
	root       string // "owner/repo"
	defaultRef string
	local      ObjectCache
	logger     *slog.Logger
	resolve    func(ctx context.Context, root object.Hash, path string) (object.Hash, error)

	mu    sync.Mutex
	types map[object.Hash]object.ObjectType
}

// NewStore builds a store for the configured repository.
func NewStore(cfg *Config, opts Options) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	transport := opts.Transport
	if transport == nil {
		transport = NewClient(ClientOptions{APIURL: cfg.APIURL, Token: cfg.Token})
	}
	types := opts.TypeCache
	if types == nil {
		types = make(map[object.Hash]object.ObjectType)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		transport:  transport,
		root:       strings.TrimSpace(cfg.Remote),
		defaultRef: "refs/heads/" + cfg.DefaultBranch,
		local:      opts.Cache,
		logger:     logger,
		resolve:    opts.Resolve,
		types:      types,
	}
	if s.resolve == nil {
		s.resolve = s.treeAt
	}
	return s, nil
}

func (s *Store) objectPath(objType object.ObjectType, hash object.Hash) string {
	return fmt.Sprintf("/repos/%s/git/%ss/%s", s.root, objType, hash)
}

func (s *Store) cacheType(hash object.Hash, objType object.ObjectType) {
	s.mu.Lock()
	s.types[hash] = objType
	s.mu.Unlock()
}

func (s *Store) cachedType(hash object.Hash) (object.ObjectType, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.types[hash]
	return t, ok
}

// Load fetches and decodes one object, verifying that it still hashes
// to the key it was fetched by. A mismatch triggers the bounded repair
// search; an unrepaired object is still returned under its fetch hash,
// with a logged warning. Missing objects yield ErrNotFound.
func (s *Store) Load(ctx context.Context, objType object.ObjectType, hash object.Hash) (any, error) {
	if err := object.ValidateHash(hash); err != nil {
		return nil, err
	}
	// The remote service cannot serve the empty tree.
	if objType == object.TypeTree && hash == object.EmptyTree {
		return object.Tree{}, nil
	}
	if obj, ok := s.loadLocal(objType, hash); ok {
		return obj, nil
	}

	status, raw, err := s.transport.Do(ctx, http.MethodGet, s.objectPath(objType, hash), nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status >= 200 && status < 300:
	case status >= 300 && status < 500:
		return nil, fmt.Errorf("load %s %s: %w", objType, hash, ErrNotFound)
	default:
		return nil, statusError(status, raw)
	}

	obj, err := Decode(objType, raw)
	if err != nil {
		return nil, err
	}

	data, err := object.Marshal(objType, obj)
	if err != nil {
		return nil, err
	}
	if computed := object.HashObject(objType, data); computed != hash {
		if object.Repair(objType, obj, hash) {
			s.logger.Warn("repaired object normalized by remote", "type", objType, "hash", hash)
			data, err = object.Marshal(objType, obj)
			if err != nil {
				return nil, err
			}
		} else {
			s.logger.Warn("object hash mismatch, repair failed; keeping fetch hash",
				"type", objType, "hash", hash, "computed", computed)
			data = nil
		}
	}

	s.cacheType(hash, objType)
	// Cache only objects whose bytes reproduce the fetch hash.
	if data != nil && s.local != nil {
		if _, err := s.local.Write(objType, data); err != nil {
			s.logger.Debug("local cache write failed", "hash", hash, "err", err)
		}
	}
	return obj, nil
}

func (s *Store) loadLocal(objType object.ObjectType, hash object.Hash) (any, bool) {
	if s.local == nil || !s.local.Has(hash) {
		return nil, false
	}
	cachedType, data, err := s.local.Read(hash)
	if err != nil || cachedType != objType {
		return nil, false
	}
	obj, err := object.Unmarshal(objType, data)
	if err != nil {
		return nil, false
	}
	s.cacheType(hash, objType)
	return obj, true
}

// Save writes one object and returns its canonical hash. Saving an
// object that already exists remotely is an idempotent no-op; empty
// trees short-circuit to the well-known hash without any remote call.
func (s *Store) Save(ctx context.Context, objType object.ObjectType, obj any) (object.Hash, error) {
	data, err := object.Marshal(objType, obj)
	if err != nil {
		return "", err
	}
	hash := object.HashObject(objType, data)

	// The remote service rejects empty-tree creation.
	if objType == object.TypeTree && hash == object.EmptyTree {
		return hash, nil
	}
	if ok, err := s.HasHash(ctx, hash); err != nil {
		return "", err
	} else if ok {
		return hash, nil
	}

	wire, err := Encode(objType, obj)
	if err != nil {
		return "", err
	}
	path := fmt.Sprintf("/repos/%s/git/%ss", s.root, objType)
	status, raw, err := s.transport.Do(ctx, http.MethodPost, path, wire)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", statusError(status, raw)
	}

	var resp wireWriteResp
	if err := json.Unmarshal(raw, &resp); err == nil && resp.SHA != "" && object.Hash(resp.SHA) != hash {
		s.logger.Warn("remote computed a different hash", "type", objType, "local", hash, "remote", resp.SHA)
	}

	s.cacheType(hash, objType)
	if s.local != nil {
		if _, err := s.local.Write(objType, data); err != nil {
			s.logger.Debug("local cache write failed", "hash", hash, "err", err)
		}
	}
	return hash, nil
}

// HasHash reports whether the remote already stores an object with this
// hash, probing each object type until one answers. Hits populate the
// advisory type cache so later probes are free.
func (s *Store) HasHash(ctx context.Context, hash object.Hash) (bool, error) {
	if _, ok := s.cachedType(hash); ok {
		return true, nil
	}
	if s.local != nil && s.local.Has(hash) {
		if cachedType, _, err := s.local.Read(hash); err == nil {
			s.cacheType(hash, cachedType)
			return true, nil
		}
	}
	for _, objType := range []object.ObjectType{object.TypeTag, object.TypeCommit, object.TypeTree, object.TypeBlob} {
		status, raw, err := s.transport.Do(ctx, http.MethodGet, s.objectPath(objType, hash), nil)
		if err != nil {
			return false, err
		}
		switch {
		case status >= 200 && status < 300:
			s.cacheType(hash, objType)
			return true, nil
		case status >= 300 && status < 500:
			continue
		default:
			return false, statusError(status, raw)
		}
	}
	return false, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// LoadBlob loads and decodes a Blob.
func (s *Store) LoadBlob(ctx context.Context, hash object.Hash) (*object.Blob, error) {
	obj, err := s.Load(ctx, object.TypeBlob, hash)
	if err != nil {
		return nil, err
	}
	return obj.(*object.Blob), nil
}

// LoadTree loads and decodes a Tree.
func (s *Store) LoadTree(ctx context.Context, hash object.Hash) (object.Tree, error) {
	obj, err := s.Load(ctx, object.TypeTree, hash)
	if err != nil {
		return nil, err
	}
	return obj.(object.Tree), nil
}

// LoadCommit loads and decodes a Commit.
func (s *Store) LoadCommit(ctx context.Context, hash object.Hash) (*object.Commit, error) {
	obj, err := s.Load(ctx, object.TypeCommit, hash)
	if err != nil {
		return nil, err
	}
	return obj.(*object.Commit), nil
}

// LoadTag loads and decodes a Tag.
func (s *Store) LoadTag(ctx context.Context, hash object.Hash) (*object.Tag, error) {
	obj, err := s.Load(ctx, object.TypeTag, hash)
	if err != nil {
		return nil, err
	}
	return obj.(*object.Tag), nil
}

// SaveBlob saves a Blob.
func (s *Store) SaveBlob(ctx context.Context, b *object.Blob) (object.Hash, error) {
	return s.Save(ctx, object.TypeBlob, b)
}

// SaveTree saves a Tree.
func (s *Store) SaveTree(ctx context.Context, t object.Tree) (object.Hash, error) {
	return s.Save(ctx, object.TypeTree, t)
}

// SaveCommit saves a Commit.
func (s *Store) SaveCommit(ctx context.Context, c *object.Commit) (object.Hash, error) {
	return s.Save(ctx, object.TypeCommit, c)
}

// SaveTag saves a Tag.
func (s *Store) SaveTag(ctx context.Context, t *object.Tag) (object.Hash, error) {
	return s.Save(ctx, object.TypeTag, t)
}

// ---------------------------------------------------------------------------
// Refs
// ---------------------------------------------------------------------------

// normalizeRef maps the symbolic HEAD to the default branch ref and
// rejects names outside the refs/ namespace.
func (s *Store) normalizeRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "HEAD" {
		return s.defaultRef, nil
	}
	if !strings.HasPrefix(ref, "refs/") {
		return "", fmt.Errorf("ref %q: %w", ref, ErrBadRefName)
	}
	return ref, nil
}

// ReadRef resolves a ref name to a hash. A missing ref is not an
// error; it yields an empty hash.
func (s *Store) ReadRef(ctx context.Context, ref string) (object.Hash, error) {
	ref, err := s.normalizeRef(ref)
	if err != nil {
		return "", err
	}
	status, raw, err := s.transport.Do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/git/%s", s.root, ref), nil)
	if err != nil {
		return "", err
	}
	switch {
	case status >= 200 && status < 300:
	case status >= 300 && status < 500:
		return "", nil
	default:
		return "", statusError(status, raw)
	}
	var resp wireRef
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode ref %s: %w", ref, err)
	}
	return object.Hash(resp.Object.SHA), nil
}

// UpdateRef points a ref at a hash, creating the ref when the remote
// reports it does not exist yet. Force permits non-fast-forward moves.
func (s *Store) UpdateRef(ctx context.Context, ref string, hash object.Hash, force bool) (object.Hash, error) {
	ref, err := s.normalizeRef(ref)
	if err != nil {
		return "", err
	}
	path := fmt.Sprintf("/repos/%s/git/%s", s.root, ref)
	status, raw, err := s.transport.Do(ctx, http.MethodPatch, path, wireRefUpdate{SHA: string(hash), Force: force})
	if err != nil {
		return "", err
	}
	if status == http.StatusUnprocessableEntity && remoteMessage(raw) == "Reference does not exist" {
		status, raw, err = s.transport.Do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/git/refs", s.root),
			wireRefCreate{Ref: ref, SHA: string(hash)})
		if err != nil {
			return "", err
		}
	}
	if status < 200 || status >= 300 {
		return "", statusError(status, raw)
	}
	return hash, nil
}

// DeleteRef removes a ref. Deleting a missing ref is a no-op.
func (s *Store) DeleteRef(ctx context.Context, ref string) error {
	ref, err := s.normalizeRef(ref)
	if err != nil {
		return err
	}
	status, raw, err := s.transport.Do(ctx, http.MethodDelete, fmt.Sprintf("/repos/%s/git/%s", s.root, ref), nil)
	if err != nil {
		return err
	}
	if (status >= 200 && status < 300) || (status >= 300 && status < 500) {
		return nil
	}
	return statusError(status, raw)
}

// ListRefs lists refs, optionally narrowed to a prefix such as "heads"
// or "tags". A missing namespace yields a nil map, not an error.
func (s *Store) ListRefs(ctx context.Context, prefix string) (map[string]object.Hash, error) {
	path := fmt.Sprintf("/repos/%s/git/refs", s.root)
	prefix = strings.TrimPrefix(strings.TrimSpace(prefix), "refs/")
	if prefix != "" {
		path += "/" + strings.Trim(prefix, "/")
	}
	status, raw, err := s.transport.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status >= 200 && status < 300:
	case status >= 300 && status < 500:
		return nil, nil
	default:
		return nil, statusError(status, raw)
	}
	var resp []wireRef
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode refs listing: %w", err)
	}
	refs := make(map[string]object.Hash, len(resp))
	for _, r := range resp {
		if r.Ref == "" {
			continue
		}
		refs[r.Ref] = object.Hash(r.Object.SHA)
	}
	return refs, nil
}
