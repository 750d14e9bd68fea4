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

// TreeItem is one requested change in a tree build: an addition or
// replacement when Mode is set, a deletion of Path when it is zero.
// Content, when present, is saved as a blob first and replaced by its
// hash.
type TreeItem struct {
	Path    string
	Mode    object.Mode
	Hash    object.Hash
	Content []byte
}

// BuildTree builds or updates a tree from a flat list of path changes,
// rooted at base when given. Pure additions go straight to the remote
// tree-creation call, which merges against base itself. Deletions take
// the slow path: the remote API cannot express a delete, so each
// affected parent tree is fetched, edited locally and resaved.
//
// The returned tree is the decoded result of the final remote call; it
// is nil on the short-circuit paths that never talk to the remote.
func (s *Store) BuildTree(ctx context.Context, items []TreeItem, base object.Hash) (object.Hash, object.Tree, error) {
	entries := append([]TreeItem(nil), items...)

	if err := s.saveItemBlobs(ctx, entries); err != nil {
		return "", nil, err
	}

	var toDelete []string
	for _, e := range entries {
		if e.Mode == 0 {
			toDelete = append(toDelete, e.Path)
		}
	}
	if len(toDelete) == 0 {
		return s.createTree(ctx, entries, base)
	}
	return s.slowUpdateTree(ctx, entries, toDelete, base)
}

// saveItemBlobs replaces raw content with blob hashes, saving all blobs
// concurrently and joining before the dependent tree step.
func (s *Store) saveItemBlobs(ctx context.Context, entries []TreeItem) error {
	var pending []*TreeItem
	for i := range entries {
		if entries[i].Mode != 0 && entries[i].Hash == "" && entries[i].Content != nil {
			pending = append(pending, &entries[i])
		}
	}
	if len(pending) == 0 {
		return nil
	}

	first := &firstErr{logger: s.logger}
	var wg sync.WaitGroup
	for _, item := range pending {
		wg.Add(1)
		go func(item *TreeItem) {
			defer wg.Done()
			hash, err := s.SaveBlob(ctx, &object.Blob{Data: item.Content})
			if err != nil {
				first.set(fmt.Errorf("save blob for %q: %w", item.Path, err))
				return
			}
			item.Hash = hash
			item.Content = nil
		}(item)
	}
	wg.Wait()
	return first.err()
}

// createTree is the fast path: submit entries plus base directly and
// let the remote compute the merged tree. An empty submission returns
// the well-known empty-tree hash, which the remote refuses to create.
func (s *Store) createTree(ctx context.Context, entries []TreeItem, base object.Hash) (object.Hash, object.Tree, error) {
	if len(entries) == 0 {
		return object.EmptyTree, object.Tree{}, nil
	}

	req := wireTree{BaseTree: string(base), Tree: make([]wireTreeEntry, 0, len(entries))}
	for _, e := range entries {
		sha := string(e.Hash)
		req.Tree = append(req.Tree, wireTreeEntry{
			Path: e.Path,
			Mode: formatMode(e.Mode),
			Type: string(e.Mode.Kind()),
			SHA:  &sha,
		})
	}

	status, raw, err := s.transport.Do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/git/trees", s.root), req)
	if err != nil {
		return "", nil, err
	}
	if status < 200 || status >= 300 {
		return "", nil, statusError(status, raw)
	}
	var resp wireTreeResp
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", nil, fmt.Errorf("decode tree response: %w", err)
	}
	tree, err := decodeTreeEntries(resp.Tree)
	if err != nil {
		return "", nil, err
	}
	hash := object.Hash(resp.SHA)
	s.cacheType(hash, object.TypeTree)
	return hash, tree, nil
}

type pendingEdit struct {
	add []TreeItem
	del []string
}

// slowUpdateTree handles deletions. Deleted names are grouped by parent
// directory; each affected parent is resolved from base, edited locally
// and resaved, then the rebuilt parents join the unaffected entries in
// one final fast-path submission.
func (s *Store) slowUpdateTree(ctx context.Context, entries []TreeItem, toDelete []string, base object.Hash) (object.Hash, object.Tree, error) {
	parents := make(map[string]*pendingEdit)
	for _, p := range toDelete {
		dir, name := splitTreePath(p)
		edit := parents[dir]
		if edit == nil {
			edit = &pendingEdit{}
			parents[dir] = edit
		}
		edit.del = append(edit.del, name)
	}

	// Additions inside an affected parent become part of that parent's
	// rebuild instead of going to the remote tree call directly.
	var top []TreeItem
	for _, e := range entries {
		if e.Mode == 0 {
			continue
		}
		dir, _ := splitTreePath(e.Path)
		if edit, ok := parents[dir]; ok {
			edit.add = append(edit.add, e)
		} else {
			top = append(top, e)
		}
	}

	first := &firstErr{logger: s.logger}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for dir, edit := range parents {
		wg.Add(1)
		go func(dir string, edit *pendingEdit) {
			defer wg.Done()
			hash, err := s.rebuildSubtree(ctx, base, dir, edit)
			if err != nil {
				first.set(err)
				return
			}
			mu.Lock()
			top = append(top, TreeItem{Path: dir, Mode: object.ModeTree, Hash: hash})
			mu.Unlock()
		}(dir, edit)
	}
	wg.Wait()
	if err := first.err(); err != nil {
		return "", nil, err
	}

	// A lone rebuilt root needs no further remote call.
	if len(top) == 1 && top[0].Path == "" {
		return top[0].Hash, nil, nil
	}
	return s.createTree(ctx, top, base)
}

// rebuildSubtree fetches the tree at dir below base, applies the edit
// set, and saves the result through the regular save path.
func (s *Store) rebuildSubtree(ctx context.Context, base object.Hash, dir string, edit *pendingEdit) (object.Hash, error) {
	treeHash, err := s.resolve(ctx, base, dir)
	if err != nil {
		return "", fmt.Errorf("resolve tree at %q: %w", dir, err)
	}
	tree, err := s.LoadTree(ctx, treeHash)
	if err != nil {
		return "", err
	}

	updated := make(object.Tree, len(tree))
	for name, entry := range tree {
		updated[name] = entry
	}
	for _, name := range edit.del {
		delete(updated, name)
	}
	for _, item := range edit.add {
		_, name := splitTreePath(item.Path)
		updated[name] = object.TreeEntry{Mode: item.Mode, Hash: item.Hash}
	}
	return s.SaveTree(ctx, updated)
}

// treeAt is the default path resolver: walk tree objects from root one
// segment at a time.
func (s *Store) treeAt(ctx context.Context, root object.Hash, path string) (object.Hash, error) {
	current := root
	if path == "" {
		return current, nil
	}
	for _, segment := range strings.Split(path, "/") {
		tree, err := s.LoadTree(ctx, current)
		if err != nil {
			return "", err
		}
		entry, ok := tree[segment]
		if !ok || entry.Mode != object.ModeTree {
			return "", fmt.Errorf("no tree at %q: %w", path, ErrNotFound)
		}
		current = entry.Hash
	}
	return current, nil
}

func splitTreePath(p string) (dir, name string) {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i], p[i+1:]
	}
	return "", p
}

// firstErr delivers the first error from a batch of concurrent steps.
// Later errors cannot win; they are logged rather than dropped
// silently.
type firstErr struct {
	logger *slog.Logger
	once   sync.Once
	first  error
}

func (f *firstErr) set(err error) {
	won := false
	f.once.Do(func() {
		f.first = err
		won = true
	})
	if !won && f.logger != nil {
		f.logger.Debug("suppressed concurrent error", "err", err)
	}
}

func (f *firstErr) err() error {
	return f.first
}
