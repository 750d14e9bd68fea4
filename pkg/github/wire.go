package github

// Wire shapes for the Git Data API. Request and response shapes differ
// where the API nests object references on reads (tree/parents on
// commits, object on tags) but accepts bare hashes on writes.

type wirePerson struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
}

type wireObjectRef struct {
	SHA  string `json:"sha"`
	Type string `json:"type,omitempty"`
}

type wireCommit struct {
	Message   string      `json:"message"`
	Tree      string      `json:"tree"`
	Parents   []string    `json:"parents"`
	Author    *wirePerson `json:"author,omitempty"`
	Committer *wirePerson `json:"committer,omitempty"`
}

type wireCommitResp struct {
	SHA       string          `json:"sha"`
	Message   string          `json:"message"`
	Tree      wireObjectRef   `json:"tree"`
	Parents   []wireObjectRef `json:"parents"`
	Author    *wirePerson     `json:"author"`
	Committer *wirePerson     `json:"committer"`
}

type wireTag struct {
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
	Object  string      `json:"object"`
	Type    string      `json:"type"`
	Tagger  *wirePerson `json:"tagger"`
}

type wireTagResp struct {
	SHA     string        `json:"sha"`
	Tag     string        `json:"tag"`
	Message string        `json:"message"`
	Object  wireObjectRef `json:"object"`
	Tagger  *wirePerson   `json:"tagger"`
}

type wireTreeEntry struct {
	Path    string  `json:"path"`
	Mode    string  `json:"mode"` // 6-char zero-padded octal
	Type    string  `json:"type"`
	SHA     *string `json:"sha,omitempty"`
	Content *string `json:"content,omitempty"`
}

type wireTree struct {
	BaseTree string          `json:"base_tree,omitempty"`
	Tree     []wireTreeEntry `json:"tree"`
}

type wireTreeResp struct {
	SHA  string          `json:"sha"`
	Tree []wireTreeEntry `json:"tree"`
}

type wireBlob struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"` // "utf-8" or "base64"
}

type wireBlobResp struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type wireRef struct {
	Ref    string        `json:"ref"`
	Object wireObjectRef `json:"object"`
}

type wireRefUpdate struct {
	SHA   string `json:"sha"`
	Force bool   `json:"force,omitempty"`
}

type wireRefCreate struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

type wireWriteResp struct {
	SHA string `json:"sha"`
}
