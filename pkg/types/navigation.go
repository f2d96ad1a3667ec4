package types

// RootEntry is one allowlisted navigation root with a freshly minted token.
type RootEntry struct {
	Path  string `json:"path"`
	Token string `json:"token"`
}

// RootsResponse lists the navigation roots a client may start from. The
// client never submits a path of its own; navigation begins from one of
// these tokens.
type RootsResponse struct {
	Roots []RootEntry `json:"roots"`
}

// RootCapability reports whether browsing the system root "/" is currently
// permitted, for UI or agent decision-making.
type RootCapability struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// ListRequest asks for one level of directory listing. The token is the
// only addressing mechanism; there is no path field by design.
type ListRequest struct {
	Token string `json:"token"`
}

// DirEntry is one child of a listed directory, carrying the capability
// token for descending into it.
type DirEntry struct {
	Name  string `json:"name"`
	Type  string `json:"type"` // "file" or "dir"
	Token string `json:"token"`
}

// ListResponse is one level of directory listing. SelfToken is a fresh
// token for the listed directory itself, so the client can keep navigating
// after the original token expires.
type ListResponse struct {
	Path      string     `json:"path"`
	SelfToken string     `json:"selfToken"`
	Entries   []DirEntry `json:"entries"`
}

// MaterializeRequest expands a compressed selection under a verified base
// token. Selection entries are canonical paths accumulated from issued
// tokens; directory membership implies all descendants.
type MaterializeRequest struct {
	Token     string   `json:"token"`
	Selection []string `json:"selection"`
}

// MaterializeResponse is the expanded file list.
type MaterializeResponse struct {
	Files []string `json:"files"`
}
