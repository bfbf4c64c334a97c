package links

import (
	"sync"

	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// HomePage is the space-relative path of the document published as the space
// home page.
const HomePage = "index.md"

type attachmentKey struct {
	page string
	url  string
}

// Registry resolves document paths to titles and remote identifiers for one
// synchronisation run. Every document is registered before any is rendered so
// forward references resolve.
type Registry struct {
	mu sync.RWMutex

	homepageID string

	fileToTitle map[string]string
	titleToFile map[string]string
	titles      []string
	folders     map[string]struct{}

	fileToID  map[string]string
	titleToID map[string]string

	attachments map[attachmentKey]string
}

// NewRegistry returns an empty registry. homepageID, when known, is the
// remote id of the space home page.
func NewRegistry(homepageID string) *Registry {
	return &Registry{
		homepageID:  homepageID,
		fileToTitle: map[string]string{},
		titleToFile: map[string]string{},
		folders:     map[string]struct{}{},
		fileToID:    map[string]string{},
		titleToID:   map[string]string{},
		attachments: map[attachmentKey]string{},
	}
}

// Register records that the document at path is published under title.
func (r *Registry) Register(path, title string) error {
	return r.register(path, title, false)
}

// RegisterFolder is Register for documents published as folders.
func (r *Registry) RegisterFolder(path, title string) error {
	return r.register(path, title, true)
}

func (r *Registry) register(path, title string, folder bool) error {
	file := NormalizePath(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.titleToFile[title]; exists {
		return DuplicateTitleError(file, title)
	}
	r.titleToFile[title] = file
	r.fileToTitle[file] = title
	r.titles = append(r.titles, title)
	if folder {
		r.folders[title] = struct{}{}
	}
	return nil
}

// TitleFor returns the title registered for path.
func (r *Registry) TitleFor(path string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	title, ok := r.fileToTitle[NormalizePath(path)]
	return title, ok
}

// FileFor returns the path registered for title.
func (r *Registry) FileFor(title string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.titleToFile[title]
	return file, ok
}

// HasTitle reports whether any local document claims title.
func (r *Registry) HasTitle(title string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.titleToFile[title]
	return ok
}

// IsFolder reports whether title was registered as a folder.
func (r *Registry) IsFolder(title string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.folders[title]
	return ok
}

// Len returns the number of registered documents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.titles)
}

// RegisterRemote records the id of a node that already exists remotely. A
// node whose title matches a local document binds to that document; otherwise
// the source path recorded in its version message is used, which keeps moved
// files attached to their remote page.
func (r *Registry) RegisterRemote(doc interfaces.RemoteDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.titleToID[doc.Title] = doc.ID
	if file, ok := r.titleToFile[doc.Title]; ok {
		r.fileToID[file] = doc.ID
	}
	if doc.ID != "" && doc.ID == r.homepageID {
		r.fileToID[HomePage] = doc.ID
		return
	}
	if doc.Path != "" {
		file := NormalizePath(doc.Path)
		if _, taken := r.fileToID[file]; !taken {
			r.fileToID[file] = doc.ID
		}
	}
}

// FileID returns the remote id bound to the document at path.
func (r *Registry) FileID(path string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.fileToID[NormalizePath(path)]
	return id, ok
}

// TitleID returns the remote id bound to title.
func (r *Registry) TitleID(title string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.titleToID[title]
	return id, ok
}

// NodesToCreate lists, in registration order, the titles of local documents
// that have no remote counterpart yet.
func (r *Registry) NodesToCreate() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, title := range r.titles {
		if _, ok := r.fileToID[r.titleToFile[title]]; !ok {
			out = append(out, title)
		}
	}
	return out
}

// RegisterAttachmentID records the remote id issued for an asset. The key is
// the referring document plus the link text as written, since the same file
// can be spelled differently from different documents.
func (r *Registry) RegisterAttachmentID(docPath, rawURL, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attachments[attachmentKey{page: NormalizePath(docPath), url: rawURL}] = id
}

// AttachmentID returns the id recorded by RegisterAttachmentID.
func (r *Registry) AttachmentID(docPath, rawURL string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.attachments[attachmentKey{page: NormalizePath(docPath), url: rawURL}]
	return id, ok
}

// IsBound reports whether id is bound to a document that exists locally.
func (r *Registry) IsBound(id string) bool {
	if id == "" {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for file, bound := range r.fileToID {
		if bound != id {
			continue
		}
		if _, local := r.fileToTitle[file]; local {
			return true
		}
	}
	return false
}

// IsOrphaned reports whether a managed remote document is claimed by no local
// document, neither by title nor through the source path it is bound to. A
// file may be moved, renamed or retitled without orphaning its page.
func (r *Registry) IsOrphaned(doc interfaces.RemoteDocument) bool {
	return doc.Managed() && !r.HasTitle(doc.Title) && !r.IsBound(doc.ID)
}
