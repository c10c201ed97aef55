// Package library defines the composer/work/recording entity hierarchy
// shared by the local and remote stores.
package library

// AssetKind says which store an asset reference is valid in. A reference is
// never carried across stores; the sync layer always regenerates it.
type AssetKind int

const (
	// AssetNone means the entity has no asset.
	AssetNone AssetKind = iota
	// AssetLocal means the value is a path inside the local asset root.
	AssetLocal
	// AssetRemote means the value is a durable object-storage URL.
	AssetRemote
)

// AssetRef is a tagged asset reference. The kind is tracked explicitly
// rather than inferred from the shape of the string.
type AssetRef struct {
	Kind  AssetKind
	Value string
}

// LocalRef returns a local-store reference, or an empty ref for an empty path.
func LocalRef(path string) AssetRef {
	if path == "" {
		return AssetRef{}
	}
	return AssetRef{Kind: AssetLocal, Value: path}
}

// RemoteRef returns a remote-store reference, or an empty ref for an empty URL.
func RemoteRef(url string) AssetRef {
	if url == "" {
		return AssetRef{}
	}
	return AssetRef{Kind: AssetRemote, Value: url}
}

// IsEmpty reports whether the reference points at nothing.
func (r AssetRef) IsEmpty() bool {
	return r.Kind == AssetNone || r.Value == ""
}

// Composer is the root of the entity hierarchy. Works and Recordings are
// populated only by the GetWithChildren store accessors.
type Composer struct {
	ID     string
	Name   string
	Period string
	Image  AssetRef

	// Denormalized child counts, maintained by the remote store only.
	SheetMusicCount int
	RecordingCount  int

	Works      []Work
	Recordings []Recording
}

// Work is a piece of sheet music owned by one composer.
type Work struct {
	ID         string
	ComposerID string
	Title      string
	Edition    string
	Year       int
	File       AssetRef
}

// Recording is a recorded performance owned by one composer.
type Recording struct {
	ID         string
	ComposerID string
	Title      string
	Performer  string
	Duration   string
	Year       int
	File       AssetRef
}

// ComposerFields holds the caller-supplied fields for creating a composer.
// The store mints the id.
type ComposerFields struct {
	Name            string
	Period          string
	Image           AssetRef
	SheetMusicCount int
	RecordingCount  int
}

// WorkFields holds the caller-supplied fields for creating a work.
type WorkFields struct {
	ComposerID string
	Title      string
	Edition    string
	Year       int
	File       AssetRef
}

// RecordingFields holds the caller-supplied fields for creating a recording.
type RecordingFields struct {
	ComposerID string
	Title      string
	Performer  string
	Duration   string
	Year       int
	File       AssetRef
}

// ComposerUpdate is a partial update: nil fields are left untouched.
type ComposerUpdate struct {
	Name   *string
	Period *string
	Image  *AssetRef
}

// WorkUpdate is a partial update: nil fields are left untouched.
type WorkUpdate struct {
	Title   *string
	Edition *string
	Year    *int
	File    *AssetRef
}

// RecordingUpdate is a partial update: nil fields are left untouched.
type RecordingUpdate struct {
	Title     *string
	Performer *string
	Duration  *string
	Year      *int
	File      *AssetRef
}
