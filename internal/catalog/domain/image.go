package domain

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ImageRef is the normalized form of the three image schemas that coexist in
// the products collection:
//
//   - a bare URL string (oldest records),
//   - {url: "..."} (first structured schema, no deletion tracking),
//   - {url: "...", path: "..."} (current schema; path is the object-store key).
//
// UnmarshalBSONValue is the only place in the codebase allowed to branch on
// which schema a stored value uses. A malformed value (wrong BSON type, or a
// document without a usable url) decodes to a zero ImageRef instead of
// failing the whole record, since historical records predate the schema
// changes.
type ImageRef struct {
	URL  string `bson:"url" json:"url"`
	Path string `bson:"path,omitempty" json:"path,omitempty"`
}

// imageRefDoc mirrors the structured schemas. Some embedded-asset records
// stored the URL under "src" instead of "url".
type imageRefDoc struct {
	URL  string `bson:"url"`
	Src  string `bson:"src"`
	Path string `bson:"path"`
}

func (r *ImageRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*r = ImageRef{}

	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeString:
		if s, ok := raw.StringValueOK(); ok {
			r.URL = s
		}
	case bson.TypeEmbeddedDocument:
		var doc imageRefDoc
		if err := raw.Unmarshal(&doc); err != nil {
			return nil
		}
		if doc.URL != "" {
			r.URL = doc.URL
		} else {
			r.URL = doc.Src
		}
		r.Path = doc.Path
	}
	return nil
}

// DisplayURL returns the resolvable URL for the reference, or "" when the
// reference holds no usable URL. Callers must treat "" as "no image" and
// render a placeholder rather than requesting it.
func (r ImageRef) DisplayURL() string {
	return strings.TrimSpace(r.URL)
}

// DeletionPath returns the object-store key owned by this reference. Legacy
// references report false: their URL is not independently owned by the
// record, so there is nothing safe to delete.
func (r ImageRef) DeletionPath() (string, bool) {
	if r.Path == "" {
		return "", false
	}
	return r.Path, true
}

// Valid reports whether the reference resolves to a displayable URL.
func (r ImageRef) Valid() bool {
	return r.DisplayURL() != ""
}

// DisplayURLs filters refs down to the resolvable ones, preserving order.
func DisplayURLs(refs []ImageRef) []string {
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		if u := ref.DisplayURL(); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
