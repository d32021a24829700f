package domain

// ResourceTypeItem is the metadata resource type of archived items
const ResourceTypeItem = 2

// Item is a repository item whose metadata may reference an authority person
type Item struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Handle       string          `json:"handle" db:"handle"`
	InArchive    bool            `json:"archived" db:"in_archive"`
	Withdrawn    bool            `json:"withdrawn" db:"withdrawn"`
	Discoverable bool            `json:"-" db:"discoverable"`
	Metadata     []MetadataValue `json:"metadata,omitempty" db:"-"`
}

// MetadataValue is one metadata field of an item
type MetadataValue struct {
	Element   string  `json:"element" db:"element"`
	Qualifier *string `json:"qualifier,omitempty" db:"qualifier"`
	Value     string  `json:"value" db:"text_value"`
	Authority *string `json:"authority,omitempty" db:"authority"`
}

// ListedFor reports whether the item may be listed to a caller.
// Admins see everything, others only archived, discoverable, non-withdrawn items.
func (i *Item) ListedFor(admin bool) bool {
	if admin {
		return true
	}
	return i.InArchive && !i.Withdrawn && i.Discoverable
}
