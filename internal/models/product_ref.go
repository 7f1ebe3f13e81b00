package models

// ProductKind names the catalog table a reference points into.
type ProductKind string

const (
	KindWatch       ProductKind = "watch"
	KindComponent   ProductKind = "component"
	KindCustomWatch ProductKind = "custom_watch"
)

// ProductRef points at a single catalog entry.
type ProductRef struct {
	Kind ProductKind `json:"kind"`
	ID   string      `json:"id"`
}

// Stocked reports whether the referenced entry carries its own stock counter.
func (r ProductRef) Stocked() bool {
	return r.Kind == KindWatch || r.Kind == KindComponent
}

func WatchRef(id string) ProductRef     { return ProductRef{Kind: KindWatch, ID: id} }
func ComponentRef(id string) ProductRef { return ProductRef{Kind: KindComponent, ID: id} }
