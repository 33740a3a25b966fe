package core

import "encoding/json"

// ArtistCreditKind tells which form an ArtistCredit holds.
type ArtistCreditKind int

const (
	// CreditNone means the provider named no artist.
	CreditNone ArtistCreditKind = iota
	// CreditName is a plain display name without an id.
	CreditName
	// CreditRef is an artist the provider identifies by id.
	CreditRef
)

// ArtistCredit is the artist of a video or album entry. Providers return either nothing,
// a bare name or an artist object; the variant is fixed when the entity is normalized.
type ArtistCredit struct {
	kind ArtistCreditKind
	id   string
	name string
}

// NoArtist returns the empty credit.
func NoArtist() ArtistCredit {
	return ArtistCredit{kind: CreditNone}
}

// ArtistName returns a name-only credit, or NoArtist for an empty name.
func ArtistName(name string) ArtistCredit {
	if name == "" {
		return NoArtist()
	}
	return ArtistCredit{kind: CreditName, name: name}
}

// ArtistRef returns a credit for an identified artist. Without an id it degrades to ArtistName.
func ArtistRef(id, name string) ArtistCredit {
	if id == "" {
		return ArtistName(name)
	}
	return ArtistCredit{kind: CreditRef, id: id, name: name}
}

func (c ArtistCredit) Kind() ArtistCreditKind { return c.kind }

// Name is the display name, empty for CreditNone.
func (c ArtistCredit) Name() string { return c.name }

// ID is only set for CreditRef.
func (c ArtistCredit) ID() string { return c.id }

// MarshalJSON encodes CreditNone as null, CreditName as a string and CreditRef as an object.
func (c ArtistCredit) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case CreditName:
		return json.Marshal(c.name)
	case CreditRef:
		return json.Marshal(struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}{c.id, c.name})
	default:
		return []byte("null"), nil
	}
}

// CreditNames flattens credits to their display names, skipping empty ones.
func CreditNames(credits []ArtistCredit) []string {
	names := make([]string, 0, len(credits))
	for _, c := range credits {
		if c.name != "" {
			names = append(names, c.name)
		}
	}
	return names
}
