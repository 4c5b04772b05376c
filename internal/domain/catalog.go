package domain

// DefaultSummaries is the fixed summary list served by the forecast endpoint.
var DefaultSummaries = NewCatalog("Sunny", "Cloudy", "Rainy", "Windy", "Stormy", "Snowy")

// Catalog is an immutable ordered sequence of candidate summaries.
type Catalog struct {
	items []string
}

// NewCatalog copies items into a new Catalog.
func NewCatalog(items ...string) Catalog {
	c := Catalog{items: make([]string, len(items))}
	copy(c.items, items)
	return c
}

// Items returns a copy of the catalog entries in catalog order.
func (c Catalog) Items() []string {
	out := make([]string, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of entries.
func (c Catalog) Len() int { return len(c.items) }

// Index returns the catalog position of s, or false if s is not an entry.
func (c Catalog) Index(s string) (int, bool) {
	for i, item := range c.items {
		if item == s {
			return i, true
		}
	}
	return -1, false
}
