package todo

// Entry is an item in display position, carrying its stored index.
type Entry struct {
	Index int
	Item  Item
}

// DisplayOrder lists not-done items before done items, keeping the stored
// relative order inside each group. items is not modified.
func DisplayOrder(items []Item) []Entry {
	out := make([]Entry, 0, len(items))
	for i, it := range items {
		if !it.Done {
			out = append(out, Entry{Index: i, Item: it})
		}
	}
	for i, it := range items {
		if it.Done {
			out = append(out, Entry{Index: i, Item: it})
		}
	}
	return out
}
