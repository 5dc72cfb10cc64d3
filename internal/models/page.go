package models

// Page is the per-partition page row, written once when the first comment
// lands on a page.
type Page struct {
	URL       string
	CreatedAt string
}
