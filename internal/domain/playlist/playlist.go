// Package playlist provides the saved Playlist domain entity.
package playlist

// Playlist is a durable, named reference to a catalog playlist that a user
// can recall later by speaking its name. Stored inside the per-user session
// record, keyed by display name.
type Playlist struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
