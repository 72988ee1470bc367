package domain

// Route identifies a top-level view
type Route int

const (
	RouteHome Route = iota
	RouteSearchResults
	RouteLibrary
	RouteAlbumDetail
	RouteArtistDetail
	RoutePlaylistDetail
)

// String returns a human-readable representation of the route
func (r Route) String() string {
	switch r {
	case RouteHome:
		return "Home"
	case RouteSearchResults:
		return "Search"
	case RouteLibrary:
		return "Library"
	case RouteAlbumDetail:
		return "Album"
	case RouteArtistDetail:
		return "Artist"
	case RoutePlaylistDetail:
		return "Playlist"
	default:
		return "Unknown"
	}
}

// Navigation is one entry in the navigation history.
// Target holds the album/artist/playlist ID or the search query.
type Navigation struct {
	Route  Route
	Target string
	Title  string
}

// NavigateHome is the history root
var NavigateHome = Navigation{Route: RouteHome, Title: "Home"}
