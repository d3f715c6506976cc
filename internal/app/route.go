package app

import "strings"

// Page identifies one of the three views.
type Page int

const (
	PageList Page = iota // "/", the initial and default page.
	PageAdd              // "/add"
	PageEdit             // "/edit/:id"
)

// Route is a parsed client path. ID is set only for PageEdit.
type Route struct {
	Page Page
	ID   string
}

// ListRoute returns the route of the contact list.
func ListRoute() Route { return Route{Page: PageList} }

// AddRoute returns the route of the create form.
func AddRoute() Route { return Route{Page: PageAdd} }

// EditRoute returns the route of the edit form for id.
func EditRoute(id string) Route { return Route{Page: PageEdit, ID: id} }

// ParseRoute maps a client path to a Route. The id after "/edit/" is kept
// verbatim. Unknown paths and an empty edit id fall back to the list.
func ParseRoute(path string) Route {
	path = strings.TrimSpace(path)
	switch {
	case path == "" || path == "/":
		return ListRoute()
	case path == "/add" || path == "/add/":
		return AddRoute()
	}
	if id, ok := strings.CutPrefix(path, "/edit/"); ok && id != "" {
		return EditRoute(id)
	}
	return ListRoute()
}

// Path renders the route back to its client path.
func (r Route) Path() string {
	switch r.Page {
	case PageAdd:
		return "/add"
	case PageEdit:
		return "/edit/" + r.ID
	default:
		return "/"
	}
}

// String implements fmt.Stringer.
func (r Route) String() string {
	return r.Path()
}
