// Package navigation provides the menu and breadcrumbs of the admin pages.
package navigation

// Sections of the admin pages.
const (
	SectionDashboard     = "dashboard"
	SectionNotifications = "notifications"
)

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// MenuItem is one entry of the side menu.
type MenuItem struct {
	Title   string
	URL     string
	Section string
}

// Menu lists the admin pages in display order.
var Menu = []MenuItem{ //nolint:gochecknoglobals
	{Title: "Dashboard", URL: "/dashboard", Section: SectionDashboard},
	{Title: "Notifications", URL: "/notifications", Section: SectionNotifications},
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
	Menu          []MenuItem
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
		Menu:          Menu,
	}
}

// ForSection creates the context of a top level page with its breadcrumb
// trail starting at the dashboard.
func ForSection(section string) *Context {
	for _, m := range Menu {
		if m.Section != section {
			continue
		}

		ctx := NewContext(m.Title, section, section)
		if section != SectionDashboard {
			ctx.AddBreadcrumb("Home", Menu[0].URL, false)
		}

		return ctx.AddBreadcrumb(m.Title, m.URL, true)
	}

	return NewContext("", section, section)
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}
