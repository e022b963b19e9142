// Package pages holds the page objects for the registration form suite.
package pages

import (
	"github.com/regform/regform/internal/browser"
)

// BasePage binds page-level operations to a session. It does not own the
// session: the caller creates and closes it.
type BasePage struct {
	session browser.Session
}

// NewBasePage wraps session.
func NewBasePage(session browser.Session) *BasePage {
	return &BasePage{session: session}
}

// Navigate loads url in the bound session.
func (p *BasePage) Navigate(url string) error {
	return p.session.Navigate(url)
}

// Title returns the current document title.
func (p *BasePage) Title() (string, error) {
	return p.session.Title()
}

// ElementText returns the text of the first element matching selector;
// ok is false when nothing matches.
func (p *BasePage) ElementText(selector string) (text string, ok bool, err error) {
	return p.session.TextContent(selector)
}
