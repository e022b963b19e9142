// Package browsertest provides an in-memory browser.Session for tests that
// exercise page objects without launching a browser.
package browsertest

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"sync"

	"github.com/regform/regform/internal/browser"
)

// Element is one node of the fake document, addressed by id.
type Element struct {
	ID       string
	Text     string
	Value    string
	Options  []string // select only
	Checked  bool
	Disabled bool
	OnClick  func(s *Session) // runs with the session lock released
}

// Page is a document the fake can navigate to.
type Page struct {
	Title    string
	Elements []*Element
}

// Call records one capability call in order.
type Call struct {
	Op       string
	Selector string
	Value    string
}

// Session implements browser.Session over a map of pages keyed by URL.
type Session struct {
	mu       sync.Mutex
	pages    map[string]func() Page
	url      string
	title    string
	elements map[string]*Element
	calls    []Call
	closed   bool
}

var _ browser.Session = (*Session)(nil)

// New returns an empty session on about:blank.
func New() *Session {
	return &Session{
		pages:    make(map[string]func() Page),
		url:      "about:blank",
		elements: make(map[string]*Element),
	}
}

// Route registers a page builder; Navigate to url renders a fresh document.
func (s *Session) Route(url string, build func() Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = build
}

// Put adds or replaces an element in the current document.
func (s *Session) Put(el *Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[el.ID] = el
}

// Remove deletes an element from the current document.
func (s *Session) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.elements, id)
}

// Element returns a copy of the element with the given id.
func (s *Session) Element(id string) (Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.elements[id]
	if !ok {
		return Element{}, false
	}
	return *el, true
}

// URL is the address of the current document.
func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Calls returns the capability calls made so far.
func (s *Session) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) record(op, selector, value string) {
	s.calls = append(s.calls, Call{Op: op, Selector: selector, Value: value})
}

func (s *Session) Navigate(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("navigate", "", url)
	build, ok := s.pages[url]
	if !ok {
		return fmt.Errorf("%w: %s: no route", browser.ErrNavigation, url)
	}
	page := build()
	s.url = url
	s.title = page.Title
	s.elements = make(map[string]*Element, len(page.Elements))
	for _, el := range page.Elements {
		s.elements[el.ID] = el
	}
	return nil
}

func (s *Session) Title() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("title", "", "")
	return s.title, nil
}

func (s *Session) TextContent(selector string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("text", selector, "")
	id, err := ResolveID(selector)
	if err != nil {
		return "", false, err
	}
	el, ok := s.elements[id]
	if !ok {
		return "", false, nil
	}
	return el.Text, true, nil
}

func (s *Session) Fill(selector, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("fill", selector, value)
	el, err := s.lookup(selector)
	if err != nil {
		return err
	}
	if el.Disabled {
		return fmt.Errorf("%s: element is disabled", selector)
	}
	el.Value = value
	return nil
}

func (s *Session) SelectOption(selector, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("select", selector, value)
	el, err := s.lookup(selector)
	if err != nil {
		return err
	}
	if !slices.Contains(el.Options, value) {
		return fmt.Errorf("%s: no option %q", selector, value)
	}
	el.Value = value
	return nil
}

func (s *Session) Check(selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("check", selector, "")
	el, err := s.lookup(selector)
	if err != nil {
		return err
	}
	if el.Checked {
		return nil
	}
	if el.Disabled {
		return fmt.Errorf("%s: element is disabled", selector)
	}
	el.Checked = true
	return nil
}

func (s *Session) Click(selector string) error {
	s.mu.Lock()
	s.record("click", selector, "")
	el, err := s.lookup(selector)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	onClick := el.OnClick
	s.mu.Unlock()
	if onClick != nil {
		onClick(s)
	}
	return nil
}

func (s *Session) Screenshot(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("screenshot", "", path)
	return os.WriteFile(path, []byte(s.url), 0o644)
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Session) lookup(selector string) (*Element, error) {
	id, err := ResolveID(selector)
	if err != nil {
		return nil, err
	}
	el, ok := s.elements[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	return el, nil
}

var (
	attrIDPattern = regexp.MustCompile(`\[id=["']?([\w-]+)["']?\]`)
	hashIDPattern = regexp.MustCompile(`#([\w-]+)`)
)

// ResolveID extracts the element id from selectors such as "#x", "div#x",
// "div.cls#x" and `input[id="x"]`.
func ResolveID(selector string) (string, error) {
	if m := attrIDPattern.FindStringSubmatch(selector); m != nil {
		return m[1], nil
	}
	if m := hashIDPattern.FindStringSubmatch(selector); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("browsertest: selector %q has no id", selector)
}
