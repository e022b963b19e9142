package fixture

import (
	"github.com/regform/regform/internal/browser/browsertest"
)

// Element ids of the bugs form.
const (
	IDFirstName     = "firstName"
	IDLastName      = "lastName"
	IDPhone         = "phone"
	IDCountry       = "countries_dropdown_menu"
	IDEmail         = "emailAddress"
	IDPassword      = "password"
	IDTerms         = "exampleCheck1"
	IDRegister      = "registerBtn"
	IDMessage       = "message"
	IDResultFirst   = "resultFn"
	IDResultLast    = "resultLn"
	IDResultPhone   = "resultPhone"
	IDResultCountry = "country"
	IDResultEmail   = "resultEmail"
)

// NewFakeSession returns an in-memory session that serves the replica at url
// and evaluates submissions with q, without a browser.
func NewFakeSession(url string, q Quirks) *browsertest.Session {
	s := browsertest.New()
	s.Route(url, func() browsertest.Page {
		return browsertest.Page{
			Title: PageTitle,
			Elements: []*browsertest.Element{
				{ID: IDFirstName},
				{ID: IDLastName},
				{ID: IDPhone},
				{ID: IDCountry, Options: append([]string{""}, Countries...)},
				{ID: IDEmail},
				{ID: IDPassword},
				{ID: IDTerms, Disabled: q.TermsDisabled},
				{ID: IDRegister, OnClick: func(s *browsertest.Session) { submitFake(s, q) }},
			},
		}
	})
	return s
}

func submitFake(s *browsertest.Session, q Quirks) {
	value := func(id string) string {
		el, _ := s.Element(id)
		return el.Value
	}
	terms, _ := s.Element(IDTerms)
	outcome := Evaluate(Submission{
		FirstName: value(IDFirstName),
		LastName:  value(IDLastName),
		Phone:     value(IDPhone),
		Country:   value(IDCountry),
		Email:     value(IDEmail),
		Password:  value(IDPassword),
		Terms:     terms.Checked,
	}, q)

	s.Put(&browsertest.Element{ID: IDMessage, Text: outcome.Message})
	results := []struct {
		id, text string
	}{
		{IDResultFirst, "First Name: " + outcome.Echo.FirstName},
		{IDResultLast, "Last Name: " + outcome.Echo.LastName},
		{IDResultPhone, "Phone Number: " + outcome.Echo.Phone},
		{IDResultCountry, "Country: " + outcome.Echo.Country},
		{IDResultEmail, "Email: " + outcome.Echo.Email},
	}
	for _, r := range results {
		if outcome.Registered {
			s.Put(&browsertest.Element{ID: r.id, Text: r.text})
		} else {
			s.Remove(r.id)
		}
	}
}
