package scenarios

import (
	"strings"

	"github.com/regform/regform/internal/pages"
)

// Scenario groups, one per form field.
const (
	GroupFirstName = "First Name"
	GroupLastName  = "Last Name"
	GroupPhone     = "Phone Number"
	GroupCountry   = "Country"
	GroupEmail     = "Email"
	GroupPassword  = "Password"
	GroupTerms     = "Terms and Conditions"
)

// Defects lists every known defect of the form, including the ones no
// scenario can observe through the page object.
func Defects() []Defect {
	return []Defect{
		{Number: 1, Summary: "Last name is not required", Open: true},
		{Number: 2, Summary: "Last character of the last name is dropped after submission"},
		{Number: 3, Summary: "Last digit of the phone number is incremented after submission"},
		{Number: 4, Summary: "Phone number accepts letters and special characters", Open: true},
		{Number: 5, Summary: "Phone number label is misspelled as \"Phone nunber*\"", Open: true},
		{Number: 6, Summary: "Unselected country is submitted as \"Select a country...\""},
		{Number: 7, Summary: "Email is not required", Open: true},
		{Number: 8, Summary: "Email format is not checked"},
		{Number: 9, Summary: "Password input is of type text, so the password is visible", Open: true},
		{Number: 10, Summary: "A password of exactly 20 characters is rejected", Open: true},
		{Number: 11, Summary: "Terms and conditions checkbox is disabled", Open: true},
		{Number: 12, Summary: "No link to view the terms and conditions", Open: true},
		{Number: 13, Summary: "Mandatory fields note is not at the bottom of the form", Open: true},
		{Number: 14, Summary: "Form can be submitted without accepting the terms", Open: true},
		{Number: 15, Summary: "Form is not cleared after a successful submission", Open: true},
		{Number: 16, Summary: "Password complexity is not validated", Open: true},
	}
}

func defect(n int) *Defect {
	for _, d := range Defects() {
		if d.Number == n {
			return &d
		}
	}
	return nil
}

func with(edit func(*Registration)) Registration {
	r := Valid()
	edit(&r)
	return r
}

// Catalog returns every scenario in the order the suite runs them.
func Catalog() []Scenario {
	registered := pages.MessageRegistered
	return []Scenario{
		{
			Name:   "first name is not required",
			Group:  GroupFirstName,
			Input:  with(func(r *Registration) { r.FirstName = "" }),
			Expect: Expectation{Message: registered, Echo: pages.FormResult{FirstName: pages.EchoFirstName("")}},
		},
		{
			Name:   "entered first name is submitted correctly",
			Group:  GroupFirstName,
			Input:  Valid(),
			Expect: Expectation{Message: registered, Echo: pages.FormResult{FirstName: pages.EchoFirstName("Virat")}},
		},
		{
			Name:   "last name is required",
			Group:  GroupLastName,
			Input:  with(func(r *Registration) { r.LastName = "" }),
			Expect: Expectation{NotMessage: registered},
			Defect: defect(1),
		},
		{
			Name:   "entered last name is echoed without its last character",
			Group:  GroupLastName,
			Input:  Valid(),
			Expect: Expectation{Message: registered, Echo: pages.FormResult{LastName: pages.EchoLastName("Kohl")}},
			Defect: defect(2),
		},
		{
			Name:   "phone number is required",
			Group:  GroupPhone,
			Input:  with(func(r *Registration) { r.Phone = "" }),
			Expect: Expectation{Message: pages.MessagePhoneTooShort},
		},
		{
			Name:   "entered phone number is echoed with its last digit incremented",
			Group:  GroupPhone,
			Input:  Valid(),
			Expect: Expectation{Message: registered, Echo: pages.FormResult{PhoneNumber: pages.EchoPhoneNumber("0275645623")}},
			Defect: defect(3),
		},
		{
			Name:   "only numbers are allowed as phone number",
			Group:  GroupPhone,
			Input:  with(func(r *Registration) { r.Phone = "0275645dsf622@" }),
			Expect: Expectation{NotMessage: registered},
			Defect: defect(4),
		},
		{
			Name:   "phone number should contain at least 10 characters",
			Group:  GroupPhone,
			Input:  with(func(r *Registration) { r.Phone = "02756456" }),
			Expect: Expectation{Message: pages.MessagePhoneTooShort},
		},
		{
			Name:   "country is not required",
			Group:  GroupCountry,
			Input:  with(func(r *Registration) { r.Country = "" }),
			Expect: Expectation{Message: registered},
		},
		{
			Name:   "entered country is submitted correctly",
			Group:  GroupCountry,
			Input:  Valid(),
			Expect: Expectation{Message: registered, Echo: pages.FormResult{Country: pages.EchoCountry("New Zealand")}},
		},
		{
			Name:   "unselected country is echoed as the placeholder",
			Group:  GroupCountry,
			Input:  with(func(r *Registration) { r.Country = "" }),
			Expect: Expectation{Message: registered, Echo: pages.FormResult{Country: pages.EchoCountry("Select a country...")}},
			Defect: defect(6),
		},
		{
			Name:   "email is required",
			Group:  GroupEmail,
			Input:  with(func(r *Registration) { r.Email = "" }),
			Expect: Expectation{NotMessage: registered},
			Defect: defect(7),
		},
		{
			Name:   "entered email is submitted correctly",
			Group:  GroupEmail,
			Input:  Valid(),
			Expect: Expectation{Message: registered, Echo: pages.FormResult{Email: pages.EchoEmail("virat@bcci.com")}},
		},
		{
			Name:   "invalid email format is accepted",
			Group:  GroupEmail,
			Input:  with(func(r *Registration) { r.Email = "invalid$email" }),
			Expect: Expectation{Message: registered},
			Defect: defect(8),
		},
		{
			Name:   "password is required",
			Group:  GroupPassword,
			Input:  with(func(r *Registration) { r.Password = "" }),
			Expect: Expectation{Message: pages.MessagePasswordLength},
		},
		{
			Name:   "password of 5 characters is rejected",
			Group:  GroupPassword,
			Input:  with(func(r *Registration) { r.Password = "12345" }),
			Expect: Expectation{Message: pages.MessagePasswordLength},
		},
		{
			Name:   "password of 21 characters is rejected",
			Group:  GroupPassword,
			Input:  with(func(r *Registration) { r.Password = "123456789012345678901" }),
			Expect: Expectation{Message: pages.MessagePasswordLength},
		},
		{
			Name:   "password of exactly 6 characters is accepted",
			Group:  GroupPassword,
			Input:  with(func(r *Registration) { r.Password = "123456" }),
			Expect: Expectation{Message: registered},
		},
		{
			Name:   "password of exactly 20 characters is accepted",
			Group:  GroupPassword,
			Input:  with(func(r *Registration) { r.Password = "12345678901234567890" }),
			Expect: Expectation{Message: registered},
			Defect: defect(10),
		},
		{
			Name:  "terms and conditions checkbox is clickable",
			Group: GroupTerms,
			Input: with(func(r *Registration) {
				r.Email = ""
				r.Country = "Niger"
				r.AcceptTerms = true
			}),
			Expect:  Expectation{NotMessage: registered},
			Defect:  defect(11),
			Symptom: StepTerms,
		},
	}
}

// Filter keeps the scenarios whose group matches one of groups
// (case-insensitive). No groups keeps everything.
func Filter(all []Scenario, groups ...string) []Scenario {
	if len(groups) == 0 {
		return all
	}
	var out []Scenario
	for _, s := range all {
		for _, g := range groups {
			if strings.EqualFold(strings.TrimSpace(g), s.Group) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// Groups returns the distinct groups of all in first-seen order.
func Groups(all []Scenario) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range all {
		if !seen[s.Group] {
			seen[s.Group] = true
			out = append(out, s.Group)
		}
	}
	return out
}
