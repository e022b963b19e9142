// Package scenarios describes the registration form test cases as data and
// runs them against fresh browser sessions.
package scenarios

import (
	"errors"
	"fmt"

	"github.com/regform/regform/internal/browser"
	"github.com/regform/regform/internal/pages"
)

// Registration is the data a user types into the form. Empty strings leave
// the field untouched, the same as a user skipping it.
type Registration struct {
	FirstName   string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	Phone       string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Password    string `json:"password,omitempty" yaml:"password,omitempty"`
	Country     string `json:"country,omitempty" yaml:"country,omitempty"`
	AcceptTerms bool   `json:"accept_terms,omitempty" yaml:"accept_terms,omitempty"`
}

// Valid is the baseline registration every field test starts from.
func Valid() Registration {
	return Registration{
		FirstName: "Virat",
		LastName:  "Kohli",
		Phone:     "0275645622",
		Email:     "virat@bcci.com",
		Password:  "%3.e&N)Bs69",
		Country:   "New Zealand",
	}
}

// Submit steps, in the order Submit performs them.
const (
	StepFirstName = "first name"
	StepLastName  = "last name"
	StepPhone     = "phone number"
	StepEmail     = "email"
	StepPassword  = "password"
	StepCountry   = "country"
	StepTerms     = "terms"
	StepRegister  = "register"
)

// StepError is a form action that failed during Submit.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Submit fills reg into page and clicks Register. The page must already be
// on the form. A failed action is returned as *StepError.
func Submit(page *pages.RegistrationFormPage, reg Registration) error {
	steps := []struct {
		name  string
		value string
		fn    func(string) error
	}{
		{StepFirstName, reg.FirstName, page.FillFirstName},
		{StepLastName, reg.LastName, page.FillLastName},
		{StepPhone, reg.Phone, page.FillPhoneNumber},
		{StepEmail, reg.Email, page.FillEmail},
		{StepPassword, reg.Password, page.FillPassword},
		{StepCountry, reg.Country, page.SelectCountry},
	}
	for _, st := range steps {
		if st.value == "" {
			continue
		}
		if err := st.fn(st.value); err != nil {
			return &StepError{Step: st.name, Err: err}
		}
	}
	if reg.AcceptTerms {
		if err := page.CheckTerms(); err != nil {
			return &StepError{Step: StepTerms, Err: err}
		}
	}
	if err := page.ClickRegister(); err != nil {
		return &StepError{Step: StepRegister, Err: err}
	}
	return nil
}

// Outcome is what the page shows after a submission.
type Outcome struct {
	Message    string            `json:"message"`
	HasMessage bool              `json:"has_message"`
	Result     *pages.FormResult `json:"result,omitempty"`
}

// Observe reads the feedback message and, when withEcho is set, the echoed
// fields.
func Observe(page *pages.RegistrationFormPage, withEcho bool) (Outcome, error) {
	var o Outcome
	msg, ok, err := page.SuccessMessageText()
	if err != nil {
		return o, fmt.Errorf("message: %w", err)
	}
	o.Message, o.HasMessage = msg, ok
	if withEcho {
		res, err := page.DisplayedFormData()
		if err != nil {
			return o, fmt.Errorf("displayed data: %w", err)
		}
		o.Result = &res
	}
	return o, nil
}

// Expectation is checked against an Outcome. Zero fields are not checked.
type Expectation struct {
	Message    string           `json:"message,omitempty" yaml:"message,omitempty"`
	NotMessage string           `json:"not_message,omitempty" yaml:"not_message,omitempty"`
	Echo       pages.FormResult `json:"echo,omitempty" yaml:"echo,omitempty"`
}

// WantsEcho reports whether any echoed field is expected.
func (e Expectation) WantsEcho() bool {
	return e.Echo != (pages.FormResult{})
}

// AssertionError is an expectation the page did not meet.
type AssertionError struct {
	Field    string
	Expected string
	Actual   string
	Negated  bool
}

func (e *AssertionError) Error() string {
	if e.Negated {
		return fmt.Sprintf("%s: expected anything but %q, got %q", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: expected %q, got %q", e.Field, e.Expected, e.Actual)
}

// Verify returns the first unmet expectation as an *AssertionError.
func (e Expectation) Verify(o Outcome) error {
	if e.Message != "" && (!o.HasMessage || o.Message != e.Message) {
		return &AssertionError{Field: "message", Expected: e.Message, Actual: o.Message}
	}
	if e.NotMessage != "" && o.HasMessage && o.Message == e.NotMessage {
		return &AssertionError{Field: "message", Expected: e.NotMessage, Actual: o.Message, Negated: true}
	}
	if !e.WantsEcho() {
		return nil
	}
	if o.Result == nil {
		return &AssertionError{Field: "displayed data", Expected: "echoed fields", Actual: "nothing"}
	}
	got := *o.Result
	for _, f := range []struct {
		name      string
		want, got string
	}{
		{"first name", e.Echo.FirstName, got.FirstName},
		{"last name", e.Echo.LastName, got.LastName},
		{"phone number", e.Echo.PhoneNumber, got.PhoneNumber},
		{"country", e.Echo.Country, got.Country},
		{"email", e.Echo.Email, got.Email},
	} {
		if f.want != "" && f.want != f.got {
			return &AssertionError{Field: f.name, Expected: f.want, Actual: f.got}
		}
	}
	return nil
}

// Defect is a known misbehaviour of the form.
type Defect struct {
	Number  int    `json:"number" yaml:"number"`
	Summary string `json:"summary" yaml:"summary"`
	// Open means the expectation describes the correct behaviour and the
	// form does not meet it yet. Closed defects are pinned: the expectation
	// describes what the form currently shows.
	Open bool `json:"open" yaml:"open"`
}

// Scenario is one test case.
type Scenario struct {
	Name   string       `json:"name" yaml:"name"`
	Group  string       `json:"group" yaml:"group"`
	Input  Registration `json:"input" yaml:"input"`
	Expect Expectation  `json:"expect" yaml:"expect"`
	Defect *Defect      `json:"defect,omitempty" yaml:"defect,omitempty"`
	// Symptom names the Submit step whose failure is how an open defect
	// shows itself, e.g. StepTerms for a checkbox that cannot be checked.
	Symptom string `json:"symptom,omitempty" yaml:"symptom,omitempty"`
}

// OpenDefect reports whether the scenario is expected to fail today.
func (s Scenario) OpenDefect() bool {
	return s.Defect != nil && s.Defect.Open
}

// ShowsOpenDefect reports whether err is how the scenario's open defect
// manifests: an unmet expectation, or a failed Symptom step on an element
// that exists. Any other failure is not explained by the defect.
func (s Scenario) ShowsOpenDefect(err error) bool {
	if err == nil || !s.OpenDefect() {
		return false
	}
	var assertErr *AssertionError
	if errors.As(err, &assertErr) {
		return true
	}
	var stepErr *StepError
	return s.Symptom != "" &&
		errors.As(err, &stepErr) &&
		stepErr.Step == s.Symptom &&
		!errors.Is(err, browser.ErrElementNotFound)
}

// Execute submits the scenario input and checks the result. A capability
// failure is returned as-is; an unmet expectation as *AssertionError.
func (s Scenario) Execute(page *pages.RegistrationFormPage) (Outcome, error) {
	if err := Submit(page, s.Input); err != nil {
		return Outcome{}, err
	}
	o, err := Observe(page, s.Expect.WantsEcho())
	if err != nil {
		return o, err
	}
	return o, s.Expect.Verify(o)
}
