package pages

import (
	"fmt"

	"github.com/regform/regform/internal/browser"
)

// FormResult is the echo block rendered after a successful submission.
// Each field carries its label, e.g. "First Name: Virat".
type FormResult struct {
	FirstName   string `json:"first_name" yaml:"first_name"`
	LastName    string `json:"last_name" yaml:"last_name"`
	PhoneNumber string `json:"phone_number" yaml:"phone_number"`
	Country     string `json:"country" yaml:"country"`
	Email       string `json:"email" yaml:"email"`
}

// RegistrationFormPage drives the bugs registration form. Values are written
// verbatim; validation belongs to the application under test.
type RegistrationFormPage struct {
	*BasePage
	cfg FormConfig
}

// NewRegistrationFormPage binds the form to session using cfg.
func NewRegistrationFormPage(session browser.Session, cfg FormConfig) *RegistrationFormPage {
	return &RegistrationFormPage{
		BasePage: NewBasePage(session),
		cfg:      cfg,
	}
}

// Config returns a copy of the page configuration.
func (p *RegistrationFormPage) Config() FormConfig {
	return p.cfg
}

// NavigateToForm loads the form URL.
func (p *RegistrationFormPage) NavigateToForm() error {
	return p.Navigate(p.cfg.URL)
}

// FillFirstName types value into the first name field, replacing its content.
func (p *RegistrationFormPage) FillFirstName(value string) error {
	return p.session.Fill(p.cfg.Locators.FirstName, value)
}

// FillLastName types value into the last name field, replacing its content.
func (p *RegistrationFormPage) FillLastName(value string) error {
	return p.session.Fill(p.cfg.Locators.LastName, value)
}

// FillPhoneNumber types value verbatim into the phone field; nothing is normalized.
func (p *RegistrationFormPage) FillPhoneNumber(value string) error {
	return p.session.Fill(p.cfg.Locators.Phone, value)
}

// FillEmail types value into the email field, replacing its content.
func (p *RegistrationFormPage) FillEmail(value string) error {
	return p.session.Fill(p.cfg.Locators.Email, value)
}

// FillPassword types value into the password field, replacing its content.
func (p *RegistrationFormPage) FillPassword(value string) error {
	return p.session.Fill(p.cfg.Locators.Password, value)
}

// SelectCountry picks the option whose value or label equals country.
func (p *RegistrationFormPage) SelectCountry(country string) error {
	return p.session.SelectOption(p.cfg.Locators.Country, country)
}

// CheckTerms ticks the terms checkbox; a checked box stays checked.
func (p *RegistrationFormPage) CheckTerms() error {
	return p.session.Check(p.cfg.Locators.Terms)
}

// ClickRegister submits the form without waiting for the outcome.
func (p *RegistrationFormPage) ClickRegister() error {
	return p.session.Click(p.cfg.Locators.Register)
}

// SuccessMessageText reads the feedback element. The form uses the same
// element for the success notice and for validation errors.
func (p *RegistrationFormPage) SuccessMessageText() (text string, ok bool, err error) {
	return p.ElementText(p.cfg.Locators.Message)
}

// DisplayedFormData reads the five echoed fields. A missing echo element is
// reported as browser.ErrElementNotFound.
func (p *RegistrationFormPage) DisplayedFormData() (FormResult, error) {
	var res FormResult
	l := p.cfg.Locators
	for _, f := range []struct {
		selector string
		dst      *string
	}{
		{l.ResultFirstName, &res.FirstName},
		{l.ResultLastName, &res.LastName},
		{l.ResultPhone, &res.PhoneNumber},
		{l.ResultCountry, &res.Country},
		{l.ResultEmail, &res.Email},
	} {
		text, ok, err := p.ElementText(f.selector)
		if err != nil {
			return FormResult{}, err
		}
		if !ok {
			return FormResult{}, fmt.Errorf("%w: %s", browser.ErrElementNotFound, f.selector)
		}
		*f.dst = text
	}
	return res, nil
}
