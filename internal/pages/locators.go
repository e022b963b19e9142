package pages

import "fmt"

// FormURL is the canonical address of the registration form.
const FormURL = "https://qa-practice.netlify.app/bugs-form"

// Feedback messages rendered in the message element.
const (
	MessageRegistered     = "Successfully registered the following information"
	MessagePhoneTooShort  = "The phone number should contain at least 10 characters!"
	MessagePasswordLength = "The password should contain between [6,20] characters!"
)

// Echo labels, including the separator the form renders after each label.
const (
	LabelFirstName   = "First Name: "
	LabelLastName    = "Last Name: "
	LabelPhoneNumber = "Phone Number: "
	LabelCountry     = "Country: "
	LabelEmail       = "Email: "
)

// Locators maps every logical field of the form to its selector.
type Locators struct {
	FirstName       string
	LastName        string
	Phone           string
	Country         string
	Email           string
	Password        string
	Terms           string
	Register        string
	Message         string
	ResultFirstName string
	ResultLastName  string
	ResultPhone     string
	ResultCountry   string
	ResultEmail     string
}

// DefaultLocators returns the selectors of the live form.
func DefaultLocators() Locators {
	return Locators{
		FirstName:       `input[id="firstName"]`,
		LastName:        `input[id="lastName"]`,
		Phone:           `input[id="phone"]`,
		Country:         "select#countries_dropdown_menu",
		Email:           `input[id="emailAddress"]`,
		Password:        `input[id="password"]`,
		Terms:           `input[id="exampleCheck1"]`,
		Register:        `button[id="registerBtn"]`,
		Message:         "div.alert-danger#message",
		ResultFirstName: "#resultFn",
		ResultLastName:  "#resultLn",
		ResultPhone:     "#resultPhone",
		ResultCountry:   "#country",
		ResultEmail:     "#resultEmail",
	}
}

// FormConfig is the fixed configuration of a RegistrationFormPage.
type FormConfig struct {
	URL      string
	Locators Locators
}

// DefaultFormConfig targets the live form.
func DefaultFormConfig() FormConfig {
	return FormConfig{URL: FormURL, Locators: DefaultLocators()}
}

// WithURL returns a copy of c pointed at url, e.g. a local replica.
func (c FormConfig) WithURL(url string) FormConfig {
	c.URL = url
	return c
}

// Validate rejects an empty URL or locator.
func (c FormConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("form config: url is required")
	}
	l := c.Locators
	for name, sel := range map[string]string{
		"first name": l.FirstName, "last name": l.LastName, "phone": l.Phone,
		"country": l.Country, "email": l.Email, "password": l.Password,
		"terms": l.Terms, "register": l.Register, "message": l.Message,
		"result first name": l.ResultFirstName, "result last name": l.ResultLastName,
		"result phone": l.ResultPhone, "result country": l.ResultCountry,
		"result email": l.ResultEmail,
	} {
		if sel == "" {
			return fmt.Errorf("form config: %s locator is empty", name)
		}
	}
	return nil
}

// EchoFirstName is the line the form shows for a submitted first name.
func EchoFirstName(v string) string { return LabelFirstName + v }

// EchoLastName is the line the form shows for a submitted last name.
func EchoLastName(v string) string { return LabelLastName + v }

// EchoPhoneNumber is the line the form shows for a submitted phone number.
func EchoPhoneNumber(v string) string { return LabelPhoneNumber + v }

// EchoCountry is the line the form shows for a selected country.
func EchoCountry(v string) string { return LabelCountry + v }

// EchoEmail is the line the form shows for a submitted email.
func EchoEmail(v string) string { return LabelEmail + v }
