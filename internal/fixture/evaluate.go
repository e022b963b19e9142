// Package fixture serves a local replica of the bugs registration form,
// including the defects the suite pins, so the page objects can be driven
// without reaching the public site.
package fixture

import (
	"net/mail"
	"unicode"
	"unicode/utf8"
)

// Feedback messages. The first three are the ones the live form renders; the
// rest only appear when the matching quirk is switched off.
const (
	MessageRegistered      = "Successfully registered the following information"
	MessagePhoneTooShort   = "The phone number should contain at least 10 characters!"
	MessagePasswordLength  = "The password should contain between [6,20] characters!"
	MessageLastNameMissing = "The last name is required!"
	MessagePhoneDigits     = "The phone number should contain only digits!"
	MessageEmailMissing    = "The email address is required!"
	MessageEmailInvalid    = "The email address is not valid!"
	MessageTermsMissing    = "The terms and conditions must be accepted!"
)

// CountryPlaceholder is the label of the empty country option.
const CountryPlaceholder = "Select a country..."

// Countries offered by the dropdown.
var Countries = []string{
	"Argentina", "Australia", "Brazil", "Canada", "Equatorial Guinea",
	"France", "Germany", "Guinea", "India", "Ireland", "Japan", "Kenya",
	"Mexico", "Netherlands", "New Zealand", "Niger", "Nigeria", "Norway",
	"South Africa", "Spain", "Sri Lanka", "United Kingdom", "United States",
}

// Quirks switches the replica's known defects on or off.
type Quirks struct {
	LastNameOptional       bool // #1
	TruncateLastName       bool // #2
	IncrementPhoneDigit    bool // #3
	AcceptNonNumericPhone  bool // #4
	EchoCountryPlaceholder bool // #6
	EmailOptional          bool // #7
	SkipEmailFormat        bool // #8
	RejectPasswordOf20     bool // #10
	TermsDisabled          bool // #11
	TermsOptional          bool // #14
}

// LiveQuirks reproduces the public form as it behaves today.
func LiveQuirks() Quirks {
	return Quirks{
		LastNameOptional:       true,
		TruncateLastName:       true,
		IncrementPhoneDigit:    true,
		AcceptNonNumericPhone:  true,
		EchoCountryPlaceholder: true,
		EmailOptional:          true,
		SkipEmailFormat:        true,
		RejectPasswordOf20:     true,
		TermsDisabled:          true,
		TermsOptional:          true,
	}
}

// Submission is what the browser posts.
type Submission struct {
	FirstName string
	LastName  string
	Phone     string
	Country   string
	Email     string
	Password  string
	Terms     bool
}

// Echo holds the values shown after a successful registration, without
// labels.
type Echo struct {
	FirstName string
	LastName  string
	Phone     string
	Country   string
	Email     string
}

// Outcome is the rendered result of a submission.
type Outcome struct {
	Message    string
	Registered bool
	Echo       Echo
}

// Evaluate validates sub the way the form does under q.
func Evaluate(sub Submission, q Quirks) Outcome {
	if msg := validate(sub, q); msg != "" {
		return Outcome{Message: msg}
	}

	echo := Echo{
		FirstName: sub.FirstName,
		LastName:  sub.LastName,
		Phone:     sub.Phone,
		Country:   sub.Country,
		Email:     sub.Email,
	}
	if q.TruncateLastName && echo.LastName != "" {
		_, size := utf8.DecodeLastRuneInString(echo.LastName)
		echo.LastName = echo.LastName[:len(echo.LastName)-size]
	}
	if q.IncrementPhoneDigit {
		echo.Phone = incrementLastDigit(echo.Phone)
	}
	if echo.Country == "" && q.EchoCountryPlaceholder {
		echo.Country = CountryPlaceholder
	}
	return Outcome{Message: MessageRegistered, Registered: true, Echo: echo}
}

func validate(sub Submission, q Quirks) string {
	if sub.LastName == "" && !q.LastNameOptional {
		return MessageLastNameMissing
	}
	if utf8.RuneCountInString(sub.Phone) < 10 {
		return MessagePhoneTooShort
	}
	if !q.AcceptNonNumericPhone && !allDigits(sub.Phone) {
		return MessagePhoneDigits
	}
	if sub.Email == "" && !q.EmailOptional {
		return MessageEmailMissing
	}
	if sub.Email != "" && !q.SkipEmailFormat && !plausibleEmail(sub.Email) {
		return MessageEmailInvalid
	}
	n := utf8.RuneCountInString(sub.Password)
	maxLen := 20
	if q.RejectPasswordOf20 {
		maxLen = 19
	}
	if n < 6 || n > maxLen {
		return MessagePasswordLength
	}
	if !sub.Terms && !q.TermsOptional {
		return MessageTermsMissing
	}
	return ""
}

func incrementLastDigit(s string) string {
	if s == "" {
		return s
	}
	last := s[len(s)-1]
	if last < '0' || last > '9' {
		return s
	}
	return s[:len(s)-1] + string(rune('0'+(last-'0'+1)%10))
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// plausibleEmail accepts a bare RFC 5322 address.
func plausibleEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
