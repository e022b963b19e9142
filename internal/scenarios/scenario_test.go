package scenarios

import (
	"errors"
	"testing"

	"github.com/regform/regform/internal/browser"
	"github.com/regform/regform/internal/browser/browsertest"
	"github.com/regform/regform/internal/fixture"
	"github.com/regform/regform/internal/pages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openForm(t *testing.T, q fixture.Quirks) (*pages.RegistrationFormPage, *browsertest.Session) {
	t.Helper()
	session := fixture.NewFakeSession(pages.FormURL, q)
	form := pages.NewRegistrationFormPage(session, pages.DefaultFormConfig())
	require.NoError(t, form.NavigateToForm())
	return form, session
}

func TestSubmitOrder(t *testing.T) {
	form, session := openForm(t, fixture.Quirks{})
	reg := Valid()
	reg.AcceptTerms = true
	require.NoError(t, Submit(form, reg))

	l := pages.DefaultLocators()
	assert.Equal(t, []browsertest.Call{
		{Op: "navigate", Value: pages.FormURL},
		{Op: "fill", Selector: l.FirstName, Value: "Virat"},
		{Op: "fill", Selector: l.LastName, Value: "Kohli"},
		{Op: "fill", Selector: l.Phone, Value: "0275645622"},
		{Op: "fill", Selector: l.Email, Value: "virat@bcci.com"},
		{Op: "fill", Selector: l.Password, Value: "%3.e&N)Bs69"},
		{Op: "select", Selector: l.Country, Value: "New Zealand"},
		{Op: "check", Selector: l.Terms},
		{Op: "click", Selector: l.Register},
	}, session.Calls())
}

func TestSubmitSkipsEmptyFields(t *testing.T) {
	form, session := openForm(t, fixture.LiveQuirks())
	require.NoError(t, Submit(form, Registration{Phone: "0275645622"}))

	calls := session.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "fill", calls[1].Op)
	assert.Equal(t, "click", calls[2].Op)
}

func TestSubmitWrapsStepErrors(t *testing.T) {
	form, _ := openForm(t, fixture.LiveQuirks())
	reg := Valid()
	reg.AcceptTerms = true

	err := Submit(form, reg)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepTerms, stepErr.Step)
	assert.Contains(t, err.Error(), "terms:")

	reg = Valid()
	reg.Country = "Atlantis"
	err = Submit(form, reg)
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepCountry, stepErr.Step)

	cfg := pages.DefaultFormConfig()
	cfg.Locators.FirstName = "#nope"
	broken := pages.NewRegistrationFormPage(fixture.NewFakeSession(pages.FormURL, fixture.LiveQuirks()), cfg)
	require.NoError(t, broken.NavigateToForm())
	err = Submit(broken, Valid())
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepFirstName, stepErr.Step)
	assert.ErrorIs(t, err, browser.ErrElementNotFound)
}

func TestExpectationVerify(t *testing.T) {
	registered := pages.MessageRegistered
	echo := &pages.FormResult{FirstName: "First Name: Virat", Country: "Country: New Zealand"}

	tests := []struct {
		name    string
		expect  Expectation
		outcome Outcome
		field   string
		negated bool
	}{
		{
			name:    "message matches",
			expect:  Expectation{Message: registered},
			outcome: Outcome{Message: registered, HasMessage: true},
		},
		{
			name:    "message differs",
			expect:  Expectation{Message: registered},
			outcome: Outcome{Message: pages.MessagePasswordLength, HasMessage: true},
			field:   "message",
		},
		{
			name:    "message absent",
			expect:  Expectation{Message: registered},
			outcome: Outcome{},
			field:   "message",
		},
		{
			name:    "negated message absent passes",
			expect:  Expectation{NotMessage: registered},
			outcome: Outcome{},
		},
		{
			name:    "negated message shown",
			expect:  Expectation{NotMessage: registered},
			outcome: Outcome{Message: registered, HasMessage: true},
			field:   "message",
			negated: true,
		},
		{
			name:    "echo matches on the fields asked for",
			expect:  Expectation{Echo: pages.FormResult{Country: "Country: New Zealand"}},
			outcome: Outcome{Result: echo},
		},
		{
			name:    "echo differs",
			expect:  Expectation{Echo: pages.FormResult{FirstName: "First Name: Rohit"}},
			outcome: Outcome{Result: echo},
			field:   "first name",
		},
		{
			name:    "echo missing",
			expect:  Expectation{Echo: pages.FormResult{FirstName: "First Name: "}},
			outcome: Outcome{},
			field:   "displayed data",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.expect.Verify(tt.outcome)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ae *AssertionError
			require.True(t, errors.As(err, &ae), "want *AssertionError, got %v", err)
			assert.Equal(t, tt.field, ae.Field)
			assert.Equal(t, tt.negated, ae.Negated)
		})
	}
}

func TestAssertionErrorMessage(t *testing.T) {
	err := &AssertionError{Field: "message", Expected: "a", Actual: "b"}
	assert.Equal(t, `message: expected "a", got "b"`, err.Error())
	err.Negated = true
	assert.Equal(t, `message: expected anything but "a", got "b"`, err.Error())
}

func TestScenarioExecute(t *testing.T) {
	sc := Scenario{
		Name:   "phone too short",
		Input:  Registration{Phone: "123"},
		Expect: Expectation{Message: pages.MessagePhoneTooShort},
	}
	form, _ := openForm(t, fixture.LiveQuirks())
	o, err := sc.Execute(form)
	require.NoError(t, err)
	assert.True(t, o.HasMessage)
	assert.Nil(t, o.Result, "No echo read when none is expected")

	sc.Expect = Expectation{Message: pages.MessageRegistered, Echo: pages.FormResult{FirstName: "First Name: "}}
	form, _ = openForm(t, fixture.LiveQuirks())
	_, err = sc.Execute(form)
	assert.ErrorIs(t, err, browser.ErrElementNotFound, "Echo of a rejected submission is missing")
}

func TestCatalog(t *testing.T) {
	all := Catalog()
	require.Len(t, all, 20)

	names := make(map[string]bool)
	for _, sc := range all {
		assert.False(t, names[sc.Name], "duplicate scenario %q", sc.Name)
		names[sc.Name] = true
		assert.NotEmpty(t, sc.Group)
		assert.True(t, sc.Expect.Message != "" || sc.Expect.NotMessage != "", "%s checks no message", sc.Name)
	}

	assert.Equal(t, []string{
		GroupFirstName, GroupLastName, GroupPhone, GroupCountry, GroupEmail, GroupPassword, GroupTerms,
	}, Groups(all))
}

func TestDefects(t *testing.T) {
	defects := Defects()
	require.Len(t, defects, 16)
	for i, d := range defects {
		assert.Equal(t, i+1, d.Number)
	}
	for _, n := range []int{2, 3, 6, 8} {
		assert.False(t, defects[n-1].Open, "bug #%d is pinned", n)
	}
	assert.Nil(t, defect(99))
}

func TestFilter(t *testing.T) {
	all := Catalog()
	assert.Equal(t, all, Filter(all))

	pw := Filter(all, "password")
	require.Len(t, pw, 5)
	for _, sc := range pw {
		assert.Equal(t, GroupPassword, sc.Group)
	}

	assert.Len(t, Filter(all, " Email ", "Terms and Conditions"), 4)
	assert.Empty(t, Filter(all, "nope"))
}
