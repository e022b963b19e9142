package pages_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
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

func TestDefaultFormConfig(t *testing.T) {
	cfg := pages.DefaultFormConfig()
	assert.Equal(t, "https://qa-practice.netlify.app/bugs-form", cfg.URL)
	assert.NoError(t, cfg.Validate())

	l := cfg.Locators
	assert.Equal(t, `input[id="firstName"]`, l.FirstName)
	assert.Equal(t, "select#countries_dropdown_menu", l.Country)
	assert.Equal(t, `button[id="registerBtn"]`, l.Register)
	assert.Equal(t, "div.alert-danger#message", l.Message)
	assert.Equal(t, "#country", l.ResultCountry)
}

func TestFormConfigWithURL(t *testing.T) {
	base := pages.DefaultFormConfig()
	local := base.WithURL("http://127.0.0.1:8090/bugs-form")

	assert.Equal(t, "http://127.0.0.1:8090/bugs-form", local.URL)
	assert.Equal(t, pages.FormURL, base.URL, "WithURL must not modify the receiver")
	assert.Equal(t, base.Locators, local.Locators)
}

func TestFormConfigValidate(t *testing.T) {
	cfg := pages.DefaultFormConfig().WithURL("")
	assert.ErrorContains(t, cfg.Validate(), "url is required")

	cfg = pages.DefaultFormConfig()
	cfg.Locators.ResultEmail = ""
	assert.ErrorContains(t, cfg.Validate(), "result email locator is empty")
}

func TestEchoHelpers(t *testing.T) {
	assert.Equal(t, "First Name: Virat", pages.EchoFirstName("Virat"))
	assert.Equal(t, "First Name: ", pages.EchoFirstName(""))
	assert.Equal(t, "Last Name: Kohl", pages.EchoLastName("Kohl"))
	assert.Equal(t, "Phone Number: 0275645623", pages.EchoPhoneNumber("0275645623"))
	assert.Equal(t, "Country: New Zealand", pages.EchoCountry("New Zealand"))
	assert.Equal(t, "Email: virat@bcci.com", pages.EchoEmail("virat@bcci.com"))
}

func TestNavigateToForm(t *testing.T) {
	form, _ := openForm(t, fixture.LiveQuirks())
	title, err := form.Title()
	require.NoError(t, err)
	assert.Equal(t, fixture.PageTitle, title)

	other := pages.NewRegistrationFormPage(fixture.NewFakeSession(pages.FormURL, fixture.LiveQuirks()),
		pages.DefaultFormConfig().WithURL("http://unrouted.test/"))
	assert.ErrorIs(t, other.NavigateToForm(), browser.ErrNavigation)
}

func TestRegistrationFormSubmit(t *testing.T) {
	form, _ := openForm(t, fixture.LiveQuirks())

	_, ok, err := form.SuccessMessageText()
	require.NoError(t, err)
	assert.False(t, ok, "No message before submission")

	require.NoError(t, form.FillFirstName("Virat"))
	require.NoError(t, form.FillLastName("Kohli"))
	require.NoError(t, form.FillPhoneNumber("0275645622"))
	require.NoError(t, form.FillEmail("virat@bcci.com"))
	require.NoError(t, form.FillPassword("%3.e&N)Bs69"))
	require.NoError(t, form.SelectCountry("New Zealand"))
	require.NoError(t, form.ClickRegister())

	msg, ok, err := form.SuccessMessageText()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pages.MessageRegistered, msg)

	got, err := form.DisplayedFormData()
	require.NoError(t, err)
	want := pages.FormResult{
		FirstName:   "First Name: Virat",
		LastName:    "Last Name: Kohl",
		PhoneNumber: "Phone Number: 0275645623",
		Country:     "Country: New Zealand",
		Email:       "Email: virat@bcci.com",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DisplayedFormData() mismatch (-want +got):\n%s", diff)
	}
}

func TestDisplayedFormDataMissing(t *testing.T) {
	form, _ := openForm(t, fixture.LiveQuirks())

	require.NoError(t, form.FillPassword("12345"))
	require.NoError(t, form.FillPhoneNumber("0275645622"))
	require.NoError(t, form.ClickRegister())

	msg, ok, err := form.SuccessMessageText()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pages.MessagePasswordLength, msg)

	_, err = form.DisplayedFormData()
	assert.ErrorIs(t, err, browser.ErrElementNotFound)
}

func TestCheckTerms(t *testing.T) {
	form, _ := openForm(t, fixture.LiveQuirks())
	assert.Error(t, form.CheckTerms(), "Terms checkbox is disabled on the live form")

	form, _ = openForm(t, fixture.Quirks{})
	require.NoError(t, form.CheckTerms())
	require.NoError(t, form.CheckTerms(), "Checking an already checked box is a no-op")
}

func TestSelectCountryUnknown(t *testing.T) {
	form, _ := openForm(t, fixture.LiveQuirks())
	assert.Error(t, form.SelectCountry("Atlantis"))
}

func TestSelectCountryExact(t *testing.T) {
	for _, country := range []string{"Niger", "Guinea"} {
		t.Run(country, func(t *testing.T) {
			form, session := openForm(t, fixture.LiveQuirks())
			require.NoError(t, form.SelectCountry(country))
			el, ok := session.Element(fixture.IDCountry)
			require.True(t, ok)
			assert.Equal(t, country, el.Value)
		})
	}

	form, _ := openForm(t, fixture.LiveQuirks())
	assert.Error(t, form.SelectCountry("Nige"), "A partial name selects nothing")
}

func TestValuesAreWrittenVerbatim(t *testing.T) {
	form, session := openForm(t, fixture.LiveQuirks())
	require.NoError(t, form.FillPhoneNumber("0275645dsf622@"))
	require.NoError(t, form.FillEmail("invalid$email"))

	phone, ok := session.Element(fixture.IDPhone)
	require.True(t, ok)
	assert.Equal(t, "0275645dsf622@", phone.Value)
	email, _ := session.Element(fixture.IDEmail)
	assert.Equal(t, "invalid$email", email.Value)

	assert.Equal(t, []browsertest.Call{
		{Op: "navigate", Value: pages.FormURL},
		{Op: "fill", Selector: `input[id="phone"]`, Value: "0275645dsf622@"},
		{Op: "fill", Selector: `input[id="emailAddress"]`, Value: "invalid$email"},
	}, session.Calls())
}
