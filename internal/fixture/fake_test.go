package fixture

import (
	"testing"

	"github.com/regform/regform/internal/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeURL = "http://fixture.test/bugs-form"

func sel(id string) string { return "#" + id }

func TestNewFakeSessionRegisters(t *testing.T) {
	s := NewFakeSession(fakeURL, LiveQuirks())
	require.NoError(t, s.Navigate(fakeURL))

	title, err := s.Title()
	require.NoError(t, err)
	assert.Equal(t, PageTitle, title)

	_, ok, err := s.TextContent(sel(IDMessage))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Fill(sel(IDFirstName), "Virat"))
	require.NoError(t, s.Fill(sel(IDLastName), "Kohli"))
	require.NoError(t, s.Fill(sel(IDPhone), "0275645622"))
	require.NoError(t, s.Fill(sel(IDEmail), "virat@bcci.com"))
	require.NoError(t, s.Fill(sel(IDPassword), "%3.e&N)Bs69"))
	require.NoError(t, s.SelectOption(sel(IDCountry), "New Zealand"))
	require.NoError(t, s.Click(sel(IDRegister)))

	for id, want := range map[string]string{
		IDMessage:       MessageRegistered,
		IDResultFirst:   "First Name: Virat",
		IDResultLast:    "Last Name: Kohl",
		IDResultPhone:   "Phone Number: 0275645623",
		IDResultCountry: "Country: New Zealand",
		IDResultEmail:   "Email: virat@bcci.com",
	} {
		text, ok, err := s.TextContent(sel(id))
		require.NoError(t, err)
		assert.True(t, ok, id)
		assert.Equal(t, want, text, id)
	}
}

func TestNewFakeSessionRejects(t *testing.T) {
	s := NewFakeSession(fakeURL, LiveQuirks())
	require.NoError(t, s.Navigate(fakeURL))

	require.NoError(t, s.Fill(sel(IDPhone), "02756456"))
	require.NoError(t, s.Click(sel(IDRegister)))

	text, ok, err := s.TextContent(sel(IDMessage))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, MessagePhoneTooShort, text)

	_, ok, err = s.TextContent(sel(IDResultFirst))
	require.NoError(t, err)
	assert.False(t, ok, "No echo after a rejected submission")
}

func TestNewFakeSessionTerms(t *testing.T) {
	t.Run("disabled on the live form", func(t *testing.T) {
		s := NewFakeSession(fakeURL, LiveQuirks())
		require.NoError(t, s.Navigate(fakeURL))
		assert.Error(t, s.Check(sel(IDTerms)))
	})

	t.Run("clickable when fixed", func(t *testing.T) {
		s := NewFakeSession(fakeURL, Quirks{})
		require.NoError(t, s.Navigate(fakeURL))
		require.NoError(t, s.Check(sel(IDTerms)))
		el, ok := s.Element(IDTerms)
		require.True(t, ok)
		assert.True(t, el.Checked)
	})
}

func TestNewFakeSessionNavigate(t *testing.T) {
	s := NewFakeSession(fakeURL, LiveQuirks())
	err := s.Navigate("http://elsewhere.test/")
	assert.ErrorIs(t, err, browser.ErrNavigation)

	require.NoError(t, s.Navigate(fakeURL))
	require.NoError(t, s.Fill(sel(IDFirstName), "Virat"))
	require.NoError(t, s.Navigate(fakeURL))
	el, _ := s.Element(IDFirstName)
	assert.Empty(t, el.Value, "Navigating again renders a fresh form")
}
