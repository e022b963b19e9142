package fixture

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, q Quirks) *httptest.Server {
	t.Helper()
	srv, err := NewServer(q, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func postForm(t *testing.T, ts *httptest.Server, sub Submission) string {
	t.Helper()
	form := url.Values{
		"firstName": {sub.FirstName},
		"lastName":  {sub.LastName},
		"phone":     {sub.Phone},
		"country":   {sub.Country},
		"email":     {sub.Email},
		"password":  {sub.Password},
	}
	if sub.Terms {
		form.Set("terms", "on")
	}
	resp, err := http.PostForm(ts.URL+FormPath, form)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return readBody(t, resp)
}

func TestServerShowForm(t *testing.T) {
	ts := newTestServer(t, LiveQuirks())

	resp, err := http.Get(ts.URL + FormPath)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	body := readBody(t, resp)

	assert.Contains(t, body, "<title>"+PageTitle+"</title>")
	for _, id := range []string{IDFirstName, IDLastName, IDPhone, IDCountry, IDEmail, IDPassword, IDTerms, IDRegister} {
		assert.Contains(t, body, `id="`+id+`"`, id)
	}
	assert.Contains(t, body, `<option value="New Zealand">New Zealand</option>`)
	assert.Contains(t, body, "disabled>")
	assert.NotContains(t, body, `id="message"`, "No message before submission")
	assert.NotContains(t, body, `id="resultFn"`)
}

func TestServerFixedTermsEnabled(t *testing.T) {
	ts := newTestServer(t, Quirks{})
	resp, err := http.Get(ts.URL + FormPath)
	require.NoError(t, err)
	assert.NotContains(t, readBody(t, resp), "disabled")
}

func TestServerSubmit(t *testing.T) {
	ts := newTestServer(t, LiveQuirks())

	t.Run("registered", func(t *testing.T) {
		body := postForm(t, ts, validSubmission())
		assert.Contains(t, body, `<div id="message" class="alert alert-danger" role="alert">`+MessageRegistered+`</div>`)
		assert.Contains(t, body, `<p id="resultFn">First Name: Virat</p>`)
		assert.Contains(t, body, `<p id="resultLn">Last Name: Kohl</p>`)
		assert.Contains(t, body, `<p id="resultPhone">Phone Number: 0275645623</p>`)
		assert.Contains(t, body, `<p id="country">Country: New Zealand</p>`)
		assert.Contains(t, body, `<p id="resultEmail">Email: virat@bcci.com</p>`)
		assert.Contains(t, body, `<option value="New Zealand" selected>`, "Submitted country stays selected")
	})

	t.Run("rejected", func(t *testing.T) {
		sub := validSubmission()
		sub.Password = "12345"
		body := postForm(t, ts, sub)
		assert.Contains(t, body, MessagePasswordLength)
		assert.NotContains(t, body, `id="resultFn"`)
	})

	t.Run("values are escaped", func(t *testing.T) {
		sub := validSubmission()
		sub.FirstName = "<b>Virat</b>"
		body := postForm(t, ts, sub)
		assert.NotContains(t, body, "<b>Virat</b>")
		assert.Contains(t, body, "First Name: &lt;b&gt;Virat&lt;/b&gt;")
	})
}

func TestServerSubmitBindsTerms(t *testing.T) {
	ts := newTestServer(t, Quirks{})

	body := postForm(t, ts, validSubmission())
	assert.Contains(t, body, MessageRegistered, "A ticked checkbox posts \"on\"")

	sub := validSubmission()
	sub.Terms = false
	body = postForm(t, ts, sub)
	assert.Contains(t, body, MessageTermsMissing)
}

func TestServerSubmitMalformed(t *testing.T) {
	ts := newTestServer(t, LiveQuirks())

	resp, err := http.Post(ts.URL+FormPath, "application/x-www-form-urlencoded", strings.NewReader("firstName=%zz"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Invalid form data")
}

func TestServerRequestID(t *testing.T) {
	ts := newTestServer(t, LiveQuirks())

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "ok", strings.TrimSpace(readBody(t, resp)))
}
