package fixture

import (
	_ "embed"
	"fmt"
	"io"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/bugs_form.html
var bugsFormSource string

// PageTitle is the document title of the replica.
const PageTitle = "QA Practice | Bugs form"

// formRenderer renders the bugs form with pongo2.
type formRenderer struct {
	tmpl *pongo2.Template
}

func newFormRenderer() (*formRenderer, error) {
	tmpl, err := pongo2.FromString(bugsFormSource)
	if err != nil {
		return nil, fmt.Errorf("parse bugs form template: %w", err)
	}
	return &formRenderer{tmpl: tmpl}, nil
}

// render writes the form. outcome is nil before the first submission.
func (r *formRenderer) render(w io.Writer, action string, sub Submission, q Quirks, outcome *Outcome) error {
	ctx := pongo2.Context{
		"title":         PageTitle,
		"action":        action,
		"form":          sub,
		"placeholder":   CountryPlaceholder,
		"countries":     Countries,
		"termsDisabled": q.TermsDisabled,
	}
	if outcome != nil {
		ctx["outcome"] = outcome
	}
	return r.tmpl.ExecuteWriter(ctx, w)
}
