package expect

import (
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/domspec/packages/chain"
	"github.com/abdul-hamid-achik/domspec/packages/dom"
)

type recorder struct {
	messages []string
	helpers  int
}

func (r *recorder) Errorf(format string, args ...any) {
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
}

func (r *recorder) Helper() { r.helpers++ }

func page(t *testing.T) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(`<body>
<button data-testid="delete" class="btn extra btn-danger" type="submit">Delete item</button>
<input data-testid="name" type="text" value="jane" required>
<input data-testid="age" type="number" value="5">
<div data-testid="hidden" style="display: none">Gone</div>
<form data-testid="form"><input name="q" value="go"></form>
</body>`)
	require.NoError(t, err)
	return doc
}

func TestFluentPasses(t *testing.T) {
	doc := page(t)
	rec := &recorder{}
	button := doc.QueryByTestID("delete")

	checks := []*Assertion{
		Expect(rec, button).To().Be().An().Element(),
		Expect(rec, button).To().Be().Enabled(),
		Expect(rec, button).To().Be().In().Document(),
		Expect(rec, button).To().Be().In(doc.Body()),
		Expect(rec, button).To().Have().Class("btn", "extra"),
		Expect(rec, button).To().Have().Exact().Class("btn extra btn-danger"),
		Expect(rec, button).To().Have().AnyClass(),
		Expect(rec, button).To().Have().Class().That().Contains("btn-danger"),
		Expect(rec, button).To().Have().Class().That().Has().Members([]string{"btn", "extra", "btn-danger"}),
		Expect(rec, button).To().Have().Attribute("type").That().Equals("submit"),
		Expect(rec, button).To().Have().Text().That().Matches(regexp.MustCompile(`item$`)),
		Expect(rec, button).To().Have().An().AccessibleName().That().Equals("Delete item"),
		Expect(rec, doc.QueryByTestID("name")).To().Be().Required().And().Be().Valid(),
		Expect(rec, doc.QueryByTestID("name")).To().Have().Value().That().Equals("jane"),
		Expect(rec, doc.QueryByTestID("age")).To().Have().Value().That().Equals(5),
		Expect(rec, doc.QueryByTestID("hidden")).Not().To().Be().Visible(),
		Expect(rec, doc.QueryByTestID("hidden")).To().Have().Style("display: none"),
		Expect(rec, doc.QueryByTestID("form")).To().Have().FormValues(map[string]string{"q": "go"}),
		Expect(rec, doc.Body()).To().Contain(button),
		Expect(rec, doc.Body()).To().Contain().HTML(`<div data-testid="hidden" style="display: none">Gone</div>`),
		Expect(rec, "plain string").To().Have().LengthOf(12),
		Expect(rec, []int{1, 2}).To().Include(2),
	}
	for i, c := range checks {
		assert.NoError(t, c.Err(), "check %d", i)
	}
	assert.Empty(t, rec.messages)
}

func TestFocusTransition(t *testing.T) {
	doc := page(t)
	input := doc.QueryByTestID("name")

	assert.NoError(t, Expect(nil, input).Not().To().Have().Focus().Err())
	input.Focus()
	assert.NoError(t, Expect(nil, input).To().Be().Focused().Err())
	input.Blur()
	assert.NoError(t, Expect(nil, input).Not().To().Be().Focused().Err())
}

func TestFailureReportsThroughT(t *testing.T) {
	doc := page(t)
	rec := &recorder{}

	a := Expect(rec, doc.QueryByTestID("delete")).To().Be().Disabled().And().Be().Visible()

	require.True(t, a.Failed())
	require.Len(t, rec.messages, 1, "links after the first failure do not run")
	assert.Contains(t, rec.messages[0], "to be disabled")
	assert.Equal(t, 1, rec.helpers)
	assert.True(t, errors.Is(a.Err(), chain.ErrMismatch))
}

func TestTypeMismatch(t *testing.T) {
	a := Expect(nil, 42).Not().To().Be().Visible()
	assert.True(t, errors.Is(a.Err(), chain.ErrTypeMismatch))

	a = Expect(nil, 42).To().Have().ErrorMessage()
	assert.True(t, errors.Is(a.Err(), chain.ErrTypeMismatch))
}

func TestCustomRegistry(t *testing.T) {
	r := chain.NewRegistry()
	r.AddProperty("even", func(a *chain.Assertion) {
		n, _ := a.Object().(int)
		a.Assert(n%2 == 0, "expected #{this} to be even", "expected #{this} to be odd", nil, nil)
	})

	assert.NoError(t, New(r, nil, 4).To().Be().Get("even").Err())
	assert.Error(t, New(r, nil, 3).To().Be().Get("even").Err())

	err := New(r, nil, 3).Visible().Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown assertion "visible"`)
}

func TestSharedRegistry(t *testing.T) {
	assert.Same(t, Registry(), Registry())
	assert.True(t, Registry().Has("accessibleName"))
	assert.Equal(t, 7, Expect(nil, 7).Object())
	assert.Equal(t, "submit", Expect(nil, page(t).QueryByTestID("delete")).Attribute("type").Object())
}
