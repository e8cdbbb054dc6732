package webforms

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestExtractHiddenState(t *testing.T) {
	doc := parse(t, `<form>
		<input type="hidden" name="__VIEWSTATE" value="abc123" />
		<input type="hidden" name="__EVENTVALIDATION" value="def456" />
		<input type="hidden" name="__VIEWSTATEGENERATOR" />
		<input type="hidden" value="orphan" />
		<input type="text" name="visible" value="nope" />
	</form>`)

	state := ExtractHiddenState(doc)
	require.Equal(t, HiddenState{
		"__VIEWSTATE":          "abc123",
		"__EVENTVALIDATION":    "def456",
		"__VIEWSTATEGENERATOR": "",
	}, state)
}

func TestExtractHiddenStateMalformedPage(t *testing.T) {
	state := ExtractHiddenState(parse(t, `<p>maintenance</p>`))
	require.Empty(t, state)
}

func TestLocateFieldsPositionalBinding(t *testing.T) {
	doc := parse(t, `<form>
		<select name="ddlRegion"></select>
		<select name="ddlPou"></select>
		<select name="ddlCourse"></select>
		<input type="submit" name="btnGet" value="Get List" />
	</form>`)

	fields, err := LocateFields(doc, "Get List")
	require.NoError(t, err)
	require.Equal(t, FieldNames{
		Region: "ddlRegion",
		Unit:   "ddlPou",
		Course: "ddlCourse",
		Submit: "btnGet",
	}, fields)
}

func TestLocateFieldsIgnoresNames(t *testing.T) {
	// binding is by document order, not by what the names suggest
	doc := parse(t, `<form>
		<select name="ddlCourse"></select>
		<select name="ddlRegion"></select>
		<select name="ddlPou"></select>
		<input type="submit" name="btnGo" value="Go" />
	</form>`)

	fields, err := LocateFields(doc, "Get List")
	require.NoError(t, err)
	require.Equal(t, "ddlCourse", fields.Region)
	require.Equal(t, "ddlRegion", fields.Unit)
	require.Equal(t, "ddlPou", fields.Course)
	// label miss falls back to the generic submit input
	require.Equal(t, "btnGo", fields.Submit)
}

func TestLocateFieldsTooFewSelects(t *testing.T) {
	doc := parse(t, `<form>
		<select name="ddlRegion"></select>
		<select name="ddlPou"></select>
	</form>`)

	_, err := LocateFields(doc, "Get List")
	var discovery *DiscoveryError
	require.ErrorAs(t, err, &discovery)
}

func TestLocateFieldsMissingSubmit(t *testing.T) {
	doc := parse(t, `<form>
		<select name="a"></select>
		<select name="b"></select>
		<select name="c"></select>
	</form>`)

	fields, err := LocateFields(doc, "Get List")
	require.NoError(t, err)
	require.Empty(t, fields.Submit)
}

func TestOptions(t *testing.T) {
	doc := parse(t, `<select name="ddlRegion">
		<option value="">Select Region</option>
		<option value="1"> North </option>
		<option value="2">South</option>
	</select>`)

	options, found := Options(doc, "ddlRegion", "Select")
	require.True(t, found)
	require.Equal(t, []Option{
		{Value: "1", Label: "North"},
		{Value: "2", Label: "South"},
	}, options)
}

func TestOptionsAbsentSelect(t *testing.T) {
	options, found := Options(parse(t, `<p></p>`), "ddlPou", "Select")
	require.False(t, found)
	require.Empty(t, options)
}

func TestChangePayload(t *testing.T) {
	state := HiddenState{"__VIEWSTATE": "vs"}
	payload := state.ChangePayload("ddlRegion", map[string]string{"ddlRegion": "1"})

	require.Equal(t, map[string]string{
		"__VIEWSTATE":     "vs",
		"__EVENTTARGET":   "ddlRegion",
		"__EVENTARGUMENT": "",
		"ddlRegion":       "1",
	}, payload)
	// the state itself must not be mutated by payload construction
	require.Equal(t, HiddenState{"__VIEWSTATE": "vs"}, state)
}

func TestSubmitPayload(t *testing.T) {
	state := HiddenState{"__VIEWSTATE": "vs"}
	payload := state.SubmitPayload("btnGet", "Get List", map[string]string{
		"ddlRegion": "1",
		"ddlPou":    "10",
		"ddlCourse": "100",
	})

	require.Equal(t, "", payload["__EVENTTARGET"])
	require.Equal(t, "", payload["__EVENTARGUMENT"])
	require.Equal(t, "Get List", payload["btnGet"])
	require.Equal(t, "1", payload["ddlRegion"])

	// an unknown submit control adds nothing to the payload
	payload = state.SubmitPayload("", "Get List", nil)
	_, hasEmptyKey := payload[""]
	require.False(t, hasEmptyKey)
}
