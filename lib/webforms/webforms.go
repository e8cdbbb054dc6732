// Package webforms models the client side of an ASP.NET WebForms
// postback: server-issued hidden state that must be replayed verbatim,
// form fields whose generated names have to be discovered from the
// page, and the payloads that simulate UI events against them.
package webforms

import (
	"fmt"
	"strings"

	"icaiscrape/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	EventTarget   = "__EVENTTARGET"
	EventArgument = "__EVENTARGUMENT"
)

// HiddenState is the set of hidden replay tokens (__VIEWSTATE,
// __EVENTVALIDATION, ...) extracted from one page. It is only valid
// for the next request of the session it was extracted from.
type HiddenState map[string]string

// ExtractHiddenState reads every named hidden input from the page.
// A page with no hidden inputs yields an empty (still valid) state,
// the server will reject the replay downstream instead.
func ExtractHiddenState(doc *goquery.Document) HiddenState {
	state := HiddenState{}
	doc.Find(`input[type="hidden"]`).Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		state[name] = s.AttrOr("value", "")
	})
	return state
}

// ChangePayload builds the form body for a "selection changed" postback
// on the named control, overlaying the given selections on a copy of
// the state.
func (s HiddenState) ChangePayload(target string, selections map[string]string) map[string]string {
	payload := s.overlay(selections)
	payload[EventTarget] = target
	payload[EventArgument] = ""
	return payload
}

// SubmitPayload builds the form body for a plain (non-event) submit.
// submitField may be empty, in which case only the selections and the
// cleared event fields are sent.
func (s HiddenState) SubmitPayload(submitField, submitValue string, selections map[string]string) map[string]string {
	payload := s.overlay(selections)
	payload[EventTarget] = ""
	payload[EventArgument] = ""
	if submitField != "" {
		payload[submitField] = submitValue
	}
	return payload
}

func (s HiddenState) overlay(selections map[string]string) map[string]string {
	payload := make(map[string]string, len(s)+len(selections)+2)
	for k, v := range s {
		payload[k] = v
	}
	for k, v := range selections {
		payload[k] = v
	}
	return payload
}

// FieldNames holds the generated control names discovered from the
// entry page. Region/Unit/Course are bound to the first three select
// elements in document order; the observed markup carries no stabler
// signal (ids and labels are as generated as the names), so a page
// that reorders its selects would bind to the wrong semantic field.
type FieldNames struct {
	Region string
	Unit   string
	Course string
	// Submit may be empty when no submit control could be found.
	Submit string
}

// DiscoveryError means the entry page did not expose the controls the
// whole protocol depends on. Nothing downstream is meaningful after it.
type DiscoveryError struct {
	Missing string
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("field discovery failed: %s", e.Missing)
}

// LocateFields discovers the three cascading selects and the submit
// control. The submit control is located by its value label first,
// falling back to any submit-typed input.
func LocateFields(doc *goquery.Document, submitLabel string) (FieldNames, error) {
	selects := doc.Find("select")
	if selects.Length() < 3 {
		return FieldNames{}, &DiscoveryError{
			Missing: fmt.Sprintf("expected at least 3 select elements, found %d", selects.Length()),
		}
	}

	fields := FieldNames{
		Region: selects.Eq(0).AttrOr("name", ""),
		Unit:   selects.Eq(1).AttrOr("name", ""),
		Course: selects.Eq(2).AttrOr("name", ""),
	}
	if fields.Region == "" || fields.Unit == "" || fields.Course == "" {
		return FieldNames{}, &DiscoveryError{Missing: "a cascading select has no name attribute"}
	}

	submit := doc.Find(fmt.Sprintf(`input[value=%q]`, submitLabel)).First()
	if submit.Length() == 0 {
		submit = doc.Find(`input[type="submit"]`).First()
	}
	fields.Submit = submit.AttrOr("name", "")

	return fields, nil
}

// Option is one dropdown choice.
type Option struct {
	Value string
	Label string
}

// Options reads the choices of the named select, dropping placeholder
// entries (empty values and labels containing the placeholder marker).
// found is false when the select is absent from the page, which the
// server uses to mean "no children for the current selection".
func Options(doc *goquery.Document, name, placeholder string) (options []Option, found bool) {
	sel := doc.Find(fmt.Sprintf(`select[name=%q]`, name))
	if sel.Length() == 0 {
		return nil, false
	}

	sel.First().Find("option").Each(func(_ int, o *goquery.Selection) {
		value := o.AttrOr("value", "")
		label := htmlutil.CleanText(o.Text())
		if value == "" || strings.Contains(label, placeholder) {
			return
		}
		options = append(options, Option{Value: value, Label: label})
	})
	return options, true
}
