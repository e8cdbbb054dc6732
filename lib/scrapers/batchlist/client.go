// Package batchlist scrapes the batch listing of a server-rendered
// registration portal whose data sits behind three cascading dropdowns
// (region, programme organising unit, course), each resolved through a
// full postback that replays server-issued hidden tokens.
package batchlist

import (
	"bytes"
	"context"
	"net/http/cookiejar"
	"net/url"
	"time"

	"icaiscrape/lib/restyutil"
	"icaiscrape/lib/telemetry"
	"icaiscrape/lib/webforms"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"

const (
	defaultSubmitLabel = "Get List"
	defaultPlaceholder = "Select"
	defaultTimeout     = time.Second * 30
)

// Target describes the page being scraped. The zero values of the
// optional fields fall back to the markers the live portal uses.
type Target struct {
	// URL of the batch listing page.
	URL string
	// Headers overrides the default header set when non-empty.
	Headers map[string]string
	// SubmitLabel is the value of the "fetch the list" submit control.
	SubmitLabel string
	// Placeholder marks non-choices in dropdowns ("Select Region", ...).
	Placeholder string
	Timeout     time.Duration
}

func (t Target) submitLabel() string {
	if t.SubmitLabel != "" {
		return t.SubmitLabel
	}
	return defaultSubmitLabel
}

func (t Target) placeholder() string {
	if t.Placeholder != "" {
		return t.Placeholder
	}
	return defaultPlaceholder
}

func (t Target) headerSet() map[string]string {
	if len(t.Headers) > 0 {
		return t.Headers
	}
	origin := ""
	if link, err := url.Parse(t.URL); err == nil {
		origin = link.Scheme + "://" + link.Host
	}
	return map[string]string{
		"User-Agent":   DefaultUserAgent,
		"Referer":      t.URL,
		"Origin":       origin,
		"Content-Type": "application/x-www-form-urlencoded",
	}
}

// session is one isolated postback sequence: its own cookie jar and its
// own hidden-state chain. Sessions are never shared between tasks,
// token validity is tied to the navigation path that produced them.
type session struct {
	target Target
	http   *resty.Client
	state  webforms.HiddenState
}

func (t Target) newSession() (*session, error) {
	link, err := url.Parse(t.URL)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeaders(t.headerSet())
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(link.Hostname()))
	timeout := t.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	client.SetTimeout(timeout)

	if instrumentOutput != nil {
		restyutil.InstrumentClient(client, tracer, instrumentOutput)
	} else {
		telemetry.InstrumentResty(client, library_name+"/http")
	}

	return &session{target: t, http: client}, nil
}

func document(res *resty.Response) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

// loadEntry GETs the entry page and starts a fresh hidden-state chain.
func (s *session) loadEntry(ctx context.Context) (*goquery.Document, error) {
	res, err := s.http.R().
		SetContext(ctx).
		Get(s.target.URL)
	if err != nil {
		return nil, err
	}
	doc, err := document(res)
	if err != nil {
		return nil, err
	}
	s.state = webforms.ExtractHiddenState(doc)
	return doc, nil
}

// postback POSTs the payload and replaces the session state with the
// tokens of the response page.
func (s *session) postback(ctx context.Context, payload map[string]string) (*goquery.Document, error) {
	doc, err := s.post(ctx, payload)
	if err != nil {
		return nil, err
	}
	s.state = webforms.ExtractHiddenState(doc)
	return doc, nil
}

// post POSTs the payload without touching the session state. The final
// list submit uses this: every course of a unit replays the tokens of
// the unit-selection response, not of the previous list response.
func (s *session) post(ctx context.Context, payload map[string]string) (*goquery.Document, error) {
	res, err := s.http.R().
		SetContext(ctx).
		SetFormData(payload).
		Post(s.target.URL)
	if err != nil {
		return nil, err
	}
	return document(res)
}
