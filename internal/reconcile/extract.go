package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strings"
	"time"
)

// Callback is an inbound processor notification as received over HTTP.
type Callback struct {
	Body        []byte
	ContentType string
	Query       url.Values
	ReceivedAt  time.Time
}

// Source is where a candidate value is read from.
type Source int

const (
	SourceJSON Source = iota
	SourceForm
	SourceQuery
)

func (s Source) String() string {
	switch s {
	case SourceJSON:
		return "json"
	case SourceForm:
		return "form"
	case SourceQuery:
		return "query"
	}

	return "unknown"
}

// Candidate is one place a field may live in a callback. Path is a dotted
// JSON path for SourceJSON and a parameter name otherwise.
type Candidate struct {
	Source Source
	Path   string
}

func JSON(path string) Candidate  { return Candidate{Source: SourceJSON, Path: path} }
func Form(name string) Candidate  { return Candidate{Source: SourceForm, Path: name} }
func Query(name string) Candidate { return Candidate{Source: SourceQuery, Path: name} }

func (c Candidate) String() string {
	return fmt.Sprintf("%s:%s", c.Source, c.Path)
}

// parsed holds the decoded views of a callback.
type parsed struct {
	json  map[string]any
	form  url.Values
	query url.Values
}

func parse(cb Callback) parsed {
	p := parsed{query: cb.Query}

	body := bytes.TrimSpace(cb.Body)
	if len(body) == 0 {
		return p
	}

	mediaType, _, _ := mime.ParseMediaType(cb.ContentType)

	if mediaType == "application/x-www-form-urlencoded" {
		if form, err := url.ParseQuery(string(body)); err == nil {
			p.form = form
		}

		return p
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err == nil {
		p.json = obj

		return p
	}

	// Some senders omit the content type on form posts.
	if form, err := url.ParseQuery(string(body)); err == nil && !bytes.ContainsAny(body, "{}") {
		p.form = form
	}

	return p
}

// first returns the first non-empty value among candidates.
func (p parsed) first(candidates []Candidate) (string, Candidate, bool) {
	for _, c := range candidates {
		if v := p.lookup(c); v != "" {
			return v, c, true
		}
	}

	return "", Candidate{}, false
}

func (p parsed) lookup(c Candidate) string {
	switch c.Source {
	case SourceJSON:
		return walk(p.json, strings.Split(c.Path, "."))
	case SourceForm:
		return strings.TrimSpace(p.form.Get(c.Path))
	case SourceQuery:
		return strings.TrimSpace(p.query.Get(c.Path))
	}

	return ""
}

func walk(node map[string]any, path []string) string {
	if node == nil || len(path) == 0 {
		return ""
	}

	v, ok := node[path[0]]
	if !ok {
		return ""
	}

	if len(path) > 1 {
		child, _ := v.(map[string]any)

		return walk(child, path[1:])
	}

	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	}

	return ""
}
