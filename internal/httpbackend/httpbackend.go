// Package httpbackend implements the HTTP backend: a persistent client
// remembering the last response, evaluating response and JSON-path
// predicates, and extracting regex captures into the variable store.
package httpbackend

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"

	"github.com/cladam/choreo/internal/model"
	"github.com/cladam/choreo/internal/vars"
)

// LastResponse records the outcome of the most recently performed request.
type LastResponse struct {
	Status int
	Body   string
}

// Backend is a persistent HTTP client plus the last response it observed.
type Backend struct {
	client       *fasthttp.Client
	LastResponse *LastResponse
	headers      map[string]string
	cookies      map[string]string
	Verbose      bool
}

// New returns a Backend with its own persistent fasthttp.Client.
func New(verbose bool) *Backend {
	return &Backend{
		client:  &fasthttp.Client{},
		headers: make(map[string]string),
		cookies: make(map[string]string),
		Verbose: verbose,
	}
}

func methodFor(kind model.ActionKind) (string, bool) {
	switch kind {
	case model.ActionHttpGet:
		return fasthttp.MethodGet, true
	case model.ActionHttpPost:
		return fasthttp.MethodPost, true
	case model.ActionHttpPut:
		return fasthttp.MethodPut, true
	case model.ActionHttpPatch:
		return fasthttp.MethodPatch, true
	case model.ActionHttpDelete:
		return fasthttp.MethodDelete, true
	}
	return "", false
}

// ExecuteAction executes an HTTP action if this backend handles its Kind.
// A non-2xx response is still a "handled" outcome (the status is
// preserved on LastResponse); a transport failure records a synthetic 500
// on LastResponse and is returned as the error, which fails the enclosing
// test.
func (b *Backend) ExecuteAction(action model.Action, store *vars.Store) (handled bool, unhandledErr error) {
	switch action.Kind {
	case model.ActionHttpSetHeader:
		b.headers[store.Substitute(action.Header)] = store.Substitute(action.Value)
		return true, nil
	case model.ActionHttpClearHeader:
		delete(b.headers, store.Substitute(action.Header))
		return true, nil
	case model.ActionHttpClearHdrs:
		b.headers = make(map[string]string)
		return true, nil
	case model.ActionHttpSetCookie:
		b.cookies[store.Substitute(action.Cookie)] = store.Substitute(action.Value)
		return true, nil
	case model.ActionHttpClearCookie:
		delete(b.cookies, store.Substitute(action.Cookie))
		return true, nil
	case model.ActionHttpClearCkies:
		b.cookies = make(map[string]string)
		return true, nil
	}

	method, ok := methodFor(action.Kind)
	if !ok {
		return false, nil
	}

	url := store.Substitute(action.URL)
	body := store.Substitute(action.Body)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	if body != "" {
		req.SetBodyString(body)
	}
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}
	for k, v := range b.cookies {
		req.Header.SetCookie(k, v)
	}

	err := b.client.Do(req, resp)
	if err != nil {
		b.LastResponse = &LastResponse{
			Status: fasthttp.StatusInternalServerError,
			Body:   fmt.Sprintf("HTTP request failed: %v", err),
		}
		return true, err
	}

	b.LastResponse = &LastResponse{
		Status: resp.StatusCode(),
		Body:   string(resp.Body()),
	}
	return true, nil
}

// CheckCondition evaluates an HTTP condition against the last response.
// If no request has been made yet, every HTTP condition returns false.
func (b *Backend) CheckCondition(cond model.Condition, store *vars.Store) (bool, bool) {
	switch cond.Kind {
	case model.CondResponseStatusIs, model.CondResponseBodyContains, model.CondResponseBodyMatches,
		model.CondJsonBodyHasPath, model.CondJsonPathEquals:
		// handled kinds, fall through below
	default:
		return false, false
	}

	if b.LastResponse == nil {
		return false, true
	}

	switch cond.Kind {
	case model.CondResponseStatusIs:
		return b.LastResponse.Status == cond.StatusCode, true

	case model.CondResponseBodyContains:
		return strings.Contains(b.LastResponse.Body, store.Substitute(cond.Value)), true

	case model.CondResponseBodyMatches:
		re, err := regexp.Compile(cond.Regex)
		if err != nil {
			return false, true
		}
		match := re.FindStringSubmatch(b.LastResponse.Body)
		if match == nil {
			return false, true
		}
		if cond.CaptureAs != "" && len(match) > 1 {
			store.Set(cond.CaptureAs, match[1])
		}
		return true, true

	case model.CondJsonBodyHasPath:
		result := gjson.Get(b.LastResponse.Body, jsonPointerToGjson(cond.JSONPath))
		return result.Exists(), true

	case model.CondJsonPathEquals:
		result := gjson.Get(b.LastResponse.Body, jsonPointerToGjson(cond.JSONPath))
		if !result.Exists() {
			return false, true
		}
		return actualValueString(result) == cond.Expected, true
	}
	return false, true
}

// jsonPointerToGjson converts a JSON-Pointer path ("/user/id") to
// gjson's dotted path syntax ("user.id").
func jsonPointerToGjson(pointer string) string {
	p := strings.TrimPrefix(pointer, "/")
	return strings.ReplaceAll(p, "/", ".")
}

// actualValueString renders a gjson.Result the same way the source
// renders a serde_json::Value for string-comparison purposes: numbers
// without a trailing ".0" when they're integral, everything else via
// its natural string form.
func actualValueString(r gjson.Result) string {
	if r.Type == gjson.Number {
		if r.Num == float64(int64(r.Num)) {
			return strconv.FormatInt(int64(r.Num), 10)
		}
	}
	return r.String()
}
