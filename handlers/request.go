// Package handlers adapts HTTP requests to service calls.
//
// Handlers stay thin: decode the path, query or body, call one service
// method and write the envelope. Business rules live in services.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
)

type contextKey string

// UserContextKey carries the authenticated *models.User.
const UserContextKey contextKey = "user"

// RequestIDContextKey carries the request id set by the logging middleware.
const RequestIDContextKey contextKey = "request_id"

func currentUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(UserContextKey).(*models.User)
	return u, ok
}

// pathID parses a positive integer path segment.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", pkg.ErrBadRequest, name)
	}
	return id, nil
}

// decodeJSON reads the body into dst, answering 400 on malformed input.
// An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// queryReader parses query parameters, collecting every problem so one
// response lists them all.
type queryReader struct {
	values url.Values
	loc    *time.Location
	errs   pkg.ValidationErrors
	fail   error
}

func newQuery(r *http.Request, loc *time.Location) *queryReader {
	return &queryReader{values: r.URL.Query(), loc: loc, errs: pkg.ValidationErrors{}}
}

func (q *queryReader) str(key string) string {
	return strings.TrimSpace(q.values.Get(key))
}

// first returns the value of the first present key among aliases.
func (q *queryReader) first(keys ...string) string {
	for _, k := range keys {
		if v := q.str(k); v != "" {
			return v
		}
	}
	return ""
}

func (q *queryReader) oneOf(key string, allowed ...string) string {
	v := q.str(key)
	if err := models.ValidateOneOf(key, v, allowed...); err != nil {
		q.errs.Add(key, "must be one of: "+strings.Join(allowed, ", "))
		return ""
	}
	return v
}

func (q *queryReader) int64Ptr(key string) *int64 {
	v := q.str(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		q.errs.Add(key, "must be a positive integer")
		return nil
	}
	return &n
}

func (q *queryReader) intPtr(key string) *int {
	v := q.str(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		q.errs.Add(key, "must be an integer")
		return nil
	}
	return &n
}

func (q *queryReader) floatPtr(key string) *float64 {
	v := q.str(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		q.errs.Add(key, "must be a non-negative number")
		return nil
	}
	return &f
}

// boolPtr accepts true/false/1/0. "all" and empty mean no filter.
func (q *queryReader) boolPtr(key string) *bool {
	v := strings.ToLower(q.str(key))
	switch v {
	case "", "all":
		return nil
	case "1", "true", "yes":
		b := true
		return &b
	case "0", "false", "no":
		b := false
		return &b
	}
	q.errs.Add(key, "must be a boolean")
	return nil
}

func (q *queryReader) flag(key string) bool {
	b := q.boolPtr(key)
	return b != nil && *b
}

// date parses a YYYY-MM-DD value as midnight in the app time zone.
func (q *queryReader) date(key string) *time.Time {
	v := q.str(key)
	if v == "" {
		return nil
	}
	t, err := models.ParseDate(v, q.loc)
	if err != nil {
		q.errs.Add(key, "must be a date (YYYY-MM-DD)")
		return nil
	}
	return &t
}

// dateRange reads an inclusive start/end pair and rejects an end before the start.
func (q *queryReader) dateRange(startKey, endKey string) (*time.Time, *time.Time) {
	start, end := q.date(startKey), q.date(endKey)
	if start != nil && end != nil && end.Before(*start) {
		q.errs.Add(endKey, "must be after or equal to "+startKey)
		return nil, nil
	}
	return start, end
}

// dateEnd parses an inclusive end date as the exclusive midnight after it.
func (q *queryReader) dateEnd(key string) *time.Time {
	t := q.date(key)
	if t == nil {
		return nil
	}
	next := t.AddDate(0, 0, 1)
	return &next
}

func (q *queryReader) page(defaultPerPage int) pkg.PageParams {
	p, err := pkg.ParsePageParams(q.values, defaultPerPage)
	if err != nil && q.fail == nil {
		q.fail = err
	}
	return p
}

// sort resolves the sort field from keyParam and the direction from the
// first present of dirParams.
func (q *queryReader) sort(keyParam string, dirParams []string, allowed map[string]string, fallback string, desc bool) models.SortSpec {
	spec, err := models.ResolveSort(q.str(keyParam), q.first(dirParams...), allowed, fallback, desc)
	if err != nil {
		if verrs, ok := err.(pkg.ValidationErrors); ok {
			for field, msg := range verrs {
				if field == "sort_by" {
					field = keyParam
				}
				q.errs.Add(field, msg)
			}
		} else if q.fail == nil {
			q.fail = err
		}
		fallbackCol := allowed[fallback]
		return models.SortSpec{Column: fallbackCol, Desc: desc}
	}
	return spec
}

func (q *queryReader) err() error {
	if q.fail != nil {
		return q.fail
	}
	return q.errs.Err()
}

// sortDirParams are the direction parameter names the admin UI sends.
var sortDirParams = []string{"sort_dir", "sort_direction", "sort_order"}

// respond writes data with status, or the error when err is set.
func respond(w http.ResponseWriter, status int, data any, err error) {
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, status, data)
}

func deleted(w http.ResponseWriter, what string, err error) {
	respond(w, http.StatusOK, map[string]string{"message": what + " deleted"}, err)
}
