package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/innerlog/backend/internal/analytics"
	"github.com/JonnyWalker81/innerlog/backend/internal/apierror"
	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
)

// Params holds the request defaults shared by every handler
type Params struct {
	// Location is used when a request carries no tz parameter
	Location *time.Location
	// DefaultWindowDays is the window length when start or end is omitted
	DefaultWindowDays int
	Now               func() time.Time
}

func (p Params) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// location resolves the optional tz query parameter
func (p Params) location(c *gin.Context) (*time.Location, *apierror.FieldError) {
	tz := strings.TrimSpace(c.Query("tz"))
	if tz == "" {
		if p.Location == nil {
			return time.UTC, nil
		}
		return p.Location, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, &apierror.FieldError{Field: "tz", Message: "must be an IANA time zone name", Code: "invalid_timezone"}
	}
	return loc, nil
}

// window builds the analysis window from start, end and tz. A missing bound
// defaults to DefaultWindowDays away from the other, ending now.
func (p Params) window(c *gin.Context) (analytics.Window, []apierror.FieldError) {
	var errs []apierror.FieldError
	loc, ferr := p.location(c)
	if ferr != nil {
		return analytics.Window{}, []apierror.FieldError{*ferr}
	}

	var start, end time.Time
	if s := c.Query("start"); s != "" {
		t, err := parseBound(s, loc, false)
		if err != nil {
			errs = append(errs, apierror.FieldError{Field: "start", Message: "must be YYYY-MM-DD or RFC3339", Code: "invalid_format"})
		}
		start = t
	}
	if s := c.Query("end"); s != "" {
		t, err := parseBound(s, loc, true)
		if err != nil {
			errs = append(errs, apierror.FieldError{Field: "end", Message: "must be YYYY-MM-DD or RFC3339", Code: "invalid_format"})
		}
		end = t
	}
	if len(errs) > 0 {
		return analytics.Window{}, errs
	}

	days := p.DefaultWindowDays
	if days <= 0 {
		days = 30
	}
	switch {
	case start.IsZero() && end.IsZero():
		end = p.now().In(loc)
		start = end.AddDate(0, 0, -days)
	case start.IsZero():
		start = end.AddDate(0, 0, -days)
	case end.IsZero():
		end = p.now().In(loc)
	}
	return analytics.Window{Start: start, End: end, Loc: loc}, nil
}

// parseBound accepts RFC3339 or a YYYY-MM-DD date. A date used as an end
// bound covers the whole day.
func parseBound(s string, loc *time.Location, end bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(calendar.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}

// parseDay turns a request date into the civil day it names in loc. An
// empty value means today.
func (p Params) parseDay(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return calendar.Civil(p.now().In(loc)), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return calendar.Civil(t.In(loc)), nil
	}
	return calendar.ParseDay(s)
}

// queryInt reads an optional integer query parameter
func queryInt(c *gin.Context, name string, def int) (int, *apierror.FieldError) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &apierror.FieldError{Field: name, Message: "must be an integer", Code: "invalid_type"}
	}
	return n, nil
}

func writeFieldErrors(c *gin.Context, fields []apierror.FieldError) {
	apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), fields))
}
