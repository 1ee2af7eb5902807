package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Egorka7485/tgkadsf/internal/repo"
	"github.com/Egorka7485/tgkadsf/internal/transport"
	middleware "github.com/Egorka7485/tgkadsf/pkg/middleware/auth"
)

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, &transport.FieldError{Field: name, Message: name + " must be a positive integer"}
	}
	return uint(id), nil
}

func currentUser(c echo.Context) (uint, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || p.UserID == 0 {
		return 0, errors.New("unauthorized")
	}
	return p.UserID, nil
}

// PrincipalKey charges rate limits to the principal, or to the client IP for
// anonymous requests.
func PrincipalKey(c echo.Context) string {
	if p, ok := middleware.PrincipalFrom(c); ok {
		return "user:" + strconv.FormatUint(uint64(p.UserID), 10)
	}
	return "ip:" + c.RealIP()
}

func channelFilter(c echo.Context) (repo.ChannelFilter, error) {
	var f repo.ChannelFilter
	q := c.QueryParams()

	for name, dst := range map[string]**string{
		"search":   &f.Search,
		"category": &f.Category,
		"platform": &f.Platform,
	} {
		if v := q.Get(name); v != "" {
			*dst = &v
		}
	}

	b := echo.QueryParamsBinder(c).FailFast(true)
	for _, n := range []struct {
		name string
		dst  **int64
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
		{"minSubs", &f.MinSubs},
	} {
		if q.Get(n.name) == "" {
			continue
		}
		var v int64
		if err := b.Int64(n.name, &v).BindError(); err != nil {
			return f, &transport.FieldError{Field: n.name, Message: n.name + " must be an integer"}
		}
		*n.dst = &v
	}
	return f, nil
}

// bindFailure explains why c.Bind rejected the body.
func bindFailure(err error) *transport.FieldError {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return &transport.FieldError{Field: ute.Field, Message: fmt.Sprintf("%s must be %s", ute.Field, jsonKind(ute.Type))}
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &transport.FieldError{Message: "malformed JSON body"}
	}
	return &transport.FieldError{Message: "invalid body"}
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "valid"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	default:
		return "valid"
	}
}
