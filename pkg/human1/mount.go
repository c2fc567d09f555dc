// pkg/human1/mount.go
package human1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"human1-sdk/internal/models"
)

const (
	DefaultBasePath = "/api"

	maxBodyBytes = 1 << 20
)

// NormalizeBasePath guarantees a leading slash and strips trailing ones.
// "/" and "" both become "", meaning routes sit at the root.
func NormalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Mount registers every route on app under basePath, wrapped in mw. Invalid
// routes are skipped and reported in the returned error. Mounting the same
// table twice registers duplicates.
func Mount(app Application, basePath string, routes []models.RouteDefinition, mw ...Middleware) (int, error) {
	if isNilApp(app) {
		return 0, fmt.Errorf("%w: cannot mount routes on a nil application", ErrInvalidApplication)
	}

	base := NormalizeBasePath(basePath)
	var errs []error
	mounted := 0
	for _, def := range routes {
		if err := def.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}

		path := def.Path
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		var h http.Handler = routeHandler(def)
		for i := len(mw) - 1; i >= 0; i-- {
			if mw[i] != nil {
				h = mw[i](h)
			}
		}
		app.Handle(strings.ToUpper(def.Method), base+path, h)
		mounted++
	}
	return mounted, errors.Join(errs...)
}

// routeHandler adapts a RouteHandler to net/http. Methods with a body get the
// decoded JSON object merged with the query string, the query string winning.
func routeHandler(def models.RouteDefinition) http.Handler {
	withBody := models.HasBody(def.Method)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := queryParams(r)

		if withBody {
			body, err := decodeBody(w, r)
			if err != nil {
				WriteEnvelope(w, models.BadRequest("Invalid JSON body", err.Error()))
				return
			}
			req = body.Merge(req)
		}

		WriteEnvelope(w, def.Handler(r.Context(), req))
	})
}

// queryParams flattens the query string: a repeated key becomes a list.
func queryParams(r *http.Request) models.RequestData {
	values := r.URL.Query()
	out := make(models.RequestData, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			out[k] = vs[0]
			continue
		}
		list := make([]interface{}, len(vs))
		for i, v := range vs {
			list[i] = v
		}
		out[k] = list
	}
	return out
}

// decodeBody reads a JSON object. An empty body is an empty object.
func decodeBody(w http.ResponseWriter, r *http.Request) (models.RequestData, error) {
	if r.Body == nil {
		return models.RequestData{}, nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return models.RequestData{}, nil
		}
		return nil, err
	}
	if raw == nil {
		return models.RequestData{}, nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("request body must be a JSON object")
	}
	return models.RequestData(obj), nil
}
