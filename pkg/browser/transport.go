package browser

import (
	"net/http"
	"net/http/httptest"
)

// handlerTransport serves requests from an http.Handler without a network
// listener.
type handlerTransport struct {
	handler http.Handler
}

func (t handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	served := req.Clone(req.Context())
	served.RequestURI = req.URL.RequestURI()
	served.RemoteAddr = "192.0.2.1:1234"
	if served.Body == nil {
		served.Body = http.NoBody
	}

	recorder := httptest.NewRecorder()
	t.handler.ServeHTTP(recorder, served)

	resp := recorder.Result()
	resp.Request = req
	return resp, nil
}
