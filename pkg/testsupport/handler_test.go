package testsupport_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-domino/pkg/testsupport"
)

func TestPeopleApp_ServesPages(t *testing.T) {
	t.Parallel()

	app := testsupport.NewPeopleApp()
	for _, path := range []string{app.IndexPath(), app.EditPath(1)} {
		rec := httptest.NewRecorder()
		app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d\n%s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestPeopleApp_Guard(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "allowed", want: http.StatusOK},
		{name: "guard status", err: testsupport.GuardError{Status: http.StatusUnauthorized}, want: http.StatusUnauthorized},
		{name: "plain error", err: errors.New("nope"), want: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			app := testsupport.NewPeopleApp(testsupport.WithGuard(func(*http.Request) error { return tc.err }))
			rec := httptest.NewRecorder()
			app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, app.EditPath(1), nil))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
