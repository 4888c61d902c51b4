package roddom_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-domino/pkg/dom"
	"github.com/goliatone/go-domino/pkg/dom/roddom"
	"github.com/goliatone/go-domino/pkg/testsupport"
)

// openPage launches a headless browser when DOMINO_ROD_BIN points at one, or
// when DOMINO_ROD=1 lets rod download its own.
func openPage(t *testing.T) *roddom.Page {
	t.Helper()
	if os.Getenv(roddom.BinEnv) == "" && os.Getenv("DOMINO_ROD") != "1" {
		t.Skipf("set %s or DOMINO_ROD=1 to run browser tests", roddom.BinEnv)
	}

	browser, closeBrowser, err := roddom.Launch(context.Background(), roddom.LaunchConfig{Headless: true})
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	t.Cleanup(closeBrowser)

	page, err := roddom.Open(browser, roddom.WithTimeout(3*time.Second))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return page
}

func TestPage_PersonFormRoundTrip(t *testing.T) {
	page := openPage(t)
	ctx := context.Background()

	app := testsupport.NewPeopleApp()
	server := httptest.NewServer(app.Handler())
	t.Cleanup(server.Close)

	if err := page.Navigate(ctx, server.URL+app.EditPath(1)); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	person, err := testsupport.PersonForm.Find(ctx, page)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	err = person.Set(ctx, map[string]any{
		"name":     "Marie",
		"age":      25,
		"is_human": true,
		"vehicles": []string{"Bike", "Car"},
	})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := person.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := page.FindOne(ctx, dom.CSS("p.flash")); err != nil {
		t.Fatalf("wait for flash: %v", err)
	}

	reloaded, err := testsupport.PersonForm.Find(ctx, page)
	if err != nil {
		t.Fatalf("find after save: %v", err)
	}
	values, err := reloaded.Fields(ctx)
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	want := map[string]any{
		"name":           "Marie",
		"last_name":      "Cooper",
		"biography":      "Alice is fun",
		"favorite_color": "Blue",
		"age":            25,
		"vehicles":       []string{"Bike", "Car"},
		"is_human":       true,
	}
	if diff := cmp.Diff(want, values.Map()); diff != "" {
		t.Fatalf("values after save mismatch (-want +got):\n%s", diff)
	}
}

func TestPage_StrictFindTimesOut(t *testing.T) {
	page := openPage(t)
	ctx := context.Background()

	app := testsupport.NewPeopleApp()
	server := httptest.NewServer(app.Handler())
	t.Cleanup(server.Close)
	if err := page.Navigate(ctx, server.URL+app.IndexPath()); err != nil {
		t.Fatalf("navigate: %v", err)
	}

	short := roddom.New(page.Rod(), roddom.WithTimeout(200*time.Millisecond), roddom.WithInterval(20*time.Millisecond))
	if _, err := short.FindOne(ctx, dom.CSS("form.person")); !errors.Is(err, dom.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	first, err := short.FindFirst(ctx, dom.CSS("form.person"))
	if err != nil || first != nil {
		t.Fatalf("expected nil first match, got %v, %v", first, err)
	}
}
