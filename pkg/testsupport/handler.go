package testsupport

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const flashCookie = "flash"

// GuardError rejects a request with Status. Any other error returned by a
// GuardFunc answers 403.
type GuardError struct {
	Status int
}

func (e GuardError) Error() string {
	return fmt.Sprintf("testsupport: request rejected with status %d", e.Status)
}

// Mux is the minimal interface required to register the people app. It is
// satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// PeopleApp is a tiny server-rendered CRUD app: a people index, an edit form
// per person and an update endpoint that redirects back to the form with a
// flash message. It exists to give form definitions a real page to work on.
type PeopleApp struct {
	opts     Options
	renderer *Renderer
}

// NewPeopleApp builds the app with default options plus any overrides.
func NewPeopleApp(fns ...OptionFn) *PeopleApp {
	opts := NewOptions(fns...)
	return &PeopleApp{
		opts:     opts,
		renderer: NewRenderer(nil, map[string]any{"base_path": opts.BasePath}),
	}
}

// Handler returns the app mounted on a fresh ServeMux.
func (a *PeopleApp) Handler() http.Handler {
	mux := http.NewServeMux()
	a.RegisterRoutes(mux)
	return mux
}

// Store returns the store backing the app.
func (a *PeopleApp) Store() *Store { return a.opts.Store }

// EditPath returns the address of the edit form for id.
func (a *PeopleApp) EditPath(id int) string {
	return fmt.Sprintf("%s/people/%d/edit", a.opts.BasePath, id)
}

// IndexPath returns the address of the people index.
func (a *PeopleApp) IndexPath() string {
	return a.opts.BasePath + "/people"
}

// RegisterRoutes registers the app routes under the configured base path and
// returns the registered patterns.
func (a *PeopleApp) RegisterRoutes(mux Mux) []string {
	if mux == nil {
		return nil
	}
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"GET " + a.opts.BasePath + "/people", a.index},
		{"GET " + a.opts.BasePath + "/people/{id}/edit", a.edit},
		{"POST " + a.opts.BasePath + "/people/{id}", a.update},
	}
	patterns := make([]string, 0, len(routes))
	for _, route := range routes {
		mux.Handle(route.pattern, a.guarded(route.handler))
		patterns = append(patterns, route.pattern)
	}
	return patterns
}

func (a *PeopleApp) guarded(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.opts.Logger.Debug("people app request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		if a.opts.Guard != nil {
			if err := a.opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}
		next(w, r)
	})
}

func (a *PeopleApp) index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	people := a.opts.Store.All(query)
	views := make([]map[string]any, len(people))
	for idx, person := range people {
		views[idx] = personView(person)
	}
	a.render(w, r, http.StatusOK, "people/index.html", map[string]any{
		"people": views,
		"query":  query,
	})
}

func (a *PeopleApp) edit(w http.ResponseWriter, r *http.Request) {
	person, ok := a.person(w, r)
	if !ok {
		return
	}
	a.renderEdit(w, r, http.StatusOK, person, nil)
}

func (a *PeopleApp) update(w http.ResponseWriter, r *http.Request) {
	person, ok := a.person(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	updated, problems := a.apply(person, r.PostForm)
	if len(problems) > 0 {
		a.renderEdit(w, r, http.StatusUnprocessableEntity, updated, problems)
		return
	}
	a.opts.Store.Save(updated)
	a.opts.Logger.Debug("person updated", zap.Int("id", updated.ID))

	http.SetCookie(w, &http.Cookie{
		Name:  flashCookie,
		Value: url.QueryEscape("Person updated"),
		Path:  "/",
	})
	http.Redirect(w, r, a.EditPath(updated.ID), http.StatusSeeOther)
}

// apply copies submitted values onto person. Multi-value controls always
// replace the stored list because browsers omit them when nothing is
// selected.
func (a *PeopleApp) apply(person Person, form url.Values) (Person, []string) {
	var problems []string
	if value, ok := lastValue(form, "person[name]"); ok {
		person.Name = strings.TrimSpace(value)
	}
	if value, ok := lastValue(form, "person[last_name]"); ok {
		person.LastName = strings.TrimSpace(value)
	}
	if value, ok := lastValue(form, "person[biography]"); ok {
		person.Biography = value
	}
	if value, ok := lastValue(form, "person[favorite_color]"); ok {
		if !hasChoice(a.opts.Colors, value) {
			problems = append(problems, fmt.Sprintf("Favorite color %q is not a choice", value))
		}
		person.FavoriteColor = value
	}
	if value, ok := lastValue(form, "person[age]"); ok {
		value = strings.TrimSpace(value)
		if value == "" {
			person.Age = 0
		} else if age, err := strconv.Atoi(value); err != nil || age < 0 {
			problems = append(problems, "Age must be a positive number")
		} else {
			person.Age = age
		}
	}
	if value, ok := lastValue(form, "person[is_human]"); ok {
		person.IsHuman = value == "1"
	}
	person.Vehicles = form["person[vehicles][]"]
	person.Tags = form["person[tags][]"]
	if person.Name == "" {
		problems = append(problems, "First name can't be blank")
	}
	return person, problems
}

func (a *PeopleApp) person(w http.ResponseWriter, r *http.Request) (Person, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return Person{}, false
	}
	person, err := a.opts.Store.Get(id)
	if err != nil {
		http.NotFound(w, r)
		return Person{}, false
	}
	return person, true
}

func (a *PeopleApp) renderEdit(w http.ResponseWriter, r *http.Request, status int, person Person, problems []string) {
	a.render(w, r, status, "people/edit.html", map[string]any{
		"person":   personView(person),
		"colors":   choicesView(a.opts.Colors, person.FavoriteColor),
		"vehicles": choicesView(a.opts.Vehicles, person.Vehicles...),
		"tags":     choicesView(a.opts.Tags, person.Tags...),
		"errors":   problems,
	})
}

func (a *PeopleApp) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if cookie, err := r.Cookie(flashCookie); err == nil {
		if message, err := url.QueryUnescape(cookie.Value); err == nil {
			data["flash"] = message
		}
		http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})
	}

	var buf bytes.Buffer
	if err := a.renderer.Render(&buf, name, data); err != nil {
		a.opts.Logger.Error("render page", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func personView(p Person) map[string]any {
	return map[string]any{
		"id":             p.ID,
		"name":           p.Name,
		"last_name":      p.LastName,
		"biography":      p.Biography,
		"favorite_color": p.FavoriteColor,
		"age":            p.Age,
		"is_human":       p.IsHuman,
	}
}

func choicesView(choices []Choice, selected ...string) []map[string]any {
	out := make([]map[string]any, len(choices))
	for idx, choice := range choices {
		out[idx] = map[string]any{
			"value":    choice.Value,
			"label":    choice.Label,
			"selected": slices.Contains(selected, choice.Value),
		}
	}
	return out
}

func hasChoice(choices []Choice, value string) bool {
	for _, choice := range choices {
		if choice.Value == value {
			return true
		}
	}
	return false
}

func lastValue(form url.Values, key string) (string, bool) {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

func writeGuardError(w http.ResponseWriter, err error) {
	code := http.StatusForbidden
	var guardErr GuardError
	if errors.As(err, &guardErr) && guardErr.Status > 0 {
		code = guardErr.Status
	}
	http.Error(w, http.StatusText(code), code)
}

func normalizeBasePath(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" || basePath == "/" {
		return ""
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return strings.TrimRight(basePath, "/")
}
