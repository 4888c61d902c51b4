package testsupport

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrPersonNotFound reports an unknown person id.
var ErrPersonNotFound = errors.New("testsupport: person not found")

// Person is the record edited by the people app.
type Person struct {
	ID            int
	Name          string
	LastName      string
	Biography     string
	FavoriteColor string
	Age           int
	Vehicles      []string
	Tags          []string
	IsHuman       bool
}

// Alice is the record every people app starts with unless WithPeople
// replaces the seed.
func Alice() Person {
	return Person{
		ID:            1,
		Name:          "Alice",
		LastName:      "Cooper",
		Biography:     "Alice is fun",
		FavoriteColor: "blue",
		Age:           23,
	}
}

// Store keeps people in memory. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	people map[int]Person
	nextID int
}

// NewStore seeds a store. People without an id get the next free one.
func NewStore(seed ...Person) *Store {
	s := &Store{people: make(map[int]Person, len(seed)), nextID: 1}
	for _, person := range seed {
		s.Save(person)
	}
	return s
}

// Get returns a copy of the person with id.
func (s *Store) Get(id int) (Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	person, ok := s.people[id]
	if !ok {
		return Person{}, fmt.Errorf("%w: %d", ErrPersonNotFound, id)
	}
	return clonePerson(person), nil
}

// Save inserts or replaces person and returns the stored copy.
func (s *Store) Save(person Person) Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	if person.ID <= 0 {
		person.ID = s.nextID
	}
	if person.ID >= s.nextID {
		s.nextID = person.ID + 1
	}
	s.people[person.ID] = clonePerson(person)
	return clonePerson(person)
}

// All returns every person ordered by id. A non-empty query keeps people
// whose full name contains it, ignoring case.
func (s *Store) All(query string) []Person {
	s.mu.RLock()
	defer s.mu.RUnlock()
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Person, 0, len(s.people))
	for _, person := range s.people {
		if query != "" && !strings.Contains(strings.ToLower(person.Name+" "+person.LastName), query) {
			continue
		}
		out = append(out, clonePerson(person))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func clonePerson(p Person) Person {
	p.Vehicles = append([]string(nil), p.Vehicles...)
	p.Tags = append([]string(nil), p.Tags...)
	return p
}
