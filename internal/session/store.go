// Package session хранит контроллеры формы по идентификатору сессии.
package session

import (
	"sync"
	"time"

	"github.com/Totarae/MCPBuilder/internal/form"
)

type entry struct {
	controller *form.Controller
	lastSeen   time.Time
}

// Store provides a thread-safe controller storage
type Store struct {
	data  map[string]*entry
	mutex sync.Mutex
	now   func() time.Time
}

// NewStore initializes a new Store
func NewStore() *Store {
	return &Store{
		data: make(map[string]*entry),
		now:  time.Now,
	}
}

// GetOrCreate возвращает контроллер сессии, создавая его через newFn при отсутствии.
func (s *Store) GetOrCreate(id string, newFn func() *form.Controller) *form.Controller {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, ok := s.data[id]
	if !ok {
		e = &entry{controller: newFn()}
		s.data[id] = e
	}
	e.lastSeen = s.now()
	return e.controller
}

// Get retrieves the controller by session id
func (s *Store) Get(id string) (*form.Controller, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	e, ok := s.data[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.controller, true
}

// Len количество живых сессий
func (s *Store) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.data)
}

// Sweep удаляет сессии, к которым не обращались дольше maxIdle, и возвращает их число.
// Контроллер с запросом в полёте не удаляется.
func (s *Store) Sweep(maxIdle time.Duration) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, e := range s.data {
		if e.lastSeen.After(cutoff) || e.controller.State().SubmitDisabled {
			continue
		}
		delete(s.data, id)
		removed++
	}
	return removed
}
