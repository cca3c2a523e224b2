package display

// Route names a screen. Transitions are always by name.
type Route string

const (
	RouteStart    Route = "Start"
	RouteLogin    Route = "Login"
	RouteRegister Route = "Register"
	RouteLoading  Route = "Loading"
	RouteHome     Route = "Home"
	RouteDetail   Route = "Detail"
	RouteMap      Route = "Map"
)

// Params is the optional payload of a transition. Detail reads ID.
type Params struct {
	ID string
}

type entry struct {
	route  Route
	params Params
	screen screen
}

// stack is the navigation history. The top entry is the visible screen.
type stack struct {
	entries []entry
}

func (s *stack) push(e entry) {
	s.entries = append(s.entries, e)
}

// pop removes the top entry. The root entry is never removed.
func (s *stack) pop() (entry, bool) {
	if len(s.entries) <= 1 {
		return entry{}, false
	}
	top := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return top, true
}

// reset drops the whole history and makes e the root.
func (s *stack) reset(e entry) {
	s.entries = []entry{e}
}

func (s *stack) top() (entry, bool) {
	if len(s.entries) == 0 {
		return entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

func (s *stack) depth() int { return len(s.entries) }
