package core

// Terminal is the routing sentinel that ends an orchestration run.
const Terminal = "END"

// State is the orchestration state: the conversation log plus the name of
// the actor chosen to run next (or Terminal). The supervisor is the only
// writer of Next; actors only append to the log.
type State struct {
	Log  *Log
	Next string
}

// NewState creates a fresh state seeded with a single user query.
func NewState(query string) *State {
	return SeedState(NewUserMessage(query))
}

// SeedState creates a fresh state whose log holds exactly msg.
func SeedState(msg Message) *State {
	return &State{Log: NewLog(msg)}
}

// Fork returns a state with a cloned log and no routing decision. Actors run
// against a fork so scratch messages never reach the shared log.
func (s *State) Fork() *State {
	return &State{Log: s.Log.Clone()}
}

// Latest is shorthand for s.Log.Latest().
func (s *State) Latest() (Message, bool) {
	if s == nil || s.Log == nil {
		return Message{}, false
	}
	return s.Log.Latest()
}

// IsTerminal reports whether the routing field holds the terminal sentinel.
func (s *State) IsTerminal() bool { return s.Next == Terminal }
