package terminal

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRevealFor is how long a decrypted target stays readable.
const DefaultRevealFor = 30 * time.Second

// HistoryEntry is one scrollback record. Command is empty for system messages.
type HistoryEntry struct {
	Command   string    `json:"command"`
	Result    Result    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the host-side state of one terminal: scrollback, location,
// cosmetic toggles and the recall cursor. It is owned by a single host but
// guarded by a mutex because a web visitor can have overlapping requests.
type Session struct {
	ID string

	mu        sync.Mutex
	interp    *Interpreter
	clock     func() time.Time
	revealFor time.Duration
	navigate  func(Section)

	path     string
	matrix   bool
	entries  []HistoryEntry
	cursor   int
	revealed map[string]*time.Timer
	created  time.Time
	lastSeen time.Time
	closed   bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock overrides the wall clock used for date and timestamps.
func WithClock(clock func() time.Time) SessionOption {
	return func(s *Session) { s.clock = clock }
}

// WithRevealFor sets how long decrypted targets stay readable.
func WithRevealFor(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.revealFor = d
		}
	}
}

// WithPath sets the starting location.
func WithPath(path string) SessionOption {
	return func(s *Session) { s.path = path }
}

// OnNavigate registers a hook called (with the session lock held) after a
// successful cd. Hooks must not call back into the session.
func OnNavigate(fn func(Section)) SessionOption {
	return func(s *Session) { s.navigate = fn }
}

// NewSession creates a session whose scrollback starts with the welcome banner.
func NewSession(interp *Interpreter, opts ...SessionOption) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		interp:    interp,
		clock:     time.Now,
		revealFor: DefaultRevealFor,
		path:      "/",
		cursor:    -1,
		revealed:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}

	now := s.clock()
	s.created = now
	s.lastSeen = now
	s.entries = append(s.entries, HistoryEntry{
		Result:    ok(fmt.Sprintf(WelcomeText, now.Format(DateLayout))),
		Timestamp: now,
	})
	return s
}

// Submit runs one input line. Blank input is rejected and leaves the
// scrollback untouched; the boolean reports whether the line was dispatched.
func (s *Session) Submit(input string) (Result, bool) {
	line := strings.TrimSpace(input)
	if line == "" {
		return Result{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.lastSeen = now
	s.cursor = -1

	cmd := Parse(line)
	res := s.interp.Run(sessionEnv{s}, cmd)

	if res.ClearScreen {
		s.entries = nil
	} else {
		s.entries = append(s.entries, HistoryEntry{Command: input, Result: res, Timestamp: now})
	}

	if cmd.Verb == VerbMatrix {
		s.matrix = !s.matrix
	}
	if res.SideEffect != "" {
		s.reveal(res.SideEffect)
	}
	return res, true
}

func (s *Session) reveal(target string) {
	if s.closed {
		return
	}
	if _, already := s.revealed[target]; already {
		return
	}
	s.revealed[target] = time.AfterFunc(s.revealFor, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.revealed, target)
	})
}

// Revealed reports whether target is currently decrypted.
func (s *Session) Revealed(target string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, found := s.revealed[target]
	return found
}

// Entries returns a copy of the scrollback.
func (s *Session) Entries() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Commands lists the submitted command lines in the scrollback, oldest first.
func (s *Session) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commands()
}

func (s *Session) commands() []string {
	var out []string
	for _, e := range s.entries {
		if e.Command != "" {
			out = append(out, e.Command)
		}
	}
	return out
}

// Previous walks the recall cursor back one command (arrow up).
func (s *Session) Previous() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmds := s.commands()
	if len(cmds) == 0 {
		return "", false
	}
	if s.cursor < len(cmds)-1 {
		s.cursor++
	}
	return cmds[len(cmds)-1-s.cursor], true
}

// Next walks the recall cursor forward (arrow down). Stepping past the newest
// command returns an empty line.
func (s *Session) Next() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmds := s.commands()
	switch {
	case s.cursor > 0 && s.cursor < len(cmds):
		s.cursor--
		return cmds[len(cmds)-1-s.cursor], true
	case s.cursor == 0:
		s.cursor = -1
		return "", true
	}
	return "", false
}

// Complete finishes a partial input. A bare word completes against the
// command list; after "cd " it completes section names.
func (s *Session) Complete(prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	if rest, isCD := strings.CutPrefix(prefix, "cd "); isCD {
		rest = strings.TrimLeft(rest, " ")
		if rest == "" {
			return "", false
		}
		for _, sec := range s.interp.dispatcher.routes.Sections() {
			if strings.HasPrefix(sec.Key, rest) {
				return "cd " + sec.Key, true
			}
		}
		return "", false
	}
	for _, w := range completionWords {
		if strings.HasPrefix(w, prefix) {
			return w, true
		}
	}
	return "", false
}

// Path returns the current logical location.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// SetPath records a location change made outside the terminal, such as a
// click on the navigation bar.
func (s *Session) SetPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	s.lastSeen = s.clock()
}

// MatrixEnabled reports whether the matrix rain is toggled on.
func (s *Session) MatrixEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matrix
}

// LastSeen returns the time of the last submitted command or location change.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close cancels pending re-mask timers. The scrollback stays readable.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for target, t := range s.revealed {
		t.Stop()
		delete(s.revealed, target)
	}
	s.closed = true
}

// sessionEnv adapts a locked Session to Env.
type sessionEnv struct {
	s *Session
}

func (e sessionEnv) Navigate(sec Section) {
	e.s.path = sec.Path
	if e.s.navigate != nil {
		e.s.navigate(sec)
	}
}

func (e sessionEnv) CurrentPath() string { return e.s.path }

func (e sessionEnv) Now() time.Time { return e.s.clock() }

func (e sessionEnv) Commands() []string { return e.s.commands() }
