// Package navigator implements one-article-at-a-time browsing over paged
// news results. Transition is a pure state machine; Engine drives it
// against a Loader and notifies subscribers of every new state.
package navigator

import (
	"fmt"
	"strings"

	"flipnews/internal/models"
)

// EndPolicy decides what happens after a forward load comes back empty.
type EndPolicy int

const (
	// EndPolicyProbe keeps forward navigation enabled and asks again on
	// every Next.
	EndPolicyProbe EndPolicy = iota
	// EndPolicyStop disables forward navigation until the filter changes.
	EndPolicyStop
)

func (p EndPolicy) String() string {
	if p == EndPolicyStop {
		return "stop"
	}
	return "probe"
}

// ParseEndPolicy accepts "probe" or "stop".
func ParseEndPolicy(s string) (EndPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "probe":
		return EndPolicyProbe, nil
	case "stop":
		return EndPolicyStop, nil
	}
	return EndPolicyProbe, fmt.Errorf("unknown end policy %q", s)
}

// Options tune Transition.
type Options struct {
	EndPolicy EndPolicy
}

// Status describes what the news view can show.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusEmpty
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	}
	return "unknown"
}

type View int

const (
	ViewNews View = iota
	ViewFavorites
)

// Direction records why a foreground load was issued.
type Direction int

const (
	DirReset Direction = iota
	DirNext
	DirPrev
)

// State is the complete navigation state.
type State struct {
	Filter models.Filter
	Page   int
	Index  int
	Loaded models.PageResult
	Status Status
	Err    error

	// Busy is set while a foreground load is in flight.
	Busy bool
	// Exhausted is set under EndPolicyStop after an empty forward load.
	Exhausted bool
	// Generation tags foreground loads; completions carrying an older
	// generation are dropped.
	Generation uint64
	// Inflight is the last foreground load, reissued by Retry.
	Inflight Load

	View     View
	FavIndex int
	FavLen   int
}

// Initial returns the state for filter before its first page is loaded.
// Pair it with SetCategory or SetSearch to issue the load.
func Initial(filter models.Filter) State {
	return State{Filter: filter, Page: 1, Status: StatusLoading}
}

// Current returns the selected article in the news view.
func (s State) Current() (models.Article, bool) {
	if s.Index < 0 || s.Index >= s.Loaded.Len() {
		return models.Article{}, false
	}
	return s.Loaded.Data[s.Index], true
}

// CanPrev reports whether Prev can move.
func (s State) CanPrev() bool {
	if s.View == ViewFavorites {
		return s.FavIndex > 0
	}
	return s.Page > 1 || s.Index > 0
}

// CanNext reports whether Next may move. In the news view this is
// optimistic: past the loaded page it stays true unless nothing is loaded
// or the stream was marked exhausted.
func (s State) CanNext() bool {
	if s.View == ViewFavorites {
		return s.FavIndex+1 < s.FavLen
	}
	if s.Loaded.Len() == 0 {
		return false
	}
	if s.Index+1 < s.Loaded.Len() {
		return true
	}
	return !s.Exhausted
}

// Event is an input to Transition.
type Event interface{ event() }

type (
	SetCategory struct{ Category string }
	SetSearch   struct{ Query string }
	Next        struct{}
	Prev        struct{}
	Retry       struct{}

	// ShowFavorites switches to the favorites view at its first entry.
	ShowFavorites struct{}
	// ShowNews switches back to the untouched news view.
	ShowNews struct{}
	// FavoritesChanged reports the current size of the favorites set.
	FavoritesChanged struct{ Len int }

	// Loaded completes a foreground Load.
	Loaded struct {
		Load   Load
		Result models.PageResult
		Err    error
	}
)

func (SetCategory) event()      {}
func (SetSearch) event()        {}
func (Next) event()             {}
func (Prev) event()             {}
func (Retry) event()            {}
func (ShowFavorites) event()    {}
func (ShowNews) event()         {}
func (FavoritesChanged) event() {}
func (Loaded) event()           {}

// Effect is work Transition asks the driver to perform.
type Effect interface{ effect() }

// Load fetches a page in the foreground; its result must be fed back as a
// Loaded event.
type Load struct {
	Generation uint64
	Filter     models.Filter
	Page       int
	Direction  Direction
}

// Prefetch warms the cache for a page. Its outcome never reaches the state.
type Prefetch struct {
	Filter models.Filter
	Page   int
}

func (Load) effect()     {}
func (Prefetch) effect() {}

// Transition applies ev to s and returns the next state and the effects
// the driver must run.
func Transition(s State, ev Event, opts Options) (State, []Effect) {
	switch ev := ev.(type) {
	case SetCategory:
		return reset(s, models.CategoryFilter(ev.Category))
	case SetSearch:
		return reset(s, models.SearchFilter(ev.Query))
	case Next:
		if s.View == ViewFavorites {
			if s.FavIndex+1 < s.FavLen {
				s.FavIndex++
			}
			return s, nil
		}
		return next(s)
	case Prev:
		if s.View == ViewFavorites {
			if s.FavIndex > 0 {
				s.FavIndex--
			}
			return s, nil
		}
		return prev(s)
	case Retry:
		if s.Status != StatusError || s.Busy {
			return s, nil
		}
		s.Err = nil
		if s.Loaded.Len() == 0 {
			s.Status = StatusLoading
		} else {
			s.Status = StatusReady
		}
		load := s.Inflight
		load.Filter = s.Filter
		return issue(s, load)
	case ShowFavorites:
		s.View = ViewFavorites
		s.FavIndex = 0
		return s, nil
	case ShowNews:
		s.View = ViewNews
		return s, nil
	case FavoritesChanged:
		s.FavLen = ev.Len
		if s.FavIndex >= s.FavLen {
			s.FavIndex = max(s.FavLen-1, 0)
		}
		return s, nil
	case Loaded:
		return loaded(s, ev, opts)
	}
	return s, nil
}

func reset(s State, filter models.Filter) (State, []Effect) {
	s.Filter = filter
	s.Page = 1
	s.Index = 0
	s.Loaded = models.PageResult{}
	s.Status = StatusLoading
	s.Err = nil
	s.Exhausted = false
	s.View = ViewNews
	return issue(s, Load{Filter: filter, Page: 1, Direction: DirReset})
}

func next(s State) (State, []Effect) {
	if s.Busy || s.Loaded.Len() == 0 || s.Status == StatusError {
		return s, nil
	}
	if s.Index+1 < s.Loaded.Len() {
		s.Index++
		return s, prefetches(s)
	}
	if s.Exhausted {
		return s, nil
	}
	return issue(s, Load{Filter: s.Filter, Page: s.Page + 1, Direction: DirNext})
}

func prev(s State) (State, []Effect) {
	if s.Busy || s.Status == StatusError {
		return s, nil
	}
	if s.Index > 0 {
		s.Index--
		return s, prefetches(s)
	}
	if s.Page <= 1 {
		return s, nil
	}
	return issue(s, Load{Filter: s.Filter, Page: s.Page - 1, Direction: DirPrev})
}

func issue(s State, load Load) (State, []Effect) {
	s.Generation++
	load.Generation = s.Generation
	s.Busy = true
	s.Inflight = load
	return s, []Effect{load}
}

func loaded(s State, ev Loaded, opts Options) (State, []Effect) {
	if ev.Load.Generation != s.Generation || ev.Load.Filter != s.Filter {
		return s, nil
	}
	s.Busy = false

	if ev.Err != nil {
		s.Status = StatusError
		s.Err = ev.Err
		return s, nil
	}

	switch ev.Load.Direction {
	case DirReset:
		s.Loaded = ev.Result
		s.Page = ev.Load.Page
		s.Index = 0
		if ev.Result.Len() == 0 {
			s.Status = StatusEmpty
			return s, nil
		}
	case DirNext:
		if ev.Result.Len() == 0 {
			if opts.EndPolicy == EndPolicyStop {
				s.Exhausted = true
			}
			s.Status = StatusReady
			return s, nil
		}
		s.Loaded = ev.Result
		s.Page = ev.Load.Page
		s.Index = 0
	case DirPrev:
		if ev.Result.Len() == 0 {
			s.Status = StatusReady
			return s, nil
		}
		s.Loaded = ev.Result
		s.Page = ev.Load.Page
		s.Index = ev.Result.Len() - 1
		s.Exhausted = false
	}
	s.Status = StatusReady
	return s, prefetches(s)
}

// prefetches warms the next page once the second item is shown and the
// previous page when landing on the first item of a later page.
func prefetches(s State) []Effect {
	var effects []Effect
	if s.Index == 1 && !s.Exhausted {
		effects = append(effects, Prefetch{Filter: s.Filter, Page: s.Page + 1})
	}
	if s.Index == 0 && s.Page > 1 {
		effects = append(effects, Prefetch{Filter: s.Filter, Page: s.Page - 1})
	}
	return effects
}
