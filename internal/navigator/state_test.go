package navigator

import (
	"errors"
	"fmt"
	"testing"

	"flipnews/internal/models"
)

func pageOf(filter models.Filter, page, n int) models.PageResult {
	data := make([]models.Article, n)
	for i := range data {
		data[i] = models.Article{UUID: fmt.Sprintf("%s-p%d-%d", filter.Value, page, i)}
	}
	return models.PageResult{Meta: models.Meta{Returned: n, Limit: models.PageSize, Page: page}, Data: data}
}

// settle completes the single Load effect in effects with result.
func settle(t *testing.T, s State, effects []Effect, result models.PageResult, err error, opts Options) (State, []Effect) {
	t.Helper()
	var load Load
	found := false
	for _, e := range effects {
		if l, ok := e.(Load); ok {
			load, found = l, true
		}
	}
	if !found {
		t.Fatalf("Expected a Load effect, got %v", effects)
	}
	return Transition(s, Loaded{Load: load, Result: result, Err: err}, opts)
}

func loadedState(t *testing.T, category string, page, n int) State {
	t.Helper()
	s, effects := Transition(Initial(models.CategoryFilter("")), SetCategory{Category: category}, Options{})
	s, _ = settle(t, s, effects, pageOf(s.Filter, 1, n), nil, Options{})
	s.Page = page
	return s
}

func TestTransition_SetCategoryIssuesLoad(t *testing.T) {
	s, effects := Transition(Initial(models.CategoryFilter("")), SetCategory{Category: "sports"}, Options{})

	if s.Filter != models.CategoryFilter("sports") || s.Page != 1 || s.Index != 0 {
		t.Errorf("Unexpected state: %+v", s)
	}
	if s.Status != StatusLoading || !s.Busy {
		t.Errorf("Expected loading state, got %s busy=%v", s.Status, s.Busy)
	}
	if len(effects) != 1 {
		t.Fatalf("Expected 1 effect, got %d", len(effects))
	}
	load := effects[0].(Load)
	if load.Page != 1 || load.Direction != DirReset || load.Generation != s.Generation {
		t.Errorf("Unexpected load: %+v", load)
	}
}

func TestTransition_SearchAndCategoryAreExclusive(t *testing.T) {
	s, _ := Transition(Initial(models.CategoryFilter("")), SetCategory{Category: "sports"}, Options{})
	s, effects := Transition(s, SetSearch{Query: "climate"}, Options{})

	if s.Filter.Mode != models.FilterSearch || s.Filter.Category() != "" {
		t.Errorf("Expected search filter only, got %v", s.Filter)
	}
	if effects[0].(Load).Filter.Category() != "" {
		t.Error("Expected load without a category")
	}

	s, _ = Transition(s, SetCategory{Category: "science"}, Options{})
	if s.Filter.Mode != models.FilterCategory || s.Filter.Search() != "" {
		t.Errorf("Expected category filter only, got %v", s.Filter)
	}
}

func TestTransition_EmptySearchFallsBackToDefault(t *testing.T) {
	s, _ := Transition(Initial(models.CategoryFilter("")), SetSearch{Query: "  "}, Options{})
	if s.Filter != models.CategoryFilter(models.DefaultCategory) {
		t.Errorf("Expected default category, got %v", s.Filter)
	}
}

func TestTransition_NextWithinPage(t *testing.T) {
	s := loadedState(t, "tech", 1, 3)

	s, effects := Transition(s, Next{}, Options{})
	if s.Index != 1 || s.Page != 1 {
		t.Errorf("Expected index 1 page 1, got %d/%d", s.Index, s.Page)
	}
	if len(effects) != 1 || effects[0] != (Prefetch{Filter: s.Filter, Page: 2}) {
		t.Errorf("Expected prefetch of page 2, got %v", effects)
	}

	s, effects = Transition(s, Next{}, Options{})
	if s.Index != 2 || len(effects) != 0 {
		t.Errorf("Expected index 2 and no effects, got %d %v", s.Index, effects)
	}
}

func TestTransition_NextAcrossPage(t *testing.T) {
	s := loadedState(t, "tech", 1, 3)
	s.Index = 2

	s, effects := Transition(s, Next{}, Options{})
	load := effects[0].(Load)
	if load.Page != 2 || load.Direction != DirNext {
		t.Fatalf("Unexpected load: %+v", load)
	}
	if _, ok := s.Current(); !ok {
		t.Error("Expected current article to stay visible while loading")
	}

	s, effects = settle(t, s, effects, pageOf(s.Filter, 2, 3), nil, Options{})
	if s.Page != 2 || s.Index != 0 || s.Status != StatusReady {
		t.Errorf("Expected page 2 index 0, got %d/%d %s", s.Page, s.Index, s.Status)
	}
	if len(effects) != 1 || effects[0] != (Prefetch{Filter: s.Filter, Page: 1}) {
		t.Errorf("Expected prefetch of page 1, got %v", effects)
	}
}

func TestTransition_NextOnEmptyPageIsNoop(t *testing.T) {
	for _, policy := range []EndPolicy{EndPolicyProbe, EndPolicyStop} {
		t.Run(policy.String(), func(t *testing.T) {
			opts := Options{EndPolicy: policy}
			s := loadedState(t, "tech", 1, 3)
			s.Index = 2
			before, _ := s.Current()

			s, effects := Transition(s, Next{}, opts)
			s, _ = settle(t, s, effects, models.PageResult{}, nil, opts)

			after, _ := s.Current()
			if s.Page != 1 || s.Index != 2 || after.UUID != before.UUID || s.Status != StatusReady {
				t.Errorf("Expected unchanged state, got page %d index %d %s", s.Page, s.Index, s.Status)
			}
			if want := policy == EndPolicyProbe; s.CanNext() != want {
				t.Errorf("Expected CanNext=%v", want)
			}
		})
	}
}

func TestTransition_ExhaustedClearsOnFilterChange(t *testing.T) {
	opts := Options{EndPolicy: EndPolicyStop}
	s := loadedState(t, "tech", 1, 3)
	s.Index = 2
	s, effects := Transition(s, Next{}, opts)
	s, _ = settle(t, s, effects, models.PageResult{}, nil, opts)

	if _, effects = Transition(s, Next{}, opts); len(effects) != 0 {
		t.Errorf("Expected no load once exhausted, got %v", effects)
	}

	s, effects = Transition(s, SetCategory{Category: "science"}, opts)
	s, _ = settle(t, s, effects, pageOf(s.Filter, 1, 3), nil, opts)
	if s.Exhausted || !s.CanNext() {
		t.Error("Expected a new filter to clear exhaustion")
	}
}

func TestTransition_PrevLandsOnLastItem(t *testing.T) {
	s := loadedState(t, "tech", 3, 3)

	s, effects := Transition(s, Prev{}, Options{})
	load := effects[0].(Load)
	if load.Page != 2 || load.Direction != DirPrev {
		t.Fatalf("Unexpected load: %+v", load)
	}

	s, _ = settle(t, s, effects, pageOf(s.Filter, 2, 2), nil, Options{})
	if s.Page != 2 || s.Index != 1 {
		t.Errorf("Expected page 2 index 1, got %d/%d", s.Page, s.Index)
	}
}

func TestTransition_PrevAtStartIsNoop(t *testing.T) {
	s := loadedState(t, "tech", 1, 3)
	if s.CanPrev() {
		t.Error("Expected CanPrev to be false at page 1 index 0")
	}

	next, effects := Transition(s, Prev{}, Options{})
	if len(effects) != 0 || next.Page != 1 || next.Index != 0 || next.Generation != s.Generation {
		t.Errorf("Expected no-op, got %+v %v", next, effects)
	}
}

func TestTransition_PrevWithinPage(t *testing.T) {
	s := loadedState(t, "tech", 2, 3)
	s.Index = 1

	s, effects := Transition(s, Prev{}, Options{})
	if s.Index != 0 {
		t.Errorf("Expected index 0, got %d", s.Index)
	}
	if len(effects) != 1 || effects[0] != (Prefetch{Filter: s.Filter, Page: 1}) {
		t.Errorf("Expected prefetch of page 1, got %v", effects)
	}
}

func TestTransition_StaleLoadDiscarded(t *testing.T) {
	s, first := Transition(Initial(models.CategoryFilter("")), SetSearch{Query: "election"}, Options{})
	s, second := Transition(s, SetCategory{Category: "tech"}, Options{})

	stale := first[0].(Load)
	s, _ = Transition(s, Loaded{Load: stale, Result: pageOf(stale.Filter, 1, 3)}, Options{})
	if s.Status != StatusLoading || s.Loaded.Len() != 0 {
		t.Errorf("Expected stale result to be dropped, got %s with %d items", s.Status, s.Loaded.Len())
	}

	s, _ = settle(t, s, second, pageOf(s.Filter, 1, 3), nil, Options{})
	a, _ := s.Current()
	if a.UUID != "tech-p1-0" {
		t.Errorf("Expected tech article, got %s", a.UUID)
	}
}

func TestTransition_NavigationIgnoredWhileBusy(t *testing.T) {
	s := loadedState(t, "tech", 1, 3)
	s.Index = 2
	s, _ = Transition(s, Next{}, Options{})

	next, effects := Transition(s, Next{}, Options{})
	if len(effects) != 0 || next.Generation != s.Generation {
		t.Errorf("Expected Next to be ignored while busy, got %v", effects)
	}
	if _, effects = Transition(s, Prev{}, Options{}); len(effects) != 0 {
		t.Errorf("Expected Prev to be ignored while busy, got %v", effects)
	}
}

func TestTransition_ErrorAndRetry(t *testing.T) {
	s, effects := Transition(Initial(models.CategoryFilter("")), SetSearch{Query: "election"}, Options{})
	boom := errors.New("auth failed")
	s, _ = settle(t, s, effects, models.PageResult{}, boom, Options{})

	if s.Status != StatusError || !errors.Is(s.Err, boom) || s.Busy {
		t.Fatalf("Expected error state, got %s %v", s.Status, s.Err)
	}
	if _, effects = Transition(s, Next{}, Options{}); len(effects) != 0 {
		t.Error("Expected Next to be ignored in error state")
	}

	s, effects = Transition(s, Retry{}, Options{})
	load := effects[0].(Load)
	if load.Filter != models.SearchFilter("election") || load.Page != 1 || load.Direction != DirReset {
		t.Errorf("Unexpected retry load: %+v", load)
	}
	s, _ = settle(t, s, effects, pageOf(s.Filter, 1, 3), nil, Options{})
	if s.Status != StatusReady || s.Err != nil {
		t.Errorf("Expected ready state after retry, got %s", s.Status)
	}
}

func TestTransition_RetryOnlyAfterError(t *testing.T) {
	s := loadedState(t, "tech", 1, 3)
	if _, effects := Transition(s, Retry{}, Options{}); len(effects) != 0 {
		t.Errorf("Expected no effects, got %v", effects)
	}
}

func TestTransition_EmptyFirstPage(t *testing.T) {
	s, effects := Transition(Initial(models.CategoryFilter("")), SetCategory{Category: "nothing"}, Options{})
	s, _ = settle(t, s, effects, models.PageResult{}, nil, Options{})

	if s.Status != StatusEmpty || s.CanNext() || s.CanPrev() {
		t.Errorf("Unexpected empty state: %+v", s)
	}
	if _, ok := s.Current(); ok {
		t.Error("Expected no current article")
	}
	if _, effects = Transition(s, Next{}, Options{}); len(effects) != 0 {
		t.Error("Expected Next on an empty page to do nothing")
	}
}

func TestTransition_FavoritesView(t *testing.T) {
	s := loadedState(t, "tech", 2, 3)
	s.Index = 1
	s, _ = Transition(s, FavoritesChanged{Len: 2}, Options{})
	s, _ = Transition(s, ShowFavorites{}, Options{})

	if s.View != ViewFavorites || s.FavIndex != 0 || s.CanPrev() || !s.CanNext() {
		t.Fatalf("Unexpected favorites state: %+v", s)
	}

	s, effects := Transition(s, Next{}, Options{})
	if s.FavIndex != 1 || len(effects) != 0 || s.CanNext() {
		t.Errorf("Expected strict bounds at the last favorite, got %d", s.FavIndex)
	}
	s, _ = Transition(s, Next{}, Options{})
	if s.FavIndex != 1 {
		t.Errorf("Expected to stay at the last favorite, got %d", s.FavIndex)
	}

	s, _ = Transition(s, FavoritesChanged{Len: 1}, Options{})
	if s.FavIndex != 0 {
		t.Errorf("Expected index clamped to 0, got %d", s.FavIndex)
	}

	s, _ = Transition(s, ShowNews{}, Options{})
	if s.View != ViewNews || s.Page != 2 || s.Index != 1 {
		t.Errorf("Expected news state untouched, got %+v", s)
	}
}

func TestParseEndPolicy(t *testing.T) {
	tests := map[string]EndPolicy{"": EndPolicyProbe, "probe": EndPolicyProbe, "STOP": EndPolicyStop}
	for in, want := range tests {
		got, err := ParseEndPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseEndPolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseEndPolicy("forever"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}
