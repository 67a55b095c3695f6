package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"flipnews/internal/browser"
	"flipnews/internal/client"
	"flipnews/internal/config"
	"flipnews/internal/favorites"
	"flipnews/internal/models"
	"flipnews/internal/navigator"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Loader    *navigator.Loader
	Favorites *favorites.Store
	EndPolicy navigator.EndPolicy
	Category  string
	Search    string
	Logger    *log.Logger
	// Timeout bounds each foreground load.
	Timeout time.Duration
	// Open launches a URL; defaults to the system browser.
	Open func(string) error
}

type App struct {
	engine     *navigator.Engine
	favs       *favorites.Store
	open       func(string) error
	timeout    time.Duration
	categories []string
	initial    navigator.Event

	width  int
	height int

	searching   bool
	searchInput textinput.Model
	spinner     spinner.Model
	notice      string
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search news..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	engineOpts := []navigator.Option{navigator.WithEndPolicy(opts.EndPolicy)}
	if opts.Favorites != nil {
		engineOpts = append(engineOpts, navigator.WithFavorites(opts.Favorites))
	}
	if opts.Logger != nil {
		engineOpts = append(engineOpts, navigator.WithLogger(opts.Logger))
	}

	var initial navigator.Event = navigator.SetCategory{Category: opts.Category}
	if strings.TrimSpace(opts.Search) != "" {
		initial = navigator.SetSearch{Query: opts.Search}
	}

	open := opts.Open
	if open == nil {
		open = browser.Open
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &App{
		engine:      navigator.NewEngine(opts.Loader, engineOpts...),
		favs:        opts.Favorites,
		open:        open,
		timeout:     timeout,
		categories:  config.Categories,
		initial:     initial,
		searchInput: ti,
		spinner:     sp,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.dispatch(a.initial), a.spinner.Tick)
}

// dispatch runs ev against the engine off the update loop. Stale
// completions are dropped by the engine, so commands may finish in any
// order.
func (a *App) dispatch(ev navigator.Event) tea.Cmd {
	engine := a.engine
	timeout := a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = engine.Dispatch(ctx, ev)
		return stateChangedMsg{}
	}
}

func (a *App) openCmd(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return noticeMsg{text: err.Error()}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case stateChangedMsg:
		return a, nil

	case noticeMsg:
		a.notice = msg.text
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	if a.searching {
		return a.handleSearchKey(msg)
	}

	// Clear sticky notice on any keypress
	a.notice = ""

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "right", "l", " ", "space":
		return a, a.dispatch(navigator.Next{})
	case "left", "h":
		return a, a.dispatch(navigator.Prev{})
	case "/":
		a.searching = true
		a.searchInput.SetValue(a.engine.State().Filter.Search())
		a.searchInput.Focus()
		return a, textinput.Blink
	case "tab":
		return a, a.cycleCategory(1)
	case "shift+tab":
		return a, a.cycleCategory(-1)
	case "s":
		a.toggleFavorite()
		return a, nil
	case "f":
		if a.engine.State().View == navigator.ViewFavorites {
			a.engine.ShowNews()
		} else {
			a.engine.ShowFavorites()
		}
		return a, nil
	case "o", "enter":
		if article, ok := a.current(); ok {
			return a, a.openCmd(article.URL)
		}
		return a, nil
	case "r":
		return a, a.dispatch(navigator.Retry{})
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.searching = false
		a.searchInput.Blur()
		return a, nil
	case "enter":
		a.searching = false
		a.searchInput.Blur()
		return a, a.dispatch(navigator.SetSearch{Query: a.searchInput.Value()})
	}
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

// cycleCategory moves to the next category tab. From a search it starts
// at the first category.
func (a *App) cycleCategory(step int) tea.Cmd {
	current := a.engine.State().Filter.Category()
	idx := -1
	for i, c := range a.categories {
		if c == current {
			idx = i
			break
		}
	}
	n := len(a.categories)
	if idx < 0 {
		idx = 0
	} else {
		idx = ((idx+step)%n + n) % n
	}
	return a.dispatch(navigator.SetCategory{Category: a.categories[idx]})
}

// current returns the article on screen in either view.
func (a *App) current() (models.Article, bool) {
	s := a.engine.State()
	if s.View == navigator.ViewFavorites {
		if a.favs == nil {
			return models.Article{}, false
		}
		return a.favs.At(s.FavIndex)
	}
	return s.Current()
}

func (a *App) toggleFavorite() {
	if a.favs == nil {
		return
	}
	article, ok := a.current()
	if !ok {
		return
	}
	if _, err := a.favs.Toggle(article); err != nil {
		a.notice = err.Error()
	}
	_ = a.engine.Dispatch(context.Background(), navigator.FavoritesChanged{Len: a.favs.Len()})
}

func (a *App) View() string {
	s := a.engine.State()
	width := a.width
	if width == 0 {
		width = 80
	}

	var header string
	if s.View == navigator.ViewFavorites {
		header = tabActiveStyle.Render("favorites")
	} else {
		header = renderTabs(a.categories, s.Filter.Category(), s.Filter.Search())
	}

	body := a.renderBody(s, width)

	var footer string
	switch {
	case a.searching:
		footer = a.searchInput.View()
	case a.notice != "":
		footer = errorStyle.Render(a.notice)
	default:
		footer = renderStatusBar(a.position(s), "←/→ move  / search  tab category  s save  f favorites  o open  q quit", width)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", footer)
}

func (a *App) renderBody(s navigator.State, width int) string {
	if s.View == navigator.ViewFavorites {
		article, ok := a.current()
		if !ok {
			return renderMessage("No favorites yet. Press s on an article to save it.", width)
		}
		return renderCard(article, true, width)
	}

	switch s.Status {
	case navigator.StatusLoading:
		return renderMessage(a.spinner.View()+" Loading news...", width)
	case navigator.StatusEmpty:
		return renderMessage("No articles found.", width)
	case navigator.StatusError:
		return renderMessage(errorStyle.Render("Error: "+errorText(s.Err))+"\n\nPress r to retry.", width)
	}

	article, ok := s.Current()
	if !ok {
		return renderMessage("No articles found.", width)
	}
	favorite := a.favs != nil && a.favs.IsFavorite(article.UUID)
	card := renderCard(article, favorite, width)
	if s.Busy {
		card += "\n" + a.spinner.View()
	}
	return card
}

func (a *App) position(s navigator.State) string {
	if s.View == navigator.ViewFavorites {
		if s.FavLen == 0 {
			return "0 saved"
		}
		return fmt.Sprintf("%d/%d saved", s.FavIndex+1, s.FavLen)
	}
	if s.Loaded.Len() == 0 {
		return fmt.Sprintf("page %d", s.Page)
	}
	return fmt.Sprintf("%s  page %d", pagerDots(s.Index, s.Loaded.Len()), s.Page)
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

// Run starts the TUI and blocks until the user quits.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	unsubscribe := app.engine.Subscribe(func(navigator.State) {
		go p.Send(stateChangedMsg{})
	})
	defer unsubscribe()
	_, err := p.Run()
	app.engine.Wait()
	return err
}
