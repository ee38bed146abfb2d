package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/fetch"
	"github.com/abelbrown/rickdex/internal/otel"
	"github.com/abelbrown/rickdex/internal/state"
)

const (
	defaultDebounce  = 500 * time.Millisecond
	defaultThreshold = 5
	noticeDuration   = 3 * time.Second
)

// Options configures an App.
type Options struct {
	Session *state.Session
	Ring    *otel.Ring      // debug overlay source, may be nil
	Events  *otel.Logger    // may be nil
	MaxID   state.MaxIDFunc // nil selects character.DefaultMaxID

	SearchDebounce    time.Duration
	LoadMoreThreshold int

	// OnTotal receives the character count reported by every unfiltered
	// first page. The entrypoint uses it to move the valid id range.
	OnTotal func(total int)
}

type inputMode int

const (
	inputNone inputMode = iota
	inputName
	inputID
)

// App is the root Bubble Tea model.
// App holds the session services by reference; all network work happens in
// the commands they return, and results come back through Update.
type App struct {
	session   *state.Session
	ring      *otel.Ring
	events    *otel.Logger
	onTotal   func(int)
	maxIDFn   state.MaxIDFunc
	debounce  time.Duration
	threshold int

	input     textinput.Model
	inputMode inputMode
	searchSeq int

	spinner    spinner.Model
	pane       viewport.Model
	detailOpen bool

	cursor    int
	source    state.DisplaySource
	notice    string
	noticeSeq int
	showDebug bool

	width  int
	height int
	ready  bool
}

// NewApp creates an App over opts.Session.
func NewApp(opts Options) App {
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = defaultDebounce
	}
	if opts.MaxID == nil {
		opts.MaxID = state.FixedMaxID(character.DefaultMaxID)
	}
	if opts.LoadMoreThreshold <= 0 {
		opts.LoadMoreThreshold = defaultThreshold
	}

	ti := textinput.New()
	ti.CharLimit = 64
	ti.PromptStyle = SearchBarPrompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StatusBarKey

	return App{
		session:   opts.Session,
		ring:      opts.Ring,
		events:    opts.Events,
		onTotal:   opts.OnTotal,
		maxIDFn:   opts.MaxID,
		debounce:  opts.SearchDebounce,
		threshold: opts.LoadMoreThreshold,
		input:     ti,
		spinner:   sp,
		pane:      viewport.New(80, 20),
	}
}

// Init loads the first page.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.session.List.Load(1), a.spinner.Tick)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
	}

	next, cmd := a.update(msg)
	if next.detailOpen {
		next.pane.SetContent(next.detailContent())
	}
	return next, cmd
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.pane.Width = max(msg.Width-4, 20)
		a.pane.Height = max(msg.Height-6, 3)
		a.input.Width = max(msg.Width-8, 10)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case searchDebounced:
		if msg.Seq != a.searchSeq {
			return a, nil
		}
		cmd := a.session.Search.SearchByName(msg.Text)
		a.syncCursor()
		return a, cmd

	case noticeExpired:
		if msg.Seq == a.noticeSeq {
			a.notice = ""
		}
		return a, nil

	case state.PageLoadedMsg:
		cmd := a.session.Update(msg)
		if msg.Err == nil && msg.Page == 1 && msg.Filters.IsZero() && a.onTotal != nil {
			a.onTotal(msg.Result.Info.Count)
		}
		a.syncCursor()
		return a, tea.Batch(cmd, a.maybeLoadMore())
	}

	cmd := a.session.Update(msg)
	a.syncCursor()
	if a.inputMode != inputNone {
		// Cursor blink ticks.
		var icmd tea.Cmd
		a.input, icmd = a.input.Update(msg)
		cmd = tea.Batch(cmd, icmd)
	}
	return a, cmd
}

// syncCursor resets the cursor when the browse view switches between the
// list and search results, and keeps it inside the displayed rows.
func (a *App) syncCursor() {
	d := a.session.Display()
	if d.Source != a.source {
		a.source = d.Source
		a.cursor = 0
	}
	if a.cursor >= len(d.Items) {
		a.cursor = len(d.Items) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// maybeLoadMore requests the next page once the cursor is within the
// threshold of the last loaded row.
func (a App) maybeLoadMore() tea.Cmd {
	d := a.session.Display()
	if d.Source != state.ShowList || !d.HasNextPage || d.IsLoading || d.Err != nil {
		return nil
	}
	if len(d.Items)-1-a.cursor > a.threshold {
		return nil
	}
	return a.session.List.LoadMore()
}

// flash shows text in the notice line until it expires.
func (a *App) flash(text string) tea.Cmd {
	a.noticeSeq++
	a.notice = text
	seq := a.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpired{Seq: seq}
	})
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (App, tea.Cmd) {
	key := msg.String()
	a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: key})

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if a.inputMode != inputNone {
		return a.handleInputKey(msg)
	}
	if key == "D" {
		a.showDebug = !a.showDebug
		return a, nil
	}
	if a.showDebug {
		if key == "esc" {
			a.showDebug = false
		}
		return a, nil
	}
	if key == "q" {
		return a, tea.Quit
	}
	if a.detailOpen {
		return a.handleDetailKey(msg)
	}
	return a.handleBrowseKey(key)
}

func (a App) handleBrowseKey(key string) (App, tea.Cmd) {
	d := a.session.Display()

	switch key {
	case "j", "down":
		if a.cursor < len(d.Items)-1 {
			a.cursor++
		}
		return a, a.maybeLoadMore()

	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "home":
		a.cursor = 0
		return a, nil

	case "G", "end":
		if len(d.Items) > 0 {
			a.cursor = len(d.Items) - 1
		}
		return a, a.maybeLoadMore()

	case "enter":
		if a.cursor >= len(d.Items) {
			return a, nil
		}
		return a.openDetail(d.Items[a.cursor].ID)

	case "/":
		a.inputMode = inputName
		a.input.Prompt = "/ "
		a.input.Placeholder = "search by name"
		a.input.SetValue(a.session.Search.View().Query)
		a.input.CursorEnd()
		return a, a.input.Focus()

	case "#":
		a.inputMode = inputID
		a.input.Prompt = "# "
		a.input.Placeholder = fmt.Sprintf("character id (1-%d)", a.maxID())
		a.input.SetValue("")
		return a, a.input.Focus()

	case "esc":
		if a.session.Search.Active() || a.session.Search.View().Err != nil {
			a.searchSeq++
			a.session.Search.Clear()
			a.syncCursor()
		}
		return a, nil

	case "s":
		f := a.session.List.View().Filters
		f.Status = nextStatus(f.Status)
		a.cursor = 0
		return a, a.session.List.ApplyFilters(f)

	case "g":
		f := a.session.List.View().Filters
		f.Gender = nextGender(f.Gender)
		a.cursor = 0
		return a, a.session.List.ApplyFilters(f)

	case "c":
		if a.session.List.View().Filters.IsZero() {
			return a, nil
		}
		a.cursor = 0
		return a, a.session.List.ClearFilters()

	case "r":
		return a, a.retry(d)
	}

	return a, nil
}

// retry repeats whatever the browse view is showing. A failed later page is
// requested again without discarding the rows already loaded.
func (a *App) retry(d state.Display) tea.Cmd {
	if d.Source == state.ShowSearch {
		sv := a.session.Search.View()
		switch sv.Mode {
		case state.SearchByName:
			return a.session.Search.SearchByName(sv.Query)
		case state.SearchByID:
			return a.session.Search.SearchByID(sv.SelectedID)
		}
		return nil
	}
	if d.Err != nil && len(d.Items) > 0 {
		return a.session.List.LoadMore()
	}
	a.cursor = 0
	return a.session.List.Refresh()
}

func (a App) handleInputKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeInput()
		a.session.Search.Clear()
		a.syncCursor()
		return a, nil

	case "enter":
		text := a.input.Value()
		mode := a.inputMode
		a.closeInput()
		if mode == inputName {
			cmd := a.session.Search.SearchByName(text)
			a.syncCursor()
			return a, cmd
		}
		id, err := character.ParseID(text)
		if err != nil {
			return a, a.flash(fmt.Sprintf("Enter a character id between 1 and %d.", a.maxID()))
		}
		cmd := a.session.Search.SearchByID(id)
		a.syncCursor()
		return a, cmd
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if a.inputMode != inputName || a.input.Value() == before {
		return a, cmd
	}

	a.searchSeq++
	seq, text := a.searchSeq, a.input.Value()
	return a, tea.Batch(cmd, tea.Tick(a.debounce, func(time.Time) tea.Msg {
		return searchDebounced{Seq: seq, Text: text}
	}))
}

// closeInput hides the search bar and invalidates pending debounce ticks.
func (a *App) closeInput() {
	a.searchSeq++
	a.inputMode = inputNone
	a.input.Blur()
}

func (a App) openDetail(id int) (App, tea.Cmd) {
	a.detailOpen = true
	a.notice = ""
	a.pane.GotoTop()
	if a.session.AI.CharacterID() != id {
		a.session.AI.Clear()
	}
	return a, a.session.Detail.FetchByID(id)
}

func (a App) handleDetailKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		a.detailOpen = false
		a.notice = ""
		a.session.Detail.Close()
		a.session.AI.Clear()
		return a, nil

	case "n", "right":
		return a.step(a.session.Detail.GoNext)

	case "p", "left":
		return a.step(a.session.Detail.GoPrev)

	case "a":
		dv := a.session.Detail.View()
		if dv.Character == nil || dv.Character.ID != dv.ID || dv.IsLoading {
			return a, nil
		}
		if a.session.AI.View(dv.ID).IsGenerating {
			return a, nil
		}
		return a, a.session.AI.Generate(*dv.Character)

	case "r":
		return a, a.session.Detail.Refresh()
	}

	var cmd tea.Cmd
	a.pane, cmd = a.pane.Update(msg)
	return a, cmd
}

// step moves the detail pane with move, or flashes the limit notice.
func (a App) step(move func() (tea.Cmd, error)) (App, tea.Cmd) {
	cmd, err := move()
	if err != nil {
		return a, a.flash(limitNotice(err))
	}
	a.notice = ""
	a.session.AI.Clear()
	a.pane.GotoTop()
	return a, cmd
}

func (a App) maxID() int {
	return a.maxIDFn()
}

func (a App) detailContent() string {
	dv := a.session.Detail.View()
	return renderDetail(dv, a.session.AI.View(dv.ID), a.pane.Width, a.spinner.View())
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.showDebug {
		focus := 0
		if a.detailOpen {
			focus = a.session.Detail.View().ID
		}
		return debugOverlay(a.ring, focus, a.width, a.height-1) + "\n" + debugStatusBar(a.width)
	}

	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	b.WriteString(a.renderSearchLine())
	b.WriteString("\n")

	// Header, search line and status bar take one line each.
	contentHeight := a.height - 3
	if a.notice != "" {
		contentHeight--
	}

	d := a.session.Display()
	if a.detailOpen {
		b.WriteString(DetailPanel.Width(a.width - 2).Render(a.pane.View()))
		b.WriteString("\n")
	} else {
		b.WriteString(RenderBrowse(d, a.cursor, a.width, contentHeight, a.spinner.View()))
	}

	if a.notice != "" {
		b.WriteString(NoticeStyle.Render(a.notice))
		b.WriteString("\n")
	}

	if a.detailOpen {
		b.WriteString(RenderDetailStatusBar(a.session.Detail.View(), a.width))
	} else {
		b.WriteString(RenderStatusBar(d, a.cursor, a.width, a.session.List.View().Filters))
	}
	return b.String()
}

func (a App) renderHeader() string {
	lv := a.session.List.View()
	meta := ""
	if lv.TotalCount > 0 {
		meta = fmt.Sprintf("%d characters", lv.TotalCount)
		if lv.Cursor.Total > 0 {
			meta += fmt.Sprintf(", page %d/%d", lv.Cursor.Current, lv.Cursor.Total)
		}
	}
	return Title.Render("rickdex") + MetaItem.Render(meta)
}

func (a App) renderSearchLine() string {
	if a.inputMode != inputNone {
		return SearchBar.Width(a.width).Render(a.input.View())
	}

	sv := a.session.Search.View()
	switch {
	case sv.IsSearching:
		return SearchBarCount.Render(" " + a.spinner.View() + " searching " + describeSearch(sv))
	case sv.Active && sv.Err != nil:
		return SearchBarCount.Render(" "+describeSearch(sv)+": ") + ErrorStyle.Render(fetch.Message(sv.Err))
	case sv.Active:
		return SearchBarCount.Render(fmt.Sprintf(" %s: %d found, esc to clear", describeSearch(sv), len(sv.Results)))
	case sv.Err != nil:
		return ErrorStyle.Render(fetch.Message(sv.Err))
	}
	return MetaItem.Render(" / search by name   # jump to id")
}

func describeSearch(sv state.SearchView) string {
	if sv.Mode == state.SearchByID {
		return fmt.Sprintf("id #%d", sv.SelectedID)
	}
	return fmt.Sprintf("name %q", sv.Query)
}

var statusCycle = []character.Status{"", character.StatusAlive, character.StatusDead, character.StatusUnknown}

var genderCycle = []character.Gender{"", character.GenderFemale, character.GenderMale, character.GenderGenderless, character.GenderUnknown}

func nextStatus(s character.Status) character.Status {
	for i, v := range statusCycle {
		if v == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return ""
}

func nextGender(g character.Gender) character.Gender {
	for i, v := range genderCycle {
		if v == g {
			return genderCycle[(i+1)%len(genderCycle)]
		}
	}
	return ""
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// DetailOpen reports whether the detail pane is showing (for testing).
func (a App) DetailOpen() bool {
	return a.detailOpen
}

// Notice returns the transient notice line (for testing).
func (a App) Notice() string {
	return a.notice
}
