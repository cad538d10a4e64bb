package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/sonorous/internal/formatter"
	"github.com/desertthunder/sonorous/internal/models"
	"github.com/desertthunder/sonorous/internal/server"
	"github.com/desertthunder/sonorous/internal/session"
)

// Pane is the part of the session view receiving navigation keys.
type Pane int

const (
	TracksPane Pane = iota
	StoryPane
)

// Options contains the dependencies of a [Model].
type Options struct {
	Executor    *session.Executor
	Credentials models.Credentials
	RedirectURI string
	AuthURL     string
	Callbacks   <-chan server.Callback
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	exec        *session.Executor
	state       session.State
	creds       models.Credentials
	redirectURI string
	authURL     string
	callbacks   <-chan server.Callback
	waiting     bool
	status      string
	pane        Pane
	width       int
	height      int
	tracks      list.Model
	input       textinput.Model
	story       viewport.Model
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Executor == nil {
		opts.Executor = session.NewExecutor(session.ExecutorOpts{})
	}

	input := textinput.New()
	input.Placeholder = "Spotify client id"
	input.CharLimit = 64
	input.SetValue(opts.Credentials.ClientID)
	input.Focus()

	tracks := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	tracks.Title = "Your journey"
	tracks.SetShowHelp(false)
	tracks.SetFilteringEnabled(false)
	tracks.DisableQuitKeybindings()

	return &Model{
		ctx:         ctx,
		exec:        opts.Executor,
		state:       session.NewState(),
		creds:       opts.Credentials,
		redirectURI: opts.RedirectURI,
		authURL:     opts.AuthURL,
		callbacks:   opts.Callbacks,
		tracks:      tracks,
		input:       input,
		story:       viewport.New(0, 0),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.ok)),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// State returns the current session snapshot.
func (m *Model) State() session.State {
	return m.state
}

// Init loads the stored credentials into the session and starts listening for callbacks.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.dispatch(session.Started{Credentials: m.creds}),
		m.waitForCallback(),
		m.spinner.Tick,
		textinput.Blink,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		switch msg.kind {
		case MsgSessionEvent:
			return m, m.dispatch(msg.data.(session.Event))
		case MsgCallback:
			cb := msg.data.(server.Callback)
			m.waiting = false
			if cb.Err != nil {
				m.status = fmt.Sprintf("Login failed: %v", cb.Err)
				return m, m.waitForCallback()
			}
			m.status = ""
			return m, tea.Batch(m.dispatch(session.CallbackReceived{Fragment: cb.Fragment}), m.waitForCallback())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

// View renders the UI based on the current session phase.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Sonorous"))
	b.WriteString("\n")

	if m.state.Notice != "" {
		b.WriteString(styles.warn.Render(m.state.Notice) + "\n\n")
	}
	if m.status != "" {
		b.WriteString(styles.err.Render(m.status) + "\n\n")
	}

	switch {
	case m.state.SettingsOpen:
		b.WriteString(m.renderSettings())
	case !m.state.LoggedIn():
		b.WriteString(m.renderLogin())
	default:
		b.WriteString(m.renderSession())
	}
	return b.String()
}

// dispatch feeds ev to the session and turns the resulting effects into commands.
func (m *Model) dispatch(ev session.Event) tea.Cmd {
	prev := m.state
	var effects []session.Effect
	m.state, effects = session.Update(m.state, ev)
	m.sync(prev)

	cmds := make([]tea.Cmd, 0, len(effects))
	for _, eff := range effects {
		if _, ok := eff.(session.Navigate); ok {
			m.waiting = true
			m.status = ""
		}
		cmds = append(cmds, m.perform(eff))
	}
	return tea.Batch(cmds...)
}

func (m *Model) perform(eff session.Effect) tea.Cmd {
	exec, ctx := m.exec, m.ctx
	return func() tea.Msg {
		if ev := exec.Run(ctx, eff); ev != nil {
			return eventMsg(ev)
		}
		return nil
	}
}

func (m *Model) waitForCallback() tea.Cmd {
	if m.callbacks == nil {
		return nil
	}

	ch, ctx := m.callbacks, m.ctx
	return func() tea.Msg {
		select {
		case cb := <-ch:
			return callbackMsg(cb)
		case <-ctx.Done():
			return nil
		}
	}
}

// sync copies state changes into the bubbles components.
func (m *Model) sync(prev session.State) {
	next := m.state

	if !sameTracks(prev.Tracks, next.Tracks) {
		m.tracks.SetItems(trackItems(next.Tracks))
	}

	if prev.Story != next.Story {
		m.story.SetContent(RenderStory(next.Story, m.story.Width))
		m.story.GotoTop()
		if next.Story != "" {
			m.pane = StoryPane
		}
	}
	if next.Story == "" {
		m.pane = TracksPane
	}

	if !prev.LoggedIn() && next.LoggedIn() {
		m.waiting = false
	}

	switch {
	case next.SettingsOpen && !prev.SettingsOpen:
		m.input.SetValue(next.ClientID)
		m.input.CursorEnd()
		m.input.Focus()
	case !next.SettingsOpen:
		m.input.Blur()
	}
}

func sameTracks(a, b []models.Track) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.input.Width = max(width-8, 20)

	left, right := m.columns()
	body := max(height-10, 5)
	m.tracks.SetSize(max(left-frameInset, 1), body)
	m.story.Width = max(right-frameInset, 1)
	m.story.Height = max(body-4, 3)
	m.story.SetContent(RenderStory(m.state.Story, m.story.Width))
}

func (m *Model) columns() (int, int) {
	left := m.width * 2 / 5
	return left, max(m.width-left-4, 20)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.state.SettingsOpen:
		return m.handleSettingsKeys(msg)
	case !m.state.LoggedIn():
		return m.handleLoginKeys(msg)
	default:
		return m.handleSessionKeys(msg)
	}
}

func (m *Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		return m, m.dispatch(session.ClientIDSubmitted{ID: strings.TrimSpace(m.input.Value())})
	case key.Matches(msg, m.keys.back):
		return m, m.dispatch(session.SettingsToggled{Open: false})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.login):
		return m, m.dispatch(session.LoginRequested{RedirectURI: m.redirectURI, AuthURL: m.authURL})
	case key.Matches(msg, m.keys.settings):
		return m, m.dispatch(session.SettingsToggled{Open: true})
	}
	return m, nil
}

func (m *Model) handleSessionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		return m, m.dispatch(session.RefreshRequested{})
	case key.Matches(msg, m.keys.generate):
		return m, m.dispatch(session.GenerateRequested{})
	case key.Matches(msg, m.keys.prev):
		return m, m.dispatch(session.GenreSelected{Genre: cycleGenre(m.state.Genre, -1)})
	case key.Matches(msg, m.keys.next):
		return m, m.dispatch(session.GenreSelected{Genre: cycleGenre(m.state.Genre, 1)})
	case key.Matches(msg, m.keys.settings):
		return m, m.dispatch(session.SettingsToggled{Open: true})
	case key.Matches(msg, m.keys.logout):
		return m, m.dispatch(session.LogoutRequested{})
	case key.Matches(msg, m.keys.focus):
		if m.pane == TracksPane && m.state.Story != "" {
			m.pane = StoryPane
		} else {
			m.pane = TracksPane
		}
		return m, nil
	}
	return m.updateFocused(msg)
}

func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.state.SettingsOpen:
		m.input, cmd = m.input.Update(msg)
	case m.pane == StoryPane:
		m.story, cmd = m.story.Update(msg)
	default:
		m.tracks, cmd = m.tracks.Update(msg)
	}
	return m, cmd
}

func cycleGenre(g models.Genre, step int) models.Genre {
	all := models.Genres()
	i := slices.Index(all, g)
	if i < 0 {
		return models.DefaultGenre
	}
	return all[(i+step+len(all))%len(all)]
}

func (m *Model) renderSettings() string {
	var b strings.Builder
	b.WriteString(styles.heading.Render("Settings") + "\n\n")
	b.WriteString("Spotify Client ID\n")
	b.WriteString(m.input.View() + "\n\n")
	if m.redirectURI != "" {
		b.WriteString(styles.help.Render("Register this redirect URI in your Spotify app: "+m.redirectURI) + "\n\n")
	}

	bindings := []key.Binding{m.keys.submit}
	if m.state.ClientID != "" {
		bindings = append(bindings, m.keys.back)
	}
	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString("Turn your recent listening into a story.\n\n")
	if m.waiting {
		b.WriteString(m.spinner.View() + " Waiting for Spotify authorization...\n\n")
	}
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.login, m.keys.settings, m.keys.quit}))
	return b.String()
}

func (m *Model) renderSession() string {
	left, right := m.columns()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		framed(m.renderTracks(), left, m.pane == TracksPane),
		lipgloss.NewStyle().MarginLeft(2).Render(framed(m.renderStory(), right, m.pane == StoryPane)),
	)
	return body + "\n\n" + m.help.View(m.keys)
}

// framed boxes content to width columns, border included. Unfocused panes get a dim border.
func framed(content string, width int, focused bool) string {
	style := styles.frame.Width(max(width-frameBorder, 1))
	if !focused {
		style = style.BorderForeground(styles.help.GetForeground())
	}
	return style.Render(content)
}

func (m *Model) renderTracks() string {
	var b strings.Builder
	switch {
	case m.state.Loading() && !m.state.Fetched:
		b.WriteString(m.spinner.View() + " Loading your journey...")
	case m.state.Fetched && len(m.state.Tracks) == 0:
		b.WriteString(styles.help.Render("No recent tracks. Play some music and press r."))
	default:
		b.WriteString(m.tracks.View())
	}

	if m.state.FetchErr != nil {
		b.WriteString("\n" + styles.err.Render(fmt.Sprintf("Could not refresh history: %v", m.state.FetchErr)))
	}
	return b.String()
}

func (m *Model) renderStory() string {
	var b strings.Builder
	b.WriteString(m.renderGenres() + "\n\n")

	switch m.state.Generation {
	case session.InProgress:
		b.WriteString(m.spinner.View() + " Weaving your story...")
	case session.Errored:
		b.WriteString(styles.err.Render(m.state.StoryErr.Error()))
	case session.Completed:
		b.WriteString(styles.title.Render(formatter.StoryTitle(m.state.Genre)) + "\n")
		b.WriteString(styles.help.Render("inspired by your journey") + "\n\n")
		b.WriteString(m.story.View())
	default:
		if len(m.state.Tracks) > 0 {
			b.WriteString(styles.help.Render("Pick a genre and press g to weave your story."))
		}
	}
	return b.String()
}

func (m *Model) renderGenres() string {
	genres := models.Genres()
	names := make([]string, len(genres))
	for i, g := range genres {
		if g == m.state.Genre {
			names[i] = styles.selected.Render(g.String())
		} else {
			names[i] = g.String()
		}
	}
	return strings.Join(names, " ")
}
