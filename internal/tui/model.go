package tui

import (
	"context"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/NeverVane/ccsearch/internal/config"
	"github.com/NeverVane/ccsearch/internal/logger"
	"github.com/NeverVane/ccsearch/internal/search"
	"github.com/NeverVane/ccsearch/internal/sentry"
)

// refreshResultMsg carries a finished store round trip back to Update
type refreshResultMsg struct {
	result  *search.RefreshResult
	err     error
	elapsed time.Duration
}

// versionMsg carries the outcome of the release check
type versionMsg struct {
	version *semver.Version
}

// model adapts a search session to bubbletea. Key presses become search
// events; while a refresh is in flight they are queued and replayed as one
// batch once it lands.
type model struct {
	ctx     context.Context
	state   *search.State
	opts    *Options
	logger  *logger.Logger
	keys    keyMap
	help    help.Model
	timeout time.Duration
	colors  config.ColorConfig
	tuiCfg  config.TUIConfig

	refreshing  bool
	queued      []search.Event
	lastRefresh time.Duration
	err         error

	result   string
	quitting bool

	width  int
	height int
}

func newModel(ctx context.Context, cfg *config.Config, state *search.State, opts *Options) model {
	if opts == nil {
		opts = &Options{}
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	h := help.New()
	h.ShortSeparator = " • "

	return model{
		ctx:     ctx,
		state:   state,
		opts:    opts,
		logger:  logger.GetLogger().TUI(),
		keys:    newKeyMap(cfg.Search.CtrlNShortcuts, cfg.Search.Invert),
		help:    h,
		timeout: cfg.GetRefreshTimeout(),
		colors:  cfg.TUI.Colors,
		tuiCfg:  cfg.TUI,
	}
}

// Init implements tea.Model
func (m model) Init() tea.Cmd {
	if m.opts.Updater == nil {
		return nil
	}
	return checkVersion(m.ctx, m.opts.Updater, m.logger)
}

// Update implements tea.Model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.state.View().List.SetCapacity(m.listHeight())
		return m, nil

	case tea.KeyMsg:
		ev, ok := m.keys.event(msg, m.state.Search().Input.Len() == 0)
		if !ok {
			return m, nil
		}
		return m.dispatch(ev)

	case tea.MouseMsg:
		if !m.tuiCfg.MouseWheel || msg.Action != tea.MouseActionPress {
			return m, nil
		}
		var toward search.ListDirection
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			toward = m.keys.vertical(true)
		case tea.MouseButtonWheelDown:
			toward = m.keys.vertical(false)
		default:
			return m, nil
		}
		// Scrolling past the newest row would end the session.
		if toward == search.TowardNewer && m.state.Selected() == 0 {
			return m, nil
		}
		return m.dispatch(search.MoveSelection{Toward: toward, By: search.ByRow})

	case refreshResultMsg:
		return m.handleRefresh(msg)

	case versionMsg:
		if msg.version == nil {
			return m, nil
		}
		m.state.Handle(search.VersionNotice{Version: msg.version})
		return m, nil
	}

	return m, nil
}

// dispatch runs ev now or queues it behind the refresh in flight
func (m model) dispatch(ev search.Event) (tea.Model, tea.Cmd) {
	if m.refreshing {
		m.queued = append(m.queued, ev)
		return m, nil
	}
	return m.process([]search.Event{ev})
}

// process applies events as one batch and starts at most one refresh
func (m model) process(events []search.Event) (tea.Model, tea.Cmd) {
	initialMode := m.state.Search().SearchMode
	batch := m.state.StartBatch()

	for _, ev := range events {
		if out, ok := batch.Handle(ev).(search.Break); ok {
			m.result = out.Result
			m.quitting = true
			m.logger.Debug().Int("events", len(events)).Msg("Search session finished")
			return m, tea.Quit
		}
	}

	// The batch only tracks text and filter mode; a new search mode needs
	// fresh results on screen as well.
	if !batch.Changed() && m.state.Search().SearchMode == initialMode {
		return m, nil
	}

	m.refreshing = true
	return m, refresh(m.ctx, m.state.PrepareRefresh(), m.timeout)
}

func (m model) handleRefresh(msg refreshResultMsg) (tea.Model, tea.Cmd) {
	m.refreshing = false
	m.lastRefresh = msg.elapsed

	if msg.err != nil {
		m.err = msg.err
		m.logger.WithError(msg.err).Error().Msg("Refresh failed")
		sentry.CaptureError(msg.err, "tui", "refresh")
	} else {
		m.err = nil
		m.state.Apply(msg.result)
	}

	if len(m.queued) == 0 {
		return m, nil
	}
	events := m.queued
	m.queued = nil
	m.logger.Debug().Int("events", len(events)).Msg("Replaying queued events")
	return m.process(events)
}

// refresh runs a prepared refresh off the UI goroutine
func refresh(ctx context.Context, r *search.PreparedRefresh, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		res, err := r.Run(ctx)
		return refreshResultMsg{result: res, err: err, elapsed: time.Since(start)}
	}
}

func checkVersion(ctx context.Context, checker VersionChecker, log *logger.Logger) tea.Cmd {
	return func() tea.Msg {
		v, err := checker.CheckForUpdate(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("Update check failed")
			return versionMsg{}
		}
		return versionMsg{version: v}
	}
}
