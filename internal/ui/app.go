package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/auth"
	"github.com/five82/shelf/internal/listing"
	"github.com/five82/shelf/internal/logging"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/route"
	"github.com/five82/shelf/internal/state"
)

const (
	defaultPageSize      = 3
	defaultAlertDuration = 10 * time.Second
)

// Options configures the UI.
type Options struct {
	Context  context.Context
	Products *state.Products
	Users    *state.Users
	Gate     *auth.Gate
	Hasher   auth.Hasher
	Alert    *state.Alert

	PageSize      int
	AlertDuration time.Duration
	LogPath       string

	Prefs     prefs.Prefs
	PrefsPath string
	StartPath string
	Logger    *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Dependencies
	ctx      context.Context
	products *state.Products
	users    *state.Users
	gate     *auth.Gate
	hasher   auth.Hasher
	alert    *state.Alert
	log      *slog.Logger
	keys     keyMap

	// Configuration
	pageSize      int
	alertDuration time.Duration
	logPath       string
	prefs         prefs.Prefs
	prefsPath     string

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool

	// Routing
	route route.Route

	// Data state
	productSnap state.ProductSnapshot
	userSnap    state.UserSnapshot

	// Screen state
	productList listState
	userList    listState
	form        formState
	modal       Modal
	errLine     string

	// Command state
	busy    bool // a submitted command is in flight
	loading bool // a product load is in flight
	fatal   error

	// Overlays
	showHelp     bool
	showActivity bool
	activity     viewport.Model
}

// New creates a new Bubble Tea model positioned at opts.StartPath after the
// login guards.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	alert := opts.Alert
	if alert == nil {
		alert = &state.Alert{}
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	alertDuration := opts.AlertDuration
	if alertDuration <= 0 {
		alertDuration = defaultAlertDuration
	}
	hasher := opts.Hasher
	if hasher.Cost == 0 {
		hasher = auth.NewHasher(0)
	}
	start := opts.StartPath
	if strings.TrimSpace(start) == "" {
		start = route.PathProducts
	}

	m := Model{
		ctx:           ctx,
		products:      opts.Products,
		users:         opts.Users,
		gate:          opts.Gate,
		hasher:        hasher,
		alert:         alert,
		log:           log.With(slog.String("component", "ui")),
		keys:          DefaultKeyMap(),
		pageSize:      pageSize,
		alertDuration: alertDuration,
		logPath:       opts.LogPath,
		prefs:         opts.Prefs,
		prefsPath:     opts.PrefsPath,
		theme:         GetTheme(opts.Prefs.Theme),
		productList:   newListState("search by title", pageSize, sortFromPrefs(opts.Prefs.Products)),
		userList:      newListState("search by username", pageSize, sortFromPrefs(opts.Prefs.Users)),
	}
	m.refreshSnapshots()
	m.route = route.Resolve(start, m.gate.Authenticated())
	m.enterRoute()
	return m
}

// sortFromPrefs returns the saved sort, or id ascending when none is saved.
func sortFromPrefs(s prefs.Sort) listing.Sort {
	if s.Field == "" {
		return listing.Sort{Field: "id", Order: listing.Asc}
	}
	return listing.Sort{Field: s.Field, Order: listing.Order(s.Order)}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.form.focusCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.needsProducts() {
		cmds = append(cmds, m.loadProductsCmd(false))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.activity = viewport.New(max(m.width-4, 10), max(m.height-chromeHeight-2, 3))
		}
		m.ready = true
		m.activity.Width = max(m.width-4, 10)
		m.activity.Height = max(m.height-chromeHeight-2, 3)
		return m, nil

	case productsMsg:
		if msg.Version >= m.productSnap.Version {
			m.productSnap = state.ProductSnapshot(msg)
			m.productList.clamp(m.visibleProductCount())
			m.seedForm()
		}
		return m, nil

	case usersMsg:
		if msg.Version >= m.userSnap.Version {
			m.userSnap = state.UserSnapshot(msg)
			m.userList.clamp(m.visibleUserCount())
			m.seedForm()
		}
		return m, nil

	case opDoneMsg:
		return m.handleOpDone(msg)

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case logoutDoneMsg:
		return m.handleLogoutDone(msg)

	case alertExpiredMsg:
		m.alert.ClearIf(msg.seq)
		return m, nil

	case activityMsg:
		m.setActivity(msg)
		return m, nil
	}

	// Cursor blinks and other input messages
	var cmd tea.Cmd
	switch {
	case m.form.active():
		m.form, cmd = m.form.update(msg)
	case m.route.Name == route.Products && m.productList.searching:
		m.productList.search, cmd = m.productList.search.Update(msg)
	case m.route.Name == route.Users && m.userList.searching:
		m.userList.search, cmd = m.userList.search.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.fatal != nil {
		return m.renderFatal()
	}
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	switch {
	case m.showActivity:
		b.WriteString(m.renderActivity())
	case m.modal != nil:
		b.WriteString(m.modal.View(m.theme, m.width, m.contentHeight()))
	default:
		b.WriteString(m.renderContent())
	}
	return b.String()
}

// renderContent renders the screen for the current route.
func (m Model) renderContent() string {
	switch m.route.Name {
	case route.Login, route.ProductCreate, route.ProductEdit, route.UserCreate, route.UserEdit:
		return m.renderForm()
	case route.Products:
		return m.renderProducts()
	case route.ProductDetail:
		return m.renderProductDetail()
	case route.Users:
		return m.renderUsers()
	default:
		return m.renderNotFound()
	}
}

func (m Model) contentHeight() int {
	return max(m.height-chromeHeight, 3)
}

// inputFocused reports whether keystrokes belong to a text input.
func (m Model) inputFocused() bool {
	switch m.route.Name {
	case route.Login, route.ProductCreate, route.ProductEdit, route.UserCreate, route.UserEdit:
		return true
	case route.Products:
		return m.productList.searching
	case route.Users:
		return m.userList.searching
	}
	return false
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || m.fatal != nil {
		return m, tea.Quit
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.showActivity {
		return m.handleActivityKey(msg)
	}
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		m.modal = modal
		if closed {
			m.modal = nil
		}
		// A confirmed modal submits a command.
		if cmd != nil {
			if m.busy {
				return m, nil
			}
			m.busy = true
		}
		return m, cmd
	}

	if key.Matches(msg, m.keys.Logout) && m.gate.Authenticated() {
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.logoutCmd()
	}

	if !m.inputFocused() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.CycleTheme):
			m.theme = GetTheme(NextTheme(m.theme.Name))
			m.prefs.Theme = m.theme.Name
			m.savePrefs()
			return m, nil
		case key.Matches(msg, m.keys.Activity):
			m.showActivity = true
			return m, m.loadActivityCmd()
		case key.Matches(msg, m.keys.Dismiss):
			m.alert.Clear()
			return m, nil
		case key.Matches(msg, m.keys.ViewProducts):
			return m, m.navigate(route.PathProducts)
		case key.Matches(msg, m.keys.ViewUsers):
			return m, m.navigate(route.PathUsers)
		}
	}

	switch m.route.Name {
	case route.Login, route.ProductCreate, route.ProductEdit, route.UserCreate, route.UserEdit:
		return m.handleFormKey(msg)
	case route.Products:
		return m.handleProductsKey(msg)
	case route.ProductDetail:
		return m.handleDetailKey(msg)
	case route.Users:
		return m.handleUsersKey(msg)
	default:
		if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Open) {
			return m, m.navigate(route.PathProducts)
		}
	}
	return m, nil
}

// navigate moves to path after the login guards and prepares the target
// screen.
func (m *Model) navigate(path string) tea.Cmd {
	m.route = route.Resolve(path, m.gate.Authenticated())
	m.log.Debug("navigate", slog.String("path", path), slog.String("route", m.route.Path))
	m.refreshSnapshots()
	m.enterRoute()

	var cmds []tea.Cmd
	if cmd := m.form.focusCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.needsProducts() {
		cmds = append(cmds, m.loadProductsCmd(false))
	}
	return tea.Batch(cmds...)
}

// enterRoute resets per-screen state for the current route.
func (m *Model) enterRoute() {
	m.errLine = ""
	m.modal = nil
	m.form = formState{}
	switch m.route.Name {
	case route.Login:
		m.form = newLoginForm()
	case route.ProductCreate:
		m.form = newProductForm(nil)
	case route.ProductEdit:
		m.form = newProductForm(nil)
		m.form.title = "Edit product #" + itoa(m.route.ID)
		m.seedForm()
	case route.UserCreate:
		m.form = newUserForm(nil)
	case route.UserEdit:
		m.form = newUserForm(nil)
		m.form.title = "Edit user #" + itoa(m.route.ID)
		m.seedForm()
	}
}

// seedForm fills an edit form once its record is available. Products may
// still be loading when the edit route is entered directly.
func (m *Model) seedForm() {
	if m.form.seeded {
		return
	}
	switch m.route.Name {
	case route.ProductEdit:
		if p, ok := m.products.SelectByID(m.route.ID); ok {
			m.form = newProductForm(&p)
		}
	case route.UserEdit:
		if u, ok := m.users.SelectByID(m.route.ID); ok {
			m.form = newUserForm(&u)
		}
	}
}

// needsProducts reports whether the current screen shows products that
// have not been loaded yet.
func (m *Model) needsProducts() bool {
	switch m.route.Name {
	case route.Products, route.ProductDetail, route.ProductEdit:
	default:
		return false
	}
	if m.loading || !m.gate.Authenticated() {
		return false
	}
	return m.products.Snapshot().Status == state.StatusIdle
}

func (m *Model) refreshSnapshots() {
	m.productSnap = m.products.Snapshot()
	m.userSnap = m.users.Snapshot()
}

// showAlert raises msg and schedules its expiry. A newer alert is not
// cleared by an older expiry.
func (m *Model) showAlert(msg string) tea.Cmd {
	seq := m.alert.Set(msg)
	return tea.Tick(m.alertDuration, func(time.Time) tea.Msg {
		return alertExpiredMsg{seq: seq}
	})
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn("save prefs failed", logging.Err(err))
	}
}

// Run starts the Bubble Tea program and blocks until it exits. A storage
// failure during the session is returned as the error.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))

	// Subscribers must not block the container, so each snapshot is handed
	// to the program from its own goroutine. Update drops out of order ones.
	stopProducts := opts.Products.Subscribe(func(s state.ProductSnapshot) {
		go p.Send(productsMsg(s))
	})
	defer stopProducts()
	stopUsers := opts.Users.Subscribe(func(s state.UserSnapshot) {
		go p.Send(usersMsg(s))
	})
	defer stopUsers()

	final, err := p.Run()
	if fm, ok := final.(Model); ok && fm.fatal != nil {
		return fm.fatal
	}
	return err
}
