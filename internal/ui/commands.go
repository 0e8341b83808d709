package ui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/auth"
	"github.com/five82/shelf/internal/fakestore"
	"github.com/five82/shelf/internal/forms"
	"github.com/five82/shelf/internal/kv"
	"github.com/five82/shelf/internal/logging"
	"github.com/five82/shelf/internal/logtail"
	"github.com/five82/shelf/internal/route"
	"github.com/five82/shelf/internal/state"
)

// Messages

type productsMsg state.ProductSnapshot

type usersMsg state.UserSnapshot

// opDoneMsg reports the end of a container command.
type opDoneMsg struct {
	action string // what was attempted, e.g. "delete the product"
	err    error
	alert  string // raised on success
	next   string // navigated to on success
	submit bool   // cleared the busy flag
	load   bool   // cleared the loading flag
}

type loginDoneMsg struct{ err error }

type logoutDoneMsg struct{ err error }

type alertExpiredMsg struct{ seq uint64 }

type activityMsg struct {
	lines []string
	err   error
}

// Commands

// submitCmd runs fn as a user submitted command. The model must already
// have set busy.
func (m Model) submitCmd(action, alert, next string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{action: action, err: fn(ctx), alert: alert, next: next, submit: true}
	}
}

func (m *Model) loadProductsCmd(force bool) tea.Cmd {
	m.loading = true
	ctx, products := m.ctx, m.products
	return func() tea.Msg {
		var err error
		if force {
			err = products.FetchAll(ctx)
		} else {
			err = products.Ensure(ctx)
		}
		return opDoneMsg{action: "load products", err: err, load: true}
	}
}

func (m Model) createProductCmd(p fakestore.Product) tea.Cmd {
	products := m.products
	return m.submitCmd("create the product", "Product created successfully.", route.PathProducts,
		func(ctx context.Context) error {
			_, err := products.Create(ctx, p)
			return err
		})
}

func (m Model) updateProductCmd(p fakestore.Product) tea.Cmd {
	products := m.products
	return m.submitCmd("update the product", "Product updated successfully.", route.PathProducts,
		func(ctx context.Context) error { return products.Update(ctx, p) })
}

func (m Model) deleteProductCmd(id int64, next string) tea.Cmd {
	products := m.products
	return m.submitCmd("delete the product", "Product deleted successfully.", next,
		func(ctx context.Context) error { return products.Delete(ctx, id) })
}

// saveUserCmd hashes and stores the form. Hashing is slow, so it runs off
// the update loop.
func (m Model) saveUserCmd(in forms.User, id int64) tea.Cmd {
	users, hash := m.users, m.hasher.Hash
	alert := "User created successfully."
	if in.Editing {
		alert = "User updated successfully."
	}
	return m.submitCmd("save the user", alert, route.PathUsers, func(ctx context.Context) error {
		u, errs, err := in.Record(id, hash)
		switch {
		case err != nil:
			return err
		case !errs.OK():
			return errs
		}
		if in.Editing {
			return users.Update(ctx, u)
		}
		_, err = users.Create(ctx, u)
		return err
	})
}

func (m Model) deleteUserCmd(id int64) tea.Cmd {
	users := m.users
	return m.submitCmd("delete the user", "User deleted successfully.", "",
		func(ctx context.Context) error { return users.Delete(ctx, id) })
}

func (m Model) loginCmd(username, password string) tea.Cmd {
	ctx, gate := m.ctx, m.gate
	return func() tea.Msg {
		return loginDoneMsg{err: gate.Login(ctx, username, password)}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	ctx, gate := m.ctx, m.gate
	return func() tea.Msg {
		return logoutDoneMsg{err: gate.Logout(ctx)}
	}
}

func (m Model) loadActivityCmd() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		lines, err := logtail.Read(path, ActivityLines)
		return activityMsg{lines: logtail.FormatLines(lines), err: err}
	}
}

// Results

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if msg.submit {
		m.busy = false
	}
	if msg.load {
		m.loading = false
	}
	m.refreshSnapshots()
	if msg.err != nil {
		return m.handleFailure(msg.action, msg.err)
	}

	var cmds []tea.Cmd
	if msg.next != "" {
		cmds = append(cmds, m.navigate(msg.next))
	}
	if msg.alert != "" {
		cmds = append(cmds, m.showAlert(msg.alert))
	}
	m.productList.clamp(m.visibleProductCount())
	m.userList.clamp(m.visibleUserCount())
	return m, tea.Batch(cmds...)
}

// handleFailure sorts a command error into fatal, ignored and shown.
func (m Model) handleFailure(action string, err error) (tea.Model, tea.Cmd) {
	var errs forms.Errors
	switch {
	case errors.Is(err, kv.ErrStorage):
		m.log.Error("storage failure, ending session", slog.String("action", action), logging.Err(err))
		m.fatal = err
		return m, tea.Quit
	case errors.Is(err, state.ErrStale):
		m.log.Debug("dropped stale result", slog.String("action", action))
		return m, nil
	case errors.As(err, &errs):
		m.form.errs = errs
	case errors.Is(err, state.ErrNotFound):
		m.errLine = "Could not " + action + ": the record no longer exists."
	case errors.Is(err, fakestore.ErrGateway):
		m.errLine = "Could not " + action + ": the catalog API request failed."
	default:
		m.errLine = "Could not " + action + ": " + err.Error()
	}
	m.log.Warn("command failed", slog.String("action", action), logging.Err(err))
	return m, nil
}

func (m Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	switch {
	case msg.err == nil:
		return m, m.navigate(route.PathProducts)
	case errors.Is(msg.err, auth.ErrInvalidCredentials):
		m.errLine = "Invalid username or password."
		return m, nil
	default:
		return m.handleFailure("log in", msg.err)
	}
}

func (m Model) handleLogoutDone(msg logoutDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		return m.handleFailure("log out", msg.err)
	}
	m.alert.Clear()
	m.loading = false
	m.productList.reset()
	m.userList.reset()
	return m, m.navigate(route.PathLogin)
}
