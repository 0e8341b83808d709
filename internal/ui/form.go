package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/fakestore"
	"github.com/five82/shelf/internal/forms"
	"github.com/five82/shelf/internal/route"
	"github.com/five82/shelf/internal/state"
)

// formField is one labelled text input.
type formField struct {
	key   string
	label string
	input textinput.Model
}

// formState is the screen state of the form on the current route.
type formState struct {
	title  string
	fields []formField
	focus  int
	errs   forms.Errors
	note   string
	seeded bool // edit forms: filled from the stored record
}

func newField(key, label, placeholder string, limit int, secret bool) formField {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = ""
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return formField{key: key, label: label, input: in}
}

func newLoginForm() formState {
	f := formState{
		title: "Sign in",
		fields: []formField{
			newField("username", "Username", "admin@shelf.dev", 255, false),
			newField("password", "Password", "", 64, true),
			newField("confirm", "Confirm password", "", 64, true),
		},
	}
	f.focusField(0)
	return f
}

// newProductForm builds the create form, or the edit form for p.
func newProductForm(p *fakestore.Product) formState {
	f := formState{
		title: "New product",
		fields: []formField{
			newField("title", "Title", "Mens Casual Slim Fit", 255, false),
			newField("price", "Price", "15.99", 32, false),
			newField("description", "Description", "", 1000, false),
			newField("image", "Image URL", "https://", 2048, false),
			newField("category", "Category", "men's clothing", 255, false),
		},
	}
	if p != nil {
		in := forms.ProductFrom(*p)
		f.title = "Edit product #" + itoa(p.ID)
		f.set("title", in.Title)
		f.set("price", in.Price)
		f.set("description", in.Description)
		f.set("image", in.Image)
		f.set("category", in.Category)
		f.seeded = true
	}
	f.focusField(0)
	return f
}

// newUserForm builds the create form, or the edit form for u.
func newUserForm(u *state.User) formState {
	f := formState{
		title: "New user",
		fields: []formField{
			newField("name", "Name", "Jane Doe", 255, false),
			newField("username", "Username", "jane@shelf.dev", 255, false),
			newField("password", "Password", "", 64, true),
			newField("confirm", "Confirm password", "", 64, true),
		},
		note: forms.PasswordPolicyMessage,
	}
	if u != nil {
		in := forms.UserFrom(*u)
		f.title = "Edit user #" + itoa(u.ID)
		f.set("name", in.Name)
		f.set("username", in.Username)
		f.note = "Leave the password blank to keep the current one."
		f.seeded = true
	}
	f.focusField(0)
	return f
}

func (f formState) active() bool { return len(f.fields) > 0 }

func (f formState) value(key string) string {
	for _, fld := range f.fields {
		if fld.key == key {
			return fld.input.Value()
		}
	}
	return ""
}

func (f *formState) set(key, value string) {
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].input.SetValue(value)
		}
	}
}

// focusField moves focus to field i and returns the cursor blink command.
func (f *formState) focusField(i int) tea.Cmd {
	if !f.active() {
		return nil
	}
	i = (i + len(f.fields)) % len(f.fields)
	var cmd tea.Cmd
	for j := range f.fields {
		if j == i {
			cmd = f.fields[j].input.Focus()
			continue
		}
		f.fields[j].input.Blur()
	}
	f.focus = i
	return cmd
}

func (f formState) focusCmd() tea.Cmd {
	if !f.active() {
		return nil
	}
	return textinput.Blink
}

func (f formState) onLast() bool { return f.focus == len(f.fields)-1 }

// update forwards msg to the focused input.
func (f formState) update(msg tea.Msg) (formState, tea.Cmd) {
	if !f.active() {
		return f, nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}

func (f formState) login() forms.Login {
	return forms.Login{
		Username: f.value("username"),
		Password: f.value("password"),
		Confirm:  f.value("confirm"),
	}
}

func (f formState) product() forms.Product {
	return forms.Product{
		Title:       f.value("title"),
		Price:       f.value("price"),
		Description: f.value("description"),
		Image:       f.value("image"),
		Category:    f.value("category"),
	}
}

func (f formState) user(editing bool) forms.User {
	return forms.User{
		Name:     f.value("name"),
		Username: f.value("username"),
		Password: f.value("password"),
		Confirm:  f.value("confirm"),
		Editing:  editing,
	}
}

// handleFormKey processes keyboard input on a form screen.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		switch m.route.Name {
		case route.ProductCreate, route.ProductEdit:
			return m, m.navigate(route.PathProducts)
		case route.UserCreate, route.UserEdit:
			return m, m.navigate(route.PathUsers)
		}
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.submitForm()
	case msg.Type == tea.KeyEnter:
		if m.form.onLast() {
			return m.submitForm()
		}
		return m, m.form.focusField(m.form.focus + 1)
	case key.Matches(msg, m.keys.NextField):
		return m, m.form.focusField(m.form.focus + 1)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.form.focusField(m.form.focus - 1)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

// submitForm validates the form and starts its command. Validation errors
// stay on the form; a second submit while one is in flight is ignored.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.errLine = ""

	switch m.route.Name {
	case route.Login:
		in := m.form.login()
		if m.form.errs = in.Validate(); !m.form.errs.OK() {
			return m, nil
		}
		m.busy = true
		return m, m.loginCmd(strings.TrimSpace(in.Username), in.Password)

	case route.ProductCreate, route.ProductEdit:
		id := int64(0)
		if m.route.Name == route.ProductEdit {
			if _, ok := m.products.SelectByID(m.route.ID); !ok {
				m.errLine = "Could not update the product: the record no longer exists."
				return m, nil
			}
			id = m.route.ID
		}
		p, errs := m.form.product().Record(id)
		if m.form.errs = errs; !errs.OK() {
			return m, nil
		}
		m.busy = true
		if id == 0 {
			return m, m.createProductCmd(p)
		}
		return m, m.updateProductCmd(p)

	case route.UserCreate, route.UserEdit:
		editing := m.route.Name == route.UserEdit
		id := int64(0)
		if editing {
			if _, ok := m.users.SelectByID(m.route.ID); !ok {
				m.errLine = "Could not save the user: the record no longer exists."
				return m, nil
			}
			id = m.route.ID
		}
		in := m.form.user(editing)
		if m.form.errs = in.Validate(); !m.form.errs.OK() {
			return m, nil
		}
		m.busy = true
		return m, m.saveUserCmd(in, id)
	}
	return m, nil
}

// renderForm renders the form for the current route.
func (m Model) renderForm() string {
	bgColor := m.theme.SurfaceAlt
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)
	f := m.form
	width := min(m.width, LayoutFormMaxWidth)
	inputWidth := max(width-4-24, 10)

	var lines []string
	for i, fld := range f.fields {
		in := fld.input
		in.Width = inputWidth
		label := styles.Label.Render(fld.label)
		if i == f.focus {
			label = styles.Label.Foreground(lipgloss.Color(m.theme.Accent)).Bold(true).Render(fld.label)
		}
		lines = append(lines, label+bg.FillLine(in.View(), inputWidth))
		if msg := f.errs.Get(fld.key); msg != "" {
			lines = append(lines, bg.Spaces(24)+bg.Render(msg, styles.FieldError))
		}
		lines = append(lines, "")
	}
	if f.note != "" {
		lines = append(lines, bg.Render(f.note, styles.FaintText))
	}
	switch {
	case m.busy:
		lines = append(lines, "", bg.Render("Working...", styles.WarningText))
	case m.errLine != "":
		lines = append(lines, "", bg.Render(m.errLine, styles.DangerText))
	}

	box := m.renderTitledBox(f.title, strings.Join(lines, "\n"), width, min(m.contentHeight(), len(lines)+4), true)
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Top, box)
}
