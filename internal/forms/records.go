package forms

import (
	"strings"

	"github.com/five82/shelf/internal/fakestore"
	"github.com/five82/shelf/internal/state"
)

// Login is the login form.
type Login struct {
	Username string `form:"username" validate:"required,email_like"`
	Password string `form:"password" validate:"required,password_policy"`
	Confirm  string `form:"confirm" validate:"required,eqfield=Password"`
}

var loginLabels = map[string]string{
	"username": "Username",
	"password": "Password",
	"confirm":  "Password confirmation",
}

// Validate checks the login form.
func (f Login) Validate() Errors {
	f.Username = strings.TrimSpace(f.Username)
	return check(f, loginLabels)
}

// Product is the create and edit form for a product.
type Product struct {
	Title       string `form:"title" validate:"required,max=255"`
	Price       string `form:"price" validate:"required,price"`
	Description string `form:"description" validate:"required,max=1000"`
	Image       string `form:"image" validate:"required,url"`
	Category    string `form:"category" validate:"required,max=255"`
}

var productLabels = map[string]string{
	"title":       "Title",
	"price":       "Price",
	"description": "Description",
	"image":       "Image",
	"category":    "Category",
}

// ProductFrom fills the form from an existing product.
func ProductFrom(p fakestore.Product) Product {
	return Product{
		Title:       p.Title,
		Price:       formatPrice(p.Price),
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
	}
}

func (f Product) trimmed() Product {
	f.Title = strings.TrimSpace(f.Title)
	f.Price = strings.TrimSpace(f.Price)
	f.Description = strings.TrimSpace(f.Description)
	f.Image = strings.TrimSpace(f.Image)
	f.Category = strings.TrimSpace(f.Category)
	return f
}

// Validate checks the product form.
func (f Product) Validate() Errors {
	return check(f.trimmed(), productLabels)
}

// Record converts a valid form into a product with the given id. Rating is
// left zero; the container decides it.
func (f Product) Record(id int64) (fakestore.Product, Errors) {
	f = f.trimmed()
	if errs := check(f, productLabels); !errs.OK() {
		return fakestore.Product{}, errs
	}
	price, _ := parsePrice(f.Price)
	return fakestore.Product{
		ID:          id,
		Title:       f.Title,
		Price:       price,
		Description: f.Description,
		Image:       f.Image,
		Category:    f.Category,
	}, nil
}

// User is the create and edit form for a console account. When Editing, a
// blank password means keep the current one.
type User struct {
	Name     string
	Username string
	Password string
	Confirm  string
	Editing  bool
}

type userCreate struct {
	Name     string `form:"name" validate:"required,max=255"`
	Username string `form:"username" validate:"required,email_like"`
	Password string `form:"password" validate:"required,password_policy"`
	Confirm  string `form:"confirm" validate:"required,eqfield=Password"`
}

type userKeepPassword struct {
	Name     string `form:"name" validate:"required,max=255"`
	Username string `form:"username" validate:"required,email_like"`
	Confirm  string `form:"confirm" validate:"max=0"`
}

var userLabels = map[string]string{
	"name":     "Name",
	"username": "Username",
	"password": "Password",
	"confirm":  "Password confirmation",
}

// UserFrom fills the edit form from a stored user. The hash never reaches the
// form.
func UserFrom(u state.User) User {
	return User{Name: u.Name, Username: u.Username, Editing: true}
}

// KeepsPassword reports whether an edit leaves the stored hash in place.
func (f User) KeepsPassword() bool { return f.Editing && f.Password == "" }

// Validate checks the user form.
func (f User) Validate() Errors {
	name := strings.TrimSpace(f.Name)
	username := strings.TrimSpace(f.Username)
	if f.KeepsPassword() {
		errs := check(userKeepPassword{Name: name, Username: username, Confirm: f.Confirm}, userLabels)
		if errs.Get("confirm") != "" {
			errs["confirm"] = "Passwords do not match"
		}
		return errs
	}
	return check(userCreate{Name: name, Username: username, Password: f.Password, Confirm: f.Confirm}, userLabels)
}

// Record converts a valid form into a user. hash is applied to a new
// password; when the password is kept, the returned Password is blank.
func (f User) Record(id int64, hash func(string) (string, error)) (state.User, Errors, error) {
	if errs := f.Validate(); !errs.OK() {
		return state.User{}, errs, nil
	}
	u := state.User{
		ID:       id,
		Name:     strings.TrimSpace(f.Name),
		Username: strings.TrimSpace(f.Username),
	}
	if !f.KeepsPassword() {
		hashed, err := hash(f.Password)
		if err != nil {
			return state.User{}, nil, err
		}
		u.Password = hashed
	}
	return u, nil, nil
}
