// Package route maps console paths to views and applies the login guards.
package route

import (
	"strconv"
	"strings"
)

// Name identifies a view.
type Name int

const (
	NotFound Name = iota
	Login
	Products
	ProductCreate
	ProductEdit
	ProductDetail
	Users
	UserCreate
	UserEdit
)

func (n Name) String() string {
	switch n {
	case Login:
		return "login"
	case Products:
		return "products"
	case ProductCreate:
		return "product-create"
	case ProductEdit:
		return "product-edit"
	case ProductDetail:
		return "product-detail"
	case Users:
		return "users"
	case UserCreate:
		return "user-create"
	case UserEdit:
		return "user-edit"
	default:
		return "not-found"
	}
}

// Protected reports whether the view requires login.
func (n Name) Protected() bool {
	return n != Login && n != NotFound
}

// Route is a parsed path.
type Route struct {
	Name Name
	ID   int64 // set for detail and edit views
	Path string
}

const (
	PathLogin    = "/login"
	PathProducts = "/products"
	PathUsers    = "/users"
)

// ProductPath returns the detail path for id.
func ProductPath(id int64) string { return PathProducts + "/" + strconv.FormatInt(id, 10) }

// ProductEditPath returns the edit path for id.
func ProductEditPath(id int64) string {
	return PathProducts + "/edit/" + strconv.FormatInt(id, 10)
}

// ProductCreatePath is the product creation form.
func ProductCreatePath() string { return PathProducts + "/create" }

// UserEditPath returns the edit path for id.
func UserEditPath(id int64) string { return PathUsers + "/edit/" + strconv.FormatInt(id, 10) }

// UserCreatePath is the user creation form.
func UserCreatePath() string { return PathUsers + "/create" }

// Parse matches path against the known views without applying guards. The
// root path parses as Login.
func Parse(path string) Route {
	clean := strings.TrimSpace(path)
	if len(clean) > 1 {
		clean = strings.TrimRight(clean, "/")
	}
	r := Route{Name: NotFound, Path: clean}

	segs := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	if !strings.HasPrefix(clean, "/") {
		return r
	}
	switch {
	case clean == "/" || clean == PathLogin:
		r.Name, r.Path = Login, PathLogin
	case segs[0] == "products":
		r.Name, r.ID = matchEntity(segs, Products, ProductCreate, ProductEdit, ProductDetail)
	case segs[0] == "users":
		r.Name, r.ID = matchEntity(segs, Users, UserCreate, UserEdit, NotFound)
	}
	return r
}

func matchEntity(segs []string, list, create, edit, detail Name) (Name, int64) {
	switch len(segs) {
	case 1:
		return list, 0
	case 2:
		if segs[1] == "create" {
			return create, 0
		}
		if id, ok := parseID(segs[1]); ok && detail != NotFound {
			return detail, id
		}
	case 3:
		if segs[1] == "edit" {
			if id, ok := parseID(segs[2]); ok {
				return edit, id
			}
		}
	}
	return NotFound, 0
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Resolve parses path and applies the guards: protected views redirect to
// login when logged out, and login redirects to products when logged in.
func Resolve(path string, authenticated bool) Route {
	r := Parse(path)
	switch {
	case r.Name.Protected() && !authenticated:
		return Route{Name: Login, Path: PathLogin}
	case r.Name == Login && authenticated:
		return Route{Name: Products, Path: PathProducts}
	}
	return r
}
