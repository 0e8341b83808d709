package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/five82/shelf/internal/kv"
	"github.com/five82/shelf/internal/logging"
)

// User is a console account. Password holds a bcrypt hash once the user has
// passed through a form or the seed step.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserSnapshot is the view-facing copy of the users collection.
type UserSnapshot = Snapshot[User]

// PredefinedUsers seeds an empty users collection. Passwords are plaintext
// here and hashed when seeded.
var PredefinedUsers = []User{
	{ID: 1, Name: "Admin", Username: "admin@shelf.dev", Password: "Admin#123"},
	{ID: 2, Name: "Dana Whitfield", Username: "dana@shelf.dev", Password: "Dana#2024"},
	{ID: 3, Name: "Oren Castillo", Username: "oren@shelf.dev", Password: "Oren@777"},
}

// Users keeps console accounts in memory and in the local store. Nothing here
// touches the network, so every command completes synchronously.
type Users struct {
	c     *collection[User]
	clock func() time.Time
	hash  func(string) (string, error)
	log   *slog.Logger
}

func userID(u User) int64 { return u.ID }

// NewUsers builds an empty users container. Call Restore to load stored
// accounts.
func NewUsers(store kv.Store, opts ...Option) *Users {
	o := buildOptions(opts)
	return &Users{
		c:     newCollection(kv.KeyUsers, store, userID),
		clock: o.clock,
		hash:  o.hash,
		log:   o.log.With(slog.String("collection", kv.KeyUsers)),
	}
}

// Snapshot returns a copy of the current state.
func (u *Users) Snapshot() UserSnapshot { return u.c.snapshot() }

// Subscribe registers fn for every state change.
func (u *Users) Subscribe(fn func(UserSnapshot)) func() { return u.c.subscribe(fn) }

// SelectByID looks up a user without touching state.
func (u *Users) SelectByID(id int64) (User, bool) { return u.c.selectByID(id) }

// FindByUsername returns the user whose username matches exactly.
func (u *Users) FindByUsername(username string) (User, bool) {
	for _, user := range u.c.snapshot().Items {
		if user.Username == username {
			return user, true
		}
	}
	return User{}, false
}

// Restore replaces memory with the stored users.
func (u *Users) Restore(ctx context.Context) error {
	stored, err := u.c.loadStored(ctx)
	if err != nil {
		return fmt.Errorf("restore users: %w", err)
	}
	u.c.replace(stored, StatusSucceeded)
	u.log.Debug("users restored", slog.Int("count", len(stored)))
	return nil
}

// AddPredefinedIfEmpty seeds PredefinedUsers when the collection holds no
// users. The seed passwords are hashed first.
func (u *Users) AddPredefinedIfEmpty(ctx context.Context) error {
	if u.hash == nil {
		return errors.New("seed users: no password hasher configured")
	}
	if err := u.c.acquire(ctx); err != nil {
		return err
	}
	defer u.c.release()

	if u.c.snapshot().Len() > 0 {
		return nil
	}
	seed := make([]User, 0, len(PredefinedUsers))
	for _, user := range PredefinedUsers {
		hashed, err := u.hash(user.Password)
		if err != nil {
			return fmt.Errorf("seed user %q: %w", user.Username, err)
		}
		user.Password = hashed
		seed = append(seed, user)
	}

	gen := u.c.begin()
	err := u.c.commit(ctx, gen, func(items []User) []User {
		if len(items) > 0 {
			return items
		}
		return seed
	})
	if err != nil {
		return u.commitErr("seed", err)
	}
	u.log.Info("predefined users seeded", slog.Int("count", len(seed)))
	return nil
}

// Create assigns a fresh id and appends user. The password must already be
// hashed.
func (u *Users) Create(ctx context.Context, user User) (User, error) {
	if err := u.c.acquire(ctx); err != nil {
		return User{}, err
	}
	defer u.c.release()

	user.ID = nextID(u.clock, u.c.snapshot().Items, userID)
	user.Username = strings.TrimSpace(user.Username)

	gen := u.c.begin()
	err := u.c.commit(ctx, gen, func(items []User) []User { return append(items, user) })
	if err != nil {
		return User{}, u.commitErr("create", err)
	}
	u.log.Info("user created", slog.Int64("id", user.ID))
	return user, nil
}

// Update replaces the user with the same id. A blank password keeps the
// stored hash.
func (u *Users) Update(ctx context.Context, user User) error {
	if err := u.c.acquire(ctx); err != nil {
		return err
	}
	defer u.c.release()

	current, ok := u.c.selectByID(user.ID)
	if !ok {
		return fmt.Errorf("update user %d: %w", user.ID, ErrNotFound)
	}
	if user.Password == "" {
		user.Password = current.Password
	}
	user.Username = strings.TrimSpace(user.Username)

	gen := u.c.begin()
	err := u.c.commit(ctx, gen, func(items []User) []User {
		if i := u.c.indexIn(items, user.ID); i >= 0 {
			items[i] = user
		}
		return items
	})
	if err != nil {
		return u.commitErr("update", err)
	}
	u.log.Info("user updated", slog.Int64("id", user.ID))
	return nil
}

// Delete removes the user with id. An unknown id is a no-op.
func (u *Users) Delete(ctx context.Context, id int64) error {
	if err := u.c.acquire(ctx); err != nil {
		return err
	}
	defer u.c.release()

	if _, ok := u.c.selectByID(id); !ok {
		return nil
	}
	gen := u.c.begin()
	err := u.c.commit(ctx, gen, func(items []User) []User {
		if i := u.c.indexIn(items, id); i >= 0 {
			items = append(items[:i], items[i+1:]...)
		}
		return items
	})
	if err != nil {
		return u.commitErr("delete", err)
	}
	u.log.Info("user deleted", slog.Int64("id", id))
	return nil
}

func (u *Users) commitErr(op string, err error) error {
	u.log.Error("commit failed", slog.String("op", op), logging.Err(err))
	return fmt.Errorf("%s users: %w", op, err)
}
