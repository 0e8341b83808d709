// Package ui provides the terminal admin console for shelf.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds the current route and the view
// state for each screen; every change flows through Update. Container
// commands (fetching, creating, deleting) run as tea.Cmd goroutines and
// report back with a message, so Update never blocks on the network or the
// store.
//
// # Package Structure
//
//   - app.go: Model, routing, key dispatch and the Run function
//   - commands.go: tea.Cmd wrappers around the state containers and their result messages
//   - listview.go: search, sort and paging state shared by the list screens
//   - table.go: stateless table rendering over listing.Column
//   - products.go, users.go: list screens and their columns
//   - detail.go: product detail screen
//   - form.go: text input forms for login, products and users
//   - header.go, help.go, modal.go, activity.go: chrome and overlays
//
// # Routes
//
// Screens are addressed by path (see package route). Navigation always goes
// through route.Resolve, so a logged-out session asking for /products lands
// on /login, and a logged-in one asking for /login lands on /products.
//
// # Data Flow
//
//  1. Run subscribes to both containers and forwards snapshots with p.Send
//  2. Entering a product screen with an idle collection starts Ensure
//  3. Submitting a form validates locally and then runs one container command
//  4. The result message navigates, raises an alert or records a failure line
//  5. Storage failures end the program; Run returns the error
//
// # Key Bindings
//
// Single letter keys are live only when no text input has focus.
//
//   - p/u: Products and users sections
//   - j/k, h/l: Move selection, change page
//   - /: Search, 1-9: Sort by the n-th sortable column
//   - enter: Open, n: New, e: Edit, d: Delete, r: Reload from the API
//   - tab/shift+tab, enter, ctrl+s: Form navigation and submit
//   - a: Activity log, T: Cycle theme, x: Dismiss alert, ?: Help
//   - ctrl+l: Logout, q or ctrl+c: Quit
package ui
