// Package app is the composition root of the shelf console.
//
// Run loads configuration, opens the log file and the key-value store, builds
// the fakestore catalog client, and then hands a Session to the terminal UI:
//
//  1. config.Load reads the TOML file and applies SHELF_* environment overrides
//  2. logging.OpenFile opens the JSON log the activity overlay tails
//  3. kv.Open selects the file, redis or memory backend
//  4. NewSession restores users, seeds the built-in accounts when the store
//     is empty, restores the login flag and warms the catalog for a session
//     that is still signed in
//  5. ui.Run blocks until the user quits, the context is cancelled, or a
//     storage failure ends the session
//
// Storage failures are returned to the caller. A catalog outage at startup
// is logged and left for the products screen to report.
package app
