// Package datestr normalizes free-text date/time fragments scraped from
// third-party listing pages into concrete time values.
//
// The engine is built around strptime-style directives (%d, %B, %Y, ...).
// A Table maps each directive to a matching pattern, with weekday and month
// names rendered from an explicit Locale instead of ambient process state.
// Tokenize extracts directive values from a fragment in caller-supplied
// priority order, Complement merges partial fragments, and Resolver turns a
// directive map into a time.Time.
package datestr
