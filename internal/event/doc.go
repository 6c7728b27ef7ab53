// Package event defines the scraped event domain model: the Draft record
// carried through the normalization pipeline and the Event row persisted
// per calendar-day occurrence.
package event
