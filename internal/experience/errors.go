package experience

import "errors"

var (
	// ErrNoPlan is returned when a widget needs a plan that has not arrived
	ErrNoPlan = errors.New("no plan available")
	// ErrOutOfRange is returned for an index outside the current list
	ErrOutOfRange = errors.New("index out of range")
	// ErrUnknownBundle is returned for a bundle ID not in the latest offers
	ErrUnknownBundle = errors.New("unknown bundle")
	// ErrItemExists is returned when adding a registry item twice
	ErrItemExists = errors.New("item already in registry")
	// ErrIDRequired is returned when an item has no ID
	ErrIDRequired = errors.New("item ID cannot be empty")
	// ErrEmailRequired is returned when a price watch has no e-mail address
	ErrEmailRequired = errors.New("email cannot be empty")
	// ErrInvalidRating is returned for a star rating outside 1..5
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrEmptyMessage is returned when a chat message is blank
	ErrEmptyMessage = errors.New("message cannot be empty")
)
