package console

// User-facing text.
const (
	menuHeader     = "NOTES: Main menu"
	menuMakeChoice = "Choose a menu item: "
	menuWrongKey   = "There is no such item, try again."

	itemNew         = "New note"
	itemShowAll     = "Show all"
	itemByTitle     = "Search by title"
	itemByDateRange = "Search by date range"
	itemByDaytime   = "Search by time-of-day range"
	itemByID        = "Find by number"
	itemEdit        = "Edit"
	itemDelete      = "Delete"
	itemExit        = "Exit"

	askTitle         = "Title: "
	askNewTitle      = "New title (empty keeps the current one): "
	askBody          = "Body, finish with a line containing a single '.':"
	askReplaceBody   = "Replace the body?"
	askSort          = "Sort by (i)d, (c)reated, (m)odified or (t)itle, prefix '-' for descending [i]: "
	askTitleSample   = "Title contains: "
	askAttribute     = "Compare (c)reation or last (m)odification time [c]: "
	askDateFrom      = "From date (YYYY-MM-DD): "
	askDateTo        = "To date (YYYY-MM-DD): "
	askClockFrom     = "From time (HH:MM): "
	askClockTo       = "To time (HH:MM): "
	askNoteID        = "Note number: "
	askConfirmDelete = "Delete note %d?"

	wrongTitle     = "The title must not be empty."
	wrongSort      = "Unknown sort order."
	wrongAttribute = "Answer c or m."
	wrongDate      = "Expected a date like 2024-01-31."
	wrongClock     = "Expected a time like 09:30."
	wrongNumber    = "Expected a number from %d to %d."
	wrongYesNo     = "Answer y or n."

	msgSaved        = "Saved as note %d."
	msgUpdated      = "Note %d updated."
	msgDeleted      = "Note %d deleted."
	msgKept         = "Nothing changed."
	msgNotFound     = "Note %d not found."
	msgNothingFound = "Nothing found."
	msgFound        = "Found: %d"
	msgSaveFailed   = "Could not save the note, see the log for details."
	msgUpdateFailed = "Could not update the note, see the log for details."
	msgBye          = "Bye!"

	labelNote     = "▤ Note %d : %s"
	labelCreated  = "Created:     %s"
	labelModified = "Last change: %s"
)
