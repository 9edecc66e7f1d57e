package service

// Operator-facing texts.
const (
	msgPanel          = "What would you like to edit?"
	msgDenied         = "You don't have permission to edit data."
	msgNoRecords      = "No records found."
	msgChooseRecord   = "Choose a record to edit:"
	msgChooseDay      = "Choose a day:"
	msgChooseField    = "What do you want to change?"
	msgSaved          = "✅ Changes saved."
	msgCancelled      = "Edit cancelled."
	msgNothingPending = "There is no edit in progress."
	msgCurrentValue   = "Current value: %s"
	msgConflictHint   = "Send /cancel to abandon it first."
	msgFailure        = "❌ %s"
	msgGenericFailure = "Something went wrong, please start again."
	msgStaleChoice    = "That button belongs to an earlier question."

	labelBack   = "⬅️ Back"
	labelCancel = "✖️ Cancel"
	labelPanel  = "📋 Edit menu"
)
