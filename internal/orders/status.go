package orders

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusPaid      Status = "Paid"
	StatusPreparing Status = "Preparing"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"

	// StatusPickup is written by the staff review actions but is not part of
	// the declared status enumeration in the catalog schema. Kept because
	// existing records carry it.
	StatusPickup Status = "Pickup"
)

// staffActions are the target statuses a reviewer may submit, independent of
// the order's current status.
var staffActions = map[Status]bool{
	StatusCancelled: true,
	StatusPreparing: true,
	StatusPickup:    true,
	StatusConfirmed: true,
}

func IsStaffAction(s Status) bool {
	return staffActions[s]
}
