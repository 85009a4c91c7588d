package payment

// CanCancel reports whether a cancel action should be offered. Only an
// authorized payment can be voided; a pending one has no gateway
// authorization to undo.
func CanCancel(status Status) bool {
	return status == StatusAuthorized
}

// CanRefund reports whether a refund action should be offered.
func CanRefund(status Status) bool {
	return status == StatusCaptured || status == StatusPartiallyRefunded
}

// StatusColor maps a status to its display category. Unknown statuses fall
// back to the neutral category.
func StatusColor(status Status) string {
	switch status {
	case StatusPending:
		return "yellow"
	case StatusAuthorized:
		return "blue"
	case StatusCaptured:
		return "green"
	case StatusFailed:
		return "red"
	case StatusCancelled:
		return "gray"
	case StatusPartiallyRefunded:
		return "orange"
	case StatusRefunded:
		return "purple"
	default:
		return "gray"
	}
}
