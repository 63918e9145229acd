package alerts

// Matches reports whether actual satisfies "actual <comparator> threshold".
// Unknown comparators evaluate to false; operator legality is enforced when
// the alert is created, so an unrecognized value here means skip, not fail.
func Matches(comparator string, actual, threshold float64) bool {
	switch comparator {
	case "<":
		return actual < threshold
	case "<=":
		return actual <= threshold
	case ">":
		return actual > threshold
	case ">=":
		return actual >= threshold
	default:
		return false
	}
}
