// Package domain contains the core entities of the task tracker that the
// notification layer reasons about: tasks, their statuses and priorities, and
// the immutable TaskSnapshot carried by every notification.
//
// The package has no dependencies on storage or transport; entities validate
// themselves and report failures as ValidationError values wrapping the
// sentinels in errors.go.
package domain
