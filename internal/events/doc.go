// Package events turns committed task mutations into notification events and
// decides who receives them.
//
// The Watcher is called explicitly by the task service after a mutation
// commits. It computes the distinct recipients of a TaskSnapshot (assignee and
// project owner), builds one Event and hands it to a Sender once per
// recipient group. Event.MarshalJSON produces the three outbound wire
// schemas: task_status_update, task_notification and error.
package events
