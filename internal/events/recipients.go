package events

import (
	"strconv"

	"github.com/phrazzld/taskpulse/internal/domain"
	"github.com/samber/lo"
)

const userGroupPrefix = "user_"

// UserGroup returns the private group name of a user.
func UserGroup(userID int64) string {
	return userGroupPrefix + strconv.FormatInt(userID, 10)
}

// Recipients returns the distinct users interested in a task: its assignee
// and the owner of its project. Deduplication is on identity, so a user who
// is both assignee and owner appears once.
func Recipients(snap domain.TaskSnapshot) []int64 {
	ids := make([]int64, 0, 2)
	if id, ok := snap.Assignee(); ok {
		ids = append(ids, id)
	}
	if id, ok := snap.ProjectOwner(); ok {
		ids = append(ids, id)
	}
	return lo.Uniq(ids)
}

// RecipientGroups maps Recipients onto their private group names.
func RecipientGroups(snap domain.TaskSnapshot) []string {
	return lo.Map(Recipients(snap), func(id int64, _ int) string {
		return UserGroup(id)
	})
}
