// Package cascade plans and executes the explicit multi-table deletion of
// root entities. Plans are pure data; the Executor applies them inside the
// caller's transaction so a failure at any step discards every step.
package cascade

import (
	"fmt"
	"slices"
)

// Root names the kind of entity a plan deletes.
type Root string

const (
	RootPost Root = "post"
	RootUser Root = "user"
)

// Kind tags a single deletion step.
type Kind string

const (
	LikesOnPost         Kind = "likes_on_post"
	CommentsOnPost      Kind = "comments_on_post"
	MediaOnPost         Kind = "media_on_post"
	NotificationsOnPost Kind = "notifications_on_post"
	DetachPostReports   Kind = "detach_post_reports"
	PostRow             Kind = "post"

	LikesByUser       Kind = "likes_by_user"
	CommentsByUser    Kind = "comments_by_user"
	UserSubscriptions Kind = "user_subscriptions"
	UserReports       Kind = "user_reports"
	UserNotifications Kind = "user_notifications"
	UserRow           Kind = "user"
)

// Step is one bulk operation against the rows tied to TargetID.
type Step struct {
	Kind     Kind
	TargetID uint
}

func (s Step) String() string {
	return fmt.Sprintf("%s(%d)", s.Kind, s.TargetID)
}

// Plan is the ordered list of steps that removes a root and everything
// depending on it.
type Plan struct {
	Root   Root
	RootID uint
	Steps  []Step
}

// PlanPostDeletion returns the steps removing postID and its dependents.
// Reports pointing at the post survive with the post reference cleared.
func PlanPostDeletion(postID uint) Plan {
	return Plan{Root: RootPost, RootID: postID, Steps: postSteps(postID)}
}

// PlanUserDeletion returns the steps removing userID, each owned post in
// ascending id order, and every relationship the user takes part in.
func PlanUserDeletion(userID uint, ownedPostIDs []uint) Plan {
	ids := slices.Clone(ownedPostIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	steps := make([]Step, 0, len(ids)*6+6)
	for _, id := range ids {
		steps = append(steps, postSteps(id)...)
	}
	steps = append(steps,
		Step{Kind: LikesByUser, TargetID: userID},
		Step{Kind: CommentsByUser, TargetID: userID},
		Step{Kind: UserSubscriptions, TargetID: userID},
		Step{Kind: UserReports, TargetID: userID},
		Step{Kind: UserNotifications, TargetID: userID},
		Step{Kind: UserRow, TargetID: userID},
	)
	return Plan{Root: RootUser, RootID: userID, Steps: steps}
}

func postSteps(postID uint) []Step {
	return []Step{
		{Kind: LikesOnPost, TargetID: postID},
		{Kind: CommentsOnPost, TargetID: postID},
		{Kind: MediaOnPost, TargetID: postID},
		{Kind: NotificationsOnPost, TargetID: postID},
		{Kind: DetachPostReports, TargetID: postID},
		{Kind: PostRow, TargetID: postID},
	}
}
