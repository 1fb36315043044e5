package application

import "github.com/ericfisherdev/mybitbucket/internal/domain/model"

// CountReplies returns the number of replies under c at every depth.
func CountReplies(c model.PullRequestComment) int {
	n := len(c.Comments)
	for _, reply := range c.Comments {
		n += CountReplies(reply)
	}
	return n
}

// WalkComments visits root and its replies depth-first in server order.
// depth is 0 for root. Returning false from fn stops the walk.
func WalkComments(root model.PullRequestComment, fn func(c model.PullRequestComment, depth int) bool) {
	walk(root, 0, fn)
}

func walk(c model.PullRequestComment, depth int, fn func(model.PullRequestComment, int) bool) bool {
	if !fn(c, depth) {
		return false
	}
	for _, reply := range c.Comments {
		if !walk(reply, depth+1, fn) {
			return false
		}
	}
	return true
}
