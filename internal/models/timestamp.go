package models

import "time"

// LastActivity resolves a post's last-activity timestamp: the newest live
// reply's creation time, or the post's own creation time when no reply is
// newer. A nil reply means the post has no live replies.
func LastActivity(postCreatedAt time.Time, newestReply *Reply) time.Time {
	if newestReply != nil && newestReply.CreatedAt.After(postCreatedAt) {
		return newestReply.CreatedAt
	}
	return postCreatedAt
}
