package redisrepo

import "fmt"

const (
	POST_KEY    = "post:%s"    // <postID>
	SESSION_KEY = "session:%s" // <sessionID>
)

func PostKey(postID string) string {
	return fmt.Sprintf(POST_KEY, postID)
}

func SessionKey(sessionID string) string {
	return fmt.Sprintf(SESSION_KEY, sessionID)
}
