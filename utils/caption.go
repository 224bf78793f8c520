package utils

import "strings"

// ClipboardText is the caption followed by a blank line and the hashtags on
// one line, the way it is pasted into a post.
func ClipboardText(caption string, hashtags []string) string {
	tags := strings.Join(hashtags, " ")
	if tags == "" {
		return caption
	}
	if caption == "" {
		return tags
	}
	return caption + "\n\n" + tags
}
