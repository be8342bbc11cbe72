package domain

// Channel identifies a YouTube channel together with its lifetime totals as
// reported by the Data API at fetch time.
type Channel struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	SubscriberCount uint64 `json:"subscriber_count"`
	VideoCount      uint64 `json:"video_count"`
	ViewCount       uint64 `json:"view_count"`
}

// IsChannelID reports whether an identifier is a raw channel ID rather than a
// handle or display name. YouTube channel IDs are 24 characters starting "UC".
func IsChannelID(identifier string) bool {
	return len(identifier) == 24 && identifier[0] == 'U' && identifier[1] == 'C'
}
