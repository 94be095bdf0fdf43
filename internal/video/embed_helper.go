package video

import (
	"strings"
)

type EmbedType int

const (
	EmbedTypeNone EmbedType = iota
	EmbedTypeYouTube
	EmbedTypeVideo
	EmbedTypeIframe
)

func (t EmbedType) String() string {
	switch t {
	case EmbedTypeYouTube:
		return "youtube"
	case EmbedTypeVideo:
		return "video"
	case EmbedTypeIframe:
		return "iframe"
	default:
		return "none"
	}
}

type EmbedInfo struct {
	Type EmbedType
	URL  string
}

// GetEmbedInfo classifies a match's video link and rewrites YouTube watch
// links to their embeddable form. Clients use this to render proof-of-result
// footage without guessing at the link shape.
func GetEmbedInfo(link *string) EmbedInfo {
	if link == nil || *link == "" {
		return EmbedInfo{Type: EmbedTypeNone}
	}

	l := *link

	if strings.Contains(l, "youtube.com") || strings.Contains(l, "youtu.be") {
		videoID := ""
		if strings.Contains(l, "youtube.com/watch?v=") {
			parts := strings.Split(l, "v=")
			if len(parts) > 1 {
				videoID = parts[1]
				// Strip trailing query parameters, probably won't catch everything
				if idx := strings.Index(videoID, "&"); idx != -1 {
					videoID = videoID[:idx]
				}
			}
		} else if strings.Contains(l, "youtu.be/") {
			parts := strings.Split(l, "youtu.be/")
			if len(parts) > 1 {
				videoID = parts[1]
				if idx := strings.Index(videoID, "?"); idx != -1 {
					videoID = videoID[:idx]
				}
			}
		} else if strings.Contains(l, "youtube.com/embed/") {
			return EmbedInfo{Type: EmbedTypeYouTube, URL: l}
		}

		if videoID != "" {
			return EmbedInfo{Type: EmbedTypeYouTube, URL: "https://www.youtube.com/embed/" + videoID}
		}
	}

	lower := strings.ToLower(l)
	if strings.HasSuffix(lower, ".mp4") || strings.HasSuffix(lower, ".webm") || strings.HasSuffix(lower, ".ogg") || strings.HasSuffix(lower, ".mov") {
		return EmbedInfo{Type: EmbedTypeVideo, URL: l}
	}

	// Default to generic iframe and hope for the best
	return EmbedInfo{Type: EmbedTypeIframe, URL: l}
}
