package rivaliq

import "fmt"

// Channel identifies a social media channel tracked by Rival IQ.
type Channel string

const (
	ChannelAll       Channel = "all"
	ChannelFacebook  Channel = "facebook"
	ChannelTwitter   Channel = "twitter"
	ChannelInstagram Channel = "instagram"
	ChannelYouTube   Channel = "youtube"
	ChannelTikTok    Channel = "tiktok"
)

// Channels lists every valid channel value.
func Channels() []Channel {
	return []Channel{
		ChannelAll, ChannelFacebook, ChannelTwitter,
		ChannelInstagram, ChannelYouTube, ChannelTikTok,
	}
}

// ParseChannel validates a channel name, returning ErrUnknownChannel
// (wrapped with the offending name) for anything outside the known set.
func ParseChannel(s string) (Channel, error) {
	for _, ch := range Channels() {
		if Channel(s) == ch {
			return ch, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
}
