package gateway

import "slices"

// ChannelTarget is a resolved fan-out destination. Targets are recomputed on
// every fan-out and never persisted, so guild membership and renames take
// effect on the next run.
type ChannelTarget struct {
	GuildName   string
	ChannelName string
	GuildID     string
	ChannelID   string
}

// ResolveChannels maps configured guild/channel name lists to live channels.
// Empty name lists resolve to zero targets; deciding whether that is an
// error is the caller's business.
func ResolveChannels(gw Gateway, guildNames, channelNames []string) ([]ChannelTarget, error) {
	var targets []ChannelTarget
	for _, g := range gw.Guilds() {
		if !slices.Contains(guildNames, g.Name) {
			continue
		}
		chans, err := gw.Channels(g.ID)
		if err != nil {
			return nil, err
		}
		for _, ch := range chans {
			if slices.Contains(channelNames, ch.Name) {
				targets = append(targets, ChannelTarget{
					GuildName:   g.Name,
					ChannelName: ch.Name,
					GuildID:     g.ID,
					ChannelID:   ch.ID,
				})
			}
		}
	}
	return targets, nil
}
