package analysis

import (
	"fmt"
	"math"
	"sort"

	"sentinel/internal/domain"
)

// Congestion score weighting. Signal strength dominates because a few
// strong neighbors interfere more than many faint ones.
const (
	signalWeight = 0.7
	countWeight  = 0.3

	utilizationWarning = 70
	utilizationNotice  = 40
	overlapThreshold   = 60
	overlapNeighbor    = 40
	maxOverlapGroups   = 3
)

// ScoreChannel computes the congestion score for one channel from the
// networks observed on it. Zero observations score zero.
func ScoreChannel(channel int, band domain.Band, observations []domain.WifiNetworkObservation) domain.ChannelStat {
	stat := domain.ChannelStat{Channel: channel, Band: band}
	if len(observations) == 0 {
		return stat
	}

	var sum float64
	for _, obs := range observations {
		sum += obs.SignalDBM
	}
	avg := sum / float64(len(observations))

	sw := clamp01((avg + 90) / 60)
	cw := clamp01(float64(len(observations)) / 5)

	util := int(math.Round(100 * (signalWeight*sw + countWeight*cw)))
	if util < 0 {
		util = 0
	}
	if util > 100 {
		util = 100
	}

	stat.NetworkCount = len(observations)
	stat.AvgSignalDBM = avg
	stat.Utilization = util
	return stat
}

// ScoreChannels groups observations by band and channel and scores each
// channel, returning per-band stats ordered by channel number.
func ScoreChannels(observations []domain.WifiNetworkObservation) map[domain.Band][]domain.ChannelStat {
	grouped := make(map[domain.Band]map[int][]domain.WifiNetworkObservation)
	for _, obs := range observations {
		if obs.Channel == 0 {
			continue
		}
		if grouped[obs.Band] == nil {
			grouped[obs.Band] = make(map[int][]domain.WifiNetworkObservation)
		}
		grouped[obs.Band][obs.Channel] = append(grouped[obs.Band][obs.Channel], obs)
	}

	out := make(map[domain.Band][]domain.ChannelStat, len(grouped))
	for band, channels := range grouped {
		stats := make([]domain.ChannelStat, 0, len(channels))
		for ch, obs := range channels {
			stats = append(stats, ScoreChannel(ch, band, obs))
		}
		sort.Slice(stats, func(i, j int) bool { return stats[i].Channel < stats[j].Channel })
		out[band] = stats
	}
	return out
}

// Recommend produces per-band advice from scored channels. The least
// utilized channel in a band is its best channel; severity follows that
// best channel, since a congested minimum means the whole band is busy.
func Recommend(channels map[domain.Band][]domain.ChannelStat) []domain.ChannelRecommendation {
	bands := make([]domain.Band, 0, len(channels))
	for band := range channels {
		bands = append(bands, band)
	}
	sort.Slice(bands, func(i, j int) bool { return bands[i] < bands[j] })

	var recs []domain.ChannelRecommendation
	for _, band := range bands {
		stats := channels[band]
		if len(stats) == 0 {
			continue
		}

		best := stats[0]
		for _, s := range stats[1:] {
			if s.Utilization < best.Utilization {
				best = s
			}
		}

		rec := domain.ChannelRecommendation{Band: band, BestChannel: best.Channel}
		switch {
		case best.Utilization > utilizationWarning:
			rec.Severity = domain.SeverityWarning
			rec.Message = fmt.Sprintf("%s is heavily congested (best channel %d at %d%%); consider switching to another band",
				band, best.Channel, best.Utilization)
		case best.Utilization > utilizationNotice:
			rec.Severity = domain.SeverityInfo
			rec.Message = fmt.Sprintf("moderate congestion on %s; channel %d is the least utilized (%d%%)", band, best.Channel, best.Utilization)
		default:
			rec.Severity = domain.SeverityInfo
			rec.Message = fmt.Sprintf("%s channels look healthy", band)
		}
		recs = append(recs, rec)
	}
	return recs
}

// OverlapGroups finds clusters of mutually interfering 2.4GHz channels:
// a congested channel (>60) together with its neighbors within two
// channel numbers that are themselves busy (>40). At most the three
// worst groups are reported.
func OverlapGroups(stats []domain.ChannelStat) []domain.OverlapGroup {
	byChannel := make(map[int]domain.ChannelStat, len(stats))
	for _, s := range stats {
		byChannel[s.Channel] = s
	}

	var groups []domain.OverlapGroup
	for _, s := range stats {
		if s.Band != domain.Band2G || s.Utilization <= overlapThreshold {
			continue
		}
		members := []int{s.Channel}
		for ch := s.Channel - 2; ch <= s.Channel+2; ch++ {
			if ch == s.Channel {
				continue
			}
			if n, ok := byChannel[ch]; ok && n.Utilization > overlapNeighbor {
				members = append(members, ch)
			}
		}
		if len(members) < 2 {
			continue
		}
		sort.Ints(members)
		groups = append(groups, domain.OverlapGroup{Channels: members, Utilization: s.Utilization})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Utilization > groups[j].Utilization })
	if len(groups) > maxOverlapGroups {
		groups = groups[:maxOverlapGroups]
	}
	return groups
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
