package analysis

import (
	"testing"

	"sentinel/internal/domain"
)

func obs(ch int, band domain.Band, signal float64) domain.WifiNetworkObservation {
	return domain.WifiNetworkObservation{Channel: ch, Band: band, SignalDBM: signal}
}

func TestScoreChannel(t *testing.T) {
	t.Run("two networks at -50dBm score 59", func(t *testing.T) {
		stat := ScoreChannel(6, domain.Band2G, []domain.WifiNetworkObservation{
			obs(6, domain.Band2G, -50),
			obs(6, domain.Band2G, -50),
		})
		if stat.Utilization != 59 {
			t.Errorf("utilization = %d, want 59", stat.Utilization)
		}
		if stat.NetworkCount != 2 {
			t.Errorf("network count = %d, want 2", stat.NetworkCount)
		}
		if stat.AvgSignalDBM != -50 {
			t.Errorf("avg signal = %v, want -50", stat.AvgSignalDBM)
		}
	})

	t.Run("no observations score zero", func(t *testing.T) {
		stat := ScoreChannel(1, domain.Band2G, nil)
		if stat.Utilization != 0 || stat.NetworkCount != 0 {
			t.Errorf("got %+v, want zero stat", stat)
		}
	})

	t.Run("very weak signal clamps to count weight only", func(t *testing.T) {
		stat := ScoreChannel(11, domain.Band2G, []domain.WifiNetworkObservation{
			obs(11, domain.Band2G, -120),
		})
		// signal weight clamps to 0, count weight is 1/5
		if stat.Utilization != 6 {
			t.Errorf("utilization = %d, want 6", stat.Utilization)
		}
	})

	t.Run("saturated channel clamps to 100", func(t *testing.T) {
		var many []domain.WifiNetworkObservation
		for i := 0; i < 10; i++ {
			many = append(many, obs(36, domain.Band5G, 0))
		}
		stat := ScoreChannel(36, domain.Band5G, many)
		if stat.Utilization != 100 {
			t.Errorf("utilization = %d, want 100", stat.Utilization)
		}
	})

	t.Run("scoring is deterministic", func(t *testing.T) {
		in := []domain.WifiNetworkObservation{obs(1, domain.Band2G, -63), obs(1, domain.Band2G, -71), obs(1, domain.Band2G, -80)}
		a := ScoreChannel(1, domain.Band2G, in)
		b := ScoreChannel(1, domain.Band2G, in)
		if a != b {
			t.Errorf("same input scored differently: %+v vs %+v", a, b)
		}
	})
}

func TestScoreChannels(t *testing.T) {
	stats := ScoreChannels([]domain.WifiNetworkObservation{
		obs(1, domain.Band2G, -55),
		obs(6, domain.Band2G, -60),
		obs(6, domain.Band2G, -62),
		obs(36, domain.Band5G, -70),
		{Channel: 0, Band: domain.Band2G, SignalDBM: -50}, // unmapped frequency, skipped
	})

	if len(stats[domain.Band2G]) != 2 {
		t.Fatalf("got %d 2.4GHz channels, want 2", len(stats[domain.Band2G]))
	}
	if stats[domain.Band2G][0].Channel != 1 || stats[domain.Band2G][1].Channel != 6 {
		t.Errorf("2.4GHz channels not ordered: %+v", stats[domain.Band2G])
	}
	if len(stats[domain.Band5G]) != 1 {
		t.Errorf("got %d 5GHz channels, want 1", len(stats[domain.Band5G]))
	}
}

func TestRecommend(t *testing.T) {
	t.Run("band with no quiet channel warns to switch bands", func(t *testing.T) {
		recs := Recommend(map[domain.Band][]domain.ChannelStat{
			domain.Band2G: {
				{Channel: 1, Band: domain.Band2G, Utilization: 85},
				{Channel: 6, Band: domain.Band2G, Utilization: 75},
			},
		})
		if len(recs) != 1 {
			t.Fatalf("got %d recommendations, want 1", len(recs))
		}
		if recs[0].Severity != domain.SeverityWarning {
			t.Errorf("severity = %s, want warning", recs[0].Severity)
		}
		if recs[0].BestChannel != 6 {
			t.Errorf("best channel = %d, want 6", recs[0].BestChannel)
		}
	})

	t.Run("one quiet channel keeps a busy band healthy", func(t *testing.T) {
		recs := Recommend(map[domain.Band][]domain.ChannelStat{
			domain.Band2G: {
				{Channel: 1, Band: domain.Band2G, Utilization: 85},
				{Channel: 11, Band: domain.Band2G, Utilization: 10},
			},
		})
		if recs[0].Severity != domain.SeverityInfo {
			t.Errorf("severity = %s, want info", recs[0].Severity)
		}
		if recs[0].BestChannel != 11 {
			t.Errorf("best channel = %d, want 11", recs[0].BestChannel)
		}
	})

	t.Run("moderate congestion names the least utilized channel", func(t *testing.T) {
		recs := Recommend(map[domain.Band][]domain.ChannelStat{
			domain.Band5G: {
				{Channel: 36, Band: domain.Band5G, Utilization: 55},
				{Channel: 149, Band: domain.Band5G, Utilization: 45},
			},
		})
		if recs[0].Severity != domain.SeverityInfo {
			t.Errorf("severity = %s, want info", recs[0].Severity)
		}
		if recs[0].BestChannel != 149 {
			t.Errorf("best channel = %d, want 149", recs[0].BestChannel)
		}
	})

	t.Run("quiet band reports healthy", func(t *testing.T) {
		recs := Recommend(map[domain.Band][]domain.ChannelStat{
			domain.Band2G: {{Channel: 6, Band: domain.Band2G, Utilization: 15}},
		})
		if recs[0].Severity != domain.SeverityInfo {
			t.Errorf("severity = %s, want info", recs[0].Severity)
		}
	})
}

func TestOverlapGroups(t *testing.T) {
	t.Run("congested channel groups busy neighbors", func(t *testing.T) {
		groups := OverlapGroups([]domain.ChannelStat{
			{Channel: 5, Band: domain.Band2G, Utilization: 45},
			{Channel: 6, Band: domain.Band2G, Utilization: 75},
			{Channel: 7, Band: domain.Band2G, Utilization: 50},
			{Channel: 11, Band: domain.Band2G, Utilization: 10},
		})
		if len(groups) != 1 {
			t.Fatalf("got %d groups, want 1", len(groups))
		}
		want := []int{5, 6, 7}
		if len(groups[0].Channels) != len(want) {
			t.Fatalf("group channels = %v, want %v", groups[0].Channels, want)
		}
		for i, ch := range want {
			if groups[0].Channels[i] != ch {
				t.Errorf("group channels = %v, want %v", groups[0].Channels, want)
				break
			}
		}
	})

	t.Run("quiet neighbors form no group", func(t *testing.T) {
		groups := OverlapGroups([]domain.ChannelStat{
			{Channel: 6, Band: domain.Band2G, Utilization: 75},
			{Channel: 4, Band: domain.Band2G, Utilization: 20},
		})
		if len(groups) != 0 {
			t.Errorf("got %d groups, want 0", len(groups))
		}
	})

	t.Run("at most three groups reported", func(t *testing.T) {
		var stats []domain.ChannelStat
		for ch := 1; ch <= 11; ch++ {
			stats = append(stats, domain.ChannelStat{Channel: ch, Band: domain.Band2G, Utilization: 80})
		}
		groups := OverlapGroups(stats)
		if len(groups) != 3 {
			t.Errorf("got %d groups, want 3", len(groups))
		}
	})

	t.Run("5GHz channels never overlap", func(t *testing.T) {
		groups := OverlapGroups([]domain.ChannelStat{
			{Channel: 36, Band: domain.Band5G, Utilization: 90},
			{Channel: 38, Band: domain.Band5G, Utilization: 90},
		})
		if len(groups) != 0 {
			t.Errorf("got %d groups, want 0", len(groups))
		}
	})
}
