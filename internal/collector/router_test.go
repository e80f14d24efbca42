package collector

import (
	"testing"
	"time"

	"sentinel/internal/domain"
)

func TestParseLeases(t *testing.T) {
	output := `1756300000 aa:bb:cc:dd:ee:ff 192.168.1.100 laptop 01:aa:bb:cc:dd:ee:ff
1756300100 11:22:33:44:55:66 192.168.1.101 * *
garbage line
1756300200 AA:BB:CC:00:11:22 192.168.1.102 printer 01:aa:bb:cc:00:11:22
`

	leases := ParseLeases(output)
	if len(leases) != 3 {
		t.Fatalf("got %d leases, want 3", len(leases))
	}

	first := leases[0]
	if first.IP != "192.168.1.100" || first.MAC != "aa:bb:cc:dd:ee:ff" || first.Hostname != "laptop" {
		t.Errorf("first lease = %+v", first)
	}
	if first.ExpiresAt != time.Unix(1756300000, 0) {
		t.Errorf("expiry = %v, want epoch 1756300000", first.ExpiresAt)
	}

	// anonymous hostname marker is dropped
	if leases[1].Hostname != "" {
		t.Errorf("hostname = %q, want empty", leases[1].Hostname)
	}

	// MACs normalized to lowercase
	if leases[2].MAC != "aa:bb:cc:00:11:22" {
		t.Errorf("mac = %q, want lowercase", leases[2].MAC)
	}
}

func TestParseProcNetDev(t *testing.T) {
	output := `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo: 1000000    9999    0    0    0     0          0         0  1000000    9999    0    0    0     0       0          0
  eth0: 5000000   40000    0    0    0     0          0         0  2000000   30000    0    0    0     0       0          0
docker0:  999999    1234    0    0    0     0          0         0   999999    1234    0    0    0     0       0          0
br-lan: 3000000   20000    0    0    0     0          0         0  1500000   10000    0    0    0     0       0          0
 wlan0: 2500000   15000    0    0    0     0          0         0   500000    8000    0    0    0     0       0          0
`

	rx, tx := ParseProcNetDev(output)
	// eth0 + wlan0 only; lo, docker0 and br-lan excluded
	if rx != 7500000 {
		t.Errorf("rx = %d, want 7500000", rx)
	}
	if tx != 2500000 {
		t.Errorf("tx = %d, want 2500000", tx)
	}
}

func TestParseIwinfo(t *testing.T) {
	output := `wlan0     ESSID: "HomeNet"
          Access Point: AA:BB:CC:DD:EE:01
          Mode: Master  Channel: 6 (2.437 GHz)
          Tx-Power: 20 dBm  Link Quality: 60/70
          Signal: -50 dBm  Noise: -95 dBm

wlan1     ESSID: "HomeNet-5G"
          Access Point: AA:BB:CC:DD:EE:02
          Mode: Master  Channel: 36 (5.180 GHz)
          Tx-Power: 23 dBm  Link Quality: 65/70
`

	aps := ParseIwinfo(output)
	if len(aps) != 2 {
		t.Fatalf("got %d access points, want 2", len(aps))
	}

	if aps[0].Name != "wlan0" || aps[0].Channel != 6 || aps[0].Band != domain.Band2G {
		t.Errorf("ap[0] = %+v", aps[0])
	}
	if aps[1].Name != "wlan1" || aps[1].Channel != 36 || aps[1].Band != domain.Band5G {
		t.Errorf("ap[1] = %+v", aps[1])
	}
}

func TestCountAssociatedClients(t *testing.T) {
	output := `AA:BB:CC:DD:EE:10  -48 dBm / -95 dBm (SNR 47)  10 ms ago
	RX: 144.4 MBit/s, MCS 15, 20MHz                  1024 Pkts.
	TX: 130.0 MBit/s, MCS 14, 20MHz                  2048 Pkts.

AA:BB:CC:DD:EE:11  -67 dBm / -95 dBm (SNR 28)  30 ms ago
	RX: 72.2 MBit/s, MCS 7, 20MHz                     512 Pkts.
	TX: 65.0 MBit/s, MCS 6, 20MHz                     256 Pkts.
`

	if got := CountAssociatedClients(output); got != 2 {
		t.Errorf("got %d clients, want 2", got)
	}

	if got := CountAssociatedClients("No station connected\n"); got != 0 {
		t.Errorf("got %d clients, want 0", got)
	}
}

func TestParsePingSummary(t *testing.T) {
	t.Run("busybox output", func(t *testing.T) {
		output := `PING 1.1.1.1 (1.1.1.1): 56 data bytes

--- 1.1.1.1 ping statistics ---
5 packets transmitted, 5 packets received, 0% packet loss
round-trip min/avg/max = 10.123/12.456/15.789 ms
`
		s := ParsePingSummary(output)
		if s.PacketLossPct != 0 {
			t.Errorf("loss = %v, want 0", s.PacketLossPct)
		}
		if s.LatencyMs != 12.456 || s.LatencyMaxMs != 15.789 {
			t.Errorf("latency = %v max %v", s.LatencyMs, s.LatencyMaxMs)
		}
		if s.JitterMs != 0 {
			t.Errorf("jitter = %v, want 0 for busybox", s.JitterMs)
		}
	})

	t.Run("iputils output with mdev", func(t *testing.T) {
		output := `--- 1.1.1.1 ping statistics ---
5 packets transmitted, 4 received, 20% packet loss, time 4005ms
rtt min/avg/max/mdev = 9.912/12.105/15.220/1.874 ms
`
		s := ParsePingSummary(output)
		if s.PacketLossPct != 20 {
			t.Errorf("loss = %v, want 20", s.PacketLossPct)
		}
		if s.LatencyMs != 12.105 || s.JitterMs != 1.874 {
			t.Errorf("latency = %v jitter %v", s.LatencyMs, s.JitterMs)
		}
	})

	t.Run("total loss has no rtt line", func(t *testing.T) {
		output := `--- 10.0.0.99 ping statistics ---
5 packets transmitted, 0 packets received, 100% packet loss
`
		s := ParsePingSummary(output)
		if s.PacketLossPct != 100 {
			t.Errorf("loss = %v, want 100", s.PacketLossPct)
		}
		if s.LatencyMs != 0 {
			t.Errorf("latency = %v, want 0", s.LatencyMs)
		}
	})

	t.Run("garbage degrades to zeros", func(t *testing.T) {
		s := ParsePingSummary("ssh: connection refused")
		if s.PacketLossPct != 0 || s.LatencyMs != 0 {
			t.Errorf("got %+v, want zero sample", s)
		}
	})
}

func TestParseProcNetSNMP(t *testing.T) {
	t.Run("counters located by column name", func(t *testing.T) {
		output := `Ip: Forwarding DefaultTTL InReceives
Ip: 1 64 104412
Tcp: RtoAlgorithm RtoMin RtoMax MaxConn ActiveOpens RetransSegs InErrs OutRsts
Tcp: 1 200 120000 -1 381 42 0 17
Udp: InDatagrams NoPorts InErrors OutDatagrams
Udp: 20532 96 7 21033
`
		retrans, errors := ParseProcNetSNMP(output)
		if retrans != 42 {
			t.Errorf("tcp retrans = %d, want 42", retrans)
		}
		if errors != 7 {
			t.Errorf("udp errors = %d, want 7", errors)
		}
	})

	t.Run("garbage degrades to zeros", func(t *testing.T) {
		retrans, errors := ParseProcNetSNMP("cat: /proc/net/snmp: No such file or directory")
		if retrans != 0 || errors != 0 {
			t.Errorf("got %d/%d, want zeros", retrans, errors)
		}
	})
}
