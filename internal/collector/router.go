package collector

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"sentinel/internal/domain"
)

// RouterProbe collects leases, bandwidth counters, wifi client stats
// and link metrics from an OpenWrt router over SSH. It implements
// LeaseSource, BandwidthSource, WifiStatsSource and MetricsSource.
type RouterProbe struct {
	host       string
	port       int
	user       string
	password   string
	keyPath    string
	pingTarget string
	pingCount  int
	timeout    time.Duration

	mu          sync.Mutex
	lastRxBytes uint64
	lastTxBytes uint64
	lastSample  time.Time
}

// RouterOption configures a RouterProbe
type RouterOption func(*RouterProbe)

// WithPassword sets password authentication
func WithPassword(password string) RouterOption {
	return func(r *RouterProbe) { r.password = password }
}

// WithKeyPath sets key-based authentication from a private key file
func WithKeyPath(path string) RouterOption {
	return func(r *RouterProbe) { r.keyPath = path }
}

// WithPingTarget sets the reference host for link metrics
func WithPingTarget(target string) RouterOption {
	return func(r *RouterProbe) { r.pingTarget = target }
}

// WithProbeTimeout overrides the SSH dial and command timeout
func WithProbeTimeout(d time.Duration) RouterOption {
	return func(r *RouterProbe) { r.timeout = d }
}

// NewRouterProbe creates a probe for the given router
func NewRouterProbe(host string, port int, user string, opts ...RouterOption) *RouterProbe {
	r := &RouterProbe{
		host:       host,
		port:       port,
		user:       user,
		pingTarget: "1.1.1.1",
		pingCount:  5,
		timeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Leases reads and parses the dnsmasq lease file. Expired leases are
// kept in the result; callers filter by Active.
func (r *RouterProbe) Leases(ctx context.Context) ([]domain.LeaseRecord, error) {
	out, err := r.run(ctx, "cat /tmp/dhcp.leases")
	if err != nil {
		return nil, fmt.Errorf("lease probe: %w", err)
	}
	return ParseLeases(out), nil
}

// Bandwidth reads interface byte counters and returns the throughput
// since the previous call. The first call establishes the baseline and
// returns zeros.
func (r *RouterProbe) Bandwidth(ctx context.Context) (domain.BandwidthSample, error) {
	out, err := r.run(ctx, "cat /proc/net/dev")
	if err != nil {
		return domain.BandwidthSample{}, fmt.Errorf("bandwidth probe: %w", err)
	}

	rx, tx := ParseProcNetDev(out)
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	sample := domain.BandwidthSample{SampledAt: now}
	if !r.lastSample.IsZero() && rx >= r.lastRxBytes && tx >= r.lastTxBytes {
		elapsed := now.Sub(r.lastSample).Seconds()
		if elapsed > 0 {
			sample.InMbps = float64(rx-r.lastRxBytes) * 8 / elapsed / 1e6
			sample.OutMbps = float64(tx-r.lastTxBytes) * 8 / elapsed / 1e6
		}
	}

	r.lastRxBytes = rx
	r.lastTxBytes = tx
	r.lastSample = now
	return sample, nil
}

// WifiStats lists the router's radios via iwinfo and counts associated
// clients per radio.
func (r *RouterProbe) WifiStats(ctx context.Context) (domain.WifiStats, error) {
	out, err := r.run(ctx, "iwinfo")
	if err != nil {
		return domain.WifiStats{}, fmt.Errorf("wifi probe: %w", err)
	}

	aps := ParseIwinfo(out)
	stats := domain.WifiStats{}
	for _, ap := range aps {
		assoc, err := r.run(ctx, fmt.Sprintf("iwinfo %s assoclist", ap.Name))
		if err != nil {
			log.Printf("Router: assoclist failed for %s: %v", ap.Name, err)
			assoc = ""
		}
		ap.Clients = CountAssociatedClients(assoc)

		switch ap.Band {
		case domain.Band2G:
			stats.Band2GClients += ap.Clients
		case domain.Band5G:
			stats.Band5GClients += ap.Clients
		}
		stats.TotalClients += ap.Clients
		stats.AccessPoints = append(stats.AccessPoints, ap)
	}
	return stats, nil
}

// Metrics pings the reference host from the router and parses the
// summary into loss and latency numbers. Protocol error counters come
// from the router's /proc/net/snmp; if that read fails the sample
// keeps zero counters.
func (r *RouterProbe) Metrics(ctx context.Context) (domain.NetworkMetricsSample, error) {
	out, err := r.run(ctx, fmt.Sprintf("ping -c %d -W 2 %s", r.pingCount, r.pingTarget))
	if err != nil {
		return domain.NetworkMetricsSample{}, fmt.Errorf("metrics probe: %w", err)
	}

	sample := ParsePingSummary(out)
	if snmp, err := r.run(ctx, "cat /proc/net/snmp"); err != nil {
		log.Printf("Router: snmp counter read failed: %v", err)
	} else {
		sample.TCPRetries, sample.UDPErrors = ParseProcNetSNMP(snmp)
	}
	sample.SampledAt = time.Now()
	return sample, nil
}

// run executes one command over a fresh SSH session
func (r *RouterProbe) run(ctx context.Context, cmd string) (string, error) {
	client, err := r.connect(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	done := make(chan error, 1)
	var output []byte
	go func() {
		var runErr error
		output, runErr = session.CombinedOutput(cmd)
		done <- runErr
	}()

	select {
	case err := <-done:
		if err != nil {
			// Non-zero exit still carries useful output (ping with
			// 100% loss exits 1)
			if _, ok := err.(*ssh.ExitError); ok {
				return string(output), nil
			}
			return "", fmt.Errorf("command failed: %w", err)
		}
		return string(output), nil
	case <-time.After(r.timeout):
		session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("command timeout")
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	}
}

func (r *RouterProbe) connect(ctx context.Context) (*ssh.Client, error) {
	config, err := r.buildSSHConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build SSH config: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", r.host, r.port)
	dialer := &net.Dialer{Timeout: r.timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

func (r *RouterProbe) buildSSHConfig() (*ssh.ClientConfig, error) {
	config := &ssh.ClientConfig{
		User:            r.user,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         r.timeout,
	}

	switch {
	case r.keyPath != "":
		keyData, err := os.ReadFile(r.keyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		config.Auth = []ssh.AuthMethod{ssh.PublicKeys(signer)}
	case r.password != "":
		config.Auth = []ssh.AuthMethod{ssh.Password(r.password)}
	default:
		return nil, fmt.Errorf("no router credentials configured")
	}

	return config, nil
}

// ParseLeases parses dnsmasq lease lines: epoch mac ip hostname clientid.
// Malformed lines are skipped.
func ParseLeases(output string) []domain.LeaseRecord {
	var leases []domain.LeaseRecord
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		epoch, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}
		lease := domain.LeaseRecord{
			MAC:       strings.ToLower(fields[1]),
			IP:        fields[2],
			ExpiresAt: time.Unix(epoch, 0),
		}
		if fields[3] != "*" {
			lease.Hostname = fields[3]
		}
		leases = append(leases, lease)
	}
	return leases
}

// ParseProcNetDev sums receive and transmit byte counters across
// physical interfaces. Loopback, docker and bridge interfaces are
// excluded so container traffic does not count as WAN throughput.
func ParseProcNetDev(output string) (rxBytes, txBytes uint64) {
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(line[:idx])
		if name == "lo" || strings.HasPrefix(name, "docker") ||
			strings.HasPrefix(name, "br-") || strings.HasPrefix(name, "veth") {
			continue
		}

		fields := strings.Fields(line[idx+1:])
		if len(fields) < 9 {
			continue
		}
		rx, err1 := strconv.ParseUint(fields[0], 10, 64)
		tx, err2 := strconv.ParseUint(fields[8], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		rxBytes += rx
		txBytes += tx
	}
	return rxBytes, txBytes
}

var iwinfoChannelRe = regexp.MustCompile(`Channel:\s+(\d+)\s+\(([\d.]+)\s+GHz\)`)

// ParseIwinfo extracts access point interfaces from iwinfo overview
// output. Client counts are filled in separately from assoclist.
func ParseIwinfo(output string) []domain.AccessPoint {
	var aps []domain.AccessPoint
	var current *domain.AccessPoint

	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		// Interface names start at column zero; detail lines are indented
		if line[0] != ' ' && line[0] != '\t' {
			if current != nil {
				aps = append(aps, *current)
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				current = nil
				continue
			}
			current = &domain.AccessPoint{Name: fields[0]}
			continue
		}
		if current == nil {
			continue
		}
		if m := iwinfoChannelRe.FindStringSubmatch(line); m != nil {
			current.Channel, _ = strconv.Atoi(m[1])
			if ghz, err := strconv.ParseFloat(m[2], 64); err == nil {
				current.Band = domain.BandForFreq(int(ghz * 1000))
			}
		}
	}
	if current != nil {
		aps = append(aps, *current)
	}
	return aps
}

var macLineRe = regexp.MustCompile(`^[0-9A-Fa-f]{2}(:[0-9A-Fa-f]{2}){5}\b`)

// CountAssociatedClients counts station entries in iwinfo assoclist
// output, one MAC-prefixed line per client.
func CountAssociatedClients(output string) int {
	count := 0
	for _, line := range strings.Split(output, "\n") {
		if macLineRe.MatchString(strings.TrimSpace(line)) {
			count++
		}
	}
	return count
}

// ParseProcNetSNMP reads TCP retransmissions and UDP receive errors
// from /proc/net/snmp. The file pairs a header line naming the columns
// with a value line, so counters are located by name rather than
// position.
func ParseProcNetSNMP(output string) (tcpRetrans, udpErrors int) {
	lines := strings.Split(output, "\n")
	for i := 0; i+1 < len(lines); i++ {
		header := strings.Fields(lines[i])
		values := strings.Fields(lines[i+1])
		if len(header) < 2 || len(header) != len(values) || header[0] != values[0] {
			continue
		}
		for j := 1; j < len(header); j++ {
			switch {
			case header[0] == "Tcp:" && header[j] == "RetransSegs":
				tcpRetrans, _ = strconv.Atoi(values[j])
			case header[0] == "Udp:" && header[j] == "InErrors":
				udpErrors, _ = strconv.Atoi(values[j])
			}
		}
	}
	return tcpRetrans, udpErrors
}

var (
	pingLossRe = regexp.MustCompile(`(\d+(?:\.\d+)?)% packet loss`)
	pingRttRe  = regexp.MustCompile(`(?:round-trip|rtt) min/avg/max(?:/mdev)? = ([\d.]+)/([\d.]+)/([\d.]+)(?:/([\d.]+))? ms`)
)

// ParsePingSummary parses busybox or iputils ping output into a metrics
// sample. Anything unparseable degrades to zero values.
func ParsePingSummary(output string) domain.NetworkMetricsSample {
	var sample domain.NetworkMetricsSample

	if m := pingLossRe.FindStringSubmatch(output); m != nil {
		sample.PacketLossPct, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := pingRttRe.FindStringSubmatch(output); m != nil {
		sample.LatencyMs, _ = strconv.ParseFloat(m[2], 64)
		sample.LatencyMaxMs, _ = strconv.ParseFloat(m[3], 64)
		if m[4] != "" {
			sample.JitterMs, _ = strconv.ParseFloat(m[4], 64)
		}
	}
	return sample
}
