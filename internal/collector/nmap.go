package collector

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"

	"sentinel/internal/domain"
)

// NmapDiscovery discovers live hosts with an nmap ping sweep
type NmapDiscovery struct {
	targets []string
	timeout time.Duration
}

// NmapOption configures an NmapDiscovery
type NmapOption func(*NmapDiscovery)

// WithScanTimeout overrides the per-sweep timeout
func WithScanTimeout(d time.Duration) NmapOption {
	return func(n *NmapDiscovery) { n.timeout = d }
}

// NewNmapDiscovery creates a discovery source over the given CIDR
// targets or individual IPs.
func NewNmapDiscovery(targets []string, opts ...NmapOption) *NmapDiscovery {
	n := &NmapDiscovery{
		targets: targets,
		timeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Available checks that the nmap binary can be executed
func (n *NmapDiscovery) Available(ctx context.Context) bool {
	scanner, err := nmap.NewScanner(
		ctx,
		nmap.WithTargets("localhost"),
		nmap.WithListScan(),
	)
	if err != nil {
		return false
	}
	_, _, err = scanner.Run()
	return err == nil
}

// Discover runs a ping sweep of all configured targets. Failures on
// individual targets are logged and skipped so one bad range does not
// lose the rest of the sweep.
func (n *NmapDiscovery) Discover(ctx context.Context) ([]domain.DiscoveryRecord, error) {
	if len(n.targets) == 0 {
		log.Printf("Discovery: no targets configured")
		return nil, nil
	}

	scanCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	var records []domain.DiscoveryRecord
	for _, target := range n.targets {
		recs, err := n.sweepTarget(scanCtx, target)
		if err != nil {
			log.Printf("Discovery: error sweeping %s: %v", target, err)
			continue
		}
		records = append(records, recs...)
	}

	log.Printf("Discovery: sweep complete, %d hosts up", len(records))
	return records, nil
}

func (n *NmapDiscovery) sweepTarget(ctx context.Context, target string) ([]domain.DiscoveryRecord, error) {
	scanner, err := nmap.NewScanner(
		ctx,
		nmap.WithTargets(target),
		nmap.WithPingScan(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("sweep failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		log.Printf("Discovery: warnings for %s: %v", target, *warnings)
	}

	now := time.Now()
	var records []domain.DiscoveryRecord
	for _, host := range result.Hosts {
		if host.Status.State != "up" || len(host.Addresses) == 0 {
			continue
		}

		var rec domain.DiscoveryRecord
		for _, addr := range host.Addresses {
			switch addr.AddrType {
			case "ipv4":
				rec.IP = addr.Addr
			case "mac":
				rec.MAC = strings.ToLower(addr.Addr)
			}
		}
		if rec.IP == "" {
			continue
		}
		if len(host.Hostnames) > 0 {
			rec.Hostname = host.Hostnames[0].Name
		}
		rec.LastSeen = now
		records = append(records, rec)
	}
	return records, nil
}
