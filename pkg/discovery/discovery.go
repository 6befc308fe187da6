// Package discovery sweeps the local network for receivers. HTTP ports are
// probed against the known status endpoint, raw-socket ports with a plain TCP
// dial; positive sightings are persisted as DiscoveredReceiver rows for the
// control panel to offer as command targets.
package discovery

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"avrctl/pkg/database"
	"avrctl/pkg/models"
	"avrctl/pkg/status"
	"avrctl/pkg/worker"
)

// Probe is one address to check.
type Probe struct {
	IP   string
	Port int
}

// Result is the outcome of one probe.
type Result struct {
	Probe
	Alive        bool
	Method       string // http_probe or tcp_probe
	FriendlyName string
}

// Service runs periodic sweeps and records sightings.
type Service struct {
	pool     *worker.Pool[Probe, Result]
	store    *database.DiscoveryStore
	status   *status.Client
	interval time.Duration
	stale    time.Duration
	cidr     string
	ports    []int
	timeout  time.Duration

	// TriggerChan requests an immediate sweep, e.g. from the API.
	TriggerChan chan struct{}
}

// NewService creates a discovery service. An empty cidr disables sweeping;
// the service still serves API-triggered scans as no-ops in that case.
func NewService(
	store *database.DiscoveryStore,
	cidr string,
	ports []int,
	concurrency int,
	probeTimeout time.Duration,
	interval time.Duration,
	staleAfter time.Duration,
) *Service {
	s := &Service{
		store:       store,
		status:      status.NewClient(probeTimeout),
		interval:    interval,
		stale:       staleAfter,
		cidr:        cidr,
		ports:       ports,
		timeout:     probeTimeout,
		TriggerChan: make(chan struct{}, 1),
	}
	s.pool = worker.NewPool(concurrency, "DiscoveryPool", 256, s.probe)
	return s
}

// Run starts the sweep loop. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	slog.Info("Starting discovery service", "component", "Discovery", "cidr", s.cidr, "ports", s.ports)

	s.pool.Start(ctx)
	go s.collectResults(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping discovery service", "component", "Discovery")
			return
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.TriggerChan:
			s.sweep(ctx)
		}
	}
}

// Trigger requests an immediate sweep without blocking.
func (s *Service) Trigger() {
	select {
	case s.TriggerChan <- struct{}{}:
	default:
	}
}

// sweep submits one probe per host/port pair and retires stale rows.
func (s *Service) sweep(ctx context.Context) {
	if s.cidr == "" {
		return
	}

	hosts, err := HostsInCIDR(s.cidr)
	if err != nil {
		slog.Error("Invalid discovery CIDR", "component", "Discovery", "cidr", s.cidr, "error", err)
		return
	}

	slog.Info("Starting sweep", "component", "Discovery", "hosts", len(hosts))
	for _, host := range hosts {
		for _, port := range s.ports {
			if !s.pool.Submit(ctx, Probe{IP: host, Port: port}) {
				return
			}
		}
	}

	if n, err := s.store.MarkStale(ctx, time.Now().UTC().Add(-s.stale)); err != nil {
		slog.Error("Failed to retire stale sightings", "component", "Discovery", "error", err)
	} else if n > 0 {
		slog.Info("Retired stale sightings", "component", "Discovery", "count", n)
	}
}

// probe checks a single address. Port 23 is treated as a raw control port
// where a completed dial is the only signal available; HTTP ports must serve
// the status endpoint to count as a receiver.
func (s *Service) probe(ctx context.Context, p Probe) Result {
	if p.Port == 23 {
		addr := net.JoinHostPort(p.IP, strconv.Itoa(p.Port))
		dialer := net.Dialer{Timeout: s.timeout}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return Result{Probe: p}
		}
		conn.Close()
		return Result{Probe: p, Alive: true, Method: "tcp_probe"}
	}

	st, err := s.status.Fetch(ctx, p.IP, p.Port)
	if err != nil {
		return Result{Probe: p}
	}
	return Result{Probe: p, Alive: true, Method: "http_probe", FriendlyName: st.FriendlyName}
}

// collectResults persists positive sightings.
func (s *Service) collectResults(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-s.pool.Results():
			if !ok {
				return
			}
			if !res.Alive {
				continue
			}
			sighting := &models.DiscoveredReceiver{
				IPAddress:       res.IP,
				Port:            res.Port,
				FriendlyName:    res.FriendlyName,
				DiscoveryMethod: res.Method,
			}
			if err := s.store.RecordSighting(ctx, sighting); err != nil {
				slog.Error("Failed to record sighting", "component", "Discovery", "addr", res.IP, "error", err)
			} else {
				slog.Info("Receiver sighted", "component", "Discovery", "addr", res.IP, "port", res.Port, "method", res.Method)
			}
		}
	}
}

// HostsInCIDR expands a CIDR into its usable host addresses. Networks wider
// than /16 are refused to keep a mistyped mask from scanning half the
// internet.
func HostsInCIDR(cidr string) ([]string, error) {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}
	ones, bits := ipNet.Mask.Size()
	if bits-ones > 16 {
		return nil, &net.ParseError{Type: "CIDR mask", Text: cidr}
	}

	var hosts []string
	for addr := ip.Mask(ipNet.Mask); ipNet.Contains(addr); incIP(addr) {
		hosts = append(hosts, addr.String())
	}

	// Drop network and broadcast addresses for real subnets.
	if len(hosts) > 2 {
		hosts = hosts[1 : len(hosts)-1]
	}
	return hosts, nil
}

func incIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			break
		}
	}
}
