// Package clientinfo discovers the host name and the local and public
// addresses of the machine running the monitor.
package clientinfo

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"Go2NetWatch/internal/config"

	jsoniter "github.com/json-iterator/go"
	"github.com/miekg/dns"
	log "github.com/sirupsen/logrus"
)

// openDNSName resolves to the querying client's address on OpenDNS resolvers.
const openDNSName = "myip.opendns.com."

// Info describes the local host. Empty fields could not be determined.
type Info struct {
	Hostname       string `json:"hostname"`
	LocalIP        string `json:"local_ip"`
	PublicIP       string `json:"public_ip"`
	PublicIPSource string `json:"public_ip_source,omitempty"`
}

// Strategy is one way of learning the public address.
type Strategy interface {
	Name() string
	PublicIP(ctx context.Context) (string, error)
}

// Resolver tries its strategies in order until one returns an address.
type Resolver struct {
	strategies []Strategy
	// dialAddr is dialed over UDP to pick the outbound interface; no packet is sent.
	dialAddr   string
}

// NewResolver builds the HTTP and DNS strategies from the configuration.
func NewResolver(cfg config.ClientInfoConfig) (*Resolver, error) {
	timeout, err := cfg.LookupTimeout()
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: timeout}

	var strategies []Strategy
	for _, url := range cfg.PublicIPURLs {
		strategies = append(strategies, &HTTPStrategy{URL: url, Client: client})
	}
	if cfg.DNSResolver != "" {
		strategies = append(strategies, &DNSStrategy{Server: cfg.DNSResolver, Timeout: timeout})
	}
	return NewResolverWithStrategies(strategies...), nil
}

// NewResolverWithStrategies creates a resolver using the given strategies.
func NewResolverWithStrategies(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies, dialAddr: "8.8.8.8:80"}
}

// Resolve gathers everything it can; failures leave the field empty.
func (r *Resolver) Resolve(ctx context.Context) Info {
	var info Info

	if name, err := os.Hostname(); err == nil {
		info.Hostname = name
	} else {
		log.WithError(err).Warn("failed to read hostname")
	}

	if ip, err := LocalIP(r.dialAddr); err == nil {
		info.LocalIP = ip
	} else {
		log.WithError(err).Warn("failed to determine local IP")
	}

	info.PublicIP, info.PublicIPSource = r.PublicIP(ctx)
	return info
}

// PublicIP returns the first address found and the strategy that found it.
func (r *Resolver) PublicIP(ctx context.Context) (string, string) {
	for _, s := range r.strategies {
		ip, err := s.PublicIP(ctx)
		if err != nil {
			log.WithError(err).WithField("strategy", s.Name()).Debug("public IP lookup failed")
			continue
		}
		return ip, s.Name()
	}
	return "", ""
}

// LocalIP returns the address of the interface used to reach dialAddr.
func LocalIP(dialAddr string) (string, error) {
	conn, err := net.Dial("udp", dialAddr)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("unexpected local address %v", conn.LocalAddr())
	}
	return addr.IP.String(), nil
}

// HTTPStrategy asks an echo service. The response may be a JSON object with
// an "ip" field or the bare address as text.
type HTTPStrategy struct {
	URL    string
	Client *http.Client
}

func (s *HTTPStrategy) Name() string { return s.URL }

func (s *HTTPStrategy) PublicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", err
	}
	return parseIPBody(body)
}

func parseIPBody(body []byte) (string, error) {
	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "{") {
		var payload struct {
			IP string `json:"ip"`
		}
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &payload); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		text = payload.IP
	}
	if net.ParseIP(text) == nil {
		return "", fmt.Errorf("response %q is not an IP address", text)
	}
	return text, nil
}

// DNSStrategy queries an OpenDNS resolver for myip.opendns.com.
type DNSStrategy struct {
	Server  string
	Timeout time.Duration
}

func (s *DNSStrategy) Name() string { return "dns:" + s.Server }

func (s *DNSStrategy) PublicIP(ctx context.Context) (string, error) {
	c := new(dns.Client)
	c.Timeout = s.Timeout

	m := new(dns.Msg)
	m.SetQuestion(openDNSName, dns.TypeA)

	resp, _, err := c.ExchangeContext(ctx, m, s.Server)
	if err != nil {
		return "", err
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("dns query failed: %s", dns.RcodeToString[resp.Rcode])
	}
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A.String(), nil
		}
	}
	return "", fmt.Errorf("no A record in dns answer")
}
