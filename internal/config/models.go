package config

import (
	"fmt"
	"time"

	"github.com/razavidev/dea-detector/internal/core"
)

// ServerConfig represents the front-end configuration
type ServerConfig struct {
	FrontendType        string
	ListenAddress       string
	PolicyAddress       string
	RequestTimeout      time.Duration
	PolicyRejectMessage string
	PolicyScoreHeader   string
}

// DNSConfig represents the resolver configuration
type DNSConfig struct {
	Resolver string
	Servers  []string
	Timeout  time.Duration
}

// BlacklistConfig represents the blacklist store configuration
type BlacklistConfig struct {
	Type         string
	SQLitePath   string
	MySQLDSN     string
	PostgresDSN  string
	RedisAddress string
	RedisKey     string
	Timeout      time.Duration
	FailPolicy   string
}

// ProbeConfig represents the catch-all prober configuration
type ProbeConfig struct {
	Enabled        bool
	Port           int
	Timeout        time.Duration
	SOCKS5Address  string
	SOCKS5Username string
	SOCKS5Password string
}

// VerifyConfig represents the mailbox verifier configuration
type VerifyConfig struct {
	Enabled  bool
	Port     int
	FQDN     string
	Sender   string
	Timeout  time.Duration
	Attempts int
}

// RefreshConfig represents the blacklist refresh configuration
type RefreshConfig struct {
	Sources     []string
	Interval    time.Duration
	OnStartup   bool
	HTTPTimeout time.Duration
	MaxRetries  int
	S3Region    string
}

// GetServer returns the front-end configuration
func (c *Config) GetServer() (ServerConfig, error) {
	timeout, err := c.GetDuration("server.request_timeout")
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		FrontendType:        c.GetString("server.frontend_type"),
		ListenAddress:       c.GetString("server.listen_address"),
		PolicyAddress:       c.GetString("server.policy_address"),
		RequestTimeout:      timeout,
		PolicyRejectMessage: c.GetString("server.policy_reject_message"),
		PolicyScoreHeader:   c.GetString("server.policy_score_header"),
	}, nil
}

// GetScoring returns the weights and threshold
func (c *Config) GetScoring() (core.ScoringSettings, error) {
	threshold := c.GetFloat64("scoring.threshold")
	if threshold < 0 || threshold > 1 {
		return core.ScoringSettings{}, fmt.Errorf("scoring.threshold must be within [0, 1], got %v", threshold)
	}

	return core.ScoringSettings{
		Threshold: threshold,
		Weights: core.Weights{
			NotMajorProvider:   c.GetFloat64("scoring.weights.not_major_provider"),
			NoMX:               c.GetFloat64("scoring.weights.no_mx"),
			SuspiciousMX:       c.GetFloat64("scoring.weights.suspicious_mx"),
			NoSPF:              c.GetFloat64("scoring.weights.no_spf"),
			NoAAAA:             c.GetFloat64("scoring.weights.no_aaaa"),
			Randomness:         c.GetFloat64("scoring.weights.randomness"),
			Blacklisted:        c.GetFloat64("scoring.weights.blacklisted"),
			CatchAll:           c.GetFloat64("scoring.weights.catch_all"),
			MailboxUnreachable: c.GetFloat64("scoring.weights.mailbox_unreachable"),
		},
	}, nil
}

// GetMajorProviders returns the trusted provider domains
func (c *Config) GetMajorProviders() []string {
	return c.GetStringSlice("providers.major")
}

// GetDNS returns the resolver configuration
func (c *Config) GetDNS() (DNSConfig, error) {
	timeout, err := c.GetDuration("dns.timeout")
	if err != nil {
		return DNSConfig{}, err
	}

	return DNSConfig{
		Resolver: c.GetString("dns.resolver"),
		Servers:  c.GetStringSlice("dns.servers"),
		Timeout:  timeout,
	}, nil
}

// GetBlacklist returns the blacklist store configuration
func (c *Config) GetBlacklist() (BlacklistConfig, error) {
	timeout, err := c.GetDuration("blacklist.timeout")
	if err != nil {
		return BlacklistConfig{}, err
	}

	return BlacklistConfig{
		Type:         c.GetString("blacklist.type"),
		SQLitePath:   c.GetString("blacklist.sqlite_path"),
		MySQLDSN:     c.GetString("blacklist.mysql_dsn"),
		PostgresDSN:  c.GetString("blacklist.postgres_dsn"),
		RedisAddress: c.GetString("blacklist.redis_address"),
		RedisKey:     c.GetString("blacklist.redis_key"),
		Timeout:      timeout,
		FailPolicy:   c.GetString("blacklist.fail_policy"),
	}, nil
}

// GetProbe returns the catch-all prober configuration
func (c *Config) GetProbe() (ProbeConfig, error) {
	timeout, err := c.GetDuration("probe.timeout")
	if err != nil {
		return ProbeConfig{}, err
	}

	return ProbeConfig{
		Enabled:        c.GetBool("probe.enabled"),
		Port:           c.GetInt("probe.port"),
		Timeout:        timeout,
		SOCKS5Address:  c.GetString("probe.socks5_address"),
		SOCKS5Username: c.GetString("probe.socks5_username"),
		SOCKS5Password: c.GetString("probe.socks5_password"),
	}, nil
}

// GetVerify returns the mailbox verifier configuration
func (c *Config) GetVerify() (VerifyConfig, error) {
	timeout, err := c.GetDuration("verify.timeout")
	if err != nil {
		return VerifyConfig{}, err
	}

	return VerifyConfig{
		Enabled:  c.GetBool("verify.enabled"),
		Port:     c.GetInt("verify.port"),
		FQDN:     c.GetString("verify.fqdn"),
		Sender:   c.GetString("verify.sender"),
		Timeout:  timeout,
		Attempts: c.GetInt("verify.attempts"),
	}, nil
}

// GetRefresh returns the blacklist refresh configuration
func (c *Config) GetRefresh() (RefreshConfig, error) {
	interval, err := c.GetDuration("refresh.interval")
	if err != nil {
		return RefreshConfig{}, err
	}
	httpTimeout, err := c.GetDuration("refresh.http_timeout")
	if err != nil {
		return RefreshConfig{}, err
	}

	return RefreshConfig{
		Sources:     c.GetStringSlice("refresh.sources"),
		Interval:    interval,
		OnStartup:   c.GetBool("refresh.on_startup"),
		HTTPTimeout: httpTimeout,
		MaxRetries:  c.GetInt("refresh.max_retries"),
		S3Region:    c.GetString("refresh.s3_region"),
	}, nil
}
