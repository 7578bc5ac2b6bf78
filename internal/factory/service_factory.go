package factory

import (
	"github.com/razavidev/dea-detector/internal/adapters/smtpprobe"
	"github.com/razavidev/dea-detector/internal/adapters/verifier"
	"github.com/razavidev/dea-detector/internal/config"
	"github.com/razavidev/dea-detector/internal/core"
	"github.com/razavidev/dea-detector/internal/signals"
	"github.com/razavidev/dea-detector/internal/whitelist"
	"go.uber.org/zap"
)

// ServiceFactory assembles the risk service from its collectors
type ServiceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(cfg *config.Config, logger *zap.Logger) *ServiceFactory {
	return &ServiceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCollector creates the DNS signal collector
func (f *ServiceFactory) CreateCollector(resolver core.Resolver) (*signals.DNSCollector, error) {
	dnsCfg, err := f.cfg.GetDNS()
	if err != nil {
		return nil, err
	}

	providers := whitelist.NewSet(f.cfg.GetMajorProviders(), f.logger)
	return signals.NewDNSCollector(resolver, providers, dnsCfg.Timeout, f.logger), nil
}

// CreateProber creates the catch-all prober, or nil when probing is disabled
func (f *ServiceFactory) CreateProber(resolver core.Resolver) (*smtpprobe.Prober, error) {
	probeCfg, err := f.cfg.GetProbe()
	if err != nil || !probeCfg.Enabled {
		return nil, err
	}

	dialer, err := f.dialer(probeCfg)
	if err != nil {
		return nil, err
	}

	return smtpprobe.NewProber(resolver, smtpprobe.Config{
		Port:    probeCfg.Port,
		Timeout: probeCfg.Timeout,
		Dialer:  dialer,
	}, f.logger), nil
}

// CreateVerifier creates the mailbox verifier, or nil when verification is disabled.
// It shares the prober's SOCKS5 settings.
func (f *ServiceFactory) CreateVerifier(resolver core.Resolver) (*verifier.SMTPVerifier, error) {
	verifyCfg, err := f.cfg.GetVerify()
	if err != nil || !verifyCfg.Enabled {
		return nil, err
	}

	probeCfg, err := f.cfg.GetProbe()
	if err != nil {
		return nil, err
	}
	dialer, err := f.dialer(probeCfg)
	if err != nil {
		return nil, err
	}

	return verifier.NewSMTPVerifier(resolver, verifier.Config{
		Port:     verifyCfg.Port,
		FQDN:     verifyCfg.FQDN,
		Sender:   verifyCfg.Sender,
		Timeout:  verifyCfg.Timeout,
		Attempts: verifyCfg.Attempts,
		Dialer:   dialer,
	}, f.logger), nil
}

func (f *ServiceFactory) dialer(probeCfg config.ProbeConfig) (smtpprobe.Dialer, error) {
	if probeCfg.SOCKS5Address == "" {
		return nil, nil
	}

	f.logger.Info("Routing SMTP conversations through SOCKS5 proxy",
		zap.String("proxy", probeCfg.SOCKS5Address))
	return smtpprobe.NewSOCKS5Dialer(probeCfg.SOCKS5Address, probeCfg.SOCKS5Username, probeCfg.SOCKS5Password)
}

// CreateRiskService wires the collectors into the risk service
func (f *ServiceFactory) CreateRiskService(resolver core.Resolver, blacklistClient *signals.BlacklistClient) (*core.RiskService, error) {
	scoring, err := f.cfg.GetScoring()
	if err != nil {
		return nil, err
	}

	collector, err := f.CreateCollector(resolver)
	if err != nil {
		return nil, err
	}

	// Typed nil pointers must not leak into the interfaces.
	var prober core.CatchAllProber
	if p, err := f.CreateProber(resolver); err != nil {
		return nil, err
	} else if p != nil {
		prober = p
	}

	var mailboxVerifier core.MailboxVerifier
	if v, err := f.CreateVerifier(resolver); err != nil {
		return nil, err
	} else if v != nil {
		mailboxVerifier = v
	}

	return core.NewRiskService(
		collector,
		blacklistClient,
		signals.Randomness,
		prober,
		mailboxVerifier,
		f.logger,
		scoring,
	), nil
}
