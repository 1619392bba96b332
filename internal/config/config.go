package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Registry  RegistryConfig
	Discovery DiscoveryConfig
	Probe     ProbeConfig
	Generator GeneratorConfig
	Output    OutputConfig
	Metrics   MetricsConfig
}

type RegistryConfig struct {
	BaseURL      string
	PageSize     int
	MaxCompanies int
	MinEmployees int
	UserAgent    string
}

type DiscoveryConfig struct {
	BusinessConcurrency  int
	CandidateConcurrency int
	RateInterval         time.Duration
	RateBurst            int
	Deadline             time.Duration
}

type ProbeConfig struct {
	Timeout         time.Duration
	ResolverAddr    string
	RetryDNSTimeout bool
}

type GeneratorConfig struct {
	TLDs             []string
	LegalSuffixes    []string
	Transliterations map[string]string
	MaxCandidates    int
	MinSlugLength    int
}

type OutputConfig struct {
	Format string
	File   string
}

type MetricsConfig struct {
	Addr string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("DOMAINSCOUT")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("registry.baseurl", "https://data.brreg.no/enhetsregisteret/api")
	viper.SetDefault("registry.pagesize", 20)
	viper.SetDefault("registry.maxcompanies", 1000)
	viper.SetDefault("registry.minemployees", 10)
	viper.SetDefault("registry.useragent", "domainscout/1.0")
	viper.SetDefault("discovery.businessconcurrency", 4)
	viper.SetDefault("discovery.candidateconcurrency", 5)
	viper.SetDefault("discovery.rateinterval", "250ms")
	viper.SetDefault("discovery.rateburst", 1)
	viper.SetDefault("discovery.deadline", "0")
	viper.SetDefault("probe.timeout", "5s")
	viper.SetDefault("probe.resolveraddr", "8.8.8.8:53")
	viper.SetDefault("probe.retrydnstimeout", false)
	viper.SetDefault("generator.tlds", []string{".no", ".com", ".org", ".net"})
	viper.SetDefault("generator.legalsuffixes", []string{"as", "asa", "ans", "ba", "da", "iks", "ks", "nuf", "sa", "sf"})
	viper.SetDefault("generator.maxcandidates", 20)
	viper.SetDefault("generator.minsluglength", 3)
	viper.SetDefault("output.format", "json")
	viper.SetDefault("output.file", "norwegian_companies_domains.json")
	viper.SetDefault("metrics.addr", "")

	var cfg Config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Override with environment variables
	if url := os.Getenv("BRREG_BASE_URL"); url != "" {
		cfg.Registry.BaseURL = url
	}
	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		cfg.Metrics.Addr = addr
	}

	if len(cfg.Generator.Transliterations) == 0 {
		cfg.Generator.Transliterations = map[string]string{
			"æ": "ae",
			"ø": "o",
			"å": "a",
		}
	}

	return &cfg, nil
}
