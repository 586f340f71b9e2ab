package ch

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/mitchellh/mapstructure"

	"github.com/netgraph-io/chwire/compress"
)

// DSNOptions is the flat, string-keyed form of the options recognised in
// a connection string. Decoding goes through mapstructure so values
// arriving as strings (from a parsed "key=value" connection string) convert
// to the struct's typed fields the same way a config-loader would.
type DSNOptions struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	TimeoutMs int `mapstructure:"timeout"`

	Compress          bool   `mapstructure:"compress"`
	CompressionMethod string `mapstructure:"compression_method"`

	UseTLS             bool   `mapstructure:"use_tls"`
	TLSPort            int    `mapstructure:"tls_port"`
	AllowInsecureTLS   bool   `mapstructure:"allow_insecure_tls"`
	TLSCACertificate   string `mapstructure:"tls_ca_certificate"`

	// Servers is a comma-separated host:port list naming additional
	// endpoints for the resilience layer's load balancer.
	Servers string `mapstructure:"servers"`

	LoadBalancing string `mapstructure:"load_balancing"`

	MaxRetries              int `mapstructure:"max_retries"`
	RetryBaseDelayMs        int `mapstructure:"retry_base_delay_ms"`
	RetryMaxDelayMs         int `mapstructure:"retry_max_delay_ms"`
	CircuitBreakerThreshold int `mapstructure:"circuit_breaker_threshold"`
	CircuitBreakerDurationS int `mapstructure:"circuit_breaker_duration_s"`
	HealthCheckIntervalS    int `mapstructure:"health_check_interval_s"`
}

// ParseConnectionString parses a flat "key=value" connection string (pairs
// separated by ';' or '&') into a string-keyed map suitable for
// DecodeConnectionString.
func ParseConnectionString(s string) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	s = strings.TrimSpace(s)
	if s == "" {
		return out, nil
	}

	sep := ";"
	if strings.Contains(s, "&") && !strings.Contains(s, ";") {
		sep = "&"
	}
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, errors.Errorf("invalid connection string segment %q", part)
		}
		out[strings.ToLower(strings.TrimSpace(kv[0]))] = strings.TrimSpace(kv[1])
	}
	return out, nil
}

// DecodeConnectionString parses and decodes a connection string directly
// into a DSNOptions.
func DecodeConnectionString(s string) (DSNOptions, error) {
	raw, err := ParseConnectionString(s)
	if err != nil {
		return DSNOptions{}, err
	}
	return DecodeDSNMap(raw)
}

// DecodeDSNMap decodes a string-keyed option map (e.g. parsed from a config
// file) into a DSNOptions, weakly typing "true"/"5000"-style string values
// into the struct's bool/int fields.
func DecodeDSNMap(raw map[string]interface{}) (DSNOptions, error) {
	var opt DSNOptions
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &opt,
	})
	if err != nil {
		return DSNOptions{}, errors.Wrap(err, "new decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return DSNOptions{}, errors.Wrap(err, "decode")
	}
	return opt, nil
}

// Address returns the primary host:port this DSNOptions names.
func (o DSNOptions) Address() string {
	port := o.Port
	if o.UseTLS && o.TLSPort != 0 {
		port = o.TLSPort
	}
	if port == 0 {
		if o.UseTLS {
			port = 9440
		} else {
			port = 9000
		}
	}
	return net.JoinHostPort(o.Host, strconv.Itoa(port))
}

// AdditionalServers splits the Servers field into host:port addresses.
func (o DSNOptions) AdditionalServers() []string {
	if o.Servers == "" {
		return nil
	}
	parts := strings.Split(o.Servers, ",")
	addrs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			addrs = append(addrs, p)
		}
	}
	return addrs
}

// ToOptions builds a Dial-ready Options from the decoded DSN.
func (o DSNOptions) ToOptions() (Options, error) {
	opt := Options{
		Database: o.Database,
		User:     o.Username,
		Password: o.Password,
	}
	if o.TimeoutMs > 0 {
		opt.DialTimeout = time.Duration(o.TimeoutMs) * time.Millisecond
	}
	if o.Compress {
		opt.Compression = CompressionEnabled
		switch strings.ToLower(o.CompressionMethod) {
		case "", "lz4":
			opt.CompressionMethod = compress.MethodLZ4
		case "zstd":
			opt.CompressionMethod = compress.MethodZSTD
		default:
			return Options{}, errors.Errorf("unknown compression_method %q", o.CompressionMethod)
		}
	}
	if o.UseTLS {
		cfg := &tls.Config{InsecureSkipVerify: o.AllowInsecureTLS} //nolint:gosec // explicit opt-in via allow_insecure_tls
		if o.TLSCACertificate != "" {
			pem, err := os.ReadFile(o.TLSCACertificate)
			if err != nil {
				return Options{}, errors.Wrap(err, "read tls_ca_certificate")
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return Options{}, errors.Errorf("no certificates found in %q", o.TLSCACertificate)
			}
			cfg.RootCAs = pool
		}
		opt.TLS = cfg
	}
	return opt, nil
}
