package config

import (
	"fmt"
	"time"
)

// AppConfig is the root configuration container loaded at startup.
type AppConfig struct {
	Server      Server      `json:"server" yaml:"server"`
	Auth        Auth        `json:"auth" yaml:"auth"`
	Persistence Persistence `json:"persistence" yaml:"persistence"`
}

func (a AppConfig) Validate() error {
	if a.Auth.SigningKey == "" {
		return fmt.Errorf("config: auth.signing_key is required")
	}
	return nil
}

func (a AppConfig) GetServer() Server {
	return a.Server
}

func (a AppConfig) GetAuth() Auth {
	return a.Auth
}

func (a AppConfig) GetPersistence() Persistence {
	return a.Persistence
}

type Server struct {
	Addr    string `json:"addr" yaml:"addr"`
	BaseURL string `json:"base_url" yaml:"base_url"`
	Debug   bool   `json:"debug" yaml:"debug"`
}

func (s Server) GetAddr() string {
	if s.Addr == "" {
		return ":8080"
	}
	return s.Addr
}

func (s Server) GetBaseURL() string {
	if s.BaseURL == "" {
		return "http://localhost:8080"
	}
	return s.BaseURL
}

func (s Server) GetDebug() bool {
	return s.Debug
}

// Auth holds token and credential options. TTLs are expressed in seconds.
type Auth struct {
	SigningKey           string   `json:"signing_key" yaml:"signing_key"`
	SigningMethod        string   `json:"signing_method" yaml:"signing_method"`
	Issuer               string   `json:"issuer" yaml:"issuer"`
	Audience             []string `json:"audience" yaml:"audience"`
	ContextKey           string   `json:"context_key" yaml:"context_key"`
	TokenLookup          string   `json:"token_lookup" yaml:"token_lookup"`
	AuthScheme           string   `json:"auth_scheme" yaml:"auth_scheme"`
	AccessTokenTTL       int      `json:"access_token_ttl" yaml:"access_token_ttl"`
	RefreshTokenTTL      int      `json:"refresh_token_ttl" yaml:"refresh_token_ttl"`
	ConfirmationTokenTTL int      `json:"confirmation_token_ttl" yaml:"confirmation_token_ttl"`
	PasswordHashCost     int      `json:"password_hash_cost" yaml:"password_hash_cost"`
}

func (a Auth) GetSigningKey() string {
	return a.SigningKey
}

func (a Auth) GetSigningMethod() string {
	if a.SigningMethod == "" {
		return "HS256"
	}
	return a.SigningMethod
}

func (a Auth) GetIssuer() string {
	return a.Issuer
}

func (a Auth) GetAudience() []string {
	return a.Audience
}

func (a Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "claims"
	}
	return a.ContextKey
}

func (a Auth) GetTokenLookup() string {
	return a.TokenLookup
}

func (a Auth) GetAuthScheme() string {
	if a.AuthScheme == "" {
		return "Bearer"
	}
	return a.AuthScheme
}

func (a Auth) GetAccessTokenTTL() time.Duration {
	if a.AccessTokenTTL <= 0 {
		return time.Hour
	}
	return time.Duration(a.AccessTokenTTL) * time.Second
}

func (a Auth) GetRefreshTokenTTL() time.Duration {
	if a.RefreshTokenTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(a.RefreshTokenTTL) * time.Second
}

func (a Auth) GetConfirmationTokenTTL() time.Duration {
	if a.ConfirmationTokenTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(a.ConfirmationTokenTTL) * time.Second
}

func (a Auth) GetPasswordHashCost() int {
	return a.PasswordHashCost
}

type Persistence struct {
	Driver                string `json:"driver" yaml:"driver"`
	DSN                   string `json:"dsn" yaml:"dsn"`
	Debug                 bool   `json:"debug" yaml:"debug"`
	PingTimeoutExpression string `json:"ping_timeout" yaml:"ping_timeout"`
}

func (p Persistence) GetDriver() string {
	if p.Driver == "" {
		return "sqlite"
	}
	return p.Driver
}

func (p Persistence) GetDSN() string {
	if p.DSN == "" {
		return "file::memory:?cache=shared"
	}
	return p.DSN
}

func (p Persistence) GetDebug() bool {
	return p.Debug
}

func (p Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}
