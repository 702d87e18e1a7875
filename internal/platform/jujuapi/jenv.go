package jujuapi

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// apiServerName is the name the controller's self-signed certificate is
// issued for, independent of the address it is reached on.
const apiServerName = "juju-apiserver"

// Credentials are the connection details written by juju on bootstrap.
type Credentials struct {
	User         string   `yaml:"user"`
	Password     string   `yaml:"password"`
	EnvironUUID  string   `yaml:"environ-uuid"`
	CACert       string   `yaml:"ca-cert"`
	StateServers []string `yaml:"state-servers"`
}

// JujuHome returns $JUJU_HOME, defaulting to ~/.juju.
func JujuHome() string {
	if home := os.Getenv("JUJU_HOME"); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ".juju"
	}
	return filepath.Join(userHome, ".juju")
}

// LoadCredentials reads <home>/environments/<env>.jenv.
func LoadCredentials(home, env string) (*Credentials, error) {
	path := filepath.Join(home, "environments", env+".jenv")
	// #nosec G304 -- path is derived from the juju home and environment name
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials for environment %q: %w", env, err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if creds.User == "" {
		creds.User = "admin"
	}
	if len(creds.StateServers) == 0 {
		return nil, fmt.Errorf("%s: no state servers recorded", path)
	}
	return &creds, nil
}

// Endpoints returns the API URLs of every recorded state server.
func (c *Credentials) Endpoints() []string {
	endpoints := make([]string, 0, len(c.StateServers))
	for _, server := range c.StateServers {
		if c.EnvironUUID == "" {
			endpoints = append(endpoints, "wss://"+server+"/")
			continue
		}
		endpoints = append(endpoints, "wss://"+server+"/environment/"+c.EnvironUUID+"/api")
	}
	return endpoints
}

// TLSConfig trusts only the environment's CA certificate.
func (c *Credentials) TLSConfig() (*tls.Config, error) {
	if c.CACert == "" {
		return nil, errors.New("no CA certificate recorded")
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM([]byte(c.CACert)) {
		return nil, errors.New("invalid CA certificate")
	}
	return &tls.Config{
		RootCAs:    pool,
		ServerName: apiServerName,
		MinVersion: tls.VersionTLS12,
	}, nil
}
