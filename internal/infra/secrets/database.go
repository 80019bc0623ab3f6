// Package secrets loads database credentials from AWS Secrets Manager.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// API is the subset of the Secrets Manager client used here.
type API interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Port accepts both 5432 and "5432" since RDS-managed secrets use a number
// and hand-written ones often use a string.
type Port int

func (p *Port) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*p = Port(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("port: %w", err)
	}
	if s == "" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("port %q: %w", s, err)
	}
	*p = Port(n)
	return nil
}

type DatabaseSecret struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     Port   `json:"port"`
	DBName   string `json:"dbname"`
	Engine   string `json:"engine,omitempty"`
}

// PostgresURL renders the secret as a lib/pq connection URL.
func (s DatabaseSecret) PostgresURL(sslMode string) string {
	port := int(s.Port)
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.Username, s.Password),
		Host:   net.JoinHostPort(s.Host, strconv.Itoa(port)),
		Path:   "/" + s.DBName,
	}
	if sslMode != "" {
		u.RawQuery = url.Values{"sslmode": {sslMode}}.Encode()
	}
	return u.String()
}

// MySQLDSN renders the secret in go-sql-driver/mysql form.
func (s DatabaseSecret) MySQLDSN() string {
	port := int(s.Port)
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true",
		s.Username, s.Password, net.JoinHostPort(s.Host, strconv.Itoa(port)), s.DBName)
}

type Loader struct {
	api API
}

func NewLoader(api API) *Loader { return &Loader{api: api} }

func NewFromConfig(cfg aws.Config) *Loader {
	return NewLoader(secretsmanager.NewFromConfig(cfg))
}

// Database fetches and decodes the named secret.
func (l *Loader) Database(ctx context.Context, name string) (DatabaseSecret, error) {
	out, err := l.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(name)})
	if err != nil {
		return DatabaseSecret{}, fmt.Errorf("get secret %s: %w", name, err)
	}
	raw := aws.ToString(out.SecretString)
	if raw == "" {
		return DatabaseSecret{}, fmt.Errorf("secret %s has no string value", name)
	}
	var s DatabaseSecret
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return DatabaseSecret{}, fmt.Errorf("decode secret %s: %w", name, err)
	}
	if s.Host == "" || s.Username == "" {
		return DatabaseSecret{}, fmt.Errorf("secret %s is missing host or username", name)
	}
	return s, nil
}
