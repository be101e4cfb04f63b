package postgres

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jackc/pgpassfile"
)

// DefaultLoaderUser is the fixed low-privilege role the destination schema
// provisions for bulk loading. It is the only identity with a built-in
// default credential.
const DefaultLoaderUser = "oldb_loader"

// defaultLoaderPassword matches the provisioning default for
// DefaultLoaderUser. Any other identity must supply its credential through
// another chain link.
const defaultLoaderPassword = "OffshoreLeaks2024!"

// Environment variables consulted by the credential chain, in order.
var passwordEnvVars = []string{"LEAKLOADER_DB_PASSWORD", "PGPASSWORD"}

// ErrNoCredentials is returned when the credential chain is exhausted. It is
// fatal at startup, before any table is touched.
var ErrNoCredentials = errors.New("postgres: no password resolved; pass --password, set LEAKLOADER_DB_PASSWORD, or provide a pgpass file in the credentials directory")

// ResolvePassword walks the credential chain for cfg.User:
// explicit config value, then the built-in default when connecting as
// DefaultLoaderUser, then environment secrets, then a pgpass file inside
// CredentialsDir. The returned origin names the link used so callers can
// log it without exposing the secret.
func ResolvePassword(cfg Config) (password, origin string, err error) {
	if cfg.Password != "" {
		return cfg.Password, "explicit", nil
	}
	if cfg.User == DefaultLoaderUser {
		return defaultLoaderPassword, "loader-default", nil
	}
	for _, key := range passwordEnvVars {
		if v := os.Getenv(key); v != "" {
			return v, "env:" + key, nil
		}
	}
	if cfg.CredentialsDir != "" {
		pw, err := passfileLookup(cfg)
		if err != nil {
			return "", "", err
		}
		if pw != "" {
			return pw, "passfile", nil
		}
	}
	return "", "", ErrNoCredentials
}

func passfileLookup(cfg Config) (string, error) {
	path := filepath.Join(cfg.CredentialsDir, "pgpass")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("stat passfile: %w", err)
	}
	passfile, err := pgpassfile.ReadPassfile(path)
	if err != nil {
		return "", fmt.Errorf("read passfile %s: %w", path, err)
	}
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	return passfile.FindPassword(host, strconv.Itoa(port), cfg.DBName, cfg.User), nil
}
