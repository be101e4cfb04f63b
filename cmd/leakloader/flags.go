package main

import (
	"github.com/spf13/pflag"

	"leakloader/internal/config"
)

// sourceFlags overrides the source store section of the configuration.
// Only flags the user actually set are applied, so config and environment
// values survive untouched defaults.
type sourceFlags struct {
	driver  string
	dataDir string
	bucket  string
	prefix  string
}

func (f *sourceFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.driver, "source", "", "source store driver (fs or s3)")
	flags.StringVar(&f.dataDir, "data-dir", "", "directory containing the CSV files (fs source)")
	flags.StringVar(&f.bucket, "s3-bucket", "", "bucket holding the CSV files (s3 source)")
	flags.StringVar(&f.prefix, "s3-prefix", "", "key prefix inside the bucket (s3 source)")
}

func (f *sourceFlags) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("source") {
		cfg.Source.Driver = f.driver
	}
	if flags.Changed("data-dir") {
		cfg.Source.Dir = f.dataDir
	}
	if flags.Changed("s3-bucket") {
		cfg.Source.S3.Bucket = f.bucket
	}
	if flags.Changed("s3-prefix") {
		cfg.Source.S3.Prefix = f.prefix
	}
}

// destFlags overrides the destination section of the configuration.
type destFlags struct {
	driver         string
	host           string
	port           int
	dbname         string
	user           string
	password       string
	sslmode        string
	credentialsDir string
	service        string
	sqlitePath     string
}

func (f *destFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.driver, "driver", "", "destination driver (postgres or sqlite)")
	flags.StringVar(&f.host, "host", "", "postgres host")
	flags.IntVar(&f.port, "port", 0, "postgres port")
	flags.StringVar(&f.dbname, "dbname", "", "postgres database name")
	flags.StringVar(&f.user, "user", "", "postgres user")
	flags.StringVar(&f.password, "password", "", "postgres password (overrides the credential chain)")
	flags.StringVar(&f.sslmode, "sslmode", "", "postgres sslmode")
	flags.StringVar(&f.credentialsDir, "credentials-dir", "", "directory holding a pgpass file")
	flags.StringVar(&f.service, "service", "", "logical service label for logs and the manifest")
	flags.StringVar(&f.sqlitePath, "sqlite-path", "", "database file (sqlite driver)")
}

func (f *destFlags) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("driver") {
		cfg.Destination.Driver = f.driver
	}
	if flags.Changed("host") {
		cfg.Destination.Host = f.host
	}
	if flags.Changed("port") {
		cfg.Destination.Port = f.port
	}
	if flags.Changed("dbname") {
		cfg.Destination.DBName = f.dbname
	}
	if flags.Changed("user") {
		cfg.Destination.User = f.user
	}
	if flags.Changed("password") {
		cfg.Destination.Password = f.password
	}
	if flags.Changed("sslmode") {
		cfg.Destination.SSLMode = f.sslmode
	}
	if flags.Changed("credentials-dir") {
		cfg.Destination.CredentialsDir = f.credentialsDir
	}
	if flags.Changed("service") {
		cfg.Destination.Service = f.service
	}
	if flags.Changed("sqlite-path") {
		cfg.Destination.Path = f.sqlitePath
	}
}
