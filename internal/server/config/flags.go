package config

import (
	"flag"
	"os"
	"time"

	"github.com/avolkov/askpdf/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   identity provider JWT secret
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-i string   identity provider base endpoint
//	-k string   identity provider service-role key
//	-q string   retrieval service base endpoint
//	-t int      signed URL validity, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-i", "-k", "-q", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "identity provider JWT secret")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.AuthBaseEndpoint, "i", config.AuthBaseEndpoint, "identity provider base endpoint")
	fs.StringVar(&config.AuthServiceKey, "k", config.AuthServiceKey, "identity provider service-role key")
	fs.StringVar(&config.RagBaseEndpoint, "q", config.RagBaseEndpoint, "retrieval service base endpoint")

	signedURLTTL := fs.Int("t", int(config.SignedURLTTL.Seconds()), "signed URL validity (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SignedURLTTL = time.Duration(*signedURLTTL) * time.Second
}
