package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avolkov/askpdf/internal/flagx"
	"github.com/avolkov/askpdf/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "1h" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr     string         `json:"endpoint_addr"`
	DatabaseDSN      string         `json:"database_dsn"`
	JWTSecret        string         `json:"jwt_secret"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	AuthBaseEndpoint string         `json:"auth_base_endpoint"`
	AuthServiceKey   string         `json:"auth_service_key"`
	RagBaseEndpoint  string         `json:"rag_base_endpoint"`
	SignedURLTTL     timex.Duration `json:"signed_url_ttl"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. When no flag is set, nothing
// is loaded. An unreadable or invalid file panics: a config file that was
// asked for but cannot be used is a startup error.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.JWTSecret = c.JWTSecret
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.AuthBaseEndpoint = c.AuthBaseEndpoint
	config.AuthServiceKey = c.AuthServiceKey
	config.RagBaseEndpoint = c.RagBaseEndpoint
	config.SignedURLTTL = time.Duration(c.SignedURLTTL.Duration)
}
