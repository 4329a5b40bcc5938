package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jayantasamaddar/go-awsclient/utils"
)

// DefaultRegion is assumed whenever a resolved credential carries no region.
const DefaultRegion = "us-east-1"

// Errors
const (
	ERROR_MISSING_CREDENTIALS        = "Missing ACCESS_KEY_ID or SECRET_ACCESS_KEY"
	ERROR_READ_ENVIRONMENT_VARIABLES = "Could not read environment variables at `ACCESS_KEY_ID`, `SECRET_ACCESS_KEY` and `REGION`"
	ERROR_NO_CONFIG_FILE_FOUND       = "No configuration file found"
)

// Credentials identify the caller to an AWS-compatible endpoint. The value is
// immutable; signing operations read it but never retain it.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// Valid reports whether both key components are present. Region is optional;
// `DefaultRegion` is assumed when it is empty.
func (c Credentials) Valid() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// WithDefaultRegion returns a copy with the region defaulted when unset.
func (c Credentials) WithDefaultRegion() Credentials {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	return c
}

// FromEnv reads credentials from the `ACCESS_KEY_ID`, `SECRET_ACCESS_KEY` and
// `REGION` environment variables. The second return value reports whether both
// key components were found.
func FromEnv() (Credentials, bool) {
	c := Credentials{
		AccessKeyID:     os.Getenv("ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("SECRET_ACCESS_KEY"),
		Region:          os.Getenv("REGION"),
	}
	if !c.Valid() {
		return Credentials{}, false
	}
	return c.WithDefaultRegion(), true
}

// FromDir assembles credentials for the given profile from the configuration
// files inside dir (follows the `.aws` folder structure: usually a `credentials`
// and a `config` file). Files without an extension and files ending in `.ini`,
// `.conf` or `.config` are read as ini files; `.env` files are read as
// KEY=value pairs. If profile is empty, "default" is assumed.
func FromDir(dir, profile string) (Credentials, error) {
	if profile == "" {
		profile = "default"
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Credentials{}, fmt.Errorf("%s: could not read from %s: %w", ERROR_NO_CONFIG_FILE_FOUND, dir, err)
	}
	if len(entries) == 0 {
		return Credentials{}, fmt.Errorf("%s: %s is empty", ERROR_NO_CONFIG_FILE_FOUND, dir)
	}

	var c Credentials
	for _, file := range entries {
		if file.IsDir() {
			continue
		}
		path := filepath.Join(dir, file.Name())

		switch filepath.Ext(file.Name()) {
		case "", ".ini", ".conf", ".config":
			profiles, err := utils.ReadIniFile(path)
			if err != nil {
				continue
			}
			for _, p := range profiles {
				if p.Name != profile {
					continue
				}
				c = fill(c, p.Map)
			}
		case ".env":
			p, err := utils.ReadEnvFile(path)
			if err != nil {
				continue
			}
			c = fill(c, p.Map)
		}

		if c.Valid() && c.Region != "" {
			break
		}
	}

	if !c.Valid() {
		return Credentials{}, fmt.Errorf("%s: profile %q in %s", ERROR_MISSING_CREDENTIALS, profile, dir)
	}
	return c.WithDefaultRegion(), nil
}

// Resolve looks up credentials from the environment first and falls back to the
// shared credential directory. If dir is empty, `$HOME/.aws` is used.
func Resolve(dir, profile string) (Credentials, error) {
	if c, ok := FromEnv(); ok {
		return c, nil
	}
	if dir == "" {
		home, err := utils.HomeDir()
		if err != nil {
			return Credentials{}, fmt.Errorf("%s: %w", ERROR_READ_ENVIRONMENT_VARIABLES, err)
		}
		dir = filepath.Join(home, ".aws")
	}
	return FromDir(dir, profile)
}

// fill copies any still-missing fields of c from the profile key/value map.
func fill(c Credentials, m map[string]string) Credentials {
	if c.AccessKeyID == "" {
		if v, ok := m["aws_access_key_id"]; ok {
			c.AccessKeyID = v
		}
	}
	if c.SecretAccessKey == "" {
		if v, ok := m["aws_secret_access_key"]; ok {
			c.SecretAccessKey = v
		}
	}
	if c.Region == "" {
		if v, ok := m["region"]; ok {
			c.Region = v
		}
	}
	return c
}
