package conf

/*
   This package wraps viper, a package designed to handle config files, for the
   DPC app. Locally, configuration is read from an env file; in deployed
   environments only environment variables are used. Values found only in the
   environment are copied into the in-memory store on first access.

   Assumptions:
   1. The configuration file is an env file
   2. The configuration file, once made available to the application, stays
   immutable during the uptime of the application (exception is test)
*/

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"testing"

	"github.com/spf13/viper"
)

// An instance of the viper struct containing the conf information. Only made
// accessible through public functions GetEnv, SetEnv, etc.
var envVars viper.Viper

const (
	configgood    uint8 = 0
	configbad     uint8 = 1
	noconfigfound uint8 = 2
)

var state uint8 = configgood

func setup(dir string) *viper.Viper {
	var v = viper.New()
	v.SetConfigName("local")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	// Viper is lazy, do the read and parse of the config file
	if err := v.ReadInConfig(); err != nil {
		state = configbad
	}
	return v
}

func init() {
	// Possible config file locations: local and deployed respectively.
	var locations = []string{
		"/go/src/github.com/dpcdirect/dpc-app/shared_files/decrypted",
		"/etc/dpc",
	}

	if success, loc := findEnv(locations); success {
		envVars = *setup(loc)
	} else {
		state = noconfigfound
	}
}

// findEnv determines what environment the application is running in by probing
// each candidate path for a local.env file.
func findEnv(location []string) (bool, string) {
	if _, err := os.Stat(location[0] + "/local.env"); err == nil {
		return true, location[0]
	}

	if len(location) == 1 {
		return false, ""
	}

	return findEnv(location[1:])
}

// GetEnv retrieves the value stored in conf. If it does not exist, the
// process environment is consulted and an empty string is the fallback.
func GetEnv(key string) string {
	if state == configgood {
		var value = envVars.GetString(key)

		// Even if the config file loaded, the key may only exist in the
		// environment. Copy it over to conf to prevent additional OS calls.
		if value == "" {
			if v, ok := os.LookupEnv(key); ok {
				test := &testing.T{}
				_ = SetEnv(test, key, v)
				return v
			}
		}

		return value
	}

	return os.Getenv(key)
}

// LookupEnv augments os.LookupEnv to look in the viper struct first.
func LookupEnv(key string) (string, bool) {
	if state == configgood {
		if value := envVars.Get(key); value != nil && value != "" {
			return value.(string), true
		}
		if v, exist := os.LookupEnv(key); exist {
			test := &testing.T{}
			_ = SetEnv(test, key, v)
			return v, exist
		}
		return "", false
	}

	return os.LookupEnv(key)
}

// SetEnv adds key values into conf. This function should only be used either
// in this package itself or testing. The protect parameter is type *testing.T
// to ensure developers knowingly use it in the appropriate scope.
func SetEnv(protect *testing.T, key string, value string) error {
	var err error

	if state == configgood {
		envVars.Set(key, value)
	} else {
		err = os.Setenv(key, value)
	}

	return err
}

// UnsetEnv "unsets" a variable. Like SetEnv, this should only be used either
// in this package itself or testing.
func UnsetEnv(protect *testing.T, key string) error {
	if state == configgood {
		envVars.Set(key, "")
	}

	return os.Unsetenv(key)
}

// Checkout populates the fields of the provided struct pointer from conf.
// Fields are matched by the `conf` tag; when the variable is unset, the
// `conf_default` tag supplies the value. Supported field types are string,
// int, and bool.
func Checkout(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("conf: Checkout requires a struct pointer, received %T", v)
	}

	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		key, ok := field.Tag.Lookup("conf")
		if !ok {
			continue
		}

		value := GetEnv(key)
		if value == "" {
			value = field.Tag.Get("conf_default")
		}
		if value == "" {
			continue
		}

		switch field.Type.Kind() {
		case reflect.String:
			rv.Field(i).SetString(value)
		case reflect.Int:
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("conf: %s is not a valid int for %s: %v", value, key, err)
			}
			rv.Field(i).SetInt(int64(n))
		case reflect.Bool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("conf: %s is not a valid bool for %s: %v", value, key, err)
			}
			rv.Field(i).SetBool(b)
		default:
			return fmt.Errorf("conf: unsupported field type %s for %s", field.Type.Kind(), key)
		}
	}

	return nil
}
