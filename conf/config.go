package conf

/*
   This is a package that wraps viper, a package designed to handle config
   files, for the registry search app.

   Assumptions:
   1. The configuration file is a env file
   2. The configuration file, once it is made available to the application,
   will stay immutable during the uptime of the application (exception is test)

   Local environments look primarily at the conf package for variables, but
   will also look in the environment for any variables it is not tracking.
   PROD/TEST/DEV will only look in the environment.
*/

import (
	"os"
	"reflect"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// An instance of the viper struct containing the conf information. Only made
// accessible through public functions GetEnv, SetEnv, etc.
var envVars viper.Viper

// Tracks whether a config file was found and parsed cleanly.
const (
	configgood    uint8 = 0
	configbad     uint8 = 1
	noconfigfound uint8 = 2
)

var state uint8 = configgood // if config file found and loaded, doesn't change

/*
   This is the private helper function that sets up viper. This function is
   called by the init() function once during initialization of the package.
*/
func setup(dir string) *viper.Viper {

	var v = viper.New()
	v.SetConfigName("local")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	// Viper is lazy, do the read and parse of the config file
	var err = v.ReadInConfig()

	if err != nil {
		state = configbad
	}

	return v
}

/*
   init:
   First thing to run when this package is loaded by the binary.
   Even if multiple packages import conf, this will be called and ran ONLY once.
*/
func init() {

	// Possible config file locations: local and PROD/DEV/TEST respectively.
	var locationSlice = [2]string{
		"/go/src/github.com/bcgov/regsearch-app/shared_files/decrypted",
		".",
	}

	if success, loc := findEnv(locationSlice[:]); success {
		envVars = *setup(loc)
	} else {
		// Checked both locations, no config file found
		state = noconfigfound
	}
}

/*
   findEnv is a helper function that will determine what environment the
   application is running in: local or PROD/TEST/DEV. Each environment should
   have a distinct path where the configuration file is located. First it
   checks the local path, then PROD/DEV/TEST. If both not found, defaults to
   just using env vars.
*/
func findEnv(location []string) (bool, string) {

	if _, err := os.Stat(location[0] + "/local.env"); err == nil {
		return true, location[0]
	}

	// Base case: checked both locations and no configurations found
	if len(location) == 1 {
		return false, ""
	}

	return findEnv(location[1:])
}

// GetEnv is a public function that retrieves value stored in conf. If it does
// not exist "" empty string is returned.
func GetEnv(key string) string {

	if state == configgood {

		var value = envVars.GetString(key)
		var b bool

		// Even if the config file loaded, if the key doesn't exist in conf,
		// try the environment. Copy it over to conf to prevent additional
		// OS calls. Remember to delete both from conf and environment var
		// when UnsetEnv() called!
		if value == "" {
			value, b = os.LookupEnv(key)
			if b {
				test := &testing.T{}
				var _ = SetEnv(test, key, value)
			}
		}

		return value
	}

	return os.Getenv(key)
}

// LookupEnv is a public function that augments os.LookupEnv to look in the
// viper struct first.
func LookupEnv(key string) (string, bool) {

	if state == configgood {
		if value := envVars.Get(key); value != nil && value != "" {
			return value.(string), true
		}

		if v, exist := os.LookupEnv(key); exist {
			// bring value over to conf
			test := &testing.T{}
			var _ = SetEnv(test, key, v)
			return v, exist
		}

		return "", false
	}

	return os.LookupEnv(key)
}

// SetEnv is a public function that adds key values into conf. This function
// should only be used either in this package itself or testing. Protect
// parameter is type *testing.T, and is there to ensure developers knowingly
// use it in the appropriate scope.
func SetEnv(protect *testing.T, key string, value string) error {

	var err error

	if state == configgood {
		envVars.Set(key, value) // This doesn't return anything...
	} else {
		err = os.Setenv(key, value)
	}

	return err
}

// UnsetEnv is a public function that "unsets" a variable. Like SetEnv, this
// should only be used either in this package itself or testing.
func UnsetEnv(protect *testing.T, key string) error {
	var err error

	if state == configgood {
		envVars.Set(key, "")
	}

	err = os.Unsetenv(key)

	return err
}

// Checkout populates the supplied struct pointer from conf. Fields are mapped
// by the `conf` tag naming the variable, with an optional `conf_default` tag
// supplying the value used when the variable is unset. A field tagged
// `conf:",squash"` is a nested config struct checked out in place.
func Checkout(target interface{}) error {

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return errors.New("conf: Checkout target must be a pointer to a struct")
	}

	elem := v.Elem()
	t := elem.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key, ok := field.Tag.Lookup("conf")
		if !ok {
			continue
		}

		if key == ",squash" && field.Type.Kind() == reflect.Struct {
			if err := Checkout(elem.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		value := GetEnv(key)
		if value == "" {
			value = field.Tag.Get("conf_default")
		}
		if value == "" {
			continue
		}

		fv := elem.Field(i)
		if !fv.CanSet() {
			continue
		}

		switch field.Type.Kind() {
		case reflect.String:
			fv.SetString(value)
		case reflect.Int, reflect.Int64:
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return errors.Wrapf(err, "conf: invalid int for %s", key)
			}
			fv.SetInt(parsed)
		case reflect.Float64:
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return errors.Wrapf(err, "conf: invalid float for %s", key)
			}
			fv.SetFloat(parsed)
		case reflect.Bool:
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				return errors.Wrapf(err, "conf: invalid bool for %s", key)
			}
			fv.SetBool(parsed)
		default:
			return errors.Errorf("conf: unsupported field kind %s for %s", field.Type.Kind(), key)
		}
	}

	return nil
}
