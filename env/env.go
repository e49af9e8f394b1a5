package env

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var (
	mu          sync.Mutex
	validations = map[string]string{}
	validate    = validator.New()
)

// RegisterValidation registers validation tags for an environment variable. The
// variable is validated every time it is read; a failing validation panics with
// the offending key so misconfiguration surfaces immediately.
func RegisterValidation(key string, tags ...string) {
	mu.Lock()
	defer mu.Unlock()
	validations[key] = strings.Join(tags, ",")
}

func GetString(key string) string {
	mustValid(key)
	return viper.GetString(key)
}

func GetInt(key string) int {
	mustValid(key)
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	mustValid(key)
	return viper.GetBool(key)
}

func GetInt64(key string) int64 {
	mustValid(key)
	return viper.GetInt64(key)
}

func mustValid(key string) {
	mu.Lock()
	tags, ok := validations[key]
	mu.Unlock()
	if !ok || tags == "" {
		return
	}
	if err := validate.Var(viper.Get(key), tags); err != nil {
		panic(fmt.Sprintf("env: %s failed validation (%s): %s", key, tags, err))
	}
}
