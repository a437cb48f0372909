package utils

import (
	"strconv"

	"github.com/dpcdirect/dpc-app/conf"
)

func GetEnvInt(varName string, defaultVal int) int {
	v := conf.GetEnv(varName)
	if v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultVal
}

func GetEnvBool(varName string, defaultVal bool) bool {
	v := conf.GetEnv(varName)
	if v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultVal
}
