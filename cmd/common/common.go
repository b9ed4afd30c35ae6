/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
)

const (
	// LogLevelFlagName is the flag name used for setting the log levels.
	LogLevelFlagName = "log-level"
	// LogLevelEnvKey is the env var name used for setting the log levels.
	LogLevelEnvKey = "LOG_LEVEL"
	// LogLevelFlagShorthand is the shorthand flag name used for setting the log levels.
	LogLevelFlagShorthand = "l"
	// LogLevelPrefixFlagUsage is the usage text for the log level flag.
	LogLevelPrefixFlagUsage = "Log levels per module and a default level, in the form " +
		"module1=level1:module2=level2:defaultLevel, for example vp-verifier-rest=INFO:session=DEBUG:WARNING. " +
		"Supported levels are: CRITICAL, ERROR, WARNING, INFO, DEBUG. Defaults to INFO. " +
		"Alternatively, this can be set with the following environment variable: " + LogLevelEnvKey
)

// SetLogLevels applies a log level spec. An empty or malformed spec resets every module to INFO.
func SetLogLevels(logger *log.Log, spec string) {
	if spec == "" {
		log.SetLevel("", log.INFO)

		return
	}

	if err := log.SetSpec(spec); err != nil {
		logger.Warn("Invalid log level spec, defaulting to INFO",
			logfields.WithUserLogLevel(spec), log.WithError(err))

		log.SetLevel("", log.INFO)

		return
	}

	if log.GetLevel("") == log.DEBUG {
		logger.Info(`Default log level set to "debug". Performance may be adversely impacted.`)
	}
}
