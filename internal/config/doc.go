// Package config loads the runhost host configuration.
//
// Sources are merged in increasing priority:
//
//  1. Built-in defaults (info logging, 5s stop timeout)
//  2. Global config in the XDG config directory (~/.config/runhost/)
//  3. Project config in the working directory
//  4. The file named by RUNHOST_CONFIG
//  5. A .env file in the working directory
//  6. RUNHOST_* environment variables
//
// Each directory may hold runhost.json, runhost.jsonc (comments stripped with
// tidwall/jsonc) and runhost.yaml. A file only overrides the fields it sets.
//
// # Variable Interpolation
//
// Configuration files support two placeholders:
//   - {env:VAR_NAME} expands to an environment variable
//   - {file:path} expands to the trimmed contents of a file, resolved relative
//     to the config file's directory unless absolute or starting with ~/
//
// # Environment Variables
//
//	RUNHOST_LOG_LEVEL     log level
//	RUNHOST_LOG_PRETTY    human-readable logs
//	RUNHOST_LOG_FILE      rotating log file
//	RUNHOST_CONFIRM       ask before starting a command
//	RUNHOST_STOP_TIMEOUT  interrupt grace period, e.g. 10s
//	RUNHOST_EVENT_LOG     JSON event log file, "-" for stderr
//	RUNHOST_NO_COLOR      plain status lines
//
// Values in .env never override variables already set in the environment.
package config
