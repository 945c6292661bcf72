// Package config provides configuration structures and utilities for riskscan.
// It defines engine, provider, report, history and server options, loads the
// optional .riskscan YAML file and reads provider secrets from the environment.
package config
