// Package config provides configuration structures and utilities for
// linkaudit. It defines fetch, crawl, output and server settings, loads the
// optional .linkaudit.yaml file and applies LINKAUDIT_* environment
// overrides.
package config
