// Package config holds run options, company profiles loaded from the
// configuration file, input validators and the job title catalog.
package config
