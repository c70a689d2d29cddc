// Package config provides configuration loading, merging, and validation
// facilities for the sync core.
//
// Configuration is assembled from multiple sources in the following priority
// order (earlier sources win, later sources fill remaining gaps):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//  4. Built-in defaults ([Default])
//
// The main entry point is [GetConfig]; embedders that manage their own
// sources can start from [Default] and override fields directly.
package config
