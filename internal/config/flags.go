package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a remote store address in format [host]:[port]
//	-d local store DSN (sqlite file path or clover directory)
//	-backend local store backend: memory, clover or sqlite
//	-c/-config json file path with configs
//	-hash-key payload integrity hash key
//	-request-timeout remote request timeout (e.g., "30s", "1m")
//	-drain-interval automatic drain interval (e.g., "30s")
//	-offline start with connectivity assumed offline
func ParseFlags() *Config {
	var remoteAddress NetAddress
	var localDSN string
	var localBackend string
	var jsonConfigPath string
	var hashKey string
	var requestTimeout time.Duration
	var drainInterval time.Duration
	var startOffline bool

	flag.Var(&remoteAddress, "a", "Remote store net address host:port")
	flag.StringVar(&localDSN, "d", "", "Local store DSN")
	flag.StringVar(&localBackend, "backend", "", "Local store backend (memory, clover, sqlite)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&hashKey, "hash-key", "", "Payload integrity hash key")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Remote request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&drainInterval, "drain-interval", 0, "Automatic drain interval (e.g., 30s)")
	flag.BoolVar(&startOffline, "offline", false, "Start with connectivity assumed offline")

	flag.Parse()

	return &Config{
		Sync: Sync{
			AutoDrainInterval: drainInterval,
		},
		Remote: Remote{
			HTTPAddress:    remoteAddress.String(),
			RequestTimeout: requestTimeout,
			HashKey:        hashKey,
		},
		Local: Local{
			Backend: localBackend,
			DSN:     localDSN,
		},
		Netmon: Netmon{
			StartOffline: startOffline,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns the empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
