// Package jujuapi implements environment.Backend against the juju controller
// API.
//
// The API speaks JSON-RPC over a WebSocket. Credentials and API addresses are
// read from the environment's .jenv file under $JUJU_HOME, bootstrap is
// delegated to the juju CLI, and reset follows juju-deployer: destroy every
// service, resolve errored units, wait for the units to go away and finally
// force-destroy every machine except the bootstrap node.
package jujuapi
