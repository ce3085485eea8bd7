// Package sd provides the sources of remote instances that clients connect
// to. An instance is a host:port string naming one server of a cluster; a
// Factory turns an instance into a usable handle.
package sd
