// Package serper is a client for the Serper Google image search endpoint.
package serper
