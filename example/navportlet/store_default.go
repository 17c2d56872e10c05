//go:build !s3example
// +build !s3example

package main

import "time"

func newStore(latency time.Duration) Store {
	return newMemStore(latency)
}
