package main

import (
	"net/http"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v3"
)

func TestServeTimeoutFlag(t *testing.T) {
	var names []string
	var timeout *cli.DurationFlag
	for _, f := range serveCmd().Flags {
		names = append(names, f.Names()...)
		if df, ok := f.(*cli.DurationFlag); ok && df.Name == "read-header-timeout" {
			timeout = df
		}
	}
	assert.NotContains(t, names, "read-timeout")
	assert.True(t, slices.Contains(names, "read-header-timeout"))
	if assert.NotNil(t, timeout) {
		assert.Equal(t, 30*time.Second, timeout.Value)
	}

	srv := &http.Server{}
	applyServerTimeouts(srv, 5*time.Second)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.Zero(t, srv.ReadTimeout)
}
