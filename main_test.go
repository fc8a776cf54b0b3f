package main

import (
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerboseFlag(t *testing.T) {
	t.Parallel()
	tests := []struct {
		args []string
		want logrus.Level
	}{
		{nil, logrus.WarnLevel},
		{[]string{"-v"}, logrus.DebugLevel},
		{[]string{"--verbose"}, logrus.DebugLevel},
		{[]string{"-vv"}, logrus.DebugLevel},
	}
	for _, tt := range tests {
		opts := cmdopts{}
		_, err := flags.ParseArgs(&opts, tt.args)
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.want, logLevel(len(opts.Verbose)), tt.args)
	}
}
