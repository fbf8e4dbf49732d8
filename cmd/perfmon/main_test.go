package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dylandreimerink/perfmon/perf"
)

func TestExcludes(t *testing.T) {
	require.Equal(t, "none", excludes(0))
	require.Equal(t, "kernel,hv", excludes(perf.AttrFlagsExcludeKernel|perf.AttrFlagsExcludeHV|perf.AttrFlagsInherit))
	require.Equal(t, "user,kernel,hv", excludes(perf.ExcludeMask))
}

func TestCommands(t *testing.T) {
	root := rootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{"encode", "list", "features", "probe"}, names)

	root.SetArgs([]string{"encode"})
	require.Error(t, root.Execute())
}
