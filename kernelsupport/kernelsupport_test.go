package kernelsupport

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func Test_kernelVersion_Higher(t *testing.T) {
	tests := []struct {
		name string
		a    kernelVersion
		b    kernelVersion
		want bool
	}{
		{
			name: "2.0.0 >= 1.0.0 - major",
			a:    kernelVersion{major: 2},
			b:    kernelVersion{major: 1},
			want: true,
		},
		{
			name: "2.1.0 >= 2.0.0 - minor",
			a:    kernelVersion{major: 2, minor: 1},
			b:    kernelVersion{major: 2},
			want: true,
		},
		{
			name: "2.1.1 >= 2.1.0 - patch",
			a:    kernelVersion{major: 2, minor: 1, patch: 1},
			b:    kernelVersion{major: 2, minor: 1},
			want: true,
		},
		{
			name: "2.2.2 >= 2.2.2 - exact",
			a:    kernelVersion{major: 2, minor: 2, patch: 2},
			b:    kernelVersion{major: 2, minor: 2, patch: 2},
			want: true,
		},
		{
			name: "1.1.0 >= 2.0.0 - major false",
			a:    kernelVersion{major: 1, minor: 1},
			b:    kernelVersion{major: 2},
			want: false,
		},
		{
			name: "2.1.0 >= 2.2.0 - minor false",
			a:    kernelVersion{major: 2, minor: 1},
			b:    kernelVersion{major: 2, minor: 2},
			want: false,
		},
		{
			name: "2.2.0 >= 2.2.2 - patch false",
			a:    kernelVersion{major: 2, minor: 2},
			b:    kernelVersion{major: 2, minor: 2, patch: 1},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.a.Higher(tt.b))
		})
	}
}

func Test_parseKernelVersion(t *testing.T) {
	tests := []struct {
		release string
		want    kernelVersion
		wantErr bool
	}{
		{release: "5.15.0-91-generic", want: kernelVersion{major: 5, minor: 15}},
		{release: "6.18.44-fc-v130", want: kernelVersion{major: 6, minor: 18, patch: 44}},
		{release: "2.6.32", want: kernelVersion{major: 2, minor: 6, patch: 32}},
		{release: "5.10.0+", want: kernelVersion{major: 5, minor: 10}},
		{release: "6", want: kernelVersion{major: 6}},
		{release: "linux", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.release, func(t *testing.T) {
			got, err := parseKernelVersion(tt.release)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFeaturesForRelease(t *testing.T) {
	old, err := FeaturesForRelease("2.6.30")
	require.NoError(t, err)
	require.False(t, old.Perf.Has(KFeatPerfEventOpen), "2.6.30 should not support perf_event_open")

	modern, err := FeaturesForRelease("5.15.0-91-generic")
	require.NoError(t, err)
	want := KFeatPerfEventOpen | KFeatPerfTaskEnable | KFeatPerfInherit | KFeatPerfReadFormatTimes |
		KFeatPerfExcludeHost | KFeatPerfCloseOnExec | KFeatPerfCapPerfmon
	require.Equal(t, want, modern.Perf)

	mid, err := FeaturesForRelease("4.19.0")
	require.NoError(t, err)
	require.False(t, mid.Perf.Has(KFeatPerfCapPerfmon), "4.19 should not support CAP_PERFMON")
	require.True(t, mid.Perf.Has(KFeatPerfCloseOnExec|KFeatPerfTaskEnable))

	_, err = FeaturesForRelease("linux")
	require.Error(t, err)
}

func TestCurrentFeaturesCached(t *testing.T) {
	first, err := CurrentFeatures()
	require.NoError(t, err)
	require.NotEmpty(t, first.Release)

	second, err := CurrentFeatures()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestPerfSupportString(t *testing.T) {
	require.Equal(t, "No support", PerfSupport(0).String())
	require.Equal(t, "perf_event_open, Inherit", (KFeatPerfEventOpen | KFeatPerfInherit).String())
}

func Test_readParanoidLevel(t *testing.T) {
	fsys := fstest.MapFS{
		"proc/sys/kernel/perf_event_paranoid": {Data: []byte("2\n")},
		"bad/perf_event_paranoid":             {Data: []byte("two")},
	}

	level, err := readParanoidLevel(fsys, "proc/sys/kernel/perf_event_paranoid")
	require.NoError(t, err)
	require.Equal(t, 2, level)

	_, err = readParanoidLevel(fsys, "missing/perf_event_paranoid")
	require.ErrorIs(t, err, ErrPerfNotSupported)

	_, err = readParanoidLevel(fsys, "bad/perf_event_paranoid")
	require.Error(t, err)
}
