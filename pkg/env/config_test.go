package env

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/imulink/pkg/framework"
)

func parse(t *testing.T, conf *Config, args ...string) *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	conf.SetupFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imu.yaml")
	t.Setenv("TEST_IMU_DEVICE", "/dev/ttyACM3")
	require.NoError(t, os.WriteFile(path, []byte(`
port: ${TEST_IMU_DEVICE}
baud: 460800
queue_capacity: 64
overflow: drop-oldest
device_id: from-file
`), 0644))

	conf := NewConfig()
	fs := parse(t, conf, "-config", path, "-baud", "921600")
	require.NoError(t, conf.Load(fs))
	require.Equal(t, "/dev/ttyACM3", conf.Port)
	require.Equal(t, 921600, conf.Baud)
	require.Equal(t, 64, conf.QueueCapacity)
	require.Equal(t, fx.OverflowDropOldest, conf.OverflowPolicy())
	require.Equal(t, "from-file", conf.DeviceID)
	require.Equal(t, defaultConfig.ChunkSize, conf.ChunkSize)
}

func TestLoadWithoutFile(t *testing.T) {
	conf := NewConfig()
	fs := parse(t, conf, "-port", "/dev/ttyS1", "-device-id", "abc")
	require.NoError(t, conf.Load(fs))
	require.Equal(t, "/dev/ttyS1", conf.Port)
	require.Equal(t, "abc", conf.DeviceID)
	require.Equal(t, fx.OverflowBlock, conf.OverflowPolicy())
}

func TestLoadErrors(t *testing.T) {
	conf := NewConfig()
	fs := parse(t, conf, "-config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, conf.Load(fs))

	conf = NewConfig()
	fs = parse(t, conf, "-overflow", "drop-newest", "-device-id", "x")
	require.Error(t, conf.Load(fs))

	conf = NewConfig()
	fs = parse(t, conf, "-chunk-size", "0", "-device-id", "x")
	require.Error(t, conf.Load(fs))
}

func TestPipelineOptions(t *testing.T) {
	conf := NewConfig()
	fs := parse(t, conf, "-queue-cap", "8", "-overflow", "drop-oldest", "-device-id", "x")
	require.NoError(t, conf.Load(fs))
	opts := conf.PipelineOptions()
	require.Equal(t, 8, opts.QueueCapacity)
	require.Equal(t, fx.OverflowDropOldest, opts.Overflow)
	require.Equal(t, 128, opts.ChunkSize)
}
