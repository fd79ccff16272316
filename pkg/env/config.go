// Package env provides the common configuration of the commands.
package env

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	fx "github.com/robotalks/imulink/pkg/framework"
	"github.com/robotalks/imulink/pkg/link"
	"github.com/robotalks/imulink/pkg/pipeline"
	"github.com/robotalks/imulink/pkg/transport/serial"
)

// Config provides common options for the pipeline and its sinks.
type Config struct {
	// Port is the serial device, e.g. /dev/ttyUSB0.
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
	// ChunkSize is the maximum size of one transport read.
	ChunkSize int `yaml:"chunk_size"`
	// QueueCapacity bounds the queues between stages, 0 is unbounded.
	QueueCapacity int    `yaml:"queue_capacity"`
	Overflow      string `yaml:"overflow"`

	// MQTTURL enables the MQTT publisher,
	// e.g. mqtt://localhost:1883/imu/
	MQTTURL  string `yaml:"mqtt_url"`
	DeviceID string `yaml:"device_id"`
	// JSONL is a file to append records to, "-" for stdout.
	JSONL         string `yaml:"jsonl"`
	WebsocketAddr string `yaml:"websocket_addr"`

	// ConfigFile is an optional YAML file. Values in it apply unless
	// the same option is set on the command line.
	ConfigFile string `yaml:"-"`
}

var defaultConfig = Config{
	Port:      "/dev/ttyUSB0",
	Baud:      serial.DefaultBaudRate,
	ChunkSize: link.DefaultChunkSize,
	Overflow:  fx.OverflowBlock.String(),
}

func init() {
	if val := os.Getenv("IMU_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("IMU_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.Baud = baud
		}
	}
	if val := os.Getenv("IMU_MQTT_URL"); val != "" {
		defaultConfig.MQTTURL = val
	}
	if val := os.Getenv("IMU_DEVICE_ID"); val != "" {
		defaultConfig.DeviceID = val
	}
}

// SetupFlags sets up command line flags on the default config.
func SetupFlags() {
	defaultConfig.SetupFlags(flag.CommandLine)
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// SetupFlags registers options on fs.
func (c *Config) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Port, "port", c.Port, "Serial port of the device.")
	fs.IntVar(&c.Baud, "baud", c.Baud, "Baud rate.")
	fs.IntVar(&c.ChunkSize, "chunk-size", c.ChunkSize, "Maximum bytes per read.")
	fs.IntVar(&c.QueueCapacity, "queue-cap", c.QueueCapacity, "Capacity of queues between stages, 0 for unbounded.")
	fs.StringVar(&c.Overflow, "overflow", c.Overflow, "Policy of a full queue: block or drop-oldest.")
	fs.StringVar(&c.MQTTURL, "mqtt", c.MQTTURL, "MQTT broker URL to publish records.")
	fs.StringVar(&c.DeviceID, "device-id", c.DeviceID, "Device ID used in MQTT topics, defaults to machine id.")
	fs.StringVar(&c.JSONL, "jsonl", c.JSONL, "Write records as JSON lines to the file, - for stdout.")
	fs.StringVar(&c.WebsocketAddr, "ws", c.WebsocketAddr, "Listen address to stream records over websocket.")
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML config file.")
}

// Load applies ConfigFile, if any, beneath the options set on fs, fills
// in the device id and validates. Call it after fs is parsed.
func (c *Config) Load(fs *flag.FlagSet) error {
	if c.ConfigFile != "" {
		explicit := make(map[string]string)
		fs.Visit(func(f *flag.Flag) {
			explicit[f.Name] = f.Value.String()
		})
		if err := c.loadFile(c.ConfigFile); err != nil {
			return err
		}
		for name, val := range explicit {
			if err := fs.Set(name, val); err != nil {
				return err
			}
		}
	}
	if c.DeviceID == "" {
		c.DeviceID = MachineID()
	}
	return c.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), c); err != nil {
		return fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return nil
}

// Validate checks option values.
func (c *Config) Validate() error {
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("invalid chunk size %d", c.ChunkSize)
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("invalid queue capacity %d", c.QueueCapacity)
	}
	if _, ok := fx.ParseOverflowPolicy(c.Overflow); !ok {
		return fmt.Errorf("unknown overflow policy %q", c.Overflow)
	}
	return nil
}

// OverflowPolicy returns the parsed Overflow.
func (c *Config) OverflowPolicy() fx.OverflowPolicy {
	p, _ := fx.ParseOverflowPolicy(c.Overflow)
	return p
}

// PipelineOptions converts the options to tune the pipeline.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		ChunkSize:     c.ChunkSize,
		QueueCapacity: c.QueueCapacity,
		Overflow:      c.OverflowPolicy(),
	}
}
