package msgs

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/imulink/pkg/link"
)

// Record is a decoded measurement.
type Record interface {
	proto.Message
	// PacketType is the type of packet the record is decoded from.
	PacketType() link.PacketType
	// RecordName is the short lowercase name, used in topics.
	RecordName() string
}

// Payload sizes.
const (
	AHRSSize = 10*4 + 8
	IMUSize  = 12*4 + 8
)

// AHRS is the attitude and heading solution.
type AHRS struct {
	// Angular rates.
	RollSpeed    float32 `protobuf:"fixed32,1,opt,name=roll_speed,proto3" json:"roll_speed"`
	PitchSpeed   float32 `protobuf:"fixed32,2,opt,name=pitch_speed,proto3" json:"pitch_speed"`
	HeadingSpeed float32 `protobuf:"fixed32,3,opt,name=heading_speed,proto3" json:"heading_speed"`
	// Orientation angles.
	Roll    float32 `protobuf:"fixed32,4,opt,name=roll,proto3" json:"roll"`
	Pitch   float32 `protobuf:"fixed32,5,opt,name=pitch,proto3" json:"pitch"`
	Heading float32 `protobuf:"fixed32,6,opt,name=heading,proto3" json:"heading"`
	// Orientation quaternion.
	Q1 float32 `protobuf:"fixed32,7,opt,name=q1,proto3" json:"q1"`
	Q2 float32 `protobuf:"fixed32,8,opt,name=q2,proto3" json:"q2"`
	Q3 float32 `protobuf:"fixed32,9,opt,name=q3,proto3" json:"q3"`
	Q4 float32 `protobuf:"fixed32,10,opt,name=q4,proto3" json:"q4"`
	// Timestamp is device time in microseconds.
	Timestamp uint64 `protobuf:"varint,11,opt,name=timestamp,proto3" json:"timestamp"`
}

// PacketType implements Record.
func (m *AHRS) PacketType() link.PacketType { return link.TypeAHRS }

// RecordName implements Record.
func (m *AHRS) RecordName() string { return "ahrs" }

// ProtoMessage implements proto.Message.
func (m *AHRS) ProtoMessage() {}

// Reset implements proto.Message.
func (m *AHRS) Reset() { *m = AHRS{} }

// String implements proto.Message.
func (m *AHRS) String() string { return proto.CompactTextString(m) }

// IMU carries calibrated sensor readings.
type IMU struct {
	GyroscopeX          float32 `protobuf:"fixed32,1,opt,name=gyroscope_x,proto3" json:"gyroscope_x"`
	GyroscopeY          float32 `protobuf:"fixed32,2,opt,name=gyroscope_y,proto3" json:"gyroscope_y"`
	GyroscopeZ          float32 `protobuf:"fixed32,3,opt,name=gyroscope_z,proto3" json:"gyroscope_z"`
	AccelerometerX      float32 `protobuf:"fixed32,4,opt,name=accelerometer_x,proto3" json:"accelerometer_x"`
	AccelerometerY      float32 `protobuf:"fixed32,5,opt,name=accelerometer_y,proto3" json:"accelerometer_y"`
	AccelerometerZ      float32 `protobuf:"fixed32,6,opt,name=accelerometer_z,proto3" json:"accelerometer_z"`
	MagnetometerX       float32 `protobuf:"fixed32,7,opt,name=magnetometer_x,proto3" json:"magnetometer_x"`
	MagnetometerY       float32 `protobuf:"fixed32,8,opt,name=magnetometer_y,proto3" json:"magnetometer_y"`
	MagnetometerZ       float32 `protobuf:"fixed32,9,opt,name=magnetometer_z,proto3" json:"magnetometer_z"`
	Temperature         float32 `protobuf:"fixed32,10,opt,name=temperature,proto3" json:"temperature"`
	Pressure            float32 `protobuf:"fixed32,11,opt,name=pressure,proto3" json:"pressure"`
	PressureTemperature float32 `protobuf:"fixed32,12,opt,name=pressure_temperature,proto3" json:"pressure_temperature"`
	Timestamp           uint64  `protobuf:"varint,13,opt,name=timestamp,proto3" json:"timestamp"`
}

// PacketType implements Record.
func (m *IMU) PacketType() link.PacketType { return link.TypeIMU }

// RecordName implements Record.
func (m *IMU) RecordName() string { return "imu" }

// ProtoMessage implements proto.Message.
func (m *IMU) ProtoMessage() {}

// Reset implements proto.Message.
func (m *IMU) Reset() { *m = IMU{} }

// String implements proto.Message.
func (m *IMU) String() string { return proto.CompactTextString(m) }

// NewRecord creates an empty record by its RecordName.
func NewRecord(name string) (Record, bool) {
	switch name {
	case "ahrs":
		return &AHRS{}, true
	case "imu":
		return &IMU{}, true
	}
	return nil, false
}
