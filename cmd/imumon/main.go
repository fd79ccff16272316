package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"

	"github.com/golang/glog"

	fx "github.com/robotalks/imulink/pkg/framework"
	"github.com/robotalks/imulink/pkg/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/imu/"
)

func init() {
	if val := os.Getenv("IMU_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		glog.Exit(err)
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/"+mqtt.MetaTopic) {
			var meta mqtt.Meta
			if err := json.Unmarshal(payload, &meta); err != nil {
				glog.Warningf("%s: bad meta: %v", topic, err)
				return
			}
			glog.Infof("%s: device %s online=%v records=%v", topic, meta.DeviceID, meta.Online, meta.Records)
			return
		}
		rec, ok, err := mqtt.DecodeRecord(topic, payload)
		if !ok {
			glog.V(2).Infof("%s: %d bytes", topic, len(payload))
			return
		}
		if err != nil {
			glog.Warningf("%s: decode error: %v", topic, err)
			return
		}
		glog.Infof("%s: %s", topic, rec.String())
	}))

	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedRun("mqtt", fx.RunFunc(func(ctx context.Context) error {
		defer q.Close()
		token := q.Connect()
		token.Wait()
		if err := token.Error(); err != nil {
			return err
		}
		<-ctx.Done()
		return ctx.Err()
	})))
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
