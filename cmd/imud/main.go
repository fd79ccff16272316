package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/imulink/pkg/env"
	fx "github.com/robotalks/imulink/pkg/framework"
	"github.com/robotalks/imulink/pkg/mqtt"
	"github.com/robotalks/imulink/pkg/msgs"
	"github.com/robotalks/imulink/pkg/pipeline"
	"github.com/robotalks/imulink/pkg/sink"
	"github.com/robotalks/imulink/pkg/transport/serial"
)

func init() {
	env.SetupFlags()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func openJSONL(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.Default()
	if err := conf.Load(flag.CommandLine); err != nil {
		glog.Exit(err)
	}

	var services []fx.Runnable
	records := (&sink.Mux{}).Add(sink.Log)
	if conf.JSONL != "" {
		w, err := openJSONL(conf.JSONL)
		if err != nil {
			glog.Exit(err)
		}
		defer w.Close()
		records.Add(sink.NewJSONLWriter(w))
	}
	if conf.MQTTURL != "" {
		pub, err := mqtt.NewPublisher(conf.MQTTURL, mqtt.Meta{
			DeviceID: conf.DeviceID,
			Port:     conf.Port,
			Records:  []string{(&msgs.AHRS{}).RecordName(), (&msgs.IMU{}).RecordName()},
		})
		if err != nil {
			glog.Exitf("invalid MQTT URL: %v", err)
		}
		records.Add(pub)
		services = append(services, pub)
	}
	if conf.WebsocketAddr != "" {
		hub := sink.NewHub()
		records.Add(hub)
		services = append(services, hub, sink.NewWebsocketServer(conf.WebsocketAddr, hub))
	}

	port, err := serial.Open(conf.Port, conf.Baud)
	if err != nil {
		glog.Exit(err)
	}
	glog.Infof("reading %s at %d baud, device %s", conf.Port, conf.Baud, conf.DeviceID)

	p := pipeline.New(port, records, conf.PipelineOptions())
	runner := fx.NewRunner().HandleSignals()
	runner.CancelOnExit = true
	err = runner.Go(services...).Go(p.Runnables()...).Wait()
	p.LogStats()
	if err != nil {
		glog.Exit(err)
	}
}
