package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"serial-plotter/internal/config"
	"serial-plotter/internal/pipeline"
	"serial-plotter/internal/serialport"
	"serial-plotter/internal/statusserver"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	var (
		portFlag = flag.String("port", "", "serial port to preselect")
		baudFlag = flag.Int("baud", 0, "baud rate to preselect")
		listen   = flag.String("listen", "", "serve /status and /metrics on this address; disabled when empty")
		list     = flag.Bool("list", false, "print detected serial ports and exit")
	)
	flag.Parse()

	if *list {
		ports, err := serialport.DetailedPorts()
		if err != nil {
			log.Fatal(err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	settings, err := config.Load()
	if err != nil {
		log.Printf("[config] %v", err)
	}
	if *portFlag != "" {
		settings.Port = *portFlag
	}
	if *baudFlag > 0 {
		settings.BaudRate = *baudFlag
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := pipeline.NewMetrics(reg)

	a := app.NewWithID("com.github.serial-plotter")
	w := a.NewWindow("Arduino 2-Channel Plotter")
	w.Resize(fyne.NewSize(960, 640))

	ui := NewAppUI(w, serialport.Enumerator{}, settings)
	ctrl := pipeline.NewController(pipeline.DefaultConfig(), serialport.Opener{}, ui, metrics)
	ui.SetController(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)
	go ui.Trigger().Run(ctx)

	if *listen != "" {
		gin.SetMode(gin.ReleaseMode)
		engine := statusserver.New(ctrl, reg)
		go func() {
			if err := statusserver.Run(engine, *listen); err != nil {
				log.Printf("[status] %v", err)
			}
		}()
	}

	w.SetCloseIntercept(func() {
		ctrl.Stop()
		if err := config.Save(ui.Settings()); err != nil {
			log.Printf("[config] %v", err)
		}
		w.Close()
	})

	w.ShowAndRun()
}
