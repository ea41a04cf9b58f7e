package main

import (
	"fmt"
	"image"
	"log"
	"slices"
	"strconv"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"serial-plotter/internal/config"
	"serial-plotter/internal/device"
	"serial-plotter/internal/pipeline"
	"serial-plotter/internal/plot"
)

const (
	plotWidth  = 900
	plotHeight = 260
)

var standardBaudRates = []string{"9600", "19200", "38400", "57600", "115200"}

// AppUI holds all widgets and forwards user commands to the pipeline
// controller. It implements pipeline.Observer.
type AppUI struct {
	window   fyne.Window
	ports    device.Enumerator
	ctrl     *pipeline.Controller
	trigger  *plot.Trigger
	settings config.Settings

	// Widgets
	portSelect *widget.Select
	baudSelect *widget.Select
	refreshBtn *widget.Button
	connectBtn *widget.Button
	connLabel  *widget.Label
	dataLabel  *widget.Label
	plot1      *canvas.Image
	plot2      *canvas.Image

	// active is true while a session is connecting or streaming.
	active atomic.Bool
}

func NewAppUI(window fyne.Window, ports device.Enumerator, settings config.Settings) *AppUI {
	ui := &AppUI{
		window:   window,
		ports:    ports,
		settings: settings,
	}
	ui.trigger = plot.NewTrigger(plot.Renderer{Width: plotWidth, Height: plotHeight}, ui.drawFrame)
	ui.build()
	return ui
}

// SetController wires the controller that button presses are sent to.
func (ui *AppUI) SetController(ctrl *pipeline.Controller) {
	ui.ctrl = ctrl
}

// Trigger returns the render trigger; its Run loop must be started by the caller.
func (ui *AppUI) Trigger() *plot.Trigger {
	return ui.trigger
}

// Settings returns the connection settings currently selected in the UI.
func (ui *AppUI) Settings() config.Settings {
	s := ui.settings
	if ui.portSelect.Selected != "" {
		s.Port = ui.portSelect.Selected
	}
	if baud, err := strconv.Atoi(ui.baudSelect.Selected); err == nil {
		s.BaudRate = baud
	}
	return s
}

func (ui *AppUI) build() {
	ui.portSelect = widget.NewSelect([]string{}, nil)
	ui.portSelect.PlaceHolder = "Select COM Port"

	ui.refreshBtn = widget.NewButton("Refresh", func() {
		ui.refreshPorts()
	})
	ui.refreshPorts()

	ui.baudSelect = widget.NewSelect(baudOptions(ui.settings.BaudRate), nil)
	ui.baudSelect.SetSelected(strconv.Itoa(config.DefaultBaudRate))
	ui.baudSelect.SetSelected(strconv.Itoa(ui.settings.BaudRate))

	ui.connectBtn = widget.NewButton("Connect", func() {
		ui.toggleConnection()
	})

	ui.connLabel = widget.NewLabel("Disconnected")
	ui.dataLabel = widget.NewLabel("No data")

	ui.plot1 = newPlotImage()
	ui.plot2 = newPlotImage()

	toolbar := container.NewHBox(
		widget.NewLabel("COM Port:"),
		ui.portSelect,
		ui.refreshBtn,
		widget.NewLabel("Baud:"),
		ui.baudSelect,
		ui.connectBtn,
		ui.connLabel,
		ui.dataLabel,
	)
	plots := container.NewGridWithRows(2, ui.plot1, ui.plot2)
	ui.window.SetContent(container.NewBorder(toolbar, nil, nil, nil, plots))
}

// baudOptions is the standard list plus baud when it is a non-standard rate.
func baudOptions(baud int) []string {
	opts := slices.Clone(standardBaudRates)
	if baud <= 0 {
		return opts
	}
	if s := strconv.Itoa(baud); !slices.Contains(opts, s) {
		opts = append(opts, s)
	}
	return opts
}

func newPlotImage() *canvas.Image {
	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, plotWidth, plotHeight)))
	img.FillMode = canvas.ImageFillStretch
	img.SetMinSize(fyne.NewSize(plotWidth/2, plotHeight/2))
	return img
}

func (ui *AppUI) refreshPorts() {
	ports, err := ui.ports.Ports()
	if err != nil {
		log.Printf("[ui] %v", err)
		ports = []string{}
	}
	ui.portSelect.Options = ports
	switch {
	case slices.Contains(ports, ui.settings.Port):
		ui.portSelect.SetSelected(ui.settings.Port)
	case len(ports) > 0:
		ui.portSelect.SetSelected(ports[0])
	}
	ui.portSelect.Refresh()
}

func (ui *AppUI) toggleConnection() {
	if ui.active.Load() {
		go ui.ctrl.Stop()
		return
	}

	portName := ui.portSelect.Selected
	if portName == "" {
		dialog.ShowError(fmt.Errorf("select a COM port"), ui.window)
		return
	}

	baudRate, err := strconv.Atoi(ui.baudSelect.Selected)
	if err != nil {
		dialog.ShowError(fmt.Errorf("invalid baud rate: %s", ui.baudSelect.Selected), ui.window)
		return
	}

	ui.settings.Port = portName
	ui.settings.BaudRate = baudRate
	go ui.ctrl.Start(portName, baudRate)
}

// StatusChanged implements pipeline.Observer.
func (ui *AppUI) StatusChanged(st pipeline.Status) {
	ui.active.Store(st.State == pipeline.Connecting || st.State == pipeline.Streaming)
	fyne.Do(func() {
		ui.applyStatus(st)
	})
}

// SeriesUpdated implements pipeline.Observer.
func (ui *AppUI) SeriesUpdated(s pipeline.Snapshot) {
	ui.trigger.Request(s)
}

func (ui *AppUI) applyStatus(st pipeline.Status) {
	ui.connLabel.SetText(connectionText(st))
	ui.dataLabel.SetText(dataText(st))

	if st.State == pipeline.Connecting || st.State == pipeline.Streaming {
		ui.connectBtn.SetText("Disconnect")
		ui.portSelect.Disable()
		ui.baudSelect.Disable()
		return
	}
	ui.connectBtn.SetText("Connect")
	ui.portSelect.Enable()
	ui.baudSelect.Enable()
}

func (ui *AppUI) drawFrame(f plot.Frame) {
	fyne.Do(func() {
		ui.plot1.Image = f.Channel1
		ui.plot1.Refresh()
		ui.plot2.Image = f.Channel2
		ui.plot2.Refresh()
	})
}

func connectionText(st pipeline.Status) string {
	switch st.State {
	case pipeline.Connecting:
		return "Connecting to " + st.Target
	case pipeline.Streaming:
		return "Connected to " + st.Target
	case pipeline.Errored:
		return "Error: " + st.Message
	default:
		return "Disconnected"
	}
}

func dataText(st pipeline.Status) string {
	if st.State == pipeline.Disconnected || st.State == pipeline.Errored {
		return "No data"
	}
	switch st.Liveness {
	case pipeline.Flowing:
		return "Data coming"
	case pipeline.Stalled:
		return "No data is coming"
	default:
		return "No data"
	}
}
