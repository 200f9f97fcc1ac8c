// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// epdrender draws text and an optional SVG icon on an SSD1680 e-paper panel,
// refreshing it on a cron schedule.
//
// With -preview no hardware is touched: the panel is emulated and every
// refresh is printed to the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/epaper/epd"
	"github.com/GermanBionicSystems/epaper/epd/epdtest"
	"github.com/GermanBionicSystems/epaper/screen2d"
	"github.com/GermanBionicSystems/epaper/ssd1680"
)

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "epdrender: %s.\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	configPath := flag.String("config", "/etc/epdrender/config.yaml", "path to config file")
	once := flag.Bool("once", false, "refresh once and exit")
	preview := flag.Bool("preview", false, "emulate the panel and print refreshes to the terminal")
	listen := flag.String("listen", "", "HTTP listen address (overrides config if set)")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "epd: ", log.LstdFlags|log.Lmicroseconds)
	}

	cfg, err := Load(*configPath)
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	var m ssd1680.Model
	if err := m.Set(cfg.Model); err != nil {
		return err
	}
	o, err := m.Opts()
	if err != nil {
		return err
	}
	r, err := newRenderer(cfg)
	if err != nil {
		return err
	}

	eo := o.EPD()
	eo.InvertTransfer = cfg.Invert
	eo.Writer = r.draw
	eo.Logger = logger

	a := &app{}
	if *preview {
		a.dev, err = openEmulated(eo)
		a.preview = screen2d.New(&screen2d.Opts{X: o.Width, Y: o.Height, Step: 2})
	} else {
		var closer io.Closer
		a.dev, closer, err = openPanel(cfg, eo)
		if closer != nil {
			defer closer.Close()
		}
	}
	if err != nil {
		return err
	}
	log.Printf("%s %s", m, a.dev)

	if err := a.dev.Setup(); err != nil {
		return err
	}
	if err := a.update(); err != nil {
		return err
	}
	if *once {
		return a.halt()
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Refresh, func() {
		if err := a.update(); err != nil {
			log.Printf("refresh: %v", err)
		}
	}); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Listen != "" {
		srv := newServer(a)
		go func() {
			log.Printf("listening on %s", cfg.Listen)
			if err := srv.Listen(cfg.Listen); err != nil {
				log.Printf("http: %v", err)
			}
		}()
		defer srv.Shutdown()
	}

	<-ctx.Done()
	return a.halt()
}

// openPanel connects to the panel described by cfg.
func openPanel(cfg *Config, eo *epd.Opts) (*epd.Dev, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	p, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, nil, err
	}

	dc, err := pinByName(cfg.Pins.DC)
	if err != nil {
		return nil, p, err
	}
	cs, err := pinByName(cfg.Pins.CS)
	if err != nil {
		return nil, p, err
	}
	var rst gpio.PinOut
	if cfg.Pins.Reset != "" {
		if rst, err = pinByName(cfg.Pins.Reset); err != nil {
			return nil, p, err
		}
	}
	var busy gpio.PinIn
	if cfg.Pins.Busy != "" {
		if busy, err = pinByName(cfg.Pins.Busy); err != nil {
			return nil, p, err
		}
	}

	d, err := epd.New(p, dc, cs, rst, busy, eo)
	return d, p, err
}

func pinByName(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return p, nil
}

// openEmulated returns a panel whose traffic is recorded and dropped, with
// the busy line always idle.
func openEmulated(eo *epd.Opts) (*epd.Dev, error) {
	rec := &epdtest.Recorder{Quiet: true}
	eo.Sleep = rec.Sleep
	return epd.New(rec.Port(), rec.Pin("dc"), rec.Pin("cs"), rec.Pin("rst"), rec.Pin("busy"), eo)
}
