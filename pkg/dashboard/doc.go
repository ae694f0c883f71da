// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package dashboard implements a client for the robot controller dashboard
// server, the line-oriented text protocol on TCP port 29999 used for
// administrative commands (power, brakes, programs, popups, diagnostics).
//
// Each request is one line, each reply is one line:
//
//	CLI: robotmode
//	SRV: Robotmode: IDLE
//	CLI: load demo.urp
//	SRV: Loading program: /programs/demo.urp
//
// On connect the server sends a greeting line; the client logs it and
// immediately queries PolyscopeVersion. The reported version decides which
// commands the connected controller supports (see VersionGate). Commands the
// controller does not support return false without touching the wire.
//
// Commands that start an asynchronous transition (power on, play, load)
// are followed by a status poll, so the call returns once the controller
// reports the new state or the poll runs out of time.
//
// Basic usage:
//
//	c := dashboard.NewClient(transport.NewTCP("192.168.56.101", dashboard.DefaultPort))
//	if err := c.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Disconnect()
//
//	if ok, err := c.PowerOn(dashboard.DefaultPowerOnAttempts); err != nil || !ok {
//	    log.Fatalf("power on failed: %v", err)
//	}
package dashboard
