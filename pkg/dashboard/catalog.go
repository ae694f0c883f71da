// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Operation names a catalog entry.
type Operation string

// Catalog operations
const (
	OpPowerOff             Operation = "power off"
	OpPowerOn              Operation = "power on"
	OpBrakeRelease         Operation = "brake release"
	OpLoadProgram          Operation = "load program"
	OpLoadInstallation     Operation = "load installation"
	OpPlay                 Operation = "play"
	OpPause                Operation = "pause"
	OpStop                 Operation = "stop"
	OpClosePopup           Operation = "close popup"
	OpCloseSafetyPopup     Operation = "close safety popup"
	OpRestartSafety        Operation = "restart safety"
	OpUnlockProtectiveStop Operation = "unlock protective stop"
	OpShutdown             Operation = "shutdown"
	OpQuit                 Operation = "quit"
	OpRunning              Operation = "running"
	OpIsProgramSaved       Operation = "is program saved"
	OpIsInRemoteControl    Operation = "is in remote control"
	OpPopup                Operation = "popup"
	OpAddToLog             Operation = "add to log"
	OpPolyscopeVersion     Operation = "polyscope version"
	OpGetRobotModel        Operation = "get robot model"
	OpGetSerialNumber      Operation = "get serial number"
	OpRobotMode            Operation = "robot mode"
	OpGetLoadedProgram     Operation = "get loaded program"
	OpSafetyMode           Operation = "safety mode"
	OpSafetyStatus         Operation = "safety status"
	OpProgramState         Operation = "program state"
	OpGetOperationalMode   Operation = "get operational mode"
	OpSetOperationalMode   Operation = "set operational mode"
	OpClearOperationalMode Operation = "clear operational mode"
	OpSetUserRole          Operation = "set user role"
	OpGetUserRole          Operation = "get user role"
	OpGenerateFlightReport Operation = "generate flight report"
	OpGenerateSupportFile  Operation = "generate support file"
)

const (
	// DefaultAwaitTimeout bounds the status poll that follows a command.
	DefaultAwaitTimeout = 30 * time.Second

	// FlightReportTimeout is the read timeout while a flight report is generated.
	FlightReportTimeout = 180 * time.Second

	// SupportFileTimeout is the read timeout while a support file is generated.
	SupportFileTimeout = 600 * time.Second

	versionCommand = "PolyscopeVersion"
	notUnderstood  = "could not understand"
)

var versionExpect = Prefix("URSoftware ")

// Await is the status poll run after a command has been acknowledged.
type Await struct {
	Query   string
	Expect  func(arg string) Matcher
	Timeout time.Duration
}

// CommandSpec describes one dashboard operation.
type CommandSpec struct {
	Op Operation

	// Command is the wire keyword; the caller's argument follows after a space.
	Command string
	Arg     bool

	// Expect validates the reply. A mismatch is a protocol error.
	Expect func(arg string) Matcher

	// Truth, when set, turns an accepted reply into a boolean answer.
	Truth Matcher

	Await *Await

	// Retry re-sends Command once per RetryWindow until Await.Query
	// matches, up to Attempts times.
	Retry    bool
	Attempts int

	// Extract marks get-style operations whose reply is the answer.
	Extract bool

	MinESeries Threshold
	MinCB3     Threshold

	// Ungated operations run before the version is known.
	Ungated bool

	// Timeout replaces the read timeout for the command's own exchange.
	Timeout time.Duration

	// onReplyLocked runs on an accepted reply while the exchange still
	// holds the client lock.
	onReplyLocked func(c *Client, reply string) error
}

// Line formats the wire command for arg.
func (s CommandSpec) Line(arg string) string {
	if s.Arg {
		return s.Command + " " + arg
	}
	return s.Command
}

func (s CommandSpec) validate(arg string) error {
	if !s.Arg {
		if arg != "" {
			return invalidArgument("%s takes no argument", s.Op)
		}
		return nil
	}
	if strings.TrimSpace(arg) == "" {
		return invalidArgument("%s requires an argument", s.Op)
	}
	if strings.ContainsAny(arg, "\r\n") {
		return invalidArgument("%s argument must not contain line terminators", s.Op)
	}
	return nil
}

func fixed(m Matcher) func(string) Matcher {
	return func(string) Matcher { return m }
}

var (
	sinceE500 = Since("5.0.0")
	sinceE560 = Since("5.6.0")
	sinceE580 = Since("5.8.0")
)

var specs = []CommandSpec{
	{
		Op: OpPowerOff, Command: "power off", Expect: fixed(Exact("Powering off")),
		Await:      &Await{Query: "robotmode", Expect: fixed(Exact("Robotmode: POWER_OFF"))},
		MinESeries: sinceE500, MinCB3: Since("3.0"),
	},
	{
		Op: OpPowerOn, Command: "power on", Expect: fixed(Exact("Powering on")),
		Await: &Await{Query: "robotmode", Expect: fixed(Exact("Robotmode: IDLE"))},
		Retry: true, Attempts: DefaultPowerOnAttempts,
		MinESeries: sinceE500, MinCB3: Since("3.0"),
	},
	{
		Op: OpBrakeRelease, Command: "brake release", Expect: fixed(Exact("Brake releasing")),
		Await:      &Await{Query: "robotmode", Expect: fixed(Exact("Robotmode: RUNNING"))},
		MinESeries: sinceE500, MinCB3: Since("3.0"),
	},
	{
		Op: OpLoadProgram, Command: "load", Arg: true,
		Expect: func(name string) Matcher { return All(Prefix("Loading program: "), Contains(name)) },
		Await: &Await{Query: "programState", Expect: func(name string) Matcher {
			return Exact("STOPPED " + name)
		}},
		MinESeries: sinceE500, MinCB3: Since("1.4"),
	},
	{
		Op: OpLoadInstallation, Command: "load installation", Arg: true,
		Expect:     func(name string) Matcher { return All(Prefix("Loading installation: "), Contains(name)) },
		MinESeries: sinceE500, MinCB3: Since("3.2"),
	},
	{
		Op: OpPlay, Command: "play", Expect: fixed(Exact("Starting program")),
		Await:      &Await{Query: "programState", Expect: fixed(Prefix("PLAYING "))},
		MinESeries: sinceE500, MinCB3: Since("1.4"),
	},
	{
		Op: OpPause, Command: "pause", Expect: fixed(Exact("Pausing program")),
		Await:      &Await{Query: "programState", Expect: fixed(Prefix("PAUSED "))},
		MinESeries: sinceE500, MinCB3: Since("1.4"),
	},
	{
		Op: OpStop, Command: "stop", Expect: fixed(Exact("Stopped")),
		Await:      &Await{Query: "programState", Expect: fixed(Prefix("STOPPED "))},
		MinESeries: sinceE500, MinCB3: Since("1.4"),
	},
	{
		Op: OpClosePopup, Command: "close popup", Expect: fixed(Exact("closing popup")),
		MinESeries: sinceE500, MinCB3: Since("1.6"),
	},
	{
		Op: OpCloseSafetyPopup, Command: "close safety popup", Expect: fixed(Exact("closing safety popup")),
		MinESeries: sinceE500, MinCB3: Since("3.1"),
	},
	{
		Op: OpRestartSafety, Command: "restart safety", Expect: fixed(Exact("Restarting safety")),
		Await:      &Await{Query: "robotmode", Expect: fixed(Exact("Robotmode: POWER_OFF"))},
		MinESeries: Since("5.1.0"), MinCB3: Since("3.7"),
	},
	{
		Op: OpUnlockProtectiveStop, Command: "unlock protective stop", Expect: fixed(Exact("Protective stop releasing")),
		MinESeries: sinceE500, MinCB3: Since("3.1"),
	},
	{
		Op: OpShutdown, Command: "shutdown", Expect: fixed(Exact("Shutting down")),
		MinESeries: sinceE500, MinCB3: Since("1.4"),
	},
	{
		Op: OpQuit, Command: "quit", Expect: fixed(Exact("Disconnected")),
		MinESeries: sinceE500, MinCB3: Since("1.4"),
		onReplyLocked: func(c *Client, _ string) error {
			c.log.Info("Disconnecting from dashboard server")
			c.closeLocked()
			return nil
		},
	},
	{
		Op: OpRunning, Command: "running", Expect: fixed(Prefix("Program running: ")),
		Truth:      Exact("Program running: true"),
		MinESeries: sinceE500, MinCB3: Since("1.6"),
	},
	{
		Op: OpIsProgramSaved, Command: "isProgramSaved", Expect: fixed(Any()),
		Truth:      Prefix("true"),
		MinESeries: sinceE500, MinCB3: Since("1.8"),
	},
	{
		Op: OpIsInRemoteControl, Command: "is in remote control", Expect: fixed(Any()),
		Truth:      Exact("true"),
		MinESeries: sinceE560, MinCB3: Unsupported,
	},
	{
		Op: OpPopup, Command: "popup", Arg: true, Expect: fixed(Exact("showing popup")),
		MinESeries: sinceE500, MinCB3: Since("1.6"),
	},
	{
		Op: OpAddToLog, Command: "addToLog", Arg: true, Expect: fixed(Exact("Added log message")),
		MinESeries: sinceE500, MinCB3: Since("1.8"),
	},
	{
		Op: OpPolyscopeVersion, Command: versionCommand, Expect: fixed(versionExpect),
		Extract: true, Ungated: true,
		onReplyLocked: func(c *Client, reply string) error {
			return c.recordVersionLocked(reply)
		},
	},
	{
		Op: OpGetRobotModel, Command: "get robot model", Expect: fixed(Prefix("UR")),
		Extract: true, MinESeries: sinceE560, MinCB3: Since("3.12"),
	},
	{
		Op: OpGetSerialNumber, Command: "get serial number", Expect: fixed(Prefix("20")),
		Extract: true, MinESeries: sinceE560, MinCB3: Since("3.12"),
	},
	{
		Op: OpRobotMode, Command: "robotmode", Expect: fixed(Prefix("Robotmode: ")),
		Extract: true, MinESeries: sinceE500, MinCB3: Since("1.6"),
	},
	{
		Op: OpGetLoadedProgram, Command: "get loaded program", Expect: fixed(Prefix("Loaded program: ")),
		Extract: true, MinESeries: sinceE500, MinCB3: Since("1.6"),
	},
	{
		Op: OpSafetyMode, Command: "safetymode", Expect: fixed(Prefix("Safetymode: ")),
		Extract: true, MinESeries: sinceE500, MinCB3: Since("3.0"),
	},
	{
		Op: OpSafetyStatus, Command: "safetystatus", Expect: fixed(Prefix("Safetystatus: ")),
		Extract: true, MinESeries: Since("5.4.0"), MinCB3: Since("3.11"),
	},
	{
		Op: OpProgramState, Command: "programState", Expect: fixed(Any()),
		Truth:   Not(Prefix(notUnderstood)),
		Extract: true, MinESeries: sinceE500, MinCB3: Since("1.8"),
	},
	{
		Op: OpGetOperationalMode, Command: "get operational mode", Expect: fixed(Any()),
		Truth:   Not(Prefix(notUnderstood)),
		Extract: true, MinESeries: sinceE560, MinCB3: Unsupported,
	},
	{
		Op: OpSetOperationalMode, Command: "set operational mode", Arg: true,
		Expect:     func(mode string) Matcher { return All(Prefix("Operational mode "), Contains(mode)) },
		MinESeries: sinceE500, MinCB3: Unsupported,
	},
	{
		Op: OpClearOperationalMode, Command: "clear operational mode",
		Expect:     fixed(Prefix("No longer controlling the operational mode. ")),
		MinESeries: sinceE500, MinCB3: Unsupported,
	},
	{
		Op: OpSetUserRole, Command: "setUserRole", Arg: true, Expect: fixed(Prefix("Setting user role: ")),
		MinESeries: Unsupported, MinCB3: Since("1.8"),
	},
	{
		Op: OpGetUserRole, Command: "getUserRole", Expect: fixed(Any()),
		Truth:   Not(Prefix(notUnderstood)),
		Extract: true, MinESeries: Unsupported, MinCB3: Since("1.8"),
	},
	{
		Op: OpGenerateFlightReport, Command: "generate flight report", Arg: true,
		Expect:     fixed(Contains("Flight Report generated with id")),
		MinESeries: sinceE580, MinCB3: Since("3.13"),
		Timeout:    FlightReportTimeout,
	},
	{
		Op: OpGenerateSupportFile, Command: "generate support file", Arg: true,
		Expect:     fixed(Contains("Completed successfully")),
		MinESeries: sinceE580, MinCB3: Since("3.13"),
		Timeout:    SupportFileTimeout,
	},
}

var catalog = func() map[Operation]CommandSpec {
	m := make(map[Operation]CommandSpec, len(specs))
	for _, s := range specs {
		m[s.Op] = s
	}
	return m
}()

// Lookup returns the CommandSpec for op.
func Lookup(op Operation) (CommandSpec, bool) {
	s, ok := catalog[op]
	return s, ok
}

// Catalog returns every operation spec sorted by name.
func Catalog() []CommandSpec {
	out := make([]CommandSpec, len(specs))
	copy(out, specs)
	sort.Slice(out, func(i, j int) bool { return out[i].Op < out[j].Op })
	return out
}

// Invoke runs a catalog operation. arg is the caller token for operations
// that take one and must be empty otherwise.
func (c *Client) Invoke(op Operation, arg string) Result {
	spec, ok := Lookup(op)
	if !ok {
		return resultFromError(op, "", fmt.Errorf("%w: %q", ErrUnknownOperation, op))
	}
	return c.InvokeSpec(spec, arg)
}

// InvokeAttempts is Invoke with an explicit trigger budget for retrying
// operations such as power on. attempts <= 0 keeps the catalog default.
func (c *Client) InvokeAttempts(op Operation, arg string, attempts int) Result {
	spec, ok := Lookup(op)
	if !ok {
		return resultFromError(op, "", fmt.Errorf("%w: %q", ErrUnknownOperation, op))
	}
	if attempts <= 0 {
		attempts = spec.Attempts
	}
	return c.run(spec, arg, attempts)
}

// InvokeSpec runs an arbitrary command spec: gate check, exchange, then the
// optional follow-up poll or retry loop.
func (c *Client) InvokeSpec(spec CommandSpec, arg string) Result {
	return c.run(spec, arg, spec.Attempts)
}

func (c *Client) run(spec CommandSpec, arg string, attempts int) Result {
	op := spec.Op
	if err := spec.validate(arg); err != nil {
		return resultFromError(op, "", err)
	}

	line := spec.Line(arg)
	expected := Any()
	if spec.Expect != nil {
		expected = spec.Expect(arg)
	}
	pin := &opSession{spec: spec}

	if spec.Retry && spec.Await != nil {
		ok, err := c.issueThenPoll(pin, line, expected, spec.Await.Query, spec.Await.Expect(arg), attempts)
		if err != nil {
			return resultFromError(op, "", err)
		}
		if !ok {
			return Result{Op: op, Kind: KindNegative}
		}
		return Result{Op: op, Kind: KindOK}
	}

	reply, err := c.pinnedExchange(pin, line, expected, spec.Timeout)
	if err != nil {
		return resultFromError(op, reply, err)
	}
	if spec.Truth != nil && !spec.Truth.Match(reply) {
		return Result{Op: op, Kind: KindNegative, Value: reply}
	}

	if spec.Await != nil {
		timeout := spec.Await.Timeout
		if timeout <= 0 {
			timeout = DefaultAwaitTimeout
		}
		ok, err := c.pollUntil(pin, spec.Await.Query, spec.Await.Expect(arg), timeout)
		if err != nil {
			return resultFromError(op, reply, err)
		}
		if !ok {
			return Result{Op: op, Kind: KindNegative, Value: reply}
		}
	}

	return Result{Op: op, Kind: KindOK, Value: reply}
}
