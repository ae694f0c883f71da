// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dashboard

// Named wrappers around Invoke. Boolean operations return false with a nil
// error when the controller's version does not support them.

// PowerOff powers the arm off and waits for robot mode POWER_OFF.
func (c *Client) PowerOff() (bool, error) {
	return c.Invoke(OpPowerOff, "").Bool()
}

// PowerOn re-sends "power on" once per second until robot mode is IDLE, at
// most attempts times. attempts <= 0 selects DefaultPowerOnAttempts.
func (c *Client) PowerOn(attempts int) (bool, error) {
	return c.InvokeAttempts(OpPowerOn, "", attempts).Bool()
}

// BrakeRelease releases the brakes and waits for robot mode RUNNING.
func (c *Client) BrakeRelease() (bool, error) {
	return c.Invoke(OpBrakeRelease, "").Bool()
}

// LoadProgram loads a program file and waits until it reports STOPPED.
func (c *Client) LoadProgram(name string) (bool, error) {
	return c.Invoke(OpLoadProgram, name).Bool()
}

// LoadInstallation loads an installation file.
func (c *Client) LoadInstallation(name string) (bool, error) {
	return c.Invoke(OpLoadInstallation, name).Bool()
}

// Play starts the loaded program and waits until it is PLAYING.
func (c *Client) Play() (bool, error) {
	return c.Invoke(OpPlay, "").Bool()
}

// Pause pauses the running program and waits until it is PAUSED.
func (c *Client) Pause() (bool, error) {
	return c.Invoke(OpPause, "").Bool()
}

// Stop stops the program and waits until it is STOPPED.
func (c *Client) Stop() (bool, error) {
	return c.Invoke(OpStop, "").Bool()
}

func (c *Client) ClosePopup() (bool, error) {
	return c.Invoke(OpClosePopup, "").Bool()
}

func (c *Client) CloseSafetyPopup() (bool, error) {
	return c.Invoke(OpCloseSafetyPopup, "").Bool()
}

// RestartSafety restarts the safety system and waits for POWER_OFF.
func (c *Client) RestartSafety() (bool, error) {
	return c.Invoke(OpRestartSafety, "").Bool()
}

func (c *Client) UnlockProtectiveStop() (bool, error) {
	return c.Invoke(OpUnlockProtectiveStop, "").Bool()
}

// Shutdown shuts the controller down.
func (c *Client) Shutdown() (bool, error) {
	return c.Invoke(OpShutdown, "").Bool()
}

// Quit ends the dashboard session. The client is disconnected afterwards.
func (c *Client) Quit() (bool, error) {
	return c.Invoke(OpQuit, "").Bool()
}

// Running reports whether a program is running.
func (c *Client) Running() (bool, error) {
	return c.Invoke(OpRunning, "").Bool()
}

// IsProgramSaved reports whether the loaded program has no unsaved changes.
func (c *Client) IsProgramSaved() (bool, error) {
	return c.Invoke(OpIsProgramSaved, "").Bool()
}

// IsInRemoteControl reports whether the controller is in remote control mode.
func (c *Client) IsInRemoteControl() (bool, error) {
	return c.Invoke(OpIsInRemoteControl, "").Bool()
}

// Popup shows text in a popup on the teach pendant. The text must be a
// single line.
func (c *Client) Popup(text string) (bool, error) {
	return c.Invoke(OpPopup, text).Bool()
}

// AddToLog appends a single-line message to the controller log.
func (c *Client) AddToLog(text string) (bool, error) {
	return c.Invoke(OpAddToLog, text).Bool()
}

// PolyscopeVersion re-queries the software version, records it in the
// version gate and returns the full reply.
func (c *Client) PolyscopeVersion() (string, bool, error) {
	return c.Invoke(OpPolyscopeVersion, "").Text()
}

func (c *Client) GetRobotModel() (string, bool, error) {
	return c.Invoke(OpGetRobotModel, "").Text()
}

func (c *Client) GetSerialNumber() (string, bool, error) {
	return c.Invoke(OpGetSerialNumber, "").Text()
}

// RobotMode returns the "Robotmode: ..." reply.
func (c *Client) RobotMode() (string, bool, error) {
	return c.Invoke(OpRobotMode, "").Text()
}

func (c *Client) GetLoadedProgram() (string, bool, error) {
	return c.Invoke(OpGetLoadedProgram, "").Text()
}

func (c *Client) SafetyMode() (string, bool, error) {
	return c.Invoke(OpSafetyMode, "").Text()
}

func (c *Client) SafetyStatus() (string, bool, error) {
	return c.Invoke(OpSafetyStatus, "").Text()
}

// ProgramState returns the program state line, e.g. "PLAYING demo.urp".
func (c *Client) ProgramState() (string, bool, error) {
	return c.Invoke(OpProgramState, "").Text()
}

func (c *Client) GetOperationalMode() (string, bool, error) {
	return c.Invoke(OpGetOperationalMode, "").Text()
}

func (c *Client) SetOperationalMode(mode string) (bool, error) {
	return c.Invoke(OpSetOperationalMode, mode).Bool()
}

func (c *Client) ClearOperationalMode() (bool, error) {
	return c.Invoke(OpClearOperationalMode, "").Bool()
}

// SetUserRole is only available on CB3 controllers.
func (c *Client) SetUserRole(role string) (bool, error) {
	return c.Invoke(OpSetUserRole, role).Bool()
}

func (c *Client) GetUserRole() (string, bool, error) {
	return c.Invoke(OpGetUserRole, "").Text()
}

// GenerateFlightReport asks the controller for a flight report of the given
// type. The read timeout is raised to FlightReportTimeout for this command.
func (c *Client) GenerateFlightReport(reportType string) (bool, error) {
	return c.Invoke(OpGenerateFlightReport, reportType).Bool()
}

// GenerateSupportFile writes a support file into dirPath on the controller.
// The read timeout is raised to SupportFileTimeout for this command.
func (c *Client) GenerateSupportFile(dirPath string) (bool, error) {
	return c.Invoke(OpGenerateSupportFile, dirPath).Bool()
}
