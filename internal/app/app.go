// Package app implements the main NES emulator application: the concrete
// host.Host that owns the graphics backend, the emulation core and the
// audio drain, and the fixed-60Hz loop that drives them.
package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/majestic53/nesl-sub001/internal/bus"
	"github.com/majestic53/nesl-sub001/internal/cartridge"
	"github.com/majestic53/nesl-sub001/internal/diag"
	"github.com/majestic53/nesl-sub001/internal/graphics"
	"github.com/majestic53/nesl-sub001/internal/host"
	"github.com/majestic53/nesl-sub001/internal/input"
)

// Application is the concrete host.Host: it owns a graphics.Backend, the
// emulator's bus, and drains the APU's sample ring for the audio device.
type Application struct {
	bus *bus.Bus

	graphicsBackend graphics.Backend
	window          graphics.Window
	videoProcessor  *graphics.VideoProcessor

	config   *Config
	emulator *Emulator

	running     bool
	paused      bool
	initialized bool
	headless    bool

	startTime   time.Time
	lastFPSTime time.Time
	frameCount  uint64
	currentFPS  float64

	romPath   string
	cartridge *cartridge.Cartridge

	lastESCTime time.Time

	lastController1State [8]bool
	lastController2State [8]bool
}

var _ host.Host = (*Application)(nil)

// ApplicationError wraps a component failure with the operation that
// produced it.
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

// NewApplication creates a windowed application, loading configuration
// from configPath if non-empty.
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode creates an application, optionally running with
// the headless graphics backend (no window, no input polling).
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	app := &Application{
		config:      NewConfig(),
		headless:    headless,
		startTime:   time.Now(),
		lastFPSTime: time.Now(),
	}

	if configPath != "" {
		if err := app.config.LoadFromFile(configPath); err != nil {
			fmt.Printf("[app] could not load config from %s, using defaults: %v\n", configPath, err)
		}
	}

	if err := app.initializeComponents(headless); err != nil {
		return nil, &ApplicationError{Component: "initialization", Operation: "component setup", Err: err}
	}

	return app, nil
}

func (app *Application) initializeComponents(headless bool) error {
	app.bus = bus.New()

	if err := app.initializeGraphicsBackend(headless); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %v", err)
	}

	app.emulator = NewEmulator(app.bus, app.config)
	app.initialized = true
	return nil
}

func (app *Application) initializeGraphicsBackend(headless bool) error {
	var backendType graphics.BackendType
	if headless {
		backendType = graphics.BackendHeadless
	} else {
		switch app.config.Video.Backend {
		case "ebitengine":
			backendType = graphics.BackendEbitengine
		case "headless":
			backendType = graphics.BackendHeadless
		case "terminal":
			backendType = graphics.BackendTerminal
		default:
			backendType = graphics.BackendEbitengine
		}
	}

	var err error
	app.graphicsBackend, err = graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("failed to create graphics backend: %v", err)
	}

	graphicsConfig := graphics.Config{
		WindowTitle:  "nesl",
		WindowWidth:  app.config.Window.Width,
		WindowHeight: app.config.Window.Height,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		AspectRatio:  app.config.Video.AspectRatio,
		Headless:     headless,
		Debug:        app.config.Debug.EnableLogging,
	}

	if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
		if backendType == graphics.BackendEbitengine {
			fmt.Printf("[app] Ebitengine backend failed (%v), falling back to headless mode\n", err)
			app.graphicsBackend, err = graphics.CreateBackend(graphics.BackendHeadless)
			if err != nil {
				return fmt.Errorf("failed to create fallback headless backend: %v", err)
			}
			graphicsConfig.Headless = true
			if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
				return fmt.Errorf("failed to initialize fallback headless backend: %v", err)
			}
		} else {
			return fmt.Errorf("failed to initialize graphics backend: %v", err)
		}
	}

	if !headless && !app.graphicsBackend.IsHeadless() {
		app.window, err = app.graphicsBackend.CreateWindow(
			graphicsConfig.WindowTitle,
			graphicsConfig.WindowWidth,
			graphicsConfig.WindowHeight,
		)
		if err != nil {
			return fmt.Errorf("failed to create window: %v", err)
		}

		if ebitengineWindow, ok := graphics.AsEbitengineWindow(app.window); ok {
			if err := ebitengineWindow.SetAudioSource(app.bus.ReadAudioSamples); err != nil {
				fmt.Printf("[app] audio playback disabled: %v\n", err)
			}
		}
	}

	app.videoProcessor = graphics.NewVideoProcessor(
		app.config.Video.Brightness,
		app.config.Video.Contrast,
		app.config.Video.Saturation,
	)

	return nil
}

// LoadROM loads a cartridge image and resets the system to run it.
func (app *Application) LoadROM(romPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	cart, err := cartridge.LoadFromFile(romPath)
	if err != nil {
		diag.SetError("failed to load ROM %s: %v", romPath, err)
		return &ApplicationError{Component: "cartridge", Operation: "load ROM", Err: err}
	}

	app.cartridge = cart
	app.romPath = romPath
	app.bus.LoadCartridge(cart)
	app.bus.SetAudioSampleRate(app.config.Audio.SampleRate)

	if app.window != nil {
		app.window.SetTitle(fmt.Sprintf("nesl - %s", filepath.Base(romPath)))
	}

	app.emulator.Start()
	return nil
}

// Run starts the main application loop: pump input, advance one frame,
// present it, repeat at 60Hz. Ebitengine backends drive their own game
// loop, so the per-frame body is handed to it as a callback instead.
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running = true
	app.startTime = time.Now()
	app.lastFPSTime = time.Now()

	if ebitengineWindow, ok := graphics.AsEbitengineWindow(app.window); app.window != nil && ok {
		ebitengineWindow.SetEmulatorUpdateFunc(func() error {
			return app.runOneFrame()
		})
		return ebitengineWindow.Run()
	}

	for app.running {
		frameStart := time.Now()
		if err := app.runOneFrame(); err != nil {
			return err
		}
		app.pace(frameStart)
	}
	return nil
}

// runOneFrame is the body of a single iteration of the run loop: poll
// the host for events, advance emulation, present the frame.
func (app *Application) runOneFrame() error {
	switch app.Poll() {
	case host.Quit:
		app.Stop()
		return nil
	case host.ResetRequest:
		app.Reset()
	}

	if !app.paused && app.cartridge != nil {
		if err := app.emulator.Update(); err != nil {
			return err
		}
	}

	app.updateFPS()
	return app.PresentFrame()
}

func (app *Application) pace(frameStart time.Time) {
	elapsed := time.Since(frameStart)
	target := app.emulator.GetTargetFrameTime()
	if elapsed < target {
		time.Sleep(target - elapsed)
	}
}

func (app *Application) updateFPS() {
	app.frameCount++
	now := time.Now()
	if elapsed := now.Sub(app.lastFPSTime); elapsed >= time.Second {
		app.currentFPS = float64(app.frameCount) / now.Sub(app.startTime).Seconds()
		app.lastFPSTime = now
	}
}

// Poll implements host.Host: it pumps the graphics backend's event queue,
// applies button and reset/quit events, and reports what the run loop
// should do.
func (app *Application) Poll() host.PollResult {
	if app.window == nil {
		return host.Continue
	}

	events := app.window.PollEvents()
	if len(events) == 0 {
		return host.Continue
	}

	result := host.Continue
	controller1 := app.lastController1State
	controller2 := app.lastController2State
	var changed1, changed2 bool

	for _, event := range events {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			result = host.Quit

		case graphics.InputEventTypeButton:
			if is2PButton(event.Button) {
				if idx := get2PButtonIndex(event.Button); idx >= 0 {
					controller2[idx] = event.Pressed
					changed2 = true
				}
			} else if idx := buttonIndex(graphicsButtonToInputButton(event.Button)); idx >= 0 {
				controller1[idx] = event.Pressed
				changed1 = true
			}

		case graphics.InputEventTypeKey:
			if app.handleResetHotkey(event) {
				result = host.ResetRequest
			}
		}
	}

	if changed1 {
		app.bus.SetControllerButtons(0, controller1)
		app.lastController1State = controller1
	}
	if changed2 {
		app.bus.SetControllerButtons(1, controller2)
		app.lastController2State = controller2
	}

	return result
}

// handleResetHotkey treats a double-tap of Escape within 3 seconds as a
// soft-reset request rather than a quit, matching the window close path
// for actual shutdown.
func (app *Application) handleResetHotkey(event graphics.InputEvent) bool {
	if !event.Pressed || event.Type != graphics.InputEventTypeKey || event.Key != graphics.KeyEscape {
		return false
	}
	now := time.Now()
	doubleTap := !app.lastESCTime.IsZero() && now.Sub(app.lastESCTime) < 3*time.Second
	app.lastESCTime = now
	return doubleTap
}

func buttonIndex(button input.Button) int {
	switch button {
	case input.ButtonA:
		return 0
	case input.ButtonB:
		return 1
	case input.ButtonSelect:
		return 2
	case input.ButtonStart:
		return 3
	case input.ButtonUp:
		return 4
	case input.ButtonDown:
		return 5
	case input.ButtonLeft:
		return 6
	case input.ButtonRight:
		return 7
	default:
		return -1
	}
}

func graphicsButtonToInputButton(gButton graphics.Button) input.Button {
	switch gButton {
	case graphics.ButtonA:
		return input.ButtonA
	case graphics.ButtonB:
		return input.ButtonB
	case graphics.ButtonSelect:
		return input.ButtonSelect
	case graphics.ButtonStart:
		return input.ButtonStart
	case graphics.ButtonUp:
		return input.ButtonUp
	case graphics.ButtonDown:
		return input.ButtonDown
	case graphics.ButtonLeft:
		return input.ButtonLeft
	case graphics.ButtonRight:
		return input.ButtonRight
	default:
		return input.ButtonA
	}
}

func is2PButton(gButton graphics.Button) bool {
	switch gButton {
	case graphics.Button2A, graphics.Button2B, graphics.Button2Select, graphics.Button2Start,
		graphics.Button2Up, graphics.Button2Down, graphics.Button2Left, graphics.Button2Right:
		return true
	default:
		return false
	}
}

func get2PButtonIndex(gButton graphics.Button) int {
	switch gButton {
	case graphics.Button2A:
		return 0
	case graphics.Button2B:
		return 1
	case graphics.Button2Select:
		return 2
	case graphics.Button2Start:
		return 3
	case graphics.Button2Up:
		return 4
	case graphics.Button2Down:
		return 5
	case graphics.Button2Left:
		return 6
	case graphics.Button2Right:
		return 7
	default:
		return -1
	}
}

// Button implements host.Host by reporting the live controller state the
// bus's input subsystem is already tracking.
func (app *Application) Button(controller int, button input.Button) bool {
	state := app.bus.GetInputState()
	switch controller {
	case 0:
		return state.Controller1.IsPressed(button)
	case 1:
		return state.Controller2.IsPressed(button)
	default:
		return false
	}
}

// PresentPixel implements host.Host. The PPU renders into its own packed
// frame buffer (internal/ppu) and PresentFrame blits it in one shot, so
// this per-pixel entry point is currently unused on the hot render path;
// it is kept to satisfy the interface spec.md §6 describes for a future
// caller that assembles a frame incrementally.
func (app *Application) PresentPixel(colorIndex byte, r, g, b byte, x, y int) {}

// PresentFrame implements host.Host: blit the emulator's latest frame to
// the window and swap buffers.
func (app *Application) PresentFrame() error {
	if app.window == nil {
		return nil
	}
	if app.cartridge == nil {
		return nil
	}

	frameBufferSlice := app.emulator.GetFrameBuffer()
	if app.videoProcessor != nil {
		frameBufferSlice = app.videoProcessor.ProcessFrame(frameBufferSlice)
	}

	var frameBuffer [256 * 240]uint32
	copy(frameBuffer[:], frameBufferSlice)
	if err := app.window.RenderFrame(frameBuffer); err != nil {
		return fmt.Errorf("failed to render frame: %v", err)
	}

	app.window.SwapBuffers()
	if app.window.ShouldClose() {
		app.Stop()
	}
	return nil
}

// SetAudioSource implements host.Host. Application wires the Ebitengine
// backend's audio player directly to the bus during window creation, so
// this exists to let a caller (re)point the audio device at a different
// sample source, e.g. tests using a fake host.
func (app *Application) SetAudioSource(pull func([]int16) int) {
	if ebitengineWindow, ok := graphics.AsEbitengineWindow(app.window); app.window != nil && ok {
		if err := ebitengineWindow.SetAudioSource(pull); err != nil {
			fmt.Printf("[app] audio playback disabled: %v\n", err)
		}
	}
}

// Stop halts the run loop without tearing down any resources.
func (app *Application) Stop() {
	app.running = false
}

// Pause freezes emulation while leaving the window and audio running.
func (app *Application) Pause() { app.paused = true }

// Resume un-freezes emulation.
func (app *Application) Resume() { app.paused = false }

// TogglePause flips the paused flag.
func (app *Application) TogglePause() { app.paused = !app.paused }

// Reset implements a full reset: bus state, and the diagnostic slot
// (spec.md §7: recovery from a stored failure is only possible via a
// full reset).
func (app *Application) Reset() {
	if app.bus != nil {
		app.bus.Reset()
	}
	app.emulator.Reset()
	diag.Clear()
}

// IsRunning reports whether the run loop is active.
func (app *Application) IsRunning() bool { return app.running }

// IsPaused reports whether emulation is frozen.
func (app *Application) IsPaused() bool { return app.paused }

// GetFPS returns the most recently measured frames-per-second.
func (app *Application) GetFPS() float64 { return app.currentFPS }

// GetFrameCount returns the total number of frames presented.
func (app *Application) GetFrameCount() uint64 { return app.frameCount }

// GetUptime returns how long the application has been running.
func (app *Application) GetUptime() time.Duration { return time.Since(app.startTime) }

// GetROMPath returns the path of the currently loaded ROM, if any.
func (app *Application) GetROMPath() string { return app.romPath }

// GetConfig returns the application's configuration.
func (app *Application) GetConfig() *Config { return app.config }

// GetBus returns the bus for direct access; useful for tests and for a
// host that wants to drive emulation without the full Run loop.
func (app *Application) GetBus() *bus.Bus { return app.bus }

// Cleanup releases all owned resources.
func (app *Application) Cleanup() error {
	var lastErr error

	if app.emulator != nil {
		if err := app.emulator.Cleanup(); err != nil {
			lastErr = err
		}
	}
	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			lastErr = err
		}
	}
	if app.graphicsBackend != nil {
		if err := app.graphicsBackend.Cleanup(); err != nil {
			lastErr = err
		}
	}

	app.initialized = false
	return lastErr
}
