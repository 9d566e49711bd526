package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"dictate/audio"
	"dictate/beep"
	"dictate/config"
	"dictate/doctor"
	"dictate/encoder"
	"dictate/engine"
	"dictate/history"
	"dictate/hotkey"
	"dictate/log"
	"dictate/paste"
	"dictate/shutdown"
	"dictate/transcriber"
)

var version = "dev"

var (
	deviceMu   sync.Mutex
	deviceName string
)

func activeDeviceName() string {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	if deviceName == "" {
		return "system default"
	}
	return deviceName
}

func setActiveDeviceName(name string) {
	deviceMu.Lock()
	deviceName = name
	deviceMu.Unlock()
}

var shutdownOnce sync.Once

func gracefulShutdown(eng *engine.Engine, sink *appSink) {
	shutdownOnce.Do(func() {
		if eng != nil {
			eng.Close()
		}
		if sink != nil && sink.total() > 0 {
			log.SessionEnd(sink.total())
		}
		log.Close()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix
}

func modeLineText(trans transcriber.Transcriber, cfg config.Config) string {
	providerLabel := trans.Name()
	if lang := trans.Language(); lang != "" {
		providerLabel += " (" + lang + ")"
	}
	return fmt.Sprintf("[%s | %s]", cfg.AutoTypeMethod, providerLabel)
}

func printHistory(limit int) int {
	path, err := history.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer store.Close()

	entries, err := store.Recent(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Printf("%s  [%4.1fs]  %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.AudioS, e.Text)
	}
	count, audioS, err := store.Totals()
	if err == nil {
		fmt.Printf("\n%d dictations, %.1f minutes of audio\n", count, audioS/60)
	}
	return 0
}

func run() {
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	historyFlag := flag.Bool("history", false, "Print recent dictations and exit")
	historyLimit := flag.Int("n", 20, "Number of history entries to print with -history")
	langFlag := flag.String("lang", "en", "Language code for transcription (e.g., en, es, fr). Empty = auto-detect")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("dictate %s\n", version)
		os.Exit(0)
	}

	if *historyFlag {
		os.Exit(printHistory(*historyLimit))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(cfg))
	}

	trans, err := transcriber.New()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if *langFlag != "" {
		trans.SetLanguage(*langFlag)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	log.SessionStart(trans.Name(), cfg.Hotkey)

	if *testFlag {
		args := flag.Args()
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: dictate -test <wav-file>")
			os.Exit(1)
		}
		runTestMode(args[0], cfg, trans)
		return
	}

	// The paste keystroke backend must work before we take any audio;
	// without it transcriptions would go nowhere.
	sender, err := paste.NewKeySender()
	if err != nil {
		if cfg.AutoTypeMethod == config.MethodClipboardPaste {
			log.Errorf("paste init error: %v", err)
			fmt.Printf("Error: paste init failed: %v\n", err)
			fmt.Println("Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
			fmt.Println("Or set auto_type_method to \"copy_only\" in the config file.")
			os.Exit(1)
		}
		fmt.Printf("Warning: paste init failed: %v (copy_only mode)\n", err)
		sender = nil
	}
	injector := paste.NewInjector(sender, cfg.AutoTypeMethod)

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Printf("Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		selectedDevice, err = audio.FindDevice(ctx, *deviceFlag)
		if err != nil {
			fmt.Printf("Warning: %v, using default device\n", err)
		}
	} else if *setupFlag {
		selectedDevice, err = audio.SelectDevice(ctx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			selectedDevice = nil
		}
	}
	if selectedDevice != nil {
		setActiveDeviceName(selectedDevice.Name)
	}

	captureConfig := audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	}
	captureDevice, err := ctx.NewCapture(selectedDevice, captureConfig)
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Printf("Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer captureDevice.Close()

	recorder := audio.NewRecorder(captureDevice, func(level float64) {
		tuiSend(AudioLevelMsg{Level: level})
	})

	dispatcher := transcriber.NewDispatcher(trans)
	defer dispatcher.Close()

	var store *history.Store
	if path, err := history.DefaultPath(); err == nil {
		if store, err = history.Open(path); err != nil {
			log.Warnf("history store unavailable: %v", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	preset := config.PresetByName(cfg.Hotkey)
	hk := hotkey.New(preset)
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Error registering hotkey: %v\n", err)
		os.Exit(1)
	}
	defer hk.Unregister()

	sink := &appSink{store: store, provider: trans.Name()}
	eng := engine.New(hk, recorder, dispatcher, injector, sink, engine.Options{
		Settings: func() engine.Settings {
			current, err := config.Load()
			if err != nil {
				current = cfg
			}
			injector.SetMethod(current.AutoTypeMethod)
			return engine.Settings{TrailingSpace: current.AddTrailingSpace}
		},
	})

	if !*tuiFlag {
		tuiReadyOnce.Do(func() { close(tuiReady) })
	} else {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram()
		tuiMu.Unlock()

		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown(eng, sink)
		}()

		<-tuiReady
	}

	sigChan := shutdown.Signals()
	go func() {
		<-sigChan
		gracefulShutdown(eng, sink)
	}()

	go beep.Init()

	tuiSend(ModeLineMsg{Text: modeLineText(trans, cfg)})
	tuiSend(DeviceLineMsg{Text: deviceLineText(selectedDevice)})
	tuiSend(HotkeyLineMsg{Text: "hold " + preset.Label + " to dictate, esc to cancel/undo"})

	eng.Run()
	select {}
}
