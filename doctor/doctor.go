// Package doctor runs interactive checks for the three capabilities
// dictation needs: the hotkey, the microphone, and keystroke
// injection.
package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"dictate/audio"
	"dictate/config"
	"dictate/encoder"
	"dictate/hotkey"
	"dictate/paste"
	"dictate/transcriber"
)

// Run executes interactive diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(cfg config.Config) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("dictate doctor - interactive system diagnostics")
	fmt.Println("===============================================")

	allPass := true

	if !checkHotkey(cfg) {
		allPass = false
	}
	if allPass && !checkMicAndTranscription() {
		allPass = false
	}
	if allPass && !checkInjection() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
	} else {
		fmt.Println("Some checks failed. See details above.")
	}

	if allPass {
		return 0
	}
	return 1
}

func checkHotkey(cfg config.Config) bool {
	fmt.Println()
	fmt.Println("[1/3] Hotkey detection")
	preset := config.PresetByName(cfg.Hotkey)
	fmt.Printf("Press and release %s...\n", preset.Label)

	if info, err := hotkey.Diagnose(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	} else if info != "" {
		fmt.Printf("  %s\n", info)
	}

	hk := hotkey.New(preset)
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
		fmt.Println("  hotkey down detected")
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}

	select {
	case <-hk.Keyup():
		fmt.Println("  PASS: hotkey press and release detected")
	case <-time.After(5 * time.Second):
		fmt.Println("  FAIL: hotkey release not seen")
		return false
	}

	// The hotkey backend may leave the terminal in raw mode.
	resetTerminal()
	return true
}

func checkMicAndTranscription() bool {
	fmt.Println()
	fmt.Println("[2/3] Microphone and transcription")

	reader := bufio.NewReader(os.Stdin)

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return false
	}

	var device *audio.DeviceInfo
	if len(devices) == 1 {
		device = &devices[0]
		fmt.Printf("Using device: %s\n", device.Name)
	} else {
		fmt.Println()
		fmt.Println("Select input device:")
		for i, d := range devices {
			fmt.Printf("  %d. %s\n", i+1, d.Name)
		}
		fmt.Printf("Choice [1-%d]: ", len(devices))

		devChoice, _ := reader.ReadString('\n')
		devChoice = strings.TrimSpace(devChoice)
		idx := 0
		if devChoice != "" {
			fmt.Sscanf(devChoice, "%d", &idx)
			idx--
		}
		if idx < 0 || idx >= len(devices) {
			fmt.Printf("  FAIL: invalid choice\n")
			return false
		}
		device = &devices[idx]
		fmt.Printf("Selected: %s\n", device.Name)
	}

	trans, err := transcriber.New()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	fmt.Println()
	fmt.Print("Press Enter and speak for 3 seconds...")
	reader.ReadString('\n')

	stop := make(chan struct{})
	go func() {
		time.Sleep(3 * time.Second)
		close(stop)
	}()

	samples, err := recordAudio(ctx, device, stop)
	if err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return false
	}
	if len(samples) == 0 {
		fmt.Println("  FAIL: no audio captured")
		return false
	}

	fmt.Printf("  Recorded %.1fs, transcribing...\n", float64(len(samples))/encoder.SampleRate)

	text, err := trans.Transcribe(context.Background(), samples)
	if err != nil {
		fmt.Printf("  FAIL: transcription error: %v\n", err)
		return false
	}
	if strings.TrimSpace(text) == "" {
		text = "(no speech detected)"
	}

	fmt.Printf("\n  Transcribed text: %s\n\n", text)

	// Ask user to confirm - fresh reader to clear any buffered input
	confirmReader := bufio.NewReader(os.Stdin)
	fmt.Print("Is this correct? [y/n]: ")
	confirm, _ := confirmReader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))

	if confirm == "y" || confirm == "yes" {
		fmt.Println("  PASS: transcription verified by user")
		return true
	}

	fmt.Println("  FAIL: transcription not confirmed")
	return false
}

func recordAudio(ctx audio.Context, device *audio.DeviceInfo, stop <-chan struct{}) ([]int16, error) {
	captureConfig := audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	}

	captureDevice, err := ctx.NewCapture(device, captureConfig)
	if err != nil {
		return nil, err
	}
	defer captureDevice.Close()

	rec := audio.NewRecorder(captureDevice, nil)
	if err := rec.Start(); err != nil {
		return nil, err
	}

	fmt.Print("  Recording")
	done := make(chan struct{})
	ticker := time.NewTicker(500 * time.Millisecond)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	<-stop
	close(done)

	samples := rec.Stop()
	fmt.Println(" done")
	return samples, nil
}

func checkInjection() bool {
	fmt.Println()
	fmt.Println("[3/3] Keystroke injection")

	if msg, err := paste.Verify(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	} else {
		fmt.Printf("  %s\n", msg)
	}

	sender, err := paste.NewKeySender()
	if err != nil {
		fmt.Printf("  FAIL: keystroke backend: %v\n", err)
		return false
	}
	inj := paste.NewInjector(sender, config.MethodClipboardPaste)

	fmt.Println("Focus on a text editor window...")
	for i := 5; i > 0; i-- {
		fmt.Printf("  %d...\n", i)
		time.Sleep(1 * time.Second)
	}

	testStr := "dictate-doctor-test"
	if err := inj.Inject(testStr, false); err != nil {
		fmt.Printf("  FAIL: inject failed: %v\n", err)
		return false
	}

	// Reset terminal and use fresh reader for confirmation
	resetTerminal()
	confirmReader := bufio.NewReader(os.Stdin)
	fmt.Println()
	fmt.Printf("Did the text %q appear? [y/n]: ", testStr)
	confirm, _ := confirmReader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))

	if confirm != "y" && confirm != "yes" {
		fmt.Println("  FAIL: injection not confirmed")
		return false
	}
	fmt.Println("  PASS: injection verified by user")
	return true
}
