package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-wander/midi"
	"go-wander/music"
	"go-wander/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	port := ""
	if len(os.Args) > 2 {
		port = os.Args[2]
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "probe":
		probe(port)
	case "panic":
		panicPort(port)
	case "poll":
		pollPorts()
	default:
		usage()
	}
	midi.CloseDriver()
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list          - List MIDI output ports")
	fmt.Println("  probe [port]  - Play one measure per voice on channels 1-3")
	fmt.Println("  panic [port]  - Send all-notes-off on all 16 channels")
	fmt.Println("  poll          - Watch for port changes")
}

func listPorts() {
	fmt.Println("=== MIDI Output Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	names, err := midi.OutPortNames(midi.ScanTimeout)
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}
	for i, n := range names {
		fmt.Printf("  %d: %s\n", i, n)
	}
}

func probe(port string) {
	out, err := midi.OpenOutput(port, midi.Options{})
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}
	defer out.Close()
	fmt.Printf("Using output: %s\n", out.PortName())

	if err := out.Start(context.Background()); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	// One fixed measure so every channel is heard in turn.
	m := music.Measure{
		Low:    music.Voice{48, 50, 52, 53},
		Mid:    music.Voice{60, 62, 64, 65},
		Melody: music.Voice{72, 74, 76, 77, 79, 81, 83, 84},
	}
	start := out.Now() + 100*time.Millisecond
	sequencer.ScheduleMeasure(out, m, start)

	fmt.Println("Playing one measure...")
	time.Sleep(sequencer.MeasureDuration + 300*time.Millisecond)
	fmt.Println("Done!")
}

func panicPort(port string) {
	out, err := midi.OpenOutput(port, midi.Options{})
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}
	defer out.Close()

	for ch := uint8(0); ch < 16; ch++ {
		if err := out.Send(gomidi.ControlChange(ch, gomidi.AllNotesOff, gomidi.Off)); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
	}
	fmt.Printf("Sent all-notes-off on 16 channels of %s\n", out.PortName())
}

func pollPorts() {
	fmt.Println("Polling for port changes every second...")
	fmt.Println("Connect/disconnect devices to test. Ctrl+C to exit.")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	watcher := midi.NewPortWatcher()
	go watcher.Run(ctx)

	for event := range watcher.Events() {
		fmt.Printf("[%s] %s %s\n", time.Now().Format("15:04:05"), event.Name, event.Type)
	}
}
